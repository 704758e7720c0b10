package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/craftingstore/cs-agent/internal/agent"
	"github.com/craftingstore/cs-agent/internal/config"
)

const defaultConfigPath = "/etc/cs-agent/config.yaml"

var (
	daemonToken    string
	daemonBaseURL  string
	daemonInterval time.Duration
	daemonExecutor string
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run as a background daemon",
	Long: `Run the cs-agent as a background daemon that:
  - Fetches pending commands from the CraftingStore queue on start and every interval
  - Runs each command on the game server (shell, WebRCON or dry-run)
  - Marks executed commands as complete`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(daemonCmd)
	addOverrideFlags(daemonCmd)
}

// addOverrideFlags registers flags that take precedence over the config file.
func addOverrideFlags(c *cobra.Command) {
	c.Flags().StringVarP(&daemonToken, "token", "t", "", "CraftingStore API token")
	c.Flags().StringVarP(&daemonBaseURL, "base-url", "s", "", "CraftingStore API base URL")
	c.Flags().DurationVar(&daemonInterval, "interval", 0, "Queue poll interval")
	c.Flags().StringVarP(&daemonExecutor, "executor", "e", "", "Executor mode (shell, webrcon, dry-run)")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := newAgent(cfg, logger)
	if err != nil {
		return err
	}

	if cfg.Executor.Mode == config.ModeShell {
		setNoNewPrivs(logger)
	}

	// Handle shutdown gracefully
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		logger.Info("Shutting down...")
	}()

	return a.Run(ctx)
}

// loadConfig reads the first config file found, creating a default one at the
// --config path when none exists, then applies flag overrides.
func loadConfig() (config.Config, *logrus.Logger, error) {
	cfg, path, err := config.Load(config.SearchPaths(configFile)...)
	switch {
	case errors.Is(err, os.ErrNotExist):
		cfg, path = config.Default(), configFile
		if werr := config.WriteDefault(path); werr != nil {
			logrus.WithError(werr).Warnf("Could not create default config at %s", path)
		} else {
			logrus.Infof("Creating CraftingStore config at %s", path)
		}
	case err != nil:
		return config.Config{}, nil, err
	}

	if daemonToken != "" {
		cfg.Token = daemonToken
	}
	if daemonBaseURL != "" {
		cfg.BaseURL = daemonBaseURL
	}
	if daemonInterval > 0 {
		cfg.PollInterval = daemonInterval
	}
	if daemonExecutor != "" {
		cfg.Executor.Mode = daemonExecutor
	}

	logger := buildLogger(cfg.Log)
	logger.WithField("path", path).Debug("Loaded config")
	return cfg, logger, nil
}

func newAgent(cfg config.Config, logger *logrus.Logger) (*agent.Agent, error) {
	a, err := agent.New(cfg, logger)
	if errors.Is(err, config.ErrNotConfigured) {
		logger.Error("Your API token is not yet set, please set the API token in the config and restart cs-agent.")
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("start agent: %w", err)
	}
	return a, nil
}
