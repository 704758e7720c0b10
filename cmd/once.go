package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/craftingstore/cs-agent/internal/config"
)

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Poll the queue a single time",
	Long: `Fetch pending commands once, run them and mark them complete, then exit.

Exits non-zero when the cycle fails, so it can be scheduled from cron:
  */4 * * * * root /usr/local/bin/cs-agent once`,
	RunE: runOnce,
}

func init() {
	rootCmd.AddCommand(onceCmd)
	addOverrideFlags(onceCmd)
}

func runOnce(cmd *cobra.Command, args []string) error {
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return a.RunOnce(ctx)
}
