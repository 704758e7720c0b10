package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configFile string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "cs-agent",
	Short: "CraftingStore Agent",
	Long: `CraftingStore Agent polls the CraftingStore command queue and runs
purchased commands on your game server.

It operates in three modes:
  daemon - Polls the queue every few minutes until stopped
  once   - Polls the queue a single time, for use from cron
  init   - Writes a default configuration file`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", defaultConfigPath, "Path to config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log level (debug, info, warn, error)")
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.WithError(err).Error("cs-agent failed")
		os.Exit(1)
	}
}
