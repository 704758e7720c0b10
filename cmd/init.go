package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/craftingstore/cs-agent/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Write a default configuration file to the --config path.

The token is set to a placeholder; the agent refuses to start until it is
replaced with the API token from the CraftingStore dashboard.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(configFile); err == nil && !initForce {
		return fmt.Errorf("%s already exists, use --force to overwrite", configFile)
	}
	if err := config.WriteDefault(configFile); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s, set your API token in it before starting the agent\n", configFile)
	return nil
}
