package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orgoj/anglerfish/internal/config"
)

func init() {
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate <config>",
	Short: "Test a configuration file and exit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		cfg, err := config.LoadConfig(path)
		if err != nil {
			return fmt.Errorf("failed to load configuration from '%s': %w", path, err)
		}
		if err := config.ValidateConfig(cfg); err != nil {
			return fmt.Errorf("configuration validation failed for '%s': %w", path, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration '%s' is valid.\n", path)
		return nil
	},
}
