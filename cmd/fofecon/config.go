package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Validates a fofecon configuration file for syntax errors and invalid values.

Examples:
  fofecon config validate                     # Validates default config locations
  fofecon config validate -c fofecon.toml     # Validates specific file`,
	RunE: runConfigValidate,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Shows the merged configuration from defaults, config file, environment
and flags. The warehouse DSN is redacted.

Examples:
  fofecon config show
  fofecon config show --as yaml`,
	RunE: runConfigShow,
}

func init() {
	configShowCmd.Flags().String("as", "toml", "Encoding: toml or yaml")

	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	_, path, err := loadConfig()
	out := cmd.OutOrStdout()
	if err != nil {
		color.New(color.FgRed).Fprintln(out, "Configuration validation failed:")
		fmt.Fprintf(out, "  - %s\n", err)
		return err
	}

	if path != "" {
		color.New(color.FgGreen).Fprintf(out, "Configuration valid: %s\n", path)
	} else {
		color.New(color.FgYellow).Fprintln(out, "No config file found. Default configuration is valid.")
	}
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, path, err := loadConfig()
	if err != nil {
		return err
	}
	as, _ := cmd.Flags().GetString("as")

	content, err := cfg.Encode(as)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	out := cmd.OutOrStdout()
	if path != "" {
		fmt.Fprintf(out, "# Configuration from: %s\n\n", path)
	} else {
		fmt.Fprintln(out, "# Default configuration (no config file found)")
	}
	fmt.Fprint(out, string(content))
	return nil
}
