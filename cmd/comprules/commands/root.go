package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	baseURL string
	apiKey  string
	env     string
	format  string
	quiet   bool
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "comprules",
	Short: "CLI tool for managing comp reward rules",
	Long: `Comprules is a command-line tool for managing casino comp reward rules
in the comprules service.

It provides commands for creating, reading, and deleting rules, extracting
criteria facts offline, generating marketing prompts, and importing and
exporting rule sets.

Examples:
  comprules list --env prod
  comprules create deluxe_comp --criteria '@Property=13 AND @StatementPeriod=LAST_MONTH' --env prod
  comprules get deluxe_comp --env prod
  comprules extract --criteria '@Property=13 AND NOT(@TableGameType="BJ")'
  comprules export --env prod --output rules.yaml
  comprules import rules.yaml --env staging`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags available to all commands
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "Base URL of the comprules API")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "API key for authentication")
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "Environment (dev, staging, prod)")
	rootCmd.PersistentFlags().StringVar(&format, "format", "", "Output format (table, json, yaml; default from config, else table)")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "Suppress output")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose output")
}
