package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"comprules/internal/cli"
	"comprules/internal/client"
)

var getCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Get a comp rule",
	Long: `Get details of a specific comp rule, including its extracted facts.

Examples:
  comprules get deluxe_comp --env prod
  comprules get deluxe_comp --env prod --format json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		settings, err := cli.Resolve(cli.Options{Env: env, BaseURL: baseURL, APIKey: apiKey, Format: format})
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}

		// Create API client
		c := client.NewClient(settings.BaseURL, settings.APIKey)

		ctx := context.Background()
		rule, err := c.GetRule(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to get rule: %w", err)
		}

		if !quiet {
			return cli.PrintRule(rule, cli.OutputFormat(settings.Format))
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
}
