package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"comprules/internal/cli"
	"comprules/internal/client"
	"comprules/internal/snapshot"
)

var (
	listAllGamesOnly bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all comp rules",
	Long: `List all enabled comp rules from the service snapshot.

Examples:
  comprules list --env prod
  comprules list --env prod --format json
  comprules list --env prod --all-games-only`,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := cli.Resolve(cli.Options{Env: env, BaseURL: baseURL, APIKey: apiKey, Format: format})
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}

		// Create API client
		c := client.NewClient(settings.BaseURL, settings.APIKey)

		ctx := context.Background()
		rules, err := c.ListRules(ctx)
		if err != nil {
			return fmt.Errorf("failed to list rules: %w", err)
		}

		// Filter rules applying to all game types if requested
		if listAllGamesOnly {
			var allGames []snapshot.RuleView
			for _, r := range rules {
				if r.AppliesToAllGames {
					allGames = append(allGames, r)
				}
			}
			rules = allGames
		}

		if !quiet {
			if len(rules) == 0 {
				fmt.Println("No rules found")
				return nil
			}
			return cli.PrintRules(rules, cli.OutputFormat(settings.Format))
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolVar(&listAllGamesOnly, "all-games-only", false, "Show only rules applying to all game types")
}
