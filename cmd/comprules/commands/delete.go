package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"comprules/internal/cli"
	"comprules/internal/client"
)

var (
	deleteForce bool
)

var deleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a comp rule",
	Long: `Delete a comp rule from the specified environment.

Examples:
  comprules delete deluxe_comp --env prod
  comprules delete deluxe_comp --env prod --force`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		settings, err := cli.Resolve(cli.Options{Env: env, BaseURL: baseURL, APIKey: apiKey})
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}

		// Confirm deletion unless --force
		if !deleteForce && !quiet {
			fmt.Printf("Are you sure you want to delete rule '%s' from environment '%s'? (y/N): ", name, settings.Env)
			reader := bufio.NewReader(os.Stdin)
			response, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("failed to read confirmation: %w", err)
			}
			response = strings.ToLower(strings.TrimSpace(response))
			if response != "y" && response != "yes" {
				fmt.Println("Deletion cancelled")
				return nil
			}
		}

		// Create API client
		c := client.NewClient(settings.BaseURL, settings.APIKey)

		ctx := context.Background()
		if err := c.DeleteRule(ctx, name); err != nil {
			return fmt.Errorf("failed to delete rule: %w", err)
		}

		if !quiet {
			fmt.Printf("Successfully deleted rule '%s' from environment '%s'\n", name, settings.Env)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)

	deleteCmd.Flags().BoolVar(&deleteForce, "force", false, "Skip confirmation prompt")
}
