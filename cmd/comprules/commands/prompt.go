package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"comprules/internal/cli"
	"comprules/internal/client"
)

var (
	promptLanguage       string
	promptStatementsOnly bool
)

var promptCmd = &cobra.Command{
	Use:   "prompt <name>",
	Short: "Generate the marketing prompt for a rule",
	Long: `Fetch the rendered marketing-copy prompt for a rule. The prompt is
fed to a copy generator to produce rule descriptions and audio scripts.

Examples:
  comprules prompt deluxe_comp --env prod
  comprules prompt deluxe_comp --language Spanish
  comprules prompt deluxe_comp --statements-only`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		settings, err := cli.Resolve(cli.Options{Env: env, BaseURL: baseURL, APIKey: apiKey, Language: promptLanguage})
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}

		// Create API client
		c := client.NewClient(settings.BaseURL, settings.APIKey)

		ctx := context.Background()
		prompt, statements, err := c.RulePrompt(ctx, name, settings.Language)
		if err != nil {
			return fmt.Errorf("failed to fetch prompt: %w", err)
		}

		if quiet {
			return nil
		}

		if promptStatementsOnly {
			for _, s := range statements {
				fmt.Println(s)
			}
			return nil
		}

		fmt.Println(prompt)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(promptCmd)

	promptCmd.Flags().StringVar(&promptLanguage, "language", "", "Target language for the generated copy (default from config, else English)")
	promptCmd.Flags().BoolVar(&promptStatementsOnly, "statements-only", false, "Print only the fact statements")
}
