package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"comprules/internal/cli"
	"comprules/internal/client"
	"comprules/internal/criteria"
	"comprules/internal/store"
)

var (
	createCriteria     string
	createCriteriaFile string
	createBenefit      string
	createDescription  string
	createDisabled     bool
)

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create or update a comp rule",
	Long: `Create a new comp rule (or update an existing one) with the given name.

The rule criteria is validated locally before the request is sent, so
malformed criteria fails fast without a round trip.

Examples:
  comprules create deluxe_comp --criteria '@Property=13 AND @StatementPeriod=LAST_MONTH' --env prod
  comprules create table_comp --criteria-file criteria.txt --benefit '@CompDollars = @CoinIN / 10;' --env staging`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		ruleCriteria := createCriteria
		if createCriteriaFile != "" {
			data, err := os.ReadFile(createCriteriaFile)
			if err != nil {
				return fmt.Errorf("failed to read criteria file: %w", err)
			}
			ruleCriteria = string(data)
		}
		if ruleCriteria == "" {
			return fmt.Errorf("one of --criteria or --criteria-file is required")
		}

		// Validate locally before sending
		if _, err := criteria.Extract(ruleCriteria); err != nil {
			return fmt.Errorf("invalid criteria: %w", err)
		}

		settings, err := cli.Resolve(cli.Options{Env: env, BaseURL: baseURL, APIKey: apiKey})
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}

		// Create API client
		c := client.NewClient(settings.BaseURL, settings.APIKey)

		params := store.UpsertParams{
			Name:        name,
			Description: createDescription,
			Criteria:    ruleCriteria,
			Benefit:     createBenefit,
			Enabled:     !createDisabled,
			Env:         settings.Env,
		}

		ctx := context.Background()
		if err := c.CreateRule(ctx, params); err != nil {
			return fmt.Errorf("failed to create rule: %w", err)
		}

		if !quiet {
			fmt.Printf("Successfully created rule '%s' in environment '%s'\n", name, settings.Env)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(createCmd)

	createCmd.Flags().StringVar(&createCriteria, "criteria", "", "Rule criteria expression")
	createCmd.Flags().StringVar(&createCriteriaFile, "criteria-file", "", "File containing the rule criteria")
	createCmd.Flags().StringVar(&createBenefit, "benefit", "", "Benefit formula (e.g. '@CompDollars = @CoinIN / 10;')")
	createCmd.Flags().StringVar(&createDescription, "description", "", "Rule description")
	createCmd.Flags().BoolVar(&createDisabled, "disabled", false, "Create the rule disabled")
}
