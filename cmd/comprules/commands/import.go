package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"comprules/internal/cli"
	"comprules/internal/client"
	"comprules/internal/criteria"
	"comprules/internal/store"
)

var (
	importDryRun bool
	importForce  bool
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import rules from a file",
	Long: `Import rules from a YAML or JSON file.

Examples:
  comprules import rules.yaml --env prod
  comprules import rules.yaml --env staging --dry-run
  comprules import rules.yaml --env prod --force`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]

		// Read file
		data, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		// Parse file
		var importData ExportFormat
		if err := yaml.Unmarshal(data, &importData); err != nil {
			return fmt.Errorf("failed to parse file: %w", err)
		}

		// Validate rules
		if len(importData.Rules) == 0 {
			return fmt.Errorf("no rules found in file")
		}

		if verbose {
			fmt.Printf("Found %d rule(s) to import\n", len(importData.Rules))
		}

		// Dry run mode - validate criteria and show what would be imported
		if importDryRun {
			fmt.Println("Dry run mode - the following rules would be imported:")
			for _, rule := range importData.Rules {
				facts, err := criteria.Extract(rule.Criteria)
				if err != nil {
					fmt.Printf("  - %s (INVALID: %v)\n", rule.Name, err)
					continue
				}
				fmt.Printf("  - %s (properties: %v, all games: %v, env: %s)\n",
					rule.Name, facts.PropertyIDs, facts.AppliesToAllGames, rule.Env)
			}
			return nil
		}

		settings, err := cli.Resolve(cli.Options{Env: env, BaseURL: baseURL, APIKey: apiKey})
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}

		// Create API client
		c := client.NewClient(settings.BaseURL, settings.APIKey)
		ctx := context.Background()

		// Import rules
		successCount := 0
		errorCount := 0

		for _, rule := range importData.Rules {
			// Use the environment from the rule or override with the
			// resolved environment
			targetEnv := rule.Env
			if settings.Env != "" {
				targetEnv = settings.Env
			}

			params := store.UpsertParams{
				Name:        rule.Name,
				Description: rule.Description,
				Criteria:    rule.Criteria,
				Benefit:     rule.Benefit,
				Enabled:     rule.Enabled,
				Env:         targetEnv,
			}

			if verbose {
				fmt.Printf("Importing rule: %s\n", rule.Name)
			}

			if err := c.CreateRule(ctx, params); err != nil {
				errorCount++
				fmt.Fprintf(os.Stderr, "Failed to import rule '%s': %v\n", rule.Name, err)
				if !importForce {
					return fmt.Errorf("import failed, use --force to continue on errors")
				}
			} else {
				successCount++
			}
		}

		if !quiet {
			fmt.Printf("Import complete: %d succeeded, %d failed\n", successCount, errorCount)
		}

		if errorCount > 0 && !importForce {
			return fmt.Errorf("import completed with errors")
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Validate without importing")
	importCmd.Flags().BoolVar(&importForce, "force", false, "Continue on errors")
}
