package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"comprules/internal/cli"
	"comprules/internal/client"
)

var (
	exportOutput string
)

// ExportRule is the portable rule shape used by export and import files.
type ExportRule struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Criteria    string `yaml:"criteria" json:"criteria"`
	Benefit     string `yaml:"benefit,omitempty" json:"benefit,omitempty"`
	Enabled     bool   `yaml:"enabled" json:"enabled"`
	Env         string `yaml:"env" json:"env"`
}

// ExportFormat represents the structure for exporting rules
type ExportFormat struct {
	Rules []ExportRule `yaml:"rules" json:"rules"`
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export rules to a file",
	Long: `Export all rules from the service snapshot to a YAML or JSON file.

Examples:
  comprules export --env prod --output rules.yaml
  comprules export --env prod --output rules.json --format json
  comprules export --env prod > backup.yaml`,
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

		exportData := ExportFormat{Rules: make([]ExportRule, 0, len(rules))}
		for _, r := range rules {
			exportData.Rules = append(exportData.Rules, ExportRule{
				Name:        r.Name,
				Description: r.Description,
				Criteria:    r.Criteria,
				Benefit:     r.Benefit,
				Enabled:     true, // snapshot only carries enabled rules
				Env:         r.Env,
			})
		}

		// Determine output destination
		var output *os.File
		if exportOutput == "" || exportOutput == "-" {
			output = os.Stdout
		} else {
			output, err = os.Create(exportOutput)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer output.Close()
		}

		// Export based on format
		switch settings.Format {
		case "json":
			encoder := json.NewEncoder(output)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(exportData); err != nil {
				return fmt.Errorf("failed to encode JSON: %w", err)
			}
		case "yaml", "table":
			// Default to YAML for export
			encoder := yaml.NewEncoder(output)
			defer encoder.Close()
			encoder.SetIndent(2)
			if err := encoder.Encode(exportData); err != nil {
				return fmt.Errorf("failed to encode YAML: %w", err)
			}
		default:
			return fmt.Errorf("unsupported export format: %s", settings.Format)
		}

		if exportOutput != "" && exportOutput != "-" && !quiet {
			fmt.Fprintf(os.Stderr, "Successfully exported %d rule(s) to %s\n", len(exportData.Rules), exportOutput)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: stdout)")
}
