package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"comprules/internal/benefit"
	"comprules/internal/criteria"
)

var (
	extractCriteriaFile string
	extractBenefit      string
)

// extractResult is the offline extraction output.
type extractResult struct {
	Facts   criteria.Facts `json:"facts" yaml:"facts"`
	Benefit *benefitResult `json:"benefit,omitempty" yaml:"benefit,omitempty"`
}

type benefitResult struct {
	Formula     string   `json:"formula" yaml:"formula"`
	Target      string   `json:"target" yaml:"target"`
	Attributes  []string `json:"attributes" yaml:"attributes"`
	Procedure   string   `json:"procedure,omitempty" yaml:"procedure,omitempty"`
	Description string   `json:"description" yaml:"description"`
}

var extractCmd = &cobra.Command{
	Use:   "extract <criteria>",
	Short: "Extract facts from rule criteria offline",
	Long: `Extract property IDs and excluded game types from a rule-criteria
expression without contacting the service. Useful for validating criteria
before creating a rule.

Examples:
  comprules extract '@Property=13 AND NOT(@TableGameType="BJ" OR @TableGameType="POK")'
  comprules extract --criteria-file criteria.txt
  comprules extract '@Property=13' --benefit '@CompDollars = @CoinIN / 10; EXECUTE AddPlayerCompDollars'`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var ruleCriteria string
		switch {
		case extractCriteriaFile != "":
			data, err := os.ReadFile(extractCriteriaFile)
			if err != nil {
				return fmt.Errorf("failed to read criteria file: %w", err)
			}
			ruleCriteria = string(data)
		case len(args) == 1:
			ruleCriteria = args[0]
		default:
			return fmt.Errorf("a criteria argument or --criteria-file is required")
		}

		facts, err := criteria.Extract(ruleCriteria)
		if err != nil {
			return fmt.Errorf("extraction failed: %w", err)
		}

		result := extractResult{Facts: facts}

		if extractBenefit != "" {
			assignment, err := benefit.Parse(extractBenefit)
			if err != nil {
				return fmt.Errorf("invalid benefit formula: %w", err)
			}
			result.Benefit = &benefitResult{
				Formula:     assignment.String(),
				Target:      assignment.Target,
				Attributes:  assignment.Vars(),
				Procedure:   assignment.Procedure,
				Description: assignment.Describe(),
			}
		}

		if quiet {
			return nil
		}

		switch format {
		case "yaml":
			encoder := yaml.NewEncoder(os.Stdout)
			defer encoder.Close()
			encoder.SetIndent(2)
			return encoder.Encode(result)
		default:
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(result)
		}
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVar(&extractCriteriaFile, "criteria-file", "", "File containing the rule criteria")
	extractCmd.Flags().StringVar(&extractBenefit, "benefit", "", "Benefit formula to parse alongside the criteria")
}
