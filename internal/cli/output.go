package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"comprules/internal/snapshot"
)

// OutputFormat specifies the output format for CLI commands
type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
)

// PrintRules outputs rules in the specified format
func PrintRules(rules []snapshot.RuleView, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return printJSON(rules)
	case FormatYAML:
		return printYAML(rules)
	case FormatTable:
		return printTable(rules)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// PrintRule outputs a single rule in the specified format
func PrintRule(rule *snapshot.RuleView, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return printJSON(rule)
	case FormatYAML:
		return printYAML(rule)
	case FormatTable:
		return printTable([]snapshot.RuleView{*rule})
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func printJSON(data interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	// Wrap slices in a "rules" key for consistency with the API responses
	if rules, ok := data.([]snapshot.RuleView); ok {
		return encoder.Encode(map[string][]snapshot.RuleView{"rules": rules})
	}
	return encoder.Encode(data)
}

func printYAML(data interface{}) error {
	encoder := yaml.NewEncoder(os.Stdout)
	defer encoder.Close()
	encoder.SetIndent(2)
	return encoder.Encode(data)
}

func printTable(rules []snapshot.RuleView) error {
	table := tablewriter.NewWriter(os.Stdout)

	// Set headers
	table.Header("Name", "Env", "Properties", "Excluded Games", "All Games", "Updated At")

	// Add rows
	for _, rule := range rules {
		table.Append(
			rule.Name,
			rule.Env,
			joinInts(rule.PropertyIDs),
			truncate(strings.Join(rule.ExcludedGameTypes, ", "), 40),
			strconv.FormatBool(rule.AppliesToAllGames),
			rule.UpdatedAt.Format("2006-01-02 15:04"),
		)
	}

	return table.Render()
}

func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ", ")
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max-3] + "..."
	}
	return s
}
