// Package script turns a comp rule and its extracted facts into the inputs
// of the downstream marketing-copy generator: ordered natural-language
// statements describing the rule, and the full prompt text the generator
// sends to its language model. The model call itself happens downstream.
package script

import (
	"fmt"
	"strconv"
	"strings"

	"comprules/internal/benefit"
	"comprules/internal/criteria"
)

// Statements derives the ordered natural-language statements a copywriter
// (human or model) needs about a rule: where it applies, which games it
// covers, and how the benefit is computed. The benefit assignment is
// optional; nil yields no benefit statement.
func Statements(ruleName string, facts criteria.Facts, b *benefit.Assignment) []string {
	statements := make([]string, 0, 3)

	statements = append(statements, fmt.Sprintf(
		"The %q reward is earned at %s.", ruleName, propertyPhrase(facts.PropertyIDs)))

	if facts.AppliesToAllGames {
		statements = append(statements, "It applies to all game types.")
	} else {
		statements = append(statements, fmt.Sprintf(
			"It does not apply to these game types: %s.",
			strings.Join(facts.ExcludedGameTypes, ", ")))
	}

	if b != nil {
		statements = append(statements, b.Describe()+".")
	}

	return statements
}

func propertyPhrase(ids []int) string {
	if len(ids) == 1 {
		return "property " + strconv.Itoa(ids[0])
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return "properties " + strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
}

// RuleData renders a rule in the flat textual form embedded into the
// prompt, mirroring how rule rows arrive from the comp system's export.
func RuleData(name, ruleCriteria, benefitFormula string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Rule name - %q Rule criteria - %q", name, ruleCriteria)
	if benefitFormula != "" {
		fmt.Fprintf(&b, " Benefit - %q", benefitFormula)
	}
	return b.String()
}
