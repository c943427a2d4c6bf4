// Package eligibility compiles extracted rule facts into JSON Logic
// (jsonlogic.com) expressions and evaluates them against a player context.
// It answers "would this rule apply to a player rated at this property
// playing this game?" without consulting the rule-criteria text again.
package eligibility

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/diegoholiveira/jsonlogic/v3"

	"comprules/internal/criteria"
)

// PlayerContext represents player-rating attributes for eligibility
// evaluation. Recognized attributes:
//   - property: the property number the rating was earned at (number)
//   - game_type: the game-type code being played, e.g. "PK" (string)
type PlayerContext map[string]any

// ErrNoProperties is returned when the facts carry no property ids, which
// extraction guarantees never happens for facts it produced.
var ErrNoProperties = errors.New("facts carry no property ids")

// Expression compiles facts into a JSON Logic expression string. The
// expression requires the player's property to be one of the facts'
// property ids and, when the rule excludes game types, the player's game
// type to be outside the excluded set.
func Expression(facts criteria.Facts) (string, error) {
	if len(facts.PropertyIDs) == 0 {
		return "", ErrNoProperties
	}

	clauses := []any{
		map[string]any{"in": []any{map[string]any{"var": "property"}, facts.PropertyIDs}},
	}
	if !facts.AppliesToAllGames {
		clauses = append(clauses, map[string]any{
			"!": map[string]any{"in": []any{map[string]any{"var": "game_type"}, facts.ExcludedGameTypes}},
		})
	}

	expr, err := json.Marshal(map[string]any{"and": clauses})
	if err != nil {
		return "", fmt.Errorf("marshal expression: %w", err)
	}
	return string(expr), nil
}

// Evaluate compiles facts and applies the resulting expression to a
// player context. Missing context attributes evaluate to null and fail
// the membership checks, so an absent property never matches.
func Evaluate(facts criteria.Facts, ctx PlayerContext) (bool, error) {
	expression, err := Expression(facts)
	if err != nil {
		return false, err
	}

	dataBytes, err := json.Marshal(ctx)
	if err != nil {
		return false, fmt.Errorf("marshal context: %w", err)
	}

	ruleReader := strings.NewReader(expression)
	dataReader := bytes.NewReader(dataBytes)
	var resultBuf bytes.Buffer

	if err := jsonlogic.Apply(ruleReader, dataReader, &resultBuf); err != nil {
		return false, fmt.Errorf("apply expression: %w", err)
	}

	var result any
	if err := json.Unmarshal(resultBuf.Bytes(), &result); err != nil {
		return false, fmt.Errorf("decode result: %w", err)
	}

	matched, _ := result.(bool)
	return matched, nil
}
