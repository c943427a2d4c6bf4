// Package criteria extracts structured facts from comp reward rule-criteria
// expressions. A criteria expression is a boolean formula over player-rating
// attributes, e.g.:
//
//	@RatingTypeID=2 AND NOT ((@TableGameType="PK") OR (@TableGameType="IN")) AND (@Property=13)
//
// Extraction is deterministic and tolerant: it scans for the tokens it knows
// (@Property, @TableGameType inside a NOT-group) and ignores everything else,
// since real rule data frequently carries operators and attributes outside
// the grammar this package cares about.
package criteria

import (
	"regexp"
	"strconv"
	"strings"
)

// Facts is the structured record derived from a rule-criteria expression.
// It is the data contract consumed by the downstream copy-generation and
// rendering stages.
type Facts struct {
	// PropertyIDs holds the property numbers required for eligibility,
	// deduplicated in order of appearance. Typically exactly one.
	PropertyIDs []int `json:"property_ids"`

	// ExcludedGameTypes holds the game-type codes named inside the
	// NOT-group, verbatim and case-sensitive, deduplicated in order of
	// first appearance. Empty when the expression has no NOT-group.
	ExcludedGameTypes []string `json:"excluded_game_types"`

	// AppliesToAllGames is true iff ExcludedGameTypes is empty.
	AppliesToAllGames bool `json:"applies_to_all_games"`
}

// ErrorKind is a machine-readable classification of a ParseError.
type ErrorKind string

const (
	KindMissingProperty ErrorKind = "MISSING_PROPERTY"
	KindUnbalancedGroup ErrorKind = "UNBALANCED_GROUP"
)

// ParseError is a structured extraction failure. The caller decides whether
// to abort or fall back to a default phrasing; no retry is ever useful since
// the input is fully available and extraction is deterministic.
type ParseError struct {
	Kind    ErrorKind
	Message string
}

func (e *ParseError) Error() string { return e.Message }

// Sentinel parse errors. Extract returns these values directly, so callers
// may compare with errors.Is or switch on the Kind field.
var (
	ErrMissingProperty = &ParseError{Kind: KindMissingProperty, Message: "missing property identifier"}
	ErrUnbalancedGroup = &ParseError{Kind: KindUnbalancedGroup, Message: "unbalanced group"}
)

var (
	propertyPattern = regexp.MustCompile(`@Property=(\d+)`)
	notGroupPattern = regexp.MustCompile(`NOT\s*\(`)

	// Game-type codes appear quoted (@TableGameType="PK") or bare
	// (@TableGameType=PK). Quoted codes may contain spaces.
	gameTypePattern = regexp.MustCompile(`@TableGameType=(?:"([^"]*)"|([^\s)"]+))`)
)

// Extract parses a rule-criteria expression and derives the property
// numbers required for eligibility and the game-type codes excluded by an
// optional NOT-group. It is a pure function: same input, same output.
func Extract(criteria string) (Facts, error) {
	ids := extractPropertyIDs(criteria)
	if len(ids) == 0 {
		return Facts{}, ErrMissingProperty
	}

	group, err := notGroup(criteria)
	if err != nil {
		return Facts{}, err
	}

	excluded := extractGameTypes(group)

	return Facts{
		PropertyIDs:       ids,
		ExcludedGameTypes: excluded,
		AppliesToAllGames: len(excluded) == 0,
	}, nil
}

// extractPropertyIDs collects all @Property=<integer> values, deduplicated
// in order of appearance. Multiple properties (an OR'd set) are collected as
// found; interpretation is left to the caller.
func extractPropertyIDs(s string) []int {
	matches := propertyPattern.FindAllStringSubmatch(s, -1)
	ids := make([]int, 0, len(matches))
	seen := make(map[int]bool, len(matches))
	for _, m := range matches {
		id, err := strconv.Atoi(m[1])
		if err != nil || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

// notGroup returns the text inside the first "NOT (...)" group, locating the
// matching close by balancing parentheses so that nested subexpressions stay
// inside the group. Returns "" when the expression has no NOT-group and
// ErrUnbalancedGroup when the group never closes.
func notGroup(s string) (string, error) {
	loc := notGroupPattern.FindStringIndex(s)
	if loc == nil {
		return "", nil
	}

	open := loc[1] - 1 // index of the group's opening parenthesis
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return s[open+1 : i], nil
			}
		}
	}
	return "", ErrUnbalancedGroup
}

// extractGameTypes collects @TableGameType codes from a NOT-group body,
// verbatim, deduplicated in order of first appearance. The result is never
// nil so that the JSON form is always an array.
func extractGameTypes(group string) []string {
	matches := gameTypePattern.FindAllStringSubmatch(group, -1)
	codes := make([]string, 0, len(matches))
	seen := make(map[string]bool, len(matches))
	for _, m := range matches {
		code := m[1]
		if code == "" {
			code = strings.TrimSpace(m[2])
		}
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		codes = append(codes, code)
	}
	return codes
}
