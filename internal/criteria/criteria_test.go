package criteria

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

// ---------------------------------------------------------------------------
// Extraction success cases
// ---------------------------------------------------------------------------

func TestExtract_WithExclusions(t *testing.T) {
	input := `@RatingTypeID=2 AND NOT ((@TableGameType="PK") OR (@TableGameType="IN")) AND (@Property=13)`

	facts, err := Extract(input)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if !reflect.DeepEqual(facts.PropertyIDs, []int{13}) {
		t.Errorf("property ids: got %v, want [13]", facts.PropertyIDs)
	}
	if !reflect.DeepEqual(facts.ExcludedGameTypes, []string{"PK", "IN"}) {
		t.Errorf("excluded game types: got %v, want [PK IN]", facts.ExcludedGameTypes)
	}
	if facts.AppliesToAllGames {
		t.Error("applies_to_all_games: got true, want false")
	}
}

func TestExtract_NoExclusions(t *testing.T) {
	facts, err := Extract(`@RatingTypeID=2 AND (@Property=7)`)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if !reflect.DeepEqual(facts.PropertyIDs, []int{7}) {
		t.Errorf("property ids: got %v, want [7]", facts.PropertyIDs)
	}
	if len(facts.ExcludedGameTypes) != 0 {
		t.Errorf("excluded game types: got %v, want empty", facts.ExcludedGameTypes)
	}
	if !facts.AppliesToAllGames {
		t.Error("applies_to_all_games: got false, want true")
	}
}

func TestExtract_Variants(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantIDs      []int
		wantExcluded []string
		wantAllGames bool
	}{
		{
			name:         "multiple properties collected in order",
			input:        `(@Property=13) OR (@Property=7) OR (@Property=13)`,
			wantIDs:      []int{13, 7},
			wantExcluded: []string{},
			wantAllGames: true,
		},
		{
			name:         "unquoted game type codes",
			input:        `@Property=5 AND NOT (@TableGameType=PK OR @TableGameType=IN)`,
			wantIDs:      []int{5},
			wantExcluded: []string{"PK", "IN"},
			wantAllGames: false,
		},
		{
			name:         "duplicate game types deduplicated, first-seen order kept",
			input:        `@Property=5 AND NOT ((@TableGameType="IN") OR (@TableGameType="PK") OR (@TableGameType="IN"))`,
			wantIDs:      []int{5},
			wantExcluded: []string{"IN", "PK"},
			wantAllGames: false,
		},
		{
			name:         "codes are case-sensitive and verbatim",
			input:        `@Property=5 AND NOT ((@TableGameType="pk") OR (@TableGameType="PK"))`,
			wantIDs:      []int{5},
			wantExcluded: []string{"pk", "PK"},
			wantAllGames: false,
		},
		{
			name:         "quoted codes may contain spaces",
			input:        `@Property=9 AND NOT ((@TableGameType="Three Card Poker") OR (@TableGameType="Pai Gow Poker"))`,
			wantIDs:      []int{9},
			wantExcluded: []string{"Three Card Poker", "Pai Gow Poker"},
			wantAllGames: false,
		},
		{
			name:         "game types outside the NOT-group are ignored",
			input:        `@TableGameType="BJ" AND (@Property=3)`,
			wantIDs:      []int{3},
			wantExcluded: []string{},
			wantAllGames: true,
		},
		{
			name:         "NOT without space before group",
			input:        `@Property=4 AND NOT(@TableGameType="PK")`,
			wantIDs:      []int{4},
			wantExcluded: []string{"PK"},
			wantAllGames: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facts, err := Extract(tt.input)
			if err != nil {
				t.Fatalf("Extract: %v", err)
			}
			if !reflect.DeepEqual(facts.PropertyIDs, tt.wantIDs) {
				t.Errorf("property ids: got %v, want %v", facts.PropertyIDs, tt.wantIDs)
			}
			if !reflect.DeepEqual(facts.ExcludedGameTypes, tt.wantExcluded) {
				t.Errorf("excluded game types: got %v, want %v", facts.ExcludedGameTypes, tt.wantExcluded)
			}
			if facts.AppliesToAllGames != tt.wantAllGames {
				t.Errorf("applies_to_all_games: got %v, want %v", facts.AppliesToAllGames, tt.wantAllGames)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Extraction failures
// ---------------------------------------------------------------------------

func TestExtract_MissingProperty(t *testing.T) {
	_, err := Extract(`@RatingTypeID=2`)
	if !errors.Is(err, ErrMissingProperty) {
		t.Fatalf("got %v, want ErrMissingProperty", err)
	}

	var parseErr *ParseError
	if !errors.As(err, &parseErr) || parseErr.Kind != KindMissingProperty {
		t.Errorf("error kind: got %v, want %v", parseErr, KindMissingProperty)
	}
}

func TestExtract_NonNumericPropertyIsMissing(t *testing.T) {
	// Only integer property identifiers count; a symbolic value does not
	// satisfy the eligibility contract.
	_, err := Extract(`@RatingTypeID=2 AND (@Property=pokola)`)
	if !errors.Is(err, ErrMissingProperty) {
		t.Fatalf("got %v, want ErrMissingProperty", err)
	}
}

func TestExtract_UnbalancedGroup(t *testing.T) {
	_, err := Extract(`NOT (@TableGameType="PK" AND (@Property=5)`)
	if !errors.Is(err, ErrUnbalancedGroup) {
		t.Fatalf("got %v, want ErrUnbalancedGroup", err)
	}

	var parseErr *ParseError
	if !errors.As(err, &parseErr) || parseErr.Kind != KindUnbalancedGroup {
		t.Errorf("error kind: got %v, want %v", parseErr, KindUnbalancedGroup)
	}
}

// ---------------------------------------------------------------------------
// Invariants
// ---------------------------------------------------------------------------

func TestExtract_Idempotent(t *testing.T) {
	input := `@RatingTypeID=2 AND NOT ((@TableGameType="PK") OR (@TableGameType="IN")) AND (@Property=13)`

	first, err := Extract(input)
	if err != nil {
		t.Fatalf("first Extract: %v", err)
	}
	second, err := Extract(input)
	if err != nil {
		t.Fatalf("second Extract: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("extraction not idempotent: %+v vs %+v", first, second)
	}
}

func TestFactsJSONShape(t *testing.T) {
	facts, err := Extract(`@RatingTypeID=2 AND (@Property=7)`)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	data, err := json.Marshal(facts)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	want := `{"property_ids":[7],"excluded_game_types":[],"applies_to_all_games":true}`
	if string(data) != want {
		t.Errorf("json: got %s, want %s", data, want)
	}
}
