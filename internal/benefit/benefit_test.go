package benefit

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestParse_FullBenefit(t *testing.T) {
	a, err := Parse(`@CompDollars = (@CoinIN)/10; EXECUTE AddPlayerCompDollars`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if a.Target != "CompDollars" {
		t.Errorf("target: got %q, want CompDollars", a.Target)
	}
	if a.Procedure != "AddPlayerCompDollars" {
		t.Errorf("procedure: got %q, want AddPlayerCompDollars", a.Procedure)
	}
	if got := a.Vars(); !reflect.DeepEqual(got, []string{"CoinIN"}) {
		t.Errorf("vars: got %v, want [CoinIN]", got)
	}
}

func TestParse_NoProcedure(t *testing.T) {
	a, err := Parse(`@Points = @TheoWin * 2`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if a.Procedure != "" {
		t.Errorf("procedure: got %q, want empty", a.Procedure)
	}
}

func TestParse_Invalid(t *testing.T) {
	inputs := []string{
		"",
		"CompDollars = 10",         // missing @ on target
		"@CompDollars = ",          // missing expression
		"@CompDollars = (@CoinIN",  // unclosed paren
		"@CompDollars = @CoinIN /", // dangling operator
	}
	for _, in := range inputs {
		if _, err := Parse(in); err == nil {
			t.Errorf("Parse(%q): expected error, got nil", in)
		}
	}
}

func TestEval(t *testing.T) {
	attrs := map[string]float64{"CoinIN": 250, "TheoWin": 40}

	tests := []struct {
		input string
		want  float64
	}{
		{`@CompDollars = (@CoinIN)/10`, 25},
		{`@CompDollars = @CoinIN / 10 + @TheoWin`, 65},
		{`@CompDollars = @CoinIN + @TheoWin * 2`, 330},       // precedence
		{`@CompDollars = (@CoinIN + @TheoWin) * 2`, 580},     // grouping
		{`@CompDollars = 100 - 20 - 5`, 75},                  // left-assoc
		{`@CompDollars = 100 / 10 / 2`, 5},                   // left-assoc
		{`@CompDollars = @Unknown + 1`, 1},                   // missing attr is zero
		{`@CompDollars = 0.5 * @CoinIN`, 125},                // float literal
	}

	for _, tt := range tests {
		a, err := Parse(tt.input)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tt.input, err)
		}
		got, err := a.Eval(attrs)
		if err != nil {
			t.Fatalf("Eval(%q): %v", tt.input, err)
		}
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Eval(%q): got %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestEval_DivisionByZero(t *testing.T) {
	a, err := Parse(`@CompDollars = @CoinIN / 0`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := a.Eval(map[string]float64{"CoinIN": 10}); !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("got %v, want ErrDivisionByZero", err)
	}
}

func TestString_RoundTrip(t *testing.T) {
	a, err := Parse(`@CompDollars = (@CoinIN)/10; EXECUTE AddPlayerCompDollars`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	canonical := a.String()
	want := `@CompDollars = (@CoinIN) / 10; EXECUTE AddPlayerCompDollars`
	if canonical != want {
		t.Errorf("String: got %q, want %q", canonical, want)
	}

	// Canonical form parses back to the same canonical form.
	b, err := Parse(canonical)
	if err != nil {
		t.Fatalf("re-Parse: %v", err)
	}
	if b.String() != canonical {
		t.Errorf("round trip: got %q, want %q", b.String(), canonical)
	}
}
