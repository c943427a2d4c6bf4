// Package benefit parses comp reward benefit formulas of the form
//
//	@CompDollars = (@CoinIN)/10; EXECUTE AddPlayerCompDollars
//
// i.e. an assignment of an arithmetic expression over @Attribute
// references to a target attribute, optionally followed by a stored
// procedure invocation. The parsed form feeds the marketing-copy stage
// (human-readable description) and eligibility previews (deterministic
// evaluation against rating figures).
package benefit

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
)

// ErrDivisionByZero is returned by Eval when the formula divides by zero.
var ErrDivisionByZero = errors.New("division by zero")

// Assignment is the root of a parsed benefit formula.
type Assignment struct {
	Target    string `parser:"'@' @Ident '='"`
	Expr      *Expr  `parser:"@@"`
	Procedure string `parser:"( ';' 'EXECUTE' @Ident )? ';'?"`
}

// Expr is a sum of terms, left-associative.
type Expr struct {
	Left  *Term     `parser:"@@"`
	Right []*OpTerm `parser:"@@*"`
}

type OpTerm struct {
	Op   string `parser:"@('+' | '-')"`
	Term *Term  `parser:"@@"`
}

// Term is a product of factors, left-associative. Binding * and / one
// level below + and - gives the usual precedence.
type Term struct {
	Left  *Factor     `parser:"@@"`
	Right []*OpFactor `parser:"@@*"`
}

type OpFactor struct {
	Op     string  `parser:"@('*' | '/')"`
	Factor *Factor `parser:"@@"`
}

// Factor is a literal, an @Attribute reference, or a parenthesized
// subexpression.
type Factor struct {
	Number *float64 `parser:"@(Float | Int)"`
	Attr   *string  `parser:"| '@' @Ident"`
	Sub    *Expr    `parser:"| '(' @@ ')'"`
}

var parser = participle.MustBuild[Assignment]()

// Parse parses a benefit formula string into its AST.
func Parse(input string) (*Assignment, error) {
	a, err := parser.ParseString("", input)
	if err != nil {
		return nil, fmt.Errorf("parse benefit: %w", err)
	}
	return a, nil
}

// ---------------------------------------------------------------------------
// Rendering
// ---------------------------------------------------------------------------

// String renders the assignment in canonical form, e.g.
// "@CompDollars = (@CoinIN) / 10; EXECUTE AddPlayerCompDollars".
func (a *Assignment) String() string {
	var b strings.Builder
	b.WriteString("@" + a.Target + " = " + a.Expr.String())
	if a.Procedure != "" {
		b.WriteString("; EXECUTE " + a.Procedure)
	}
	return b.String()
}

func (e *Expr) String() string {
	var b strings.Builder
	b.WriteString(e.Left.String())
	for _, r := range e.Right {
		b.WriteString(" " + r.Op + " " + r.Term.String())
	}
	return b.String()
}

func (t *Term) String() string {
	var b strings.Builder
	b.WriteString(t.Left.String())
	for _, r := range t.Right {
		b.WriteString(" " + r.Op + " " + r.Factor.String())
	}
	return b.String()
}

func (f *Factor) String() string {
	switch {
	case f.Number != nil:
		return strconv.FormatFloat(*f.Number, 'f', -1, 64)
	case f.Attr != nil:
		return "@" + *f.Attr
	default:
		return "(" + f.Sub.String() + ")"
	}
}

// ---------------------------------------------------------------------------
// Analysis
// ---------------------------------------------------------------------------

// Vars returns the attribute names referenced on the right-hand side,
// sorted and deduplicated. The assignment target is not included.
func (a *Assignment) Vars() []string {
	seen := make(map[string]bool)
	a.Expr.collectVars(seen)
	vars := make([]string, 0, len(seen))
	for v := range seen {
		vars = append(vars, v)
	}
	sort.Strings(vars)
	return vars
}

func (e *Expr) collectVars(seen map[string]bool) {
	e.Left.collectVars(seen)
	for _, r := range e.Right {
		r.Term.collectVars(seen)
	}
}

func (t *Term) collectVars(seen map[string]bool) {
	t.Left.collectVars(seen)
	for _, r := range t.Right {
		r.Factor.collectVars(seen)
	}
}

func (f *Factor) collectVars(seen map[string]bool) {
	switch {
	case f.Attr != nil:
		seen[*f.Attr] = true
	case f.Sub != nil:
		f.Sub.collectVars(seen)
	}
}

// ---------------------------------------------------------------------------
// Evaluation
// ---------------------------------------------------------------------------

// Eval computes the formula's right-hand side against a set of attribute
// values. Missing attributes evaluate to zero; division by zero fails.
func (a *Assignment) Eval(attrs map[string]float64) (float64, error) {
	return a.Expr.eval(attrs)
}

func (e *Expr) eval(attrs map[string]float64) (float64, error) {
	acc, err := e.Left.eval(attrs)
	if err != nil {
		return 0, err
	}
	for _, r := range e.Right {
		v, err := r.Term.eval(attrs)
		if err != nil {
			return 0, err
		}
		switch r.Op {
		case "+":
			acc += v
		case "-":
			acc -= v
		}
	}
	return acc, nil
}

func (t *Term) eval(attrs map[string]float64) (float64, error) {
	acc, err := t.Left.eval(attrs)
	if err != nil {
		return 0, err
	}
	for _, r := range t.Right {
		v, err := r.Factor.eval(attrs)
		if err != nil {
			return 0, err
		}
		switch r.Op {
		case "*":
			acc *= v
		case "/":
			if v == 0 {
				return 0, ErrDivisionByZero
			}
			acc /= v
		}
	}
	return acc, nil
}

func (f *Factor) eval(attrs map[string]float64) (float64, error) {
	switch {
	case f.Number != nil:
		return *f.Number, nil
	case f.Attr != nil:
		return attrs[*f.Attr], nil
	default:
		return f.Sub.eval(attrs)
	}
}

// Describe renders a human-readable sentence for the marketing-copy
// stage, e.g. "CompDollars is calculated as (@CoinIN) / 10".
func (a *Assignment) Describe() string {
	s := fmt.Sprintf("%s is calculated as %s", a.Target, a.Expr.String())
	if a.Procedure != "" {
		s += fmt.Sprintf(" and credited via %s", a.Procedure)
	}
	return s
}
