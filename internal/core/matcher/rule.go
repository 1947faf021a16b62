package matcher

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/joseph-ayodele/sugar-reports/constants"
)

// ConstraintKind tags what a Constraint tests.
type ConstraintKind int

const (
	KindLiteral ConstraintKind = iota // token's lowercase form is one of Words
	KindNumber                        // token looks numeric
	KindUnit                          // token's lowercase form is one of Words (a unit)
)

func (k ConstraintKind) String() string {
	switch k {
	case KindLiteral:
		return "literal"
	case KindNumber:
		return "number"
	case KindUnit:
		return "unit"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Constraint is one position in a rule.
type Constraint struct {
	Kind     ConstraintKind
	Words    []string // lowercase alternatives for literal/unit
	Optional bool
}

// Literal matches any of words, case-insensitively.
func Literal(words ...string) Constraint {
	return Constraint{Kind: KindLiteral, Words: lowerAll(words)}
}

// Number matches a numeric-looking token.
func Number() Constraint {
	return Constraint{Kind: KindNumber}
}

// OptionalUnit matches one of units when present and is skipped otherwise.
func OptionalUnit(units ...string) Constraint {
	return Constraint{Kind: KindUnit, Words: lowerAll(units), Optional: true}
}

func (c Constraint) accepts(t Token) bool {
	switch c.Kind {
	case KindNumber:
		return t.LikeNum
	case KindLiteral, KindUnit:
		return slices.Contains(c.Words, t.Lower)
	default:
		return false
	}
}

// Rule is an ordered sequence of constraints tagged with the category a match
// produces. Rules are immutable once built.
type Rule struct {
	Name        string
	Category    constants.Category
	Constraints []Constraint
}

// NewRule validates and builds a rule: exactly one number constraint, and
// optional constraints only at the tail.
func NewRule(name string, category constants.Category, constraints ...Constraint) (Rule, error) {
	if name == "" {
		return Rule{}, errors.New("rule name is required")
	}
	if len(constraints) == 0 {
		return Rule{}, fmt.Errorf("rule %s: no constraints", name)
	}
	numbers := 0
	seenOptional := false
	for i, c := range constraints {
		if c.Kind == KindNumber {
			numbers++
		}
		if (c.Kind == KindLiteral || c.Kind == KindUnit) && len(c.Words) == 0 {
			return Rule{}, fmt.Errorf("rule %s: %s constraint %d has no words", name, c.Kind, i)
		}
		if c.Optional {
			seenOptional = true
		} else if seenOptional {
			return Rule{}, fmt.Errorf("rule %s: required constraint %d follows an optional one", name, i)
		}
	}
	if numbers != 1 {
		return Rule{}, fmt.Errorf("rule %s: want exactly one number constraint, got %d", name, numbers)
	}
	return Rule{Name: name, Category: category, Constraints: slices.Clone(constraints)}, nil
}

// MatchAt tests the rule against tokens starting at start and returns the end
// (exclusive) of the window. Optional constraints consume a token when it fits.
func (r Rule) MatchAt(tokens []Token, start int) (int, bool) {
	pos := start
	for _, c := range r.Constraints {
		if pos < len(tokens) && c.accepts(tokens[pos]) {
			pos++
			continue
		}
		if c.Optional {
			continue
		}
		return 0, false
	}
	return pos, true
}

func lowerAll(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = strings.ToLower(w)
	}
	return out
}
