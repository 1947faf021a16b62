// Package fields pulls categorized blood-sugar readings out of report text.
// Two independent paths run over every text: the token-window rules from
// package matcher and a line scan for a fixed lab layout.
package fields

import (
	"errors"
	"fmt"
	"regexp"
	"slices"

	"github.com/cloudflare/ahocorasick"

	"github.com/joseph-ayodele/sugar-reports/constants"
	"github.com/joseph-ayodele/sugar-reports/internal/core/matcher"
)

// LayoutUnit is the unit attached to every line-scan reading.
const LayoutUnit = "mg/dL"

// LineMarker is a literal label that starts a fixed-layout result line, e.g.
// "FASTING BLOOD SUGAR(GLUCOSE) PHOTOMETRY 92 mg/dL".
type LineMarker struct {
	Category constants.Category
	Label    string
}

type compiledMarker struct {
	LineMarker
	pattern *regexp.Regexp
}

// Resources is the read-only rule set shared by every extraction. Build it
// once at startup and hand it to each consumer.
//
// The marker automaton is a prefilter: it picks which lines, and which
// markers on them, are worth a regex. The marker's regex alone decides the
// captured value, so a line with no automaton hit is never regex-scanned.
type Resources struct {
	rules     []matcher.Rule
	markers   []compiledMarker
	automaton *ahocorasick.Matcher
}

// DefaultRules returns the fasting and post-lunch token rules.
func DefaultRules() ([]matcher.Rule, error) {
	fasting, err := matcher.NewRule("FASTING_BLOOD_SUGAR", constants.Fasting,
		matcher.Literal("fasting"),
		matcher.Literal("blood"),
		matcher.Literal("glucose", "sugar"),
		matcher.Number(),
		matcher.OptionalUnit("mg/dl"),
	)
	if err != nil {
		return nil, err
	}
	postLunch, err := matcher.NewRule("POST_LUNCH_BLOOD_SUGAR", constants.PostLunch,
		matcher.Literal("post"),
		matcher.Literal("lunch"),
		matcher.Literal("blood"),
		matcher.Literal("glucose", "sugar"),
		matcher.Number(),
		matcher.OptionalUnit("mg/dl"),
	)
	if err != nil {
		return nil, err
	}
	return []matcher.Rule{fasting, postLunch}, nil
}

// DefaultMarkers returns the photometry layout labels.
func DefaultMarkers() []LineMarker {
	return []LineMarker{
		{Category: constants.Fasting, Label: "FASTING BLOOD SUGAR(GLUCOSE) PHOTOMETRY"},
		{Category: constants.PostLunch, Label: "POSTPRANDIAL BLOOD SUGAR(GLUCOSE) PHOTOMETRY"},
	}
}

// LoadResources builds the default rule set.
func LoadResources() (*Resources, error) {
	rules, err := DefaultRules()
	if err != nil {
		return nil, fmt.Errorf("default rules: %w", err)
	}
	return NewResources(rules, DefaultMarkers())
}

// NewResources compiles rules and markers into a shareable handle. Inputs are
// copied; later changes to the caller's slices have no effect.
func NewResources(rules []matcher.Rule, markers []LineMarker) (*Resources, error) {
	if len(rules) == 0 && len(markers) == 0 {
		return nil, errors.New("no rules or line markers")
	}

	res := &Resources{rules: slices.Clone(rules)}

	patterns := make([]string, 0, len(markers))
	for _, m := range markers {
		if m.Label == "" {
			return nil, fmt.Errorf("line marker for %s has an empty label", m.Category)
		}
		if !m.Category.Valid() {
			return nil, fmt.Errorf("line marker %q: unknown category %q", m.Label, m.Category)
		}
		re, err := regexp.Compile(regexp.QuoteMeta(m.Label) + `\s*(\d+(?:\.\d+)?)\s*` + regexp.QuoteMeta(LayoutUnit))
		if err != nil {
			return nil, fmt.Errorf("compile marker %q: %w", m.Label, err)
		}
		res.markers = append(res.markers, compiledMarker{LineMarker: m, pattern: re})
		patterns = append(patterns, m.Label)
	}
	if len(patterns) > 0 {
		res.automaton = ahocorasick.NewStringMatcher(patterns)
	}
	return res, nil
}

// Rules returns a copy of the token rules.
func (r *Resources) Rules() []matcher.Rule {
	return slices.Clone(r.rules)
}

// Markers returns a copy of the line markers.
func (r *Resources) Markers() []LineMarker {
	out := make([]LineMarker, len(r.markers))
	for i, m := range r.markers {
		out[i] = m.LineMarker
	}
	return out
}
