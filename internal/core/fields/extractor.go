package fields

import (
	"slices"
	"strings"

	"github.com/joseph-ayodele/sugar-reports/constants"
	"github.com/joseph-ayodele/sugar-reports/internal/core/matcher"
	"github.com/joseph-ayodele/sugar-reports/internal/entity"
)

// tokenUnit is the unit spelling accepted by the token rules.
const tokenUnit = "mg/dl"

// Extraction holds readings before dedup. Both paths append here.
type Extraction struct {
	Fasting   []entity.Reading
	PostLunch []entity.Reading
}

func (e *Extraction) add(c constants.Category, r entity.Reading) {
	switch c {
	case constants.Fasting:
		e.Fasting = append(e.Fasting, r)
	case constants.PostLunch:
		e.PostLunch = append(e.PostLunch, r)
	}
}

func (e *Extraction) merge(o Extraction) {
	e.Fasting = append(e.Fasting, o.Fasting...)
	e.PostLunch = append(e.PostLunch, o.PostLunch...)
}

// Len is the total number of readings across categories.
func (e Extraction) Len() int {
	return len(e.Fasting) + len(e.PostLunch)
}

// Extractor runs both extraction paths. It holds only the shared Resources
// and is safe for concurrent use.
type Extractor struct {
	res *Resources
}

func NewExtractor(res *Resources) *Extractor {
	return &Extractor{res: res}
}

// Extract unions the token-rule and line-scan readings of text.
func (x *Extractor) Extract(text string) Extraction {
	out := x.MatchTokens(text)
	out.merge(x.ScanLines(text))
	return out
}

// MatchTokens applies the token rules. For each hit the numeric token is the
// value and a mg/dl token, if present, is the unit (lowercased).
func (x *Extractor) MatchTokens(text string) Extraction {
	var out Extraction
	if len(x.res.rules) == 0 {
		return out
	}

	tokens := matcher.Tokenize(text)
	for _, m := range matcher.FindAll(x.res.rules, tokens) {
		var value, unit string
		for _, tok := range m.Window(tokens) {
			switch {
			case tok.LikeNum:
				value = tok.Text
			case tok.Lower == tokenUnit:
				unit = tok.Lower
			}
		}
		if value == "" {
			continue
		}
		out.add(m.Rule.Category, entity.Reading{Value: value, Unit: unit})
	}
	return out
}

// ScanLines looks for the fixed layout "<MARKER> <number> mg/dL", one reading
// per matching line and marker. Markers are case-sensitive. Only the markers
// the automaton reports for a line are tried against it.
func (x *Extractor) ScanLines(text string) Extraction {
	var out Extraction
	if x.res.automaton == nil {
		return out
	}

	for line := range strings.Lines(text) {
		hits := x.res.automaton.MatchThreadSafe([]byte(line))
		if len(hits) == 0 {
			continue
		}
		slices.Sort(hits)
		for _, idx := range hits {
			m := x.res.markers[idx]
			sm := m.pattern.FindStringSubmatch(line)
			if sm == nil {
				continue
			}
			out.add(m.Category, entity.Reading{Value: sm[1], Unit: LayoutUnit})
		}
	}
	return out
}
