package entity

import (
	"encoding/json"
	"strings"

	"github.com/joseph-ayodele/sugar-reports/constants"
)

// DefaultUnitLabel is rendered when no unit token was found next to the value.
const DefaultUnitLabel = "(mg/dl)"

// Reading is one extracted value. Two readings are the same reading when their
// Values are equal and their Units are equal ignoring case (see Key).
type Reading struct {
	Value string `json:"value"`
	Unit  string `json:"unit,omitempty"` // empty when no unit token was found
}

// String renders the display/wire form: "95 mg/dl", or "95 (mg/dl)" without a unit.
func (r Reading) String() string {
	if r.Unit != "" {
		return r.Value + " " + r.Unit
	}
	return r.Value + " " + DefaultUnitLabel
}

// Key is the dedup identity of r: the unit is case-folded so "mg/dL" and
// "mg/dl" are one unit.
func (r Reading) Key() Reading {
	return Reading{Value: r.Value, Unit: strings.ToLower(r.Unit)}
}

// ReportRecord is the assembled result for one document.
type ReportRecord struct {
	Month     *string
	Fasting   []Reading
	PostLunch []Reading
}

// Readings returns the readings for a category.
func (r ReportRecord) Readings(c constants.Category) []Reading {
	switch c {
	case constants.Fasting:
		return r.Fasting
	case constants.PostLunch:
		return r.PostLunch
	default:
		return nil
	}
}

// MonthOrEmpty returns the month string or "" when absent.
func (r ReportRecord) MonthOrEmpty() string {
	if r.Month == nil {
		return ""
	}
	return *r.Month
}

type recordJSON struct {
	Month     *string  `json:"month"`
	Fasting   []string `json:"fasting"`
	PostLunch []string `json:"post_lunch"`
}

func (r ReportRecord) wire() recordJSON {
	return recordJSON{
		Month:     r.Month,
		Fasting:   renderReadings(r.Fasting),
		PostLunch: renderReadings(r.PostLunch),
	}
}

// MarshalJSON emits {"month": ..., "fasting": [...], "post_lunch": [...]}; the reading
// arrays are never null.
func (r ReportRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.wire())
}

func renderReadings(in []Reading) []string {
	out := make([]string, 0, len(in))
	for _, rd := range in {
		out = append(out, rd.String())
	}
	return out
}
