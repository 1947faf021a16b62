// Package dates pulls the reporting month out of free report text.
package dates

import (
	"regexp"
	"strings"
)

var (
	// DD/MM/YYYY anywhere in the text.
	reNumericDate = regexp.MustCompile(`(\d{2})/(\d{2})/(\d{4})`)
	// DD MMM YYYY with an English month abbreviation, any case.
	reAbbrevDate = regexp.MustCompile(`(?i)(\d{2})\s+(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)\s+(\d{4})`)
)

var monthNames = map[string]string{
	"01": "January", "02": "February", "03": "March", "04": "April",
	"05": "May", "06": "June", "07": "July", "08": "August",
	"09": "September", "10": "October", "11": "November", "12": "December",
}

// ExtractMonth returns "<Month> <Year>" or nil when no date is present.
//
// A DD/MM/YYYY date wins whenever one exists, even if a "DD MMM YYYY" date
// appears earlier. Numeric months expand to the full name (unknown codes pass
// through as-is); abbreviations are only capitalized ("MAR" -> "Mar").
func ExtractMonth(text string) *string {
	if m := reNumericDate.FindStringSubmatch(text); m != nil {
		month, year := m[2], m[3]
		name, ok := monthNames[month]
		if !ok {
			name = month
		}
		out := name + " " + year
		return &out
	}
	if m := reAbbrevDate.FindStringSubmatch(text); m != nil {
		out := capitalize(m[2]) + " " + m[3]
		return &out
	}
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	s = strings.ToLower(s)
	return strings.ToUpper(s[:1]) + s[1:]
}
