package fields

import (
	"cmp"
	"slices"

	"github.com/joseph-ayodele/sugar-reports/internal/entity"
)

// Assemble dedups each category by Reading.Key and builds the final record.
// The first surface form of a duplicate is the one kept. Inputs are not
// modified; output slices are new and sorted.
func Assemble(month *string, fasting, postLunch []entity.Reading) entity.ReportRecord {
	return entity.ReportRecord{
		Month:     month,
		Fasting:   dedup(fasting),
		PostLunch: dedup(postLunch),
	}
}

func dedup(in []entity.Reading) []entity.Reading {
	seen := make(map[entity.Reading]struct{}, len(in))
	out := make([]entity.Reading, 0, len(in))
	for _, r := range in {
		k := r.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b entity.Reading) int {
		return cmp.Or(cmp.Compare(a.Value, b.Value), cmp.Compare(a.Unit, b.Unit))
	})
	return out
}
