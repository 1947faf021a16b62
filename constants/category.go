package constants

// Category tags a reading with the sample it was taken from.
type Category string

const (
	Fasting   Category = "FASTING"
	PostLunch Category = "POST_LUNCH"
)

var allCategories = []Category{
	Fasting,
	PostLunch,
}

// AllCategories returns the categories in display order.
func AllCategories() []Category {
	out := make([]Category, len(allCategories))
	copy(out, allCategories)
	return out
}

// Label is the human-facing column/series name.
func (c Category) Label() string {
	switch c {
	case Fasting:
		return "Fasting"
	case PostLunch:
		return "Post Lunch"
	default:
		return string(c)
	}
}

func AsStringSlice() []string {
	result := make([]string, len(allCategories))
	for i, cat := range allCategories {
		result[i] = string(cat)
	}
	return result
}

func (c Category) Valid() bool {
	switch c {
	case Fasting, PostLunch:
		return true
	}
	return false
}
