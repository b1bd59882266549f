package domain

import "strings"

// Category is the closed set of milestone categories.
type Category string

const (
	CategoryFirst     Category = "first"
	CategoryHealth    Category = "health"
	CategoryEducation Category = "education"
	CategoryPlay      Category = "play"
	CategoryTravel    Category = "travel"
	CategoryHoliday   Category = "holiday"
	CategoryOther     Category = "other"
)

// FilterAll is the timeline pseudo-category that disables filtering.
const FilterAll = "all"

type categoryInfo struct {
	label string
	emoji string
}

var categoryInfos = map[Category]categoryInfo{
	CategoryFirst:     {"第一次", "🌟"},
	CategoryHealth:    {"健康", "💪"},
	CategoryEducation: {"教育", "📚"},
	CategoryPlay:      {"玩耍", "🎉"},
	CategoryTravel:    {"出行", "✈️"},
	CategoryHoliday:   {"节日", "🎄"},
	CategoryOther:     {"其他", "📝"},
}

// Categories lists every category in display order.
func Categories() []Category {
	return []Category{
		CategoryFirst, CategoryHealth, CategoryEducation, CategoryPlay,
		CategoryTravel, CategoryHoliday, CategoryOther,
	}
}

// IsValid reports whether c is one of the known categories.
func (c Category) IsValid() bool {
	_, ok := categoryInfos[c]
	return ok
}

// Label returns the display label, falling back to the "other" label.
func (c Category) Label() string {
	if info, ok := categoryInfos[c]; ok {
		return info.label
	}
	return categoryInfos[CategoryOther].label
}

// Emoji returns the card emoji, falling back to the "other" emoji.
func (c Category) Emoji() string {
	if info, ok := categoryInfos[c]; ok {
		return info.emoji
	}
	return categoryInfos[CategoryOther].emoji
}

// ParseCategory validates user input. An empty value yields CategoryOther.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CategoryOther, nil
	}
	c := Category(s)
	if !c.IsValid() {
		return "", NewValidationError("category", "unknown category "+s)
	}
	return c, nil
}

// ParseFilter validates a timeline filter value: "all" or a category.
func ParseFilter(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == FilterAll {
		return FilterAll, nil
	}
	if !Category(s).IsValid() {
		return "", NewValidationError("filter", "unknown category "+s)
	}
	return s, nil
}

// FilterLabel returns the label shown on a filter chip.
func FilterLabel(filter string) string {
	if filter == FilterAll {
		return "全部"
	}
	return Category(filter).Label()
}
