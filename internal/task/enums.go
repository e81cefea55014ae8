package task

import "strings"

// Category groups tasks by life area.
type Category string

const (
	CategoryPersonal Category = "personal"
	CategoryWork     Category = "work"
	CategoryStudy    Category = "study"
	CategoryHealth   Category = "health"
	CategoryFinance  Category = "finance"
	CategoryOther    Category = "other"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryPersonal, CategoryWork, CategoryStudy,
	CategoryHealth, CategoryFinance, CategoryOther,
}

var categoryLabels = map[Category]string{
	CategoryPersonal: "Personal",
	CategoryWork:     "Work",
	CategoryStudy:    "Study",
	CategoryHealth:   "Health",
	CategoryFinance:  "Finance",
	CategoryOther:    "Other",
}

// ParseCategory normalizes s, coercing unknown values to CategoryOther.
func ParseCategory(s string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := categoryLabels[c]; ok {
		return c
	}
	return CategoryOther
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label returns the human-readable name.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// Priority ranks urgency.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// DefaultPriority is used when input names no known priority.
const DefaultPriority = PriorityMedium

// Priorities lists every priority from lowest to highest.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

var priorityWeights = map[Priority]int{
	PriorityLow:    1,
	PriorityMedium: 2,
	PriorityHigh:   3,
	PriorityUrgent: 4,
}

// ParsePriority normalizes s, substituting DefaultPriority for unknown values.
func ParsePriority(s string) Priority {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := priorityWeights[p]; ok {
		return p
	}
	return DefaultPriority
}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	_, ok := priorityWeights[p]
	return ok
}

// Weight returns the sort weight: low=1 ... urgent=4, 0 if unknown.
func (p Priority) Weight() int {
	return priorityWeights[p]
}

// Label returns the human-readable name.
func (p Priority) Label() string {
	if !p.Valid() {
		return string(p)
	}
	return strings.ToUpper(string(p[:1])) + string(p[1:])
}
