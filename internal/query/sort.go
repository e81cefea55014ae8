package query

import (
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"taskmaster/internal/task"
)

// SortKey names an ordering of tasks.
type SortKey string

const (
	SortCreated  SortKey = "created"  // newest first
	SortDueDate  SortKey = "dueDate"  // soonest first, undated last
	SortPriority SortKey = "priority" // most urgent first
	SortTitle    SortKey = "title"    // alphabetical
)

// DefaultSort applies when no or an unknown key is given.
const DefaultSort = SortCreated

// SortKeys lists the recognised keys.
var SortKeys = []SortKey{SortCreated, SortDueDate, SortPriority, SortTitle}

// ParseSortKey maps s to a SortKey. Unknown input yields DefaultSort and false.
func ParseSortKey(s string) (SortKey, bool) {
	if s == "" {
		return DefaultSort, true
	}
	for _, k := range SortKeys {
		if string(k) == s {
			return k, true
		}
	}
	return DefaultSort, false
}

// Sort returns a stably sorted copy of tasks.
func Sort(tasks []task.Task, key SortKey) []task.Task {
	out := slices.Clone(tasks)
	if out == nil {
		out = []task.Task{}
	}

	switch key {
	case SortDueDate:
		slices.SortStableFunc(out, byDueDate)
	case SortPriority:
		slices.SortStableFunc(out, func(a, b task.Task) int {
			return b.Priority.Weight() - a.Priority.Weight()
		})
	case SortTitle:
		// Collators keep internal buffers; one per call.
		c := collate.New(language.Und)
		slices.SortStableFunc(out, func(a, b task.Task) int {
			return c.CompareString(a.Title, b.Title)
		})
	default:
		slices.SortStableFunc(out, func(a, b task.Task) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	}
	return out
}

func byDueDate(a, b task.Task) int {
	switch {
	case a.DueDate == nil && b.DueDate == nil:
		return 0
	case a.DueDate == nil:
		return 1
	case b.DueDate == nil:
		return -1
	default:
		return a.DueDate.Compare(*b.DueDate)
	}
}
