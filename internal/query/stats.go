package query

import (
	"fmt"
	"strings"
	"time"

	"taskmaster/internal/task"
)

// Stats summarizes a collection.
type Stats struct {
	Total     int
	Pending   int // not completed, overdue included
	Completed int
	Overdue   int
}

// Summarize counts tasks by status.
func Summarize(tasks []task.Task, now time.Time) Stats {
	var s Stats
	for _, t := range tasks {
		s.Total++
		switch t.Status(now) {
		case task.StatusCompleted:
			s.Completed++
		case task.StatusOverdue:
			s.Overdue++
		}
	}
	s.Pending = s.Total - s.Completed
	return s
}

// Describe returns a heading naming the active filters.
func Describe(p Params) string {
	var parts []string

	if s := strings.TrimSpace(p.Search); s != "" {
		parts = append(parts, fmt.Sprintf("Search: %q", s))
	}
	if active(p.Category) {
		parts = append(parts, "Category: "+task.Category(p.Category).Label())
	}
	if active(p.Priority) {
		parts = append(parts, "Priority: "+task.Priority(p.Priority).Label())
	}
	if active(p.Status) {
		parts = append(parts, "Status: "+strings.ToUpper(p.Status[:1])+p.Status[1:])
	}

	if len(parts) == 0 {
		return "All Tasks"
	}
	return fmt.Sprintf("Filtered Tasks (%s)", strings.Join(parts, ", "))
}
