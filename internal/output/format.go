// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"taskmaster/internal/query"
	"taskmaster/internal/task"
)

const (
	// ListSeparator is the separator line around list headers.
	ListSeparator = "------------"

	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"
)

// Location is the zone dates are displayed in.
var Location = time.Local

// Status markers.
const (
	markPending   = "[ ]"
	markCompleted = "[x]"
	markOverdue   = "[!]"
)

// FormatTask formats a task line.
// Format: "{N:>4}  {MARK} {TITLE} ({priority}, {category}[, due {DATE}])\n"
func FormatTask(w io.Writer, num int, t task.Task, now time.Time) {
	meta := []string{string(t.Priority), string(t.Category)}
	if t.DueDate != nil {
		meta = append(meta, "due "+FormatDate(*t.DueDate))
	}
	fmt.Fprintf(w, "%4d  %s %s (%s)\n", num, marker(t, now), normalizeTitle(t.Title), strings.Join(meta, ", "))
}

// FormatHeader formats a list header.
func FormatHeader(w io.Writer, title string) {
	fmt.Fprintln(w, ListSeparator)
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, ListSeparator)
}

// FormatPageFooter formats the pagination line under a list.
func FormatPageFooter(w io.Writer, r query.Result) {
	noun := "tasks"
	if r.Total == 1 {
		noun = "task"
	}
	fmt.Fprintf(w, "page %d/%d (%d %s)\n", r.Page, r.TotalPages, r.Total, noun)
}

// FormatDetails formats every field of a task, one per line.
func FormatDetails(w io.Writer, t task.Task, now time.Time) {
	row := func(label, value string) {
		fmt.Fprintf(w, "%-12s %s\n", label+":", value)
	}
	row("id", t.ID)
	row("title", normalizeTitle(t.Title))
	if t.Description != "" {
		row("description", normalizeTitle(t.Description))
	}
	row("category", t.Category.Label())
	row("priority", t.Priority.Label())
	row("status", string(t.Status(now)))
	if t.DueDate != nil {
		row("due", FormatDate(*t.DueDate))
	}
	row("created", t.CreatedAt.In(Location).Format(dateTimeLayout))
	row("updated", t.UpdatedAt.In(Location).Format(dateTimeLayout))
	if t.CompletedAt != nil {
		row("completed", t.CompletedAt.In(Location).Format(dateTimeLayout))
	}
}

// FormatStats formats the collection counters.
func FormatStats(w io.Writer, s query.Stats) {
	fmt.Fprintf(w, "%-10s %d\n", "total", s.Total)
	fmt.Fprintf(w, "%-10s %d\n", "pending", s.Pending)
	fmt.Fprintf(w, "%-10s %d\n", "completed", s.Completed)
	fmt.Fprintf(w, "%-10s %d\n", "overdue", s.Overdue)
}

// FormatDate formats a due date, omitting the time of day at midnight.
func FormatDate(d time.Time) string {
	d = d.In(Location)
	if d.Hour() == 0 && d.Minute() == 0 && d.Second() == 0 {
		return d.Format(dateLayout)
	}
	return d.Format(dateTimeLayout)
}

func marker(t task.Task, now time.Time) string {
	switch t.Status(now) {
	case task.StatusCompleted:
		return markCompleted
	case task.StatusOverdue:
		return markOverdue
	default:
		return markPending
	}
}

// normalizeTitle normalizes a title for single-line display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
