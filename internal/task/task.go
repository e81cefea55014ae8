// Package task defines the task entity and its lifecycle.
package task

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Task is a single user-tracked to-do item.
type Task struct {
	ID          string
	Title       string
	Description string
	Category    Category
	Priority    Priority
	DueDate     *time.Time // nil means no due date
	Completed   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time // set iff Completed
}

// Input holds the user-editable fields of a task.
type Input struct {
	Title       string
	Description string
	Category    string
	Priority    string
	DueDate     *time.Time
}

// Status is the derived display state of a task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusOverdue   Status = "overdue"
)

// NewID returns a fresh task identifier.
func NewID() string {
	return uuid.NewString()
}

// New creates a pending task from user input.
// Returns a joined set of *ValidationError if the input is invalid.
func New(in Input, now time.Time) (Task, error) {
	if err := Validate(in.Title, in.Description); err != nil {
		return Task{}, err
	}
	return Task{
		ID:          NewID(),
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Category:    ParseCategory(in.Category),
		Priority:    ParsePriority(in.Priority),
		DueDate:     copyTime(in.DueDate),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Complete marks the task completed.
// Applying it to a completed task only refreshes UpdatedAt.
func (t Task) Complete(now time.Time) Task {
	if !t.Completed {
		t.Completed = true
		at := now
		t.CompletedAt = &at
	}
	t.UpdatedAt = t.stamp(now)
	return t
}

// Reopen marks the task pending again and clears CompletedAt.
func (t Task) Reopen(now time.Time) Task {
	t.Completed = false
	t.CompletedAt = nil
	t.UpdatedAt = t.stamp(now)
	return t
}

// Toggle flips the completion flag.
func (t Task) Toggle(now time.Time) Task {
	if t.Completed {
		return t.Reopen(now)
	}
	return t.Complete(now)
}

// Update replaces the editable fields after re-validating them.
// The receiver is returned unchanged on error.
func (t Task) Update(in Input, now time.Time) (Task, error) {
	if err := Validate(in.Title, in.Description); err != nil {
		return t, err
	}
	t.Title = strings.TrimSpace(in.Title)
	t.Description = strings.TrimSpace(in.Description)
	t.Category = ParseCategory(in.Category)
	t.Priority = ParsePriority(in.Priority)
	t.DueDate = copyTime(in.DueDate)
	t.UpdatedAt = t.stamp(now)
	return t, nil
}

// Input returns the editable fields of t, suitable for a partial edit.
func (t Task) Input() Input {
	return Input{
		Title:       t.Title,
		Description: t.Description,
		Category:    string(t.Category),
		Priority:    string(t.Priority),
		DueDate:     copyTime(t.DueDate),
	}
}

// IsOverdue reports whether an open task is past its due date.
func (t Task) IsOverdue(now time.Time) bool {
	if t.Completed || t.DueDate == nil {
		return false
	}
	return t.DueDate.Before(now)
}

// Status derives the display state at the given instant.
func (t Task) Status(now time.Time) Status {
	switch {
	case t.Completed:
		return StatusCompleted
	case t.IsOverdue(now):
		return StatusOverdue
	default:
		return StatusPending
	}
}

// stamp keeps UpdatedAt >= CreatedAt when the clock goes backwards.
func (t Task) stamp(now time.Time) time.Time {
	if now.Before(t.CreatedAt) {
		return t.CreatedAt
	}
	return now
}

func copyTime(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
