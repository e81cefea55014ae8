package persist

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"taskmaster/internal/task"
)

// record is the wire shape of a task. Every field is optional on input so
// that each one can be checked and defaulted explicitly.
type record struct {
	ID          *string `json:"id"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Priority    *string `json:"priority"`
	DueDate     *string `json:"dueDate"`
	Completed   *bool   `json:"completed"`
	CreatedAt   *string `json:"createdAt"`
	UpdatedAt   *string `json:"updatedAt"`
	CompletedAt *string `json:"completedAt"`
}

// outRecord is the wire shape written out; absent times are null.
type outRecord struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Priority    string  `json:"priority"`
	DueDate     *string `json:"dueDate"`
	Completed   bool    `json:"completed"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
	CompletedAt *string `json:"completedAt"`
}

// timeLayout is ISO-8601 in UTC with as much precision as the value has.
const timeLayout = time.RFC3339Nano

func encodeTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func encodeOptTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := encodeTime(*t)
	return &s
}

func encode(tasks []task.Task) []outRecord {
	out := make([]outRecord, len(tasks))
	for i, t := range tasks {
		out[i] = outRecord{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			Category:    string(t.Category),
			Priority:    string(t.Priority),
			DueDate:     encodeOptTime(t.DueDate),
			Completed:   t.Completed,
			CreatedAt:   encodeTime(t.CreatedAt),
			UpdatedAt:   encodeTime(t.UpdatedAt),
			CompletedAt: encodeOptTime(t.CompletedAt),
		}
	}
	return out
}

// splitArray parses data as a JSON array without interpreting its elements.
func splitArray(data []byte) ([]json.RawMessage, error) {
	trimmed := strings.TrimSpace(string(data))
	if !strings.HasPrefix(trimmed, "[") {
		return nil, fmt.Errorf("expected a JSON array")
	}
	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// decode builds a task from one raw element.
// Records must carry a non-empty id, title, category and priority;
// everything else is defaulted so the task invariants hold. Over-long
// titles and descriptions are cut to the field limits; a title shorter
// than task.MinTitleLen rejects the record.
func decode(raw json.RawMessage, now time.Time) (task.Task, error) {
	var r record
	if err := json.Unmarshal(raw, &r); err != nil {
		return task.Task{}, err
	}

	id, title := nonEmpty(r.ID), clip(nonEmpty(r.Title), task.MaxTitleLen)
	category, priority := nonEmpty(r.Category), nonEmpty(r.Priority)
	switch {
	case id == "":
		return task.Task{}, fmt.Errorf("missing id")
	case title == "":
		return task.Task{}, fmt.Errorf("missing title")
	case category == "":
		return task.Task{}, fmt.Errorf("missing category")
	case priority == "":
		return task.Task{}, fmt.Errorf("missing priority")
	case utf8.RuneCountInString(title) < task.MinTitleLen:
		return task.Task{}, fmt.Errorf("title too short: %q", title)
	}

	t := task.Task{
		ID:       id,
		Title:    title,
		Category: task.ParseCategory(category),
		Priority: task.ParsePriority(priority),
	}
	if r.Description != nil {
		t.Description = clip(strings.TrimSpace(*r.Description), task.MaxDescriptionLen)
	}
	if r.DueDate != nil {
		due, err := task.ParseDue(*r.DueDate, time.Local)
		if err != nil {
			return task.Task{}, err
		}
		t.DueDate = due
	}

	created, ok := parseTime(r.CreatedAt)
	if !ok {
		created = now
	}
	t.CreatedAt = created

	updated, ok := parseTime(r.UpdatedAt)
	if !ok || updated.Before(created) {
		updated = created
	}
	t.UpdatedAt = updated

	if r.Completed != nil && *r.Completed {
		t.Completed = true
		completed, ok := parseTime(r.CompletedAt)
		if !ok {
			completed = updated
		}
		t.CompletedAt = &completed
	}
	return t, nil
}

// clip cuts s to at most n runes and trims the space the cut may expose.
func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:n]))
}

func nonEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func parseTime(s *string) (time.Time, bool) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(timeLayout, strings.TrimSpace(*s))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
