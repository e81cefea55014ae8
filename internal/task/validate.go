package task

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Field limits, counted in runes after trimming.
const (
	MinTitleLen       = 3
	MaxTitleLen       = 100
	MaxDescriptionLen = 500
)

// ValidationError reports a single field that fails its constraints.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Validate checks title and description lengths.
// Every failing field is reported; the result wraps one *ValidationError per field.
func Validate(title, description string) error {
	var errs []error

	n := utf8.RuneCountInString(strings.TrimSpace(title))
	switch {
	case n < MinTitleLen:
		errs = append(errs, &ValidationError{
			Field:  "title",
			Reason: fmt.Sprintf("must be at least %d characters long", MinTitleLen),
		})
	case n > MaxTitleLen:
		errs = append(errs, &ValidationError{
			Field:  "title",
			Reason: fmt.Sprintf("must be at most %d characters long", MaxTitleLen),
		})
	}

	if utf8.RuneCountInString(strings.TrimSpace(description)) > MaxDescriptionLen {
		errs = append(errs, &ValidationError{
			Field:  "description",
			Reason: fmt.Sprintf("must be at most %d characters long", MaxDescriptionLen),
		})
	}

	return errors.Join(errs...)
}

// ValidationErrors flattens err into its field errors.
func ValidationErrors(err error) []*ValidationError {
	var out []*ValidationError
	var walk func(error)
	walk = func(e error) {
		if e == nil {
			return
		}
		if ve, ok := e.(*ValidationError); ok {
			out = append(out, ve)
			return
		}
		if j, ok := e.(interface{ Unwrap() []error }); ok {
			for _, inner := range j.Unwrap() {
				walk(inner)
			}
			return
		}
		walk(errors.Unwrap(e))
	}
	walk(err)
	return out
}

var dueLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDue parses a due date. Layouts without a zone are read in loc.
// An empty string means no due date.
func ParseDue(s string, loc *time.Location) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range dueLayouts {
		var (
			t   time.Time
			err error
		)
		if layout == time.RFC3339Nano {
			t, err = time.Parse(layout, s)
		} else {
			t, err = time.ParseInLocation(layout, s, loc)
		}
		if err == nil {
			return &t, nil
		}
	}
	return nil, &ValidationError{Field: "dueDate", Reason: fmt.Sprintf("invalid date: %s", s)}
}
