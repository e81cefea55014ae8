package commands

import (
	"context"
	"strconv"
	"strings"
	"unicode"

	"taskmaster/internal/service"
	"taskmaster/internal/task"
)

// MinIDPrefix is the shortest id prefix accepted as a task reference.
const MinIDPrefix = 4

// TaskRef represents a parsed task reference.
type TaskRef struct {
	Num    int    // 1-based position in the default ordering; 0 if Prefix is set
	Prefix string // leading characters of a task id
}

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = &UsageError{msg: "task reference required"}

// ParseTaskRef parses a task reference from args.
//
// Parsing rules:
// 1. If first arg is all digits → position in `taskmaster list` without flags
// 2. If first arg is at least MinIDPrefix id characters → id prefix
// 3. Otherwise → error: invalid task reference: <ref>
func ParseTaskRef(args []string) (TaskRef, error) {
	if len(args) == 0 {
		return TaskRef{}, ErrTaskRefRequired
	}
	if len(args) > 1 {
		return TaskRef{}, usageErrorf("unexpected argument: %s", args[1])
	}

	ref := strings.TrimSpace(args[0])

	if isAllDigits(ref) {
		num, err := strconv.Atoi(ref)
		if err != nil || num < 1 {
			return TaskRef{}, usageErrorf("task number out of range: %s", ref)
		}
		return TaskRef{Num: num}, nil
	}

	if len(ref) >= MinIDPrefix && isIDChars(ref) {
		return TaskRef{Prefix: strings.ToLower(ref)}, nil
	}

	return TaskRef{}, usageErrorf("invalid task reference: %s", ref)
}

// ResolveTask parses args and finds the referenced task.
func ResolveTask(ctx context.Context, svc service.Service, args []string) (task.Task, error) {
	ref, err := ParseTaskRef(args)
	if err != nil {
		return task.Task{}, err
	}

	tasks, err := svc.Tasks(ctx)
	if err != nil {
		return task.Task{}, err
	}

	if ref.Prefix == "" {
		if ref.Num > len(tasks) {
			return task.Task{}, usageErrorf("task number out of range: %d", ref.Num)
		}
		return tasks[ref.Num-1], nil
	}

	var matches []task.Task
	for _, t := range tasks {
		if strings.HasPrefix(strings.ToLower(t.ID), ref.Prefix) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return task.Task{}, usageErrorf("task not found: %s", ref.Prefix)
	case 1:
		return matches[0], nil
	default:
		return task.Task{}, usageErrorf("ambiguous task id: %s", ref.Prefix)
	}
}

// positions maps task ids to their 1-based position in the default ordering.
func positions(ctx context.Context, svc service.Service) (map[string]int, error) {
	tasks, err := svc.Tasks(ctx)
	if err != nil {
		return nil, err
	}
	pos := make(map[string]int, len(tasks))
	for i, t := range tasks {
		pos[t.ID] = i + 1
	}
	return pos, nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// isIDChars returns true if s could be the start of a task id.
func isIDChars(s string) bool {
	for _, r := range s {
		if r != '-' && r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
