// Package query computes the page of tasks to display for a set of
// search, filter, sort and paging parameters.
package query

import (
	"strings"
	"time"

	"taskmaster/internal/task"
)

// All is the filter value that disables a filter.
const All = "all"

// DefaultPageSize is used when Params.PageSize is not positive.
const DefaultPageSize = 12

// Params selects which tasks are displayed.
// Empty filter fields behave like All.
type Params struct {
	Search   string
	Category string
	Priority string
	Status   string
	Sort     SortKey
	Page     int // 1-based
	PageSize int
}

// Result is one page of the filtered and sorted sequence.
type Result struct {
	Tasks      []task.Task
	Page       int // effective page after clamping
	TotalPages int // 0 when nothing matched
	Total      int // number of tasks across all pages
}

// Empty reports whether no task matched the filters.
// This is the empty-state signal, not an error.
func (r Result) Empty() bool {
	return r.Total == 0
}

// Run filters, sorts and paginates tasks, in that order.
// The input slice is not modified.
func Run(tasks []task.Task, p Params, now time.Time) Result {
	matched := Filter(tasks, p, now)
	sorted := Sort(matched, p.Sort)
	page, pageNum, totalPages := Paginate(sorted, p.Page, p.PageSize)
	return Result{
		Tasks:      page,
		Page:       pageNum,
		TotalPages: totalPages,
		Total:      len(sorted),
	}
}

// Filter applies the search, category, priority and status filters.
func Filter(tasks []task.Task, p Params, now time.Time) []task.Task {
	search := strings.ToLower(strings.TrimSpace(p.Search))
	out := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if search != "" && !matchesSearch(t, search) {
			continue
		}
		if active(p.Category) && string(t.Category) != p.Category {
			continue
		}
		if active(p.Priority) && string(t.Priority) != p.Priority {
			continue
		}
		if active(p.Status) && string(t.Status(now)) != p.Status {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Paginate slices out the requested 1-based page.
// Out-of-range pages are clamped; an empty input yields zero pages.
func Paginate(tasks []task.Task, page, size int) ([]task.Task, int, int) {
	if size <= 0 {
		size = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	if len(tasks) == 0 {
		return []task.Task{}, 1, 0
	}

	totalPages := (len(tasks) + size - 1) / size
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * size
	end := start + size
	if end > len(tasks) {
		end = len(tasks)
	}
	out := make([]task.Task, end-start)
	copy(out, tasks[start:end])
	return out, page, totalPages
}

func matchesSearch(t task.Task, lowered string) bool {
	return strings.Contains(strings.ToLower(t.Title), lowered) ||
		strings.Contains(strings.ToLower(t.Description), lowered)
}

func active(filter string) bool {
	return filter != "" && filter != All
}
