// Package service defines the operations the front end performs on the
// task collection.
package service

import (
	"context"
	"errors"

	"taskmaster/internal/persist"
	"taskmaster/internal/query"
	"taskmaster/internal/task"
)

// ErrNotFound is returned when no task has the requested id.
var ErrNotFound = errors.New("task not found")

// Service defines the interface for task operations.
// Commands never touch storage directly.
//
// Mutations persist the collection before returning. When that write fails
// the mutation still takes effect in memory and the returned error is a
// *persist.StorageError.
type Service interface {
	// Tasks returns the whole collection in creation order, newest first.
	Tasks(ctx context.Context) ([]task.Task, error)

	// Get returns the task with the given id.
	Get(ctx context.Context, id string) (task.Task, error)

	// Create validates input and adds a new task.
	Create(ctx context.Context, in task.Input) (task.Task, error)

	// Update replaces the editable fields of a task.
	Update(ctx context.Context, id string, in task.Input) (task.Task, error)

	// Complete marks a task completed.
	Complete(ctx context.Context, id string) (task.Task, error)

	// Reopen marks a task pending again.
	Reopen(ctx context.Context, id string) (task.Task, error)

	// Toggle flips a task between completed and pending.
	Toggle(ctx context.Context, id string) (task.Task, error)

	// Delete removes a task.
	Delete(ctx context.Context, id string) error

	// Clear removes every task and returns how many were removed.
	Clear(ctx context.Context) (int, error)

	// Query filters, sorts and paginates the collection.
	Query(ctx context.Context, p query.Params) (query.Result, error)

	// Stats summarizes the collection.
	Stats(ctx context.Context) (query.Stats, error)

	// Export renders the collection in the transfer format.
	Export(ctx context.Context) ([]byte, error)

	// Import merges tasks from an exported document.
	Import(ctx context.Context, data []byte) (persist.ImportResult, error)

	// RemoteLinks returns the local id to remote id map used by push.
	RemoteLinks(ctx context.Context) (map[string]string, error)

	// SetRemoteLinks replaces the local id to remote id map.
	SetRemoteLinks(ctx context.Context, links map[string]string) error

	// Warning returns a non-fatal problem found while loading, if any.
	Warning() error

	// Close flushes unsaved changes and releases storage.
	Close() error
}
