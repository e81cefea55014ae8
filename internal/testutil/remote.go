package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"taskmaster/internal/task"
)

// FakeRemote is an in-memory push target for testing.
type FakeRemote struct {
	mu     sync.Mutex
	lists  map[string]string // lowercased title -> id
	tasks  map[string]task.Task
	nextID int

	// Error injection for testing
	EnsureListErr error
	UpsertErr     map[string]error // local task id -> error
}

// NewFakeRemote creates an empty FakeRemote.
func NewFakeRemote() *FakeRemote {
	return &FakeRemote{
		lists:     make(map[string]string),
		tasks:     make(map[string]task.Task),
		UpsertErr: make(map[string]error),
	}
}

// EnsureList returns the id of the named list, creating it if needed.
func (f *FakeRemote) EnsureList(ctx context.Context, name string) (string, error) {
	if f.EnsureListErr != nil {
		return "", f.EnsureListErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	key := strings.ToLower(strings.TrimSpace(name))
	if id, ok := f.lists[key]; ok {
		return id, nil
	}
	id := fmt.Sprintf("list-%d", len(f.lists)+1)
	f.lists[key] = id
	return id, nil
}

// Upsert stores t under remoteID, or under a new id if remoteID is empty
// or unknown.
func (f *FakeRemote) Upsert(ctx context.Context, listID, remoteID string, t task.Task) (string, error) {
	if err := f.UpsertErr[t.ID]; err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.tasks[remoteID]; !ok || remoteID == "" {
		f.nextID++
		remoteID = fmt.Sprintf("remote-%d", f.nextID)
	}
	f.tasks[remoteID] = t
	return remoteID, nil
}

// Lists returns the number of lists created.
func (f *FakeRemote) Lists() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.lists)
}

// Task returns the task stored under remoteID.
func (f *FakeRemote) Task(remoteID string) (task.Task, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[remoteID]
	return t, ok
}

// Len returns the number of remote tasks.
func (f *FakeRemote) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tasks)
}
