package testutil

import (
	"context"
	"testing"

	"taskmaster/internal/kvstore"
	"taskmaster/internal/service"
	"taskmaster/internal/task"
)

// Env bundles a service with the store and clock behind it.
type Env struct {
	Store   *FaultyStore
	Clock   *Clock
	Service *service.Local
}

// NewEnv opens a service over an empty in-memory store.
func NewEnv(t *testing.T) *Env {
	t.Helper()
	return NewEnvWithStore(t, kvstore.NewMemory(0))
}

// NewEnvWithStore opens a service over mem, which may be pre-populated.
func NewEnvWithStore(t *testing.T, mem *kvstore.Memory) *Env {
	t.Helper()
	store := NewFaultyStore(mem)
	clock := NewClock()
	svc := service.Open(context.Background(), store, service.Options{Now: clock.Now})
	return &Env{Store: store, Clock: clock, Service: svc}
}

// AddTask creates a task with the given title and default fields.
// Tasks added later sort first in the default ordering.
func (e *Env) AddTask(t *testing.T, title string) task.Task {
	t.Helper()
	return e.AddTaskInput(t, task.Input{Title: title})
}

// AddTaskInput creates a task from in.
func (e *Env) AddTaskInput(t *testing.T, in task.Input) task.Task {
	t.Helper()
	created, err := e.Service.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("failed to create task %q: %v", in.Title, err)
	}
	return created
}
