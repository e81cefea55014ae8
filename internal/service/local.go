package service

import (
	"context"
	"io"
	"log"
	"sync"
	"time"

	"taskmaster/internal/kvstore"
	"taskmaster/internal/persist"
	"taskmaster/internal/query"
	"taskmaster/internal/task"
)

// Options configures a Local service.
type Options struct {
	// Key is the storage key of the collection; empty means persist.DefaultKey.
	Key string

	// Now returns the current time; nil means time.Now.
	Now func() time.Time

	// Log receives debug output; nil discards it.
	Log *log.Logger
}

// Local implements Service over an in-memory collection persisted to a
// kvstore.Store after every mutation.
type Local struct {
	mu      sync.Mutex
	store   kvstore.Store
	adapter *persist.Adapter
	now     func() time.Time
	log     *log.Logger

	tasks   task.Collection
	dirty   bool // in-memory state is ahead of storage
	warning error
}

// Open loads the collection from store.
// Load problems do not fail Open; they are reported by Warning.
func Open(ctx context.Context, store kvstore.Store, opts Options) *Local {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Log
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	s := &Local{
		store:   store,
		adapter: persist.New(store, opts.Key, now),
		now:     now,
		log:     logger,
	}

	tasks, err := s.adapter.Load(ctx)
	if err != nil {
		s.log.Printf("load %s: %v", s.adapter.Key(), err)
		s.warning = err
	}
	s.tasks = task.Collection(tasks)
	s.log.Printf("loaded %d task(s) from %s", len(s.tasks), s.adapter.Key())
	return s
}

// Tasks implements Service.
func (s *Local) Tasks(ctx context.Context) ([]task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return query.Sort(s.tasks, query.SortCreated), nil
}

// Get implements Service.
func (s *Local) Get(ctx context.Context, id string) (task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks.Get(id)
	if !ok {
		return task.Task{}, ErrNotFound
	}
	return t, nil
}

// Create implements Service.
func (s *Local) Create(ctx context.Context, in task.Input) (task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := task.New(in, s.now())
	if err != nil {
		return task.Task{}, err
	}
	return t, s.commit(ctx, s.tasks.Add(t))
}

// Update implements Service.
func (s *Local) Update(ctx context.Context, id string, in task.Input) (task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mutate(ctx, id, func(t task.Task, now time.Time) (task.Task, error) {
		return t.Update(in, now)
	})
}

// Complete implements Service.
func (s *Local) Complete(ctx context.Context, id string) (task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mutate(ctx, id, func(t task.Task, now time.Time) (task.Task, error) {
		return t.Complete(now), nil
	})
}

// Reopen implements Service.
func (s *Local) Reopen(ctx context.Context, id string) (task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mutate(ctx, id, func(t task.Task, now time.Time) (task.Task, error) {
		return t.Reopen(now), nil
	})
}

// Toggle implements Service.
func (s *Local) Toggle(ctx context.Context, id string) (task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mutate(ctx, id, func(t task.Task, now time.Time) (task.Task, error) {
		return t.Toggle(now), nil
	})
}

// Delete implements Service.
func (s *Local) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, ok := s.tasks.Remove(id)
	if !ok {
		return ErrNotFound
	}
	return s.commit(ctx, next)
}

// Clear implements Service.
func (s *Local) Clear(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.tasks)
	if n == 0 {
		return 0, nil
	}
	return n, s.commit(ctx, task.Collection{})
}

// Query implements Service.
func (s *Local) Query(ctx context.Context, p query.Params) (query.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return query.Run(s.tasks, p, s.now()), nil
}

// Stats implements Service.
func (s *Local) Stats(ctx context.Context) (query.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return query.Summarize(s.tasks, s.now()), nil
}

// Export implements Service.
func (s *Local) Export(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return persist.ExportBlob(s.tasks)
}

// Import implements Service.
func (s *Local) Import(ctx context.Context, data []byte) (persist.ImportResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := persist.ImportBlob(data, s.tasks, s.now())
	if err != nil {
		return persist.ImportResult{}, err
	}
	s.log.Printf("import: %d accepted, %d rejected", len(res.Accepted), res.Rejected)
	return res, s.commit(ctx, s.tasks.Merge(res.Accepted))
}

// RemoteLinks implements Service.
func (s *Local) RemoteLinks(ctx context.Context) (map[string]string, error) {
	return s.adapter.LoadLinks(ctx)
}

// SetRemoteLinks implements Service.
func (s *Local) SetRemoteLinks(ctx context.Context, links map[string]string) error {
	return s.adapter.SaveLinks(ctx, links)
}

// Warning implements Service.
func (s *Local) Warning() error {
	return s.warning
}

// Close implements Service.
// A collection left dirty by a failed write gets one more attempt.
func (s *Local) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var flushErr error
	if s.dirty {
		s.log.Printf("flushing unsaved changes to %s", s.adapter.Key())
		flushErr = s.flush(context.Background())
	}
	if err := s.store.Close(); err != nil && flushErr == nil {
		return err
	}
	return flushErr
}

// mutate applies fn to the task with the given id and commits the result.
// Must be called with s.mu held.
func (s *Local) mutate(ctx context.Context, id string, fn func(task.Task, time.Time) (task.Task, error)) (task.Task, error) {
	t, ok := s.tasks.Get(id)
	if !ok {
		return task.Task{}, ErrNotFound
	}
	updated, err := fn(t, s.now())
	if err != nil {
		return t, err
	}
	next, _ := s.tasks.Replace(updated)
	return updated, s.commit(ctx, next)
}

// commit installs next as the collection and persists it.
// Must be called with s.mu held.
func (s *Local) commit(ctx context.Context, next task.Collection) error {
	s.tasks = next
	s.dirty = true
	return s.flush(ctx)
}

func (s *Local) flush(ctx context.Context) error {
	if err := s.adapter.Save(ctx, s.tasks); err != nil {
		s.log.Printf("save failed: %v", err)
		return err
	}
	s.dirty = false
	return nil
}
