// Package persist converts the task collection to and from durable
// key-value storage and the JSON transfer format.
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"taskmaster/internal/kvstore"
	"taskmaster/internal/task"
)

// DefaultKey is the storage key holding the collection.
const DefaultKey = "taskmaster_tasks"

// linksSuffix names the key holding remote ids, relative to the collection key.
const linksSuffix = "_links"

// Adapter bridges a task collection and a kvstore.Store.
type Adapter struct {
	store kvstore.Store
	key   string
	now   func() time.Time
}

// New creates an adapter storing the collection under key.
// An empty key means DefaultKey; a nil now means time.Now.
func New(store kvstore.Store, key string, now func() time.Time) *Adapter {
	if key == "" {
		key = DefaultKey
	}
	if now == nil {
		now = time.Now
	}
	return &Adapter{store: store, key: key, now: now}
}

// Key returns the storage key of the collection.
func (a *Adapter) Key() string { return a.key }

// Save writes the whole collection as one JSON array.
func (a *Adapter) Save(ctx context.Context, tasks []task.Task) error {
	data, err := json.Marshal(encode(tasks))
	if err != nil {
		return &StorageError{Op: "save", Key: a.key, Err: err}
	}
	if err := a.store.Set(ctx, a.key, string(data)); err != nil {
		return &StorageError{Op: "save", Key: a.key, Err: err}
	}
	return nil
}

// Load reads the collection. An absent key is an empty collection.
// Any other failure is returned as a *StorageError alongside whatever could
// be recovered: nothing if the document is unreadable, the valid records if
// only some records are bad.
func (a *Adapter) Load(ctx context.Context) ([]task.Task, error) {
	data, err := a.store.Get(ctx, a.key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return []task.Task{}, nil
	}
	if err != nil {
		return []task.Task{}, &StorageError{Op: "load", Key: a.key, Err: err}
	}

	raw, err := splitArray([]byte(data))
	if err != nil {
		return []task.Task{}, &StorageError{Op: "load", Key: a.key, Err: err}
	}

	now := a.now()
	tasks := make([]task.Task, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	dropped := 0
	for _, r := range raw {
		t, err := decode(r, now)
		if err != nil {
			dropped++
			continue
		}
		if _, dup := seen[t.ID]; dup {
			dropped++
			continue
		}
		seen[t.ID] = struct{}{}
		tasks = append(tasks, t)
	}
	if dropped > 0 {
		return tasks, &StorageError{
			Op:  "load",
			Key: a.key,
			Err: fmt.Errorf("dropped %d invalid record(s)", dropped),
		}
	}
	return tasks, nil
}

// SaveLinks stores the local id to remote id map used by push.
func (a *Adapter) SaveLinks(ctx context.Context, links map[string]string) error {
	key := a.key + linksSuffix
	data, err := json.Marshal(links)
	if err != nil {
		return &StorageError{Op: "save", Key: key, Err: err}
	}
	if err := a.store.Set(ctx, key, string(data)); err != nil {
		return &StorageError{Op: "save", Key: key, Err: err}
	}
	return nil
}

// LoadLinks reads the local id to remote id map. Absent means empty.
func (a *Adapter) LoadLinks(ctx context.Context) (map[string]string, error) {
	key := a.key + linksSuffix
	links := make(map[string]string)
	data, err := a.store.Get(ctx, key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return links, nil
	}
	if err != nil {
		return links, &StorageError{Op: "load", Key: key, Err: err}
	}
	if err := json.Unmarshal([]byte(data), &links); err != nil {
		return make(map[string]string), &StorageError{Op: "load", Key: key, Err: err}
	}
	return links, nil
}

// ExportBlob renders tasks as an indented JSON array.
func ExportBlob(tasks []task.Task) ([]byte, error) {
	return json.MarshalIndent(encode(tasks), "", "  ")
}

// ImportResult is the outcome of a successful import.
type ImportResult struct {
	Accepted []task.Task
	Rejected int
}

// ImportBlob parses an exported array. Accepted records get fresh ids
// that collide neither with existing nor with each other.
// A non-array document or one with no acceptable record is rejected whole.
func ImportBlob(data []byte, existing []task.Task, now time.Time) (ImportResult, error) {
	raw, err := splitArray(data)
	if err != nil {
		return ImportResult{}, &ImportFormatError{Reason: "invalid file format", Err: err}
	}

	taken := task.Collection(existing).IDs()
	var res ImportResult
	for _, r := range raw {
		t, err := decode(r, now)
		if err != nil {
			res.Rejected++
			continue
		}
		t.ID = freshID(taken)
		taken[t.ID] = struct{}{}
		res.Accepted = append(res.Accepted, t)
	}

	if len(res.Accepted) == 0 {
		return ImportResult{}, &ImportFormatError{Reason: "no valid tasks found"}
	}
	return res, nil
}

func freshID(taken map[string]struct{}) string {
	for {
		id := task.NewID()
		if _, ok := taken[id]; !ok {
			return id
		}
	}
}
