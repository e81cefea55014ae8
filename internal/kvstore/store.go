// Package kvstore provides flat string key-value storage backends.
package kvstore

import (
	"context"
	"errors"
	"fmt"
)

// DefaultQuota mirrors the per-origin budget of browser local storage.
const DefaultQuota = 5 << 20

var (
	// ErrNotFound is returned by Get when the key is absent.
	ErrNotFound = errors.New("key not found")

	// ErrQuotaExceeded is returned by Set when the write would exceed the quota.
	ErrQuotaExceeded = errors.New("storage quota exceeded")

	// ErrCorrupt is returned by Get when the backing data cannot be parsed.
	ErrCorrupt = errors.New("corrupt storage")
)

// Store is a flat string key-value store.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the store.
	Close() error
}

// Backend names.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendMySQL  = "mysql"
)

// Options selects and configures a backend.
type Options struct {
	Backend string // memory, file or mysql; empty means file
	Path    string // file backend: data file path
	DSN     string // mysql backend: data source name
	Quota   int64  // bytes; 0 means DefaultQuota, negative disables the limit
}

func (o Options) quota() int64 {
	if o.Quota == 0 {
		return DefaultQuota
	}
	return o.Quota
}

// Open creates the backend named by opts.Backend.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "", BackendFile:
		if opts.Path == "" {
			return nil, fmt.Errorf("file storage requires a path")
		}
		return NewFile(opts.Path, opts.quota()), nil
	case BackendMemory:
		return NewMemory(opts.quota()), nil
	case BackendMySQL:
		return NewMySQL(ctx, opts.DSN, opts.quota())
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", opts.Backend)
	}
}

// overQuota reports whether the entries would exceed quota bytes.
// A quota of zero or less is unlimited.
// Keys and values both count, as in browser storage.
func overQuota(entries map[string]string, quota int64) bool {
	if quota <= 0 {
		return false
	}
	var n int64
	for k, v := range entries {
		n += int64(len(k) + len(v))
	}
	return n > quota
}
