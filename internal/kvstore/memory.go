package kvstore

import (
	"context"
	"maps"
	"sync"
)

// Memory is an in-process Store.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]string
	quota   int64
}

// NewMemory creates an empty in-memory store. A quota <= 0 is unlimited.
func NewMemory(quota int64) *Memory {
	return &Memory{
		entries: make(map[string]string),
		quota:   quota,
	}
}

// Get implements Store.
func (m *Memory) Get(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Set implements Store.
func (m *Memory) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := maps.Clone(m.entries)
	next[key] = value
	if overQuota(next, m.quota) {
		return ErrQuotaExceeded
	}
	m.entries = next
	return nil
}

// Delete implements Store.
func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// Close implements Store.
func (m *Memory) Close() error { return nil }
