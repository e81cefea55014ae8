package testutil

import (
	"context"
	"sync"

	"taskmaster/internal/kvstore"
)

// FaultyStore is a memory store whose reads and writes can be made to fail.
type FaultyStore struct {
	*kvstore.Memory

	mu     sync.Mutex
	getErr error
	setErr error
}

// NewFaultyStore wraps mem.
func NewFaultyStore(mem *kvstore.Memory) *FaultyStore {
	return &FaultyStore{Memory: mem}
}

// FailGet makes every Get return err. A nil err restores normal reads.
func (s *FaultyStore) FailGet(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getErr = err
}

// FailSet makes every Set return err. A nil err restores normal writes.
func (s *FaultyStore) FailSet(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setErr = err
}

// Get implements kvstore.Store.
func (s *FaultyStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	err := s.getErr
	s.mu.Unlock()
	if err != nil {
		return "", err
	}
	return s.Memory.Get(ctx, key)
}

// Set implements kvstore.Store.
func (s *FaultyStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	err := s.setErr
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.Memory.Set(ctx, key, value)
}
