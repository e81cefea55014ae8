package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// lockRetry is how often a blocked lock attempt is retried.
const lockRetry = 50 * time.Millisecond

// File is a Store kept as a single JSON object on disk.
// An advisory lock on "<path>.lock" serializes access across processes.
type File struct {
	path  string
	quota int64
	lock  *flock.Flock
}

// NewFile creates a file-backed store. The file is created on first write.
func NewFile(path string, quota int64) *File {
	return &File{
		path:  path,
		quota: quota,
		lock:  flock.New(path + ".lock"),
	}
}

// Path returns the data file path.
func (f *File) Path() string { return f.path }

// Get implements Store.
func (f *File) Get(ctx context.Context, key string) (string, error) {
	if err := f.ensureDir(); err != nil {
		return "", err
	}
	locked, err := f.lock.TryRLockContext(ctx, lockRetry)
	if err != nil {
		return "", fmt.Errorf("failed to lock %s: %w", f.path, err)
	}
	if !locked {
		return "", fmt.Errorf("failed to lock %s", f.path)
	}
	defer func() { _ = f.lock.Unlock() }()

	entries, err := f.read()
	if err != nil {
		return "", err
	}
	v, ok := entries[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Set implements Store.
func (f *File) Set(ctx context.Context, key, value string) error {
	return f.update(ctx, func(entries map[string]string) error {
		entries[key] = value
		if overQuota(entries, f.quota) {
			return ErrQuotaExceeded
		}
		return nil
	})
}

// Delete implements Store.
func (f *File) Delete(ctx context.Context, key string) error {
	return f.update(ctx, func(entries map[string]string) error {
		delete(entries, key)
		return nil
	})
}

// Close implements Store.
func (f *File) Close() error {
	return f.lock.Close()
}

// update runs fn on the current entries under the exclusive lock and
// writes the result back atomically. A corrupt file is moved aside to
// "<path>.corrupt-<unix nanos>" and the update starts from an empty store.
func (f *File) update(ctx context.Context, fn func(map[string]string) error) error {
	if err := f.ensureDir(); err != nil {
		return err
	}
	locked, err := f.lock.TryLockContext(ctx, lockRetry)
	if err != nil {
		return fmt.Errorf("failed to lock %s: %w", f.path, err)
	}
	if !locked {
		return fmt.Errorf("failed to lock %s", f.path)
	}
	defer func() { _ = f.lock.Unlock() }()

	entries, err := f.read()
	if errors.Is(err, ErrCorrupt) {
		entries, err = f.quarantine()
	}
	if err != nil {
		return err
	}
	if err := fn(entries); err != nil {
		return err
	}
	return f.write(entries)
}

// read loads the entries; a missing or empty file is an empty store.
func (f *File) read() (map[string]string, error) {
	entries := make(map[string]string)
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return entries, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", f.path, err)
	}
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, f.path, err)
	}
	return entries, nil
}

// quarantine keeps an unreadable data file for inspection and returns an
// empty entry set to write in its place.
func (f *File) quarantine() (map[string]string, error) {
	aside := fmt.Sprintf("%s.corrupt-%d", f.path, time.Now().UnixNano())
	if err := os.Rename(f.path, aside); err != nil {
		return nil, fmt.Errorf("failed to move corrupt %s aside: %w", f.path, err)
	}
	return make(map[string]string), nil
}

func (f *File) write(entries map[string]string) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", f.path, err)
	}
	return nil
}

func (f *File) ensureDir() error {
	dir := filepath.Dir(f.path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}
