package kvstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// exercise runs the behavior every backend must share.
func exercise(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing) error = %v, want ErrNotFound", err)
	}

	if err := s.Set(ctx, "tasks", `[{"id":"1"}]`); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := s.Get(ctx, "tasks")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != `[{"id":"1"}]` {
		t.Errorf("Get = %q", got)
	}

	if err := s.Set(ctx, "tasks", "[]"); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	if got, _ := s.Get(ctx, "tasks"); got != "[]" {
		t.Errorf("after overwrite Get = %q", got)
	}

	if err := s.Delete(ctx, "tasks"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Get(ctx, "tasks"); !errors.Is(err, ErrNotFound) {
		t.Errorf("after delete error = %v", err)
	}
	if err := s.Delete(ctx, "tasks"); err != nil {
		t.Errorf("deleting an absent key should succeed, got %v", err)
	}
}

func TestMemory(t *testing.T) {
	exercise(t, NewMemory(0))
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "storage.json")
	s := NewFile(path, 0)
	defer s.Close()
	exercise(t, s)
}

func TestFile_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	ctx := context.Background()

	first := NewFile(path, 0)
	if err := first.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	first.Close()

	second := NewFile(path, 0)
	defer second.Close()
	got, err := second.Get(ctx, "k")
	if err != nil || got != "v" {
		t.Errorf("Get = %q, %v", got, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("file mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestFile_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	s := NewFile(path, 0)
	defer s.Close()

	_, err := s.Get(context.Background(), "k")
	if !errors.Is(err, ErrCorrupt) {
		t.Errorf("expected corruption error, got %v", err)
	}
}

func TestFile_WriteAfterCorrupt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "storage.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	s := NewFile(path, 0)
	defer s.Close()
	ctx := context.Background()

	if err := s.Set(ctx, "tasks", "[]"); err != nil {
		t.Fatalf("Set after corruption failed: %v", err)
	}
	got, err := s.Get(ctx, "tasks")
	if err != nil || got != "[]" {
		t.Errorf("Get = %q, %v", got, err)
	}

	aside, _ := filepath.Glob(path + ".corrupt-*")
	if len(aside) != 1 {
		t.Fatalf("expected the corrupt file to be kept aside, got %v", aside)
	}
	if data, _ := os.ReadFile(aside[0]); string(data) != "{not json" {
		t.Errorf("kept file = %q", data)
	}
}

func TestQuota(t *testing.T) {
	ctx := context.Background()
	stores := map[string]Store{
		"memory": NewMemory(10),
		"file":   NewFile(filepath.Join(t.TempDir(), "storage.json"), 10),
	}
	for name, s := range stores {
		t.Run(name, func(t *testing.T) {
			defer s.Close()
			if err := s.Set(ctx, "k", "12345"); err != nil {
				t.Fatalf("small write failed: %v", err)
			}
			err := s.Set(ctx, "k", strings.Repeat("x", 10))
			if !errors.Is(err, ErrQuotaExceeded) {
				t.Fatalf("expected ErrQuotaExceeded, got %v", err)
			}
			// The rejected write leaves the previous value.
			if got, _ := s.Get(ctx, "k"); got != "12345" {
				t.Errorf("value after rejected write = %q", got)
			}
		})
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Options{Path: filepath.Join(t.TempDir(), "s.json")})
	if err != nil {
		t.Fatalf("Open(file) failed: %v", err)
	}
	if _, ok := s.(*File); !ok {
		t.Errorf("default backend = %T, want *File", s)
	}
	s.Close()

	if s, err := Open(ctx, Options{Backend: BackendMemory}); err != nil {
		t.Errorf("Open(memory) failed: %v", err)
	} else if _, ok := s.(*Memory); !ok {
		t.Errorf("memory backend = %T", s)
	}

	if _, err := Open(ctx, Options{Backend: BackendFile}); err == nil {
		t.Error("file backend without path should fail")
	}
	if _, err := Open(ctx, Options{Backend: BackendMySQL}); err == nil {
		t.Error("mysql backend without dsn should fail")
	}
	if _, err := Open(ctx, Options{Backend: BackendMySQL, DSN: "::not a dsn"}); err == nil {
		t.Error("mysql backend with malformed dsn should fail")
	}
	if _, err := Open(ctx, Options{Backend: "redis"}); err == nil {
		t.Error("unknown backend should fail")
	}
}

func TestMySQL(t *testing.T) {
	dsn := os.Getenv("TASKMASTER_TEST_DSN")
	if dsn == "" {
		t.Skip("TASKMASTER_TEST_DSN not set")
	}
	s, err := NewMySQL(context.Background(), dsn, -1)
	if err != nil {
		t.Fatalf("NewMySQL failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	exercise(t, s)
}

func TestMySQL_BadDSN(t *testing.T) {
	ctx := context.Background()
	if _, err := NewMySQL(ctx, "", 0); err == nil || !strings.Contains(err.Error(), "requires a dsn") {
		t.Errorf("empty dsn error = %v", err)
	}
	if _, err := NewMySQL(ctx, "not a dsn", 0); err == nil || !strings.Contains(err.Error(), "invalid mysql dsn") {
		t.Errorf("malformed dsn error = %v", err)
	}
}
