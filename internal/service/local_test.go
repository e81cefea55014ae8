package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"taskmaster/internal/kvstore"
	"taskmaster/internal/persist"
	"taskmaster/internal/query"
	"taskmaster/internal/service"
	"taskmaster/internal/task"
	"taskmaster/internal/testutil"
)

func TestCreate_PersistsAndOrders(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	a := env.AddTaskInput(t, task.Input{Title: "Alpha", Priority: "low"})
	b := env.AddTaskInput(t, task.Input{Title: "Bravo", Priority: "urgent"})

	all, _ := env.Service.Tasks(ctx)
	if len(all) != 2 || all[0].ID != b.ID || all[1].ID != a.ID {
		t.Fatalf("default order should be newest first, got %v", all)
	}

	// A second service over the same store sees both tasks.
	reopened := service.Open(ctx, env.Store, service.Options{})
	if reopened.Warning() != nil {
		t.Fatalf("unexpected warning: %v", reopened.Warning())
	}
	got, _ := reopened.Tasks(ctx)
	if len(got) != 2 {
		t.Errorf("reloaded %d tasks, want 2", len(got))
	}

	res, _ := env.Service.Query(ctx, query.Params{Sort: query.SortPriority})
	if res.Tasks[0].ID != b.ID {
		t.Errorf("priority sort should put urgent first")
	}
}

func TestCreate_Invalid(t *testing.T) {
	env := testutil.NewEnv(t)
	_, err := env.Service.Create(context.Background(), task.Input{Title: "ab"})

	var ve *task.ValidationError
	if !errors.As(err, &ve) || ve.Field != "title" {
		t.Fatalf("expected title validation error, got %v", err)
	}
	if all, _ := env.Service.Tasks(context.Background()); len(all) != 0 {
		t.Errorf("invalid input must not add a task")
	}
	if _, err := env.Store.Get(context.Background(), persist.DefaultKey); !errors.Is(err, kvstore.ErrNotFound) {
		t.Errorf("invalid input must not write storage, got %v", err)
	}
}

func TestMutations(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	tk := env.AddTask(t, "Write report")

	done, err := env.Service.Complete(ctx, tk.ID)
	if err != nil || !done.Completed || done.CompletedAt == nil {
		t.Fatalf("Complete = %+v, %v", done, err)
	}

	open, err := env.Service.Toggle(ctx, tk.ID)
	if err != nil || open.Completed || open.CompletedAt != nil {
		t.Fatalf("Toggle = %+v, %v", open, err)
	}

	done, _ = env.Service.Toggle(ctx, tk.ID)
	reopened, err := env.Service.Reopen(ctx, tk.ID)
	if err != nil || reopened.Completed || !done.Completed {
		t.Fatalf("Reopen = %+v, %v", reopened, err)
	}

	updated, err := env.Service.Update(ctx, tk.ID, task.Input{Title: "Write final report", Category: "work", Priority: "high"})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Title != "Write final report" || updated.Category != task.CategoryWork || updated.CreatedAt != tk.CreatedAt {
		t.Errorf("Update = %+v", updated)
	}
	if !updated.UpdatedAt.After(tk.UpdatedAt) {
		t.Errorf("updatedAt should advance")
	}

	if _, err := env.Service.Update(ctx, tk.ID, task.Input{Title: "x"}); err == nil {
		t.Error("invalid update should fail")
	}
	if got, _ := env.Service.Get(ctx, tk.ID); got.Title != "Write final report" {
		t.Errorf("failed update must leave the task unchanged, got %q", got.Title)
	}

	if err := env.Service.Delete(ctx, tk.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := env.Service.Get(ctx, tk.ID); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("Get after delete = %v", err)
	}
}

func TestNotFound(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	env.AddTask(t, "Present")

	checks := map[string]error{}
	_, checks["complete"] = env.Service.Complete(ctx, "missing")
	_, checks["reopen"] = env.Service.Reopen(ctx, "missing")
	_, checks["toggle"] = env.Service.Toggle(ctx, "missing")
	_, checks["update"] = env.Service.Update(ctx, "missing", task.Input{Title: "Valid"})
	checks["delete"] = env.Service.Delete(ctx, "missing")
	for op, err := range checks {
		if !errors.Is(err, service.ErrNotFound) {
			t.Errorf("%s: err = %v, want ErrNotFound", op, err)
		}
	}
	if all, _ := env.Service.Tasks(ctx); len(all) != 1 {
		t.Errorf("collection changed on not-found")
	}
}

func TestClear(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	if n, err := env.Service.Clear(ctx); n != 0 || err != nil {
		t.Fatalf("Clear on empty = %d, %v", n, err)
	}
	env.AddTask(t, "One task")
	env.AddTask(t, "Two task")
	if n, err := env.Service.Clear(ctx); n != 2 || err != nil {
		t.Fatalf("Clear = %d, %v", n, err)
	}
	if stats, _ := env.Service.Stats(ctx); stats.Total != 0 {
		t.Errorf("Stats after clear = %+v", stats)
	}
}

func TestSaveFailure_KeepsMemoryAndRetriesOnClose(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	env.Store.FailSet(errors.New("disk full"))
	tk, err := env.Service.Create(ctx, task.Input{Title: "Unsaved"})

	var se *persist.StorageError
	if !errors.As(err, &se) || se.Op != "save" {
		t.Fatalf("expected save StorageError, got %v", err)
	}
	if _, err := env.Service.Get(ctx, tk.ID); err != nil {
		t.Fatalf("mutation should remain in memory: %v", err)
	}

	env.Store.FailSet(nil)
	if err := env.Service.Close(); err != nil {
		t.Fatalf("Close should flush: %v", err)
	}
	reloaded := service.Open(ctx, env.Store, service.Options{})
	if _, err := reloaded.Get(ctx, tk.ID); err != nil {
		t.Errorf("flushed task missing after reload: %v", err)
	}
}

func TestClose_ReportsFailedFlush(t *testing.T) {
	env := testutil.NewEnv(t)
	env.Store.FailSet(errors.New("disk full"))
	env.Service.Create(context.Background(), task.Input{Title: "Unsaved"})

	if err := env.Service.Close(); err == nil {
		t.Error("Close should report the failed flush")
	}
}

func TestOpen_CorruptStorageWarns(t *testing.T) {
	store := kvstore.NewMemory(0)
	store.Set(context.Background(), persist.DefaultKey, "{not json")
	env := testutil.NewEnvWithStore(t, store)

	var se *persist.StorageError
	if !errors.As(env.Service.Warning(), &se) || se.Op != "load" {
		t.Fatalf("expected load warning, got %v", env.Service.Warning())
	}
	if all, _ := env.Service.Tasks(context.Background()); len(all) != 0 {
		t.Errorf("corrupt storage should load empty")
	}

	// The collection stays usable and the next save overwrites the bad value.
	env.AddTask(t, "Fresh start")
	reloaded := service.Open(context.Background(), store, service.Options{})
	if reloaded.Warning() != nil {
		t.Errorf("warning after overwrite: %v", reloaded.Warning())
	}
}

func TestExportImport(t *testing.T) {
	src := testutil.NewEnv(t)
	ctx := context.Background()
	src.AddTaskInput(t, task.Input{Title: "Exported one", Category: "study"})
	src.AddTaskInput(t, task.Input{Title: "Exported two", Priority: "high"})

	blob, err := src.Service.Export(ctx)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	dst := testutil.NewEnv(t)
	existing := dst.AddTask(t, "Already here")
	res, err := dst.Service.Import(ctx, blob)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if len(res.Accepted) != 2 || res.Rejected != 0 {
		t.Fatalf("Import = %+v", res)
	}

	all, _ := dst.Service.Tasks(ctx)
	if len(all) != 3 {
		t.Fatalf("after import: %d tasks, want 3", len(all))
	}
	seen := map[string]bool{}
	for _, tk := range all {
		if seen[tk.ID] {
			t.Errorf("duplicate id %s", tk.ID)
		}
		seen[tk.ID] = true
	}
	if !seen[existing.ID] {
		t.Errorf("existing task lost")
	}

	if _, err := dst.Service.Import(ctx, []byte(`{"not":"array"}`)); err == nil || !strings.Contains(err.Error(), "invalid file format") {
		t.Errorf("bad import = %v", err)
	}
	if again, _ := dst.Service.Tasks(ctx); len(again) != 3 {
		t.Errorf("failed import must not change the collection")
	}
}

func TestRemoteLinks(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	links, err := env.Service.RemoteLinks(ctx)
	if err != nil || len(links) != 0 {
		t.Fatalf("RemoteLinks = %v, %v", links, err)
	}
	if err := env.Service.SetRemoteLinks(ctx, map[string]string{"a": "r1"}); err != nil {
		t.Fatalf("SetRemoteLinks failed: %v", err)
	}
	links, _ = env.Service.RemoteLinks(ctx)
	if links["a"] != "r1" {
		t.Errorf("links = %v", links)
	}
}

func TestOpen_CorruptFileRecovers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	svc := service.Open(ctx, kvstore.NewFile(path, 0), service.Options{})
	if svc.Warning() == nil {
		t.Fatal("expected load warning for corrupt file")
	}
	created, err := svc.Create(ctx, task.Input{Title: "Fresh start"})
	if err != nil {
		t.Fatalf("Create after corrupt load failed: %v", err)
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened := service.Open(ctx, kvstore.NewFile(path, 0), service.Options{})
	defer reopened.Close()
	if reopened.Warning() != nil {
		t.Errorf("warning after recovery: %v", reopened.Warning())
	}
	if _, err := reopened.Get(ctx, created.ID); err != nil {
		t.Errorf("task saved after corruption missing on reload: %v", err)
	}
}
