package persist

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"taskmaster/internal/kvstore"
	"taskmaster/internal/task"
)

var now = time.Date(2026, 4, 2, 8, 30, 0, 0, time.UTC)

func clock() time.Time { return now }

func ptr(t time.Time) *time.Time { return &t }

func sample() []task.Task {
	due := time.Date(2026, 4, 10, 17, 0, 0, 0, time.UTC)
	done := time.Date(2026, 4, 1, 12, 0, 0, 123456789, time.UTC)
	return []task.Task{
		{
			ID: "a1", Title: "Renew passport", Description: "photos first",
			Category: task.CategoryPersonal, Priority: task.PriorityHigh,
			DueDate:   &due,
			CreatedAt: time.Date(2026, 3, 30, 9, 0, 0, 0, time.UTC),
			UpdatedAt: time.Date(2026, 3, 30, 9, 5, 0, 0, time.UTC),
		},
		{
			ID: "b2", Title: "Tax return", Category: task.CategoryFinance, Priority: task.PriorityUrgent,
			Completed: true, CompletedAt: &done,
			CreatedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
			UpdatedAt: done,
		},
	}
}

func equalTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func equalTask(a, b task.Task) bool {
	return a.ID == b.ID && a.Title == b.Title && a.Description == b.Description &&
		a.Category == b.Category && a.Priority == b.Priority &&
		equalTime(a.DueDate, b.DueDate) && a.Completed == b.Completed &&
		a.CreatedAt.Equal(b.CreatedAt) && a.UpdatedAt.Equal(b.UpdatedAt) &&
		equalTime(a.CompletedAt, b.CompletedAt)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	ctx := context.Background()
	a := New(kvstore.NewMemory(0), "", clock)

	want := sample()
	if err := a.Save(ctx, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := a.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("loaded %d tasks, want %d", len(got), len(want))
	}
	for i := range want {
		if !equalTask(got[i], want[i]) {
			t.Errorf("task %d differs:\n got %+v\nwant %+v", i, got[i], want[i])
		}
	}
}

func TestSave_WireFormat(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemory(0)
	a := New(store, "", clock)
	if err := a.Save(ctx, sample()[:1]); err != nil {
		t.Fatal(err)
	}
	raw, err := store.Get(ctx, DefaultKey)
	if err != nil {
		t.Fatalf("expected data under %s: %v", DefaultKey, err)
	}
	var records []map[string]any
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		t.Fatalf("stored value is not a JSON array: %v", err)
	}
	r := records[0]
	if r["createdAt"] != "2026-03-30T09:00:00Z" {
		t.Errorf("createdAt = %v", r["createdAt"])
	}
	if r["completedAt"] != nil {
		t.Errorf("completedAt = %v, want null", r["completedAt"])
	}
	if r["dueDate"] != "2026-04-10T17:00:00Z" {
		t.Errorf("dueDate = %v", r["dueDate"])
	}
	for _, field := range []string{"id", "title", "description", "category", "priority", "completed", "updatedAt"} {
		if _, ok := r[field]; !ok {
			t.Errorf("missing field %s", field)
		}
	}
}

func TestLoad_Absent(t *testing.T) {
	got, err := New(kvstore.NewMemory(0), "", clock).Load(context.Background())
	if err != nil {
		t.Fatalf("absent key should not be an error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", got)
	}
}

func TestLoad_Corrupt(t *testing.T) {
	ctx := context.Background()
	for _, doc := range []string{"{not json", `{"id":"1"}`, `"hello"`} {
		store := kvstore.NewMemory(0)
		store.Set(ctx, DefaultKey, doc)

		got, err := New(store, "", clock).Load(ctx)
		var se *StorageError
		if !errors.As(err, &se) || se.Op != "load" {
			t.Errorf("%q: expected load StorageError, got %v", doc, err)
		}
		if len(got) != 0 {
			t.Errorf("%q: expected empty collection, got %d", doc, len(got))
		}
	}
}

func TestLoad_DropsBadRecords(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemory(0)
	store.Set(ctx, DefaultKey, `[
		{"id":"1","title":"Good","category":"work","priority":"high","completed":false,"createdAt":"2026-01-01T00:00:00Z","updatedAt":"2026-01-01T00:00:00Z"},
		{"id":"2","category":"work","priority":"high"},
		{"id":"1","title":"Duplicate","category":"work","priority":"high"},
		{"id":"3","title":"Bad type","category":"work","priority":"high","completed":"yes"}
	]`)

	got, err := New(store, "", clock).Load(ctx)
	var se *StorageError
	if !errors.As(err, &se) {
		t.Fatalf("expected warning, got %v", err)
	}
	if !strings.Contains(se.Error(), "dropped 3") {
		t.Errorf("warning = %q", se.Error())
	}
	if len(got) != 1 || got[0].Title != "Good" {
		t.Errorf("kept %+v", got)
	}
}

// brokenStore fails every read.
type brokenStore struct {
	*kvstore.Memory
	err error
}

func (s brokenStore) Get(context.Context, string) (string, error) { return "", s.err }

func TestLoad_StoreFailure(t *testing.T) {
	store := brokenStore{Memory: kvstore.NewMemory(0), err: errors.New("disk on fire")}
	got, err := New(store, "", clock).Load(context.Background())
	var se *StorageError
	if !errors.As(err, &se) || len(got) != 0 {
		t.Errorf("expected StorageError and empty result, got %v, %v", got, err)
	}
}

func TestSave_QuotaExceeded(t *testing.T) {
	a := New(kvstore.NewMemory(32), "", clock)
	err := a.Save(context.Background(), sample())

	var se *StorageError
	if !errors.As(err, &se) || se.Op != "save" {
		t.Fatalf("expected save StorageError, got %v", err)
	}
	if !errors.Is(err, kvstore.ErrQuotaExceeded) {
		t.Errorf("expected wrapped ErrQuotaExceeded, got %v", err)
	}
}

func TestDecode_Defaults(t *testing.T) {
	raw := json.RawMessage(`{"id":"x","title":" Padded ","category":"HOBBY","priority":"??","completed":true,"updatedAt":"2020-01-01T00:00:00Z"}`)
	got, err := decode(raw, now)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got.Title != "Padded" {
		t.Errorf("title = %q", got.Title)
	}
	if got.Category != task.CategoryOther || got.Priority != task.PriorityMedium {
		t.Errorf("enums = %s / %s", got.Category, got.Priority)
	}
	if !got.CreatedAt.Equal(now) {
		t.Errorf("missing createdAt should default to now, got %v", got.CreatedAt)
	}
	if got.UpdatedAt.Before(got.CreatedAt) {
		t.Error("updatedAt must not precede createdAt")
	}
	if got.CompletedAt == nil {
		t.Error("completed record must get a completedAt")
	}

	open, err := decode(json.RawMessage(`{"id":"y","title":"Open","category":"work","priority":"low","completedAt":"2026-01-01T00:00:00Z"}`), now)
	if err != nil {
		t.Fatal(err)
	}
	if open.CompletedAt != nil {
		t.Error("open record must not keep a completedAt")
	}
}

func TestExportBlob(t *testing.T) {
	data, err := ExportBlob(sample())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "[\n  {\n    \"id\": \"a1\",") {
		t.Errorf("export is not indented as expected:\n%s", data)
	}

	empty, err := ExportBlob(nil)
	if err != nil || string(empty) != "[]" {
		t.Errorf("empty export = %q, %v", empty, err)
	}
}

func TestImportBlob(t *testing.T) {
	existing := sample()
	data := []byte(`[
		{"id":"a1","title":"Collides with existing","category":"work","priority":"low"},
		{"id":"zz","description":"no title","category":"work","priority":"low"},
		{"id":"q9","title":"Fine","category":"study","priority":"urgent","dueDate":"2026-05-01T10:00"}
	]`)

	res, err := ImportBlob(data, existing, now)
	if err != nil {
		t.Fatalf("ImportBlob failed: %v", err)
	}
	if len(res.Accepted) != 2 || res.Rejected != 1 {
		t.Fatalf("accepted %d rejected %d, want 2/1", len(res.Accepted), res.Rejected)
	}

	taken := task.Collection(existing).IDs()
	seen := make(map[string]bool)
	for _, tk := range res.Accepted {
		if _, clash := taken[tk.ID]; clash {
			t.Errorf("imported id %s collides with existing", tk.ID)
		}
		if tk.ID == "a1" || tk.ID == "q9" {
			t.Errorf("imported task kept its original id %s", tk.ID)
		}
		if seen[tk.ID] {
			t.Errorf("duplicate imported id %s", tk.ID)
		}
		seen[tk.ID] = true
	}
	if res.Accepted[1].DueDate == nil {
		t.Error("expected due date on imported task")
	}
}

func TestImportBlob_Rejected(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"object", `{"tasks":[]}`},
		{"garbage", `not json at all`},
		{"empty array", `[]`},
		{"nothing valid", `[{"title":"no id"},{"id":"1"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ImportBlob([]byte(tt.data), nil, now)
			var fe *ImportFormatError
			if !errors.As(err, &fe) {
				t.Fatalf("expected ImportFormatError, got %v", err)
			}
			if len(res.Accepted) != 0 {
				t.Error("rejected import must not return tasks")
			}
		})
	}
}

func TestImportBlob_ExportRoundTrip(t *testing.T) {
	data, err := ExportBlob(sample())
	if err != nil {
		t.Fatal(err)
	}
	res, err := ImportBlob(data, nil, now)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Accepted) != 2 || res.Rejected != 0 {
		t.Fatalf("accepted %d rejected %d", len(res.Accepted), res.Rejected)
	}
	for i, want := range sample() {
		got := res.Accepted[i]
		got.ID = want.ID
		if !equalTask(got, want) {
			t.Errorf("task %d differs after export/import:\n got %+v\nwant %+v", i, got, want)
		}
	}
}

func TestLinks(t *testing.T) {
	ctx := context.Background()
	a := New(kvstore.NewMemory(0), "custom", clock)

	links, err := a.LoadLinks(ctx)
	if err != nil || len(links) != 0 {
		t.Fatalf("empty links = %v, %v", links, err)
	}
	if err := a.SaveLinks(ctx, map[string]string{"a1": "remote-1"}); err != nil {
		t.Fatal(err)
	}
	links, err = a.LoadLinks(ctx)
	if err != nil || links["a1"] != "remote-1" {
		t.Errorf("links = %v, %v", links, err)
	}
	if a.Key() != "custom" {
		t.Errorf("key = %s", a.Key())
	}
}

func TestImportBlob_FieldLimits(t *testing.T) {
	long := strings.Repeat("t", task.MaxTitleLen+20)
	essay := strings.Repeat("é", task.MaxDescriptionLen+1)
	data := []byte(`[
		{"id":"1","title":"` + long + `","description":"` + essay + `","category":"work","priority":"low"},
		{"id":"2","title":" ok ","category":"work","priority":"low"}
	]`)

	res, err := ImportBlob(data, nil, now)
	if err != nil {
		t.Fatalf("ImportBlob failed: %v", err)
	}
	if len(res.Accepted) != 1 || res.Rejected != 1 {
		t.Fatalf("accepted %d rejected %d, want 1/1", len(res.Accepted), res.Rejected)
	}
	got := res.Accepted[0]
	if n := utf8.RuneCountInString(got.Title); n != task.MaxTitleLen {
		t.Errorf("title length = %d, want %d", n, task.MaxTitleLen)
	}
	if n := utf8.RuneCountInString(got.Description); n != task.MaxDescriptionLen {
		t.Errorf("description length = %d, want %d", n, task.MaxDescriptionLen)
	}

	// A clipped task stays editable.
	if _, err := got.Update(task.Input{Title: got.Title, Description: got.Description, Priority: "high"}, now); err != nil {
		t.Errorf("Update of imported task failed: %v", err)
	}
}
