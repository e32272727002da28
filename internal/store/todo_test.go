package store

import (
	"testing"
	"time"
)

func newTestTodoStore(t *testing.T) *TodoStore {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	s, err := NewTodoStore()
	if err != nil {
		t.Fatalf("NewTodoStore: %v", err)
	}
	s.clock = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return s
}

func TestTodoStore_LoadMissingReturnsEmptyList(t *testing.T) {
	s := newTestTodoStore(t)
	list, err := s.Load("sess-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if list.SessionID != "sess-1" || len(list.Tasks) != 0 {
		t.Fatalf("got %+v, want empty list for sess-1", list)
	}
}

func TestTodoStore_ReplaceAndLoadRoundTrip(t *testing.T) {
	s := newTestTodoStore(t)
	tasks := []Task{
		{ID: "1", Content: "write tests", Status: TaskInProgress, ActiveForm: "Writing tests"},
		{ID: "2", Content: "ship", Status: TaskPending, ActiveForm: "Shipping"},
	}
	if _, err := s.Replace("sess-1", tasks); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	got, err := s.Load("sess-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Tasks) != 2 || got.Tasks[0].Content != "write tests" {
		t.Fatalf("unexpected tasks after round-trip: %+v", got.Tasks)
	}
	if got.UpdatedAt.IsZero() {
		t.Fatal("UpdatedAt not stamped")
	}
}

func TestTodoStore_Replace_RejectsMultipleInProgress(t *testing.T) {
	s := newTestTodoStore(t)
	tasks := []Task{
		{ID: "1", Content: "a", Status: TaskInProgress},
		{ID: "2", Content: "b", Status: TaskInProgress},
	}
	if _, err := s.Replace("sess-1", tasks); err == nil {
		t.Fatal("expected error for two in_progress tasks")
	}
}

func TestTodoStore_Sessions(t *testing.T) {
	s := newTestTodoStore(t)
	if _, err := s.Replace("sess-a", nil); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if _, err := s.Replace("sess-b", nil); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	ids, err := s.Sessions()
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	if len(ids) != 2 || ids[0] != "sess-a" || ids[1] != "sess-b" {
		t.Fatalf("got %v, want [sess-a sess-b]", ids)
	}
}

func TestTodoStore_RejectsPathSeparatorKey(t *testing.T) {
	s := newTestTodoStore(t)
	if _, err := s.Load("../escape"); err == nil {
		t.Fatal("expected error for key containing a path separator")
	}
}
