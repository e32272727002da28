package tools

import (
	"encoding/json"
	"testing"

	"github.com/ok-agent/ok/internal/store"
)

func newTestTodoStore(t *testing.T) *store.TodoStore {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	s, err := store.NewTodoStore()
	if err != nil {
		t.Fatalf("NewTodoStore: %v", err)
	}
	return s
}

func TestTodoWrite_PersistsAndAssignsIDs(t *testing.T) {
	s := newTestTodoStore(t)
	ctx := newTestContext(t, t.TempDir())
	tool := NewTodoWriteTool(s)

	args, _ := json.Marshal(todoWriteArgs{Tasks: []todoWriteTask{
		{Content: "write tests", Status: "in_progress", ActiveForm: "Writing tests"},
		{Content: "ship it", Status: "pending", ActiveForm: "Shipping it"},
	}})
	res, toolErr := tool.Execute(ctx, args)
	if toolErr != nil {
		t.Fatalf("Execute: %v", toolErr)
	}
	if res.Metadata["count"] != 2 {
		t.Fatalf("expected 2 tasks, got %v", res.Metadata["count"])
	}

	list, err := s.Load(ctx.SessionID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(list.Tasks) != 2 {
		t.Fatalf("expected 2 persisted tasks, got %d", len(list.Tasks))
	}
	for _, task := range list.Tasks {
		if task.ID == "" {
			t.Fatal("expected a generated id")
		}
	}
}

func TestTodoWrite_RejectsMultipleInProgress(t *testing.T) {
	s := newTestTodoStore(t)
	ctx := newTestContext(t, t.TempDir())
	tool := NewTodoWriteTool(s)

	args, _ := json.Marshal(todoWriteArgs{Tasks: []todoWriteTask{
		{Content: "a", Status: "in_progress", ActiveForm: "Doing a"},
		{Content: "b", Status: "in_progress", ActiveForm: "Doing b"},
	}})
	_, toolErr := tool.Execute(ctx, args)
	if toolErr == nil {
		t.Fatal("expected rejection of multiple in_progress tasks")
	}
}
