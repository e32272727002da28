package tools

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/ok-agent/ok/internal/store"
)

// TodoWriteTool implements todo_write: replace the session's entire todo
// list in one whole-file write.
type TodoWriteTool struct {
	store *store.TodoStore
}

func NewTodoWriteTool(s *store.TodoStore) *TodoWriteTool { return &TodoWriteTool{store: s} }

func (t *TodoWriteTool) ID() string { return "todo_write" }
func (t *TodoWriteTool) Description() string {
	return "Replace the current session's todo list. At most one task may be in_progress at a time."
}

func (t *TodoWriteTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"tasks": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id":          map[string]any{"type": "string", "description": "Existing task id to preserve; omitted for a new task"},
						"content":     map[string]any{"type": "string"},
						"status":      map[string]any{"type": "string", "enum": []any{"pending", "in_progress", "completed"}},
						"active_form": map[string]any{"type": "string", "description": "Present-continuous label shown while in_progress"},
					},
					"required":             []any{"content", "status", "active_form"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"tasks"},
		"additionalProperties": false,
	}
}

type todoWriteTask struct {
	ID         string `json:"id"`
	Content    string `json:"content"`
	Status     string `json:"status"`
	ActiveForm string `json:"active_form"`
}

type todoWriteArgs struct {
	Tasks []todoWriteTask `json:"tasks"`
}

func (t *TodoWriteTool) Execute(ctx *ToolContext, input json.RawMessage) (Result, *ToolError) {
	var a todoWriteArgs
	if err := json.Unmarshal(input, &a); err != nil {
		return Result{}, NewToolErrorf(ErrInvalidParams, "invalid arguments: %v", err)
	}

	tasks := make([]store.Task, len(a.Tasks))
	for i, in := range a.Tasks {
		id := in.ID
		if id == "" {
			id = uuid.NewString()
		}
		tasks[i] = store.Task{
			ID:         id,
			Content:    in.Content,
			Status:     store.TaskStatus(in.Status),
			ActiveForm: in.ActiveForm,
		}
	}

	list, err := t.store.Replace(ctx.SessionID, tasks)
	if err != nil {
		return Result{}, NewToolErrorf(ErrInvalidParams, "%v", err)
	}

	var sb strings.Builder
	for _, task := range list.Tasks {
		sb.WriteString(fmt.Sprintf("[%s] %s\n", task.Status, task.Content))
	}

	return Result{
		Title:  "todo_write",
		Output: strings.TrimSuffix(sb.String(), "\n"),
		Metadata: map[string]any{
			"count": len(list.Tasks),
		},
	}, nil
}
