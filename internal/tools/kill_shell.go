package tools

import (
	"encoding/json"
	"fmt"
)

// KillShellTool implements kill_shell: forcefully terminate a background
// shell started with bash(run_in_background=true).
type KillShellTool struct{}

func NewKillShellTool() *KillShellTool { return &KillShellTool{} }

func (t *KillShellTool) ID() string          { return "kill_shell" }
func (t *KillShellTool) Description() string { return "Kill a running background shell by id." }

func (t *KillShellTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"shell_id": map[string]any{"type": "string", "description": "Shell id returned by bash"},
		},
		"required":             []any{"shell_id"},
		"additionalProperties": false,
	}
}

type killShellArgs struct {
	ShellID string `json:"shell_id"`
}

func (t *KillShellTool) Execute(ctx *ToolContext, input json.RawMessage) (Result, *ToolError) {
	var a killShellArgs
	if err := json.Unmarshal(input, &a); err != nil {
		return Result{}, NewToolErrorf(ErrInvalidParams, "invalid arguments: %v", err)
	}
	if a.ShellID == "" {
		return Result{}, NewToolError(ErrInvalidParams, "shell_id is required")
	}
	if ctx.Shells == nil {
		return Result{}, NewToolError(ErrExecutionFailed, "background shells are not supported in this context")
	}

	if !ctx.Shells.Kill(a.ShellID) {
		return Result{}, NewToolErrorf(ErrNotFound, "no shell with id %s", a.ShellID)
	}

	return Result{
		Title:  "kill_shell",
		Output: fmt.Sprintf("Shell %s killed", a.ShellID),
		Metadata: map[string]any{
			"shell_id": a.ShellID,
		},
	}, nil
}
