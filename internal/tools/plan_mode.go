package tools

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

func planFilePath(workingDir, sessionID string) string {
	return filepath.Join(workingDir, ".claude", fmt.Sprintf("plan-%s.md", sessionID))
}

const planTemplate = `# Plan

`

// EnterPlanModeTool implements enter_plan_mode: write a template plan
// file the model will fill in over subsequent turns.
type EnterPlanModeTool struct{}

func NewEnterPlanModeTool() *EnterPlanModeTool { return &EnterPlanModeTool{} }

func (t *EnterPlanModeTool) ID() string          { return "enter_plan_mode" }
func (t *EnterPlanModeTool) Description() string { return "Enter plan mode: creates a plan file to draft an approach before making changes." }

func (t *EnterPlanModeTool) InputSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"properties":           map[string]any{},
		"additionalProperties": false,
	}
}

func (t *EnterPlanModeTool) Execute(ctx *ToolContext, input json.RawMessage) (Result, *ToolError) {
	path := planFilePath(ctx.WorkingDir, ctx.SessionID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Result{}, NewToolErrorf(ErrExecutionFailed, "create plan directory: %v", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, []byte(planTemplate), 0o644); err != nil {
			return Result{}, NewToolErrorf(ErrExecutionFailed, "write plan file: %v", err)
		}
	}

	return Result{
		Title:  "enter_plan_mode",
		Output: fmt.Sprintf("Entered plan mode. Edit %s with the plan, then call exit_plan_mode.", path),
		Metadata: map[string]any{
			"plan_path": path,
		},
	}, nil
}

// ExitPlanModeTool implements exit_plan_mode: the two-phase
// approval gate for leaving plan mode.
type ExitPlanModeTool struct{}

func NewExitPlanModeTool() *ExitPlanModeTool { return &ExitPlanModeTool{} }

func (t *ExitPlanModeTool) ID() string          { return "exit_plan_mode" }
func (t *ExitPlanModeTool) Description() string { return "Present the current plan for approval and exit plan mode once approved." }

func (t *ExitPlanModeTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"approved": map[string]any{"type": "boolean", "description": "Phase 2 only: whether the user approved the plan"},
		},
		"additionalProperties": false,
	}
}

type exitPlanModeArgs struct {
	Approved *bool `json:"approved"`
}

func (t *ExitPlanModeTool) Execute(ctx *ToolContext, input json.RawMessage) (Result, *ToolError) {
	var a exitPlanModeArgs
	if err := json.Unmarshal(input, &a); err != nil {
		return Result{}, NewToolErrorf(ErrInvalidParams, "invalid arguments: %v", err)
	}

	path := planFilePath(ctx.WorkingDir, ctx.SessionID)
	planBytes, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{}, NewToolErrorf(ErrNotFound, "no plan file at %s; call enter_plan_mode first", path)
		}
		return Result{}, NewToolErrorf(ErrExecutionFailed, "read plan file: %v", err)
	}

	if a.Approved == nil {
		return Result{
			Title:  "Awaiting plan approval",
			Output: pendingSentinel,
			Metadata: map[string]any{
				"status": "pending",
				"plan":   string(planBytes),
			},
		}, nil
	}

	if !*a.Approved {
		return Result{
			Title:  "exit_plan_mode",
			Output: "Plan rejected by the user.",
			Metadata: map[string]any{
				"status":   "rejected",
				"approved": false,
			},
		}, nil
	}

	return Result{
		Title:  "exit_plan_mode",
		Output: "Plan approved. Exiting plan mode.",
		Metadata: map[string]any{
			"status":   "approved",
			"approved": true,
		},
	}, nil
}
