package tools

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// SubAgentRunner is the narrow slice of the Sub-Agent Runner (component G)
// that the task tool depends on, kept as an interface here so this package
// does not import the engine package (which itself imports tools).
type SubAgentRunner interface {
	// Run resolves subagentType, filters the registry, runs the sub-agent
	// under agentID (generated by the task tool) to completion, and returns
	// its output text or an error (its Error() text is surfaced verbatim to
	// the model).
	Run(parentCtx *ToolContext, agentID, subagentType, prompt, model string) (string, error)
}

// TaskTool implements task: launches a bounded sub-agent and returns its
// final text output.
type TaskTool struct {
	runner SubAgentRunner
}

func NewTaskTool(runner SubAgentRunner) *TaskTool { return &TaskTool{runner: runner} }

func (t *TaskTool) ID() string          { return "task" }
func (t *TaskTool) Description() string { return "Launch a sub-agent to autonomously perform a task and return its final answer." }

func (t *TaskTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"description":   map[string]any{"type": "string", "description": "Short (3-5 word) summary of the task"},
			"prompt":        map[string]any{"type": "string", "description": "The task for the sub-agent to perform"},
			"subagent_type": map[string]any{"type": "string", "enum": []any{"general-purpose", "Explore", "Plan", "Bash"}},
			"model":         map[string]any{"type": "string", "description": "Optional model override"},
		},
		"required":             []any{"description", "prompt", "subagent_type"},
		"additionalProperties": false,
	}
}

type taskArgs struct {
	Description  string `json:"description"`
	Prompt       string `json:"prompt"`
	SubagentType string `json:"subagent_type"`
	Model        string `json:"model"`
}

func (t *TaskTool) Execute(ctx *ToolContext, input json.RawMessage) (Result, *ToolError) {
	var a taskArgs
	if err := json.Unmarshal(input, &a); err != nil {
		return Result{}, NewToolErrorf(ErrInvalidParams, "invalid arguments: %v", err)
	}
	if a.Prompt == "" {
		return Result{}, NewToolErrorf(ErrInvalidParams, "prompt is required")
	}

	agentID := uuid.NewString()
	output, err := t.runner.Run(ctx, agentID, a.SubagentType, a.Prompt, a.Model)
	if err != nil {
		return Result{}, NewToolErrorf(ErrExecutionFailed, "%v", err)
	}

	return Result{
		Title:  fmt.Sprintf("task: %s", a.Description),
		Output: output,
		Metadata: map[string]any{
			"agent_id":      agentID,
			"subagent_type": a.SubagentType,
		},
	}, nil
}
