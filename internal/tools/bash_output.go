package tools

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ok-agent/ok/internal/shellsup"
)

// BashOutputTool implements bash_output: poll a background shell's
// incremental output without blocking on its completion.
type BashOutputTool struct{}

func NewBashOutputTool() *BashOutputTool { return &BashOutputTool{} }

func (t *BashOutputTool) ID() string { return "bash_output" }
func (t *BashOutputTool) Description() string {
	return "Retrieve new stdout/stderr lines and status for a background shell started with bash(run_in_background=true)."
}

func (t *BashOutputTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"shell_id":      map[string]any{"type": "string", "description": "Shell id returned by bash"},
			"stdout_offset": map[string]any{"type": "integer", "description": "Logical line offset to read stdout from (default 0)"},
			"stderr_offset": map[string]any{"type": "integer", "description": "Logical line offset to read stderr from (default 0)"},
		},
		"required":             []any{"shell_id"},
		"additionalProperties": false,
	}
}

type bashOutputArgs struct {
	ShellID      string `json:"shell_id"`
	StdoutOffset int    `json:"stdout_offset"`
	StderrOffset int    `json:"stderr_offset"`
}

func (t *BashOutputTool) Execute(ctx *ToolContext, input json.RawMessage) (Result, *ToolError) {
	var a bashOutputArgs
	if err := json.Unmarshal(input, &a); err != nil {
		return Result{}, NewToolErrorf(ErrInvalidParams, "invalid arguments: %v", err)
	}
	if a.ShellID == "" {
		return Result{}, NewToolError(ErrInvalidParams, "shell_id is required")
	}
	if ctx.Shells == nil {
		return Result{}, NewToolError(ErrExecutionFailed, "background shells are not supported in this context")
	}

	summary, ok := ctx.Shells.Status(a.ShellID)
	if !ok {
		return Result{}, NewToolErrorf(ErrNotFound, "no shell with id %s", a.ShellID)
	}

	stdoutLines, stdoutEnd, _ := ctx.Shells.LinesSince(a.ShellID, shellsup.Stdout, a.StdoutOffset)
	stderrLines, stderrEnd, _ := ctx.Shells.LinesSince(a.ShellID, shellsup.Stderr, a.StderrOffset)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("status: %s\n", summary.Status))
	if summary.ExitCode != nil {
		sb.WriteString(fmt.Sprintf("exit_code: %d\n", *summary.ExitCode))
	}
	if len(stdoutLines) > 0 {
		sb.WriteString("stdout:\n")
		sb.WriteString(strings.Join(stdoutLines, "\n"))
		sb.WriteString("\n")
	}
	if len(stderrLines) > 0 {
		sb.WriteString("stderr:\n")
		sb.WriteString(strings.Join(stderrLines, "\n"))
		sb.WriteString("\n")
	}

	return Result{
		Title:  "bash_output",
		Output: strings.TrimSuffix(sb.String(), "\n"),
		Metadata: map[string]any{
			"status":        string(summary.Status),
			"stdout_offset": stdoutEnd,
			"stderr_offset": stderrEnd,
		},
	}, nil
}
