package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"
)

const (
	bashDefaultTimeoutMs = 60000
	bashMaxTimeoutMs     = 600000
	bashMaxOutputBytes   = 30 * 1024
)

// unsafeCommandPrefixes lists command shapes the bash tool refuses to run
// directly because they scan far outside the intended working set.
var unsafeCommandPrefixes = []string{
	"find /",
	"find / ",
	"rm -rf /",
	"grep -r /",
}

// BashTool implements the bash tool: run a shell command, either
// synchronously or handed off to the background shell supervisor.
type BashTool struct{}

func NewBashTool() *BashTool { return &BashTool{} }

func (t *BashTool) ID() string { return "bash" }
func (t *BashTool) Description() string {
	return "Execute a shell command via /bin/sh -c. By default runs in the foreground and " +
		"waits for completion; set run_in_background to start it under the shell supervisor " +
		"and return immediately with a shell id for bash_output/kill_shell."
}

func (t *BashTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"command":            map[string]any{"type": "string", "description": "Shell command to execute"},
			"timeout_ms":         map[string]any{"type": "integer", "description": "Foreground timeout in milliseconds (default 60000, max 600000)"},
			"run_in_background":  map[string]any{"type": "boolean", "description": "Run under the shell supervisor and return a shell id immediately"},
			"description":        map[string]any{"type": "string", "description": "Short human-readable label for this command"},
		},
		"required":             []any{"command"},
		"additionalProperties": false,
	}
}

type bashArgs struct {
	Command         string `json:"command"`
	TimeoutMs       int    `json:"timeout_ms"`
	RunInBackground bool   `json:"run_in_background"`
	Description     string `json:"description"`
}

func (t *BashTool) Execute(ctx *ToolContext, input json.RawMessage) (Result, *ToolError) {
	var a bashArgs
	if err := json.Unmarshal(input, &a); err != nil {
		return Result{}, NewToolErrorf(ErrInvalidParams, "invalid arguments: %v", err)
	}
	if strings.TrimSpace(a.Command) == "" {
		return Result{}, NewToolError(ErrInvalidParams, "command is required")
	}
	for _, prefix := range unsafeCommandPrefixes {
		if strings.HasPrefix(strings.TrimSpace(a.Command), prefix) {
			return Result{}, NewToolErrorf(ErrInvalidParams, "command %q is rejected: scans outside the working tree", a.Command)
		}
	}

	if a.RunInBackground {
		if ctx.Shells == nil {
			return Result{}, NewToolError(ErrExecutionFailed, "background shells are not supported in this context")
		}
		id, err := ctx.Shells.Spawn(a.Command, ctx.WorkingDir)
		if err != nil {
			return Result{}, NewToolErrorf(ErrExecutionFailed, "spawn background shell: %v", err)
		}
		return Result{
			Title:  "bash",
			Output: fmt.Sprintf("Started background shell %s", id),
			Metadata: map[string]any{
				"shell_id": id,
			},
		}, nil
	}

	timeoutMs := a.TimeoutMs
	if timeoutMs <= 0 {
		timeoutMs = bashDefaultTimeoutMs
	}
	if timeoutMs > bashMaxTimeoutMs {
		timeoutMs = bashMaxTimeoutMs
	}

	execCtx, cancel := context.WithTimeout(ctx.Context(), time.Duration(timeoutMs)*time.Millisecond)
	defer cancel()

	cmd := exec.CommandContext(execCtx, "/bin/sh", "-c", a.Command)
	cmd.Dir = ctx.WorkingDir
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	devNull, openErr := os.OpenFile(os.DevNull, os.O_RDONLY, 0)
	if openErr == nil {
		cmd.Stdin = devNull
		defer devNull.Close()
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	if execCtx.Err() == context.DeadlineExceeded {
		return Result{}, NewToolErrorf(ErrTimeout, "command timed out after %dms", timeoutMs)
	}

	exitCode := 0
	if runErr != nil {
		if exitErr, ok := runErr.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			return Result{}, NewToolErrorf(ErrExecutionFailed, "command error: %v", runErr)
		}
	}

	return Result{
		Title:  "bash",
		Output: formatBashOutput(stdout.String(), stderr.String(), exitCode),
		Metadata: map[string]any{
			"exit_code": exitCode,
		},
	}, nil
}

func formatBashOutput(stdout, stderr string, exitCode int) string {
	truncated := false
	if len(stdout) > bashMaxOutputBytes {
		stdout = stdout[:bashMaxOutputBytes]
		truncated = true
	}
	if len(stderr) > bashMaxOutputBytes {
		stderr = stderr[:bashMaxOutputBytes]
		truncated = true
	}

	var sb strings.Builder
	if stdout != "" {
		sb.WriteString("stdout:\n")
		sb.WriteString(stdout)
		if !strings.HasSuffix(stdout, "\n") {
			sb.WriteString("\n")
		}
	}
	if stderr != "" {
		if stdout != "" {
			sb.WriteString("\n")
		}
		sb.WriteString("stderr:\n")
		sb.WriteString(stderr)
		if !strings.HasSuffix(stderr, "\n") {
			sb.WriteString("\n")
		}
	}
	sb.WriteString(fmt.Sprintf("\nexit_code: %d", exitCode))
	if truncated {
		sb.WriteString("\n\n[Output truncated due to size limit]")
	}
	return sb.String()
}
