package tools

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ok-agent/ok/internal/diffutil"
)

// WriteTool implements the write tool: create or overwrite a file.
type WriteTool struct{}

func NewWriteTool() *WriteTool { return &WriteTool{} }

func (t *WriteTool) ID() string          { return "write" }
func (t *WriteTool) Description() string { return "Create or overwrite a file with the given content. Creates parent directories as needed." }

func (t *WriteTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"file_path": map[string]any{"type": "string", "description": "Path to the file to write"},
			"content":   map[string]any{"type": "string", "description": "Full file content to write"},
		},
		"required":             []any{"file_path", "content"},
		"additionalProperties": false,
	}
}

type writeArgs struct {
	FilePath string `json:"file_path"`
	Content  string `json:"content"`
}

func (t *WriteTool) Execute(ctx *ToolContext, input json.RawMessage) (Result, *ToolError) {
	var a writeArgs
	if err := json.Unmarshal(input, &a); err != nil {
		return Result{}, NewToolErrorf(ErrInvalidParams, "invalid arguments: %v", err)
	}

	path, err := ctx.ResolvePath(a.FilePath)
	if err != nil {
		return Result{}, NewToolError(ErrInvalidParams, err.Error())
	}

	existing, readErr := os.ReadFile(path)
	isNew := readErr != nil

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Result{}, NewToolErrorf(ErrExecutionFailed, "create parent directories: %v", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(a.Content), 0o644); err != nil {
		return Result{}, NewToolErrorf(ErrExecutionFailed, "write temp file: %v", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return Result{}, NewToolErrorf(ErrExecutionFailed, "rename into place: %v", err)
	}

	var out strings.Builder
	if isNew {
		out.WriteString(fmt.Sprintf("Creating new file: %s\n", path))
	} else {
		out.WriteString(fmt.Sprintf("Updated file: %s\n", path))
		if len(string(existing)) < diffutil.MaxSize && len(a.Content) < diffutil.MaxSize {
			if udiff := diffutil.Unified(a.FilePath, string(existing), a.Content); udiff != "" {
				out.WriteString(udiff)
			}
		}
	}

	return Result{
		Title:  "write",
		Output: out.String(),
		Metadata: map[string]any{
			"file_path": path,
			"is_new":    isNew,
			"bytes":     len(a.Content),
		},
	}, nil
}
