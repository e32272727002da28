package tools

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/ok-agent/ok/internal/diffutil"
)

// EditTool implements the edit tool: a uniqueness-checked string
// replacement over a file's contents.
type EditTool struct{}

func NewEditTool() *EditTool { return &EditTool{} }

func (t *EditTool) ID() string { return "edit" }
func (t *EditTool) Description() string {
	return "Replace an exact occurrence of old_string with new_string in a file. " +
		"old_string must be unique in the file unless replace_all is set."
}

func (t *EditTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"file_path":   map[string]any{"type": "string", "description": "Path to the file to edit"},
			"old_string":  map[string]any{"type": "string", "description": "Exact text to find; must be unique unless replace_all is true"},
			"new_string":  map[string]any{"type": "string", "description": "Replacement text"},
			"replace_all": map[string]any{"type": "boolean", "description": "Replace every occurrence instead of requiring uniqueness"},
		},
		"required":             []any{"file_path", "old_string", "new_string"},
		"additionalProperties": false,
	}
}

type editArgs struct {
	FilePath   string `json:"file_path"`
	OldString  string `json:"old_string"`
	NewString  string `json:"new_string"`
	ReplaceAll bool   `json:"replace_all"`
}

func (t *EditTool) Execute(ctx *ToolContext, input json.RawMessage) (Result, *ToolError) {
	var a editArgs
	if err := json.Unmarshal(input, &a); err != nil {
		return Result{}, NewToolErrorf(ErrInvalidParams, "invalid arguments: %v", err)
	}
	if a.OldString == a.NewString {
		return Result{}, NewToolError(ErrOldNewIdentical, "old_string and new_string are identical")
	}

	path, err := ctx.ResolvePath(a.FilePath)
	if err != nil {
		return Result{}, NewToolError(ErrInvalidParams, err.Error())
	}

	lockPath := path + ".lock"
	lockFile, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return Result{}, NewToolErrorf(ErrExecutionFailed, "create lock file: %v", err)
	}
	defer func() {
		lockFile.Close()
		os.Remove(lockPath)
	}()
	if err := syscall.Flock(int(lockFile.Fd()), syscall.LOCK_EX); err != nil {
		return Result{}, NewToolErrorf(ErrExecutionFailed, "lock: %v", err)
	}
	defer syscall.Flock(int(lockFile.Fd()), syscall.LOCK_UN)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{}, NewToolError(ErrNotFound, path)
		}
		return Result{}, NewToolErrorf(ErrExecutionFailed, "read error: %v", err)
	}
	content := string(data)

	count := strings.Count(content, a.OldString)
	if count == 0 {
		return Result{}, NewToolErrorf(ErrNotFound, "old_string not found in %s", path)
	}
	if count > 1 && !a.ReplaceAll {
		positions := matchPositions(content, a.OldString)
		return Result{}, NewToolErrorf(ErrMultipleMatches,
			"old_string occurs %d times at byte offsets %v; set replace_all or add more context to make it unique", count, positions)
	}

	var newContent string
	var replaced int
	if a.ReplaceAll {
		newContent = strings.ReplaceAll(content, a.OldString, a.NewString)
		replaced = count
	} else {
		newContent = strings.Replace(content, a.OldString, a.NewString, 1)
		replaced = 1
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)
	tmp, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return Result{}, NewToolErrorf(ErrExecutionFailed, "create temp file: %v", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.WriteString(newContent); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return Result{}, NewToolErrorf(ErrExecutionFailed, "write temp file: %v", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return Result{}, NewToolErrorf(ErrExecutionFailed, "close temp file: %v", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return Result{}, NewToolErrorf(ErrExecutionFailed, "rename into place: %v", err)
	}

	var out strings.Builder
	out.WriteString(fmt.Sprintf("Edited %s (%d replacement(s))\n", path, replaced))
	if udiff := diffutil.Unified(a.FilePath, content, newContent); udiff != "" {
		out.WriteString(udiff)
	}

	return Result{
		Title:  "edit",
		Output: out.String(),
		Metadata: map[string]any{
			"file_path":   path,
			"replacements": replaced,
		},
	}, nil
}

func matchPositions(content, needle string) []int {
	var positions []int
	offset := 0
	for {
		idx := strings.Index(content[offset:], needle)
		if idx < 0 {
			break
		}
		pos := offset + idx
		positions = append(positions, pos)
		offset = pos + len(needle)
	}
	return positions
}
