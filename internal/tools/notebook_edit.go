package tools

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// NotebookEditTool implements notebook_edit: a JSON-level edit over a
// Jupyter notebook's cells.
type NotebookEditTool struct{}

func NewNotebookEditTool() *NotebookEditTool { return &NotebookEditTool{} }

func (t *NotebookEditTool) ID() string { return "notebook_edit" }
func (t *NotebookEditTool) Description() string {
	return "Replace, insert, or delete a cell in a Jupyter notebook, addressed by cell_id or by the first cell of cell_type."
}

func (t *NotebookEditTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"notebook_path": map[string]any{"type": "string", "description": "Path to the .ipynb file"},
			"cell_id":       map[string]any{"type": "string", "description": "Target cell id; if omitted, the first cell of cell_type is targeted"},
			"cell_type":     map[string]any{"type": "string", "enum": []any{"code", "markdown"}, "description": "Type of cell to insert, or to target when cell_id is omitted"},
			"new_source":    map[string]any{"type": "string", "description": "New cell source; required for replace and insert"},
			"edit_mode":     map[string]any{"type": "string", "enum": []any{"replace", "insert", "delete"}, "description": "Default replace"},
		},
		"required":             []any{"notebook_path"},
		"additionalProperties": false,
	}
}

type notebookEditArgs struct {
	NotebookPath string `json:"notebook_path"`
	CellID       string `json:"cell_id"`
	CellType     string `json:"cell_type"`
	NewSource    string `json:"new_source"`
	EditMode     string `json:"edit_mode"`
}

type jupyterNotebook struct {
	Cells         []jupyterCell   `json:"cells"`
	Metadata      json.RawMessage `json:"metadata"`
	NbformatMinor int             `json:"nbformat_minor"`
	Nbformat      int             `json:"nbformat"`
}

type jupyterCell struct {
	ID             string          `json:"id,omitempty"`
	CellType       string          `json:"cell_type"`
	Source         []string        `json:"source"`
	Metadata       json.RawMessage `json:"metadata"`
	Outputs        []json.RawMessage `json:"outputs,omitempty"`
	ExecutionCount *int            `json:"execution_count"`
}

func (t *NotebookEditTool) Execute(ctx *ToolContext, input json.RawMessage) (Result, *ToolError) {
	var a notebookEditArgs
	if err := json.Unmarshal(input, &a); err != nil {
		return Result{}, NewToolErrorf(ErrInvalidParams, "invalid arguments: %v", err)
	}
	if a.EditMode == "" {
		a.EditMode = "replace"
	}
	if a.EditMode != "replace" && a.EditMode != "insert" && a.EditMode != "delete" {
		return Result{}, NewToolErrorf(ErrInvalidParams, "edit_mode must be replace, insert, or delete, got %q", a.EditMode)
	}
	if a.EditMode != "delete" && a.NewSource == "" {
		return Result{}, NewToolError(ErrInvalidParams, "new_source is required for replace and insert")
	}

	path, err := ctx.ResolvePath(a.NotebookPath)
	if err != nil {
		return Result{}, NewToolError(ErrInvalidParams, err.Error())
	}

	data, readErr := os.ReadFile(path)
	if readErr != nil {
		if os.IsNotExist(readErr) {
			return Result{}, NewToolError(ErrNotFound, path)
		}
		return Result{}, NewToolErrorf(ErrExecutionFailed, "read error: %v", readErr)
	}

	var nb jupyterNotebook
	if err := json.Unmarshal(data, &nb); err != nil {
		return Result{}, NewToolErrorf(ErrInvalidParams, "not a valid notebook: %v", err)
	}

	idx, found := locateCell(nb.Cells, a.CellID, a.CellType)

	switch a.EditMode {
	case "delete":
		if !found {
			return Result{}, NewToolError(ErrNotFound, "no matching cell to delete")
		}
		nb.Cells = append(nb.Cells[:idx], nb.Cells[idx+1:]...)
	case "replace":
		if !found {
			return Result{}, NewToolError(ErrNotFound, "no matching cell to replace")
		}
		nb.Cells[idx].Source = splitNotebookSource(a.NewSource)
		if nb.Cells[idx].CellType == "code" {
			nb.Cells[idx].ExecutionCount = nil
			nb.Cells[idx].Outputs = []json.RawMessage{}
		}
	case "insert":
		cellType := a.CellType
		if cellType == "" {
			cellType = "code"
		}
		newCell := jupyterCell{
			CellType: cellType,
			Source:   splitNotebookSource(a.NewSource),
			Metadata: json.RawMessage("{}"),
		}
		if cellType == "code" {
			newCell.Outputs = []json.RawMessage{}
		}
		insertAt := len(nb.Cells)
		if found {
			insertAt = idx + 1
		}
		nb.Cells = append(nb.Cells[:insertAt], append([]jupyterCell{newCell}, nb.Cells[insertAt:]...)...)
	}

	out, err := json.MarshalIndent(nb, "", " ")
	if err != nil {
		return Result{}, NewToolErrorf(ErrExecutionFailed, "encode notebook: %v", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, out, 0o644); err != nil {
		return Result{}, NewToolErrorf(ErrExecutionFailed, "write temp file: %v", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return Result{}, NewToolErrorf(ErrExecutionFailed, "rename into place: %v", err)
	}

	return Result{
		Title:  "notebook_edit",
		Output: fmt.Sprintf("%s applied to %s (%d cells)", a.EditMode, path, len(nb.Cells)),
		Metadata: map[string]any{
			"cell_count": len(nb.Cells),
		},
	}, nil
}

// locateCell finds a cell by id, or the first cell of cellType if no
// id was given.
func locateCell(cells []jupyterCell, cellID, cellType string) (int, bool) {
	if cellID != "" {
		for i, c := range cells {
			if c.ID == cellID {
				return i, true
			}
		}
		return 0, false
	}
	if cellType != "" {
		for i, c := range cells {
			if c.CellType == cellType {
				return i, true
			}
		}
		return 0, false
	}
	return 0, false
}

func splitNotebookSource(source string) []string {
	if source == "" {
		return []string{}
	}
	lines := strings.SplitAfter(source, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
