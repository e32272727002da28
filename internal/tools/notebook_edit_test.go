package tools

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

const sampleNotebook = `{
  "cells": [
    {"id": "c1", "cell_type": "code", "source": ["print(1)\n"], "metadata": {}, "outputs": [], "execution_count": 1}
  ],
  "metadata": {"kernelspec": {"name": "python3"}},
  "nbformat": 4,
  "nbformat_minor": 5
}`

func writeNotebook(t *testing.T, root string) string {
	t.Helper()
	path := filepath.Join(root, "nb.ipynb")
	if err := os.WriteFile(path, []byte(sampleNotebook), 0o644); err != nil {
		t.Fatalf("write notebook: %v", err)
	}
	return path
}

func TestNotebookEdit_ReplaceByCellID(t *testing.T) {
	root := t.TempDir()
	writeNotebook(t, root)
	ctx := newTestContext(t, root)
	tool := NewNotebookEditTool()

	args, _ := json.Marshal(notebookEditArgs{NotebookPath: "nb.ipynb", CellID: "c1", NewSource: "print(2)\n"})
	if _, toolErr := tool.Execute(ctx, args); toolErr != nil {
		t.Fatalf("Execute: %v", toolErr)
	}

	data, _ := os.ReadFile(filepath.Join(root, "nb.ipynb"))
	var nb jupyterNotebook
	if err := json.Unmarshal(data, &nb); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(nb.Cells) != 1 || nb.Cells[0].Source[0] != "print(2)\n" {
		t.Fatalf("expected replaced source, got %+v", nb.Cells)
	}
	if nb.Cells[0].ExecutionCount != nil {
		t.Fatal("expected execution_count reset to null")
	}
	if len(nb.Metadata) == 0 {
		t.Fatal("expected notebook-level metadata preserved")
	}
}

func TestNotebookEdit_InsertAfterCell(t *testing.T) {
	root := t.TempDir()
	writeNotebook(t, root)
	ctx := newTestContext(t, root)
	tool := NewNotebookEditTool()

	args, _ := json.Marshal(notebookEditArgs{
		NotebookPath: "nb.ipynb", CellID: "c1", CellType: "markdown",
		NewSource: "# Title\n", EditMode: "insert",
	})
	if _, toolErr := tool.Execute(ctx, args); toolErr != nil {
		t.Fatalf("Execute: %v", toolErr)
	}

	data, _ := os.ReadFile(filepath.Join(root, "nb.ipynb"))
	var nb jupyterNotebook
	json.Unmarshal(data, &nb)
	if len(nb.Cells) != 2 {
		t.Fatalf("expected 2 cells, got %d", len(nb.Cells))
	}
	if nb.Cells[1].CellType != "markdown" {
		t.Fatalf("expected inserted markdown cell at index 1, got %+v", nb.Cells[1])
	}
}

func TestNotebookEdit_DeleteByFirstOfType(t *testing.T) {
	root := t.TempDir()
	writeNotebook(t, root)
	ctx := newTestContext(t, root)
	tool := NewNotebookEditTool()

	args, _ := json.Marshal(notebookEditArgs{NotebookPath: "nb.ipynb", CellType: "code", EditMode: "delete"})
	if _, toolErr := tool.Execute(ctx, args); toolErr != nil {
		t.Fatalf("Execute: %v", toolErr)
	}

	data, _ := os.ReadFile(filepath.Join(root, "nb.ipynb"))
	var nb jupyterNotebook
	json.Unmarshal(data, &nb)
	if len(nb.Cells) != 0 {
		t.Fatalf("expected cell deleted, got %+v", nb.Cells)
	}
}

func TestNotebookEdit_NoMatchingCellIsNotFound(t *testing.T) {
	root := t.TempDir()
	writeNotebook(t, root)
	ctx := newTestContext(t, root)
	tool := NewNotebookEditTool()

	args, _ := json.Marshal(notebookEditArgs{NotebookPath: "nb.ipynb", CellID: "missing", NewSource: "x"})
	_, toolErr := tool.Execute(ctx, args)
	if toolErr == nil || toolErr.Type != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", toolErr)
	}
}
