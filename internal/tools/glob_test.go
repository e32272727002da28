package tools

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
)

func TestGlob_MatchesRecursivePattern(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "a.go"), "")
	mustWriteFile(t, filepath.Join(root, "sub", "b.go"), "")
	mustWriteFile(t, filepath.Join(root, "c.txt"), "")
	ctx := newTestContext(t, root)
	tool := NewGlobTool()

	args, _ := json.Marshal(globArgs{Pattern: "**/*.go"})
	res, toolErr := tool.Execute(ctx, args)
	if toolErr != nil {
		t.Fatalf("Execute: %v", toolErr)
	}
	if !strings.Contains(res.Output, "a.go") || !strings.Contains(res.Output, filepath.ToSlash(filepath.Join("sub", "b.go"))) {
		t.Fatalf("expected both go files, got %q", res.Output)
	}
	if strings.Contains(res.Output, "c.txt") {
		t.Fatalf("did not expect c.txt, got %q", res.Output)
	}
}

func TestGlob_ExcludesHiddenEntries(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, ".hidden", "x.go"), "")
	mustWriteFile(t, filepath.Join(root, "visible.go"), "")
	ctx := newTestContext(t, root)
	tool := NewGlobTool()

	args, _ := json.Marshal(globArgs{Pattern: "**/*.go"})
	res, toolErr := tool.Execute(ctx, args)
	if toolErr != nil {
		t.Fatalf("Execute: %v", toolErr)
	}
	if strings.Contains(res.Output, "hidden") {
		t.Fatalf("expected hidden dir excluded, got %q", res.Output)
	}
	if !strings.Contains(res.Output, "visible.go") {
		t.Fatalf("expected visible.go, got %q", res.Output)
	}
}

func TestGlob_NoMatchesReportsCleanly(t *testing.T) {
	root := t.TempDir()
	ctx := newTestContext(t, root)
	tool := NewGlobTool()

	args, _ := json.Marshal(globArgs{Pattern: "*.nonexistent"})
	res, toolErr := tool.Execute(ctx, args)
	if toolErr != nil {
		t.Fatalf("Execute: %v", toolErr)
	}
	if res.Output != "No files matched." {
		t.Fatalf("got %q", res.Output)
	}
}

func TestGlob_PathRoutedThroughPathGuard(t *testing.T) {
	root := t.TempDir()
	ctx := newTestContext(t, root)
	tool := NewGlobTool()

	args, _ := json.Marshal(globArgs{Pattern: "*", Path: "../../etc"})
	_, toolErr := tool.Execute(ctx, args)
	if toolErr == nil || toolErr.Type != ErrInvalidParams {
		t.Fatalf("expected ErrInvalidParams, got %v", toolErr)
	}
}
