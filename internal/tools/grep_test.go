package tools

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestGrep_FindsMatchCaseInsensitive(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "a.go"), "package main\nfunc Hello() {}\n")
	ctx := newTestContext(t, root)
	tool := NewGrepTool()

	sensitive := false
	args, _ := json.Marshal(grepArgs{Pattern: "hello", CaseSensitive: &sensitive})
	res, toolErr := tool.Execute(ctx, args)
	if toolErr != nil {
		t.Fatalf("Execute: %v", toolErr)
	}
	if !strings.Contains(res.Output, "Hello") {
		t.Fatalf("expected match, got %q", res.Output)
	}
}

func TestGrep_NoMatchesReportsCleanly(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "a.txt"), "nothing to see here\n")
	ctx := newTestContext(t, root)
	tool := NewGrepTool()

	args, _ := json.Marshal(grepArgs{Pattern: "zzz_not_present"})
	res, toolErr := tool.Execute(ctx, args)
	if toolErr != nil {
		t.Fatalf("Execute: %v", toolErr)
	}
	if res.Output != "No matches found." {
		t.Fatalf("got %q", res.Output)
	}
}

func TestGrep_ExcludePatternsOverrideIncludes(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "a.go"), "token\n")
	mustWriteFile(t, filepath.Join(root, "a_test.go"), "token\n")
	ctx := newTestContext(t, root)
	tool := NewGrepTool()

	args, _ := json.Marshal(grepArgs{
		Pattern:         "token",
		IncludePatterns: []string{"*.go"},
		ExcludePatterns: []string{"*_test.go"},
	})
	res, toolErr := tool.Execute(ctx, args)
	if toolErr != nil {
		t.Fatalf("Execute: %v", toolErr)
	}
	if strings.Contains(res.Output, "a_test.go") {
		t.Fatalf("expected a_test.go to be excluded, got %q", res.Output)
	}
	if !strings.Contains(res.Output, "a.go") {
		t.Fatalf("expected a.go in results, got %q", res.Output)
	}
}

func TestGrep_ExcludePatternMatchesNestedPath(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "gen", "a.go"), "token\n")
	mustWriteFile(t, filepath.Join(root, "src", "b.go"), "token\n")
	ctx := newTestContext(t, root)
	tool := NewGrepTool()

	args, _ := json.Marshal(grepArgs{
		Pattern:         "token",
		ExcludePatterns: []string{"gen/**"},
	})
	res, toolErr := tool.Execute(ctx, args)
	if toolErr != nil {
		t.Fatalf("Execute: %v", toolErr)
	}
	if strings.Contains(res.Output, filepath.Join("gen", "a.go")) {
		t.Fatalf("expected gen/a.go to be excluded, got %q", res.Output)
	}
	if !strings.Contains(res.Output, filepath.Join("src", "b.go")) {
		t.Fatalf("expected src/b.go in results, got %q", res.Output)
	}
}

func TestGrep_HonorsGitIgnore(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, ".gitignore"), "ignored.go\n")
	mustWriteFile(t, filepath.Join(root, "ignored.go"), "token\n")
	mustWriteFile(t, filepath.Join(root, "kept.go"), "token\n")
	ctx := newTestContext(t, root)
	tool := NewGrepTool()

	args, _ := json.Marshal(grepArgs{Pattern: "token"})
	res, toolErr := tool.Execute(ctx, args)
	if toolErr != nil {
		t.Fatalf("Execute: %v", toolErr)
	}
	if strings.Contains(res.Output, "ignored.go") {
		t.Fatalf("expected ignored.go to be skipped, got %q", res.Output)
	}
	if !strings.Contains(res.Output, "kept.go") {
		t.Fatalf("expected kept.go in results, got %q", res.Output)
	}
}

func TestGrep_SkipsBinaryFiles(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "text.txt"), "needle\n")
	binPath := filepath.Join(root, "blob.bin")
	if err := os.WriteFile(binPath, []byte("needle\x00moretext"), 0o644); err != nil {
		t.Fatalf("write binary: %v", err)
	}
	ctx := newTestContext(t, root)
	tool := NewGrepTool()

	args, _ := json.Marshal(grepArgs{Pattern: "needle"})
	res, toolErr := tool.Execute(ctx, args)
	if toolErr != nil {
		t.Fatalf("Execute: %v", toolErr)
	}
	if strings.Contains(res.Output, "blob.bin") {
		t.Fatalf("expected blob.bin to be skipped, got %q", res.Output)
	}
	if !strings.Contains(res.Output, "text.txt") {
		t.Fatalf("expected text.txt in results, got %q", res.Output)
	}
}

func TestGrep_SearchRootRoutedThroughPathGuard(t *testing.T) {
	root := t.TempDir()
	ctx := newTestContext(t, root)
	tool := NewGrepTool()

	args, _ := json.Marshal(grepArgs{Pattern: "x", Path: "../../etc"})
	_, toolErr := tool.Execute(ctx, args)
	if toolErr == nil || toolErr.Type != ErrInvalidParams {
		t.Fatalf("expected ErrInvalidParams, got %v", toolErr)
	}
}
