package cmd

import (
	"strings"
	"testing"
)

func TestResolvePrompt_FromArgs(t *testing.T) {
	got, err := resolvePrompt([]string{"list", "go", "files"}, strings.NewReader(""))
	if err != nil {
		t.Fatalf("resolvePrompt: %v", err)
	}
	if got != "list go files" {
		t.Fatalf("got %q", got)
	}
}

func TestResolvePrompt_FromStdin(t *testing.T) {
	got, err := resolvePrompt(nil, strings.NewReader("summarize README.md\n"))
	if err != nil {
		t.Fatalf("resolvePrompt: %v", err)
	}
	if got != "summarize README.md" {
		t.Fatalf("got %q", got)
	}
}

func TestResolvePrompt_EmptyStdinYieldsEmptyPrompt(t *testing.T) {
	got, err := resolvePrompt(nil, strings.NewReader(""))
	if err != nil {
		t.Fatalf("resolvePrompt: %v", err)
	}
	if got != "" {
		t.Fatalf("got %q, want empty", got)
	}
}
