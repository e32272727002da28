package tools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/ok-agent/ok/internal/shellsup"
)

func newTestContextWithShells(t *testing.T, workingDir string, shells *shellsup.Supervisor) *ToolContext {
	t.Helper()
	c, err := NewContext(context.Background(), "sess", "msg", "main", workingDir, shells)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	return c
}

func TestBash_ForegroundCapturesOutputAndExitCode(t *testing.T) {
	root := t.TempDir()
	ctx := newTestContext(t, root)
	tool := NewBashTool()

	args, _ := json.Marshal(bashArgs{Command: "echo hi; exit 3"})
	res, toolErr := tool.Execute(ctx, args)
	if toolErr != nil {
		t.Fatalf("Execute: %v", toolErr)
	}
	if !strings.Contains(res.Output, "hi") {
		t.Fatalf("expected stdout captured, got %q", res.Output)
	}
	if res.Metadata["exit_code"] != 3 {
		t.Fatalf("expected exit_code 3, got %v", res.Metadata["exit_code"])
	}
}

func TestBash_RejectsUnsafeCommand(t *testing.T) {
	root := t.TempDir()
	ctx := newTestContext(t, root)
	tool := NewBashTool()

	args, _ := json.Marshal(bashArgs{Command: "find / -name passwd"})
	_, toolErr := tool.Execute(ctx, args)
	if toolErr == nil {
		t.Fatal("expected rejection of unsafe command")
	}
}

func TestBash_BackgroundSpawnsUnderSupervisor(t *testing.T) {
	root := t.TempDir()
	sup := shellsup.New()
	defer sup.Close()
	ctx := newTestContextWithShells(t, root, sup)
	tool := NewBashTool()

	args, _ := json.Marshal(bashArgs{Command: "echo bg", RunInBackground: true})
	res, toolErr := tool.Execute(ctx, args)
	if toolErr != nil {
		t.Fatalf("Execute: %v", toolErr)
	}
	id, ok := res.Metadata["shell_id"].(string)
	if !ok || id == "" {
		t.Fatalf("expected shell_id in metadata, got %v", res.Metadata)
	}

	outputTool := NewBashOutputTool()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		outArgs, _ := json.Marshal(bashOutputArgs{ShellID: id})
		outRes, outErr := outputTool.Execute(ctx, outArgs)
		if outErr != nil {
			t.Fatalf("bash_output: %v", outErr)
		}
		if outRes.Metadata["status"] == "completed" {
			if !strings.Contains(outRes.Output, "bg") {
				t.Fatalf("expected bg output, got %q", outRes.Output)
			}
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("background shell never completed")
}

func TestKillShell_TerminatesRunningShell(t *testing.T) {
	root := t.TempDir()
	sup := shellsup.New()
	defer sup.Close()
	ctx := newTestContextWithShells(t, root, sup)
	bash := NewBashTool()

	args, _ := json.Marshal(bashArgs{Command: "sleep 30", RunInBackground: true})
	res, toolErr := bash.Execute(ctx, args)
	if toolErr != nil {
		t.Fatalf("Execute: %v", toolErr)
	}
	id := res.Metadata["shell_id"].(string)

	kill := NewKillShellTool()
	killArgs, _ := json.Marshal(killShellArgs{ShellID: id})
	if _, toolErr := kill.Execute(ctx, killArgs); toolErr != nil {
		t.Fatalf("kill_shell: %v", toolErr)
	}

	summary, ok := sup.Status(id)
	if !ok {
		t.Fatal("expected shell status to still be queryable")
	}
	if summary.ExitCode == nil || *summary.ExitCode != 137 {
		t.Fatalf("expected exit code 137 after kill, got %v", summary.ExitCode)
	}
}

func TestKillShell_UnknownIDReturnsNotFound(t *testing.T) {
	root := t.TempDir()
	sup := shellsup.New()
	defer sup.Close()
	ctx := newTestContextWithShells(t, root, sup)
	kill := NewKillShellTool()

	args, _ := json.Marshal(killShellArgs{ShellID: "nonexistent"})
	_, toolErr := kill.Execute(ctx, args)
	if toolErr == nil || toolErr.Type != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", toolErr)
	}
}
