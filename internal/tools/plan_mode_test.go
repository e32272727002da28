package tools

import (
	"encoding/json"
	"os"
	"testing"
)

func TestEnterPlanMode_CreatesPlanFile(t *testing.T) {
	root := t.TempDir()
	ctx := newTestContext(t, root)
	tool := NewEnterPlanModeTool()

	res, toolErr := tool.Execute(ctx, json.RawMessage(`{}`))
	if toolErr != nil {
		t.Fatalf("Execute: %v", toolErr)
	}
	path := res.Metadata["plan_path"].(string)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected plan file to exist: %v", err)
	}
}

func TestExitPlanMode_NoPlanFileIsHardError(t *testing.T) {
	root := t.TempDir()
	ctx := newTestContext(t, root)
	tool := NewExitPlanModeTool()

	_, toolErr := tool.Execute(ctx, json.RawMessage(`{}`))
	if toolErr == nil || toolErr.Type != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", toolErr)
	}
}

func TestExitPlanMode_Phase1ReturnsPendingWithPlanText(t *testing.T) {
	root := t.TempDir()
	ctx := newTestContext(t, root)
	enter := NewEnterPlanModeTool()
	if _, toolErr := enter.Execute(ctx, json.RawMessage(`{}`)); toolErr != nil {
		t.Fatalf("enter_plan_mode: %v", toolErr)
	}

	exit := NewExitPlanModeTool()
	res, toolErr := exit.Execute(ctx, json.RawMessage(`{}`))
	if toolErr != nil {
		t.Fatalf("Execute: %v", toolErr)
	}
	if res.Output != pendingSentinel {
		t.Fatalf("expected pending sentinel, got %q", res.Output)
	}
	if res.Metadata["plan"] == "" {
		t.Fatal("expected plan text in metadata")
	}
}

func TestExitPlanMode_Phase2Approved(t *testing.T) {
	root := t.TempDir()
	ctx := newTestContext(t, root)
	enter := NewEnterPlanModeTool()
	enter.Execute(ctx, json.RawMessage(`{}`))

	exit := NewExitPlanModeTool()
	approved := true
	args, _ := json.Marshal(exitPlanModeArgs{Approved: &approved})
	res, toolErr := exit.Execute(ctx, args)
	if toolErr != nil {
		t.Fatalf("Execute: %v", toolErr)
	}
	if res.Metadata["status"] != "approved" {
		t.Fatalf("expected approved status, got %v", res.Metadata["status"])
	}
}

func TestExitPlanMode_Phase2Rejected(t *testing.T) {
	root := t.TempDir()
	ctx := newTestContext(t, root)
	enter := NewEnterPlanModeTool()
	enter.Execute(ctx, json.RawMessage(`{}`))

	exit := NewExitPlanModeTool()
	rejected := false
	args, _ := json.Marshal(exitPlanModeArgs{Approved: &rejected})
	res, toolErr := exit.Execute(ctx, args)
	if toolErr != nil {
		t.Fatalf("Execute: %v", toolErr)
	}
	if res.Metadata["status"] != "rejected" {
		t.Fatalf("expected rejected status, got %v", res.Metadata["status"])
	}
}
