package tools

import (
	"encoding/json"
	"testing"
)

func sampleQuestions() []AskUserQuestionSpec {
	return []AskUserQuestionSpec{
		{
			Header:   "Database",
			Question: "Which database should we use?",
			Options: []AskUserOption{
				{Label: "Postgres", Description: "Relational, ACID"},
				{Label: "SQLite", Description: "Embedded, zero-config"},
			},
		},
	}
}

func TestAskUserQuestion_Phase1ReturnsPending(t *testing.T) {
	ctx := newTestContext(t, t.TempDir())
	tool := NewAskUserQuestionTool()

	args, _ := json.Marshal(askUserQuestionArgs{Questions: sampleQuestions()})
	res, toolErr := tool.Execute(ctx, args)
	if toolErr != nil {
		t.Fatalf("Execute: %v", toolErr)
	}
	if res.Output != pendingSentinel {
		t.Fatalf("expected pending sentinel, got %q", res.Output)
	}
	if res.Metadata["status"] != "pending" {
		t.Fatalf("expected pending status, got %v", res.Metadata["status"])
	}
	if res.Title != "Awaiting user response" {
		t.Fatalf("expected phase-1 title, got %q", res.Title)
	}
}

func TestAskUserQuestion_Phase2RequiresAllAnswers(t *testing.T) {
	ctx := newTestContext(t, t.TempDir())
	tool := NewAskUserQuestionTool()

	args, _ := json.Marshal(askUserQuestionArgs{Questions: sampleQuestions(), Answers: map[string]string{}})
	_, toolErr := tool.Execute(ctx, args)
	if toolErr == nil {
		t.Fatal("expected error for missing answer")
	}
}

func TestAskUserQuestion_Phase2ReturnsFinalResult(t *testing.T) {
	ctx := newTestContext(t, t.TempDir())
	tool := NewAskUserQuestionTool()

	args, _ := json.Marshal(askUserQuestionArgs{
		Questions: sampleQuestions(),
		Answers:   map[string]string{"q0": "Postgres"},
	})
	res, toolErr := tool.Execute(ctx, args)
	if toolErr != nil {
		t.Fatalf("Execute: %v", toolErr)
	}
	if res.Metadata["status"] != "answered" {
		t.Fatalf("expected answered status, got %v", res.Metadata["status"])
	}
	if res.Title != "User questions answered" {
		t.Fatalf("expected phase-2 title, got %q", res.Title)
	}
}

func TestAskUserQuestion_RejectsHeaderTooLong(t *testing.T) {
	ctx := newTestContext(t, t.TempDir())
	tool := NewAskUserQuestionTool()

	questions := sampleQuestions()
	questions[0].Header = "WayTooLongHeader"
	args, _ := json.Marshal(askUserQuestionArgs{Questions: questions})
	_, toolErr := tool.Execute(ctx, args)
	if toolErr == nil || toolErr.Type != ErrInvalidParams {
		t.Fatalf("expected ErrInvalidParams, got %v", toolErr)
	}
}
