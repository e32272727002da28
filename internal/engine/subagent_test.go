package engine

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/ok-agent/ok/internal/llm"
	"github.com/ok-agent/ok/internal/tools"
)

func baseRegistry() *tools.Registry {
	r := tools.NewRegistry()
	r.Register(echoTool{})
	return r
}

func TestSubAgent_ReturnsOutputOnTextOnlyResponse(t *testing.T) {
	provider := &fakeProvider{streams: []*fakeStream{
		{events: []llm.Event{
			{Type: llm.EventTextDelta, Text: "the answer"},
			{Type: llm.EventDone},
		}},
	}}
	gp, _ := SubAgentTypeByName("general-purpose")
	sub := NewSubAgent(provider, baseRegistry(), gp, "agent-1", "sess-1", t.TempDir(), 0)

	result, err := sub.Run(context.Background(), gp.RolePrompt, "what is it?")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Output != "the answer" {
		t.Fatalf("expected output %q, got %q", "the answer", result.Output)
	}
	if result.Turns != 1 {
		t.Fatalf("expected 1 turn, got %d", result.Turns)
	}
}

func TestSubAgent_FilteredRegistryRejectsDisallowedTool(t *testing.T) {
	provider := &fakeProvider{streams: []*fakeStream{
		{events: []llm.Event{
			{Type: llm.EventToolCall, Tool: &llm.ToolCall{ID: "c1", Name: "echo", Arguments: json.RawMessage(`{"value":"x"}`)}},
			{Type: llm.EventDone},
		}},
		{events: []llm.Event{
			{Type: llm.EventTextDelta, Text: "done"},
			{Type: llm.EventDone},
		}},
	}}

	explore, _ := SubAgentTypeByName("Explore") // does not include "echo"
	sub := NewSubAgent(provider, baseRegistry(), explore, "agent-2", "sess-1", t.TempDir(), 0)

	result, err := sub.Run(context.Background(), explore.RolePrompt, "try echo")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Output != "done" {
		t.Fatalf("expected final output %q, got %q", "done", result.Output)
	}
	var sawDenied bool
	for _, msg := range result.Conversation {
		for _, part := range msg.Parts {
			if part.Type == llm.PartToolResult && part.ToolResult != nil && part.ToolResult.Content == "Tool 'echo' not available in subagent" {
				sawDenied = true
			}
		}
	}
	if !sawDenied {
		t.Fatalf("expected a denial tool_result, got %+v", result.Conversation)
	}
}

func TestSubAgent_MaxTurnsExceeded(t *testing.T) {
	loopEvents := []llm.Event{
		{Type: llm.EventToolCall, Tool: &llm.ToolCall{ID: "c1", Name: "echo", Arguments: json.RawMessage(`{"value":"x"}`)}},
		{Type: llm.EventDone},
	}
	streams := make([]*fakeStream, 3)
	for i := range streams {
		streams[i] = &fakeStream{events: append([]llm.Event(nil), loopEvents...)}
	}
	provider := &fakeProvider{streams: streams}

	gp, _ := SubAgentTypeByName("general-purpose")
	sub := NewSubAgent(provider, baseRegistry(), gp, "agent-3", "sess-1", t.TempDir(), 3)

	_, err := sub.Run(context.Background(), "", "loop forever")
	var mte *MaxTurnsExceededError
	if err == nil {
		t.Fatal("expected MaxTurnsExceededError")
	}
	if e, ok := err.(*MaxTurnsExceededError); !ok {
		t.Fatalf("expected *MaxTurnsExceededError, got %T: %v", err, err)
	} else {
		mte = e
	}
	if mte.Turns != 3 {
		t.Fatalf("expected Turns=3, got %d", mte.Turns)
	}
}
