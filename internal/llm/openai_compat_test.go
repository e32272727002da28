package llm

import (
	"encoding/json"
	"testing"
)

func TestBuildCompatMessages(t *testing.T) {
	messages := []Message{
		SystemText("be concise"),
		UserText("list files"),
		{
			Role: RoleAssistant,
			Parts: []Part{
				{Type: PartToolCall, ToolCall: &ToolCall{ID: "call-1", Name: "glob", Arguments: json.RawMessage(`{"pattern":"*.go"}`)}},
			},
		},
		ToolResultMessage("call-1", "glob", "main.go\ngo.mod", false),
	}

	out := buildCompatMessages(messages)
	if len(out) != 4 {
		t.Fatalf("expected 4 messages, got %d: %#v", len(out), out)
	}
	if out[0].Role != "system" || out[0].Content != "be concise" {
		t.Errorf("unexpected system message: %#v", out[0])
	}
	if out[2].Role != "assistant" || len(out[2].ToolCalls) != 1 || out[2].ToolCalls[0].Function.Name != "glob" {
		t.Errorf("unexpected assistant message: %#v", out[2])
	}
	if out[3].Role != "tool" || out[3].ToolCallID != "call-1" || out[3].Content != "main.go\ngo.mod" {
		t.Errorf("unexpected tool message: %#v", out[3])
	}
}

func TestBuildCompatToolChoice(t *testing.T) {
	tests := []struct {
		choice ToolChoice
		want   interface{}
	}{
		{ToolChoice{Mode: ToolChoiceNone}, "none"},
		{ToolChoice{Mode: ToolChoiceAuto}, "auto"},
		{ToolChoice{Mode: ToolChoiceRequired}, "required"},
	}
	for _, tc := range tests {
		if got := buildCompatToolChoice(tc.choice); got != tc.want {
			t.Errorf("buildCompatToolChoice(%v) = %v, want %v", tc.choice, got, tc.want)
		}
	}

	named := buildCompatToolChoice(ToolChoice{Mode: ToolChoiceName, Name: "read"})
	m, ok := named.(map[string]interface{})
	if !ok {
		t.Fatalf("expected a map for named tool choice, got %#v", named)
	}
	if m["type"] != "function" {
		t.Errorf("unexpected named tool choice: %#v", m)
	}
}

func TestCompatToolState_AssemblesStreamedArguments(t *testing.T) {
	state := newCompatToolState()
	first := oaiToolCall{Index: 0, ID: "call-1"}
	first.Function.Name = "read"
	first.Function.Arguments = `{"path":`
	second := oaiToolCall{Index: 0}
	second.Function.Arguments = `"main.go"}`

	state.Add([]oaiToolCall{first, second})

	calls := state.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(calls))
	}
	if calls[0].Name != "read" || string(calls[0].Arguments) != `{"path":"main.go"}` {
		t.Errorf("unexpected assembled call: %#v", calls[0])
	}
}

func TestBuildCompatTools(t *testing.T) {
	tools, err := buildCompatTools([]ToolSpec{
		{Name: "read", Description: "reads a file", Schema: map[string]interface{}{
			"type":       "object",
			"properties": map[string]interface{}{"path": map[string]interface{}{"type": "string"}},
			"required":   []interface{}{"path"},
		}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tools) != 1 || tools[0].Function.Name != "read" {
		t.Fatalf("unexpected tools: %#v", tools)
	}
}

func TestNewOpenAICompatProvider_DefaultsToOpenAI(t *testing.T) {
	p := NewOpenAICompatProvider("", "sk-test", "gpt-5.2", "OpenAI")
	if p.baseURL != "https://api.openai.com/v1" {
		t.Errorf("baseURL = %q, want default OpenAI endpoint", p.baseURL)
	}
	if p.Credential() != "api_key" {
		t.Errorf("Credential() = %q, want api_key", p.Credential())
	}
}

func TestNewOpenAICompatProvider_FreeWithoutKey(t *testing.T) {
	p := NewOpenAICompatProvider("http://localhost:11434/v1", "", "llama3", "Ollama")
	if p.Credential() != "free" {
		t.Errorf("Credential() = %q, want free", p.Credential())
	}
}
