package llm

import "testing"

func TestToolResultMessage_PlainText(t *testing.T) {
	msg := ToolResultMessage("call-1", "write", "Created new file: /tmp/test.go (10 lines).", false)

	if len(msg.Parts) != 1 {
		t.Fatalf("expected 1 part, got %d", len(msg.Parts))
	}
	result := msg.Parts[0].ToolResult
	if result == nil {
		t.Fatal("expected ToolResult to be non-nil")
	}
	if result.Content != "Created new file: /tmp/test.go (10 lines)." {
		t.Errorf("Content = %q, want clean text", result.Content)
	}
	if result.IsError {
		t.Error("expected IsError = false")
	}
}

func TestToolResultMessage_Error(t *testing.T) {
	msg := ToolResultMessage("call-1", "edit", "file not found", true)

	result := msg.Parts[0].ToolResult
	if !result.IsError {
		t.Error("expected IsError = true")
	}
	if result.Content != "file not found" {
		t.Errorf("Content = %q, want %q", result.Content, "file not found")
	}
}

func TestSystemUserAssistantText(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		role Role
	}{
		{"system", SystemText("you are a helpful agent"), RoleSystem},
		{"user", UserText("hello"), RoleUser},
		{"assistant", AssistantText("hi there"), RoleAssistant},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.msg.Role != tc.role {
				t.Errorf("Role = %q, want %q", tc.msg.Role, tc.role)
			}
			if len(tc.msg.Parts) != 1 || tc.msg.Parts[0].Type != PartText {
				t.Fatalf("expected a single text part, got %#v", tc.msg.Parts)
			}
		})
	}
}
