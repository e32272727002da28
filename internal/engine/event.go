// Package engine drives a conversation turn: it streams a model response,
// executes any requested tools, and feeds their results back until the
// model stops asking for tools.
package engine

// EventType tags a TurnEvent variant.
type EventType string

const (
	EventAssistantStart     EventType = "assistant_start"
	EventAssistantTextDelta EventType = "assistant_text_delta"
	EventToolUse            EventType = "tool_use"
	EventAssistantStop      EventType = "assistant_stop"
	EventToolExecutionStart EventType = "tool_execution_start"
	EventToolResult         EventType = "tool_result"
	EventTurnComplete       EventType = "turn_complete"
	EventError              EventType = "error"
)

// ToolUseBlock is a model-requested tool invocation recorded on the
// assistant message.
type ToolUseBlock struct {
	ID    string
	Name  string
	Input []byte
}

// TurnEvent is one tagged update emitted to the UI while a turn runs.
type TurnEvent struct {
	Type EventType

	Text string // AssistantTextDelta

	ToolUse *ToolUseBlock // ToolUse

	ToolExecutionCount int // ToolExecutionStart

	// ToolResult fields
	ToolUseID string
	ToolName  string
	Content   string
	IsError   bool

	Err string // Error
}
