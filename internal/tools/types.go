// Package tools implements the agent's local tool system: a registry of
// stable-id tool handles, a per-invocation context that resolves
// user-supplied paths against a containment root, and the concrete
// tools themselves (filesystem, search, shell, web, interactive).
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ok-agent/ok/internal/shellsup"
)

// ErrorType classifies a ToolError for the model's retry logic.
type ErrorType string

const (
	ErrInvalidParams    ErrorType = "INVALID_PARAMS"
	ErrNotFound         ErrorType = "NOT_FOUND"
	ErrExecutionFailed  ErrorType = "EXECUTION_FAILED"
	ErrBinaryFile       ErrorType = "BINARY_FILE"
	ErrTimeout          ErrorType = "TIMEOUT"
	ErrMultipleMatches  ErrorType = "MULTIPLE_MATCHES"
	ErrOldNewIdentical  ErrorType = "OLD_NEW_IDENTICAL"
	ErrRedirectDetected ErrorType = "REDIRECT_DETECTED"
	ErrInvalidAPIKey    ErrorType = "INVALID_API_KEY"
	ErrRateLimited      ErrorType = "RATE_LIMIT_EXCEEDED"
)

// ToolError is a typed, structured tool failure.
type ToolError struct {
	Type    ErrorType
	Message string
}

func (e *ToolError) Error() string { return fmt.Sprintf("%s: %s", e.Type, e.Message) }

func NewToolError(t ErrorType, msg string) *ToolError { return &ToolError{Type: t, Message: msg} }

func NewToolErrorf(t ErrorType, format string, args ...any) *ToolError {
	return &ToolError{Type: t, Message: fmt.Sprintf(format, args...)}
}

// Result is a tool's successful output.
type Result struct {
	Title    string
	Output   string
	Metadata map[string]any
}

// ToolContext is the immutable per-invocation environment passed to
// Execute. Tools performing filesystem work must route user-supplied
// paths through ResolvePath rather than joining them directly.
type ToolContext struct {
	ctx         context.Context
	SessionID   string
	MessageID   string
	Agent       string
	WorkingDir  string // absolute, normalized containment root
	Shells      *shellsup.Supervisor
}

// NewContext builds a ToolContext, normalizing workingDir to an absolute
// path up front so ResolvePath never has to re-derive it.
func NewContext(ctx context.Context, sessionID, messageID, agent, workingDir string, shells *shellsup.Supervisor) (*ToolContext, error) {
	root, err := normalizeRoot(workingDir)
	if err != nil {
		return nil, err
	}
	return &ToolContext{
		ctx:        ctx,
		SessionID:  sessionID,
		MessageID:  messageID,
		Agent:      agent,
		WorkingDir: root,
		Shells:     shells,
	}, nil
}

// Context returns the cancellation/deadline context for this call.
func (c *ToolContext) Context() context.Context { return c.ctx }

// Tool is the uniform invocation interface used by the turn engine. The
// engine must never downcast a Tool to a concrete type.
type Tool interface {
	ID() string
	Description() string
	InputSchema() map[string]any
	Execute(ctx *ToolContext, input json.RawMessage) (Result, *ToolError)
}

// formatError renders a ToolError as the tool_result text handed back to
// the model, per the turn engine's formatting contract.
func formatError(err *ToolError) string {
	return fmt.Sprintf("Tool execution failed: %s", err.Error())
}

// FormatSuccess renders a successful Result as the tool_result text
// handed back to the model: "Tool: <title>\nOutput:\n<output>".
func FormatSuccess(r Result) string {
	return fmt.Sprintf("Tool: %s\nOutput:\n%s", r.Title, r.Output)
}

// FormatError is the exported form of formatError, used by the engine
// when a tool lookup itself fails (rather than a tool's own Execute).
func FormatError(err *ToolError) string { return formatError(err) }
