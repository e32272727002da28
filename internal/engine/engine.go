package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/ok-agent/ok/internal/debuglog"
	"github.com/ok-agent/ok/internal/llm"
	"github.com/ok-agent/ok/internal/shellsup"
	"github.com/ok-agent/ok/internal/tools"
)

// Engine drives one conversation against a provider and tool registry,
// emitting TurnEvents as the turn progresses.
type Engine struct {
	Provider llm.Provider
	Registry *tools.Registry

	SessionID  string
	Agent      string
	WorkingDir string
	Shells     *shellsup.Supervisor

	Model           string
	MaxOutputTokens int
	Temperature     float32
	TopP            float32

	// DebugLog receives one line per model request and tool execution.
	// Nil disables logging; Logger.Write tolerates a nil receiver too.
	DebugLog *debuglog.Logger

	// Messages is the running conversation. RunTurn appends to it in place.
	Messages []llm.Message
}

// New builds an Engine with the given collaborators.
func New(provider llm.Provider, registry *tools.Registry, sessionID, agent, workingDir string, shells *shellsup.Supervisor) *Engine {
	return &Engine{
		Provider:   provider,
		Registry:   registry,
		SessionID:  sessionID,
		Agent:      agent,
		WorkingDir: workingDir,
		Shells:     shells,
	}
}

// send delivers ev on events and reports false if the send panics because
// events has been closed; callers treat that as a disconnected consumer and
// abort the turn silently. A consumer that stops reading without closing the
// channel is not detected: the send blocks until it reads again.
func send(events chan<- TurnEvent, ev TurnEvent) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	events <- ev
	return true
}

// RunTurn appends userText as a user message and drives the turn to
// completion: opening model streams, executing tool calls sequentially,
// and appending tool results, until the model responds with no tool uses
// or a fatal error occurs. Events are sent to events in receipt order; if
// the consumer disconnects (a send fails) the turn aborts silently.
func (e *Engine) RunTurn(ctx context.Context, userText string, events chan<- TurnEvent) {
	e.Messages = append(e.Messages, llm.UserText(userText))
	e.runLoop(ctx, events)
}

func (e *Engine) toolSpecs() []llm.ToolSpec {
	schemas := e.Registry.ListSchemas()
	specs := make([]llm.ToolSpec, 0, len(schemas))
	for _, s := range schemas {
		specs = append(specs, llm.ToolSpec{Name: s.Name, Description: s.Description, Schema: s.InputSchema})
	}
	return specs
}

func (e *Engine) runLoop(ctx context.Context, events chan<- TurnEvent) {
	for {
		req := llm.Request{
			Model:           e.Model,
			Messages:        e.Messages,
			Tools:           e.toolSpecs(),
			MaxOutputTokens: e.MaxOutputTokens,
			Temperature:     e.Temperature,
			TopP:            e.TopP,
		}

		e.DebugLog.Write(fmt.Sprintf("request: model=%s messages=%d tools=%d", e.Model, len(e.Messages), len(req.Tools)))

		stream, err := e.Provider.Stream(ctx, req)
		if err != nil {
			send(events, TurnEvent{Type: EventError, Err: err.Error()})
			send(events, TurnEvent{Type: EventTurnComplete})
			return
		}

		var text string
		var toolUses []*ToolUseBlock
		streamErr := e.consumeStream(stream, events, &text, &toolUses)
		stream.Close()
		if streamErr != nil {
			if !send(events, TurnEvent{Type: EventError, Err: streamErr.Error()}) {
				return
			}
			send(events, TurnEvent{Type: EventTurnComplete})
			return
		}

		e.DebugLog.Write(fmt.Sprintf("response: text_len=%d tool_uses=%d", len(text), len(toolUses)))

		if !send(events, TurnEvent{Type: EventAssistantStop}) {
			return
		}

		assistantMsg, hasToolUses := buildAssistantMessage(text, toolUses)
		if assistantMsg != nil {
			e.Messages = append(e.Messages, *assistantMsg)
		}

		if !hasToolUses {
			send(events, TurnEvent{Type: EventTurnComplete})
			return
		}

		if !send(events, TurnEvent{Type: EventToolExecutionStart, ToolExecutionCount: len(toolUses)}) {
			return
		}

		resultMsgs := e.executeToolUses(ctx, toolUses, events)
		if resultMsgs == nil {
			// consumer disconnected mid-execution
			return
		}
		e.Messages = append(e.Messages, resultMsgs...)
	}
}

// consumeStream reads events from stream in order until it sees a done
// marker, accumulating assistant text and recording tool_use blocks.
func (e *Engine) consumeStream(stream llm.Stream, events chan<- TurnEvent, text *string, toolUses *[]*ToolUseBlock) error {
	if !send(events, TurnEvent{Type: EventAssistantStart}) {
		return nil
	}
	for {
		ev, err := stream.Recv()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		switch ev.Type {
		case llm.EventTextDelta:
			if ev.Text != "" {
				*text += ev.Text
				if !send(events, TurnEvent{Type: EventAssistantTextDelta, Text: ev.Text}) {
					return nil
				}
			}
		case llm.EventToolCall:
			if ev.Tool != nil {
				tu := &ToolUseBlock{ID: ev.Tool.ID, Name: ev.Tool.Name, Input: ev.Tool.Arguments}
				*toolUses = append(*toolUses, tu)
				if !send(events, TurnEvent{Type: EventToolUse, ToolUse: tu}) {
					return nil
				}
			}
		case llm.EventDone:
			return nil
		case llm.EventError:
			if ev.Err != nil {
				return ev.Err
			}
			return fmt.Errorf("model stream error")
		default:
			// usage, retry, etc. are not part of the turn-event contract.
		}
	}
}

// buildAssistantMessage constructs the assistant message to append for a
// completed stream, per the rule: tool_uses present -> [text?, tool_use*];
// else nonempty text -> simple text message; else no message at all.
func buildAssistantMessage(text string, toolUses []*ToolUseBlock) (*llm.Message, bool) {
	if len(toolUses) > 0 {
		parts := make([]llm.Part, 0, len(toolUses)+1)
		if text != "" {
			parts = append(parts, llm.Part{Type: llm.PartText, Text: text})
		}
		for _, tu := range toolUses {
			parts = append(parts, llm.Part{Type: llm.PartToolCall, ToolCall: &llm.ToolCall{
				ID: tu.ID, Name: tu.Name, Arguments: json.RawMessage(tu.Input),
			}})
		}
		return &llm.Message{Role: llm.RoleAssistant, Parts: parts}, true
	}
	if text != "" {
		msg := llm.AssistantText(text)
		return &msg, false
	}
	return nil, false
}

// executeToolUses runs each tool_use sequentially, in order, emitting a
// ToolResult event and an appended tool_result message per call. Returns
// nil if the consumer disconnected partway through.
func (e *Engine) executeToolUses(ctx context.Context, toolUses []*ToolUseBlock, events chan<- TurnEvent) []llm.Message {
	results := make([]llm.Message, 0, len(toolUses))
	for _, tu := range toolUses {
		content, isError := e.executeOne(ctx, tu)
		if !send(events, TurnEvent{
			Type:      EventToolResult,
			ToolUseID: tu.ID,
			ToolName:  tu.Name,
			Content:   content,
			IsError:   isError,
		}) {
			return nil
		}
		results = append(results, llm.ToolResultMessage(tu.ID, tu.Name, content, isError))
	}
	return results
}

// executeOne validates and executes a single tool_use, formatting its
// outcome as the text sent back to the model.
func (e *Engine) executeOne(ctx context.Context, tu *ToolUseBlock) (content string, isError bool) {
	defer func() {
		if r := recover(); r != nil {
			content = fmt.Sprintf("Tool execution failed: panic: %v", r)
			isError = true
		}
		e.DebugLog.Write(fmt.Sprintf("tool: name=%s error=%v", tu.Name, isError))
	}()

	t, ok := e.Registry.Get(tu.Name)
	if !ok {
		return fmt.Sprintf("Tool '%s' not found", tu.Name), true
	}

	if verr := e.Registry.Validate(tu.Name, json.RawMessage(tu.Input)); verr != nil {
		return tools.FormatError(verr), true
	}

	toolCtx, err := tools.NewContext(ctx, e.SessionID, tu.ID, e.Agent, e.WorkingDir, e.Shells)
	if err != nil {
		return fmt.Sprintf("Tool execution failed: %v", err), true
	}

	result, toolErr := t.Execute(toolCtx, json.RawMessage(tu.Input))
	if toolErr != nil {
		return fmt.Sprintf("Tool execution failed: %v", toolErr.Message), true
	}
	return tools.FormatSuccess(result), false
}
