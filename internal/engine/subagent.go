package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/ok-agent/ok/internal/llm"
	"github.com/ok-agent/ok/internal/shellsup"
	"github.com/ok-agent/ok/internal/tools"
)

// DefaultMaxSubAgentTurns is the hard cap on model requests a sub-agent may
// make, absent a configured override. Overrides may only raise this, never
// lower it.
const DefaultMaxSubAgentTurns = 10

// SubAgentType describes one of the canonical sub-agent kinds: its tool
// filter and an optional role prompt prepended to its task.
type SubAgentType struct {
	Name       string
	Tools      []string // "*" means unfiltered
	RolePrompt string
}

var subAgentTypes = map[string]SubAgentType{
	"general-purpose": {Name: "general-purpose", Tools: []string{"*"}},
	"Explore": {
		Name:       "Explore",
		Tools:      []string{"read", "grep", "glob", "bash"},
		RolePrompt: "You are an exploration agent. Investigate the codebase to answer the question thoroughly; do not make any changes.",
	},
	"Plan": {
		Name:       "Plan",
		Tools:      []string{"read", "grep", "glob", "bash"},
		RolePrompt: "You are a planning agent. Produce a concrete, actionable plan for the task; do not make any changes.",
	},
	"Bash": {
		Name:       "Bash",
		Tools:      []string{"bash", "bash_output"},
		RolePrompt: "You are an execution agent. Use the shell to accomplish the task.",
	},
}

// SubAgentTypeByName looks up a canonical sub-agent type by name.
func SubAgentTypeByName(name string) (SubAgentType, bool) {
	t, ok := subAgentTypes[name]
	return t, ok
}

// MaxTurnsExceededError is returned when a sub-agent exhausts its turn cap
// without producing a final, tool-use-free assistant message.
type MaxTurnsExceededError struct {
	Turns        int
	Conversation []llm.Message
}

func (e *MaxTurnsExceededError) Error() string {
	return fmt.Sprintf("Max turns exceeded: %d", e.Turns)
}

// SubAgentResult is what a completed sub-agent run returns to its caller
// (the task tool).
type SubAgentResult struct {
	Output       string
	Turns        int
	Conversation []llm.Message
}

// SubAgent is an embedded, bounded instance of the turn-engine loop: a
// filtered registry, an isolated shell supervisor, a role-prompt prefix,
// and a hard cap on model requests. It emits no TurnEvents.
type SubAgent struct {
	Provider llm.Provider
	Registry *tools.Registry // already filtered to the type's tool set

	AgentID    string
	SessionID  string
	WorkingDir string
	Shells     *shellsup.Supervisor // fresh, isolated from the parent

	Model    string
	MaxTurns int // 0 means DefaultMaxSubAgentTurns

	Messages []llm.Message
}

// NewSubAgent constructs a SubAgent for subagentType, filtering registry to
// its tool set and giving it a fresh, isolated shell supervisor.
func NewSubAgent(provider llm.Provider, registry *tools.Registry, subagentType SubAgentType, agentID, sessionID, workingDir string, maxTurns int) *SubAgent {
	return &SubAgent{
		Provider:   provider,
		Registry:   registry.Filter(subagentType.Tools),
		AgentID:    agentID,
		SessionID:  sessionID,
		WorkingDir: workingDir,
		Shells:     shellsup.New(),
		MaxTurns:   maxTurns,
	}
}

// Run prepends the role prompt (if any) to prompt, then drives the
// embedded loop until the model produces a tool-use-free assistant
// message or the turn cap is exceeded.
func (a *SubAgent) Run(ctx context.Context, rolePrompt, prompt string) (SubAgentResult, error) {
	defer a.Shells.Close()

	initial := prompt
	if rolePrompt != "" {
		initial = rolePrompt + "\n\n# Task\n" + prompt
	}
	a.Messages = append(a.Messages, llm.UserText(initial))

	maxTurns := a.MaxTurns
	if maxTurns <= 0 {
		maxTurns = DefaultMaxSubAgentTurns
	}

	for turn := 0; turn < maxTurns; turn++ {
		req := llm.Request{
			Model:    a.Model,
			Messages: a.Messages,
			Tools:    a.toolSpecs(),
		}

		stream, err := a.Provider.Stream(ctx, req)
		if err != nil {
			return SubAgentResult{}, err
		}

		text, toolUses, err := a.consumeStream(stream)
		stream.Close()
		if err != nil {
			return SubAgentResult{}, err
		}

		assistantMsg, hasToolUses := buildAssistantMessage(text, toolUses)
		if assistantMsg != nil {
			a.Messages = append(a.Messages, *assistantMsg)
		}

		if !hasToolUses {
			return SubAgentResult{Output: text, Turns: turn + 1, Conversation: a.Messages}, nil
		}

		for _, tu := range toolUses {
			content, isError := a.executeOne(ctx, tu)
			a.Messages = append(a.Messages, llm.ToolResultMessage(tu.ID, tu.Name, content, isError))
		}
	}

	return SubAgentResult{}, &MaxTurnsExceededError{Turns: maxTurns, Conversation: a.Messages}
}

func (a *SubAgent) toolSpecs() []llm.ToolSpec {
	schemas := a.Registry.ListSchemas()
	specs := make([]llm.ToolSpec, 0, len(schemas))
	for _, s := range schemas {
		specs = append(specs, llm.ToolSpec{Name: s.Name, Description: s.Description, Schema: s.InputSchema})
	}
	return specs
}

func (a *SubAgent) consumeStream(stream llm.Stream) (string, []*ToolUseBlock, error) {
	var text string
	var toolUses []*ToolUseBlock
	for {
		ev, err := stream.Recv()
		if err == io.EOF {
			return text, toolUses, nil
		}
		if err != nil {
			return "", nil, err
		}
		switch ev.Type {
		case llm.EventTextDelta:
			text += ev.Text
		case llm.EventToolCall:
			if ev.Tool != nil {
				toolUses = append(toolUses, &ToolUseBlock{ID: ev.Tool.ID, Name: ev.Tool.Name, Input: ev.Tool.Arguments})
			}
		case llm.EventDone:
			return text, toolUses, nil
		case llm.EventError:
			if ev.Err != nil {
				return "", nil, ev.Err
			}
			return "", nil, fmt.Errorf("model stream error")
		}
	}
}

// executeOne mirrors Engine.executeOne but with the sub-agent runner's
// distinct, must-be-preserved error message texts.
func (a *SubAgent) executeOne(ctx context.Context, tu *ToolUseBlock) (content string, isError bool) {
	t, ok := a.Registry.Get(tu.Name)
	if !ok {
		return fmt.Sprintf("Tool '%s' not available in subagent", tu.Name), true
	}

	if verr := a.Registry.Validate(tu.Name, json.RawMessage(tu.Input)); verr != nil {
		return fmt.Sprintf("Tool error: %v", verr.Message), true
	}

	toolCtx, err := tools.NewContext(ctx, a.SessionID, tu.ID, a.AgentID, a.WorkingDir, a.Shells)
	if err != nil {
		return fmt.Sprintf("Tool error: %v", err), true
	}

	result, toolErr := t.Execute(toolCtx, json.RawMessage(tu.Input))
	if toolErr != nil {
		return fmt.Sprintf("Tool error: %v", toolErr.Message), true
	}
	return tools.FormatSuccess(result), false
}
