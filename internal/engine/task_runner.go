package engine

import (
	"fmt"

	"github.com/ok-agent/ok/internal/llm"
	"github.com/ok-agent/ok/internal/store"
	"github.com/ok-agent/ok/internal/tools"
)

// TaskRunner implements tools.SubAgentRunner: it resolves a sub-agent type,
// builds and runs a SubAgent, and persists the resulting transcript.
type TaskRunner struct {
	Provider llm.Provider
	Registry *tools.Registry // full, unfiltered registry (includes task itself, for recursion)
	Sessions *store.SubAgentStore

	// MaxSubAgentTurns overrides DefaultMaxSubAgentTurns when > 0; Build
	// sets it through clampMaxSubAgentTurns, so it is never below the default.
	MaxSubAgentTurns int
}

// Run implements tools.SubAgentRunner.
func (r *TaskRunner) Run(parentCtx *tools.ToolContext, agentID, subagentType, prompt, model string) (string, error) {
	t, ok := SubAgentTypeByName(subagentType)
	if !ok {
		return "", fmt.Errorf("unknown subagent_type %q", subagentType)
	}

	maxTurns := r.MaxSubAgentTurns
	if maxTurns <= 0 {
		maxTurns = DefaultMaxSubAgentTurns
	}

	sub := NewSubAgent(r.Provider, r.Registry, t, agentID, parentCtx.SessionID, parentCtx.WorkingDir, maxTurns)
	sub.Model = model

	result, err := sub.Run(parentCtx.Context(), t.RolePrompt, prompt)
	if err != nil {
		if mte, ok := err.(*MaxTurnsExceededError); ok {
			r.persist(agentID, subagentType, parentCtx.SessionID, mte.Conversation)
		}
		return "", err
	}

	r.persist(agentID, subagentType, parentCtx.SessionID, result.Conversation)
	return result.Output, nil
}

func (r *TaskRunner) persist(agentID, subagentType, parentSessionID string, transcript []llm.Message) {
	if r.Sessions == nil {
		return
	}
	_ = r.Sessions.Save(&store.SubAgentSession{
		AgentID:         agentID,
		SubAgentType:    subagentType,
		ParentSessionID: parentSessionID,
		Transcript:      transcript,
	})
}
