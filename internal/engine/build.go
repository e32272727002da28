package engine

import (
	"fmt"

	"github.com/ok-agent/ok/internal/config"
	"github.com/ok-agent/ok/internal/debuglog"
	"github.com/ok-agent/ok/internal/llm"
	"github.com/ok-agent/ok/internal/shellsup"
	"github.com/ok-agent/ok/internal/store"
	"github.com/ok-agent/ok/internal/tools"
)

// Build wires a fully-populated Engine from resolved configuration: the
// default provider, every built-in tool (including task, backed by a
// TaskRunner over the same registry and provider), and the persistent
// todo/sub-agent stores.
func Build(cfg *config.Config, sessionID, workingDir string) (*Engine, error) {
	provider, err := llm.NewProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("build provider: %w", err)
	}

	todos, err := store.NewTodoStore()
	if err != nil {
		return nil, fmt.Errorf("open todo store: %w", err)
	}
	sessions, err := store.NewSubAgentStore()
	if err != nil {
		return nil, fmt.Errorf("open subagent store: %w", err)
	}

	search := searchProvider(cfg)

	registry := tools.NewRegistry()
	tools.RegisterBuiltins(registry, todos, search)

	runner := &TaskRunner{Provider: provider, Registry: registry, Sessions: sessions, MaxSubAgentTurns: clampMaxSubAgentTurns(cfg.SubAgent.MaxTurns)}
	registry.Register(tools.NewTaskTool(runner))

	debugLogger, err := debuglog.Open(cfg.DebugLog)
	if err != nil {
		return nil, fmt.Errorf("open debug log: %w", err)
	}

	shells := shellsup.New()
	pc := cfg.Providers[cfg.DefaultProvider]

	e := New(provider, registry, sessionID, "main", workingDir, shells)
	e.Model = pc.Model
	e.DebugLog = debugLogger
	return e, nil
}

// clampMaxSubAgentTurns enforces that the configured override may only
// raise the sub-agent turn cap, never lower it below the default.
func clampMaxSubAgentTurns(configured int) int {
	if configured < DefaultMaxSubAgentTurns {
		return DefaultMaxSubAgentTurns
	}
	return configured
}

// searchProvider selects the web_search backend named by configuration.
// Brave is the only provider implemented today; anything else falls back
// to it so web_search still has a usable default.
func searchProvider(cfg *config.Config) tools.SearchProvider {
	switch cfg.Search.Provider {
	case "brave", "":
		return tools.NewBraveSearchProvider(cfg.Search.Brave.APIKey)
	default:
		return tools.NewBraveSearchProvider(cfg.Search.Brave.APIKey)
	}
}
