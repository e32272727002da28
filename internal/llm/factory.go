package llm

import (
	"fmt"
	"strings"

	"github.com/ok-agent/ok/internal/config"
)

// NewProvider creates the configured default provider, wrapped with
// automatic retry for rate limits and other transient failures.
func NewProvider(cfg *config.Config) (Provider, error) {
	provider, err := newProviderInternal(cfg)
	if err != nil {
		return nil, err
	}
	return WrapWithRetry(provider, DefaultRetryConfig()), nil
}

// NewProviderByName creates a provider by name with an optional model
// override, for per-invocation provider selection (e.g. a sub-agent
// pinned to a cheaper model).
func NewProviderByName(cfg *config.Config, name, model string) (Provider, error) {
	pc, ok := cfg.Providers[name]
	if !ok {
		pc = config.ProviderConfig{}
	}
	if model != "" {
		pc.Model = model
	}
	provider, err := createProviderFromConfig(name, pc)
	if err != nil {
		return nil, err
	}
	return WrapWithRetry(provider, DefaultRetryConfig()), nil
}

func newProviderInternal(cfg *config.Config) (Provider, error) {
	pc := cfg.Providers[cfg.DefaultProvider]
	return createProviderFromConfig(cfg.DefaultProvider, pc)
}

func createProviderFromConfig(name string, pc config.ProviderConfig) (Provider, error) {
	switch config.InferProviderType(name, pc.Type) {
	case config.ProviderTypeAnthropic:
		return NewAnthropicProvider(pc.APIKey, pc.Model)
	case config.ProviderTypeOpenAICompat:
		displayName := "OpenAI"
		if name != "openai" {
			displayName = strings.ToUpper(name[:1]) + name[1:]
		}
		return NewOpenAICompatProvider(pc.BaseURL, pc.APIKey, pc.Model, displayName), nil
	default:
		return nil, fmt.Errorf("unknown provider type for %q", name)
	}
}
