package llm

// ProviderModels lists common model names keyed by provider; it holds
// Anthropic entries only. Nothing in this module reads it, and model names
// from configuration are not checked against it.
var ProviderModels = map[string][]string{
	"anthropic": {
		"claude-sonnet-4-5",
		"claude-sonnet-4-5-thinking",
		"claude-opus-4-5",
		"claude-opus-4-5-thinking",
		"claude-haiku-4-5",
		"claude-haiku-4-5-thinking",
	},
}

// GetProviderNames returns the provider family names this module knows how
// to build a Provider for: "anthropic" selects the native Anthropic
// backend, anything else falls back to the OpenAI-compatible backend.
func GetProviderNames() []string {
	return []string{"anthropic", "openai_compatible"}
}
