// Package config loads layered configuration for the agent: built-in
// defaults, an optional YAML file under the user config directory,
// environment variables, and CLI flag overrides applied last.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// ProviderType identifies which Provider implementation backs a named
// provider configuration.
type ProviderType string

const (
	ProviderTypeAnthropic    ProviderType = "anthropic"
	ProviderTypeOpenAICompat ProviderType = "openai_compatible"
)

var builtInProviderTypes = map[string]ProviderType{
	"anthropic": ProviderTypeAnthropic,
	"openai":    ProviderTypeOpenAICompat,
}

// InferProviderType returns the provider type for a given provider name.
// An explicit type always wins; otherwise built-in names are recognized;
// anything else is assumed to be an OpenAI-compatible endpoint.
func InferProviderType(name string, explicit ProviderType) ProviderType {
	if explicit != "" {
		return explicit
	}
	if t, ok := builtInProviderTypes[name]; ok {
		return t
	}
	return ProviderTypeOpenAICompat
}

// ProviderConfig configures a single named model provider.
type ProviderConfig struct {
	Type    ProviderType `mapstructure:"type"`
	APIKey  string       `mapstructure:"api_key"`
	Model   string       `mapstructure:"model"`
	BaseURL string       `mapstructure:"base_url"` // openai_compatible only
}

// ShellConfig holds the shell section of the configuration. The bash tool
// and the background shell supervisor do not read these values.
type ShellConfig struct {
	DefaultTimeoutSecs int `mapstructure:"default_timeout_secs"`
	MaxOutputBytes     int `mapstructure:"max_output_bytes"`
}

// SubAgentConfig configures sub-agent execution limits.
type SubAgentConfig struct {
	MaxTurns   int `mapstructure:"max_turns"`
	MaxDepth   int `mapstructure:"max_depth"`
	MaxParallel int `mapstructure:"max_parallel"`
}

// SearchConfig configures the web_search tool's upstream provider.
type SearchConfig struct {
	Provider string `mapstructure:"provider"` // "brave" today
	Brave    struct {
		APIKey string `mapstructure:"api_key"`
	} `mapstructure:"brave"`
}

// DebugLogRotation selects how debug logs are rotated on disk.
type DebugLogRotation string

const (
	DebugLogRotationNone    DebugLogRotation = "none"
	DebugLogRotationDaily   DebugLogRotation = "daily"
	DebugLogRotationSession DebugLogRotation = "session"
)

// DebugLogConfig configures structured debug logging and secret redaction.
type DebugLogConfig struct {
	Enabled  bool             `mapstructure:"enabled"`
	Path     string           `mapstructure:"path"`
	Rotation DebugLogRotation `mapstructure:"rotation"`
	Keep     int              `mapstructure:"keep"` // files to retain; 0 = rotation default
}

// Config is the fully-resolved configuration for a single process run.
type Config struct {
	DefaultProvider string                    `mapstructure:"default_provider"`
	Providers       map[string]ProviderConfig `mapstructure:"providers"`
	Shell           ShellConfig               `mapstructure:"shell"`
	SubAgent        SubAgentConfig            `mapstructure:"subagent"`
	Search          SearchConfig              `mapstructure:"search"`
	DebugLog        DebugLogConfig            `mapstructure:"debug_log"`
	WorkingDir      string                    `mapstructure:"working_dir"`
	MaxTurns        int                       `mapstructure:"max_turns"`
}

// Load reads the layered configuration: built-in defaults, then
// <config dir>/ok/config.yaml if present, then environment variables.
func Load() (*Config, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return nil, fmt.Errorf("resolve config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	for key, value := range Defaults() {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix("OK")
	v.AutomaticEnv()
	v.BindEnv("default_provider", "OK_PROVIDER")
	v.BindEnv("debug_log.enabled", "OK_DEBUG")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Providers == nil {
		cfg.Providers = make(map[string]ProviderConfig)
	}

	resolveCredentials(&cfg)
	return &cfg, nil
}

// resolveCredentials fills in API keys from well-known environment
// variables when a provider's config doesn't already carry one.
func resolveCredentials(cfg *Config) {
	for name, pc := range cfg.Providers {
		switch InferProviderType(name, pc.Type) {
		case ProviderTypeAnthropic:
			if pc.APIKey == "" {
				pc.APIKey = os.Getenv("ANTHROPIC_API_KEY")
			}
		case ProviderTypeOpenAICompat:
			if pc.APIKey == "" {
				pc.APIKey = os.Getenv("OPENAI_API_KEY")
			}
		}
		cfg.Providers[name] = pc
	}
	if cfg.Search.Brave.APIKey == "" {
		cfg.Search.Brave.APIKey = os.Getenv("BRAVE_API_KEY")
	}
	if sp := os.Getenv("SEARCH_PROVIDER"); sp != "" {
		cfg.Search.Provider = sp
	}
}

// Defaults returns the built-in configuration values, the base layer
// beneath the config file and environment.
func Defaults() map[string]any {
	return map[string]any{
		"default_provider":             "anthropic",
		"providers.anthropic.model":    "claude-sonnet-4-6",
		"providers.openai.model":       "gpt-5.2",
		"shell.default_timeout_secs":   120,
		"shell.max_output_bytes":       1 << 20,
		"subagent.max_turns":           50,
		"subagent.max_depth":           1,
		"subagent.max_parallel":        4,
		"search.provider":              "brave",
		"debug_log.enabled":            false,
		"debug_log.rotation":           string(DebugLogRotationDaily),
		"debug_log.keep":               0,
		"max_turns":                    200,
	}
}

// GetConfigDir returns the XDG config directory for the agent:
// $XDG_CONFIG_HOME/ok, or ~/.config/ok.
func GetConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "ok"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "ok"), nil
}

// GetConfigPath returns the path to the config file itself.
func GetConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// GetDataDir returns the directory for the agent's persistent state:
// todo lists, sub-agent session snapshots, debug logs. The spec keeps
// config and data side by side under the same user-config-dir root, so
// this is an alias for GetConfigDir.
func GetDataDir() (string, error) {
	return GetConfigDir()
}

// Exists reports whether a config file is present on disk.
func Exists() bool {
	path, err := GetConfigPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// ParseProviderModel splits "provider:model" into its parts. Model is
// empty when not specified.
func ParseProviderModel(s string) (provider, model string) {
	parts := strings.SplitN(s, ":", 2)
	provider = strings.TrimSpace(parts[0])
	if len(parts) == 2 {
		model = strings.TrimSpace(parts[1])
	}
	return provider, model
}

// ApplyOverrides applies CLI-flag provider/model overrides on top of the
// loaded configuration, the last and highest-priority layer.
func (c *Config) ApplyOverrides(provider, model string) {
	if provider != "" {
		c.DefaultProvider = provider
	}
	if model != "" {
		pc := c.Providers[c.DefaultProvider]
		pc.Model = model
		c.Providers[c.DefaultProvider] = pc
	}
}
