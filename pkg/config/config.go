package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"

	"github.com/dialoglab/convogen/pkg/modifier"
)

type AnthropicConfig struct {
	APIKey  string `json:"api_key" env:"CONVOGEN_ANTHROPIC_API_KEY"`
	APIBase string `json:"api_base" env:"CONVOGEN_ANTHROPIC_API_BASE"`
}

type OpenAIConfig struct {
	APIKey  string `json:"api_key" env:"CONVOGEN_OPENAI_API_KEY"`
	APIBase string `json:"api_base" env:"CONVOGEN_OPENAI_API_BASE"`
}

type OllamaConfig struct {
	APIBase string `json:"api_base" env:"CONVOGEN_OLLAMA_API_BASE"`
}

type ProvidersConfig struct {
	Anthropic AnthropicConfig `json:"anthropic"`
	OpenAI    OpenAIConfig    `json:"openai"`
	Ollama    OllamaConfig    `json:"ollama"`
}

// ModifierDefaults are engine settings applied when a conversation card does
// not override them.
type ModifierDefaults struct {
	PersonalityCoherence string `json:"personality_coherence" env:"CONVOGEN_MODIFIERS_COHERENCE"`
	TargetModifierCount  int    `json:"target_modifier_count" env:"CONVOGEN_MODIFIERS_TARGET_COUNT"`
}

type GenerationConfig struct {
	Turns         int    `json:"turns" env:"CONVOGEN_GENERATION_TURNS"`
	Conversations int    `json:"conversations" env:"CONVOGEN_GENERATION_CONVERSATIONS"`
	OutputDir     string `json:"output_dir" env:"CONVOGEN_GENERATION_OUTPUT_DIR"`
	Format        string `json:"format" env:"CONVOGEN_GENERATION_FORMAT"` // csv, json, both
}

type RateLimitsConfig struct {
	// RequestsPerMinute paces provider calls during generation. 0 = unlimited.
	RequestsPerMinute int `json:"requests_per_minute" env:"CONVOGEN_RATE_LIMITS_REQUESTS_PER_MINUTE"`
}

type LoggingConfig struct {
	Level string `json:"level" env:"CONVOGEN_LOG_LEVEL"`
	File  string `json:"file" env:"CONVOGEN_LOG_FILE"`
}

type Config struct {
	Providers  ProvidersConfig  `json:"providers"`
	Generation GenerationConfig `json:"generation"`
	Modifiers  ModifierDefaults `json:"modifiers"`
	RateLimits RateLimitsConfig `json:"rate_limits"`
	Logging    LoggingConfig    `json:"logging"`
}

func DefaultConfig() *Config {
	return &Config{
		Providers: ProvidersConfig{
			Anthropic: AnthropicConfig{},
			OpenAI:    OpenAIConfig{},
			Ollama: OllamaConfig{
				APIBase: "http://localhost:11434/v1",
			},
		},
		Generation: GenerationConfig{
			Turns:         5,
			Conversations: 1,
			OutputDir:     "outputs/conversation_datasets",
			Format:        "csv",
		},
		Modifiers: ModifierDefaults{
			PersonalityCoherence: string(modifier.LevelBalanced),
			TargetModifierCount:  3,
		},
		RateLimits: RateLimitsConfig{
			RequestsPerMinute: 30,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig reads the JSON config at path, falling back to defaults when the
// file does not exist, then applies CONVOGEN_* environment overrides.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate fails fast on values that would only surface mid-generation.
func (c *Config) Validate() error {
	if _, err := modifier.PolicyFor(modifier.Level(c.Modifiers.PersonalityCoherence)); err != nil {
		return err
	}
	if c.Modifiers.TargetModifierCount <= 0 {
		return fmt.Errorf("modifiers.target_modifier_count must be positive, got %d", c.Modifiers.TargetModifierCount)
	}
	if c.Generation.Turns <= 0 {
		return fmt.Errorf("generation.turns must be positive, got %d", c.Generation.Turns)
	}
	if c.Generation.Conversations <= 0 {
		return fmt.Errorf("generation.conversations must be positive, got %d", c.Generation.Conversations)
	}
	switch c.Generation.Format {
	case "csv", "json", "both":
	default:
		return fmt.Errorf("generation.format must be csv, json, or both, got %q", c.Generation.Format)
	}
	if c.RateLimits.RequestsPerMinute < 0 {
		return fmt.Errorf("rate_limits.requests_per_minute must not be negative, got %d", c.RateLimits.RequestsPerMinute)
	}
	return nil
}

func SaveConfig(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// DefaultPath returns ~/.convogen/config.json.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.json"
	}
	return filepath.Join(home, ".convogen", "config.json")
}
