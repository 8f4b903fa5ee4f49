package providers

import (
	"fmt"
	"strings"

	"github.com/dialoglab/convogen/pkg/config"
)

// ParseModelRef splits a "provider/model" reference from a persona card.
// A bare model name defaults to the openai provider.
func ParseModelRef(ref string) (provider, model string) {
	ref = strings.TrimSpace(ref)
	if idx := strings.Index(ref, "/"); idx > 0 {
		return strings.ToLower(ref[:idx]), ref[idx+1:]
	}
	return "openai", ref
}

// FromModelRef constructs the provider for a model reference using the
// credentials in cfg, returning the provider and the bare model name.
func FromModelRef(cfg *config.Config, ref string) (LLMProvider, string, error) {
	name, model := ParseModelRef(ref)

	switch name {
	case "anthropic":
		if cfg.Providers.Anthropic.APIKey == "" {
			return nil, "", fmt.Errorf("anthropic provider requires an API key (set CONVOGEN_ANTHROPIC_API_KEY)")
		}
		p := NewAnthropicProvider(cfg.Providers.Anthropic.APIKey, cfg.Providers.Anthropic.APIBase)
		if model == "" {
			model = p.GetDefaultModel()
		}
		return p, model, nil

	case "openai":
		if cfg.Providers.OpenAI.APIKey == "" && cfg.Providers.OpenAI.APIBase == "" {
			return nil, "", fmt.Errorf("openai provider requires an API key or base URL (set CONVOGEN_OPENAI_API_KEY)")
		}
		p := NewOpenAIProvider(cfg.Providers.OpenAI.APIKey, cfg.Providers.OpenAI.APIBase)
		if model == "" {
			model = p.GetDefaultModel()
		}
		return p, model, nil

	case "ollama":
		// Local OpenAI-compatible endpoint, no key.
		base := cfg.Providers.Ollama.APIBase
		if base == "" {
			base = "http://localhost:11434/v1"
		}
		p := NewOpenAIProvider("", base)
		if model == "" {
			return nil, "", fmt.Errorf("ollama model reference must name a model, e.g. ollama/llama3.1:8b")
		}
		return p, model, nil
	}

	return nil, "", fmt.Errorf("unknown provider %q in model reference %q", name, ref)
}
