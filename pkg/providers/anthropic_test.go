package providers

import (
	"testing"
)

func TestBuildAnthropicParams_BasicMessage(t *testing.T) {
	messages := []Message{
		{Role: "user", Content: "Hello"},
	}
	params := buildAnthropicParams(messages, "claude-sonnet-4-5", map[string]any{
		"max_tokens": 300,
	})
	if string(params.Model) != "claude-sonnet-4-5" {
		t.Errorf("Model = %q, want %q", params.Model, "claude-sonnet-4-5")
	}
	if params.MaxTokens != 300 {
		t.Errorf("MaxTokens = %d, want 300", params.MaxTokens)
	}
	if len(params.Messages) != 1 {
		t.Fatalf("len(Messages) = %d, want 1", len(params.Messages))
	}
}

func TestBuildAnthropicParams_SystemMessageSeparated(t *testing.T) {
	messages := []Message{
		{Role: "system", Content: "You are a social worker"},
		{Role: "user", Content: "Hi"},
		{Role: "assistant", Content: "Hello there"},
	}
	params := buildAnthropicParams(messages, "claude-sonnet-4-5", nil)

	if len(params.System) != 1 {
		t.Fatalf("len(System) = %d, want 1", len(params.System))
	}
	if params.System[0].Text != "You are a social worker" {
		t.Errorf("System[0].Text = %q", params.System[0].Text)
	}
	if len(params.Messages) != 2 {
		t.Fatalf("len(Messages) = %d, want 2", len(params.Messages))
	}
	if params.MaxTokens != defaultAnthropicMaxTokens {
		t.Errorf("MaxTokens = %d, want default %d", params.MaxTokens, defaultAnthropicMaxTokens)
	}
}

func TestBuildAnthropicParams_GenerationOptions(t *testing.T) {
	params := buildAnthropicParams(
		[]Message{{Role: "user", Content: "Hi"}},
		"claude-sonnet-4-5",
		map[string]any{
			// JSON-decoded model_config values arrive as float64.
			"temperature": 0.8,
			"max_tokens":  float64(256),
			"top_p":       0.9,
		},
	)
	if !params.Temperature.Valid() || params.Temperature.Value != 0.8 {
		t.Errorf("Temperature = %+v, want 0.8", params.Temperature)
	}
	if params.MaxTokens != 256 {
		t.Errorf("MaxTokens = %d, want 256", params.MaxTokens)
	}
	if !params.TopP.Valid() || params.TopP.Value != 0.9 {
		t.Errorf("TopP = %+v, want 0.9", params.TopP)
	}
}
