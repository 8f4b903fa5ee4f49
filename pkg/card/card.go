// Package card loads the JSON interface files describing a conversation:
// the conversation card, the persona cards it references, and the scenario
// vignette. Relative paths resolve against the referencing file's directory.
package card

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

type Scenario struct {
	Domain       string `json:"domain"`
	VignetteFile string `json:"vignette_file"`
}

type Participant struct {
	PersonaFile          string   `json:"persona_file"`
	Description          string   `json:"description"`
	LLMRole              string   `json:"llm_role"`
	ConversationRole     string   `json:"conversation_role"`
	ConversationBehavior string   `json:"conversation_behavior"`
	ApplyModifiers       bool     `json:"apply_modifiers"`
	AppliedModifiers     []string `json:"applied_modifiers"`
}

type ConversationParameters struct {
	Initiator string `json:"initiator"`
}

// ModifierConfig configures the modifier engine for this conversation.
// Empty fields fall back to the global config defaults.
type ModifierConfig struct {
	ModifiersFile        string `json:"modifiers_file"`
	PersonalityCoherence string `json:"personality_coherence"`
	TargetModifierCount  int    `json:"target_modifier_count"`
}

type Card struct {
	Title                  string                 `json:"title"`
	Description            string                 `json:"description"`
	Scenario               Scenario               `json:"scenario"`
	Participants           map[string]Participant `json:"participants"`
	ConversationParameters ConversationParameters `json:"conversation_parameters"`
	ModifierConfig         *ModifierConfig        `json:"modifier_config"`
}

type cardFile struct {
	ConversationCard *Card `json:"conversation_card"`
}

type PersonaPrompt struct {
	Role       string `json:"role"`
	PromptFile string `json:"prompt_file"`
	Content    string `json:"content"`
}

// PersonaCard describes one conversational participant: its prompt and the
// model it runs on. ModelConfig holds the "model" reference plus generation
// options (temperature, max_tokens, top_p) passed through to the provider.
type PersonaCard struct {
	PersonaPrompt PersonaPrompt  `json:"persona_prompt"`
	ModelConfig   map[string]any `json:"model_config"`
}

type personaFile struct {
	PersonaCard *PersonaCard `json:"persona_card"`
}

// Bundle is a fully resolved conversation card: persona prompts and vignette
// content loaded, ready for the dialogue engine.
type Bundle struct {
	Card     *Card
	Personas map[string]*PersonaCard
	Vignette string
	Dir      string
	Path     string
}

// Load reads a conversation card and everything it references.
func Load(path string) (*Bundle, error) {
	card, err := loadCard(path)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	bundle := &Bundle{
		Card:     card,
		Personas: make(map[string]*PersonaCard, len(card.Participants)),
		Dir:      dir,
		Path:     path,
	}

	for id, participant := range card.Participants {
		persona, err := LoadPersona(resolve(dir, participant.PersonaFile))
		if err != nil {
			return nil, fmt.Errorf("loading persona for %s: %w", id, err)
		}
		bundle.Personas[id] = persona
	}

	if card.Scenario.VignetteFile != "" {
		data, err := os.ReadFile(resolve(dir, card.Scenario.VignetteFile))
		if err != nil {
			return nil, fmt.Errorf("loading vignette: %w", err)
		}
		bundle.Vignette = string(data)
	}

	return bundle, nil
}

func loadCard(path string) (*Card, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading conversation card: %w", err)
	}

	var file cardFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing conversation card %s: %w", path, err)
	}
	if file.ConversationCard == nil {
		return nil, fmt.Errorf("conversation card %s missing conversation_card section", path)
	}

	card := file.ConversationCard
	if len(card.Participants) == 0 {
		return nil, fmt.Errorf("conversation card %s declares no participants", path)
	}
	if card.ConversationParameters.Initiator == "" {
		return nil, fmt.Errorf("conversation card %s declares no initiator", path)
	}
	if _, ok := card.Participants[card.ConversationParameters.Initiator]; !ok {
		return nil, fmt.Errorf("initiator %q is not a participant", card.ConversationParameters.Initiator)
	}
	return card, nil
}

// LoadPersona reads a persona card, pulling prompt content from its
// prompt_file when the card does not embed it inline.
func LoadPersona(path string) (*PersonaCard, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file personaFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing persona card %s: %w", path, err)
	}
	if file.PersonaCard == nil {
		return nil, fmt.Errorf("persona card %s missing persona_card section", path)
	}

	persona := file.PersonaCard
	if persona.PersonaPrompt.Content == "" && persona.PersonaPrompt.PromptFile != "" {
		prompt, err := os.ReadFile(resolve(filepath.Dir(path), persona.PersonaPrompt.PromptFile))
		if err != nil {
			return nil, fmt.Errorf("loading prompt file for %s: %w", path, err)
		}
		persona.PersonaPrompt.Content = string(prompt)
	}
	if persona.PersonaPrompt.Content == "" {
		return nil, fmt.Errorf("persona card %s has no prompt content", path)
	}
	return persona, nil
}

// ModelRef returns the persona's "provider/model" reference, empty when the
// card leaves the choice to the provider default.
func (p *PersonaCard) ModelRef() string {
	if ref, ok := p.ModelConfig["model"].(string); ok {
		return ref
	}
	return ""
}

// SpeakerName returns the display name used to prefix a participant's turns.
func (c *Card) SpeakerName(id string) string {
	if p, ok := c.Participants[id]; ok && p.Description != "" {
		return p.Description
	}
	return id
}

func resolve(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
