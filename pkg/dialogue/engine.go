// Package dialogue runs two-persona conversations: it selects behavioral
// modifiers once per conversation, builds each participant's view of the
// transcript, and alternates provider calls starting with the initiator.
package dialogue

import (
	"context"
	"fmt"
	"math/rand"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/dialoglab/convogen/pkg/card"
	"github.com/dialoglab/convogen/pkg/config"
	"github.com/dialoglab/convogen/pkg/logger"
	"github.com/dialoglab/convogen/pkg/modifier"
	"github.com/dialoglab/convogen/pkg/prompt"
	"github.com/dialoglab/convogen/pkg/providers"
)

// Participant binds a card participant to the provider and model that speak
// for it. An empty Model falls back to the provider default.
type Participant struct {
	Provider providers.LLMProvider
	Model    string
}

type Options struct {
	Participants map[string]Participant
	Defaults     config.ModifierDefaults
	// RequestsPerMinute paces provider calls across the whole run. 0 = unlimited.
	RequestsPerMinute int
	// Rand drives modifier selection. Nil seeds from the clock.
	Rand *rand.Rand
}

// TurnRecord is one utterance of a finished conversation. Turn numbers count
// exchanges: both participants' utterances in the same exchange share one.
type TurnRecord struct {
	Turn        int    `json:"turn"`
	Participant string `json:"participant"`
	Role        string `json:"role"`
	Content     string `json:"content"`
}

type Conversation struct {
	ID            string              `json:"conversation_id"`
	CardPath      string              `json:"card_path"`
	Domain        string              `json:"domain"`
	StartedAt     time.Time           `json:"started_at"`
	FinishedAt    time.Time           `json:"finished_at"`
	Modifiers     map[string][]string `json:"modifiers"`
	SystemPrompts map[string]string   `json:"system_prompts"`
	Turns         []TurnRecord        `json:"turns"`
}

type Engine struct {
	bundle   *card.Bundle
	catalog  *modifier.Catalog
	opts     Options
	limiter  *rate.Limiter
	rng      *rand.Rand
	ordering []string
}

// NewEngine prepares a dialogue engine for one conversation card. The modifier
// catalog loads here so a bad catalog fails before any provider call.
func NewEngine(bundle *card.Bundle, opts Options) (*Engine, error) {
	if len(bundle.Card.Participants) != 2 {
		return nil, fmt.Errorf("dialogue needs exactly two participants, card has %d", len(bundle.Card.Participants))
	}
	for id := range bundle.Card.Participants {
		if _, ok := opts.Participants[id]; !ok {
			return nil, fmt.Errorf("no provider bound for participant %s", id)
		}
	}

	engine := &Engine{bundle: bundle, opts: opts, ordering: turnOrder(bundle.Card)}

	if mc := bundle.Card.ModifierConfig; mc != nil && mc.ModifiersFile != "" {
		catalog, err := modifier.Load(resolvePath(bundle.Dir, mc.ModifiersFile))
		if err != nil {
			return nil, err
		}
		engine.catalog = catalog
	}

	if opts.RequestsPerMinute > 0 {
		engine.limiter = rate.NewLimiter(rate.Limit(float64(opts.RequestsPerMinute)/60.0), 1)
	}
	engine.rng = opts.Rand
	if engine.rng == nil {
		engine.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return engine, nil
}

func turnOrder(c *card.Card) []string {
	initiator := c.ConversationParameters.Initiator
	order := []string{initiator}
	for id := range c.Participants {
		if id != initiator {
			order = append(order, id)
		}
	}
	return order
}

// Generate runs one full conversation of the given number of exchanges.
// Modifier selection happens once, before the first turn.
func (e *Engine) Generate(ctx context.Context, turns int) (*Conversation, error) {
	if turns <= 0 {
		return nil, fmt.Errorf("turns must be positive, got %d", turns)
	}

	mods, err := e.selectModifiers()
	if err != nil {
		return nil, err
	}

	builder := prompt.NewBuilder(e.bundle, mods)
	systemPrompts := make(map[string]string, len(e.ordering))
	for _, id := range e.ordering {
		sp, err := builder.SystemPrompt(id)
		if err != nil {
			return nil, err
		}
		systemPrompts[id] = sp
	}

	conv := &Conversation{
		ID:            uuid.NewString(),
		CardPath:      e.bundle.Path,
		Domain:        e.bundle.Card.Scenario.Domain,
		StartedAt:     time.Now().UTC(),
		Modifiers:     mods,
		SystemPrompts: systemPrompts,
	}

	var history []prompt.Turn
	for turn := 0; turn < turns; turn++ {
		for _, id := range e.ordering {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}

			content, err := e.speak(ctx, builder, systemPrompts[id], id, history)
			if err != nil {
				return nil, fmt.Errorf("conversation %s, turn %d, %s: %w", conv.ID, turn, id, err)
			}

			conv.Turns = append(conv.Turns, TurnRecord{
				Turn:        turn,
				Participant: id,
				Role:        "assistant",
				Content:     content,
			})
			history = append(history, prompt.Turn{Participant: id, Content: content})
		}
	}

	conv.FinishedAt = time.Now().UTC()
	logger.InfoCF("dialogue", "Conversation complete", map[string]any{
		"conversation_id": conv.ID,
		"turns":           len(conv.Turns),
	})
	return conv, nil
}

func (e *Engine) speak(ctx context.Context, builder *prompt.Builder, systemPrompt, id string, history []prompt.Turn) (string, error) {
	messages := make([]providers.Message, 0, len(history)+2)
	messages = append(messages, providers.Message{Role: "system", Content: systemPrompt})
	messages = append(messages, builder.MessageHistory(id, history)...)

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	bound := e.opts.Participants[id]
	model := bound.Model
	if model == "" {
		model = bound.Provider.GetDefaultModel()
	}

	resp, err := bound.Provider.Chat(ctx, messages, model, e.generationOptions(id))
	if err != nil {
		return "", err
	}
	content := strings.TrimSpace(resp.Content)
	if content == "" {
		return "", fmt.Errorf("provider returned empty content")
	}
	return content, nil
}

// generationOptions passes the persona's model_config through to the
// provider, minus the model reference itself.
func (e *Engine) generationOptions(id string) map[string]any {
	persona := e.bundle.Personas[id]
	if persona == nil || len(persona.ModelConfig) == 0 {
		return nil
	}
	options := make(map[string]any, len(persona.ModelConfig))
	for k, v := range persona.ModelConfig {
		if k == "model" {
			continue
		}
		options[k] = v
	}
	return options
}

// selectModifiers draws a fresh modifier set for every participant that asks
// for one. Participants without apply_modifiers get an empty entry.
func (e *Engine) selectModifiers() (map[string][]string, error) {
	mods := make(map[string][]string, len(e.ordering))
	for _, id := range e.ordering {
		participant := e.bundle.Card.Participants[id]
		if !participant.ApplyModifiers {
			mods[id] = nil
			continue
		}
		if e.catalog == nil {
			return nil, fmt.Errorf("participant %s requests modifiers but the card has no modifiers_file", id)
		}

		selected, err := modifier.NewSelector(e.catalog).Select(modifier.Request{
			Categories: participant.AppliedModifiers,
			Count:      e.targetCount(),
			Domain:     e.bundle.Card.Scenario.Domain,
			Level:      e.coherenceLevel(),
			Rand:       e.rng,
		})
		if err != nil {
			return nil, fmt.Errorf("selecting modifiers for %s: %w", id, err)
		}
		mods[id] = selected
		logger.DebugCF("dialogue", "Modifiers selected", map[string]any{
			"participant": id,
			"modifiers":   strings.Join(selected, ", "),
		})
	}
	return mods, nil
}

func (e *Engine) coherenceLevel() modifier.Level {
	if mc := e.bundle.Card.ModifierConfig; mc != nil && mc.PersonalityCoherence != "" {
		return modifier.Level(mc.PersonalityCoherence)
	}
	if e.opts.Defaults.PersonalityCoherence != "" {
		return modifier.Level(e.opts.Defaults.PersonalityCoherence)
	}
	return modifier.LevelBalanced
}

func (e *Engine) targetCount() int {
	if mc := e.bundle.Card.ModifierConfig; mc != nil && mc.TargetModifierCount > 0 {
		return mc.TargetModifierCount
	}
	if e.opts.Defaults.TargetModifierCount > 0 {
		return e.opts.Defaults.TargetModifierCount
	}
	return 3
}

func resolvePath(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
