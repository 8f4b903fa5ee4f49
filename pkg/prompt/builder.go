// Package prompt assembles the system prompts and per-participant message
// histories that drive a two-persona conversation.
package prompt

import (
	"fmt"
	"strings"

	"github.com/dialoglab/convogen/pkg/card"
	"github.com/dialoglab/convogen/pkg/providers"
)

const initiatorBehavior = "CONVERSATION BEHAVIOR:\n" +
	"You are beginning this interaction. Start the conversation naturally based on your role, " +
	"personality, and the current situation. Engage authentically according to your character."

const responderBehavior = "CONVERSATION BEHAVIOR:\n" +
	"You will be responding in this interaction. React naturally to what others say, " +
	"staying true to your character and the situation. Engage authentically based on your role."

const initiationTrigger = "Begin your interaction now, staying true to your character and the situation."

// Turn is one utterance in the shared conversation transcript.
type Turn struct {
	Participant string
	Content     string
}

// Builder renders prompts for the participants of one conversation card.
// Modifiers hold the selected state texts per participant id, chosen once
// per conversation before the first turn.
type Builder struct {
	bundle    *card.Bundle
	modifiers map[string][]string
}

func NewBuilder(bundle *card.Bundle, modifiers map[string][]string) *Builder {
	if modifiers == nil {
		modifiers = map[string][]string{}
	}
	return &Builder{bundle: bundle, modifiers: modifiers}
}

// SystemPrompt builds the full system prompt for a participant: vignette,
// persona prompt, then role behavior with optional guidance and modifiers.
func (b *Builder) SystemPrompt(participantID string) (string, error) {
	persona, ok := b.bundle.Personas[participantID]
	if !ok {
		return "", fmt.Errorf("unknown participant %q", participantID)
	}

	var sb strings.Builder
	sb.WriteString(b.bundle.Vignette)
	sb.WriteString("\n\n")
	sb.WriteString(persona.PersonaPrompt.Content)
	sb.WriteString("\n\n")
	sb.WriteString(b.roleBehavior(participantID))
	return sb.String(), nil
}

func (b *Builder) roleBehavior(participantID string) string {
	participant := b.bundle.Card.Participants[participantID]

	role := participant.ConversationRole
	if role == "" {
		if participantID == b.bundle.Card.ConversationParameters.Initiator {
			role = "initiator"
		} else {
			role = "responder"
		}
	}

	instruction := responderBehavior
	if role == "initiator" {
		instruction = initiatorBehavior
	}

	if participant.ConversationBehavior != "" {
		instruction += "\n\nSPECIFIC GUIDANCE:\n" + participant.ConversationBehavior
	}

	if mods := b.modifiers[participantID]; len(mods) > 0 {
		instruction += modifierInstruction(mods)
	}
	return instruction
}

func modifierInstruction(modifiers []string) string {
	return "\n\nCURRENT EMOTIONAL/BEHAVIORAL STATE:\n" +
		"You are currently experiencing these feelings and behavioral tendencies that influence " +
		"how you interact: " + strings.Join(modifiers, ", ") + ". Let these naturally shape your responses " +
		"while staying true to your core personality."
}

// MessageHistory maps the shared transcript into the current participant's
// perspective. Each turn is prefixed with its speaker's display name; the
// participant's own turns carry its configured llm_role, everyone else's the
// opposite role. The initiator's empty history gets a trigger message so the
// model produces an opening turn.
func (b *Builder) MessageHistory(participantID string, history []Turn) []providers.Message {
	participant := b.bundle.Card.Participants[participantID]
	llmRole := participant.LLMRole
	if llmRole == "" {
		llmRole = "assistant"
	}
	otherRole := "user"
	if llmRole == "user" {
		otherRole = "assistant"
	}

	messages := make([]providers.Message, 0, len(history)+1)
	for _, turn := range history {
		content := b.bundle.Card.SpeakerName(turn.Participant) + ": " + turn.Content
		role := otherRole
		if turn.Participant == participantID {
			role = llmRole
		}
		messages = append(messages, providers.Message{Role: role, Content: content})
	}

	if len(history) == 0 && participantID == b.bundle.Card.ConversationParameters.Initiator {
		messages = append(messages, providers.Message{Role: "user", Content: initiationTrigger})
	}
	return messages
}
