package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dialoglab/convogen/pkg/card"
)

func testBundle() *card.Bundle {
	return &card.Bundle{
		Card: &card.Card{
			Scenario: card.Scenario{Domain: "social_services"},
			Participants: map[string]card.Participant{
				"social_worker": {
					Description:      "Social Worker",
					LLMRole:          "assistant",
					ConversationRole: "initiator",
				},
				"client": {
					Description:          "Client",
					LLMRole:              "assistant",
					ConversationBehavior: "Answer briefly and reluctantly at first.",
				},
			},
			ConversationParameters: card.ConversationParameters{Initiator: "social_worker"},
		},
		Personas: map[string]*card.PersonaCard{
			"social_worker": {PersonaPrompt: card.PersonaPrompt{Content: "You are a concerned social worker."}},
			"client":        {PersonaPrompt: card.PersonaPrompt{Content: "You are a teenage client."}},
		},
		Vignette: "A teenager was referred to social services.",
	}
}

func TestSystemPrompt_Layout(t *testing.T) {
	builder := NewBuilder(testBundle(), nil)

	sp, err := builder.SystemPrompt("social_worker")
	require.NoError(t, err)

	wantOrder := []string{
		"A teenager was referred to social services.",
		"You are a concerned social worker.",
		"CONVERSATION BEHAVIOR:",
		"You are beginning this interaction.",
	}
	last := -1
	for _, part := range wantOrder {
		idx := strings.Index(sp, part)
		require.GreaterOrEqual(t, idx, 0, "missing %q", part)
		assert.Greater(t, idx, last, "%q out of order", part)
		last = idx
	}
	assert.NotContains(t, sp, "SPECIFIC GUIDANCE")
	assert.NotContains(t, sp, "CURRENT EMOTIONAL/BEHAVIORAL STATE")
}

func TestSystemPrompt_ResponderRoleInferred(t *testing.T) {
	builder := NewBuilder(testBundle(), nil)

	sp, err := builder.SystemPrompt("client")
	require.NoError(t, err)

	assert.Contains(t, sp, "You will be responding in this interaction.")
	assert.Contains(t, sp, "SPECIFIC GUIDANCE:\nAnswer briefly and reluctantly at first.")
}

func TestSystemPrompt_ModifierInstruction(t *testing.T) {
	builder := NewBuilder(testBundle(), map[string][]string{
		"client": {"highly anxious", "mildly defensive"},
	})

	sp, err := builder.SystemPrompt("client")
	require.NoError(t, err)
	assert.Contains(t, sp, "CURRENT EMOTIONAL/BEHAVIORAL STATE:")
	assert.Contains(t, sp, "highly anxious, mildly defensive")

	other, err := builder.SystemPrompt("social_worker")
	require.NoError(t, err)
	assert.NotContains(t, other, "CURRENT EMOTIONAL/BEHAVIORAL STATE")
}

func TestSystemPrompt_UnknownParticipant(t *testing.T) {
	builder := NewBuilder(testBundle(), nil)
	_, err := builder.SystemPrompt("ghost")
	assert.ErrorContains(t, err, "ghost")
}

func TestMessageHistory_InitiatorTrigger(t *testing.T) {
	builder := NewBuilder(testBundle(), nil)

	messages := builder.MessageHistory("social_worker", nil)
	require.Len(t, messages, 1)
	assert.Equal(t, "user", messages[0].Role)
	assert.Contains(t, messages[0].Content, "Begin your interaction now")

	// Only the very first turn of the initiator gets the trigger.
	withHistory := builder.MessageHistory("social_worker", []Turn{
		{Participant: "social_worker", Content: "Hello."},
	})
	for _, m := range withHistory {
		assert.NotContains(t, m.Content, "Begin your interaction now")
	}

	// The responder never gets it.
	responder := builder.MessageHistory("client", nil)
	assert.Empty(t, responder)
}

func TestMessageHistory_PerspectiveAndNames(t *testing.T) {
	builder := NewBuilder(testBundle(), nil)
	history := []Turn{
		{Participant: "social_worker", Content: "How are you holding up?"},
		{Participant: "client", Content: "I'm fine, I guess."},
	}

	fromWorker := builder.MessageHistory("social_worker", history)
	require.Len(t, fromWorker, 2)
	assert.Equal(t, "assistant", fromWorker[0].Role)
	assert.Equal(t, "Social Worker: How are you holding up?", fromWorker[0].Content)
	assert.Equal(t, "user", fromWorker[1].Role)
	assert.Equal(t, "Client: I'm fine, I guess.", fromWorker[1].Content)

	fromClient := builder.MessageHistory("client", history)
	require.Len(t, fromClient, 2)
	assert.Equal(t, "user", fromClient[0].Role)
	assert.Equal(t, "assistant", fromClient[1].Role)
}
