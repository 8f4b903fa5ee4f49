package dataset

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dialoglab/convogen/pkg/card"
	"github.com/dialoglab/convogen/pkg/dialogue"
)

func sampleConversation() *dialogue.Conversation {
	started := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	return &dialogue.Conversation{
		ID:         "conv-0001",
		CardPath:   "/cards/intake.json",
		Domain:     "social_services",
		StartedAt:  started,
		FinishedAt: started.Add(40 * time.Second),
		Modifiers: map[string][]string{
			"social_worker": nil,
			"client":        {"highly anxious", "mildly defensive"},
		},
		SystemPrompts: map[string]string{
			"social_worker": "worker system prompt",
			"client":        "client system prompt",
		},
		Turns: []dialogue.TurnRecord{
			{Turn: 0, Participant: "social_worker", Role: "assistant", Content: "How are you holding up?"},
			{Turn: 0, Participant: "client", Role: "assistant", Content: "I'm fine, I guess."},
			{Turn: 1, Participant: "social_worker", Role: "assistant", Content: "Tell me more."},
			{Turn: 1, Participant: "client", Role: "assistant", Content: "It's been rough at home."},
		},
	}
}

func sampleBundle() *card.Bundle {
	return &card.Bundle{
		Card: &card.Card{
			Title: "Intake interview",
			Scenario: card.Scenario{
				Domain:       "social_services",
				VignetteFile: "vignette.txt",
			},
			Participants: map[string]card.Participant{
				"social_worker": {Description: "Social Worker", LLMRole: "assistant"},
				"client":        {Description: "Client"},
			},
			ConversationParameters: card.ConversationParameters{Initiator: "social_worker"},
		},
		Personas: map[string]*card.PersonaCard{
			"social_worker": {PersonaPrompt: card.PersonaPrompt{Role: "social worker"}},
			"client":        {PersonaPrompt: card.PersonaPrompt{Role: "client"}},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	dir := t.TempDir()
	conv := sampleConversation()

	path, err := WriteCSV(dir, conv, 0)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "conversation_20260314_092653_001.csv"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"turn", "participant", "role", "content", "modifiers"}, rows[0])
	assert.Equal(t, []string{"0", "social_worker", "assistant", "How are you holding up?", ""}, rows[1])
	assert.Equal(t, []string{"0", "client", "assistant", "I'm fine, I guess.", "highly anxious, mildly defensive"}, rows[2])
	assert.Equal(t, "1", rows[3][0])
}

func TestBuildDocument(t *testing.T) {
	doc := BuildDocument(sampleBundle(), sampleConversation())

	assert.Equal(t, "conv-0001", doc.ConversationID)
	assert.Equal(t, "Intake interview", doc.Title)
	assert.Equal(t, "Synthetic conversation generated from personas", doc.Description)
	assert.Equal(t, "social_services", doc.Domain)
	assert.Equal(t, 2, doc.TotalTurns)

	client := doc.Personas["client"]
	assert.Equal(t, "Client", client.Name)
	assert.Equal(t, "assistant", client.LLMRole)
	assert.Equal(t, "client", client.Persona)
	assert.Equal(t, []string{"highly anxious", "mildly defensive"}, client.Modifiers)

	require.Len(t, doc.ConversationTurns, 2)
	first := doc.ConversationTurns[0]
	assert.Equal(t, 1, first.TurnNumber)
	require.Len(t, first.Exchanges, 2)
	assert.Equal(t, "Social Worker", first.Exchanges[0].Name)
	assert.Equal(t, "social_worker", first.Exchanges[0].ParticipantID)
	assert.Equal(t, "How are you holding up?", first.Exchanges[0].Message.Content)

	assert.Equal(t, "client system prompt", doc.InitialSystemPrompts["client"].SystemPrompt)
	assert.Equal(t, "/cards/intake.json", doc.Metadata.CardFile)
	assert.Equal(t, "vignette.txt", doc.Metadata.VignetteFile)
}

func TestWriteJSON(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteJSON(dir, sampleBundle(), sampleConversation(), 2)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "conversation_20260314_092653_003.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"conversation_id": "conv-0001"`)
	assert.Contains(t, string(data), `"turn_number": 1`)
}
