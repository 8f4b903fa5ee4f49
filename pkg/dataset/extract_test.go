package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func extractDocument() *ConversationDocument {
	doc := &ConversationDocument{
		ConversationID:   "conv-0001",
		Title:            "Intake interview",
		CreatedTimestamp: "2026-03-14T09:26:53Z",
		TotalTurns:       2,
		Domain:           "social_services",
		Personas: map[string]PersonaInfo{
			"social_worker": {Name: "Social Worker", LLMRole: "assistant", Persona: "social worker"},
			"client": {
				Name: "Client", LLMRole: "assistant", Persona: "client",
				Modifiers: []string{"highly anxious", "mildly defensive"},
			},
		},
	}

	turn1 := ConversationTurn{TurnNumber: 1}
	worker := Exchange{Role: "assistant", Name: "Social Worker", ParticipantID: "social_worker"}
	worker.Message.Content = "Social Worker: How are you holding up?"
	client := Exchange{Role: "assistant", Name: "Client", ParticipantID: "client"}
	client.Message.Content = "*fidgets with sleeve*\nI'm fine, I guess. <CLIENT />"
	turn1.Exchanges = []Exchange{worker, client}

	turn2 := ConversationTurn{TurnNumber: 2}
	worker2 := worker
	worker2.Message.Content = "SOCIAL WORKER: Tell me more."
	client2 := client
	client2.Message.Content = "It's been rough at home."
	turn2.Exchanges = []Exchange{worker2, client2}

	doc.ConversationTurns = []ConversationTurn{turn1, turn2}
	return doc
}

func TestExtract_Standard(t *testing.T) {
	out, err := Extract(extractDocument(), ExtractStandard)
	require.NoError(t, err)

	assert.Contains(t, out, "=== Intake interview ===")
	assert.Contains(t, out, "Domain: social_services")
	assert.Contains(t, out, "Date: 2026-03-14")
	assert.Contains(t, out, "Total Turns: 2")
	assert.Contains(t, out, "* Client (client)")
	assert.Contains(t, out, "Behavioral state: highly anxious, mildly defensive")

	// Speaker prefixes and embedded tags are stripped from the dialog lines.
	assert.Contains(t, out, "Social Worker: How are you holding up?")
	assert.NotContains(t, out, "Social Worker: Social Worker:")
	assert.NotContains(t, out, "SOCIAL WORKER:")
	assert.NotContains(t, out, "<CLIENT />")

	// Participants print in sorted id order: client before social_worker.
	assert.Less(t, strings.Index(out, "* Client"), strings.Index(out, "* Social Worker"))
}

func TestExtract_Clinical(t *testing.T) {
	out, err := Extract(extractDocument(), ExtractClinical)
	require.NoError(t, err)

	assert.Contains(t, out, "CLINICAL REVIEW: Intake interview")
	assert.Contains(t, out, "Setting: Social Services")
	assert.Contains(t, out, "Current state: highly anxious, mildly defensive")
	assert.Contains(t, out, "[TURN 1]")
	assert.Contains(t, out, "[TURN 2]")
	assert.Contains(t, out, "Question - Social Worker: How are you holding up?")
	assert.Contains(t, out, "Response - Client:")
}

func TestExtract_Screenplay(t *testing.T) {
	out, err := Extract(extractDocument(), ExtractScreenplay)
	require.NoError(t, err)

	assert.Contains(t, out, "INTAKE INTERVIEW")
	assert.Contains(t, out, "CHARACTERS:")
	assert.Contains(t, out, "SCENE: Social Services")

	// Action lines move into a parenthetical above the dialog.
	assert.Contains(t, out, "(fidgets with sleeve)")
	assert.Contains(t, out, "CLIENT\n    I'm fine, I guess.")
	assert.NotContains(t, out, "*fidgets with sleeve*")
}

func TestExtract_UnknownFormat(t *testing.T) {
	_, err := Extract(extractDocument(), ExtractFormat("prose"))
	assert.ErrorContains(t, err, "prose")
}

func TestLoadDocument_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteJSON(dir, sampleBundle(), sampleConversation(), 0)
	require.NoError(t, err)

	doc, err := LoadDocument(path)
	require.NoError(t, err)
	assert.Equal(t, "conv-0001", doc.ConversationID)
	require.Len(t, doc.ConversationTurns, 2)

	out, err := Extract(doc, ExtractStandard)
	require.NoError(t, err)
	assert.Contains(t, out, "Social Worker: How are you holding up?")
}

func TestLoadDocument_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := LoadDocument(path)
	assert.ErrorContains(t, err, "broken.json")
}
