// Package dataset persists generated conversations: flat CSV transcripts,
// structured JSON with generation metadata, training-data packing, and an
// sqlite manifest of past runs.
package dataset

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dialoglab/convogen/pkg/card"
	"github.com/dialoglab/convogen/pkg/dialogue"
)

var csvHeader = []string{"turn", "participant", "role", "content", "modifiers"}

// WriteCSV writes one conversation as a flat transcript, one row per
// utterance. Modifiers repeat on every row of their participant so each
// file stands alone. Returns the written path.
func WriteCSV(dir string, conv *dialogue.Conversation, index int) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, fileStem(conv.StartedAt, index)+".csv")

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}

	w := csv.NewWriter(f)
	w.Write(csvHeader)
	for _, turn := range conv.Turns {
		w.Write([]string{
			strconv.Itoa(turn.Turn),
			turn.Participant,
			turn.Role,
			turn.Content,
			strings.Join(conv.Modifiers[turn.Participant], ", "),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}

type PersonaInfo struct {
	Name      string   `json:"name"`
	LLMRole   string   `json:"llm_role"`
	Persona   string   `json:"persona"`
	Modifiers []string `json:"modifiers"`
}

type SystemPromptInfo struct {
	SystemPrompt string `json:"system_prompt"`
}

type Exchange struct {
	Role          string `json:"role"`
	Name          string `json:"name"`
	ParticipantID string `json:"participant_id"`
	Message       struct {
		Content string `json:"content"`
	} `json:"message"`
}

type ConversationTurn struct {
	TurnNumber int        `json:"turn_number"`
	Exchanges  []Exchange `json:"exchanges"`
}

type Metadata struct {
	CardFile            string `json:"card_file"`
	GenerationTimestamp string `json:"generation_timestamp"`
	VignetteFile        string `json:"vignette_file"`
}

// ConversationDocument is the structured JSON schema for one conversation.
type ConversationDocument struct {
	ConversationID       string                      `json:"conversation_id"`
	Title                string                      `json:"title"`
	Description          string                      `json:"description"`
	CreatedTimestamp     string                      `json:"created_timestamp"`
	TotalTurns           int                         `json:"total_turns"`
	Domain               string                      `json:"domain"`
	Personas             map[string]PersonaInfo      `json:"personas"`
	InitialSystemPrompts map[string]SystemPromptInfo `json:"initial_system_prompts"`
	ConversationTurns    []ConversationTurn          `json:"conversation_turns"`
	Metadata             Metadata                    `json:"metadata"`
}

// BuildDocument converts a finished conversation into the structured schema.
// Modifiers appear once per persona rather than on every exchange.
func BuildDocument(bundle *card.Bundle, conv *dialogue.Conversation) *ConversationDocument {
	doc := &ConversationDocument{
		ConversationID:       conv.ID,
		Title:                bundle.Card.Title,
		Description:          bundle.Card.Description,
		CreatedTimestamp:     conv.StartedAt.Format(time.RFC3339),
		Domain:               conv.Domain,
		Personas:             make(map[string]PersonaInfo, len(bundle.Card.Participants)),
		InitialSystemPrompts: make(map[string]SystemPromptInfo, len(conv.SystemPrompts)),
		Metadata: Metadata{
			CardFile:            conv.CardPath,
			GenerationTimestamp: conv.FinishedAt.Format(time.RFC3339),
			VignetteFile:        bundle.Card.Scenario.VignetteFile,
		},
	}
	if doc.Description == "" {
		doc.Description = "Synthetic conversation generated from personas"
	}

	for id, participant := range bundle.Card.Participants {
		info := PersonaInfo{
			Name:      bundle.Card.SpeakerName(id),
			LLMRole:   participant.LLMRole,
			Modifiers: conv.Modifiers[id],
		}
		if info.LLMRole == "" {
			info.LLMRole = "assistant"
		}
		if persona := bundle.Personas[id]; persona != nil {
			info.Persona = persona.PersonaPrompt.Role
		}
		if info.Persona == "" {
			info.Persona = info.Name
		}
		doc.Personas[id] = info
	}
	for id, sp := range conv.SystemPrompts {
		doc.InitialSystemPrompts[id] = SystemPromptInfo{SystemPrompt: sp}
	}

	var current *ConversationTurn
	for _, turn := range conv.Turns {
		if current == nil || current.TurnNumber != turn.Turn+1 {
			doc.ConversationTurns = append(doc.ConversationTurns, ConversationTurn{TurnNumber: turn.Turn + 1})
			current = &doc.ConversationTurns[len(doc.ConversationTurns)-1]
		}
		exchange := Exchange{
			Role:          turn.Role,
			Name:          doc.Personas[turn.Participant].Name,
			ParticipantID: turn.Participant,
		}
		exchange.Message.Content = turn.Content
		current.Exchanges = append(current.Exchanges, exchange)
	}
	doc.TotalTurns = len(doc.ConversationTurns)
	return doc
}

// WriteJSON writes the structured document for one conversation.
func WriteJSON(dir string, bundle *card.Bundle, conv *dialogue.Conversation, index int) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, fileStem(conv.StartedAt, index)+".json")

	data, err := json.MarshalIndent(BuildDocument(bundle, conv), "", "  ")
	if err != nil {
		return "", err
	}
	return path, os.WriteFile(path, data, 0o644)
}

func fileStem(t time.Time, index int) string {
	return fmt.Sprintf("conversation_%s_%03d", t.Format("20060102_150405"), index+1)
}
