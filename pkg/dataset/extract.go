package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
)

// ExtractFormat selects the reviewer-facing rendering of a conversation.
type ExtractFormat string

const (
	ExtractStandard   ExtractFormat = "standard"
	ExtractClinical   ExtractFormat = "clinical"
	ExtractScreenplay ExtractFormat = "screenplay"
)

var (
	xmlTagPattern      = regexp.MustCompile(`<[^>]+\s*/>`)
	speakerLinePattern = regexp.MustCompile(`(?m)^[A-Z][A-Z\s]*:\s*`)
	blankRunPattern    = regexp.MustCompile(`\n\s*\n`)
	actionLinePattern  = regexp.MustCompile(`^\*(.+)\*$`)
)

// LoadDocument reads a conversation document written by WriteJSON.
func LoadDocument(path string) (*ConversationDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc ConversationDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing conversation document %s: %w", path, err)
	}
	return &doc, nil
}

// Extract renders a conversation document in one of the reviewer formats,
// stripping technical artifacts (embedded tags, speaker prefixes) from the
// utterances.
func Extract(doc *ConversationDocument, format ExtractFormat) (string, error) {
	switch format {
	case ExtractStandard:
		return formatStandard(doc), nil
	case ExtractClinical:
		return formatClinical(doc), nil
	case ExtractScreenplay:
		return formatScreenplay(doc), nil
	default:
		return "", fmt.Errorf("unknown extract format %q, want standard, clinical or screenplay", format)
	}
}

func formatStandard(doc *ConversationDocument) string {
	var out []string

	title := doc.Title
	if title == "" {
		title = "Conversation"
	}
	out = append(out,
		fmt.Sprintf("=== %s ===", title),
		fmt.Sprintf("Domain: %s", doc.Domain),
		fmt.Sprintf("Date: %s", dateOnly(doc.CreatedTimestamp)),
		fmt.Sprintf("Total Turns: %d", doc.TotalTurns),
		"",
		"PARTICIPANTS:")

	for _, id := range sortedPersonaIDs(doc) {
		persona := doc.Personas[id]
		out = append(out, fmt.Sprintf("  * %s (%s)", persona.Name, personaRole(persona)))
		if len(persona.Modifiers) > 0 {
			out = append(out, fmt.Sprintf("    Behavioral state: %s", strings.Join(persona.Modifiers, ", ")))
		}
	}

	out = append(out, "", "CONVERSATION:", strings.Repeat("-", 50))
	for _, turn := range doc.ConversationTurns {
		for _, exchange := range turn.Exchanges {
			out = append(out, fmt.Sprintf("%s: %s", exchange.Name, cleanContent(exchange.Message.Content, exchange.Name)))
		}
	}
	out = append(out, strings.Repeat("-", 50))
	return strings.Join(out, "\n")
}

func formatClinical(doc *ConversationDocument) string {
	var out []string

	title := doc.Title
	if title == "" {
		title = "Clinical Conversation"
	}
	out = append(out,
		fmt.Sprintf("CLINICAL REVIEW: %s", title),
		strings.Repeat("=", 60),
		"",
		"ASSESSMENT CONTEXT:",
		fmt.Sprintf("  Setting: %s", titleCase(doc.Domain)),
		"  Interaction Type: Initial Assessment",
		"",
		"PARTICIPANT ANALYSIS:")

	for _, id := range sortedPersonaIDs(doc) {
		persona := doc.Personas[id]
		role := personaRole(persona)
		out = append(out, fmt.Sprintf("  %s (%s):", persona.Name, role))
		if len(persona.Modifiers) > 0 {
			out = append(out, fmt.Sprintf("    Current state: %s", strings.Join(persona.Modifiers, ", ")))
		}
		out = append(out, fmt.Sprintf("    Role in interaction: %s", role), "")
	}

	out = append(out, "DIALOG TRANSCRIPT:", strings.Repeat("-", 40))
	for _, turn := range doc.ConversationTurns {
		out = append(out, "", fmt.Sprintf("[TURN %d]", turn.TurnNumber))
		for i, exchange := range turn.Exchanges {
			kind := "Response"
			if i == 0 {
				kind = "Question"
			}
			out = append(out, fmt.Sprintf("  %s - %s: %s", kind, exchange.Name, cleanContent(exchange.Message.Content, exchange.Name)))
		}
	}
	out = append(out, "", strings.Repeat("-", 40))
	return strings.Join(out, "\n")
}

func formatScreenplay(doc *ConversationDocument) string {
	var out []string

	title := doc.Title
	if title == "" {
		title = "Conversation"
	}
	out = append(out, strings.ToUpper(title), "", "CHARACTERS:")
	for _, id := range sortedPersonaIDs(doc) {
		persona := doc.Personas[id]
		out = append(out, fmt.Sprintf("  %s - %s", persona.Name, personaRole(persona)))
	}

	scene := titleCase(doc.Domain)
	if scene == "" {
		scene = "Unspecified"
	}
	out = append(out, "", fmt.Sprintf("SCENE: %s", scene), "")

	for _, turn := range doc.ConversationTurns {
		for _, exchange := range turn.Exchanges {
			speaker := strings.ToUpper(exchange.Name)
			clean := cleanContent(exchange.Message.Content, exchange.Name)

			var dialog, actions []string
			for _, line := range strings.Split(clean, "\n") {
				line = strings.TrimSpace(line)
				if m := actionLinePattern.FindStringSubmatch(line); m != nil {
					actions = append(actions, m[1])
				} else if line != "" {
					dialog = append(dialog, line)
				}
			}

			if len(actions) > 0 {
				out = append(out, fmt.Sprintf("(%s)", strings.Join(actions, "; ")))
			}
			if len(dialog) > 0 {
				out = append(out, speaker)
				for _, line := range dialog {
					out = append(out, "    "+line)
				}
			}
			out = append(out, "")
		}
	}
	return strings.Join(out, "\n")
}

// cleanContent strips embedded self-closing tags and redundant uppercase
// speaker prefixes, then collapses blank runs.
func cleanContent(content, speaker string) string {
	if content == "" {
		return ""
	}
	content = xmlTagPattern.ReplaceAllString(content, "")
	prefix := speaker + ": "
	if len(content) >= len(prefix) && strings.EqualFold(content[:len(prefix)], prefix) {
		content = content[len(prefix):]
	}
	content = speakerLinePattern.ReplaceAllString(content, "")
	content = blankRunPattern.ReplaceAllString(content, "\n")
	return strings.TrimSpace(content)
}

func sortedPersonaIDs(doc *ConversationDocument) []string {
	ids := make([]string, 0, len(doc.Personas))
	for id := range doc.Personas {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func personaRole(p PersonaInfo) string {
	if p.Persona != "" {
		return p.Persona
	}
	return "participant"
}

func dateOnly(timestamp string) string {
	if len(timestamp) >= 10 {
		return timestamp[:10]
	}
	return timestamp
}

func titleCase(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == ' ' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
