package main

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/dialoglab/convogen/pkg/card"
	"github.com/dialoglab/convogen/pkg/modifier"
	"github.com/dialoglab/convogen/pkg/prompt"
	"github.com/dialoglab/convogen/pkg/providers"
)

func newChatCommand() *cobra.Command {
	var (
		cardPath      string
		participantID string
		seed          int64
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to one persona interactively, playing the other participant yourself",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runChat(cardPath, participantID, seed)
		},
	}

	cmd.Flags().StringVarP(&cardPath, "card", "c", "", "Path to conversation card JSON file")
	cmd.Flags().StringVar(&participantID, "as", "", "Participant the model plays (default: the initiator)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Modifier selection seed (0 = random)")
	cmd.MarkFlagRequired("card")

	return cmd
}

func runChat(cardPath, participantID string, seed int64) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	bundle, err := card.Load(cardPath)
	if err != nil {
		return err
	}

	if participantID == "" {
		participantID = bundle.Card.ConversationParameters.Initiator
	}
	participant, ok := bundle.Card.Participants[participantID]
	if !ok {
		return fmt.Errorf("unknown participant %q", participantID)
	}
	humanID := ""
	for id := range bundle.Card.Participants {
		if id != participantID {
			humanID = id
			break
		}
	}

	mods := map[string][]string{}
	if participant.ApplyModifiers {
		selected, err := sampleChatModifiers(bundle, participant, cfg.Modifiers.PersonalityCoherence, cfg.Modifiers.TargetModifierCount, seed)
		if err != nil {
			return err
		}
		mods[participantID] = selected
		fmt.Printf("Modifiers for %s: %s\n", participantID, strings.Join(selected, ", "))
	}

	builder := prompt.NewBuilder(bundle, mods)
	systemPrompt, err := builder.SystemPrompt(participantID)
	if err != nil {
		return err
	}

	provider, model, err := providers.FromModelRef(cfg, bundle.Personas[participantID].ModelRef())
	if err != nil {
		return err
	}
	if model == "" {
		model = provider.GetDefaultModel()
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "you> ",
		HistoryFile:     filepath.Join(os.TempDir(), ".convogen_chat_history"),
		HistoryLimit:    100,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	fmt.Printf("Chatting with %s (%s). Type 'exit' to quit.\n", bundle.Card.SpeakerName(participantID), model)

	ctx := context.Background()
	var history []prompt.Turn

	speak := func() error {
		messages := append(
			[]providers.Message{{Role: "system", Content: systemPrompt}},
			builder.MessageHistory(participantID, history)...,
		)
		resp, err := provider.Chat(ctx, messages, model, nil)
		if err != nil {
			return err
		}
		content := strings.TrimSpace(resp.Content)
		history = append(history, prompt.Turn{Participant: participantID, Content: content})
		fmt.Printf("%s> %s\n", bundle.Card.SpeakerName(participantID), content)
		return nil
	}

	// The model opens when it plays the initiator.
	if participantID == bundle.Card.ConversationParameters.Initiator {
		if err := speak(); err != nil {
			return err
		}
	}

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				fmt.Println("\nGoodbye!")
				return nil
			}
			return err
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			fmt.Println("Goodbye!")
			return nil
		}

		history = append(history, prompt.Turn{Participant: humanID, Content: input})
		if err := speak(); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	}
}

func sampleChatModifiers(bundle *card.Bundle, participant card.Participant, coherence string, count int, seed int64) ([]string, error) {
	mc := bundle.Card.ModifierConfig
	if mc == nil || mc.ModifiersFile == "" {
		return nil, fmt.Errorf("participant requests modifiers but the card has no modifiers_file")
	}

	catalogPath := mc.ModifiersFile
	if !filepath.IsAbs(catalogPath) {
		catalogPath = filepath.Join(bundle.Dir, catalogPath)
	}
	catalog, err := modifier.Load(catalogPath)
	if err != nil {
		return nil, err
	}

	if mc.PersonalityCoherence != "" {
		coherence = mc.PersonalityCoherence
	}
	if mc.TargetModifierCount > 0 {
		count = mc.TargetModifierCount
	}
	if coherence == "" {
		coherence = string(modifier.LevelBalanced)
	}
	if count <= 0 {
		count = 3
	}

	req := modifier.Request{
		Categories: participant.AppliedModifiers,
		Count:      count,
		Domain:     bundle.Card.Scenario.Domain,
		Level:      modifier.Level(coherence),
	}
	if seed != 0 {
		req.Rand = rand.New(rand.NewSource(seed))
	}
	return modifier.NewSelector(catalog).Select(req)
}
