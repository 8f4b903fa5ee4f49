package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dialoglab/convogen/pkg/card"
	"github.com/dialoglab/convogen/pkg/config"
	"github.com/dialoglab/convogen/pkg/dataset"
	"github.com/dialoglab/convogen/pkg/dialogue"
	"github.com/dialoglab/convogen/pkg/logger"
	"github.com/dialoglab/convogen/pkg/providers"
)

func newGenerateCommand() *cobra.Command {
	var (
		cardPath  string
		turns     int
		count     int
		format    string
		outputDir string
		seed      int64
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate conversations from a conversation card",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if turns == 0 {
				turns = cfg.Generation.Turns
			}
			if count == 0 {
				count = cfg.Generation.Conversations
			}
			if format == "" {
				format = cfg.Generation.Format
			}
			if outputDir == "" {
				outputDir = cfg.Generation.OutputDir
			}
			if format != "csv" && format != "json" && format != "both" {
				return fmt.Errorf("unknown format %q, want csv, json or both", format)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runGenerate(ctx, cfg, cardPath, turns, count, format, outputDir, seed)
		},
	}

	cmd.Flags().StringVarP(&cardPath, "card", "c", "", "Path to conversation card JSON file")
	cmd.Flags().IntVarP(&turns, "turns", "t", 0, "Exchanges per conversation")
	cmd.Flags().IntVarP(&count, "count", "n", 0, "Number of conversations to generate")
	cmd.Flags().StringVar(&format, "format", "", "Output format: csv, json or both")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Output directory")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Modifier selection seed (0 = random)")
	cmd.MarkFlagRequired("card")

	return cmd
}

func runGenerate(ctx context.Context, cfg *config.Config, cardPath string, turns, count int, format, outputDir string, seed int64) error {
	bundle, err := card.Load(cardPath)
	if err != nil {
		return err
	}

	bound, err := bindProviders(cfg, bundle)
	if err != nil {
		return err
	}

	opts := dialogue.Options{
		Participants:      bound,
		Defaults:          cfg.Modifiers,
		RequestsPerMinute: cfg.RateLimits.RequestsPerMinute,
	}
	if seed != 0 {
		opts.Rand = rand.New(rand.NewSource(seed))
	}

	engine, err := dialogue.NewEngine(bundle, opts)
	if err != nil {
		return err
	}

	run := dataset.Run{
		ID:            uuid.NewString(),
		CardPath:      cardPath,
		Conversations: count,
		Turns:         turns,
		Format:        format,
		CreatedAt:     time.Now().UTC(),
	}

	for i := 0; i < count; i++ {
		fmt.Printf("Generating conversation %d/%d...\n", i+1, count)

		conv, err := engine.Generate(ctx, turns)
		if err != nil {
			return err
		}

		if format == "csv" || format == "both" {
			path, err := dataset.WriteCSV(outputDir, conv, i)
			if err != nil {
				return err
			}
			fmt.Printf("Saved conversation to %s\n", path)
			run.OutputFiles = append(run.OutputFiles, path)
		}
		if format == "json" || format == "both" {
			path, err := dataset.WriteJSON(outputDir, bundle, conv, i)
			if err != nil {
				return err
			}
			fmt.Printf("Saved conversation to %s\n", path)
			run.OutputFiles = append(run.OutputFiles, path)
		}
	}

	recordRun(ctx, run)
	fmt.Printf("\nSuccessfully generated %d conversations with %d turns each.\n", count, turns)
	return nil
}

// bindProviders resolves each participant's model reference against the
// configured provider credentials.
func bindProviders(cfg *config.Config, bundle *card.Bundle) (map[string]dialogue.Participant, error) {
	bound := make(map[string]dialogue.Participant, len(bundle.Personas))
	for id, persona := range bundle.Personas {
		provider, model, err := providers.FromModelRef(cfg, persona.ModelRef())
		if err != nil {
			return nil, fmt.Errorf("participant %s: %w", id, err)
		}
		bound[id] = dialogue.Participant{Provider: provider, Model: model}
	}
	return bound, nil
}

// recordRun appends to the run manifest. Manifest failures never abort a
// finished generation run.
func recordRun(ctx context.Context, run dataset.Run) {
	path := manifestPath()
	os.MkdirAll(filepath.Dir(path), 0o755)
	store, err := dataset.OpenRunStore(path)
	if err != nil {
		logger.WarnCF("cli", "Run manifest unavailable", map[string]any{"error": err.Error()})
		return
	}
	defer store.Close()

	if err := store.RecordRun(ctx, run); err != nil {
		logger.WarnCF("cli", "Failed to record run", map[string]any{"error": err.Error()})
	}
}

func manifestPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "convogen_runs.db"
	}
	return filepath.Join(home, ".convogen", "runs.db")
}
