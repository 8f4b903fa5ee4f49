package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dialoglab/convogen/pkg/dataset"
)

func newExtractCommand() *cobra.Command {
	var (
		format    string
		output    string
		outputDir string
	)

	cmd := &cobra.Command{
		Use:   "extract <conversation.json | dir>",
		Short: "Render conversation JSON as clean dialog for expert review",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			input := args[0]
			info, err := os.Stat(input)
			if err != nil {
				return err
			}

			if !info.IsDir() {
				out := output
				if out == "" {
					out = extractedName(input, format)
				}
				return extractOne(input, out, dataset.ExtractFormat(format))
			}

			if outputDir == "" {
				outputDir = "extracted_dialogs"
			}
			if err := os.MkdirAll(outputDir, 0o755); err != nil {
				return err
			}

			entries, err := os.ReadDir(input)
			if err != nil {
				return err
			}
			extracted := 0
			for _, entry := range entries {
				if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
					continue
				}
				src := filepath.Join(input, entry.Name())
				dst := filepath.Join(outputDir, extractedName(entry.Name(), format))
				if err := extractOne(src, dst, dataset.ExtractFormat(format)); err != nil {
					return err
				}
				extracted++
			}
			if extracted == 0 {
				return fmt.Errorf("no JSON files found in %s", input)
			}
			fmt.Printf("Extraction complete. %d files saved to %s\n", extracted, outputDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "standard", "Output format: standard, clinical or screenplay")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path (single file mode)")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Output directory (directory mode)")

	return cmd
}

func extractOne(src, dst string, format dataset.ExtractFormat) error {
	doc, err := dataset.LoadDocument(src)
	if err != nil {
		return err
	}
	dialog, err := dataset.Extract(doc, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dst, []byte(dialog+"\n"), 0o644); err != nil {
		return err
	}
	fmt.Printf("Extracted dialog saved to %s\n", dst)
	return nil
}

func extractedName(input, format string) string {
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return fmt.Sprintf("%s_extracted_%s.txt", stem, format)
}
