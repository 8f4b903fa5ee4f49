package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dialoglab/convogen/pkg/dataset"
)

func newDatasetCommand() *cobra.Command {
	var (
		input      string
		outputFile string
		useHistory bool
	)

	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Pack conversation CSV files into instruction-tuning JSON",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			info, err := os.Stat(input)
			if err != nil {
				return err
			}

			var records []dataset.TrainingRecord
			if info.IsDir() {
				records, err = dataset.PackDir(input, useHistory)
			} else {
				records, err = dataset.PackFile(input, useHistory)
			}
			if err != nil {
				return err
			}

			out := dataset.TimestampedName(outputFile, time.Now())
			if err := dataset.SaveTraining(records, out); err != nil {
				return err
			}
			fmt.Printf("Packed %d training examples into %s\n", len(records), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "./output", "CSV file or directory of CSV files")
	cmd.Flags().StringVarP(&outputFile, "output-file", "o", "training_data.json", "Base name for the output JSON file")
	cmd.Flags().BoolVar(&useHistory, "history", false, "Include rolling conversation history in each record")

	return cmd
}
