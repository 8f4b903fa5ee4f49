package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dialoglab/convogen/pkg/dataset"
)

func newRunsCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded generation runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := dataset.OpenRunStore(manifestPath())
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("No runs recorded yet.")
				return nil
			}

			for _, run := range runs {
				fmt.Printf("%s  %s\n", run.CreatedAt.Format("2006-01-02 15:04:05"), run.ID)
				fmt.Printf("  card: %s\n", run.CardPath)
				fmt.Printf("  %d conversations x %d turns, format %s\n", run.Conversations, run.Turns, run.Format)
				if len(run.OutputFiles) > 0 {
					fmt.Printf("  files: %s\n", strings.Join(run.OutputFiles, ", "))
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show")
	return cmd
}
