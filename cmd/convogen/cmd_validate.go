package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dialoglab/convogen/pkg/card"
)

func newValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <card.json>...",
		Short: "Validate conversation cards and the files they reference",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			failed := 0
			for _, path := range args {
				report := card.Validate(path)

				if report.OK() && len(report.Warnings) == 0 {
					fmt.Printf("%s: ok\n", path)
					continue
				}
				fmt.Printf("%s:\n", path)
				for _, e := range report.Errors {
					fmt.Printf("  error: %s\n", e)
				}
				for _, w := range report.Warnings {
					fmt.Printf("  warning: %s\n", w)
				}
				if !report.OK() {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d cards failed validation", failed, len(args))
			}
			return nil
		},
	}
	return cmd
}
