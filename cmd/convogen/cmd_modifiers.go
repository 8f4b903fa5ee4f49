package main

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dialoglab/convogen/pkg/modifier"
)

func newModifiersCommand() *cobra.Command {
	var catalogPath string

	cmd := &cobra.Command{
		Use:   "modifiers",
		Short: "Inspect a modifier catalog and sample modifier sets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVarP(&catalogPath, "file", "f", "", "Path to the modifier catalog JSON")
	cmd.MarkPersistentFlagRequired("file")

	cmd.AddCommand(
		newModifiersListCommand(&catalogPath),
		newModifiersSampleCommand(&catalogPath),
	)
	return cmd
}

func newModifiersListCommand(catalogPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories, spectrums and modifiers",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			catalog, err := modifier.Load(*catalogPath)
			if err != nil {
				return err
			}

			for _, category := range catalog.Categories() {
				fmt.Printf("%s\n", category)
				for _, mod := range catalog.ModifiersFor([]string{category}) {
					fmt.Printf("  %-40s %s (%s)\n", mod.Text, mod.Spectrum, mod.Intensity)
				}
			}

			if rules := catalog.ContradictionRules(); len(rules) > 0 {
				fmt.Println("\ncontradictions:")
				for _, rule := range rules {
					fmt.Printf("  %s <-> %s\n", rule.A, rule.B)
				}
			}
			if combos := catalog.ComplementaryCombinations(); len(combos) > 0 {
				fmt.Println("\ncomplementary:")
				for _, combo := range combos {
					fmt.Printf("  %s\n", strings.Join(combo.Members, " + "))
				}
			}
			return nil
		},
	}
}

func newModifiersSampleCommand(catalogPath *string) *cobra.Command {
	var (
		categories []string
		count      int
		domain     string
		coherence  string
		seed       int64
	)

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Draw a sample modifier set from the catalog",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			catalog, err := modifier.Load(*catalogPath)
			if err != nil {
				return err
			}
			if len(categories) == 0 {
				categories = catalog.Categories()
			}

			req := modifier.Request{
				Categories: categories,
				Count:      count,
				Domain:     domain,
				Level:      modifier.Level(coherence),
			}
			if seed != 0 {
				req.Rand = rand.New(rand.NewSource(seed))
			}

			selected, err := modifier.NewSelector(catalog).Select(req)
			if err != nil {
				return err
			}
			for _, text := range selected {
				fmt.Println(text)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&categories, "categories", nil, "Categories to draw from (default: all)")
	cmd.Flags().IntVar(&count, "count", 3, "Target modifier count")
	cmd.Flags().StringVar(&domain, "domain", "", "Domain label for weighted selection")
	cmd.Flags().StringVar(&coherence, "coherence", "balanced", "Coherence level: high, balanced, low")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Selection seed (0 = random)")

	return cmd
}
