package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/burenotti/go_health_risk/internal/domain/risk"
	"github.com/spf13/cobra"
)

func newRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Print the scoring predicates, level bands and factor rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)

			fmt.Fprintln(w, "PREDICATE\tPOINTS")
			for _, p := range risk.DefaultPredicates {
				fmt.Fprintf(w, "%s\t1\n", p.Name)
			}

			fmt.Fprintln(w, "\nSCORE\tLEVEL")
			for _, b := range risk.DefaultBands {
				fmt.Fprintf(w, "%d-%d\t%s\n", b.Min, b.Max, b.Level)
			}

			fmt.Fprintln(w, "\nFACTOR")
			for _, r := range risk.DefaultFactorRules {
				fmt.Fprintln(w, r.Label)
			}
			fmt.Fprintln(w, "(then declared chronic conditions, then declared symptoms)")
			return w.Flush()
		},
	}
}
