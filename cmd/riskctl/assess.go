package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/burenotti/go_health_risk/internal/domain/observation"
	"github.com/burenotti/go_health_risk/internal/domain/risk"
	"github.com/spf13/cobra"
)

type assessOptions struct {
	file    string
	json    bool
	explain bool
}

func newAssessCmd() *cobra.Command {
	opts := &assessOptions{}
	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Assess a health observation read from a JSON file or stdin",
		Long: `Assess reads an observation in the same JSON shape the HTTP API accepts
and prints the derived metrics, score, risk level and risk factors.

Exit Codes:
  0 = assessment produced
  1 = invalid input (bad JSON, invalid measurement, unknown category)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAssess(cmd, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.file, "file", "f", "-", "observation JSON file, - for stdin")
	cmd.Flags().BoolVar(&opts.json, "json", false, "output as JSON")
	cmd.Flags().BoolVar(&opts.explain, "explain", false, "show the per-rule score breakdown")
	return cmd
}

func runAssess(cmd *cobra.Command, opts *assessOptions) error {
	var r io.Reader = cmd.InOrStdin()
	if opts.file != "-" {
		f, err := os.Open(opts.file)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	var in observation.Input
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		return fmt.Errorf("decode observation: %w", err)
	}

	obs, a, err := risk.AssessInput(in)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(a)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "BMI:\t%.1f (%s)\n", a.Metrics.BMI, a.Metrics.BMICategory)
	fmt.Fprintf(w, "Blood pressure:\t%d/%d (%s)\n", obs.SystolicBp, obs.DiastolicBp, a.Metrics.BPCategory)
	fmt.Fprintf(w, "Score:\t%d/%d\n", a.Score, len(a.Contributions))
	fmt.Fprintf(w, "Risk level:\t%s\n", a.Level)
	factors := strings.Join(a.Factors, ", ")
	if factors == "" {
		factors = "none"
	}
	fmt.Fprintf(w, "Risk factors:\t%s\n", factors)
	if opts.explain {
		fmt.Fprintln(w)
		for _, c := range a.Contributions {
			fmt.Fprintf(w, "  %s\t+%d\n", c.Name, c.Points)
		}
	}
	return w.Flush()
}
