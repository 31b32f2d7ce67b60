package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "riskctl",
		Short: "Offline tooling for the health risk engine",
		Long: `Run the rule-based health risk engine without the HTTP service.

Examples:
  riskctl assess -f observation.json   # Assess an observation file
  cat obs.json | riskctl assess --json # Read stdin, print JSON
  riskctl rules                        # Print the rule tables
  riskctl token --subject user-42      # Issue a bearer token for local testing`,
		SilenceUsage: true,
	}
	root.AddCommand(newAssessCmd(), newRulesCmd(), newTokenCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
