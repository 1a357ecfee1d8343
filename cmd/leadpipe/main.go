package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/smartsales/lead-pipeline/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "leadpipe",
		Short:   "leadpipe - sales lead qualification pipeline",
		Version: version.Current,
		Long: `leadpipe processes a batch of sales leads: concurrent enrichment,
rule-based qualification scoring, outreach drafting for qualified leads,
and deferred follow-up scheduling. State is in-memory for the run; the
final snapshot is the externally visible output.`,
	}

	rootCmd.AddCommand(runCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
