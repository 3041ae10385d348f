package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/MohammedBenaboud/Alphaseeker/src/application/pipeline"
	"github.com/MohammedBenaboud/Alphaseeker/src/infrastructure/config"
	"github.com/MohammedBenaboud/Alphaseeker/src/infrastructure/persistence"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print recent executions from the ledger",
	Long: `Reads the most recent execution log entries from the Postgres
ledger. Requires a database DSN in the configuration.`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&historyLimit, "limit", 50, "Maximum entries to print")
}

func runHistory(cmd *cobra.Command, args []string) error {
	settings, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if settings.Database.DSN == "" {
		return fmt.Errorf("no database DSN configured; the history command needs the ledger")
	}

	ledger, err := persistence.Open(cmd.Context(), settings.Database.DSN)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer ledger.Close()

	entries, err := ledger.RecentExecutions(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	printExecutions(os.Stdout, entries)
	return nil
}

func printExecutions(out io.Writer, entries []pipeline.ExecutionLogEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(out, "No executions recorded.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tSYMBOL\tKIND\tSIZE\tREASON")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t$%.2f\t%s\n",
			e.Timestamp.Format(time.RFC3339), e.Symbol, e.Kind, e.SizeUSD, e.Reason)
	}
	w.Flush()
}
