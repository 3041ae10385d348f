package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/MohammedBenaboud/Alphaseeker/src/application/tune"
)

var healthAddr string

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Query a running instance and print its health snapshot",
	Long: `Calls the /health endpoint of a running 'alphaseeker run' process
and prints the current system metric and any active alerts.`,
	RunE: runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
	healthCmd.Flags().StringVar(&healthAddr, "addr", "http://localhost:8090", "Base URL of the running instance")
}

// healthReport mirrors the /health response body.
type healthReport struct {
	Status     string             `json:"status"`
	LastCycle  time.Time          `json:"last_cycle"`
	CycleCount int64              `json:"cycle_count"`
	Metric     tune.SystemMetric  `json:"metric"`
	Alerts     []tune.SystemAlert `json:"alerts"`
}

func runHealth(cmd *cobra.Command, args []string) error {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(healthAddr + "/health")
	if err != nil {
		return fmt.Errorf("query %s: %w", healthAddr, err)
	}
	defer resp.Body.Close()

	// A stale instance answers 503 but still carries a full report.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusServiceUnavailable {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, healthAddr)
	}

	var report healthReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return fmt.Errorf("decode health response: %w", err)
	}

	printHealth(os.Stdout, report)
	return nil
}

func printHealth(out io.Writer, report healthReport) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Status\t%s\n", report.Status)
	fmt.Fprintf(w, "Cycles\t%d\n", report.CycleCount)
	if !report.LastCycle.IsZero() {
		fmt.Fprintf(w, "Last cycle\t%s\n", report.LastCycle.Format(time.RFC3339))
	}
	fmt.Fprintf(w, "Signal accuracy\t%.1f%%\n", report.Metric.SignalAccuracy)
	fmt.Fprintf(w, "Error rate\t%.1f%%\n", report.Metric.ErrorRate)
	fmt.Fprintf(w, "Latency\t%dms\n", report.Metric.LatencyMS)
	fmt.Fprintf(w, "Active modules\t%d\n", report.Metric.ActiveModules)
	w.Flush()

	if len(report.Alerts) > 0 {
		fmt.Fprintln(out, "\nAlerts:")
		for _, alert := range report.Alerts {
			fmt.Fprintf(out, "  [%s] %s: %s\n", alert.Severity, alert.Module, alert.Message)
		}
	}
}
