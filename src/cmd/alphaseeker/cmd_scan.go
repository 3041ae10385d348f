package main

import (
	"fmt"
	"math/rand"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/MohammedBenaboud/Alphaseeker/src/application/pipeline"
	"github.com/MohammedBenaboud/Alphaseeker/src/infrastructure/config"
	"github.com/MohammedBenaboud/Alphaseeker/src/infrastructure/ingest"
	"github.com/MohammedBenaboud/Alphaseeker/src/internal/artifacts"
)

var (
	scanSynthetic bool
	scanTop       int
	scanOut       string
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run a single scan and print the ranked results",
	Long: `Fetches one batch of market data, scores and classifies every
asset, and prints the ranking with triggers and explanations. Use
--out to also write JSON and CSV reports.`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().BoolVar(&scanSynthetic, "synthetic", false, "Use the synthetic data generator instead of live data")
	scanCmd.Flags().IntVar(&scanTop, "top", 15, "Number of assets to display")
	scanCmd.Flags().StringVar(&scanOut, "out", "", "Directory for JSON/CSV reports (empty disables)")
}

func runScan(cmd *cobra.Command, args []string) error {
	settings, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if scanSynthetic {
		settings.Ingest.Synthetic = true
	}

	var source ingest.Source
	if settings.Ingest.Synthetic {
		source = ingest.NewSyntheticSource(rand.New(rand.NewSource(time.Now().UnixNano())))
	} else {
		source = ingest.NewClient(ingest.Options{
			BaseURL:         settings.Ingest.BaseURL,
			RequestTimeout:  settings.Ingest.RequestTimeout,
			RequestsPerSec:  settings.Ingest.RequestsPerSec,
			BurstAllowance:  settings.Ingest.BurstAllowance,
			MinLiquidityUSD: settings.Ingest.MinLiquidityUSD,
		})
	}

	now := time.Now()
	snaps, err := source.Fetch(cmd.Context(), settings.Ingest.Query)
	if err != nil {
		return fmt.Errorf("fetch market data: %w", err)
	}

	enriched := pipeline.EnrichBatch(snaps, settings.Trading.Scoring, now)
	printRanking(enriched, scanTop)

	if scanOut != "" {
		writer := artifacts.NewWriter(scanOut)
		jsonPath, err := writer.WriteJSON("scan", enriched, now)
		if err != nil {
			return fmt.Errorf("write scan report: %w", err)
		}
		csvPath, err := writer.WriteScanCSV("scan", enriched, now)
		if err != nil {
			return fmt.Errorf("write scan csv: %w", err)
		}
		fmt.Printf("\nReports written:\n  %s\n  %s\n", jsonPath, csvPath)
	}
	return nil
}

func printRanking(assets []pipeline.EnrichedAsset, top int) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tSYMBOL\tSCORE\tSTATE\tCONF\tTRIGGER\tSIGNALS")

	for i, a := range assets {
		if i >= top {
			break
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\t%s\t%s\n",
			i+1,
			a.Snapshot.Symbol,
			a.Score,
			a.Decision.State,
			a.Decision.Confidence,
			a.Decision.Trigger,
			strings.Join(a.Explanation.SupportingSignals, "; "),
		)
	}
	w.Flush()

	if len(assets) > top {
		fmt.Printf("... and %d more\n", len(assets)-top)
	}
}
