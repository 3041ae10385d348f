package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
)

// rootCmd is the base command for the AlphaSeeker CLI.
var rootCmd = &cobra.Command{
	Use:   "alphaseeker",
	Short: "AlphaSeeker on-chain asset scanner and trading simulator",
	Long: `AlphaSeeker scans DEX market data, scores and classifies assets,
and runs a risk-governed simulated trading loop with adaptive
parameter tuning.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(logLevel)
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("AlphaSeeker asset scanner")
		fmt.Println("Use 'alphaseeker run' for the live loop, 'alphaseeker scan' for a one-shot scan")
	},
}

func setupLogging(level string) error {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(parsed)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config/alphaseeker.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: trace, debug, info, warn, error")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
