package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	appName = "gridpulse"
	version = "v1.2.0"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	if term.IsTerminal(int(os.Stderr.Fd())) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Synthetic zonal electricity market intelligence engine",
		Version: version,
		Long: `GridPulse generates a synthetic zonal electricity market state on a
fixed cadence and derives trading signals, severity-classified alerts,
and multi-horizon forecasts from each snapshot. Results are published
atomically and served over a read-only JSON API.`,
	}
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config (built-in defaults when empty)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (trace|debug|info|warn|error)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the refresh scheduler and HTTP API",
		Long:  "Starts the periodic refresh loop, optional Redis/Postgres fan-out, and the read-only API server.",
		RunE:  runServe,
	}

	refreshCmd := &cobra.Command{
		Use:   "refresh",
		Short: "Generate one bundle and print it as JSON",
		Long:  "Runs a single generation cycle against the configured catalog and writes the full bundle to stdout.",
		RunE:  runRefresh,
	}
	refreshCmd.Flags().Int64("seed", 0, "Sampler seed (0 uses the configured seed)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(refreshCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setLogLevel(level string) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
}
