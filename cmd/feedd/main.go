package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	appName = "feedd"
	version = "v1.0.0"
)

var configPath string

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	if term.IsTerminal(int(os.Stderr.Fd())) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Hybrid relevance and feed ranking engine",
		Version: version,
		Long: `feedd serves personalized, ranked news feeds over a knowledge graph of
companies, market factors and client portfolios. Each feed is deduplicated,
trust-gated, policy-filtered and split into MAINTENANCE and OPPORTUNITY
channels.`,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config/feed.yaml", "path to config file")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(feedCmd())
	rootCmd.AddCommand(validateConfigCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
