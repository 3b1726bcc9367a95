package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/corpustools/webcorpus/internal/fetch"
	"github.com/corpustools/webcorpus/internal/urlstats"
)

// Standalone tool: fetch a list of URLs and report per-URL response
// statistics plus a run summary. Not part of the batch pipeline.
func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		inputFile string
		outDir    string
		timeout   time.Duration
		userAgent string
	)
	flag.StringVar(&inputFile, "input", "urls.txt", "Path to file with one URL per line")
	flag.StringVar(&outDir, "out", "out", "Output directory for responses.json, summary.json and errors.log")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "Per-request timeout")
	flag.StringVar(&userAgent, "ua", "webcorpus-urlreport/1.0", "User-Agent header")
	flag.Parse()

	client := &fetch.Client{
		UserAgent:         userAgent,
		MaxAttempts:       1,
		PerRequestTimeout: timeout,
	}
	if err := urlstats.Run(context.Background(), client, inputFile, outDir); err != nil {
		log.Error().Err(err).Msg("url report failed")
		os.Exit(1)
	}
	log.Info().Str("out", outDir).Msg("url report complete")
}
