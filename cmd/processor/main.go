package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/corpustools/webcorpus/internal/config"
	"github.com/corpustools/webcorpus/internal/process"
)

// The extraction stage: waits for the fetch-complete marker, extracts every
// raw document and writes the process-complete marker. Takes no arguments;
// configuration comes from defaults plus the optional file named by
// WEBCORPUS_CONFIG. Progress goes to stdout.
func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if err := process.New(cfg).Run(context.Background()); err != nil {
		log.Error().Err(err).Msg("processor failed")
		os.Exit(1)
	}
}
