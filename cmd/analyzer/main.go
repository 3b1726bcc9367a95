package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/corpustools/webcorpus/internal/analyze"
	"github.com/corpustools/webcorpus/internal/config"
)

// The aggregation stage: waits for the process-complete marker, loads every
// extracted record and writes the final corpus report. Takes no arguments;
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

	if err := analyze.New(cfg).Run(context.Background()); err != nil {
		log.Error().Err(err).Msg("analyzer failed")
		os.Exit(1)
	}
}
