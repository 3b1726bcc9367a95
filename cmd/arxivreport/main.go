package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/corpustools/webcorpus/internal/arxiv"
	"github.com/corpustools/webcorpus/internal/fetch"
)

// Standalone tool: query the arXiv Atom API and analyze the returned paper
// metadata. Not part of the batch pipeline.
func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		query      string
		maxResults int
		outDir     string
		baseURL    string
	)
	flag.StringVar(&query, "query", "", "arXiv search query, e.g. 'cat:cs.LG'")
	flag.IntVar(&maxResults, "max", 10, "Maximum results to fetch (1-100)")
	flag.StringVar(&outDir, "out", "out", "Output directory for papers.json, corpus_analysis.json and processing.log")
	flag.StringVar(&baseURL, "api", arxiv.DefaultBaseURL, "arXiv API base URL")
	flag.Parse()

	if query == "" {
		log.Fatal().Msg("a search query is required (-query)")
	}
	if maxResults < 1 || maxResults > 100 {
		log.Fatal().Int("max", maxResults).Msg("max results must be between 1 and 100")
	}

	client := &arxiv.Client{
		BaseURL: baseURL,
		HTTP: &fetch.Client{
			UserAgent:         "webcorpus-arxivreport/1.0",
			MaxAttempts:       1,
			PerRequestTimeout: 20 * time.Second,
		},
	}
	if err := arxiv.Run(context.Background(), client, query, maxResults, outDir); err != nil {
		log.Error().Err(err).Msg("arxiv report failed")
		os.Exit(1)
	}
	log.Info().Str("out", outDir).Msg("arxiv report complete")
}
