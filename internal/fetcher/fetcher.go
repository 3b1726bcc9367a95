package fetcher

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/corpustools/webcorpus/internal/config"
	"github.com/corpustools/webcorpus/internal/fetch"
	"github.com/corpustools/webcorpus/internal/marker"
)

// Stage is the upstream fetch stage. It deposits one raw HTML file per
// reachable seed URL and finishes by writing the fetch-complete marker the
// extraction driver waits on. It owns the raw directory; nothing else
// writes there.
type Stage struct {
	Cfg    config.Config
	Client *fetch.Client
}

func New(cfg config.Config) *Stage {
	return &Stage{
		Cfg: cfg,
		Client: &fetch.Client{
			UserAgent:         cfg.UserAgent,
			MaxAttempts:       2,
			PerRequestTimeout: cfg.RequestTimeout,
		},
	}
}

// Run fetches every seed URL sequentially and writes the completion marker
// once all have been attempted. A single unreachable URL never aborts the
// batch.
func (s *Stage) Run(ctx context.Context) error {
	log.Info().Str("seeds", s.Cfg.SeedFile).Msg("fetcher starting")

	urls, err := readSeeds(s.Cfg.SeedFile)
	if err != nil {
		return fmt.Errorf("read seeds: %w", err)
	}
	if err := os.MkdirAll(s.Cfg.RawDir, 0o755); err != nil {
		return fmt.Errorf("mkdir raw dir: %w", err)
	}

	fetched, failed := 0, 0
	for i, u := range urls {
		resp, err := s.Client.Get(ctx, u)
		if err != nil {
			failed++
			log.Warn().Err(err).Str("url", u).Msg("fetch failed")
			continue
		}
		if !fetch.IsHTMLContentType(resp.ContentType) {
			failed++
			log.Warn().Str("url", u).Str("contentType", resp.ContentType).Msg("skipping non-HTML response")
			continue
		}
		name := fmt.Sprintf("page_%03d.html", i+1)
		if err := os.WriteFile(filepath.Join(s.Cfg.RawDir, name), resp.Body, 0o644); err != nil {
			failed++
			log.Warn().Err(err).Str("url", u).Msg("write raw document failed")
			continue
		}
		fetched++
		log.Info().Str("url", u).Str("file", name).Str("title", fetch.Title(resp.Body)).Msg("fetched")
	}

	m := marker.FetchMarker{
		Timestamp:    time.Now().UTC(),
		PagesFetched: fetched,
		Failed:       failed,
	}
	if err := marker.Write(s.Cfg.FetchMarkerPath(), m); err != nil {
		return fmt.Errorf("write fetch marker: %w", err)
	}
	log.Info().Int("fetched", fetched).Int("failed", failed).Msg("fetcher complete")
	return nil
}

func readSeeds(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var urls []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, sc.Err()
}
