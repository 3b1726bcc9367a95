package process

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/corpustools/webcorpus/internal/config"
	"github.com/corpustools/webcorpus/internal/extract"
	"github.com/corpustools/webcorpus/internal/marker"
	"github.com/corpustools/webcorpus/internal/store"
)

// Driver runs the extraction stage: wait for the upstream fetch marker,
// extract every raw document in lexicographic order with per-document
// failure isolation, persist one record per success, and finish by writing
// the process-complete marker. The stage is one-shot.
type Driver struct {
	Cfg       config.Config
	Extractor extract.Extractor
	Store     *store.RecordStore
}

func New(cfg config.Config) *Driver {
	return &Driver{
		Cfg:       cfg,
		Extractor: extract.RegexExtractor{},
		Store:     &store.RecordStore{Dir: cfg.ProcessedDir},
	}
}

// Run executes the stage. The context only cancels the upstream wait; once
// extraction has started, every document is attempted.
func (d *Driver) Run(ctx context.Context) error {
	log.Info().Msg("processor starting")

	if err := marker.Wait(ctx, d.Cfg.FetchMarkerPath(), d.Cfg.PollInterval); err != nil {
		return fmt.Errorf("wait for fetch marker: %w", err)
	}

	files, err := listRawDocuments(d.Cfg.RawDir)
	if err != nil {
		return fmt.Errorf("list raw documents: %w", err)
	}
	log.Info().Int("count", len(files)).Msg("found raw documents")

	outputs := make([]string, 0, len(files))
	success, failed := 0, 0

	for _, name := range files {
		if out, err := d.processOne(name); err != nil {
			failed++
			log.Warn().Err(err).Str("file", name).Msg("failed to process document")
		} else {
			outputs = append(outputs, out)
			success++
			log.Info().Str("file", name).Str("output", out).Msg("processed")
		}
		time.Sleep(d.Cfg.PacingDelay)
	}

	m := marker.ProcessMarker{
		Timestamp:        time.Now().UTC(),
		InputsDetected:   len(files),
		ProcessedSuccess: success,
		ProcessedFailed:  failed,
		Outputs:          outputs,
	}
	if err := marker.Write(d.Cfg.ProcessMarkerPath(), m); err != nil {
		return fmt.Errorf("write process marker: %w", err)
	}
	log.Info().Int("success", success).Int("failed", failed).Msg("processor complete")
	return nil
}

// processOne extracts a single raw document and persists its record. Any
// error stays local to this document.
func (d *Driver) processOne(name string) (string, error) {
	b, err := os.ReadFile(filepath.Join(d.Cfg.RawDir, name))
	if err != nil {
		return "", fmt.Errorf("read: %w", err)
	}
	rec := d.Extractor.Extract(name, string(b))
	out := store.OutputName(name)
	if err := d.Store.Save(out, rec); err != nil {
		return "", fmt.Errorf("persist: %w", err)
	}
	return out, nil
}

// listRawDocuments enumerates *.html files in lexicographic filename order.
// The order is deterministic and content-unaware.
func listRawDocuments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".html") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}
