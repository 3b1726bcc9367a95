package marker

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
)

// FetchMarker is written by the fetch stage once every raw document has been
// deposited. Downstream only depends on its existence; the fields are
// informational.
type FetchMarker struct {
	Timestamp    time.Time `json:"timestamp"`
	PagesFetched int       `json:"pages_fetched"`
	Failed       int       `json:"failed"`
}

// ProcessMarker summarizes the extraction batch. Its presence is the sole
// signal that the record set is complete and safe to read.
type ProcessMarker struct {
	Timestamp        time.Time `json:"timestamp"`
	InputsDetected   int       `json:"inputs_detected"`
	ProcessedSuccess int       `json:"processed_success"`
	ProcessedFailed  int       `json:"processed_failed"`
	Outputs          []string  `json:"outputs"`
}

// Write persists a marker as indented JSON via a temp file and rename, so a
// waiting stage never observes a torn marker.
func Write(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir marker dir: %w", err)
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode marker: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write marker: %w", err)
	}
	return os.Rename(tmp, path)
}

// ReadProcess loads an extraction-stage marker.
func ReadProcess(path string) (ProcessMarker, error) {
	var m ProcessMarker
	b, err := os.ReadFile(path)
	if err != nil {
		return m, err
	}
	if err := json.Unmarshal(b, &m); err != nil {
		return m, fmt.Errorf("decode marker: %w", err)
	}
	return m, nil
}

// Wait blocks until an artifact exists at path, polling at interval and
// logging one progress line per poll. The existence check is a pure read; it
// is never retried within a poll. Cancelling ctx is the only way out before
// the marker appears; callers that want to wait forever pass
// context.Background().
func Wait(ctx context.Context, path string, interval time.Duration) error {
	for {
		if _, err := os.Stat(path); err == nil {
			return nil
		}
		log.Info().Str("marker", path).Msg("waiting for marker")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}
