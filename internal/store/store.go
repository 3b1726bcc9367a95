package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/corpustools/webcorpus/internal/extract"
)

// RecordStore persists extracted records as one indented JSON file per
// document under Dir. Records are written once by the extraction stage and
// read-only afterwards; there is no eviction or mutation.
type RecordStore struct {
	Dir string
}

func (s *RecordStore) ensureDir() error {
	if s == nil || s.Dir == "" {
		return fmt.Errorf("record dir not configured")
	}
	return os.MkdirAll(s.Dir, 0o755)
}

// OutputName derives the record filename from a raw document filename by
// swapping the extension for .json.
func OutputName(sourceFile string) string {
	stem := strings.TrimSuffix(sourceFile, filepath.Ext(sourceFile))
	return stem + ".json"
}

// Save writes one record under name. The write goes through a temp file and
// rename so the aggregation stage never reads a partial record.
func (s *RecordStore) Save(name string, rec extract.Record) error {
	if err := s.ensureDir(); err != nil {
		return err
	}
	b, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	path := filepath.Join(s.Dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return os.Rename(tmp, path)
}

// List returns the record filenames in lexicographic order. A missing
// directory is an empty store, not an error.
func (s *RecordStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Load reads and decodes one record by filename.
func (s *RecordStore) Load(name string) (extract.Record, error) {
	var rec extract.Record
	b, err := os.ReadFile(filepath.Join(s.Dir, name))
	if err != nil {
		return rec, err
	}
	if err := json.Unmarshal(b, &rec); err != nil {
		return rec, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}
