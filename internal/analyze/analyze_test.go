package analyze

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/corpustools/webcorpus/internal/config"
	"github.com/corpustools/webcorpus/internal/extract"
	"github.com/corpustools/webcorpus/internal/marker"
	"github.com/corpustools/webcorpus/internal/store"
)

func TestReport_TwoDocumentCorpus(t *testing.T) {
	var c Corpus
	c.Add("doc_a.json", "Hello world. Hello again!")
	c.Add("doc_b.json", "Hello world again.")

	r := c.Report(time.Now().UTC())

	if r.DocumentsProcessed != 2 {
		t.Fatalf("expected 2 documents, got %d", r.DocumentsProcessed)
	}
	if r.TotalWords != 7 {
		t.Fatalf("expected 7 total words, got %d", r.TotalWords)
	}
	if r.UniqueWords != 3 {
		t.Fatalf("expected 3 unique words, got %d", r.UniqueWords)
	}

	if len(r.TopWords) != 3 {
		t.Fatalf("expected 3 ranked words, got %d", len(r.TopWords))
	}
	top := r.TopWords[0]
	if top.Word != "hello" || top.Count != 3 {
		t.Fatalf("expected hello x3 on top, got %+v", top)
	}
	if top.Frequency != 0.428571 {
		t.Fatalf("expected frequency 0.428571, got %v", top.Frequency)
	}

	// Both documents share the same distinct-word set.
	if len(r.DocumentSimilarity) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(r.DocumentSimilarity))
	}
	pair := r.DocumentSimilarity[0]
	if pair.Doc1 != "doc_a.json" || pair.Doc2 != "doc_b.json" {
		t.Fatalf("unexpected pair names: %+v", pair)
	}
	if pair.Similarity != 1.0 {
		t.Fatalf("expected similarity 1.0, got %v", pair.Similarity)
	}

	if len(r.TopBigrams) == 0 || r.TopBigrams[0].Bigram != "hello world" || r.TopBigrams[0].Count != 2 {
		t.Fatalf("expected 'hello world' x2 as top bigram, got %+v", r.TopBigrams)
	}
}

func TestReport_EmptyCorpus(t *testing.T) {
	var c Corpus
	r := c.Report(time.Now().UTC())

	if r.DocumentsProcessed != 0 || r.TotalWords != 0 || r.UniqueWords != 0 {
		t.Fatalf("expected zero counters, got %+v", r)
	}
	if r.Readability != (Readability{}) {
		t.Fatalf("expected zero readability, got %+v", r.Readability)
	}

	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, key := range []string{`"top_100_words":[]`, `"document_similarity":[]`, `"top_bigrams":[]`, `"top_trigrams":[]`} {
		if !strings.Contains(string(b), key) {
			t.Fatalf("expected %s in empty report, got %s", key, b)
		}
	}
}

func TestReport_WordListCappedAndSorted(t *testing.T) {
	var c Corpus
	var sb strings.Builder
	// 120 distinct words; wNNN repeated 120-N times so counts are strictly
	// decreasing in index order.
	for i := 0; i < 120; i++ {
		for j := 0; j < 120-i; j++ {
			sb.WriteString("w")
			sb.WriteString(strings.Repeat("x", i/26))
			sb.WriteByte(byte('a' + i%26))
			sb.WriteString(" ")
		}
	}
	c.Add("big.json", sb.String())

	r := c.Report(time.Now().UTC())
	if len(r.TopWords) != 100 {
		t.Fatalf("expected list capped at 100, got %d", len(r.TopWords))
	}
	for i := 1; i < len(r.TopWords); i++ {
		if r.TopWords[i].Count > r.TopWords[i-1].Count {
			t.Fatalf("counts not non-increasing at %d: %+v", i, r.TopWords[i-1:i+1])
		}
	}
}

func TestReport_ReadabilityWithoutSentences(t *testing.T) {
	var c Corpus
	c.Add("doc.json", "alpha beta")

	r := c.Report(time.Now().UTC())
	// No sentence punctuation: average sentence length degenerates to the
	// total word count.
	if r.Readability.AvgSentenceLength != 2.0 {
		t.Fatalf("expected avg sentence length 2.0, got %v", r.Readability.AvgSentenceLength)
	}
	if r.Readability.AvgWordLength != 4.5 {
		t.Fatalf("expected avg word length 4.5, got %v", r.Readability.AvgWordLength)
	}
	if r.Readability.ComplexityScore != 9.0 {
		t.Fatalf("expected complexity 9.0, got %v", r.Readability.ComplexityScore)
	}
}

func TestRun_SkipsCorruptRecords(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default()
	cfg.ProcessedDir = filepath.Join(root, "processed")
	cfg.StatusDir = filepath.Join(root, "status")
	cfg.AnalysisDir = filepath.Join(root, "analysis")
	cfg.PollInterval = 5 * time.Millisecond

	s := &store.RecordStore{Dir: cfg.ProcessedDir}
	for name, text := range map[string]string{
		"page_001.json": "Hello world. Hello again!",
		"page_002.json": "Hello world again.",
	} {
		rec := extract.Record{
			SourceFile:  strings.TrimSuffix(name, ".json") + ".html",
			Text:        text,
			Statistics:  extract.Stats(text),
			Links:       []string{},
			Images:      []string{},
			ProcessedAt: time.Now().UTC(),
		}
		if err := s.Save(name, rec); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(cfg.ProcessedDir, "page_000.json"), []byte("{broken"), 0o644); err != nil {
		t.Fatalf("write corrupt record: %v", err)
	}
	if err := marker.Write(cfg.ProcessMarkerPath(), marker.ProcessMarker{Timestamp: time.Now().UTC()}); err != nil {
		t.Fatalf("write marker: %v", err)
	}

	a := New(cfg)
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	b, err := os.ReadFile(cfg.ReportPath())
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var r Report
	if err := json.Unmarshal(b, &r); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if r.DocumentsProcessed != 2 {
		t.Fatalf("expected 2 loadable documents, got %d", r.DocumentsProcessed)
	}
	if r.TotalWords != 7 || r.UniqueWords != 3 {
		t.Fatalf("unexpected totals: %+v", r)
	}
	if len(r.DocumentSimilarity) != 1 || r.DocumentSimilarity[0].Similarity != 1.0 {
		t.Fatalf("unexpected similarity: %+v", r.DocumentSimilarity)
	}
	if _, err := os.Stat(cfg.ReportPath() + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("expected report temp file to be renamed away")
	}
}
