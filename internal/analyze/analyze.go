package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/corpustools/webcorpus/internal/config"
	"github.com/corpustools/webcorpus/internal/marker"
	"github.com/corpustools/webcorpus/internal/store"
	"github.com/corpustools/webcorpus/internal/textstats"
)

const (
	topWordLimit  = 100
	topNGramLimit = 50
)

// WordFrequency is one entry of the ranked word list.
type WordFrequency struct {
	Word      string  `json:"word"`
	Count     int     `json:"count"`
	Frequency float64 `json:"frequency"`
}

// SimilarityPair is the Jaccard similarity of one unordered document pair.
type SimilarityPair struct {
	Doc1       string  `json:"doc1"`
	Doc2       string  `json:"doc2"`
	Similarity float64 `json:"similarity"`
}

// BigramCount and TrigramCount are ranked n-gram entries. They carry
// distinct JSON keys to match the report schema.
type BigramCount struct {
	Bigram string `json:"bigram"`
	Count  int    `json:"count"`
}

type TrigramCount struct {
	Trigram string `json:"trigram"`
	Count   int    `json:"count"`
}

// Readability holds the corpus-level readability proxies. When the corpus
// has no sentences, AvgSentenceLength degenerates to the total word count.
type Readability struct {
	AvgSentenceLength float64 `json:"avg_sentence_length"`
	AvgWordLength     float64 `json:"avg_word_length"`
	ComplexityScore   float64 `json:"complexity_score"`
}

// Report is the final corpus analytics artifact, created exactly once per
// aggregator run from the records visible at read time.
type Report struct {
	ProcessingTimestamp time.Time        `json:"processing_timestamp"`
	DocumentsProcessed  int              `json:"documents_processed"`
	TotalWords          int              `json:"total_words"`
	UniqueWords         int              `json:"unique_words"`
	TopWords            []WordFrequency  `json:"top_100_words"`
	DocumentSimilarity  []SimilarityPair `json:"document_similarity"`
	TopBigrams          []BigramCount    `json:"top_bigrams"`
	TopTrigrams         []TrigramCount   `json:"top_trigrams"`
	Readability         Readability      `json:"readability"`
}

type document struct {
	name  string
	words []string
}

// Corpus accumulates tokenized documents and corpus-wide counters. Add the
// documents in load order; ranking tie-breaks depend on it.
type Corpus struct {
	docs      []document
	words     []string
	bigrams   []string
	trigrams  []string
	wordChars int
	sentences int
}

// Add tokenizes one record's text and folds it into the corpus totals.
func (c *Corpus) Add(name, text string) {
	words := textstats.Tokenize(text)
	c.docs = append(c.docs, document{name: name, words: words})
	c.words = append(c.words, words...)
	c.bigrams = append(c.bigrams, textstats.NGrams(words, 2)...)
	c.trigrams = append(c.trigrams, textstats.NGrams(words, 3)...)
	c.wordChars += textstats.TotalRuneLength(words)
	c.sentences += len(textstats.Sentences(text))
}

// Len returns the number of documents added.
func (c *Corpus) Len() int { return len(c.docs) }

// Report computes the full corpus analytics. An empty corpus (zero tokens)
// short-circuits to a well-formed zero report with empty lists.
func (c *Corpus) Report(now time.Time) Report {
	r := Report{
		ProcessingTimestamp: now,
		DocumentsProcessed:  len(c.docs),
		TopWords:            []WordFrequency{},
		DocumentSimilarity:  []SimilarityPair{},
		TopBigrams:          []BigramCount{},
		TopTrigrams:         []TrigramCount{},
	}
	totalWords := len(c.words)
	if totalWords == 0 {
		return r
	}

	r.TotalWords = totalWords
	r.UniqueWords = countDistinct(c.words)

	for _, rc := range textstats.RankByCount(c.words, topWordLimit) {
		r.TopWords = append(r.TopWords, WordFrequency{
			Word:      rc.Key,
			Count:     rc.Count,
			Frequency: textstats.Round(float64(rc.Count)/float64(totalWords), 6),
		})
	}

	// All C(n,2) pairs, no sampling.
	for i := 0; i < len(c.docs); i++ {
		for j := i + 1; j < len(c.docs); j++ {
			r.DocumentSimilarity = append(r.DocumentSimilarity, SimilarityPair{
				Doc1:       c.docs[i].name,
				Doc2:       c.docs[j].name,
				Similarity: textstats.Round(textstats.Jaccard(c.docs[i].words, c.docs[j].words), 6),
			})
		}
	}

	for _, rc := range textstats.RankByCount(c.bigrams, topNGramLimit) {
		r.TopBigrams = append(r.TopBigrams, BigramCount{Bigram: rc.Key, Count: rc.Count})
	}
	for _, rc := range textstats.RankByCount(c.trigrams, topNGramLimit) {
		r.TopTrigrams = append(r.TopTrigrams, TrigramCount{Trigram: rc.Key, Count: rc.Count})
	}

	avgSentenceLen := float64(totalWords)
	if c.sentences > 0 {
		avgSentenceLen = float64(totalWords) / float64(c.sentences)
	}
	avgWordLen := float64(c.wordChars) / float64(totalWords)
	r.Readability = Readability{
		AvgSentenceLength: textstats.Round(avgSentenceLen, 6),
		AvgWordLength:     textstats.Round(avgWordLen, 6),
		ComplexityScore:   textstats.Round(avgSentenceLen*avgWordLen, 6),
	}
	return r
}

func countDistinct(words []string) int {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return len(set)
}

// Aggregator runs the aggregation stage: wait for the extraction marker,
// load every record, compute the corpus report, persist it. One-shot.
type Aggregator struct {
	Cfg   config.Config
	Store *store.RecordStore
}

func New(cfg config.Config) *Aggregator {
	return &Aggregator{Cfg: cfg, Store: &store.RecordStore{Dir: cfg.ProcessedDir}}
}

// Run executes the stage. A record that cannot be parsed is logged and
// skipped; it is not counted as processed and does not abort the run.
func (a *Aggregator) Run(ctx context.Context) error {
	log.Info().Msg("analyzer starting")

	if err := marker.Wait(ctx, a.Cfg.ProcessMarkerPath(), a.Cfg.PollInterval); err != nil {
		return fmt.Errorf("wait for process marker: %w", err)
	}

	names, err := a.Store.List()
	if err != nil {
		return fmt.Errorf("list records: %w", err)
	}
	log.Info().Int("count", len(names)).Msg("found processed records")

	var corpus Corpus
	for _, name := range names {
		rec, err := a.Store.Load(name)
		if err != nil {
			log.Warn().Err(err).Str("file", name).Msg("skipping unreadable record")
			continue
		}
		corpus.Add(name, rec.Text)
	}

	report := corpus.Report(time.Now().UTC())
	if err := writeReport(a.Cfg.ReportPath(), report); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if a.Cfg.ReportPDFPath != "" {
		if err := writeReportPDF(report, a.Cfg.ReportPDFPath); err != nil {
			log.Warn().Err(err).Msg("pdf rendering failed")
		}
	}
	log.Info().
		Int("documents", report.DocumentsProcessed).
		Int("totalWords", report.TotalWords).
		Msg("analyzer complete")
	return nil
}

func writeReport(path string, r Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir analysis dir: %w", err)
	}
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return os.Rename(tmp, path)
}
