package arxiv

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// runLog accumulates timestamped lines for processing.log, mirroring the
// console output so the artifact directory is self-contained.
type runLog struct {
	lines []string
}

func (l *runLog) add(format string, args ...any) {
	l.lines = append(l.lines, fmt.Sprintf("[%s] %s", time.Now().UTC().Format(time.RFC3339), fmt.Sprintf(format, args...)))
}

func (l *runLog) write(path string) error {
	body := ""
	if len(l.lines) > 0 {
		body = strings.Join(l.lines, "\n") + "\n"
	}
	return os.WriteFile(path, []byte(body), 0o644)
}

// Run queries arXiv and writes papers.json, corpus_analysis.json and
// processing.log into outDir. An HTTP failure after retries degrades to an
// empty result set; only a network-level error is fatal, and even then the
// log artifact is still written.
func Run(ctx context.Context, client *Client, query string, maxResults int, outDir string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("mkdir out dir: %w", err)
	}
	var rl runLog
	start := time.Now()
	rl.add("Starting arXiv query: %s", query)

	papers, err := client.Search(ctx, query, maxResults)
	if err != nil {
		rl.add("Query failed: %s", err)
		_ = rl.write(filepath.Join(outDir, "processing.log"))
		return fmt.Errorf("arxiv query: %w", err)
	}
	rl.add("Fetched %d results from arXiv API", len(papers))
	for _, p := range papers {
		rl.add("Processing paper: %s", p.ArxivID)
	}

	analysis := Analyze(query, papers, time.Now().UTC())

	if papers == nil {
		papers = []Paper{}
	}
	if err := writeJSON(filepath.Join(outDir, "papers.json"), papers); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(outDir, "corpus_analysis.json"), analysis); err != nil {
		return err
	}
	rl.add("Completed processing: %d papers in %.2f seconds", len(papers), time.Since(start).Seconds())
	if err := rl.write(filepath.Join(outDir, "processing.log")); err != nil {
		return fmt.Errorf("write processing.log: %w", err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
