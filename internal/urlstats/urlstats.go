package urlstats

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/corpustools/webcorpus/internal/fetch"
	"github.com/corpustools/webcorpus/internal/textstats"
)

// Result records the outcome of fetching one URL. WordCount is nil for
// non-text responses, Error is nil on success.
type Result struct {
	URL            string    `json:"url"`
	StatusCode     int       `json:"status_code"`
	ResponseTimeMS float64   `json:"response_time_ms"`
	ContentLength  int       `json:"content_length"`
	WordCount      *int      `json:"word_count"`
	Timestamp      time.Time `json:"timestamp"`
	Error          *string   `json:"error"`
}

// Summary aggregates one run over all fetched URLs.
type Summary struct {
	TotalURLs              int            `json:"total_urls"`
	SuccessfulRequests     int            `json:"successful_requests"`
	FailedRequests         int            `json:"failed_requests"`
	AverageResponseTimeMS  float64        `json:"average_response_time_ms"`
	TotalBytesDownloaded   int            `json:"total_bytes_downloaded"`
	StatusCodeDistribution map[string]int `json:"status_code_distribution"`
	ProcessingStart        time.Time      `json:"processing_start"`
	ProcessingEnd          time.Time      `json:"processing_end"`
}

// FetchOne GETs a single URL and converts the outcome into a Result. HTTP
// error statuses are recorded, not fatal; word counts are computed only for
// text content types.
func FetchOne(ctx context.Context, client *fetch.Client, url string) Result {
	start := time.Now()
	resp, err := client.Get(ctx, url)
	res := Result{
		URL:            url,
		StatusCode:     resp.StatusCode,
		ResponseTimeMS: textstats.Round(float64(time.Since(start))/float64(time.Millisecond), 3),
		ContentLength:  len(resp.Body),
		Timestamp:      time.Now().UTC(),
	}
	if err != nil {
		msg := err.Error()
		res.Error = &msg
	}
	if strings.Contains(strings.ToLower(resp.ContentType), "text") {
		wc := len(textstats.Words(string(resp.Body)))
		res.WordCount = &wc
	}
	return res
}

// Summarize folds per-URL results into run totals. Successful means a
// 2xx/3xx status with no transport error.
func Summarize(results []Result, start, end time.Time) Summary {
	s := Summary{
		TotalURLs:              len(results),
		StatusCodeDistribution: map[string]int{},
		ProcessingStart:        start,
		ProcessingEnd:          end,
	}
	totalTime := 0.0
	for _, r := range results {
		if r.Error == nil && r.StatusCode >= 200 && r.StatusCode < 400 {
			s.SuccessfulRequests++
		}
		if r.Error != nil {
			s.FailedRequests++
		}
		totalTime += r.ResponseTimeMS
		s.TotalBytesDownloaded += r.ContentLength
		s.StatusCodeDistribution[strconv.Itoa(r.StatusCode)]++
	}
	if len(results) > 0 {
		s.AverageResponseTimeMS = textstats.Round(totalTime/float64(len(results)), 3)
	}
	return s
}

// Run fetches every URL listed in inputFile (one per line) and writes
// responses.json, summary.json and errors.log into outDir.
func Run(ctx context.Context, client *fetch.Client, inputFile, outDir string) error {
	urls, err := readURLs(inputFile)
	if err != nil {
		return fmt.Errorf("read url list: %w", err)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("mkdir out dir: %w", err)
	}

	start := time.Now().UTC()
	results := make([]Result, 0, len(urls))
	var errLines []string
	for _, u := range urls {
		res := FetchOne(ctx, client, u)
		results = append(results, res)
		if res.Error != nil {
			errLines = append(errLines, fmt.Sprintf("[%s] [%s]: %s", res.Timestamp.Format(time.RFC3339), res.URL, *res.Error))
			log.Warn().Str("url", u).Str("error", *res.Error).Msg("fetch failed")
		} else {
			log.Info().Str("url", u).Int("status", res.StatusCode).Msg("fetched")
		}
	}
	summary := Summarize(results, start, time.Now().UTC())

	if err := writeJSON(filepath.Join(outDir, "responses.json"), results); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(outDir, "summary.json"), summary); err != nil {
		return err
	}
	logBody := ""
	if len(errLines) > 0 {
		logBody = strings.Join(errLines, "\n") + "\n"
	}
	if err := os.WriteFile(filepath.Join(outDir, "errors.log"), []byte(logBody), 0o644); err != nil {
		return fmt.Errorf("write errors.log: %w", err)
	}
	return nil
}

func readURLs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var urls []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			urls = append(urls, line)
		}
	}
	return urls, sc.Err()
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
