package arxiv

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/corpustools/webcorpus/internal/fetch"
	"github.com/corpustools/webcorpus/internal/textstats"
)

// DefaultBaseURL is the public arXiv Atom API endpoint.
const DefaultBaseURL = "http://export.arxiv.org/api/query"

const (
	retryMax  = 3
	retryWait = 3 * time.Second
)

// The token pattern keeps hyphens so terms like state-of-the-art survive as
// one token for technical-term extraction.
var (
	tokenRe = regexp.MustCompile(`[A-Za-z0-9-]+`)
	upperRe = regexp.MustCompile(`[A-Z]`)
	digitRe = regexp.MustCompile(`\d`)
)

// AbstractStats summarizes one abstract for papers.json.
type AbstractStats struct {
	TotalWords          int     `json:"total_words"`
	UniqueWords         int     `json:"unique_words"`
	TotalSentences      int     `json:"total_sentences"`
	AvgWordsPerSentence float64 `json:"avg_words_per_sentence"`
	AvgWordLength       float64 `json:"avg_word_length"`
}

// Paper is one arXiv entry with its precomputed abstract statistics.
type Paper struct {
	ArxivID       string        `json:"arxiv_id"`
	Title         string        `json:"title"`
	Authors       []string      `json:"authors"`
	Abstract      string        `json:"abstract"`
	Categories    []string      `json:"categories"`
	Published     string        `json:"published"`
	Updated       string        `json:"updated"`
	AbstractStats AbstractStats `json:"abstract_stats"`
}

// Client queries the arXiv Atom API, retrying HTTP 429 with a fixed wait as
// the API's rate-limit guidance asks.
type Client struct {
	BaseURL string
	HTTP    *fetch.Client
}

// Search fetches up to maxResults entries for query and parses the feed.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]Paper, error) {
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	q := url.Values{}
	q.Set("search_query", query)
	q.Set("start", "0")
	q.Set("max_results", fmt.Sprintf("%d", maxResults))
	target := base + "?" + q.Encode()

	var resp fetch.Response
	var err error
	for attempt := 1; attempt <= retryMax; attempt++ {
		resp, err = c.HTTP.Get(ctx, target)
		if err == nil {
			break
		}
		if errors.Is(err, fetch.ErrHTTPStatus) && resp.StatusCode == 429 && attempt < retryMax {
			time.Sleep(retryWait)
			continue
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	return ParseFeed(resp.Body)
}

// ParseFeed decodes an Atom feed. Entries missing any of id, title or
// summary are skipped; invalid XML is an error.
func ParseFeed(xml []byte) ([]Paper, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(xml); err != nil {
		return nil, fmt.Errorf("parse atom feed: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, errors.New("empty atom feed")
	}

	var papers []Paper
	for _, entry := range root.SelectElements("entry") {
		idURL := elementText(entry, "id")
		id := idURL
		if i := strings.LastIndex(idURL, "/"); i >= 0 {
			id = idURL[i+1:]
		}
		title := elementText(entry, "title")
		abstract := elementText(entry, "summary")
		if id == "" || title == "" || abstract == "" {
			continue
		}

		var authors []string
		for _, a := range entry.SelectElements("author") {
			if name := elementText(a, "name"); name != "" {
				authors = append(authors, name)
			}
		}
		var categories []string
		for _, cat := range entry.SelectElements("category") {
			if term := strings.TrimSpace(cat.SelectAttrValue("term", "")); term != "" {
				categories = append(categories, term)
			}
		}

		papers = append(papers, Paper{
			ArxivID:       id,
			Title:         title,
			Authors:       authors,
			Abstract:      abstract,
			Categories:    categories,
			Published:     elementText(entry, "published"),
			Updated:       elementText(entry, "updated"),
			AbstractStats: Stats(abstract),
		})
	}
	return papers, nil
}

func elementText(parent *etree.Element, tag string) string {
	el := parent.SelectElement(tag)
	if el == nil {
		return ""
	}
	return strings.TrimSpace(el.Text())
}

// Tokenize splits text into case-preserving tokens of letters, digits and
// hyphens.
func Tokenize(text string) []string {
	return tokenRe.FindAllString(text, -1)
}

// Stats computes the per-abstract numbers carried in papers.json.
func Stats(abstract string) AbstractStats {
	words := Tokenize(abstract)
	sentences := textstats.Sentences(abstract)

	unique := make(map[string]struct{}, len(words))
	chars := 0
	for _, w := range words {
		unique[strings.ToLower(w)] = struct{}{}
		chars += len(w)
	}
	sentenceWords := 0
	for _, s := range sentences {
		sentenceWords += len(Tokenize(s))
	}

	st := AbstractStats{
		TotalWords:     len(words),
		UniqueWords:    len(unique),
		TotalSentences: len(sentences),
	}
	if len(sentences) > 0 {
		st.AvgWordsPerSentence = textstats.Round(float64(sentenceWords)/float64(len(sentences)), 3)
	}
	if len(words) > 0 {
		st.AvgWordLength = textstats.Round(float64(chars)/float64(len(words)), 3)
	}
	return st
}

// TermFrequency is one ranked corpus term with its document frequency.
type TermFrequency struct {
	Word      string `json:"word"`
	Frequency int    `json:"frequency"`
	Documents int    `json:"documents"`
}

// CorpusStats summarizes abstract lengths across the result set.
type CorpusStats struct {
	TotalAbstracts        int     `json:"total_abstracts"`
	TotalWords            int     `json:"total_words"`
	UniqueWordsGlobal     int     `json:"unique_words_global"`
	AvgAbstractLength     float64 `json:"avg_abstract_length"`
	LongestAbstractWords  int     `json:"longest_abstract_words"`
	ShortestAbstractWords int     `json:"shortest_abstract_words"`
}

// TechnicalTerms groups tokens that look like technology vocabulary.
type TechnicalTerms struct {
	UppercaseTerms  []string `json:"uppercase_terms"`
	NumericTerms    []string `json:"numeric_terms"`
	HyphenatedTerms []string `json:"hyphenated_terms"`
}

// Analysis is the corpus_analysis.json artifact.
type Analysis struct {
	Query                string          `json:"query"`
	PapersProcessed      int             `json:"papers_processed"`
	ProcessingTimestamp  time.Time       `json:"processing_timestamp"`
	CorpusStats          CorpusStats     `json:"corpus_stats"`
	TopWords             []TermFrequency `json:"top_50_words"`
	TechnicalTerms       TechnicalTerms  `json:"technical_terms"`
	CategoryDistribution map[string]int  `json:"category_distribution"`
}

// Analyze computes corpus-wide statistics over the fetched papers:
// stopword-filtered term and document frequencies, technical-term sets and
// category distribution.
func Analyze(query string, papers []Paper, now time.Time) Analysis {
	a := Analysis{
		Query:               query,
		PapersProcessed:     len(papers),
		ProcessingTimestamp: now,
		TopWords:            []TermFrequency{},
		TechnicalTerms: TechnicalTerms{
			UppercaseTerms:  []string{},
			NumericTerms:    []string{},
			HyphenatedTerms: []string{},
		},
		CategoryDistribution: map[string]int{},
	}

	totalWords := 0
	uniqueGlobal := map[string]struct{}{}
	longest, shortest := 0, 0
	var filtered []string
	docFreq := map[string]int{}
	upperSet := map[string]struct{}{}
	numericSet := map[string]struct{}{}
	hyphenSet := map[string]struct{}{}

	for i, p := range papers {
		tokens := Tokenize(p.Abstract)
		totalWords += len(tokens)
		if i == 0 || len(tokens) > longest {
			longest = len(tokens)
		}
		if i == 0 || len(tokens) < shortest {
			shortest = len(tokens)
		}

		docTerms := map[string]struct{}{}
		for _, w := range tokens {
			// Technical-term sets look at every token, stopwords included.
			if upperRe.MatchString(w) {
				upperSet[w] = struct{}{}
			}
			if digitRe.MatchString(w) {
				numericSet[w] = struct{}{}
			}
			if strings.Contains(w, "-") && len(w) > 1 {
				hyphenSet[w] = struct{}{}
			}
			wl := strings.ToLower(w)
			uniqueGlobal[wl] = struct{}{}
			if _, stop := stopwords[wl]; stop {
				continue
			}
			filtered = append(filtered, wl)
			docTerms[wl] = struct{}{}
		}
		for t := range docTerms {
			docFreq[t]++
		}
		for _, c := range p.Categories {
			a.CategoryDistribution[c]++
		}
	}

	a.CorpusStats = CorpusStats{
		TotalAbstracts:        len(papers),
		TotalWords:            totalWords,
		UniqueWordsGlobal:     len(uniqueGlobal),
		LongestAbstractWords:  longest,
		ShortestAbstractWords: shortest,
	}
	if len(papers) > 0 {
		a.CorpusStats.AvgAbstractLength = textstats.Round(float64(totalWords)/float64(len(papers)), 3)
	}

	for _, rc := range rankAlphaTieBreak(filtered, 50) {
		a.TopWords = append(a.TopWords, TermFrequency{Word: rc.Key, Frequency: rc.Count, Documents: docFreq[rc.Key]})
	}
	a.TechnicalTerms.UppercaseTerms = sortedKeys(upperSet)
	a.TechnicalTerms.NumericTerms = sortedKeys(numericSet)
	a.TechnicalTerms.HyphenatedTerms = sortedKeys(hyphenSet)
	return a
}

// rankAlphaTieBreak ranks by count descending with alphabetical tie-break,
// unlike the corpus report's first-seen order.
func rankAlphaTieBreak(items []string, k int) []textstats.RankedCount {
	ranked := textstats.RankByCount(items, 0)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Key < ranked[j].Key
	})
	if k > 0 && len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
