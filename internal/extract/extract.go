package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/corpustools/webcorpus/internal/textstats"
)

// Statistics holds the per-document numbers computed from extracted text.
type Statistics struct {
	WordCount      int     `json:"word_count"`
	SentenceCount  int     `json:"sentence_count"`
	ParagraphCount int     `json:"paragraph_count"`
	AvgWordLength  float64 `json:"avg_word_length"`
}

// Record is the persisted result of extracting one raw HTML document. It is
// immutable after creation and consumed read-only by the aggregation stage.
type Record struct {
	SourceFile  string     `json:"source_file"`
	Text        string     `json:"text"`
	Statistics  Statistics `json:"statistics"`
	Links       []string   `json:"links"`
	Images      []string   `json:"images"`
	ProcessedAt time.Time  `json:"processed_at"`
}

var (
	scriptRe = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleRe  = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	hrefRe   = regexp.MustCompile(`(?i)href=['"]?([^'"\s>]+)`)
	srcRe    = regexp.MustCompile(`(?i)src=['"]?([^'"\s>]+)`)
	tagRe    = regexp.MustCompile(`<[^>]+>`)
	spaceRe  = regexp.MustCompile(`\s+`)
	paraRe   = regexp.MustCompile(`\s{2,}`)
)

// FromHTML strips markup from raw HTML and builds the extracted record for
// one source document. Script and style blocks are removed first so their
// contents never reach the text or the link/image lists; remaining tags are
// replaced by a single space and whitespace runs are collapsed. There is no
// structural validation; malformed markup degrades gracefully and never
// produces an error.
func FromHTML(sourceFile string, html string) Record {
	html = scriptRe.ReplaceAllString(html, "")
	html = styleRe.ReplaceAllString(html, "")

	// Links and images are harvested before tags are removed, in document
	// order, duplicates included.
	links := attributeValues(hrefRe, html)
	images := attributeValues(srcRe, html)

	text := tagRe.ReplaceAllString(html, " ")
	text = strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))

	return Record{
		SourceFile:  sourceFile,
		Text:        text,
		Statistics:  Stats(text),
		Links:       links,
		Images:      images,
		ProcessedAt: time.Now().UTC(),
	}
}

func attributeValues(re *regexp.Regexp, html string) []string {
	matches := re.FindAllStringSubmatch(html, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

// Stats computes word, sentence and paragraph counts plus average word
// length for extracted text. When paragraph splitting yields nothing the
// count falls back to max(1, sentences/3), since the collapsed text rarely
// retains paragraph breaks.
func Stats(text string) Statistics {
	words := textstats.Words(text)
	sentences := len(textstats.Sentences(text))

	paragraphs := 0
	for _, p := range paraRe.Split(text, -1) {
		if strings.TrimSpace(p) != "" {
			paragraphs++
		}
	}
	if paragraphs == 0 {
		paragraphs = sentences / 3
		if paragraphs < 1 {
			paragraphs = 1
		}
	}

	avg := 0.0
	if len(words) > 0 {
		avg = textstats.Round(float64(textstats.TotalRuneLength(words))/float64(len(words)), 3)
	}

	return Statistics{
		WordCount:      len(words),
		SentenceCount:  sentences,
		ParagraphCount: paragraphs,
		AvgWordLength:  avg,
	}
}
