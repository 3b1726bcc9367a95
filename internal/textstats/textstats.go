package textstats

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

var (
	wordRe     = regexp.MustCompile(`[\p{L}\p{N}_]+`)
	sentenceRe = regexp.MustCompile(`[.!?]+`)
)

// Words returns maximal runs of word characters (letters, digits,
// underscore) in original case and document order.
func Words(text string) []string {
	return wordRe.FindAllString(text, -1)
}

// Tokenize returns the words of text lowercased, for corpus accumulation.
func Tokenize(text string) []string {
	words := Words(text)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return words
}

// Sentences splits text on runs of '.', '!' and '?' and drops segments that
// are empty after trimming.
func Sentences(text string) []string {
	parts := sentenceRe.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

// NGrams returns every contiguous n-gram of words joined by a single space.
// Fewer than n words yields an empty slice.
func NGrams(words []string, n int) []string {
	if n <= 0 || len(words) < n {
		return nil
	}
	out := make([]string, 0, len(words)-n+1)
	for i := 0; i+n <= len(words); i++ {
		out = append(out, strings.Join(words[i:i+n], " "))
	}
	return out
}

// Jaccard computes |A∩B| / |A∪B| over the distinct-token sets of the two
// token lists. Two empty sets yield 0.
func Jaccard(a, b []string) float64 {
	setA := make(map[string]struct{}, len(a))
	for _, w := range a {
		setA[w] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, w := range b {
		setB[w] = struct{}{}
	}
	inter := 0
	for w := range setA {
		if _, ok := setB[w]; ok {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// RankedCount is one entry of a frequency ranking.
type RankedCount struct {
	Key   string
	Count int
}

// RankByCount ranks distinct items by occurrence count descending. Ties keep
// the order in which an item was first seen while accumulating, which is
// observable in the output and must not fall back to map iteration order.
// k caps the result length; k <= 0 means no cap.
func RankByCount(items []string, k int) []RankedCount {
	counts := make(map[string]int, len(items))
	order := make([]string, 0, len(items))
	for _, it := range items {
		if counts[it] == 0 {
			order = append(order, it)
		}
		counts[it]++
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if k > 0 && len(order) > k {
		order = order[:k]
	}
	out := make([]RankedCount, 0, len(order))
	for _, key := range order {
		out = append(out, RankedCount{Key: key, Count: counts[key]})
	}
	return out
}

// TotalRuneLength sums the character length of all words.
func TotalRuneLength(words []string) int {
	total := 0
	for _, w := range words {
		total += utf8.RuneCountInString(w)
	}
	return total
}

// Round rounds x to the given number of decimal places, the half-away-from-
// zero rounding used in the report artifacts.
func Round(x float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(x*pow) / pow
}
