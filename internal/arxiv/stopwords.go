package arxiv

// stopwords are excluded from term-frequency rankings (not from the
// technical-term sets, which inspect raw tokens).
var stopwords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"the", "a", "an", "and", "or", "but", "in", "on", "at", "to", "for", "of",
		"with", "by", "from", "up", "about", "into", "through", "during", "is", "are",
		"was", "were", "be", "been", "being", "have", "has", "had", "do", "does", "did",
		"will", "would", "could", "should", "may", "might", "can", "this", "that",
		"these", "those", "i", "you", "he", "she", "it", "we", "they", "what", "which",
		"who", "when", "where", "why", "how", "all", "each", "every", "both", "few",
		"more", "most", "other", "some", "such", "as", "also", "very", "too", "only",
		"so", "than", "not",
	} {
		stopwords[w] = struct{}{}
	}
}
