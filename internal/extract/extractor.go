package extract

// Extractor defines a minimal interface for document extraction strategies.
// Implementations can swap stripping tactics without changing the driver.
type Extractor interface {
	// Extract converts one raw HTML document into its extracted record.
	// Implementations should be deterministic apart from the timestamp and
	// avoid side effects.
	Extract(sourceFile string, html string) Record
}

// RegexExtractor uses the FromHTML function: regex-based tag stripping with
// script/style removal and link/image harvesting.
type RegexExtractor struct{}

func (RegexExtractor) Extract(sourceFile string, html string) Record {
	return FromHTML(sourceFile, html)
}
