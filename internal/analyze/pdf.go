package analyze

import (
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// writeReportPDF renders a short human-readable summary of the corpus
// report alongside the JSON artifact.
func writeReportPDF(r Report, outPath string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.AddPage()

	heading := func(text string) {
		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(0, 8, text, "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
	}
	line := func(format string, args ...any) {
		pdf.MultiCell(0, 5, fmt.Sprintf(format, args...), "", "L", false)
	}

	heading("Corpus analysis report")
	line("Generated: %s", r.ProcessingTimestamp.Format(time.RFC3339))
	line("Documents processed: %d", r.DocumentsProcessed)
	line("Total words: %d", r.TotalWords)
	line("Unique words: %d", r.UniqueWords)
	pdf.Ln(4)

	heading("Top words")
	limit := len(r.TopWords)
	if limit > 20 {
		limit = 20
	}
	for _, wf := range r.TopWords[:limit] {
		line("%s - %d (%.6f)", wf.Word, wf.Count, wf.Frequency)
	}
	pdf.Ln(4)

	heading("Readability")
	line("Average sentence length: %.6f", r.Readability.AvgSentenceLength)
	line("Average word length: %.6f", r.Readability.AvgWordLength)
	line("Complexity score: %.6f", r.Readability.ComplexityScore)

	return pdf.OutputFileAndClose(outPath)
}
