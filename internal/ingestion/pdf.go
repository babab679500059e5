package ingestion

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDF returns the text layer of a PDF, one line per text row
func extractPDF(content []byte) (text string, pages int, err error) {
	// the parser panics on some malformed files
	defer func() {
		if r := recover(); r != nil {
			text, pages, err = "", 0, fmt.Errorf("failed to parse PDF: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", 0, fmt.Errorf("failed to open PDF: %w", err)
	}

	var b strings.Builder
	pages = r.NumPage()
	for i := 1; i <= pages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return "", 0, fmt.Errorf("failed to read PDF page %d: %w", i, err)
		}
		for _, row := range rows {
			b.WriteString(joinRow(row.Content))
			b.WriteByte('\n')
		}
		b.WriteString("\n")
	}
	return b.String(), pages, nil
}

// joinRow concatenates the fragments of a row, inserting a space where fragments are visibly apart
func joinRow(words pdf.TextHorizontal) string {
	var b strings.Builder
	for i, w := range words {
		if i > 0 {
			prev := words[i-1]
			gap := w.X - (prev.X + prev.W)
			if gap > prev.FontSize*0.15 && !strings.HasSuffix(prev.S, " ") && !strings.HasPrefix(w.S, " ") {
				b.WriteByte(' ')
			}
		}
		b.WriteString(w.S)
	}
	return b.String()
}
