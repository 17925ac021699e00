package extract

import (
	"os"
	"strings"

	"github.com/fumiama/go-docx"
)

// loadDOCX extracts text paragraph by paragraph, joined by newlines and
// trimmed at the end.
func loadDOCX(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &ExtractionError{Format: "docx", Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", &ExtractionError{Format: "docx", Err: err}
	}

	doc, err := docx.Parse(f, info.Size())
	if err != nil {
		return "", &ExtractionError{Format: "docx", Err: err}
	}

	var paragraphs []string
	for _, item := range doc.Document.Body.Items {
		if p, ok := item.(*docx.Paragraph); ok {
			paragraphs = append(paragraphs, p.String())
		}
	}
	return strings.TrimSpace(strings.Join(paragraphs, "\n")), nil
}
