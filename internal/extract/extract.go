// Package extract converts uploaded documents into plain text.
// Dispatch is by file extension only (case-insensitive); content sniffing is
// deliberately not performed. A file whose extension passes but whose body the
// parser cannot read fails with *ExtractionError, which is distinct from the
// non-error outcome of extraction producing empty text.
package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned when the extension is neither .pdf nor .docx.
var ErrUnsupportedFormat = errors.New("unsupported file format: supported formats are .pdf, .docx")

// ExtractionError wraps a parser failure for a file whose extension was accepted.
type ExtractionError struct {
	Format string
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("error extracting text from %s file: %v", e.Format, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Extractor turns a staged file into a plain-text string.
type Extractor interface {
	Extract(path string) (string, error)
}

// FormatExtractor dispatches to a per-format parser based on the extension of path.
type FormatExtractor struct{}

func New() *FormatExtractor { return &FormatExtractor{} }

var _ Extractor = (*FormatExtractor)(nil)

// Extract returns the plain text of the file at path.
// Fails with ErrUnsupportedFormat for unknown extensions and with
// *ExtractionError when the format parser rejects the file.
func (x *FormatExtractor) Extract(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return loadPDF(path)
	case ".docx":
		return loadDOCX(path)
	default:
		return "", ErrUnsupportedFormat
	}
}

// SupportedExtension reports whether name carries an extension this extractor handles.
func SupportedExtension(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf", ".docx":
		return true
	}
	return false
}
