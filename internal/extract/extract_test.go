package extract

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}

func TestExtract_UnsupportedFormat(t *testing.T) {
	x := New()

	for _, name := range []string{"essay.txt", "essay", "essay.pdf.exe"} {
		_, err := x.Extract(writeFile(t, name, []byte("whatever")))
		assert.ErrorIs(t, err, ErrUnsupportedFormat, name)
	}
}

func TestExtract_ExtensionCaseInsensitive(t *testing.T) {
	x := New()

	// Uppercase extension dispatches to the pdf parser; the garbage body then
	// fails as an extraction error, not an unsupported format.
	_, err := x.Extract(writeFile(t, "ESSAY.PDF", []byte("not a pdf")))
	var exErr *ExtractionError
	assert.ErrorAs(t, err, &exErr)
	assert.Equal(t, "pdf", exErr.Format)
}

func TestExtract_CorruptPDF(t *testing.T) {
	x := New()

	_, err := x.Extract(writeFile(t, "broken.pdf", []byte("%PDF-1.4 truncated garbage")))
	var exErr *ExtractionError
	require.ErrorAs(t, err, &exErr)
	assert.Equal(t, "pdf", exErr.Format)
	assert.False(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestExtract_CorruptDOCX(t *testing.T) {
	x := New()

	// Truncated zip: valid magic bytes, nothing else.
	_, err := x.Extract(writeFile(t, "broken.docx", []byte{'P', 'K', 0x03, 0x04, 0x00}))
	var exErr *ExtractionError
	require.ErrorAs(t, err, &exErr)
	assert.Equal(t, "docx", exErr.Format)
}

func TestExtract_DOCXWithoutDocumentPart(t *testing.T) {
	x := New()

	// A well-formed zip that is not a DOCX (no word/document.xml) must fail as
	// an extraction error rather than succeed with empty text.
	path := filepath.Join(t.TempDir(), "fake.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("unrelated.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	_, err = x.Extract(path)
	assert.Error(t, err)
}

func TestSupportedExtension(t *testing.T) {
	assert.True(t, SupportedExtension("a.pdf"))
	assert.True(t, SupportedExtension("a.DOCX"))
	assert.False(t, SupportedExtension("a.txt"))
	assert.False(t, SupportedExtension("pdf"))
}

func TestExtractionError_Unwrap(t *testing.T) {
	cause := errors.New("parser exploded")
	err := &ExtractionError{Format: "pdf", Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "pdf")
}
