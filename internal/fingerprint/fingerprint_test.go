package fingerprint

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFile_Deterministic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.bin")
	require.NoError(t, os.WriteFile(path, []byte("hello world"), 0o600))

	first, err := File(path)
	require.NoError(t, err)
	second, err := File(path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	// Known SHA-256 of "hello world"
	assert.Equal(t, "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9", first)
	assert.Equal(t, strings.ToLower(first), first)
}

func TestFile_IndependentOfFilename(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.pdf")
	b := filepath.Join(dir, "b.docx")
	content := []byte("identical bytes under different names")
	require.NoError(t, os.WriteFile(a, content, 0o600))
	require.NoError(t, os.WriteFile(b, content, 0o600))

	ha, err := File(a)
	require.NoError(t, err)
	hb, err := File(b)
	require.NoError(t, err)

	assert.Equal(t, ha, hb)
}

func TestFile_Missing(t *testing.T) {
	_, err := File(filepath.Join(t.TempDir(), "nope.pdf"))
	assert.Error(t, err)
}

func TestReader(t *testing.T) {
	h, err := Reader(strings.NewReader("hello world"))
	require.NoError(t, err)
	assert.Equal(t, "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9", h)

	// Content larger than one chunk hashes the same as the stdlib one-shot digest.
	big := strings.Repeat("x", chunkSize*3+17)
	h1, err := Reader(strings.NewReader(big))
	require.NoError(t, err)
	h2, err := Reader(strings.NewReader(big))
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}
