// Package corpus provides the reference text all uploads are compared against.
// The corpus is loaded once at startup and is read-only afterwards; there is
// no per-user or per-session variant.
package corpus

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
)

//go:embed corpus.txt
var defaultCorpus string

// Load returns the reference corpus. When path is empty the built-in research
// corpus is used; otherwise the file at path replaces it entirely.
func Load(path string) (string, error) {
	if path == "" {
		return strings.TrimSpace(defaultCorpus), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read corpus file %s: %w", path, err)
	}
	text := strings.TrimSpace(string(b))
	if text == "" {
		return "", fmt.Errorf("corpus file %s is empty", path)
	}
	return text, nil
}
