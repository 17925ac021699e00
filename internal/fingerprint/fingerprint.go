// Package fingerprint computes content fingerprints for uploaded files.
// A fingerprint is the lowercase hex SHA-256 digest of the raw bytes and
// serves as the ledger's deduplication key: identical content always yields
// an identical fingerprint regardless of filename or upload time.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

const chunkSize = 4096

// File computes the SHA-256 fingerprint of the file at path, reading it in
// fixed-size chunks so large uploads are never held in memory twice.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file for hashing: %w", err)
	}
	defer f.Close()

	return Reader(f)
}

// Reader computes the SHA-256 fingerprint of everything read from r.
func Reader(r io.Reader) (string, error) {
	h := sha256.New()
	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(h, r, buf); err != nil {
		return "", fmt.Errorf("hash content: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
