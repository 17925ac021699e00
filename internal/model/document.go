package model

import "time"

// Document represents one distinct uploaded document ever seen by the checker.
// This is a pure domain model with no database-specific dependencies or tags.
// FileHash is the SHA-256 hex digest of the raw bytes and is globally unique:
// re-uploading the same bytes under any filename maps to the same row.
type Document struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	FileHash    string    `json:"file_hash"`
	ArchivePath string    `json:"archive_path,omitempty"`
	UploadedAt  time.Time `json:"uploaded_at"`
}
