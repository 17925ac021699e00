package service

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyUpload rejects uploads whose content is empty or only whitespace.
	ErrEmptyUpload = errors.New("the uploaded document is empty")

	// ErrNoText marks an upload whose parser succeeded but produced no usable text.
	ErrNoText = errors.New("no text could be extracted from the uploaded file")

	ErrIDRequired = errors.New("id is required")
	ErrNotFound   = errors.New("document not found")
	ErrReaderNil  = errors.New("reader is nil")
)

// DependencyError marks a failure of an external collaborator (database,
// object storage, embedding model). Handlers translate it to a 503 and the
// full cause stays in server-side logs only.
type DependencyError struct {
	Op  string
	Err error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("dependency failure during %s: %v", e.Op, e.Err)
}

func (e *DependencyError) Unwrap() error { return e.Err }

func dependencyErr(op string, err error) error {
	return &DependencyError{Op: op, Err: err}
}
