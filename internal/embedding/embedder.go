// Package embedding provides access to the external text-embedding model.
// The model is an opaque collaborator: given text it returns a fixed-length
// dense vector. One client is constructed at startup and shared process-wide;
// it is safe for concurrent use.
package embedding

import "context"

// Embedder converts free text into a numeric vector representation.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(ctx context.Context, text string) ([]float64, error)
}
