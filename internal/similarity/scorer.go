// Package similarity turns two texts into a single comparable score using the
// embedding collaborator.
package similarity

import (
	"context"
	"fmt"
	"math"
	"strings"

	"plagcheck/internal/embedding"
)

// Scorer computes a similarity score in [0, 100] between two texts.
type Scorer interface {
	Score(ctx context.Context, textA, textB string) (float64, error)
}

// EmbeddingScorer scores texts by cosine similarity of their embeddings,
// scaled to 0-100 and rounded to two decimal places. Blank input on either
// side short-circuits to 0.0 without calling the embedder.
type EmbeddingScorer struct {
	embedder embedding.Embedder
}

func NewEmbeddingScorer(e embedding.Embedder) *EmbeddingScorer {
	return &EmbeddingScorer{embedder: e}
}

var _ Scorer = (*EmbeddingScorer)(nil)

// Score returns the cosine similarity of the two texts as a percentage.
// Scores are never cached: every call re-embeds both inputs.
func (s *EmbeddingScorer) Score(ctx context.Context, textA, textB string) (float64, error) {
	if strings.TrimSpace(textA) == "" || strings.TrimSpace(textB) == "" {
		return 0.0, nil
	}

	va, err := s.embedder.Embed(ctx, textA)
	if err != nil {
		return 0, fmt.Errorf("embed first text: %w", err)
	}
	vb, err := s.embedder.Embed(ctx, textB)
	if err != nil {
		return 0, fmt.Errorf("embed second text: %w", err)
	}

	cos, err := cosine(va, vb)
	if err != nil {
		return 0, err
	}
	return round2(cos * 100), nil
}

// cosine computes the normalized dot product of two equal-length vectors.
func cosine(a, b []float64) (float64, error) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, fmt.Errorf("embedding dimension mismatch: %d vs %d", len(a), len(b))
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
