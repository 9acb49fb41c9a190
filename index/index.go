package index

import (
	"context"
)

// Hit is one similarity-index result. Score is in [0, 1], higher is closer.
type Hit struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// Index ranks indexed profile identifiers by semantic closeness to a query.
// An empty result set is a valid response, not an error.
type Index interface {
	Search(ctx context.Context, query string, k int) ([]Hit, error)
}

// Embedder turns text into a vector in some embedding space.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
