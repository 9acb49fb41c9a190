package index

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// MemoryIndex is an in-process vector index over profile summaries. It embeds
// entries on insert and queries by cosine similarity.
type MemoryIndex struct {
	mu       sync.RWMutex
	embedder Embedder
	vectors  map[string][]float32
	order    []string
}

var _ Index = (*MemoryIndex)(nil)

// NewMemoryIndex creates an empty in-memory similarity index.
func NewMemoryIndex(embedder Embedder) *MemoryIndex {
	return &MemoryIndex{
		embedder: embedder,
		vectors:  make(map[string][]float32),
	}
}

// Add embeds the given text and indexes it under id, replacing any prior entry.
func (m *MemoryIndex) Add(ctx context.Context, id, text string) error {
	vec, err := m.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("failed to embed entry %s: %w", id, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.vectors[id]; !exists {
		m.order = append(m.order, id)
	}
	m.vectors[id] = vec
	return nil
}

// IDs returns all indexed identifiers in insertion order.
func (m *MemoryIndex) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, len(m.order))
	copy(ids, m.order)
	return ids
}

// Search embeds the query and returns up to k entries ranked by cosine
// similarity. The result may be empty; that is not an error.
func (m *MemoryIndex) Search(ctx context.Context, query string, k int) ([]Hit, error) {
	queryVec, err := m.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	hits := make([]Hit, 0, len(m.order))
	for _, id := range m.order {
		hits = append(hits, Hit{
			ID:    id,
			Score: CosineSimilarity(queryVec, m.vectors[id]),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// CosineSimilarity calculates cosine similarity between two embeddings.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
