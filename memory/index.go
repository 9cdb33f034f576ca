package memory

import (
	"context"
	"math"
	"sort"
	"sync"
)

// VectorIndex is the in-process Store implementation: a parallel pair of
// ordered sequences (texts, vectors) with brute-force cosine search. It
// preserves insertion order, so similarity ties resolve to the oldest entry.
type VectorIndex struct {
	mu         sync.RWMutex
	texts      []string
	vectors    [][]float32
	maxEntries int
}

// IndexOption configures a VectorIndex.
type IndexOption func(*VectorIndex)

// WithMaxEntries bounds the index to n entries, evicting the oldest when the
// bound is reached. Zero means unbounded.
func WithMaxEntries(n int) IndexOption {
	return func(idx *VectorIndex) {
		idx.maxEntries = n
	}
}

// NewVectorIndex creates an empty index.
func NewVectorIndex(opts ...IndexOption) *VectorIndex {
	idx := &VectorIndex{}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// Add appends a (text, vector) pair, evicting the oldest pair when a
// capacity bound is configured and reached.
func (idx *VectorIndex) Add(ctx context.Context, text string, embedding []float32) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.maxEntries > 0 && len(idx.texts) >= idx.maxEntries {
		idx.texts = idx.texts[1:]
		idx.vectors = idx.vectors[1:]
	}
	idx.texts = append(idx.texts, text)
	idx.vectors = append(idx.vectors, embedding)
	return nil
}

// Search scores every stored vector against the query embedding and returns
// the topK most similar entries, scores non-increasing, ties in insertion
// order. The index is never mutated by a search.
func (idx *VectorIndex) Search(ctx context.Context, embedding []float32, topK int) ([]Recall, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if topK <= 0 || len(idx.texts) == 0 {
		return nil, nil
	}
	if topK > len(idx.texts) {
		topK = len(idx.texts)
	}

	recalls := make([]Recall, len(idx.texts))
	for i, vec := range idx.vectors {
		recalls[i] = Recall{
			Score: Cosine(embedding, vec),
			Text:  idx.texts[i],
		}
	}
	sort.SliceStable(recalls, func(a, b int) bool {
		return recalls[a].Score > recalls[b].Score
	})
	return recalls[:topK], nil
}

// Len reports the number of stored pairs.
func (idx *VectorIndex) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.texts)
}

// Close is a no-op; the index lives entirely in memory.
func (idx *VectorIndex) Close() error {
	return nil
}

// Cosine computes the cosine similarity dot(a,b)/(||a||*||b||) between two
// vectors. Mismatched lengths or a zero-norm vector score 0.
func Cosine(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
