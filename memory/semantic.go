package memory

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
)

// SemanticStore embeds utterances and recalls the most semantically similar
// ones. Text is only ever stored together with a validated embedding; an
// utterance whose embedding fails or comes back malformed is dropped.
type SemanticStore struct {
	embedder Embedder
	backend  Store
	dims     int
}

// NewSemanticStore creates a store over the given embedder and backend.
// A nil backend gets an unbounded VectorIndex. dims <= 0 falls back to the
// embedder's reported dimensions.
func NewSemanticStore(embedder Embedder, backend Store, dims int) *SemanticStore {
	if backend == nil {
		backend = NewVectorIndex()
	}
	if dims <= 0 {
		dims = embedder.Dimensions()
	}
	return &SemanticStore{
		embedder: embedder,
		backend:  backend,
		dims:     dims,
	}
}

// Add embeds text and appends it to the backend. Empty or whitespace-only
// text is a silent no-op. Embedding failures and malformed vectors return an
// error for the caller to log; the text is never stored without a valid
// vector.
func (s *SemanticStore) Add(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embed text: %w", err)
	}
	if err := s.validate(embedding); err != nil {
		return err
	}
	if err := s.backend.Add(ctx, text, embedding); err != nil {
		return fmt.Errorf("store embedding: %w", err)
	}
	return nil
}

// Search returns the topK stored utterances most similar to query, scores
// non-increasing. An empty query or empty store yields an empty result.
// The store is never mutated by a search.
func (s *SemanticStore) Search(ctx context.Context, query string, topK int) ([]Recall, error) {
	query = strings.TrimSpace(query)
	if query == "" || topK <= 0 || s.backend.Len() == 0 {
		return nil, nil
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if err := s.validate(embedding); err != nil {
		return nil, err
	}

	recalls, err := s.backend.Search(ctx, embedding, topK)
	if err != nil {
		return nil, fmt.Errorf("search backend: %w", err)
	}
	log.Printf("[MEMORY] Recalled %d entries for query: %q", len(recalls), truncateLog(query, 50))
	return recalls, nil
}

// Len reports the number of stored utterances.
func (s *SemanticStore) Len() int {
	return s.backend.Len()
}

// Close releases the backend.
func (s *SemanticStore) Close() error {
	return s.backend.Close()
}

// validate checks that an embedding is a one-dimensional vector of exactly
// the expected size with finite values.
func (s *SemanticStore) validate(embedding []float32) error {
	if len(embedding) != s.dims {
		return fmt.Errorf("%w: got %d dimensions, want %d", ErrInvalidEmbedding, len(embedding), s.dims)
	}
	for _, v := range embedding {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return fmt.Errorf("%w: non-finite value", ErrInvalidEmbedding)
		}
	}
	return nil
}

// truncateLog truncates text for logging.
func truncateLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
