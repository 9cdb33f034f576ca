package memory

import (
	"context"
	"errors"
)

// ErrInvalidEmbedding is returned when an embedder produces a vector that is
// nil, has the wrong dimension, or contains non-finite values. Callers treat
// it as "drop the item", never as a fatal condition.
var ErrInvalidEmbedding = errors.New("invalid embedding vector")

// Embedder converts text to vector embeddings.
// Implementations: mock.Embedder (testing), onnx.Embedder (local SDK),
// cached.Embedder (ristretto decorator around either).
//
// Embeddings must be deterministic for identical text and model version.
type Embedder interface {
	// Embed converts a single text to an embedding vector.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int
}

// Recall is a single semantic-search hit: a previously stored utterance and
// its cosine similarity to the query, in [-1, 1].
type Recall struct {
	Score float32
	Text  string
}

// Store is the vector storage backend interface behind SemanticStore.
// Implementations: VectorIndex (in-process reference implementation),
// chromem.Store (embedded vector database).
type Store interface {
	// Add appends a text with its already-validated embedding.
	Add(ctx context.Context, text string, embedding []float32) error

	// Search returns up to topK stored entries by descending cosine
	// similarity to the query embedding. topK is clamped to the store
	// size; an empty store yields an empty result, not an error.
	Search(ctx context.Context, embedding []float32, topK int) ([]Recall, error)

	// Len reports the number of stored entries.
	Len() int

	// Close releases resources.
	Close() error
}
