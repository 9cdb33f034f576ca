// Package chromem backs semantic memory with chromem-go, a pure Go embedded
// vector database.
package chromem

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"

	"github.com/cartlane/copilot-go-sdk/memory"
)

// Store implements memory.Store on a chromem-go collection. One Store maps
// to one conversation's semantic memory.
//
// chromem orders results by similarity but does not promise insertion-order
// tie-breaking; callers that need the strict tie rule should use
// memory.VectorIndex.
type Store struct {
	db  *chromem.DB
	col *chromem.Collection
}

// New creates a store over a fresh in-memory chromem collection. An empty
// name becomes "session".
func New(name string) (*Store, error) {
	if name == "" {
		name = "session"
	}
	db := chromem.NewDB()

	// We supply embeddings ourselves and keep chromem's default cosine
	// distance.
	col, err := db.CreateCollection(name, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	return &Store{db: db, col: col}, nil
}

// Add appends a text with its embedding.
func (s *Store) Add(ctx context.Context, text string, embedding []float32) error {
	doc := chromem.Document{
		ID:        uuid.New().String(),
		Content:   text,
		Embedding: embedding,
	}
	if err := s.col.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("add document: %w", err)
	}
	return nil
}

// Search queries the collection by embedding, retrying with smaller limits
// because chromem requires nResults <= collection size.
func (s *Store) Search(ctx context.Context, embedding []float32, topK int) ([]memory.Recall, error) {
	if topK <= 0 {
		return nil, nil
	}
	if size := s.col.Count(); topK > size {
		topK = size
	}
	if topK == 0 {
		return nil, nil
	}

	var results []chromem.Result
	for limit := topK; limit >= 1; limit-- {
		var err error
		results, err = s.col.QueryEmbedding(ctx, embedding, limit, nil, nil)
		if err == nil {
			break
		}
		if isInsufficientDocsError(err) {
			if limit == 1 {
				log.Printf("[CHROMEM] Collection is empty")
				return nil, nil
			}
			continue
		}
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	recalls := make([]memory.Recall, 0, len(results))
	for _, result := range results {
		recalls = append(recalls, memory.Recall{
			Score: result.Similarity,
			Text:  result.Content,
		})
	}
	return recalls, nil
}

// Len reports the number of stored documents.
func (s *Store) Len() int {
	return s.col.Count()
}

// Close releases resources. chromem keeps everything in memory, nothing to
// release.
func (s *Store) Close() error {
	return nil
}

// isInsufficientDocsError checks if an error is due to requesting more
// results than the collection holds.
func isInsufficientDocsError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "nResults must be") || strings.Contains(msg, "number of documents")
}
