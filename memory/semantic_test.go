package memory_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/cartlane/copilot-go-sdk/memory"
)

// stubEmbedder returns fixed vectors per text so similarity ordering is
// fully controlled by the test.
type stubEmbedder struct {
	dims    int
	vectors map[string][]float32
	err     error
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	if vec, ok := s.vectors[text]; ok {
		return vec, nil
	}
	return nil, fmt.Errorf("no stub vector for %q", text)
}

func (s *stubEmbedder) Dimensions() int {
	return s.dims
}

func unit(vec []float32) []float32 {
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(float64(v) / norm)
	}
	return out
}

func newStub() *stubEmbedder {
	return &stubEmbedder{
		dims: 3,
		vectors: map[string][]float32{
			"red dress":    unit([]float32{1, 0, 0}),
			"formal shoes": unit([]float32{0, 1, 0}),
			"red frock":    unit([]float32{0.9, 0.1, 0}),
		},
	}
}

func newStore(embedder memory.Embedder) *memory.SemanticStore {
	return memory.NewSemanticStore(embedder, memory.NewVectorIndex(), embedder.Dimensions())
}

func TestSemanticStore_AddAndSearch(t *testing.T) {
	ctx := context.Background()
	store := newStore(newStub())

	for _, text := range []string{"red dress", "formal shoes"} {
		if err := store.Add(ctx, text); err != nil {
			t.Fatalf("Add(%q): %v", text, err)
		}
	}
	if store.Len() != 2 {
		t.Fatalf("store size = %d, want 2", store.Len())
	}

	recalls, err := store.Search(ctx, "red frock", 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(recalls) != 1 {
		t.Fatalf("got %d recalls, want 1", len(recalls))
	}
	if recalls[0].Text != "red dress" {
		t.Errorf("top recall = %q, want %q", recalls[0].Text, "red dress")
	}
}

func TestSemanticStore_SelfSimilarityIsMax(t *testing.T) {
	ctx := context.Background()
	store := newStore(newStub())

	for _, text := range []string{"red dress", "formal shoes", "red frock"} {
		if err := store.Add(ctx, text); err != nil {
			t.Fatalf("Add(%q): %v", text, err)
		}
	}

	recalls, err := store.Search(ctx, "red dress", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if recalls[0].Text != "red dress" {
		t.Fatalf("top recall = %q, want the query's own entry", recalls[0].Text)
	}
	if math.Abs(float64(recalls[0].Score)-1.0) > 1e-4 {
		t.Errorf("self similarity = %v, want 1.0 within 1e-4", recalls[0].Score)
	}
}

func TestSemanticStore_ScoresNonIncreasing(t *testing.T) {
	ctx := context.Background()
	store := newStore(newStub())

	for _, text := range []string{"formal shoes", "red dress", "red frock"} {
		if err := store.Add(ctx, text); err != nil {
			t.Fatalf("Add(%q): %v", text, err)
		}
	}

	recalls, err := store.Search(ctx, "red dress", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for i := 1; i < len(recalls); i++ {
		if recalls[i].Score > recalls[i-1].Score {
			t.Errorf("scores increase at %d: %v then %v", i, recalls[i-1].Score, recalls[i].Score)
		}
	}
}

func TestSemanticStore_TopKClampedToSize(t *testing.T) {
	ctx := context.Background()
	store := newStore(newStub())

	if err := store.Add(ctx, "red dress"); err != nil {
		t.Fatalf("Add: %v", err)
	}

	recalls, err := store.Search(ctx, "red frock", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(recalls) != 1 {
		t.Errorf("got %d recalls, want clamp to store size 1", len(recalls))
	}
}

func TestSemanticStore_EmptyQueryAndEmptyStore(t *testing.T) {
	ctx := context.Background()
	store := newStore(newStub())

	recalls, err := store.Search(ctx, "red dress", 2)
	if err != nil || recalls != nil {
		t.Errorf("empty store: got (%v, %v), want (nil, nil)", recalls, err)
	}

	if err := store.Add(ctx, "red dress"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	recalls, err = store.Search(ctx, "   ", 2)
	if err != nil || recalls != nil {
		t.Errorf("blank query: got (%v, %v), want (nil, nil)", recalls, err)
	}
}

func TestSemanticStore_BlankAddIsNoOp(t *testing.T) {
	ctx := context.Background()
	store := newStore(newStub())

	if err := store.Add(ctx, "  \t "); err != nil {
		t.Fatalf("blank Add should be a silent no-op, got %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("store size = %d, want 0", store.Len())
	}
}

func TestSemanticStore_InvalidEmbeddingDropped(t *testing.T) {
	ctx := context.Background()
	embedder := &stubEmbedder{
		dims: 3,
		vectors: map[string][]float32{
			"wrong dims": {1, 0},
			"has nan":    {1, float32(math.NaN()), 0},
		},
	}
	store := newStore(embedder)

	for _, text := range []string{"wrong dims", "has nan"} {
		err := store.Add(ctx, text)
		if !errors.Is(err, memory.ErrInvalidEmbedding) {
			t.Errorf("Add(%q) = %v, want ErrInvalidEmbedding", text, err)
		}
	}
	if store.Len() != 0 {
		t.Errorf("store size = %d, invalid vectors must never be stored", store.Len())
	}
}

func TestSemanticStore_EmbedderFailureDoesNotStore(t *testing.T) {
	ctx := context.Background()
	embedder := &stubEmbedder{dims: 3, err: errors.New("model unavailable")}
	store := newStore(embedder)

	if err := store.Add(ctx, "red dress"); err == nil {
		t.Fatal("Add should surface the embed error")
	}
	if store.Len() != 0 {
		t.Errorf("store size = %d, want 0 after embed failure", store.Len())
	}
}

func TestVectorIndex_StableTieBreak(t *testing.T) {
	ctx := context.Background()
	idx := memory.NewVectorIndex()

	same := unit([]float32{1, 1, 0})
	if err := idx.Add(ctx, "first", same); err != nil {
		t.Fatal(err)
	}
	if err := idx.Add(ctx, "second", same); err != nil {
		t.Fatal(err)
	}

	recalls, err := idx.Search(ctx, same, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if recalls[0].Text != "first" || recalls[1].Text != "second" {
		t.Errorf("tie order = [%q, %q], want insertion order", recalls[0].Text, recalls[1].Text)
	}
}

func TestVectorIndex_MaxEntriesEvictsOldest(t *testing.T) {
	ctx := context.Background()
	idx := memory.NewVectorIndex(memory.WithMaxEntries(2))

	vec := unit([]float32{1, 0, 0})
	for _, text := range []string{"one", "two", "three"} {
		if err := idx.Add(ctx, text, vec); err != nil {
			t.Fatal(err)
		}
	}

	if idx.Len() != 2 {
		t.Fatalf("index size = %d, want bound 2", idx.Len())
	}
	recalls, err := idx.Search(ctx, vec, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if recalls[0].Text != "two" || recalls[1].Text != "three" {
		t.Errorf("entries = [%q, %q], oldest should have been evicted", recalls[0].Text, recalls[1].Text)
	}
}

func TestCosine(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{0, 1}
	if got := memory.Cosine(a, a); math.Abs(float64(got)-1) > 1e-6 {
		t.Errorf("Cosine(a,a) = %v, want 1", got)
	}
	if got := memory.Cosine(a, b); got != 0 {
		t.Errorf("Cosine(orthogonal) = %v, want 0", got)
	}
	if got := memory.Cosine(a, []float32{0, 0}); got != 0 {
		t.Errorf("Cosine(zero vector) = %v, want 0", got)
	}
	if got := memory.Cosine(a, []float32{1, 0, 0}); got != 0 {
		t.Errorf("Cosine(length mismatch) = %v, want 0", got)
	}
}
