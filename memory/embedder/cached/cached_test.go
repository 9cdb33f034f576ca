package cached_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/cartlane/copilot-go-sdk/memory/embedder/cached"
	"github.com/cartlane/copilot-go-sdk/memory/embedder/mock"
)

// countingEmbedder records how often the inner embedder is hit.
type countingEmbedder struct {
	inner *mock.Embedder
	calls int
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.calls++
	return c.inner.Embed(ctx, text)
}

func (c *countingEmbedder) Dimensions() int {
	return c.inner.Dimensions()
}

func TestEmbedder_PassThrough(t *testing.T) {
	ctx := context.Background()
	inner := &countingEmbedder{inner: mock.New()}
	e, err := cached.New(inner, 16)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.Close()

	want, err := mock.New().Embed(ctx, "red dress")
	if err != nil {
		t.Fatal(err)
	}
	got, err := e.Embed(ctx, "red dress")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Error("cached embedder must return the inner embedder's vector")
	}
	if e.Dimensions() != 384 {
		t.Errorf("Dimensions = %d, want 384", e.Dimensions())
	}
}

func TestEmbedder_CachesRepeatedText(t *testing.T) {
	ctx := context.Background()
	inner := &countingEmbedder{inner: mock.New()}
	e, err := cached.New(inner, 16)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.Close()

	first, err := e.Embed(ctx, "red dress")
	if err != nil {
		t.Fatal(err)
	}
	e.Wait() // ristretto applies Set asynchronously

	second, err := e.Embed(ctx, "red dress")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("cache hit must return the identical vector")
	}
	if inner.calls != 1 {
		t.Errorf("inner embedder called %d times, want 1", inner.calls)
	}
}
