package chromem_test

import (
	"context"
	"testing"

	"github.com/cartlane/copilot-go-sdk/memory/store/chromem"
)

func TestStore_AddAndSearch(t *testing.T) {
	ctx := context.Background()
	store, err := chromem.New("test")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer store.Close()

	entries := map[string][]float32{
		"red dress":    {1, 0, 0},
		"formal shoes": {0, 1, 0},
	}
	for text, vec := range entries {
		if err := store.Add(ctx, text, vec); err != nil {
			t.Fatalf("Add(%q): %v", text, err)
		}
	}
	if store.Len() != 2 {
		t.Fatalf("Len = %d, want 2", store.Len())
	}

	// A query leaning toward the dress axis must recall the dress first.
	recalls, err := store.Search(ctx, []float32{0.9, 0.1, 0}, 1)
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

func TestStore_EmptyCollection(t *testing.T) {
	ctx := context.Background()
	store, err := chromem.New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer store.Close()

	recalls, err := store.Search(ctx, []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("Search on empty store: %v", err)
	}
	if len(recalls) != 0 {
		t.Errorf("got %d recalls from an empty store", len(recalls))
	}
}

func TestStore_TopKClampedToSize(t *testing.T) {
	ctx := context.Background()
	store, err := chromem.New("clamp")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer store.Close()

	if err := store.Add(ctx, "red dress", []float32{1, 0, 0}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	recalls, err := store.Search(ctx, []float32{1, 0, 0}, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(recalls) != 1 {
		t.Errorf("got %d recalls, want clamp to collection size 1", len(recalls))
	}
}
