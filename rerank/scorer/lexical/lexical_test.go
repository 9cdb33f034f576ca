package lexical_test

import (
	"context"
	"testing"

	"github.com/cartlane/copilot-go-sdk/rerank/scorer/lexical"
)

func TestScorer(t *testing.T) {
	s := lexical.New()
	ctx := context.Background()

	tests := []struct {
		query, title string
		want         float32
	}{
		{"black shoes", "Formal Black Shoes", 1},
		{"black shoes", "Men's Black Sneakers", 0.5},
		{"black shoes", "Plastic Plates Pack", 0},
		{"red dress", "Women's Red Maxi Dress", 1},
		{"", "anything", 0},
		{"shoes", "SHOES!", 1}, // case and edge punctuation ignored
	}
	for _, tt := range tests {
		got, err := s.Score(ctx, tt.query, tt.title)
		if err != nil {
			t.Fatalf("Score(%q, %q): %v", tt.query, tt.title, err)
		}
		if got != tt.want {
			t.Errorf("Score(%q, %q) = %v, want %v", tt.query, tt.title, got, tt.want)
		}
	}
}
