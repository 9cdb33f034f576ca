// Package lexical provides a deterministic token-overlap relevance scorer
// for tests and offline demos where no trained cross-encoder is available.
package lexical

import (
	"context"
	"strings"
)

// Scorer scores a title by the fraction of query tokens it contains, in
// [0, 1]. Tokens are lowercased and stripped of edge punctuation; matching
// is exact per token, so "shoes" does not match "sneakers".
type Scorer struct{}

// New creates a lexical scorer.
func New() *Scorer {
	return &Scorer{}
}

// Score implements rerank.Scorer.
func (s *Scorer) Score(ctx context.Context, query, title string) (float32, error) {
	queryTokens := tokenize(query)
	if len(queryTokens) == 0 {
		return 0, nil
	}

	titleSet := make(map[string]struct{})
	for _, tok := range tokenize(title) {
		titleSet[tok] = struct{}{}
	}

	var hits int
	for _, tok := range queryTokens {
		if _, ok := titleSet[tok]; ok {
			hits++
		}
	}
	return float32(hits) / float32(len(queryTokens)), nil
}

func tokenize(text string) []string {
	var tokens []string
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?;:\"'")
		if word != "" {
			tokens = append(tokens, word)
		}
	}
	return tokens
}
