// Package rerank orders scraped product candidates by learned relevance to
// the composed query.
//
// The Scorer is a cross-encoder style relevance function over (query, title)
// pairs: lexical.Scorer for tests and offline demos, onnx.Scorer for the
// fine-tuned DistilBERT sentence-pair classifier.
package rerank

import (
	"context"
	"log"
	"sort"

	"github.com/cartlane/copilot-go-sdk/core"
)

// Scorer computes a scalar relevance score in [0, 1] for how well a
// candidate title matches the query intent. Scoring must be a pure function
// of (query, title): no hidden state, no mutation.
type Scorer interface {
	Score(ctx context.Context, query, title string) (float32, error)
}

// Reranker scores candidates against a query and keeps the best few.
type Reranker struct {
	scorer  Scorer
	keepTop int
}

// Option configures a Reranker.
type Option func(*Reranker)

// WithKeepTop overrides how many candidates survive reranking (default 5).
func WithKeepTop(n int) Option {
	return func(r *Reranker) {
		if n > 0 {
			r.keepTop = n
		}
	}
}

// New creates a Reranker over the given scorer.
func New(scorer Scorer, opts ...Option) *Reranker {
	r := &Reranker{scorer: scorer, keepTop: 5}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rerank scores every candidate title against query and returns the keepTop
// best in descending score order. Ties keep the fetch order, which
// interleaves sources. An empty candidate list returns empty without
// invoking the scorer; a scorer failure scores that candidate 0 rather than
// failing the turn.
func (r *Reranker) Rerank(ctx context.Context, query string, candidates []core.Candidate) []core.RankedResult {
	if len(candidates) == 0 {
		return nil
	}

	ranked := make([]core.RankedResult, len(candidates))
	for i, candidate := range candidates {
		score, err := r.scorer.Score(ctx, query, candidate.Title)
		if err != nil {
			log.Printf("[RERANK] Scoring %q failed: %v", candidate.Title, err)
			score = 0
		}
		ranked[i] = core.RankedResult{Score: score, Candidate: candidate}
	}

	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Score > ranked[b].Score
	})

	if len(ranked) > r.keepTop {
		ranked = ranked[:r.keepTop]
	}
	return ranked
}
