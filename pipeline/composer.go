package pipeline

import (
	"context"
	"log"
	"strings"

	"github.com/cartlane/copilot-go-sdk/memory"
)

// Composer merges the session's durable topic, the current turn, and the
// semantic recall into one search query, then optionally asks a Rewriter to
// clean it into a bare keyword phrase.
type Composer struct {
	rewriter Rewriter
}

// NewComposer creates a composer. A nil rewriter skips the rewrite step.
func NewComposer(rewriter Rewriter) *Composer {
	return &Composer{rewriter: rewriter}
}

// Compose builds the single query string used for both candidate fetching
// and reranking. It never returns empty for a non-empty turn: an empty
// combination falls back to the turn text, and a failed or empty rewrite
// falls back to the combined query.
func (c *Composer) Compose(ctx context.Context, sess *memory.Session, turnText string) string {
	base := sess.QueryContext(turnText)

	var recallTexts []string
	for _, recall := range sess.Recall(ctx, turnText) {
		recallTexts = append(recallTexts, recall.Text)
	}

	combined := strings.TrimSpace(base + " " + strings.Join(recallTexts, " "))
	if combined == "" {
		combined = turnText
	}

	if c.rewriter == nil {
		return combined
	}
	rewritten, err := c.rewriter.Rewrite(ctx, sess.History(), combined)
	if err != nil {
		log.Printf("[PIPELINE] Query rewrite failed: %v", err)
		return combined
	}
	if rewritten = strings.TrimSpace(rewritten); rewritten == "" {
		return combined
	}
	return rewritten
}
