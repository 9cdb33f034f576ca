// Package pipeline wires the memory core into one turn of the shopping
// copilot: remember the utterance, compose a search query from topic plus
// semantic recall, fetch and rerank candidates, and phrase a reply.
//
// Every external capability (captioning, scraping, query rewriting, reply
// generation) sits behind a small adapter interface and is allowed to fail;
// the pipeline degrades per capability instead of failing the request.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cartlane/copilot-go-sdk/core"
	"github.com/cartlane/copilot-go-sdk/memory"
	"github.com/cartlane/copilot-go-sdk/rerank"
)

// DefaultPreamble is the stylist persona used for reply generation. The UI
// renders plain text, so markdown is banned outright.
const DefaultPreamble = `You are Shopping Copilot, a stylish, friendly, modern AI shopping assistant.

STYLE RULES:
- You must NOT use markdown.
- Do NOT use bold, stars, underscores, hyphens or lists.
- Keep the text clean for UI.
- Use 1-3 emojis maximum.

BEHAVIOR:
- Friendly, stylish, helpful.
- No URLs in the text (the UI handles those).
- Summaries must be natural sentences.
- Image uploads: describe briefly and recommend based on it.`

// replyFallback is shown when reply generation fails outright.
const replyFallback = "Sorry, I couldn't process with AI right now."

// defaultTriggerWords gates candidate fetching: a turn only hits the
// marketplaces when the message contains one of these or came with an image.
var defaultTriggerWords = []string{
	"show", "find", "buy", "dress", "shirt",
	"price", "frock", "jeans", "mobile", "saree",
}

// Captioner describes an image with a short text caption.
// May return an empty caption on failure.
type Captioner interface {
	Caption(ctx context.Context, image []byte) (string, error)
}

// CandidateFetcher retrieves scraped product candidates for a query, in
// source-interleaved order. May return an empty list.
type CandidateFetcher interface {
	Fetch(ctx context.Context, query string) ([]core.Candidate, error)
}

// Rewriter cleans a combined query into a bare keyword phrase, merging with
// history only when topically related. May fail or return empty.
type Rewriter interface {
	Rewrite(ctx context.Context, history []string, text string) (string, error)
}

// ReplyRequest carries everything the reply generator needs for one turn.
type ReplyRequest struct {
	Preamble string
	UserTurn string
	Caption  string
	History  []string
	Products []core.RankedResult
}

// ReplyGenerator phrases the final user-facing reply.
type ReplyGenerator interface {
	Generate(ctx context.Context, req ReplyRequest) (string, error)
}

// Turn is one incoming user turn.
type Turn struct {
	Message string
	Image   []byte
}

// TurnResult is the pipeline output for one turn.
type TurnResult struct {
	// Reply is the user-facing response text.
	Reply string `json:"reply"`

	// Products are the reranked candidates, best first.
	Products []core.RankedResult `json:"products"`

	// ComposedQuery is the single query used for fetching and reranking.
	ComposedQuery string `json:"composed_query"`

	// Caption is the image caption, when an image was supplied.
	Caption string `json:"caption,omitempty"`
}

// Pipeline executes turns against a memory session.
type Pipeline struct {
	fetcher   CandidateFetcher
	reranker  *rerank.Reranker
	composer  *Composer
	captioner Captioner
	replier   ReplyGenerator
	triggers  []string
	preamble  string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithCaptioner enables image captioning.
func WithCaptioner(c Captioner) Option {
	return func(p *Pipeline) {
		p.captioner = c
	}
}

// WithRewriter enables LLM query rewriting during composition.
func WithRewriter(r Rewriter) Option {
	return func(p *Pipeline) {
		p.composer = NewComposer(r)
	}
}

// WithReplyGenerator enables LLM reply phrasing.
func WithReplyGenerator(g ReplyGenerator) Option {
	return func(p *Pipeline) {
		p.replier = g
	}
}

// WithTriggerWords overrides the shopping-intent trigger word set.
func WithTriggerWords(words []string) Option {
	return func(p *Pipeline) {
		if len(words) > 0 {
			p.triggers = words
		}
	}
}

// WithPreamble overrides the reply persona.
func WithPreamble(preamble string) Option {
	return func(p *Pipeline) {
		p.preamble = preamble
	}
}

// New creates a pipeline over a candidate fetcher and reranker.
func New(fetcher CandidateFetcher, reranker *rerank.Reranker, opts ...Option) *Pipeline {
	p := &Pipeline{
		fetcher:  fetcher,
		reranker: reranker,
		composer: NewComposer(nil),
		triggers: defaultTriggerWords,
		preamble: DefaultPreamble,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// HandleTurn runs one user turn end to end against sess. The only error it
// returns is context cancellation; every capability failure degrades
// (empty caption, empty recall, unranked or no candidates, canned apology)
// and is logged instead.
func (p *Pipeline) HandleTurn(ctx context.Context, sess *memory.Session, turn Turn) (*TurnResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	message := strings.TrimSpace(turn.Message)

	caption := ""
	if len(turn.Image) > 0 && p.captioner != nil {
		text, err := p.captioner.Caption(ctx, turn.Image)
		if err != nil {
			log.Printf("[PIPELINE] Caption failed: %v", err)
		} else {
			caption = strings.TrimSpace(text)
		}
	}

	turnText := strings.TrimSpace(caption + " " + message)
	if turnText == "" {
		// Nothing to do on an empty turn; not an error.
		return &TurnResult{}, nil
	}

	sess.Remember(ctx, turnText)

	composed := p.composer.Compose(ctx, sess, turnText)
	result := &TurnResult{ComposedQuery: composed, Caption: caption}

	if p.shouldFetch(message, caption) {
		candidates, err := p.fetcher.Fetch(ctx, composed)
		if err != nil {
			log.Printf("[PIPELINE] Fetch failed for %q: %v", composed, err)
			candidates = nil
		}
		result.Products = p.reranker.Rerank(ctx, composed, candidates)
	}

	result.Reply = p.generateReply(ctx, sess, message, caption, result.Products)
	return result, nil
}

// shouldFetch gates marketplace fetching on shopping intent: a trigger word
// in the message, or any image caption.
func (p *Pipeline) shouldFetch(message, caption string) bool {
	if caption != "" {
		return true
	}
	lower := strings.ToLower(message)
	for _, word := range p.triggers {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

// generateReply phrases the reply, falling back to a canned apology when the
// generator fails. With no generator configured the reply stays empty and
// the caller renders the products directly.
func (p *Pipeline) generateReply(ctx context.Context, sess *memory.Session, message, caption string, products []core.RankedResult) string {
	if p.replier == nil {
		return ""
	}

	reply, err := p.replier.Generate(ctx, ReplyRequest{
		Preamble: p.preamble,
		UserTurn: message,
		Caption:  caption,
		History:  sess.History(),
		Products: products,
	})
	if err != nil {
		log.Printf("[PIPELINE] Reply generation failed: %v", err)
		return replyFallback
	}
	if strings.TrimSpace(reply) == "" {
		return replyFallback
	}
	return reply
}

// FormatProducts renders ranked candidates as "{source}: {title} - {url}"
// lines for prompt injection.
func FormatProducts(products []core.RankedResult) []string {
	lines := make([]string, 0, len(products))
	for _, p := range products {
		lines = append(lines, fmt.Sprintf("%s: %s - %s", p.Candidate.Source, p.Candidate.Title, p.Candidate.URL))
	}
	return lines
}
