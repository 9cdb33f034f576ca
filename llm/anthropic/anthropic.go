// Package anthropic implements the pipeline's query rewriting and reply
// generation adapters on the Anthropic Messages API.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/cartlane/copilot-go-sdk/pipeline"
)

const (
	defaultModel     = "claude-sonnet-4-20250514"
	defaultMaxTokens = 1024
)

// Client implements pipeline.Rewriter and pipeline.ReplyGenerator.
type Client struct {
	api       *anthropic.Client
	model     string
	maxTokens int64
}

// Option configures the client.
type Option func(*Client)

// WithModel overrides the Claude model.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithMaxTokens overrides the response token cap.
func WithMaxTokens(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// New wraps an Anthropic API client.
func New(api *anthropic.Client, opts ...Option) *Client {
	c := &Client{
		api:       api,
		model:     defaultModel,
		maxTokens: defaultMaxTokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Rewrite cleans a combined query into a bare keyword search phrase. The
// model merges with history only when topically related and ignores it on a
// topic switch.
func (c *Client) Rewrite(ctx context.Context, history []string, text string) (string, error) {
	var sb strings.Builder
	sb.WriteString("Chat History:\n")
	start := len(history) - 3
	if start < 0 {
		start = 0
	}
	for _, msg := range history[start:] {
		fmt.Fprintf(&sb, "- %s\n", msg)
	}
	fmt.Fprintf(&sb, "\nUser Input: %q\n\n", text)
	sb.WriteString(`TASK:
Rewrite the user's message into a clean keyword search query.
Rules:
- Merge with history only when related.
- If the last query was "red dress" and the user says "under 500", output "red dress under 500".
- If the user switches topic, ignore history.
- Output ONLY the clean keyword string. No punctuation.`)

	reply, err := c.complete(ctx, "", sb.String())
	if err != nil {
		return "", fmt.Errorf("rewrite query: %w", err)
	}
	return strings.TrimSpace(reply), nil
}

// Generate phrases the final user-facing reply from the turn, the caption,
// and the ranked products.
func (c *Client) Generate(ctx context.Context, req pipeline.ReplyRequest) (string, error) {
	var sb strings.Builder
	sb.WriteString(req.UserTurn)
	if req.Caption != "" {
		fmt.Fprintf(&sb, "\nUser uploaded an image showing: %s", req.Caption)
	}
	if len(req.Products) > 0 {
		sb.WriteString("\n\nProducts found:\n")
		sb.WriteString(strings.Join(pipeline.FormatProducts(req.Products), "\n"))
	}

	reply, err := c.complete(ctx, req.Preamble, sb.String())
	if err != nil {
		return "", fmt.Errorf("generate reply: %w", err)
	}
	return reply, nil
}

// complete runs one user message through the Messages API and concatenates
// the text blocks of the response.
func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	resp, err := c.api.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("claude API error: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	return text, nil
}
