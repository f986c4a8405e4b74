package llm

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
)

// Anthropic is the Claude-backed Completer.
type Anthropic struct {
	client    *anthropic.Client
	model     string
	maxTokens int64
}

// AnthropicOption configures the Anthropic completer.
type AnthropicOption func(*Anthropic)

// WithModel overrides the default model.
func WithModel(model string) AnthropicOption {
	return func(a *Anthropic) { a.model = model }
}

// WithMaxTokens overrides the response token cap.
func WithMaxTokens(n int64) AnthropicOption {
	return func(a *Anthropic) { a.maxTokens = n }
}

// NewAnthropic creates a Completer over the given Anthropic client.
func NewAnthropic(client *anthropic.Client, opts ...AnthropicOption) *Anthropic {
	a := &Anthropic{
		client:    client,
		model:     "claude-sonnet-4-20250514",
		maxTokens: 1024,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Complete sends one user prompt with a system block and concatenates the
// text blocks of the response.
func (a *Anthropic) Complete(ctx context.Context, system, prompt string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: a.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	resp, err := a.client.Messages.New(ctx, params)
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
