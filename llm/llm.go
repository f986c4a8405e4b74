// Package llm defines the completion capability the memory layer and the
// agent runtime depend on, plus the Anthropic-backed implementation.
package llm

import "context"

// Completer answers a single prompt. It is the only suspension point in a
// conversation turn besides retrieval; callers bound it with the context.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// CompleterFunc adapts a function to the Completer interface.
type CompleterFunc func(ctx context.Context, system, prompt string) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, system, prompt string) (string, error) {
	return f(ctx, system, prompt)
}
