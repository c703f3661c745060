// Package textgen is the text-generation collaborator boundary. Callers must
// tolerate ErrUnavailable and malformed output; the explain package owns the
// deterministic fallbacks.
package textgen

import (
	"context"
	"errors"
)

var ErrUnavailable = errors.New("text generation unavailable")

type Provider interface {
	// Generate returns free text for the prompt within a bounded token budget.
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

type NoOpProvider struct{}

func (p *NoOpProvider) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	return "", ErrUnavailable
}
