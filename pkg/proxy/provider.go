package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMissingAPIKey is returned by providers configured without a credential.
var ErrMissingAPIKey = errors.New("api key missing")

// Question is one request forwarded to a provider.
type Question struct {
	Text         string
	Context      any
	SystemPrompt string
	Model        string
}

// Provider answers a question.
type Provider interface {
	Answer(ctx context.Context, q Question) (string, error)
}

// UserMessage renders the question and its context as the user turn.
func UserMessage(q Question) (string, error) {
	ctxJSON, err := json.MarshalIndent(q.Context, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode garden context: %w", err)
	}
	return fmt.Sprintf("Question: %s\n\nGarden context JSON:\n%s", q.Text, ctxJSON), nil
}

// NewProvider builds the provider named by cfg.Provider.
func NewProvider(ctx context.Context, cfg Config) (Provider, error) {
	cfg = cfg.withDefaults()
	switch cfg.Provider {
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg), nil
	case ProviderGemini:
		return NewGeminiProvider(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown provider %q (want %s or %s)", cfg.Provider, ProviderOpenAI, ProviderGemini)
	}
}
