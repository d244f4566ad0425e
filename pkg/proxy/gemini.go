package proxy

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiProvider answers through the Gemini API.
type GeminiProvider struct {
	client      *genai.Client
	temperature float32
}

// NewGeminiProvider creates a Gemini client. A non-empty cfg.UpstreamURL
// overrides the API base URL.
func NewGeminiProvider(ctx context.Context, cfg Config) (*GeminiProvider, error) {
	cfg = cfg.withDefaults()
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: %w", ErrMissingAPIKey)
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.UpstreamURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.UpstreamURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiProvider{client: client, temperature: float32(cfg.Temperature)}, nil
}

// Answer implements Provider.
func (p *GeminiProvider) Answer(ctx context.Context, q Question) (string, error) {
	user, err := UserMessage(q)
	if err != nil {
		return "", err
	}

	resp, err := p.client.Models.GenerateContent(ctx,
		q.Model,
		[]*genai.Content{genai.NewContentFromText(user, genai.RoleUser)},
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(q.SystemPrompt, genai.RoleUser),
			Temperature:       genai.Ptr(p.temperature),
		},
	)
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	return strings.TrimSpace(resp.Text()), nil
}
