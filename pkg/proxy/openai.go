package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// OpenAIProvider calls an OpenAI-compatible chat completions endpoint.
type OpenAIProvider struct {
	url         string
	apiKey      string
	temperature float64
	hc          *http.Client
}

// NewOpenAIProvider creates a provider for cfg.UpstreamURL.
func NewOpenAIProvider(cfg Config) *OpenAIProvider {
	cfg = cfg.withDefaults()
	return &OpenAIProvider{
		url:         cfg.UpstreamURL,
		apiKey:      cfg.APIKey,
		temperature: cfg.Temperature,
		hc:          cfg.HTTPClient,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Answer implements Provider.
func (p *OpenAIProvider) Answer(ctx context.Context, q Question) (string, error) {
	if p.apiKey == "" {
		return "", fmt.Errorf("openai: %w", ErrMissingAPIKey)
	}
	user, err := UserMessage(q)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(chatRequest{
		Model:       q.Model,
		Temperature: p.temperature,
		Messages: []chatMessage{
			{Role: "system", Content: q.SystemPrompt},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 300))
		return "", fmt.Errorf("provider error %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("openai: decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}
