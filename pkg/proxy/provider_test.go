package proxy

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIProvider(t *testing.T) {
	var got chatRequest
	var auth string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"  Mulch heavily.  "}}]}`)
	}))
	defer upstream.Close()

	p := NewOpenAIProvider(Config{UpstreamURL: upstream.URL, APIKey: "sk-test"})
	answer, err := p.Answer(context.Background(), Question{
		Text:         "How do I keep beds moist?",
		Context:      map[string]any{},
		SystemPrompt: DefaultSystemPrompt,
		Model:        "gpt-4o-mini",
	})
	require.NoError(t, err)
	assert.Equal(t, "Mulch heavily.", answer)

	assert.Equal(t, "Bearer sk-test", auth)
	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.Equal(t, 0.3, got.Temperature)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, chatMessage{Role: "system", Content: DefaultSystemPrompt}, got.Messages[0])
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.True(t, strings.HasPrefix(got.Messages[1].Content, "Question: How do I keep beds moist?\n\nGarden context JSON:\n{}"))
}

func TestOpenAIProvider_Errors(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer upstream.Close()

	_, err := NewOpenAIProvider(Config{UpstreamURL: upstream.URL, APIKey: "k"}).Answer(context.Background(), Question{Text: "q"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider error 429: rate limited")

	_, err = NewOpenAIProvider(Config{UpstreamURL: upstream.URL}).Answer(context.Background(), Question{Text: "q"})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestGeminiProvider(t *testing.T) {
	var path, key string
	var body map[string]any
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		key = r.Header.Get("x-goog-api-key")
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"Rotate your brassicas."}]}}]}`)
	}))
	defer upstream.Close()

	p, err := NewGeminiProvider(context.Background(), Config{
		Provider:    ProviderGemini,
		APIKey:      "g-test",
		UpstreamURL: upstream.URL + "/",
	})
	require.NoError(t, err)

	answer, err := p.Answer(context.Background(), Question{
		Text:         "Clubroot?",
		Context:      map[string]any{"beds": 3.0},
		SystemPrompt: DefaultSystemPrompt,
		Model:        DefaultGeminiModel,
	})
	require.NoError(t, err)
	assert.Equal(t, "Rotate your brassicas.", answer)
	assert.Contains(t, path, DefaultGeminiModel+":generateContent")
	assert.Equal(t, "g-test", key)
	assert.Contains(t, body, "systemInstruction")
}
