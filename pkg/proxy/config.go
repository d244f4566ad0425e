// Package proxy serves the Master Gardener question endpoint, forwarding a
// question and the caller's garden context to a text-generation provider.
//
// It is independent of the import pipeline and never evaluates documents.
package proxy

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Defaults for Config.
const (
	DefaultPort         = 8787
	DefaultUpstreamURL  = "https://api.openai.com/v1/chat/completions"
	DefaultOpenAIModel  = "gpt-4o-mini"
	DefaultGeminiModel  = "gemini-2.5-flash"
	DefaultTemperature  = 0.3
	DefaultMaxBodyBytes = 512000
	DefaultSystemPrompt = "You are a gardening assistant."

	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	// TokenHeader carries the shared secret when one is configured.
	TokenHeader = "X-Garden-Proxy-Token"
	// Route is the only path the proxy answers.
	Route = "/api/master-gardener"
)

// Config is passed explicitly to New; nothing is read from the environment.
//
//	Field         Default
//	Port          8787
//	UpstreamURL   https://api.openai.com/v1/chat/completions
//	APIKey        ""
//	SharedToken   "" (disables the token check)
//	Model         gpt-4o-mini (gemini-2.5-flash for the gemini provider)
//	Provider      openai
//	Temperature   0.3
//	MaxBodyBytes  512000
type Config struct {
	Port        int
	UpstreamURL string
	APIKey      string
	SharedToken string
	Model       string
	Provider    string
	Temperature float64
	// MaxBodyBytes caps request bodies; larger requests get 413.
	MaxBodyBytes int64
	SystemPrompt string

	ShutdownTimeout time.Duration
	HTTPClient      *http.Client
	Logger          *slog.Logger
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{}.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.Provider == "" {
		c.Provider = ProviderOpenAI
	}
	if c.UpstreamURL == "" && c.Provider == ProviderOpenAI {
		c.UpstreamURL = DefaultUpstreamURL
	}
	if c.Model == "" {
		c.Model = DefaultOpenAIModel
		if c.Provider == ProviderGemini {
			c.Model = DefaultGeminiModel
		}
	}
	if c.Temperature == 0 {
		c.Temperature = DefaultTemperature
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.SystemPrompt == "" {
		c.SystemPrompt = DefaultSystemPrompt
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 5 * time.Second
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Addr is the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
