package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/machsheltie/gardenplanner/pkg/proxy"
)

// newFlagCommand binds fresh flags so Changed state does not leak between tests.
func newFlagCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "gardenproxy"}
	bindProxyFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	t.Cleanup(func() {
		port, upstreamURL, model, provider = 0, "", "", ""
		temperature, maxBody = proxy.DefaultTemperature, proxy.DefaultMaxBodyBytes
	})
	return cmd
}

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestConfigFromEnv(t *testing.T) {
	cmd := newFlagCommand(t)
	cfg, err := configFromEnv(cmd, envOf(map[string]string{
		"PORT":                  "9000",
		"OPENAI_BASE_URL":       "http://localhost:1234/v1/chat/completions",
		"OPENAI_API_KEY":        "sk-x",
		"GARDEN_PROXY_TOKEN":    "tok",
		"OPENAI_MODEL":          "gpt-4.1-mini",
		"GARDEN_PROXY_PROVIDER": "openai",
	}))
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "http://localhost:1234/v1/chat/completions", cfg.UpstreamURL)
	assert.Equal(t, "sk-x", cfg.APIKey)
	assert.Equal(t, "tok", cfg.SharedToken)
	assert.Equal(t, "gpt-4.1-mini", cfg.Model)
	assert.Equal(t, "openai", cfg.Provider)
}

func TestConfigFromEnv_FlagsWin(t *testing.T) {
	cmd := newFlagCommand(t, "--port", "7000", "--model", "flag-model", "--provider", "gemini")
	cfg, err := configFromEnv(cmd, envOf(map[string]string{
		"PORT":                  "9000",
		"OPENAI_MODEL":          "env-model",
		"GARDEN_PROXY_PROVIDER": "openai",
	}))
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, "flag-model", cfg.Model)
	assert.Equal(t, "gemini", cfg.Provider)
}

func TestConfigFromEnv_InvalidPort(t *testing.T) {
	cmd := newFlagCommand(t)
	_, err := configFromEnv(cmd, envOf(map[string]string{"PORT": "eighty"}))
	assert.ErrorContains(t, err, "invalid PORT")
}
