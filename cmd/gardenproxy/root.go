package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/machsheltie/gardenplanner/pkg/proxy"
)

var (
	verbose     bool
	port        int
	upstreamURL string
	model       string
	provider    string
	temperature float64
	maxBody     int64
)

var rootCmd = &cobra.Command{
	Use:   "gardenproxy",
	Short: "Serve the Master Gardener question endpoint",
	Long: `gardenproxy accepts POST /api/master-gardener requests carrying a question
and garden context, forwards them to a text-generation provider and returns
the answer.

The API key and shared token are read from OPENAI_API_KEY and
GARDEN_PROXY_TOKEN. PORT, OPENAI_BASE_URL, OPENAI_MODEL and
GARDEN_PROXY_PROVIDER fill in flags that are not given.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runProxy,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

// Execute runs the root command and exits 1 on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	bindProxyFlags(rootCmd)
}

func bindProxyFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntVarP(&port, "port", "p", 0, "Listen port (env PORT, default 8787)")
	f.StringVar(&upstreamURL, "upstream", "", "Provider endpoint (env OPENAI_BASE_URL)")
	f.StringVarP(&model, "model", "m", "", "Default model (env OPENAI_MODEL)")
	f.StringVar(&provider, "provider", "", "Provider: openai or gemini (env GARDEN_PROXY_PROVIDER)")
	f.Float64Var(&temperature, "temperature", proxy.DefaultTemperature, "Sampling temperature")
	f.Int64Var(&maxBody, "max-body", proxy.DefaultMaxBodyBytes, "Maximum request body in bytes")
}

// configFromEnv builds the proxy configuration. Flags win over the
// environment; anything left empty takes the package defaults.
func configFromEnv(cmd *cobra.Command, getenv func(string) string) (proxy.Config, error) {
	cfg := proxy.Config{
		Port:         port,
		UpstreamURL:  upstreamURL,
		APIKey:       getenv("OPENAI_API_KEY"),
		SharedToken:  getenv("GARDEN_PROXY_TOKEN"),
		Model:        model,
		Provider:     provider,
		Temperature:  temperature,
		MaxBodyBytes: maxBody,
		Logger:       slog.Default(),
	}

	if !cmd.Flags().Changed("port") {
		if v := getenv("PORT"); v != "" {
			p, err := strconv.Atoi(v)
			if err != nil {
				return proxy.Config{}, fmt.Errorf("invalid PORT %q: %w", v, err)
			}
			cfg.Port = p
		}
	}
	if cfg.UpstreamURL == "" {
		cfg.UpstreamURL = getenv("OPENAI_BASE_URL")
	}
	if cfg.Model == "" {
		cfg.Model = getenv("OPENAI_MODEL")
	}
	if cfg.Provider == "" {
		cfg.Provider = getenv("GARDEN_PROXY_PROVIDER")
	}
	return cfg, nil
}

func runProxy(cmd *cobra.Command, args []string) error {
	cfg, err := configFromEnv(cmd, os.Getenv)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := proxy.NewProvider(ctx, cfg)
	if err != nil {
		return err
	}
	if cfg.APIKey == "" {
		slog.Warn("no API key configured; every question will fail", "env", "OPENAI_API_KEY")
	}
	return proxy.New(cfg, p).Run(ctx)
}
