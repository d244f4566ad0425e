package proxy

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Sources is returned with every answer.
var Sources = []string{"Proxy AI", "Garden Context Payload", "Your Garden Data"}

// Server is the HTTP front of the proxy.
type Server struct {
	cfg      Config
	provider Provider
	logger   *slog.Logger
}

// New creates a Server answering with provider.
func New(cfg Config, provider Provider) *Server {
	cfg = cfg.withDefaults()
	return &Server{cfg: cfg, provider: provider, logger: cfg.Logger}
}

type askRequest struct {
	Question     any `json:"question"`
	Context      any `json:"context"`
	SystemPrompt any `json:"systemPrompt"`
	Model        any `json:"model"`
}

type askResponse struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Headers", "Content-Type, "+TokenHeader)
		h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.URL.Path != Route || r.Method != http.MethodPost {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Not found"})
		return
	}
	w.Header().Set("Access-Control-Allow-Origin", "*")

	if s.cfg.SharedToken != "" {
		got := r.Header.Get(TokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.cfg.SharedToken)) != 1 {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
			return
		}
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "Request too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}

	var req askRequest
	if len(strings.TrimSpace(string(body))) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid JSON"})
			return
		}
	}

	question := strings.TrimSpace(text(req.Question))
	if question == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Missing question"})
		return
	}

	q := Question{
		Text:         question,
		Context:      gardenContext(req.Context),
		SystemPrompt: text(req.SystemPrompt),
		Model:        text(req.Model),
	}
	if q.SystemPrompt == "" {
		q.SystemPrompt = s.cfg.SystemPrompt
	}
	if q.Model == "" {
		q.Model = s.cfg.Model
	}

	answer, err := s.provider.Answer(r.Context(), q)
	if err != nil {
		s.logger.Error("proxy request failed", "error", err, "model", q.Model)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Proxy request failed"})
		return
	}
	writeJSON(w, http.StatusOK, askResponse{Answer: answer, Sources: Sources})
}

// Run serves on cfg.Addr() until ctx ends, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{Handler: s}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("master gardener proxy listening", "addr", ln.Addr().String(), "route", Route, "provider", s.cfg.Provider)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// text mirrors loose string coercion of JSON scalars; absent and falsy
// values become "".
func text(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == 0 {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "true"
		}
	}
	return ""
}

// gardenContext keeps objects and arrays and replaces anything else with {}.
func gardenContext(v any) any {
	switch v.(type) {
	case map[string]any, []any:
		return v
	default:
		return map[string]any{}
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"error":"Proxy request failed"}`)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
