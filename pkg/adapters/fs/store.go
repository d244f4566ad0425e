package fs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/machsheltie/gardenplanner/pkg/core"
)

// Config holds the configuration for the filesystem store.
type Config struct {
	// Root resolves relative paths. Empty means the working directory.
	Root   string
	Logger *slog.Logger
	// Perm is the mode of newly created documents. Existing documents keep theirs.
	Perm     os.FileMode
	ReadOnly bool
	// Debounce coalesces bursts of watch events. Zero means 50ms.
	Debounce     time.Duration
	ErrorHandler func(error)
}

// Store implements core.DocumentStore on the local filesystem.
type Store struct {
	Root   string
	config Config

	mu            sync.RWMutex
	reads         int
	writes        int
	watchers      int
	lastWrite     *time.Time
	lastWritePath string
}

// NewStore creates a filesystem-backed document store.
func NewStore(config Config) *Store {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Perm == 0 {
		config.Perm = 0o644
	}
	if config.Debounce <= 0 {
		config.Debounce = 50 * time.Millisecond
	}
	return &Store{Root: config.Root, config: config}
}

// Abs returns the absolute form of path, resolving it against Root.
func (s *Store) Abs(path string) (string, error) {
	if !filepath.IsAbs(path) && s.Root != "" {
		path = filepath.Join(s.Root, path)
	}
	return filepath.Abs(path)
}

// Read returns the document text.
func (s *Store) Read(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	abs, err := s.Abs(path)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &core.FileNotFoundError{Path: abs}
		}
		return "", fmt.Errorf("failed to read %s: %w", abs, err)
	}

	s.mu.Lock()
	s.reads++
	s.mu.Unlock()
	s.config.Logger.Debug("document read", "path", abs, "bytes", len(data))
	return string(data), nil
}

// Write replaces the document atomically. The previous content stays intact
// if anything fails before the final rename.
func (s *Store) Write(ctx context.Context, path string, text string) error {
	if s.config.ReadOnly {
		return core.ErrReadOnly
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	abs, err := s.Abs(path)
	if err != nil {
		return err
	}

	perm := s.config.Perm
	if info, err := os.Stat(abs); err == nil {
		perm = info.Mode().Perm()
	}
	if err := writeFileAtomic(abs, []byte(text), perm); err != nil {
		return err
	}

	now := time.Now()
	s.mu.Lock()
	s.writes++
	s.lastWrite = &now
	s.lastWritePath = abs
	s.mu.Unlock()
	s.config.Logger.Debug("document written", "path", abs, "bytes", len(text))
	return nil
}

func (s *Store) reportError(err error) {
	if s.config.ErrorHandler != nil {
		s.config.ErrorHandler(err)
		return
	}
	s.config.Logger.Error("store error", "error", err)
}

var (
	_ core.DocumentStore = (*Store)(nil)
	_ core.Resolver      = (*Store)(nil)
	_ core.Watchable     = (*Store)(nil)
	_ core.Locator       = (*Store)(nil)
)
