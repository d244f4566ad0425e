package gardenplanner

import (
	"context"
	"log/slog"
	"time"

	"github.com/machsheltie/gardenplanner/internal/platform"
	"github.com/machsheltie/gardenplanner/pkg/core"
)

// --- Types ---

// Report is a public alias for the outcome of one import.
type Report = core.Report

// ImportRequest is a public alias for the parameters of one import.
type ImportRequest = core.ImportRequest

// --- Configuration ---

// Option defines a functional option for configuring the importer.
type Option = platform.Option

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithStore allows injecting a custom document store.
func WithStore(store core.DocumentStore) Option {
	return platform.WithStore(store)
}

// WithDeclaration sets the record-set declaration name (default "V").
func WithDeclaration(name string) Option {
	return platform.WithDeclaration(name)
}

// WithAuxiliary sets the declarations the target must also carry.
func WithAuxiliary(names ...string) Option {
	return platform.WithAuxiliary(names...)
}

// WithIdentity selects the category and name fields used to match crops.
func WithIdentity(category, name string) Option {
	return platform.WithIdentity(category, name)
}

// WithFields sets the default merge fields.
func WithFields(fields ...string) Option {
	return platform.WithFields(fields...)
}

// WithEvalTimeout bounds each document evaluation.
func WithEvalTimeout(d time.Duration) Option {
	return platform.WithEvalTimeout(d)
}

// WithBaseDir sets the directory report paths are shown relative to.
func WithBaseDir(dir string) Option {
	return platform.WithBaseDir(dir)
}

// WithReadOnly refuses every write.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithWatchDebounce sets the coalescing window for file events.
func WithWatchDebounce(d time.Duration) Option {
	return platform.WithWatchDebounce(d)
}

// WithWatcherErrorHandler receives errors raised inside the watch loop.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// --- Factory ---

// New creates an import service rooted at root.
func New(root string, opts ...Option) (*core.Service, error) {
	return platform.New(root, opts...)
}

// --- Operations ---

// Import runs a single import against the project at root.
func Import(ctx context.Context, root string, req ImportRequest, opts ...Option) (*Report, error) {
	svc, err := New(root, opts...)
	if err != nil {
		return nil, err
	}
	return svc.Import(ctx, req)
}

// Watch re-runs req every time its source changes until ctx ends.
func Watch(ctx context.Context, root string, req ImportRequest, onRun func(*Report, error), opts ...Option) error {
	svc, err := New(root, opts...)
	if err != nil {
		return err
	}
	return platform.WatchImport(ctx, svc, req, onRun)
}

// FindProjectRoot looks upwards from startDir for a project root indicator.
func FindProjectRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}
