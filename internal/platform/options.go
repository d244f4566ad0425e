package platform

import (
	"log/slog"
	"time"

	"github.com/machsheltie/gardenplanner/pkg/core"
)

// options holds the internal configuration for the import service.
type options struct {
	store        core.DocumentStore
	logger       *slog.Logger
	declaration  string
	auxiliary    []string
	identity     core.Identity
	fields       []string
	evalTimeout  time.Duration
	baseDir      string
	readOnly     bool
	debounce     time.Duration
	errorHandler func(error)
}

// Option defines a functional option for configuring the service.
type Option func(*options)

func defaultOptions() *options {
	return &options{}
}

// WithLogger sets the logger for the service and the default store.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStore injects a custom document store (e.g. in-memory for tests).
// If provided, the filesystem store is skipped.
func WithStore(store core.DocumentStore) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithDeclaration sets the name of the record-set declaration. Defaults to "V".
func WithDeclaration(name string) Option {
	return func(o *options) {
		o.declaration = name
	}
}

// WithAuxiliary sets the declarations that must accompany the record set in
// the target. Passing none requires no auxiliary declarations.
func WithAuxiliary(names ...string) Option {
	return func(o *options) {
		o.auxiliary = append([]string{}, names...)
	}
}

// WithIdentity selects the category and name fields used to match records.
func WithIdentity(category, name string) Option {
	return func(o *options) {
		o.identity = core.Identity{Category: category, Name: name}
	}
}

// WithFields sets the fields merged when a request names none.
func WithFields(fields ...string) Option {
	return func(o *options) {
		o.fields = fields
	}
}

// WithEvalTimeout bounds each materialization. Zero means two seconds.
func WithEvalTimeout(d time.Duration) Option {
	return func(o *options) {
		o.evalTimeout = d
	}
}

// WithBaseDir sets the directory reported paths are relative to.
// Defaults to the working directory.
func WithBaseDir(dir string) Option {
	return func(o *options) {
		o.baseDir = dir
	}
}

// WithReadOnly makes the default store refuse writes with core.ErrReadOnly.
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.readOnly = enabled
	}
}

// WithWatchDebounce sets how long bursts of file events are coalesced.
func WithWatchDebounce(d time.Duration) Option {
	return func(o *options) {
		o.debounce = d
	}
}

// WithWatcherErrorHandler registers a callback for errors raised inside the
// watch loop, which are otherwise only logged.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.errorHandler = fn
	}
}
