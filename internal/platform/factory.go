package platform

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/machsheltie/gardenplanner/pkg/adapters/fs"
	"github.com/machsheltie/gardenplanner/pkg/core"
)

// New wires an import service.
//
//	svc, err := platform.New(".", platform.WithLogger(logger))
//
// root resolves relative document paths for the filesystem store; it is
// ignored when WithStore is given.
func New(root string, opts ...Option) (*core.Service, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	store := o.store
	if store == nil {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, err
		}
		store = fs.NewStore(fs.Config{
			Root:         abs,
			Logger:       logger,
			ReadOnly:     o.readOnly,
			Debounce:     o.debounce,
			ErrorHandler: o.errorHandler,
		})
	}

	baseDir := o.baseDir
	if baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		baseDir = wd
	}

	return core.NewService(store, core.Config{
		Declaration: o.declaration,
		Auxiliary:   o.auxiliary,
		Identity:    o.identity,
		Fields:      o.fields,
		EvalTimeout: o.evalTimeout,
		BaseDir:     baseDir,
		Logger:      logger,
	}), nil
}
