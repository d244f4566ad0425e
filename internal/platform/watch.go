package platform

import (
	"context"

	"github.com/machsheltie/gardenplanner/pkg/adapters/lifecycle"
	"github.com/machsheltie/gardenplanner/pkg/core"
)

// WatchImport runs req once and again every time the source document is
// written, until ctx ends. Each run's outcome is passed to onRun; a failed
// run does not stop the loop. Glob sources are resolved once, up front.
func WatchImport(ctx context.Context, svc *core.Service, req core.ImportRequest, onRun func(*core.Report, error)) error {
	if r, ok := svc.Store().(core.Resolver); ok {
		resolved, err := r.Resolve(ctx, req.Source)
		if err != nil {
			return err
		}
		req.Source = resolved
	}

	events, err := svc.Watch(ctx, req.Source)
	if err != nil {
		return err
	}
	src := lifecycle.NewSource(events)
	if err := src.Start(ctx); err != nil {
		return err
	}

	onRun(svc.Import(ctx, req))
	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-src.Events():
			if !ok {
				return nil
			}
			if ev, isDoc := e.(core.Event); isDoc && ev.Type == core.EventDelete {
				continue
			}
			onRun(svc.Import(ctx, req))
		}
	}
}
