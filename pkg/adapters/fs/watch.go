package fs

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/fsnotify/fsnotify"

	"github.com/machsheltie/gardenplanner/pkg/core"
)

// Watch reports changes to a single document. The parent directory is
// watched so editors that save by rename are still seen. The channel is
// closed when ctx ends.
func (s *Store) Watch(ctx context.Context, path string) (<-chan core.Event, error) {
	abs, err := s.Abs(path)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	events := make(chan core.Event)
	s.setWatching(1)

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer s.setWatching(-1)
		defer close(events)
		defer watcher.Close()

		d := newDebouncer(s.config.Debounce)
		defer d.stopAndWait(5 * time.Second)

		for {
			select {
			case <-ctx.Done():
				return nil
			case ev, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if filepath.Clean(ev.Name) != abs {
					continue
				}
				t := mapEventType(ev)
				if t == "" {
					continue
				}
				s.config.Logger.Debug("document event", "path", abs, "op", ev.Op.String())
				d.add(core.Event{Type: t, Path: abs, Timestamp: time.Now().Unix()}, func(e core.Event) {
					select {
					case events <- e:
					case <-ctx.Done():
					}
				})
			case werr, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				s.reportError(werr)
			}
		}
	}, lifecycle.WithErrorHandler(func(err error) {
		s.reportError(fmt.Errorf("watcher panic: %w", err))
	}))

	return events, nil
}

func mapEventType(ev fsnotify.Event) core.EventType {
	switch {
	case ev.Has(fsnotify.Create):
		return core.EventCreate
	case ev.Has(fsnotify.Write):
		return core.EventModify
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		return core.EventDelete
	default:
		return ""
	}
}
