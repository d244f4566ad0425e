package fs

import (
	"time"

	"github.com/aretw0/introspection"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	Root          string     `json:"root"`
	ReadOnly      bool       `json:"read_only"`
	Reads         int        `json:"reads"`
	Writes        int        `json:"writes"`
	Watchers      int        `json:"watchers"`
	LastWrite     *time.Time `json:"last_write,omitempty"`
	LastWritePath string     `json:"last_write_path,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return StoreState{
		Root:          s.Root,
		ReadOnly:      s.config.ReadOnly,
		Reads:         s.reads,
		Writes:        s.writes,
		Watchers:      s.watchers,
		LastWrite:     s.lastWrite,
		LastWritePath: s.lastWritePath,
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "fs-store"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)

func (s *Store) setWatching(delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchers += delta
}
