package core

import (
	"github.com/aretw0/introspection"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	StoreType   string        `json:"store_type"`
	Declaration string        `json:"declaration"`
	Identity    Identity      `json:"identity"`
	EvalTimeout string        `json:"eval_timeout"`
	Runs        int           `json:"runs"`
	LastRunID   string        `json:"last_run_id,omitempty"`
	LastOutcome Outcome       `json:"last_outcome,omitempty"`
	LastChanges []ChangeEntry `json:"last_changes,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	storeType := "unknown"
	if s.store != nil {
		storeType = "store"
		if comp, ok := s.store.(introspection.Component); ok {
			storeType = comp.ComponentType()
		}
	}

	st := ServiceState{
		StoreType:   storeType,
		Declaration: s.cfg.Declaration,
		Identity:    s.cfg.Identity,
		EvalTimeout: s.cfg.EvalTimeout.String(),
		Runs:        s.runs,
	}
	if s.lastRun != nil {
		st.LastRunID = s.lastRun.RunID
		st.LastOutcome = s.lastRun.Outcome
		st.LastChanges = s.lastRun.Changes
	}
	return st
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "import-service"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
