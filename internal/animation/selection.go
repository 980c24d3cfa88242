// Seawatch - Maritime Live Operations and Alert Triage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package animation

import (
	"sync"

	"github.com/tomtom215/seawatch/internal/livesync"
)

// Selections tracks the inspected vessel of every console view. Views are
// keyed by session id; one operator selecting a vessel never changes what
// another operator sees highlighted.
//
// Register Reconcile next to Engine.Apply so a selection is cleared once
// its vessel leaves the live feed:
//
//	scheduler.OnUpdate(func(state livesync.RenderState) {
//	    engine.Apply(state)
//	    selections.Reconcile(state)
//	})
type Selections struct {
	engine *Engine

	mu       sync.Mutex
	byView   map[string]string
	revision uint64
}

// NewSelections creates an empty selection table whose ids are checked
// against engine's rendered markers.
func NewSelections(engine *Engine) *Selections {
	return &Selections{
		engine: engine,
		byView: make(map[string]string),
	}
}

// Select makes vesselID the inspected vessel of view. The vessel must be on
// the map; otherwise ErrUnknownVessel is returned and the previous
// selection is kept.
func (s *Selections) Select(view, vesselID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.engine.Position(vesselID); !ok {
		return ErrUnknownVessel
	}
	s.byView[view] = vesselID
	return nil
}

// Selected returns the inspected vessel of view.
func (s *Selections) Selected(view string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byView[view]
	return id, ok
}

// Clear removes the selection of view. Logout calls it too.
func (s *Selections) Clear(view string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byView, view)
}

// Reconcile drops every selection whose vessel is not in state. States
// older than the last reconciled revision are ignored.
func (s *Selections) Reconcile(state livesync.RenderState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state.Revision != 0 && state.Revision <= s.revision {
		return
	}
	s.revision = state.Revision

	present := make(map[string]struct{}, len(state.Vessels))
	for i := range state.Vessels {
		present[state.Vessels[i].ID] = struct{}{}
	}
	for view, id := range s.byView {
		if _, ok := present[id]; !ok {
			delete(s.byView, view)
		}
	}
}

