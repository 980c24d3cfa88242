// Seawatch - Maritime Live Operations and Alert Triage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

// Package selection tracks which visible alerts are selected for a bulk
// action. The selection is always a subset of the visible rows and is
// cleared whenever the visible rows are replaced.
package selection

import (
	"slices"
	"sync"
)

// Set is a selection over a set of visible alert ids.
type Set struct {
	mu       sync.Mutex
	visible  []int64
	selected map[int64]struct{}
}

// New returns an empty selection with nothing visible.
func New() *Set {
	return &Set{selected: make(map[int64]struct{})}
}

// Replace sets the visible ids, in display order, and clears the selection.
// Repeated ids are kept once.
func (s *Set) Replace(visible []int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible = make([]int64, 0, len(visible))
	for _, id := range visible {
		if !slices.Contains(s.visible, id) {
			s.visible = append(s.visible, id)
		}
	}
	clear(s.selected)
}

// Visible returns the visible ids in display order.
func (s *Set) Visible() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.visible)
}

// Toggle flips id. Ids that are not visible are ignored. It reports whether
// id is selected afterwards.
func (s *Set) Toggle(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(s.visible, id) {
		return false
	}
	if _, ok := s.selected[id]; ok {
		delete(s.selected, id)
		return false
	}
	s.selected[id] = struct{}{}
	return true
}

// ToggleAll selects every visible id, or clears the selection if every
// visible id is already selected. It returns the resulting count.
func (s *Set) ToggleAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.visible) > 0 && len(s.selected) == len(s.visible) {
		clear(s.selected)
		return 0
	}
	for _, id := range s.visible {
		s.selected[id] = struct{}{}
	}
	return len(s.selected)
}

// Contains reports whether id is selected.
func (s *Set) Contains(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.selected[id]
	return ok
}

// IDs returns the selected ids in ascending order.
func (s *Set) IDs() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int64, 0, len(s.selected))
	for id := range s.selected {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Len returns the number of selected ids.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.selected)
}

// AllSelected reports whether every visible id is selected.
func (s *Set) AllSelected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.visible) > 0 && len(s.selected) == len(s.visible)
}

// Clear deselects everything.
func (s *Set) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.selected)
}
