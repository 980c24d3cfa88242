// Seawatch - Maritime Live Operations and Alert Triage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package animation

import (
	"errors"
	"testing"
)

func TestSelectionsArePerView(t *testing.T) {
	e := NewEngine(DefaultConfig())
	e.Apply(state(1, rv("A", 1, 1), rv("B", 2, 2)))
	sel := NewSelections(e)

	if err := sel.Select("session-1", "A"); err != nil {
		t.Fatalf("Select(session-1) error = %v", err)
	}
	if err := sel.Select("session-2", "B"); err != nil {
		t.Fatalf("Select(session-2) error = %v", err)
	}
	if id, _ := sel.Selected("session-1"); id != "A" {
		t.Errorf("session-1 selected %q, want A", id)
	}
	if id, _ := sel.Selected("session-2"); id != "B" {
		t.Errorf("session-2 selected %q, want B", id)
	}

	sel.Clear("session-2")
	if _, ok := sel.Selected("session-2"); ok {
		t.Error("Clear left a selection")
	}
	if id, _ := sel.Selected("session-1"); id != "A" {
		t.Errorf("clearing session-2 changed session-1 to %q", id)
	}
}

func TestSelectionsSurviveReorder(t *testing.T) {
	e := NewEngine(DefaultConfig())
	e.Apply(state(1, rv("A", 1, 1), rv("B", 2, 2), rv("C", 3, 3)))
	sel := NewSelections(e)
	_ = sel.Select("s", "B")

	reordered := state(2, rv("C", 3, 3), rv("A", 1, 1), rv("B", 2, 2))
	e.Apply(reordered)
	sel.Reconcile(reordered)
	if id, ok := sel.Selected("s"); !ok || id != "B" {
		t.Errorf("Selected() = %q, %v, want B", id, ok)
	}
}

func TestSelectionsClearedWhenVesselDisappears(t *testing.T) {
	e := NewEngine(DefaultConfig())
	e.Apply(state(1, rv("A", 1, 1), rv("B", 2, 2)))
	sel := NewSelections(e)
	_ = sel.Select("s1", "A")
	_ = sel.Select("s2", "B")

	next := state(2, rv("B", 2, 2))
	e.Apply(next)
	sel.Reconcile(next)
	if _, ok := sel.Selected("s1"); ok {
		t.Error("selection should clear when the vessel leaves the state")
	}
	if id, _ := sel.Selected("s2"); id != "B" {
		t.Errorf("s2 selected %q, want B", id)
	}

	// An older publication arriving late must not resurrect or clear anything.
	sel.Reconcile(state(1))
	if id, _ := sel.Selected("s2"); id != "B" {
		t.Errorf("stale reconcile changed s2 to %q", id)
	}
}

func TestSelectionsRejectUnknownVessel(t *testing.T) {
	e := NewEngine(DefaultConfig())
	e.Apply(state(1, rv("A", 1, 1)))
	sel := NewSelections(e)
	_ = sel.Select("s", "A")

	if err := sel.Select("s", "ghost"); !errors.Is(err, ErrUnknownVessel) {
		t.Errorf("Select(ghost) = %v, want ErrUnknownVessel", err)
	}
	if id, _ := sel.Selected("s"); id != "A" {
		t.Errorf("failed select replaced selection with %q", id)
	}
}
