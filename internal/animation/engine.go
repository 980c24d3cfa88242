// Seawatch - Maritime Live Operations and Alert Triage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

// Package animation decides how vessel markers move between render states.
//
// A vessel seen for the first time is placed. A vessel that moved less than
// the noise threshold holds its rendered position, which keeps a stationary
// vessel from jittering on every poll. Anything else animates to the new
// position. Frames are recomputed only when a new vessel fetch lands; a
// publication caused by the zones feed alone keeps the frames of the last
// vessel fetch, so an animation is never downgraded to a hold.
//
// The inspected vessel of each console view is tracked separately by
// Selections, keyed by vessel id so reordering the feed never moves the
// highlight to another vessel.
package animation

import (
	"errors"
	"sync"
	"time"

	"github.com/tomtom215/seawatch/internal/geo"
	"github.com/tomtom215/seawatch/internal/livesync"
)

// Action is what the renderer should do with a marker.
type Action string

const (
	ActionPlace   Action = "place"
	ActionAnimate Action = "animate"
	ActionHold    Action = "hold"
)

var (
	// ErrUnknownVessel is returned for ids not in the current render state.
	ErrUnknownVessel = errors.New("animation: vessel not in current render state")

	// ErrNoMotion is returned when a route cannot be projected because the
	// vessel reports no speed or course.
	ErrNoMotion = errors.New("animation: vessel has no speed or course")
)

// Frame is the instruction for one marker.
type Frame struct {
	ID       string        `json:"id"`
	Action   Action        `json:"action"`
	From     geo.Point     `json:"from"`
	To       geo.Point     `json:"to"`
	Meters   float64       `json:"meters"`
	Duration time.Duration `json:"duration"`
	Selected bool          `json:"selected,omitempty"`
}

// Config tunes the engine.
type Config struct {
	NoiseMeters        float64
	TransitionDuration time.Duration
	RouteHorizons      []time.Duration
}

// DefaultConfig returns a 10 m noise floor, a 2 s transition, and
// 15/30/60 minute route horizons.
func DefaultConfig() Config {
	return Config{
		NoiseMeters:        10,
		TransitionDuration: 2 * time.Second,
		RouteHorizons:      []time.Duration{15 * time.Minute, 30 * time.Minute, time.Hour},
	}
}

// Engine holds rendered marker positions across render states. It is
// shared by every view; per-view state lives in Selections.
type Engine struct {
	cfg Config

	mu       sync.RWMutex
	rendered map[string]geo.Point
	state    livesync.RenderState
	frames   []Frame
}

// NewEngine creates an engine with no rendered markers.
func NewEngine(cfg Config) *Engine {
	return &Engine{
		cfg:      cfg,
		rendered: make(map[string]geo.Point),
		frames:   []Frame{},
	}
}

// Apply computes frames for a new render state and updates rendered
// positions. It yields nil for states older than the last applied
// revision, and for states whose vessel fetch was already applied; the
// latter still replace the state used for route previews.
func (e *Engine) Apply(state livesync.RenderState) []Frame {
	e.mu.Lock()
	defer e.mu.Unlock()

	if state.Revision != 0 && state.Revision <= e.state.Revision {
		return nil
	}
	if state.VesselsGeneration != 0 && state.VesselsGeneration == e.state.VesselsGeneration {
		e.state = state
		return nil
	}

	next := make(map[string]geo.Point, len(state.Vessels))
	frames := make([]Frame, 0, len(state.Vessels))
	for i := range state.Vessels {
		v := &state.Vessels[i]
		f := e.frameFor(v.ID, v.Position)
		next[v.ID] = f.To
		frames = append(frames, f)
	}

	e.rendered = next
	e.state = state
	e.frames = frames
	return frames
}

func (e *Engine) frameFor(id string, to geo.Point) Frame {
	prev, ok := e.rendered[id]
	if !ok {
		return Frame{ID: id, Action: ActionPlace, From: to, To: to}
	}
	d := geo.HaversineMeters(prev, to)
	if d < e.cfg.NoiseMeters {
		return Frame{ID: id, Action: ActionHold, From: prev, To: prev, Meters: d}
	}
	return Frame{ID: id, Action: ActionAnimate, From: prev, To: to, Meters: d, Duration: e.cfg.TransitionDuration}
}

// Frames returns a copy of the frames of the last applied vessel fetch,
// with Selected set on the frame of vessel selected (if any).
func (e *Engine) Frames(selected string) []Frame {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Frame, len(e.frames))
	copy(out, e.frames)
	for i := range out {
		out[i].Selected = selected != "" && out[i].ID == selected
	}
	return out
}

// Position returns the rendered position of id.
func (e *Engine) Position(id string) (geo.Point, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	p, ok := e.rendered[id]
	return p, ok
}
