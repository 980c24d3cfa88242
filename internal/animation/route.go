// Seawatch - Maritime Live Operations and Alert Triage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package animation

import (
	"time"

	"github.com/tomtom215/seawatch/internal/geo"
)

// RoutePoint is a projected position after a fixed horizon.
type RoutePoint struct {
	After    time.Duration `json:"after"`
	Position geo.Point     `json:"position"`
}

// Route is a dead-reckoning preview along the reported course and speed.
type Route struct {
	ID         string       `json:"id"`
	From       geo.Point    `json:"from"`
	SpeedKnots float64      `json:"speed_knots"`
	Course     float64      `json:"course"`
	Points     []RoutePoint `json:"points"`
}

// RoutePreview projects vessel id forward over the configured horizons
// from its last reported position. Vessels without speed or course have no
// preview; nothing is fabricated for them.
func (e *Engine) RoutePreview(id string) (Route, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	v, ok := e.state.Vessel(id)
	if !ok {
		return Route{}, ErrUnknownVessel
	}
	if !v.Speed.Valid || !v.Course.Valid {
		return Route{}, ErrNoMotion
	}

	mps := geo.KnotsToMetersPerSecond(v.Speed.Value)
	route := Route{
		ID:         id,
		From:       v.Position,
		SpeedKnots: v.Speed.Value,
		Course:     v.Course.Value,
		Points:     make([]RoutePoint, 0, len(e.cfg.RouteHorizons)),
	}
	for _, h := range e.cfg.RouteHorizons {
		route.Points = append(route.Points, RoutePoint{
			After:    h,
			Position: geo.Project(v.Position, v.Course.Value, mps*h.Seconds()),
		})
	}
	return route, nil
}
