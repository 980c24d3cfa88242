// Seawatch - Maritime Live Operations and Alert Triage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package api

import (
	"net/http"
	"time"
)

// HealthLive reports that the process is up.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady returns 200 once the live map has been published at least
// once, 503 before that. Feed and circuit breaker state is included either
// way.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	state := h.live.State()
	ready := state.Revision > 0

	statusCode := http.StatusOK
	status := "ready"
	if !ready {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	respondJSON(w, statusCode, envelope(status, map[string]interface{}{
		"ready_to_serve": ready,
		"revision":       state.Revision,
		"feeds":          h.live.Status(),
		"breakers":       h.upstream.BreakerStates(),
		"consoles":       h.consoles.Len(),
		"uptime":         time.Since(h.startTime).Seconds(),
	}))
}
