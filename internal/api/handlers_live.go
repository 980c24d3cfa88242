// Seawatch - Maritime Live Operations and Alert Triage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/seawatch/internal/animation"
	"github.com/tomtom215/seawatch/internal/livesync"
)

type liveResponse struct {
	State    livesync.RenderState           `json:"state"`
	Frames   []animation.Frame              `json:"frames"`
	Selected string                         `json:"selected,omitempty"`
	Feeds    map[string]livesync.FeedStatus `json:"feeds"`
}

// LiveState returns the current render state with the animation frames
// of the last vessel fetch. The session's inspected vessel is flagged.
func (h *Handler) LiveState(w http.ResponseWriter, r *http.Request) {
	selected, _ := h.selections.Selected(consoleFrom(r).ID())
	respondData(w, http.StatusOK, liveResponse{
		State:    h.live.State(),
		Frames:   h.engine.Frames(selected),
		Selected: selected,
		Feeds:    h.live.Status(),
	})
}

// SelectVessel makes a vessel the session's inspected vessel. Other
// sessions keep their own selection.
func (h *Handler) SelectVessel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.selections.Select(consoleFrom(r).ID(), id); err != nil {
		respondFailure(w, r, err)
		return
	}
	respondData(w, http.StatusOK, map[string]string{"selected": id})
}

// ClearVesselSelection removes the session's map highlight.
func (h *Handler) ClearVesselSelection(w http.ResponseWriter, r *http.Request) {
	h.selections.Clear(consoleFrom(r).ID())
	respondData(w, http.StatusOK, map[string]string{"selected": ""})
}

// VesselRoute returns the dead-reckoning preview for a vessel.
func (h *Handler) VesselRoute(w http.ResponseWriter, r *http.Request) {
	route, err := h.engine.RoutePreview(chi.URLParam(r, "id"))
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	respondData(w, http.StatusOK, route)
}
