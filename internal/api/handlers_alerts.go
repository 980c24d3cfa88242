// Seawatch - Maritime Live Operations and Alert Triage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/seawatch/internal/backend"
	"github.com/tomtom215/seawatch/internal/logging"
	"github.com/tomtom215/seawatch/internal/models"
	"github.com/tomtom215/seawatch/internal/triage"
)

// AlertsView returns the console, running the first load if needed.
func (h *Handler) AlertsView(w http.ResponseWriter, r *http.Request) {
	view, err := consoleFrom(r).EnsureLoaded(r.Context())
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	respondData(w, http.StatusOK, view)
}

// UpdateQuery applies a partial query change. Search changes are
// debounced; the returned view shows the load as pending.
func (h *Handler) UpdateQuery(w http.ResponseWriter, r *http.Request) {
	var u triage.QueryUpdate
	if !decodeJSON(w, r, &u) {
		return
	}
	view, err := consoleFrom(r).Update(r.Context(), u)
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	respondData(w, http.StatusOK, view)
}

// GoToPage loads page {n}. Out-of-range pages are clamped.
func (h *Handler) GoToPage(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "Page must be an integer", nil)
		return
	}
	view, err := consoleFrom(r).GoToPage(r.Context(), n)
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	respondData(w, http.StatusOK, view)
}

// ReloadAlerts reissues the current query.
func (h *Handler) ReloadAlerts(w http.ResponseWriter, r *http.Request) {
	view, err := consoleFrom(r).Reload(r.Context())
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	respondData(w, http.StatusOK, view)
}

// AcknowledgeAlert marks {id} acknowledged.
func (h *Handler) AcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	id, ok := alertIDParam(w, r)
	if !ok {
		return
	}
	c := consoleFrom(r)
	if err := c.Acknowledge(r.Context(), id); err != nil {
		respondFailure(w, r, err)
		return
	}
	respondData(w, http.StatusOK, c.View(r.Context()))
}

type noteRequest struct {
	Note string `json:"note"`
}

type noteResponse struct {
	ID      int64  `json:"id"`
	Note    string `json:"note"`
	HasNote bool   `json:"has_note"`
}

// GetNote returns the note on {id}.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	id, ok := alertIDParam(w, r)
	if !ok {
		return
	}
	text, has, err := consoleFrom(r).Note(r.Context(), id)
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	respondData(w, http.StatusOK, noteResponse{ID: id, Note: text, HasNote: has})
}

// PutNote replaces the note on {id}. A blank note removes it.
func (h *Handler) PutNote(w http.ResponseWriter, r *http.Request) {
	id, ok := alertIDParam(w, r)
	if !ok {
		return
	}
	var req noteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := consoleFrom(r).EditNote(r.Context(), id, req.Note); err != nil {
		respondFailure(w, r, err)
		return
	}
	blank := strings.TrimSpace(req.Note) == ""
	if blank {
		req.Note = ""
	}
	respondData(w, http.StatusOK, noteResponse{ID: id, Note: req.Note, HasNote: !blank})
}

// ToggleSelect flips the selection of visible alert {id}.
func (h *Handler) ToggleSelect(w http.ResponseWriter, r *http.Request) {
	id, ok := alertIDParam(w, r)
	if !ok {
		return
	}
	c := consoleFrom(r)
	c.ToggleSelect(id)
	respondData(w, http.StatusOK, c.View(r.Context()))
}

// ToggleSelectAll selects every visible alert, or clears the selection if
// all were selected.
func (h *Handler) ToggleSelectAll(w http.ResponseWriter, r *http.Request) {
	c := consoleFrom(r)
	c.ToggleSelectAll()
	respondData(w, http.StatusOK, c.View(r.Context()))
}

type bulkResponse struct {
	Result triage.BulkResult `json:"result"`
	View   triage.View       `json:"view"`
}

// BulkDispatch applies {action} to the selection. An export answers with
// the CSV itself.
func (h *Handler) BulkDispatch(w http.ResponseWriter, r *http.Request) {
	c := consoleFrom(r)
	res, err := c.BulkDispatch(r.Context(), triage.BulkAction(chi.URLParam(r, "action")))
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	if res.Action == triage.BulkExport {
		respondCSV(w, exportFilename(), res.CSV)
		return
	}
	respondData(w, http.StatusOK, bulkResponse{Result: res, View: c.View(r.Context())})
}

// ExportAlerts renders visible alerts as CSV. ?ids= narrows the export to
// the listed alerts.
func (h *Handler) ExportAlerts(w http.ResponseWriter, r *http.Request) {
	ids, err := parseIDList(r.URL.Query().Get("ids"))
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}
	data, err := consoleFrom(r).Export(r.Context(), ids)
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	respondCSV(w, exportFilename(), data)
}

// CreateAlert broadcasts a new alert with the operator's token. The
// backend decides who may broadcast.
func (h *Handler) CreateAlert(w http.ResponseWriter, r *http.Request) {
	var req models.NewAlert
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Severity = models.Severity(strings.ToLower(strings.TrimSpace(string(req.Severity))))
	if verr := validateRequest(&req); verr != nil {
		respondValidation(w, verr)
		return
	}

	c := consoleFrom(r)
	sess, err := h.sessions.Load(r.Context(), c.ID())
	if err != nil {
		respondError(w, http.StatusUnauthorized, ErrCodeSessionRequired, "Sign in again to broadcast alerts", nil)
		return
	}
	ctx := backend.WithAccessToken(r.Context(), sess.AccessToken)
	created, err := h.upstream.CreateAlert(ctx, req)
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	logging.Ctx(r.Context()).Info().
		Str("severity", string(created.Severity)).
		Str("username", sess.Username).
		Msg("Alert broadcast")
	respondData(w, http.StatusCreated, created)
}

func exportFilename() string {
	return fmt.Sprintf("alerts-%s.csv", time.Now().UTC().Format("20060102-150405"))
}
