// Seawatch - Maritime Live Operations and Alert Triage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package api

import (
	"net/http"

	"github.com/tomtom215/seawatch/internal/authz"
	"github.com/tomtom215/seawatch/internal/logging"
	"github.com/tomtom215/seawatch/internal/middleware"
	"github.com/tomtom215/seawatch/internal/models"
	"github.com/tomtom215/seawatch/internal/session"
)

type loginResponse struct {
	SessionID    string         `json:"session_id"`
	Username     string         `json:"username"`
	Role         authz.Role     `json:"role"`
	Capabilities []authz.Action `json:"capabilities"`
}

// Login exchanges credentials with the backend and opens a triage console.
// The returned session id goes in the X-Session-ID header from then on.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if !decodeJSON(w, r, &creds) {
		return
	}
	if verr := validateRequest(&creds); verr != nil {
		respondValidation(w, verr)
		return
	}

	res, err := h.upstream.Login(r.Context(), creds)
	if err != nil {
		logging.Ctx(r.Context()).Warn().
			Str("username", sanitizeLogValue(creds.Username)).
			Err(err).
			Msg("Login failed")
		respondFailure(w, r, err)
		return
	}
	if res.Username == "" {
		res.Username = creds.Username
	}

	sess := session.FromLogin(res, h.tokens)
	console, err := h.consoles.Open(r.Context(), sess)
	if err != nil {
		respondFailure(w, r, err)
		return
	}

	respondData(w, http.StatusOK, loginResponse{
		SessionID:    sess.ID,
		Username:     sess.Username,
		Role:         sess.Role,
		Capabilities: console.Capabilities(),
	})
}

// Logout closes the console and forgets the session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	id := r.Header.Get(middleware.SessionHeader)
	if id == "" {
		respondError(w, http.StatusUnauthorized, ErrCodeSessionRequired, "No session to close", nil)
		return
	}
	if err := h.consoles.Close(r.Context(), id); err != nil {
		respondFailure(w, r, err)
		return
	}
	h.selections.Clear(id)
	respondData(w, http.StatusOK, map[string]bool{"logged_out": true})
}

// Capabilities lists the session's allowed actions alongside the full
// role matrix.
func (h *Handler) Capabilities(w http.ResponseWriter, r *http.Request) {
	c := consoleFrom(r)
	respondData(w, http.StatusOK, map[string]interface{}{
		"role":         c.Role(),
		"capabilities": c.Capabilities(),
		"matrix":       h.authorizer.Matrix(),
	})
}
