// Seawatch - Maritime Live Operations and Alert Triage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

// Package api exposes the live map and the triage console over HTTP.
//
// Handler methods are split across files:
//   - handlers.go: Handler struct, constructor, session middleware
//   - handlers_helpers.go: response and parsing helpers, error mapping
//   - handlers_health.go: liveness and readiness checks
//   - handlers_auth.go: login, logout, capabilities
//   - handlers_live.go: live map state, vessel selection, route preview
//   - handlers_alerts.go: triage console endpoints
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/seawatch/internal/animation"
	"github.com/tomtom215/seawatch/internal/authz"
	"github.com/tomtom215/seawatch/internal/livesync"
	"github.com/tomtom215/seawatch/internal/middleware"
	"github.com/tomtom215/seawatch/internal/models"
	"github.com/tomtom215/seawatch/internal/session"
	"github.com/tomtom215/seawatch/internal/triage"
)

// Upstream is the part of the backend client the handlers call directly.
type Upstream interface {
	Login(ctx context.Context, creds models.Credentials) (*models.LoginResult, error)
	CreateAlert(ctx context.Context, a models.NewAlert) (*models.Alert, error)
	BreakerStates() map[string]string
}

// LiveSource is the published live map.
type LiveSource interface {
	State() livesync.RenderState
	Status() map[string]livesync.FeedStatus
}

// Handler contains dependencies for API handlers.
type Handler struct {
	upstream   Upstream
	live       LiveSource
	engine     *animation.Engine
	selections *animation.Selections
	consoles   *triage.Registry
	sessions   *session.Store
	tokens     *session.TokenReader
	authorizer *authz.Authorizer
	startTime  time.Time
}

// Deps groups the handler's collaborators.
type Deps struct {
	Upstream   Upstream
	Live       LiveSource
	Engine     *animation.Engine
	Selections *animation.Selections
	Consoles   *triage.Registry
	Sessions   *session.Store
	Tokens     *session.TokenReader
	Authorizer *authz.Authorizer
}

// NewHandler creates a new API handler. A nil Deps.Selections gets an
// empty table over Deps.Engine; the caller then owns reconciling it.
func NewHandler(d Deps) *Handler {
	if d.Selections == nil && d.Engine != nil {
		d.Selections = animation.NewSelections(d.Engine)
	}
	return &Handler{
		upstream:   d.Upstream,
		live:       d.Live,
		engine:     d.Engine,
		selections: d.Selections,
		consoles:   d.Consoles,
		sessions:   d.Sessions,
		tokens:     d.Tokens,
		authorizer: d.Authorizer,
		startTime:  time.Now(),
	}
}

type consoleKey struct{}

// RequireSession resolves the X-Session-ID header to a triage console.
// Requests without a known session are answered 401.
func (h *Handler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		console, err := h.consoles.Get(r.Context(), r.Header.Get(middleware.SessionHeader))
		if err != nil {
			respondFailure(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), consoleKey{}, console)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// consoleFrom returns the console RequireSession attached.
func consoleFrom(r *http.Request) *triage.Console {
	c, _ := r.Context().Value(consoleKey{}).(*triage.Console)
	return c
}
