// Seawatch - Maritime Live Operations and Alert Triage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

// Package middleware holds the HTTP middleware shared by the Seawatch API:
// request correlation and request metrics.
package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/tomtom215/seawatch/internal/logging"
)

type contextKey string

const RequestIDKey contextKey = "request_id"

// SessionHeader carries the console session id.
const SessionHeader = "X-Session-ID"

// RequestID assigns each request an id, reusing an inbound X-Request-ID,
// and seeds the logging context with it and a fresh correlation id. A
// session id header, when present, is added to the logging context too.
func RequestID(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", requestID)

		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		ctx = logging.ContextWithRequestID(ctx, requestID)
		ctx = logging.ContextWithNewCorrelationID(ctx)
		if sessionID := r.Header.Get(SessionHeader); sessionID != "" {
			ctx = logging.ContextWithSessionID(ctx, sessionID)
		}

		next(w, r.WithContext(ctx))
	}
}

// GetRequestID extracts the request ID from context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
