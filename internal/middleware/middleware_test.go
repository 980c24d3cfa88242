// Seawatch - Maritime Live Operations and Alert Triage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/seawatch/internal/logging"
	"github.com/tomtom215/seawatch/internal/metrics"
)

func TestRequestIDGeneratesNewID(t *testing.T) {
	var capturedID, loggedID string
	handler := RequestID(func(w http.ResponseWriter, r *http.Request) {
		capturedID = GetRequestID(r.Context())
		loggedID = logging.RequestIDFromContext(r.Context())
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/live", nil))

	responseID := rec.Header().Get("X-Request-ID")
	if _, err := uuid.Parse(responseID); err != nil {
		t.Fatalf("X-Request-ID %q is not a UUID: %v", responseID, err)
	}
	if capturedID != responseID || loggedID != responseID {
		t.Errorf("context ids = %q / %q, header = %q", capturedID, loggedID, responseID)
	}
}

func TestRequestIDPreservesInboundIDAndSession(t *testing.T) {
	var requestID, sessionID string
	handler := RequestID(func(w http.ResponseWriter, r *http.Request) {
		requestID = GetRequestID(r.Context())
		sessionID = logging.SessionIDFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/alerts", nil)
	req.Header.Set("X-Request-ID", "upstream-123")
	req.Header.Set(SessionHeader, "sess-9")
	handler(httptest.NewRecorder(), req)

	if requestID != "upstream-123" {
		t.Errorf("request id = %q", requestID)
	}
	if sessionID != "sess-9" {
		t.Errorf("session id = %q", sessionID)
	}
}

func TestPrometheusMetricsUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler { return PrometheusMetrics(next.ServeHTTP) })
	r.Post("/api/v1/alerts/{id}/ack", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	pattern := "/api/v1/alerts/{id}/ack"
	counter := metrics.APIRequestsTotal.WithLabelValues(http.MethodPost, pattern, "403")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"1", "2", "3"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/alerts/"+id+"/ack", nil))
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d", rec.Code)
		}
	}

	if got := testutil.ToFloat64(counter); got != before+3 {
		t.Errorf("requests for %s = %v, want %v", pattern, got, before+3)
	}
}

func TestRoutePatternUnmatched(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/nowhere", nil)
	if got := routePattern(req); got != "unmatched" {
		t.Errorf("routePattern = %q", got)
	}
}
