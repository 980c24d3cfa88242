// Seawatch - Maritime Live Operations and Alert Triage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/seawatch/internal/config"
	"github.com/tomtom215/seawatch/internal/models"
	"github.com/tomtom215/seawatch/internal/validation"
)

func testConfig(url string) *config.BackendConfig {
	return &config.BackendConfig{
		URL:             url,
		Timeout:         5 * time.Second,
		LoginRetryDelay: 20 * time.Millisecond,
		RateLimit:       1000,
		RateBurst:       100,
		BreakerTimeout:  time.Minute,
	}
}

func TestVessels_BareArrayAndWrapped(t *testing.T) {
	t.Parallel()

	payloads := map[string]string{
		"bare array": `[{"id": 1, "mmsi": "235009802", "name": "Ocean Star", "last_position_lat": 1.35, "last_position_lon": "103.82", "speed": 12.5}]`,
		"wrapped":    `{"vessels": [{"id": 1, "mmsi": "235009802", "name": "Ocean Star", "last_position_lat": 1.35, "last_position_lon": "103.82", "speed": 12.5}]}`,
	}

	for name, payload := range payloads {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/vessels/" {
					t.Errorf("path = %q, want /vessels/", r.URL.Path)
				}
				if r.Header.Get("ngrok-skip-browser-warning") != "true" {
					t.Error("missing ngrok-skip-browser-warning header")
				}
				_, _ = w.Write([]byte(payload))
			}))
			defer srv.Close()

			vessels, err := NewClient(testConfig(srv.URL)).Vessels(context.Background())
			if err != nil {
				t.Fatalf("Vessels() error = %v", err)
			}
			if len(vessels) != 1 {
				t.Fatalf("got %d vessels, want 1", len(vessels))
			}
			v := vessels[0]
			if v.StableID() != "235009802" {
				t.Errorf("StableID = %q", v.StableID())
			}
			if !v.Lon.Valid || v.Lon.Value != 103.82 {
				t.Errorf("numeric-string longitude not decoded: %+v", v.Lon)
			}
		})
	}
}

func TestRiskZones_Wrapped(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"risks": [{"id": 7, "risk_type": "piracy", "latitude": 12.5, "longitude": 45.0, "radius_km": 80}]}`))
	}))
	defer srv.Close()

	zones, err := NewClient(testConfig(srv.URL)).RiskZones(context.Background())
	if err != nil {
		t.Fatalf("RiskZones() error = %v", err)
	}
	if len(zones) != 1 || zones[0].Kind() != models.ZonePiracy || zones[0].Radius() != 80 {
		t.Errorf("zones = %+v", zones)
	}
}

func TestAlerts_QueryAndNormalize(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("page") != "2" || q.Get("page_size") != "25" || q.Get("severity") != "warning" || q.Get("search") != "rotterdam" {
			t.Errorf("unexpected query %v", q)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("Authorization = %q", got)
		}
		_, _ = w.Write([]byte(`{
			"results": [{"id": 42, "severity": "WARNING", "message": "Port of Rotterdam congestion at 93%. Wait time 50h.", "timestamp": "2026-10-19T08:00:00Z"}],
			"pagination": {"count": 30, "total_pages": 2, "current_page": 2},
			"stats": {"critical": 1, "warning": 20, "total": 30, "avg_wait": 12.5, "worst_port": "Rotterdam"}
		}`))
	}))
	defer srv.Close()

	ctx := WithAccessToken(context.Background(), "tok-1")
	page, err := NewClient(testConfig(srv.URL)).Alerts(ctx, AlertQuery{Page: 2, PageSize: 25, Severity: "warning", Search: "rotterdam"})
	if err != nil {
		t.Fatalf("Alerts() error = %v", err)
	}
	if len(page.Results) != 1 || page.Results[0].Severity != models.SeverityWarning {
		t.Errorf("results = %+v", page.Results)
	}
	if page.Pagination.PageSize != 25 || page.Pagination.CurrentPage != 2 {
		t.Errorf("pagination = %+v", page.Pagination)
	}
	if page.Stats.WorstPort != "Rotterdam" {
		t.Errorf("stats = %+v", page.Stats)
	}
}

func TestErrorTaxonomy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		status          int
		body            string
		wantUnavailable bool
		wantDecode      bool
		wantStatus      int
	}{
		{"bad gateway", http.StatusBadGateway, "", true, false, 502},
		{"service unavailable", http.StatusServiceUnavailable, "", true, false, 503},
		{"not found", http.StatusNotFound, `{"detail": "nope"}`, false, false, 404},
		{"internal error", http.StatusInternalServerError, "", false, false, 500},
		{"html interstitial", http.StatusOK, "<html>ngrok</html>", false, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(testConfig(srv.URL)).Vessels(context.Background())
			if err == nil {
				t.Fatal("expected error")
			}
			if got := IsUnavailable(err); got != tt.wantUnavailable {
				t.Errorf("IsUnavailable = %v, want %v (%v)", got, tt.wantUnavailable, err)
			}
			if got := errors.Is(err, ErrDecode); got != tt.wantDecode {
				t.Errorf("errors.Is(ErrDecode) = %v, want %v", got, tt.wantDecode)
			}
			var se *StatusError
			if tt.wantStatus != 0 {
				if !errors.As(err, &se) || se.Code != tt.wantStatus {
					t.Errorf("StatusError = %v, want code %d", se, tt.wantStatus)
				}
			}
		})
	}
}

func TestCircuitBreakerOpens(t *testing.T) {
	t.Parallel()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	for i := 0; i < 10; i++ {
		_, _ = c.RiskZones(context.Background())
	}
	if c.BreakerStates()["risks"] != "open" {
		t.Fatalf("risks breaker = %q, want open", c.BreakerStates()["risks"])
	}

	before := hits.Load()
	_, err := c.RiskZones(context.Background())
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("err = %v, want ErrCircuitOpen", err)
	}
	if hits.Load() != before {
		t.Error("open circuit still contacted the backend")
	}
	if c.BreakerStates()["vessels"] != "closed" {
		t.Error("vessels breaker should be independent of risks")
	}
}

func TestClientErrorsDoNotTripBreaker(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	for i := 0; i < 15; i++ {
		_, _ = c.Alerts(context.Background(), AlertQuery{PageSize: 10})
	}
	if c.BreakerStates()["alerts"] != "closed" {
		t.Errorf("alerts breaker = %q, want closed", c.BreakerStates()["alerts"])
	}
}

func TestLogin_RetriesOnceWhenUnavailable(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		var creds models.Credentials
		_ = json.NewDecoder(r.Body).Decode(&creds)
		_ = json.NewEncoder(w).Encode(models.LoginResult{Access: "a", Refresh: "r", Role: "OPERATOR", Username: creds.Username})
	}))
	defer srv.Close()

	res, err := NewClient(testConfig(srv.URL)).Login(context.Background(), models.Credentials{Username: "mara", Password: "pw"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
	if res.Role != "OPERATOR" || res.Username != "mara" {
		t.Errorf("result = %+v", res)
	}
}

func TestLogin_GivesUpAfterOneRetry(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusGatewayTimeout)
	}))
	defer srv.Close()

	_, err := NewClient(testConfig(srv.URL)).Login(context.Background(), models.Credentials{Username: "mara", Password: "pw"})
	if !IsUnavailable(err) {
		t.Errorf("err = %v, want unavailable", err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestLogin_RejectedSurfacesDetail(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": "Account is disabled"}`))
	}))
	defer srv.Close()

	_, err := NewClient(testConfig(srv.URL)).Login(context.Background(), models.Credentials{Username: "mara", Password: "pw"})
	var le *LoginError
	if !errors.As(err, &le) {
		t.Fatalf("err = %v, want *LoginError", err)
	}
	if le.Message != "Account is disabled" {
		t.Errorf("Message = %q", le.Message)
	}
	if calls.Load() != 1 {
		t.Errorf("rejected login retried: calls = %d", calls.Load())
	}
}

func TestCreateAlert_ValidatesBeforeSending(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Method != http.MethodPost || r.URL.Path != "/alerts/create/" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 99, "severity": "critical", "message": "Storm warning"}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))

	_, err := c.CreateAlert(context.Background(), models.NewAlert{Severity: "urgent", Message: "x"})
	var verr *validation.RequestValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want validation error", err)
	}
	if calls.Load() != 0 {
		t.Error("invalid alert reached the backend")
	}

	created, err := c.CreateAlert(context.Background(), models.NewAlert{Severity: models.SeverityCritical, Message: "Storm warning"})
	if err != nil {
		t.Fatalf("CreateAlert() error = %v", err)
	}
	if created.ID != 99 {
		t.Errorf("created = %+v", created)
	}
}

func TestErrorDetail(t *testing.T) {
	t.Parallel()
	tests := []struct {
		body string
		want string
	}{
		{`{"detail": "Invalid credentials"}`, "Invalid credentials"},
		{`{"non_field_errors": ["Unable to log in"]}`, "Unable to log in"},
		{`plain text failure`, "plain text failure"},
		{``, ""},
		{`{"other": 1}`, ""},
	}
	for _, tt := range tests {
		if got := errorDetail(strings.NewReader(tt.body)); got != tt.want {
			t.Errorf("errorDetail(%q) = %q, want %q", tt.body, got, tt.want)
		}
	}
}
