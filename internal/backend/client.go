// Seawatch - Maritime Live Operations and Alert Triage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

// Package backend is the client for the upstream maritime REST backend.
//
// Endpoints:
//   - GET  /vessels/        vessel list (bare array or {"vessels": [...]})
//   - GET  /risks/          risk zones (bare array or {"risks": [...]})
//   - GET  /alerts/         paged alerts with stats
//   - POST /alerts/create/  broadcast a new alert
//   - POST /login/          exchange credentials for tokens and a role
//
// Read paths go through a per-endpoint circuit breaker and a shared
// outbound rate limiter. Login owns its own single retry instead.
package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/seawatch/internal/config"
	"github.com/tomtom215/seawatch/internal/logging"
	"github.com/tomtom215/seawatch/internal/metrics"
	"github.com/tomtom215/seawatch/internal/models"
	"github.com/tomtom215/seawatch/internal/validation"
)

// maxErrorBodySize limits how much of an error response is read.
const maxErrorBodySize = 64 * 1024

// AlertQuery is the server-side part of an alert listing request.
type AlertQuery struct {
	Page     int
	PageSize int
	Severity string // "all" or a severity
	Search   string
}

func (q AlertQuery) values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(max(q.Page, 1)))
	v.Set("page_size", strconv.Itoa(q.PageSize))
	severity := q.Severity
	if severity == "" {
		severity = "all"
	}
	v.Set("severity", severity)
	v.Set("search", q.Search)
	return v
}

type ctxKey struct{}

// WithAccessToken returns a context whose requests carry the bearer token.
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, ctxKey{}, token)
}

func accessToken(ctx context.Context) string {
	tok, _ := ctx.Value(ctxKey{}).(string)
	return tok
}

// Client talks to the upstream backend. It is safe for concurrent use.
type Client struct {
	baseURL         string
	http            *http.Client
	limiter         *rate.Limiter
	loginRetryDelay time.Duration

	vessels *breaker
	risks   *breaker
	alerts  *breaker
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// NewClient creates a client for cfg.
func NewClient(cfg *config.BackendConfig, opts ...Option) *Client {
	c := &Client{
		baseURL:         strings.TrimRight(cfg.URL, "/"),
		http:            &http.Client{Timeout: cfg.Timeout},
		limiter:         rate.NewLimiter(rate.Limit(cfg.RateLimit), max(cfg.RateBurst, 1)),
		loginRetryDelay: cfg.LoginRetryDelay,
		vessels:         newBreaker("backend-vessels", cfg.BreakerTimeout),
		risks:           newBreaker("backend-risks", cfg.BreakerTimeout),
		alerts:          newBreaker("backend-alerts", cfg.BreakerTimeout),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BreakerStates reports the state of each read-path circuit breaker.
func (c *Client) BreakerStates() map[string]string {
	return map[string]string{
		"vessels": c.vessels.State(),
		"risks":   c.risks.State(),
		"alerts":  c.alerts.State(),
	}
}

// Vessels fetches the current vessel list.
func (c *Client) Vessels(ctx context.Context) ([]models.Vessel, error) {
	return guarded(c.vessels, func() ([]models.Vessel, error) {
		raw, err := c.getRaw(ctx, "vessels", "/vessels/", nil)
		if err != nil {
			return nil, err
		}
		var list []models.Vessel
		if isJSONArray(raw) {
			err = json.Unmarshal(raw, &list)
		} else {
			var wrapped models.VesselList
			err = json.Unmarshal(raw, &wrapped)
			list = wrapped.Vessels
		}
		if err != nil {
			return nil, fmt.Errorf("%w: vessels: %v", ErrDecode, err)
		}
		return list, nil
	})
}

// RiskZones fetches the current hazard zones.
func (c *Client) RiskZones(ctx context.Context) ([]models.RiskZone, error) {
	return guarded(c.risks, func() ([]models.RiskZone, error) {
		raw, err := c.getRaw(ctx, "risks", "/risks/", nil)
		if err != nil {
			return nil, err
		}
		var list []models.RiskZone
		if isJSONArray(raw) {
			err = json.Unmarshal(raw, &list)
		} else {
			var wrapped models.RiskZoneList
			err = json.Unmarshal(raw, &wrapped)
			list = wrapped.Risks
		}
		if err != nil {
			return nil, fmt.Errorf("%w: risks: %v", ErrDecode, err)
		}
		return list, nil
	})
}

// Alerts fetches one page of alerts.
func (c *Client) Alerts(ctx context.Context, q AlertQuery) (*models.AlertPage, error) {
	return guarded(c.alerts, func() (*models.AlertPage, error) {
		raw, err := c.getRaw(ctx, "alerts", "/alerts/", q.values())
		if err != nil {
			return nil, err
		}
		var page models.AlertPage
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, fmt.Errorf("%w: alerts: %v", ErrDecode, err)
		}
		for i := range page.Results {
			page.Results[i].Severity = models.ParseSeverity(string(page.Results[i].Severity))
		}
		page.Pagination = page.Pagination.Normalize(q.PageSize)
		return &page, nil
	})
}

// CreateAlert broadcasts a new alert. The payload is validated before any
// request is made.
func (c *Client) CreateAlert(ctx context.Context, a models.NewAlert) (*models.Alert, error) {
	if verr := validation.ValidateStruct(&a); verr != nil {
		return nil, verr
	}
	body, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("failed to encode alert: %w", err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, "create_alert", http.MethodPost, "/alerts/create/", nil, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var created models.Alert
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		if errors.Is(err, io.EOF) {
			return &models.Alert{Severity: a.Severity, Message: a.Message, VesselName: a.VesselName}, nil
		}
		return nil, fmt.Errorf("%w: create alert: %v", ErrDecode, err)
	}
	created.Severity = models.ParseSeverity(string(created.Severity))
	return &created, nil
}

// Login exchanges credentials for tokens. An unavailable upstream is retried
// once after the configured delay; a 4xx answer becomes a *LoginError
// carrying the server's detail message.
func (c *Client) Login(ctx context.Context, creds models.Credentials) (*models.LoginResult, error) {
	if verr := validation.ValidateStruct(&creds); verr != nil {
		return nil, verr
	}

	res, err := c.login(ctx, creds)
	if err == nil || !IsUnavailable(err) {
		return res, err
	}

	metrics.LoginRetries.Inc()
	logging.Ctx(ctx).Warn().Err(err).Dur("delay", c.loginRetryDelay).Msg("Login upstream unavailable, retrying once")

	select {
	case <-time.After(c.loginRetryDelay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return c.login(ctx, creds)
}

func (c *Client) login(ctx context.Context, creds models.Credentials) (*models.LoginResult, error) {
	body, err := json.Marshal(creds)
	if err != nil {
		return nil, fmt.Errorf("failed to encode credentials: %w", err)
	}

	resp, err := c.do(ctx, "login", http.MethodPost, "/login/", nil, body)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Code >= 400 && se.Code < 500 {
			return nil, &LoginError{Status: se.Code, Message: loginMessage(se)}
		}
		return nil, err
	}
	defer resp.Body.Close()

	var result models.LoginResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: login: %v", ErrDecode, err)
	}
	if result.Username == "" {
		result.Username = creds.Username
	}
	return &result, nil
}

func loginMessage(se *StatusError) string {
	if se.Detail != "" {
		return se.Detail
	}
	if se.Code == http.StatusUnauthorized {
		return "Invalid username or password"
	}
	return fmt.Sprintf("Login failed (HTTP %d)", se.Code)
}

// getRaw performs a rate-limited GET and returns the body.
func (c *Client) getRaw(ctx context.Context, endpoint, path string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, endpoint, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrUnavailable, endpoint, err)
	}
	return raw, nil
}

// do sends one request with the common headers. Non-2xx responses are
// returned as *StatusError with the body closed.
func (c *Client) do(ctx context.Context, endpoint, method, path string, query url.Values, body []byte) (resp *http.Response, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordUpstreamRequest(endpoint, time.Since(start), err)
	}()

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("ngrok-skip-browser-warning", "true")
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := accessToken(ctx); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err = c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, &StatusError{
			Endpoint: endpoint,
			Code:     resp.StatusCode,
			Detail:   errorDetail(io.LimitReader(resp.Body, maxErrorBodySize)),
		}
	}
	return resp, nil
}

// errorDetail extracts a human-readable message from an error body. It
// understands {"detail": ...}, {"error": ...} and {"message": ...} and
// falls back to the trimmed text.
func errorDetail(r io.Reader) string {
	raw, err := io.ReadAll(r)
	if err != nil || len(bytes.TrimSpace(raw)) == 0 {
		return ""
	}
	var fields map[string]any
	if json.Unmarshal(raw, &fields) == nil {
		for _, key := range []string{"detail", "error", "message", "non_field_errors"} {
			switch v := fields[key].(type) {
			case string:
				return v
			case []any:
				if len(v) > 0 {
					if s, ok := v[0].(string); ok {
						return s
					}
				}
			}
		}
		return ""
	}
	text := strings.TrimSpace(string(raw))
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}

func isJSONArray(raw []byte) bool {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '['
}
