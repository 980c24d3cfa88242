// Seawatch - Maritime Live Operations and Alert Triage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/seawatch/internal/alerts"
	"github.com/tomtom215/seawatch/internal/animation"
	"github.com/tomtom215/seawatch/internal/authz"
	"github.com/tomtom215/seawatch/internal/backend"
	"github.com/tomtom215/seawatch/internal/config"
	"github.com/tomtom215/seawatch/internal/geo"
	"github.com/tomtom215/seawatch/internal/kv"
	"github.com/tomtom215/seawatch/internal/livesync"
	"github.com/tomtom215/seawatch/internal/middleware"
	"github.com/tomtom215/seawatch/internal/models"
	"github.com/tomtom215/seawatch/internal/session"
	"github.com/tomtom215/seawatch/internal/triage"
)

var upstreamRoles = map[string]string{
	"mara": "OPERATOR",
	"ana":  "ANALYST",
	"ada":  "ADMIN",
}

// fakeUpstream is the maritime backend: login, a three-alert listing, and
// alert creation restricted to the admin token.
type fakeUpstream struct {
	mu        sync.Mutex
	authSeen  []string
	severity  []string
	broadcast []models.NewAlert
}

func (f *fakeUpstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/login/":
		var creds models.Credentials
		_ = json.NewDecoder(r.Body).Decode(&creds)
		role, ok := upstreamRoles[creds.Username]
		if !ok || creds.Password != "pw" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error": "Invalid credentials"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(models.LoginResult{
			Access: "tok-" + creds.Username, Refresh: "r", Role: role, Username: creds.Username,
		})
	case r.Method == http.MethodGet && r.URL.Path == "/alerts/":
		f.mu.Lock()
		f.authSeen = append(f.authSeen, r.Header.Get("Authorization"))
		f.severity = append(f.severity, r.URL.Query().Get("severity"))
		f.mu.Unlock()
		ts := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
		_ = json.NewEncoder(w).Encode(models.AlertPage{
			Results: []models.Alert{
				{ID: 41, Severity: "critical", Message: "Port of Rotterdam congestion at 95% - wait time 50h", VesselName: "Nordic Star", Timestamp: ts},
				{ID: 42, Severity: "warning", Message: "Engine temperature high", VesselName: "Aurora", Timestamp: ts},
				{ID: 43, Severity: "info", Message: "Arrived at berth", VesselName: "Kestrel", Timestamp: ts},
			},
			Pagination: models.Pagination{Count: 3, TotalPages: 1, CurrentPage: 1, PageSize: 10},
			Stats:      models.AlertStats{Critical: 1, Warning: 1, Total: 3},
		})
	case r.Method == http.MethodPost && r.URL.Path == "/alerts/create/":
		if r.Header.Get("Authorization") != "Bearer tok-ada" {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"detail": "Admins only"}`))
			return
		}
		var a models.NewAlert
		_ = json.NewDecoder(r.Body).Decode(&a)
		f.mu.Lock()
		f.broadcast = append(f.broadcast, a)
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(models.Alert{ID: 99, Severity: a.Severity, Message: a.Message})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type fakeLive struct {
	mu    sync.Mutex
	state livesync.RenderState
}

func (f *fakeLive) State() livesync.RenderState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeLive) Status() map[string]livesync.FeedStatus {
	return map[string]livesync.FeedStatus{"vessels": {}, "zones": {}}
}

func (f *fakeLive) set(s livesync.RenderState) {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()
}

type testEnv struct {
	srv      *httptest.Server
	upstream *fakeUpstream
	live       *fakeLive
	engine     *animation.Engine
	selections *animation.Selections
}

func newTestEnv(t *testing.T, limits bool) *testEnv {
	t.Helper()
	up := &fakeUpstream{}
	upSrv := httptest.NewServer(up)
	t.Cleanup(upSrv.Close)

	client := backend.NewClient(&config.BackendConfig{
		URL:             upSrv.URL,
		Timeout:         5 * time.Second,
		LoginRetryDelay: 10 * time.Millisecond,
		RateLimit:       1000,
		RateBurst:       100,
		BreakerTimeout:  time.Minute,
	})
	store := kv.NewMemory()
	sessions := session.NewStore(store)
	authorizer := authz.MustNew()
	fetchers := func(token string) alerts.Fetcher {
		return alerts.BackendFetcher{Client: client, Token: token}
	}
	registry := triage.NewRegistry(context.Background(), fetchers, authorizer, store, sessions,
		triage.Options{Debounce: 20 * time.Millisecond, PageSize: 10, NoticeLimit: 20})
	t.Cleanup(registry.Shutdown)

	live := &fakeLive{}
	engine := animation.NewEngine(animation.DefaultConfig())
	selections := animation.NewSelections(engine)
	h := NewHandler(Deps{
		Upstream:   client,
		Live:       live,
		Engine:     engine,
		Selections: selections,
		Consoles:   registry,
		Sessions:   sessions,
		Tokens:     session.NewTokenReader(""),
		Authorizer: authorizer,
	})

	mwCfg := DefaultChiMiddlewareConfig()
	mwCfg.CORSAllowedOrigins = []string{"*"}
	mwCfg.RateLimitDisabled = !limits
	srv := httptest.NewServer(NewRouter(h, NewChiMiddleware(mwCfg)).SetupChi())
	t.Cleanup(srv.Close)

	return &testEnv{srv: srv, upstream: up, live: live, engine: engine, selections: selections}
}

type envelopeBody struct {
	Status string           `json:"status"`
	Data   json.RawMessage  `json:"data"`
	Error  *models.APIError `json:"error"`
}

type response struct {
	code   int
	header http.Header
	raw    []byte
	body   envelopeBody
}

func (e *testEnv) do(t *testing.T, method, path, sessionID string, body interface{}) response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, reader)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.Header.Set(middleware.SessionHeader, sessionID)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	out := response{code: resp.StatusCode, header: resp.Header, raw: buf.Bytes()}
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(out.raw, &out.body); err != nil {
			t.Fatalf("decode envelope: %v (%s)", err, out.raw)
		}
	}
	return out
}

func (r response) decode(t *testing.T, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(r.body.Data, v); err != nil {
		t.Fatalf("decode data: %v (%s)", err, r.body.Data)
	}
}

func (r response) errorCode() string {
	if r.body.Error == nil {
		return ""
	}
	return r.body.Error.Code
}

func (e *testEnv) login(t *testing.T, username string) string {
	t.Helper()
	res := e.do(t, http.MethodPost, "/api/v1/auth/login", "", models.Credentials{Username: username, Password: "pw"})
	if res.code != http.StatusOK {
		t.Fatalf("login %s: status %d (%s)", username, res.code, res.raw)
	}
	var lr loginResponse
	res.decode(t, &lr)
	if lr.SessionID == "" {
		t.Fatal("login returned no session id")
	}
	return lr.SessionID
}

type viewBody struct {
	Rows []struct {
		ID           int64  `json:"id"`
		Acknowledged bool   `json:"acknowledged"`
		Note         string `json:"note"`
		HighRisk     bool   `json:"high_risk"`
	} `json:"rows"`
	RangeLabel  string          `json:"range_label"`
	Selected    []int64         `json:"selected"`
	AllSelected bool            `json:"all_selected"`
	Role        string          `json:"role"`
	Notices     []triage.Notice `json:"notices"`
}

func TestHealthReadyFollowsLiveState(t *testing.T) {
	env := newTestEnv(t, false)

	if res := env.do(t, http.MethodGet, "/api/v1/health/live", "", nil); res.code != http.StatusOK {
		t.Errorf("liveness = %d", res.code)
	}
	if res := env.do(t, http.MethodGet, "/api/v1/health/ready", "", nil); res.code != http.StatusServiceUnavailable {
		t.Errorf("ready before first publication = %d, want 503", res.code)
	}
	env.live.set(livesync.RenderState{Revision: 1})
	res := env.do(t, http.MethodGet, "/api/v1/health/ready", "", nil)
	if res.code != http.StatusOK || res.body.Status != "ready" {
		t.Errorf("ready after publication = %d %q", res.code, res.body.Status)
	}
}

func TestLoginOpensConsole(t *testing.T) {
	env := newTestEnv(t, false)

	res := env.do(t, http.MethodPost, "/api/v1/auth/login", "", models.Credentials{Username: "mara", Password: "pw"})
	if res.code != http.StatusOK {
		t.Fatalf("login status = %d (%s)", res.code, res.raw)
	}
	var lr loginResponse
	res.decode(t, &lr)
	if lr.Role != authz.RoleOperator {
		t.Errorf("role = %q", lr.Role)
	}
	if len(lr.Capabilities) == 0 || lr.Capabilities[0] != authz.ActionAcknowledge {
		t.Errorf("capabilities = %v", lr.Capabilities)
	}

	res = env.do(t, http.MethodGet, "/api/v1/alerts", lr.SessionID, nil)
	if res.code != http.StatusOK {
		t.Fatalf("alerts status = %d (%s)", res.code, res.raw)
	}
	var v viewBody
	res.decode(t, &v)
	if len(v.Rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(v.Rows))
	}
	if !v.Rows[0].HighRisk {
		t.Error("Rotterdam alert at 95% not flagged high risk")
	}
	if v.RangeLabel != "Showing 1–3 of 3" {
		t.Errorf("range label = %q", v.RangeLabel)
	}

	env.upstream.mu.Lock()
	defer env.upstream.mu.Unlock()
	if len(env.upstream.authSeen) == 0 || env.upstream.authSeen[0] != "Bearer tok-mara" {
		t.Errorf("upstream authorization = %v", env.upstream.authSeen)
	}
}

func TestLoginFailures(t *testing.T) {
	env := newTestEnv(t, false)

	res := env.do(t, http.MethodPost, "/api/v1/auth/login", "", models.Credentials{Username: "mara", Password: "nope"})
	if res.code != http.StatusUnauthorized || res.errorCode() != ErrCodeLoginFailed {
		t.Fatalf("bad password = %d %q", res.code, res.errorCode())
	}
	if res.body.Error.Message != "Invalid credentials" {
		t.Errorf("message = %q", res.body.Error.Message)
	}

	res = env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "mara"})
	if res.code != http.StatusBadRequest || res.errorCode() != ErrCodeValidation {
		t.Errorf("missing password = %d %q", res.code, res.errorCode())
	}
}

func TestSessionRequired(t *testing.T) {
	env := newTestEnv(t, false)

	for _, id := range []string{"", "no-such-session"} {
		res := env.do(t, http.MethodGet, "/api/v1/alerts", id, nil)
		if res.code != http.StatusUnauthorized || res.errorCode() != ErrCodeSessionRequired {
			t.Errorf("session %q: %d %q", id, res.code, res.errorCode())
		}
	}

	sid := env.login(t, "mara")
	if res := env.do(t, http.MethodPost, "/api/v1/auth/logout", sid, nil); res.code != http.StatusOK {
		t.Fatalf("logout = %d", res.code)
	}
	if res := env.do(t, http.MethodGet, "/api/v1/alerts", sid, nil); res.code != http.StatusUnauthorized {
		t.Errorf("alerts after logout = %d, want 401", res.code)
	}
}

func TestAcknowledgeByRole(t *testing.T) {
	env := newTestEnv(t, false)

	analyst := env.login(t, "ana")
	env.do(t, http.MethodGet, "/api/v1/alerts", analyst, nil)
	res := env.do(t, http.MethodPost, "/api/v1/alerts/41/ack", analyst, nil)
	if res.code != http.StatusForbidden || res.errorCode() != ErrCodePermissionDenied {
		t.Fatalf("analyst ack = %d %q", res.code, res.errorCode())
	}
	if res.body.Error.Message != "Permission denied: ANALYST cannot acknowledge alerts" {
		t.Errorf("message = %q", res.body.Error.Message)
	}

	operator := env.login(t, "mara")
	env.do(t, http.MethodGet, "/api/v1/alerts", operator, nil)
	res = env.do(t, http.MethodPost, "/api/v1/alerts/41/ack", operator, nil)
	if res.code != http.StatusOK {
		t.Fatalf("operator ack = %d (%s)", res.code, res.raw)
	}
	var v viewBody
	res.decode(t, &v)
	if !v.Rows[0].Acknowledged || v.Rows[1].Acknowledged {
		t.Errorf("acknowledged flags = %v %v", v.Rows[0].Acknowledged, v.Rows[1].Acknowledged)
	}

	if res := env.do(t, http.MethodPost, "/api/v1/alerts/abc/ack", operator, nil); res.code != http.StatusBadRequest {
		t.Errorf("non-numeric id = %d", res.code)
	}
}

func TestNotesByRole(t *testing.T) {
	env := newTestEnv(t, false)
	admin := env.login(t, "ada")

	res := env.do(t, http.MethodPut, "/api/v1/alerts/42/note", admin, noteRequest{Note: "Tug requested"})
	if res.code != http.StatusOK {
		t.Fatalf("admin note = %d (%s)", res.code, res.raw)
	}
	res = env.do(t, http.MethodGet, "/api/v1/alerts/42/note", admin, nil)
	var nr noteResponse
	res.decode(t, &nr)
	if nr.Note != "Tug requested" || !nr.HasNote {
		t.Errorf("note = %+v", nr)
	}

	// Notes are per operator; the analyst sees an empty note but may look.
	analyst := env.login(t, "ana")
	if res := env.do(t, http.MethodGet, "/api/v1/alerts/42/note", analyst, nil); res.code != http.StatusOK {
		t.Errorf("analyst view note = %d", res.code)
	}
	res = env.do(t, http.MethodPut, "/api/v1/alerts/42/note", analyst, noteRequest{Note: "x"})
	if res.code != http.StatusForbidden || res.body.Error.Message != "Permission denied: ANALYST cannot edit notes" {
		t.Errorf("analyst edit = %d %+v", res.code, res.body.Error)
	}

	res = env.do(t, http.MethodPut, "/api/v1/alerts/42/note", admin, noteRequest{Note: strings.Repeat("a", 2001)})
	if res.code != http.StatusBadRequest || res.errorCode() != ErrCodeValidation {
		t.Errorf("long note = %d %q", res.code, res.errorCode())
	}

	res = env.do(t, http.MethodPut, "/api/v1/alerts/42/note", admin, noteRequest{Note: "   "})
	res.decode(t, &nr)
	if nr.HasNote {
		t.Error("blank note still reported")
	}
}

func TestBulkExportAnswersCSV(t *testing.T) {
	env := newTestEnv(t, false)
	admin := env.login(t, "ada")
	env.do(t, http.MethodGet, "/api/v1/alerts", admin, nil)

	res := env.do(t, http.MethodPost, "/api/v1/alerts/select-all", admin, nil)
	var v viewBody
	res.decode(t, &v)
	if !v.AllSelected || len(v.Selected) != 3 {
		t.Fatalf("select-all = %v %v", v.AllSelected, v.Selected)
	}

	res = env.do(t, http.MethodPost, "/api/v1/alerts/bulk/export", admin, nil)
	if res.code != http.StatusOK {
		t.Fatalf("bulk export = %d (%s)", res.code, res.raw)
	}
	if ct := res.header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type = %q", ct)
	}
	lines := strings.Split(strings.TrimSpace(string(res.raw)), "\n")
	if len(lines) != 4 || !strings.HasPrefix(lines[0], "id,severity,") {
		t.Errorf("csv = %q", res.raw)
	}

	res = env.do(t, http.MethodGet, "/api/v1/alerts", admin, nil)
	res.decode(t, &v)
	if len(v.Selected) != 0 {
		t.Errorf("selection after bulk = %v", v.Selected)
	}
}

func TestBulkFailures(t *testing.T) {
	env := newTestEnv(t, false)
	operator := env.login(t, "mara")
	env.do(t, http.MethodGet, "/api/v1/alerts", operator, nil)

	tests := []struct {
		name   string
		path   string
		status int
		code   string
	}{
		{"empty selection", "/api/v1/alerts/bulk/acknowledge", http.StatusBadRequest, ErrCodeEmptySelection},
		{"unknown action", "/api/v1/alerts/bulk/delete", http.StatusBadRequest, ErrCodeBadRequest},
		{"not allowed", "/api/v1/alerts/bulk/export", http.StatusForbidden, ErrCodePermissionDenied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := env.do(t, http.MethodPost, tt.path, operator, nil)
			if res.code != tt.status || res.errorCode() != tt.code {
				t.Errorf("got %d %q, want %d %q", res.code, res.errorCode(), tt.status, tt.code)
			}
		})
	}
}

func TestBulkAcknowledge(t *testing.T) {
	env := newTestEnv(t, false)
	operator := env.login(t, "mara")
	env.do(t, http.MethodGet, "/api/v1/alerts", operator, nil)
	env.do(t, http.MethodPost, "/api/v1/alerts/select/41", operator, nil)
	env.do(t, http.MethodPost, "/api/v1/alerts/select/43", operator, nil)

	res := env.do(t, http.MethodPost, "/api/v1/alerts/bulk/acknowledge", operator, nil)
	if res.code != http.StatusOK {
		t.Fatalf("bulk ack = %d (%s)", res.code, res.raw)
	}
	var br struct {
		Result triage.BulkResult `json:"result"`
		View   viewBody          `json:"view"`
	}
	res.decode(t, &br)
	if len(br.Result.IDs) != 2 || br.Result.IDs[0] != 41 || br.Result.IDs[1] != 43 {
		t.Errorf("ids = %v", br.Result.IDs)
	}
	acked := map[int64]bool{}
	for _, row := range br.View.Rows {
		acked[row.ID] = row.Acknowledged
	}
	if !acked[41] || acked[42] || !acked[43] {
		t.Errorf("acknowledged = %v", acked)
	}
}

func TestExportByIDs(t *testing.T) {
	env := newTestEnv(t, false)
	analyst := env.login(t, "ana")
	env.do(t, http.MethodGet, "/api/v1/alerts", analyst, nil)

	res := env.do(t, http.MethodGet, "/api/v1/alerts/export?ids=42", analyst, nil)
	if res.code != http.StatusOK {
		t.Fatalf("export = %d (%s)", res.code, res.raw)
	}
	lines := strings.Split(strings.TrimSpace(string(res.raw)), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[1], "42,warning,Aurora,") {
		t.Errorf("csv = %q", res.raw)
	}

	if res := env.do(t, http.MethodGet, "/api/v1/alerts/export?ids=4x", analyst, nil); res.code != http.StatusBadRequest {
		t.Errorf("bad ids = %d", res.code)
	}
}

func TestUpdateQuery(t *testing.T) {
	env := newTestEnv(t, false)
	operator := env.login(t, "mara")
	env.do(t, http.MethodGet, "/api/v1/alerts", operator, nil)

	res := env.do(t, http.MethodPut, "/api/v1/alerts/query", operator, map[string]string{"severity": "critical"})
	if res.code != http.StatusOK {
		t.Fatalf("update = %d (%s)", res.code, res.raw)
	}
	env.upstream.mu.Lock()
	last := env.upstream.severity[len(env.upstream.severity)-1]
	env.upstream.mu.Unlock()
	if last != "critical" {
		t.Errorf("upstream severity = %q", last)
	}

	res = env.do(t, http.MethodPut, "/api/v1/alerts/query", operator, map[string]int{"page_size": 7})
	if res.code != http.StatusBadRequest || res.errorCode() != ErrCodeValidation {
		t.Errorf("bad page size = %d %q", res.code, res.errorCode())
	}

	if res := env.do(t, http.MethodPost, "/api/v1/alerts/page/x", operator, nil); res.code != http.StatusBadRequest {
		t.Errorf("bad page = %d", res.code)
	}
	if res := env.do(t, http.MethodPost, "/api/v1/alerts/page/9", operator, nil); res.code != http.StatusOK {
		t.Errorf("page beyond range = %d", res.code)
	}
}

func TestCreateAlert(t *testing.T) {
	env := newTestEnv(t, false)
	admin := env.login(t, "ada")

	res := env.do(t, http.MethodPost, "/api/v1/alerts", admin, map[string]string{
		"severity": "Critical", "message": "Storm front approaching Biscay",
	})
	if res.code != http.StatusCreated {
		t.Fatalf("create = %d (%s)", res.code, res.raw)
	}
	env.upstream.mu.Lock()
	n := len(env.upstream.broadcast)
	env.upstream.mu.Unlock()
	if n != 1 {
		t.Errorf("broadcasts = %d", n)
	}

	res = env.do(t, http.MethodPost, "/api/v1/alerts", admin, map[string]string{"severity": "urgent", "message": "hello"})
	if res.code != http.StatusBadRequest {
		t.Errorf("bad severity = %d", res.code)
	}

	operator := env.login(t, "mara")
	res = env.do(t, http.MethodPost, "/api/v1/alerts", operator, map[string]string{
		"severity": "info", "message": "Not mine to send",
	})
	if res.code != http.StatusForbidden || res.errorCode() != ErrCodePermissionDenied {
		t.Errorf("operator broadcast = %d %q", res.code, res.errorCode())
	}
}

func liveFixture() livesync.RenderState {
	return livesync.RenderState{
		Revision: 1,
		Vessels: []livesync.RenderedVessel{
			{ID: "244660000", Name: "Nordic Star", Position: geo.Point{Lat: 51.9, Lon: 4.1},
				Speed: models.Float(12), Course: models.Float(270)},
			{ID: "244670000", Name: "Kestrel", Position: geo.Point{Lat: 52.1, Lon: 3.9}},
		},
	}
}

type liveBody struct {
	Frames   []animation.Frame `json:"frames"`
	Selected string            `json:"selected"`
}

func TestLiveEndpoints(t *testing.T) {
	env := newTestEnv(t, false)
	state := liveFixture()
	env.live.set(state)
	env.engine.Apply(state)
	sid := env.login(t, "mara")

	if res := env.do(t, http.MethodGet, "/api/v1/live", "", nil); res.code != http.StatusUnauthorized {
		t.Errorf("live without session = %d, want 401", res.code)
	}

	res := env.do(t, http.MethodGet, "/api/v1/live", sid, nil)
	if res.code != http.StatusOK {
		t.Fatalf("live = %d", res.code)
	}
	var lr liveBody
	res.decode(t, &lr)
	if len(lr.Frames) != 2 {
		t.Errorf("frames = %d", len(lr.Frames))
	}

	if res := env.do(t, http.MethodPost, "/api/v1/live/select/244660000", sid, nil); res.code != http.StatusOK {
		t.Errorf("select = %d", res.code)
	}
	if got, _ := env.selections.Selected(sid); got != "244660000" {
		t.Errorf("selected = %q", got)
	}
	if res := env.do(t, http.MethodPost, "/api/v1/live/select/nope", sid, nil); res.code != http.StatusNotFound {
		t.Errorf("select unknown = %d", res.code)
	}
	if res := env.do(t, http.MethodDelete, "/api/v1/live/select", sid, nil); res.code != http.StatusOK {
		t.Errorf("clear = %d", res.code)
	}
	if _, ok := env.selections.Selected(sid); ok {
		t.Error("selection survived clear")
	}

	res = env.do(t, http.MethodGet, "/api/v1/live/route/244660000", sid, nil)
	var route animation.Route
	res.decode(t, &route)
	if res.code != http.StatusOK || len(route.Points) != 3 {
		t.Errorf("route = %d %+v", res.code, route)
	}
	if res := env.do(t, http.MethodGet, "/api/v1/live/route/244670000", sid, nil); res.code != http.StatusUnprocessableEntity {
		t.Errorf("route without motion = %d", res.code)
	}
}

func TestLiveSelectionIsPerSession(t *testing.T) {
	env := newTestEnv(t, false)
	state := liveFixture()
	env.live.set(state)
	env.engine.Apply(state)
	mara := env.login(t, "mara")
	ana := env.login(t, "ana")

	env.do(t, http.MethodPost, "/api/v1/live/select/244660000", mara, nil)
	env.do(t, http.MethodPost, "/api/v1/live/select/244670000", ana, nil)

	for _, tc := range []struct {
		session string
		want    string
	}{
		{mara, "244660000"},
		{ana, "244670000"},
	} {
		var lr liveBody
		env.do(t, http.MethodGet, "/api/v1/live", tc.session, nil).decode(t, &lr)
		if lr.Selected != tc.want {
			t.Errorf("session %s selected %q, want %q", tc.session, lr.Selected, tc.want)
		}
		for _, f := range lr.Frames {
			if f.Selected != (f.ID == tc.want) {
				t.Errorf("session %s frame %s Selected = %v", tc.session, f.ID, f.Selected)
			}
		}
	}

	// Clearing one operator's highlight leaves the other's in place.
	env.do(t, http.MethodDelete, "/api/v1/live/select", ana, nil)
	if got, _ := env.selections.Selected(mara); got != "244660000" {
		t.Errorf("mara selection after ana cleared = %q", got)
	}

	env.do(t, http.MethodPost, "/api/v1/auth/logout", mara, nil)
	if _, ok := env.selections.Selected(mara); ok {
		t.Error("logout left the session's selection behind")
	}
}

func TestLoginRateLimited(t *testing.T) {
	env := newTestEnv(t, true)
	var last int
	for i := 0; i < RateLimitLogin.Requests+1; i++ {
		last = env.do(t, http.MethodPost, "/api/v1/auth/login", "", models.Credentials{Username: "mara", Password: "nope"}).code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("status after %d attempts = %d, want 429", RateLimitLogin.Requests+1, last)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, false)
	res := env.do(t, http.MethodGet, "/metrics", "", nil)
	if res.code != http.StatusOK {
		t.Errorf("metrics = %d", res.code)
	}
	if !bytes.Contains(res.raw, []byte("seawatch_")) {
		t.Error("no seawatch metrics exposed")
	}
}

func TestParseIDList(t *testing.T) {
	tests := []struct {
		in      string
		want    []int64
		wantErr bool
	}{
		{"", nil, false},
		{"41", []int64{41}, false},
		{" 41, ,43 ", []int64{41, 43}, false},
		{"41,x", nil, true},
		{"-3", nil, true},
	}
	for _, tt := range tests {
		got, err := parseIDList(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseIDList(%q) error = %v", tt.in, err)
			continue
		}
		if len(got) != len(tt.want) {
			t.Errorf("parseIDList(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("parseIDList(%q) = %v, want %v", tt.in, got, tt.want)
			}
		}
	}
}

func TestSanitizeLogValue(t *testing.T) {
	if got := sanitizeLogValue("mara\nFAKE ENTRY"); got != `mara\x0aFAKE ENTRY` {
		t.Errorf("sanitizeLogValue = %q", got)
	}
}
