// Seawatch - Maritime Live Operations and Alert Triage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

// Package alerts implements the alert triage query pipeline: the query
// model, a debounced loader that only ever applies the newest response,
// the congestion message parser, and the local congestion ordering.
package alerts

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/seawatch/internal/backend"
	"github.com/tomtom215/seawatch/internal/logging"
	"github.com/tomtom215/seawatch/internal/metrics"
	"github.com/tomtom215/seawatch/internal/models"
)

// DefaultDebounce is the quiet period after the last search keystroke.
const DefaultDebounce = 500 * time.Millisecond

// ErrClosed is returned by operations on a closed Pipeline.
var ErrClosed = errors.New("alerts: pipeline closed")

// Fetcher loads one page of alerts.
type Fetcher interface {
	Alerts(ctx context.Context, q Query) (*models.AlertPage, error)
}

// BackendFetcher adapts a backend client, attaching the operator's access
// token to every request.
type BackendFetcher struct {
	Client *backend.Client
	Token  string
}

// Alerts implements Fetcher.
func (f BackendFetcher) Alerts(ctx context.Context, q Query) (*models.AlertPage, error) {
	if f.Token != "" {
		ctx = backend.WithAccessToken(ctx, f.Token)
	}
	return f.Client.Alerts(ctx, q.Backend())
}

// Result is the outcome of the most recently applied load.
type Result struct {
	Seq        uint64            `json:"seq"`
	Query      Query             `json:"query"`
	Alerts     []models.Alert    `json:"alerts"`
	Pagination models.Pagination `json:"pagination"`
	Stats      models.AlertStats `json:"stats"`
	Err        error             `json:"-"`
	LoadedAt   time.Time         `json:"loaded_at"`
}

// Failed reports whether the load behind r failed.
func (r Result) Failed() bool { return r.Err != nil }

// Config tunes a Pipeline.
type Config struct {
	Debounce time.Duration
	PageSize int
}

// Pipeline turns query edits into backend loads. Search edits are debounced;
// every other edit loads at once. Loads may overlap; a response is applied
// only if no newer load was issued after it.
type Pipeline struct {
	fetcher  Fetcher
	debounce time.Duration
	ctx      context.Context

	mu        sync.Mutex
	query     Query
	seq       uint64
	timer     *time.Timer
	inflight  int
	result    Result
	observers []func(Result)
	closed    bool
}

// NewPipeline creates a pipeline in its initial state: default query and
// an empty result. Debounced loads run under ctx.
func NewPipeline(ctx context.Context, f Fetcher, cfg Config) *Pipeline {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}
	q := DefaultQuery(cfg.PageSize)
	return &Pipeline{
		fetcher:  f,
		debounce: cfg.Debounce,
		ctx:      ctx,
		query:    q,
		result: Result{
			Query:      q,
			Alerts:     []models.Alert{},
			Pagination: models.EmptyPagination(cfg.PageSize),
		},
	}
}

// OnResult registers fn to run after every applied result. fn runs with the
// pipeline locked and must not call back into it.
func (p *Pipeline) OnResult(fn func(Result)) {
	p.mu.Lock()
	p.observers = append(p.observers, fn)
	p.mu.Unlock()
}

// Query returns the current query.
func (p *Pipeline) Query() Query {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.query
}

// Result returns the latest applied result.
func (p *Pipeline) Result() Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.result
}

// Loading reports whether a debounced load is armed or a load is in flight.
func (p *Pipeline) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.timer != nil || p.inflight > 0
}

// SetSearch updates the search term and returns to page 1. The load fires
// once no further SetSearch call arrives within the debounce period.
func (p *Pipeline) SetSearch(term string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	next := p.query
	next.Search = term
	next.Page = 1
	if err := next.Validate(); err != nil {
		return err
	}
	p.query = next
	p.stopTimerLocked()
	var t *time.Timer
	t = time.AfterFunc(p.debounce, func() {
		p.mu.Lock()
		if p.timer != t {
			p.mu.Unlock()
			return
		}
		p.timer = nil
		p.mu.Unlock()
		p.load(p.ctx, "search")
	})
	p.timer = t
	return nil
}

// SetSeverity changes the severity filter, returns to page 1 and loads.
func (p *Pipeline) SetSeverity(ctx context.Context, s SeverityFilter) (Result, error) {
	return p.update(ctx, "severity", func(q *Query) {
		q.Severity = s
		q.Page = 1
	})
}

// SetSort changes the ordering, returns to page 1 and loads.
func (p *Pipeline) SetSort(ctx context.Context, s SortMode) (Result, error) {
	return p.update(ctx, "sort", func(q *Query) {
		q.Sort = s
		q.Page = 1
	})
}

// SetPageSize changes the page size, returns to page 1 and loads.
func (p *Pipeline) SetPageSize(ctx context.Context, size int) (Result, error) {
	return p.update(ctx, "page_size", func(q *Query) {
		q.PageSize = size
		q.Page = 1
	})
}

// GoToPage loads page n, clamped to at least 1. A pending search debounce
// is left armed.
func (p *Pipeline) GoToPage(ctx context.Context, n int) (Result, error) {
	if n < 1 {
		n = 1
	}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return Result{}, ErrClosed
	}
	p.query.Page = n
	p.mu.Unlock()
	return p.load(ctx, "page"), nil
}

// Reload reissues the current query.
func (p *Pipeline) Reload(ctx context.Context) (Result, error) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return Result{}, ErrClosed
	}
	return p.load(ctx, "reload"), nil
}

// Close disarms the debounce timer. Loads still in flight are discarded.
func (p *Pipeline) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.stopTimerLocked()
}

func (p *Pipeline) update(ctx context.Context, trigger string, apply func(*Query)) (Result, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return Result{}, ErrClosed
	}
	next := p.query
	apply(&next)
	if err := next.Validate(); err != nil {
		p.mu.Unlock()
		return Result{}, err
	}
	p.query = next
	p.stopTimerLocked()
	p.mu.Unlock()
	return p.load(ctx, trigger), nil
}

func (p *Pipeline) stopTimerLocked() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

// load issues the current query and applies the response if it is still
// the newest one. It returns the result in effect afterwards.
func (p *Pipeline) load(ctx context.Context, trigger string) Result {
	p.mu.Lock()
	if p.closed {
		defer p.mu.Unlock()
		return p.result
	}
	p.seq++
	seq := p.seq
	q := p.query
	p.inflight++
	p.mu.Unlock()

	metrics.AlertQueriesTotal.WithLabelValues(trigger).Inc()
	logger := logging.Ctx(ctx)
	logger.Debug().Uint64("seq", seq).Str("query", q.Signature()).Msg("Loading alerts")

	page, err := p.fetcher.Alerts(ctx, q)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.inflight--

	if p.closed || seq != p.seq {
		metrics.AlertStaleResults.Inc()
		logger.Debug().Uint64("seq", seq).Uint64("latest", p.seq).Msg("Discarding stale alert response")
		return p.result
	}
	if err != nil && ctx.Err() != nil {
		// The caller went away; keep what is on screen.
		return p.result
	}

	res := Result{Seq: seq, Query: q, LoadedAt: time.Now()}
	if err != nil {
		metrics.AlertQueryFailures.Inc()
		logger.Warn().Err(err).Str("query", q.Signature()).Msg("Alert query failed")
		res.Err = err
		res.Alerts = []models.Alert{}
		res.Pagination = models.EmptyPagination(q.PageSize)
	} else {
		res.Alerts = page.Results
		if res.Alerts == nil {
			res.Alerts = []models.Alert{}
		}
		if q.Sort == SortCongestion {
			res.Alerts = SortByCongestion(res.Alerts)
		}
		res.Pagination = page.Pagination.Normalize(q.PageSize)
		res.Stats = page.Stats
	}

	p.result = res
	for _, fn := range p.observers {
		fn(res)
	}
	return res
}

// SortByCongestion returns a copy of in ordered by congestion percentage,
// highest first. Alerts without a percentage count as 0; ties keep their
// original order.
func SortByCongestion(in []models.Alert) []models.Alert {
	type keyed struct {
		alert models.Alert
		pct   float64
	}
	rows := make([]keyed, len(in))
	for i, a := range in {
		rows[i] = keyed{alert: a, pct: congestionValue(a.Message)}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].pct > rows[j].pct
	})
	out := make([]models.Alert, len(rows))
	for i, r := range rows {
		out[i] = r.alert
	}
	return out
}
