// Seawatch - Maritime Live Operations and Alert Triage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package livesync

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/seawatch/internal/geo"
	"github.com/tomtom215/seawatch/internal/logging"
	"github.com/tomtom215/seawatch/internal/metrics"
	"github.com/tomtom215/seawatch/internal/models"
)

const (
	feedVessels = "vessels"
	feedZones   = "zones"
)

// Source fetches the live feeds.
type Source interface {
	Vessels(ctx context.Context) ([]models.Vessel, error)
	RiskZones(ctx context.Context) ([]models.RiskZone, error)
}

// Config controls a Scheduler.
type Config struct {
	Interval       time.Duration
	ZoneFloor      int
	ExposureCellKm float64
}

// FeedStatus is the diagnostic view of one feed.
type FeedStatus struct {
	Issued    uint64    `json:"issued"`
	Applied   uint64    `json:"applied"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
	LastError string    `json:"last_error,omitempty"`
	ErrorAt   time.Time `json:"error_at,omitempty"`
}

type feed[T any] struct {
	FeedStatus
	data []T
}

// begin records gen as issued. Firings may reach here out of order, so the
// highest generation seen wins.
func (f *feed[T]) begin(gen uint64) {
	if gen > f.Issued {
		f.Issued = gen
	}
}

// Scheduler polls vessels and risk zones and publishes RenderState.
type Scheduler struct {
	src  Source
	cfg  Config
	task *Task

	mu          sync.RWMutex
	vessels     feed[models.Vessel]
	zones       feed[models.RiskZone]
	state       RenderState
	revision    uint64
	subscribers []func(RenderState)

	// grid indexes the rendered vessels of the vessel fetch indexedGen for
	// zone exposure queries.
	grid       *geo.Grid
	indexed    map[string]struct{}
	indexedGen uint64
}

// NewScheduler creates a stopped scheduler.
func NewScheduler(src Source, cfg Config) *Scheduler {
	s := &Scheduler{
		src:     src,
		cfg:     cfg,
		grid:    geo.NewGrid(cfg.ExposureCellKm),
		indexed: map[string]struct{}{},
		state: RenderState{
			Vessels:       []RenderedVessel{},
			Zones:         []RenderedZone{},
			Exposure:      map[string][]string{},
			ZoneFloor:     cfg.ZoneFloor,
			ZoneShortfall: cfg.ZoneFloor,
		},
	}
	s.task = NewTask("live-sync", cfg.Interval, s.tick)
	return s
}

// Start begins polling.
func (s *Scheduler) Start(ctx context.Context) error { return s.task.Start(ctx) }

// Stop disarms polling. Results still in flight are discarded.
func (s *Scheduler) Stop() { s.task.Stop() }

// Serve implements suture.Service.
func (s *Scheduler) Serve(ctx context.Context) error { return s.task.Serve(ctx) }

// String names the service in supervisor logs.
func (s *Scheduler) String() string { return "live-sync" }

// State returns the current render state.
func (s *Scheduler) State() RenderState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Status returns per-feed diagnostics.
func (s *Scheduler) Status() map[string]FeedStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]FeedStatus{
		feedVessels: s.vessels.FeedStatus,
		feedZones:   s.zones.FeedStatus,
	}
}

// OnUpdate registers fn to receive every newly applied render state.
// fn runs on the goroutine that applied the result and must not block.
// Concurrent publications may be delivered out of order; compare Revision.
func (s *Scheduler) OnUpdate(fn func(RenderState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

func (s *Scheduler) tick(ctx context.Context, gen uint64) {
	metrics.LiveTicksTotal.Inc()

	s.mu.Lock()
	s.vessels.begin(gen)
	s.zones.begin(gen)
	s.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		start := time.Now()
		vessels, err := s.src.Vessels(ctx)
		metrics.RecordFeedResult(feedVessels, time.Since(start), err)
		s.applyVessels(gen, vessels, err)
	}()
	go func() {
		defer wg.Done()
		start := time.Now()
		zones, err := s.src.RiskZones(ctx)
		metrics.RecordFeedResult(feedZones, time.Since(start), err)
		s.applyZones(gen, zones, err)
	}()
	wg.Wait()
}

func (s *Scheduler) applyVessels(gen uint64, data []models.Vessel, err error) {
	s.mu.Lock()
	if !s.accept(feedVessels, gen, s.vessels.Issued) {
		s.mu.Unlock()
		return
	}
	record(&s.vessels, feedVessels, gen, data, err)
	s.publishLocked(gen)
}

func (s *Scheduler) applyZones(gen uint64, data []models.RiskZone, err error) {
	s.mu.Lock()
	if !s.accept(feedZones, gen, s.zones.Issued) {
		s.mu.Unlock()
		return
	}
	record(&s.zones, feedZones, gen, data, err)
	s.publishLocked(gen)
}

// accept reports whether a result of gen may be applied. Caller holds s.mu.
func (s *Scheduler) accept(name string, gen, issued uint64) bool {
	if s.task.Stopped() {
		logging.Debug().Str("feed", name).Uint64("generation", gen).Msg("Dropping result after stop")
		return false
	}
	if gen != issued {
		metrics.LiveStaleDrops.WithLabelValues(name).Inc()
		logging.Debug().Str("feed", name).Uint64("generation", gen).Uint64("latest", issued).Msg("Dropping stale result")
		return false
	}
	return true
}

// record installs a result. A failed fetch keeps the prior data.
func record[T any](f *feed[T], name string, gen uint64, data []T, err error) {
	now := time.Now()
	if err != nil {
		f.LastError = err.Error()
		f.ErrorAt = now
		logging.Warn().Err(err).Str("feed", name).Uint64("generation", gen).Msg("Live feed fetch failed, keeping previous data")
		return
	}
	f.data = data
	f.Applied = gen
	f.UpdatedAt = now
	f.LastError = ""
	metrics.RecordFeedApplied(name)
}

// publishLocked rebuilds the render state, releases s.mu, and notifies
// subscribers. Caller holds s.mu.
func (s *Scheduler) publishLocked(gen uint64) {
	vessels, excluded := renderVessels(s.vessels.data)
	zones, excludedZones := renderZones(s.zones.data)
	s.reindexLocked(vessels)

	s.revision++
	state := RenderState{
		Revision:          s.revision,
		Generation:        gen,
		Vessels:           vessels,
		Zones:             zones,
		VesselsGeneration: s.vessels.Applied,
		Excluded:          excluded,
		ExcludedZones:     excludedZones,
		ZoneFloor:         s.cfg.ZoneFloor,
		ZoneShortfall:     max(s.cfg.ZoneFloor-len(zones), 0),
		Exposure:          exposure(s.grid, zones),
		UpdatedAt:         time.Now(),
		VesselsError:      s.vessels.LastError,
		ZonesError:        s.zones.LastError,
	}
	s.state = state
	subs := make([]func(RenderState), len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()

	metrics.RecordRenderState(state.Generation, len(state.Vessels), state.Excluded, len(state.Zones), state.ZoneShortfall)
	if state.ZoneShortfall > 0 {
		logging.Debug().Int("zones", len(zones)).Int("floor", s.cfg.ZoneFloor).Msg("Risk zone feed below floor")
	}

	for _, fn := range subs {
		fn(state)
	}
}

// reindexLocked moves the grid to vessels when a vessel fetch was applied
// since the last index. Vessels that left the feed are removed. Caller
// holds s.mu.
func (s *Scheduler) reindexLocked(vessels []RenderedVessel) {
	if s.vessels.Applied == s.indexedGen {
		return
	}
	s.indexedGen = s.vessels.Applied

	current := make(map[string]struct{}, len(vessels))
	for i := range vessels {
		current[vessels[i].ID] = struct{}{}
		s.grid.Insert(vessels[i].ID, vessels[i].Position)
	}
	removed := 0
	for id := range s.indexed {
		if _, ok := current[id]; !ok && s.grid.Remove(id) {
			removed++
		}
	}
	s.indexed = current
	logging.Debug().
		Uint64("generation", s.indexedGen).
		Int("indexed", s.grid.Len()).
		Int("removed", removed).
		Msg("Vessel grid reindexed")
}
