// Seawatch - Maritime Live Operations and Alert Triage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package services

import (
	"context"
	"time"

	"github.com/tomtom215/seawatch/internal/logging"
)

// DefaultGCInterval is how often the store's value log is compacted.
const DefaultGCInterval = 10 * time.Minute

// GarbageCollector is a store that can reclaim space from its value log.
// *kv.Badger satisfies it.
type GarbageCollector interface {
	RunGC(discardRatio float64) error
}

// StoreGCService periodically reclaims space in the annotation and session
// store.
//
// Only Badger-backed runs need it; the in-memory store has no value log.
// It belongs in the data layer so it stops after the API layer:
//
//	if gc, ok := store.(services.GarbageCollector); ok {
//	    tree.AddDataService(services.NewStoreGCService(gc, services.DefaultGCInterval))
//	}
type StoreGCService struct {
	store        GarbageCollector
	interval     time.Duration
	discardRatio float64
}

// NewStoreGCService runs store.RunGC every interval.
func NewStoreGCService(store GarbageCollector, interval time.Duration) *StoreGCService {
	if interval <= 0 {
		interval = DefaultGCInterval
	}
	return &StoreGCService{store: store, interval: interval, discardRatio: 0.5}
}

// Serve implements suture.Service. GC failures are logged and retried on
// the next tick.
func (s *StoreGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.store.RunGC(s.discardRatio); err != nil {
				logging.Warn().Err(err).Msg("Store value log GC failed")
			}
		}
	}
}

// String implements fmt.Stringer for suture's logs.
func (s *StoreGCService) String() string {
	return "store-gc"
}
