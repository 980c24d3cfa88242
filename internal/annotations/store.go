// Seawatch - Maritime Live Operations and Alert Triage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

// Package annotations keeps the operator's local triage state: which
// alerts were acknowledged and the free-text note on each. The backend
// never sees either.
package annotations

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/tomtom215/seawatch/internal/kv"
	"github.com/tomtom215/seawatch/internal/logging"
	"github.com/tomtom215/seawatch/internal/metrics"
)

// Persisted keys.
const (
	AckedKey = "ackedAlerts"
	NotesKey = "alertNotes"
)

// MaxNoteLength bounds a single note.
const MaxNoteLength = 2000

// Store reads and writes annotations through a kv.Store. Writes rewrite a
// whole collection, so every writer of one namespace must share a single
// Store; triage.Registry keeps one per username. Reads never fail:
// a missing or unreadable value is an empty collection.
type Store struct {
	kv kv.Store
	mu sync.Mutex
}

// New returns a Store over s.
func New(s kv.Store) *Store {
	return &Store{kv: s}
}

// Acknowledge adds ids to the acknowledged set.
func (s *Store) Acknowledge(ctx context.Context, ids ...int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acked := s.loadAcked(ctx)
	added := 0
	for _, id := range ids {
		if !slices.Contains(acked, id) {
			acked = append(acked, id)
			added++
		}
	}
	if added == 0 {
		return nil
	}
	if err := kv.SetJSON(ctx, s.kv, AckedKey, acked); err != nil {
		return fmt.Errorf("save acknowledgements: %w", err)
	}
	metrics.AnnotationWrites.WithLabelValues("ack").Add(float64(added))
	return nil
}

// IsAcknowledged reports whether id was acknowledged.
func (s *Store) IsAcknowledged(ctx context.Context, id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Contains(s.loadAcked(ctx), id)
}

// Acknowledged returns the acknowledged ids in acknowledgement order.
func (s *Store) Acknowledged(ctx context.Context) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadAcked(ctx)
}

// AcknowledgedSet returns the acknowledged ids as a set.
func (s *Store) AcknowledgedSet(ctx context.Context) map[int64]bool {
	acked := s.Acknowledged(ctx)
	out := make(map[int64]bool, len(acked))
	for _, id := range acked {
		out[id] = true
	}
	return out
}

// SetNote replaces the note on id. Blank text removes it.
func (s *Store) SetNote(ctx context.Context, id int64, text string) error {
	if len(text) > MaxNoteLength {
		return fmt.Errorf("note exceeds %d characters", MaxNoteLength)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	notes := s.loadNotes(ctx)
	key := strconv.FormatInt(id, 10)
	kind := "note"
	if strings.TrimSpace(text) == "" {
		if _, ok := notes[key]; !ok {
			return nil
		}
		delete(notes, key)
		kind = "note_delete"
	} else {
		notes[key] = text
	}
	if err := kv.SetJSON(ctx, s.kv, NotesKey, notes); err != nil {
		return fmt.Errorf("save notes: %w", err)
	}
	metrics.AnnotationWrites.WithLabelValues(kind).Inc()
	return nil
}

// Note returns the note on id.
func (s *Store) Note(ctx context.Context, id int64) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, ok := s.loadNotes(ctx)[strconv.FormatInt(id, 10)]
	return text, ok
}

// Notes returns every note keyed by alert id. Keys that are not alert ids
// are skipped.
func (s *Store) Notes(ctx context.Context) map[int64]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw := s.loadNotes(ctx)
	out := make(map[int64]string, len(raw))
	for k, v := range raw {
		id, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			continue
		}
		out[id] = v
	}
	return out
}

func (s *Store) loadAcked(ctx context.Context) []int64 {
	var acked []int64
	if !s.load(ctx, AckedKey, &acked) || acked == nil {
		return []int64{}
	}
	return acked
}

func (s *Store) loadNotes(ctx context.Context) map[string]string {
	var notes map[string]string
	if !s.load(ctx, NotesKey, &notes) || notes == nil {
		return map[string]string{}
	}
	return notes
}

func (s *Store) load(ctx context.Context, key string, v any) bool {
	err := kv.GetJSON(ctx, s.kv, key, v)
	if err == nil {
		return true
	}
	if !errors.Is(err, kv.ErrNotFound) {
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("Unreadable annotations, treating as empty")
	}
	return false
}
