// Seawatch - Maritime Live Operations and Alert Triage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

// Package livesync keeps the live map's vessels and risk zones in step with
// the upstream backend.
//
// A Task fires on a fixed interval. Every firing gets the next generation
// number and runs in its own goroutine, so a slow fetch never delays the
// next tick. Consumers compare generations when results come back and drop
// anything older than the latest issued, which keeps the render state from
// regressing when responses arrive out of order. After Stop no further
// firings happen and Stopped reports true, so in-flight results can be
// discarded.
package livesync

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomtom215/seawatch/internal/logging"
)

// ErrAlreadyRunning is returned by Start on a running task.
var ErrAlreadyRunning = errors.New("livesync: task already running")

// TickFunc is one firing of a task, tagged with its generation.
type TickFunc func(ctx context.Context, generation uint64)

// Task is a cancellable scheduled task with a generation counter.
type Task struct {
	name     string
	interval time.Duration
	fn       TickFunc

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	cancel   context.CancelFunc
	loopWG   sync.WaitGroup
	inflight sync.WaitGroup

	generation atomic.Uint64
	stopped    atomic.Bool
}

// NewTask creates a stopped task. Call Start or hand it to a supervisor.
func NewTask(name string, interval time.Duration, fn TickFunc) *Task {
	t := &Task{
		name:     name,
		interval: interval,
		fn:       fn,
	}
	t.stopped.Store(true)
	return t
}

// Start fires once immediately and then every interval until Stop or ctx
// cancellation.
func (t *Task) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return ErrAlreadyRunning
	}
	runCtx, cancel := context.WithCancel(ctx)
	t.running = true
	t.cancel = cancel
	t.stopChan = make(chan struct{})
	t.stopped.Store(false)
	stopChan := t.stopChan
	t.mu.Unlock()

	logging.Info().Str("task", t.name).Dur("interval", t.interval).Msg("Starting scheduled task")

	t.loopWG.Add(1)
	go t.loop(runCtx, stopChan)
	return nil
}

// Stop disarms the trigger and waits for the loop to exit. Firings already
// in flight are cancelled through their context; anything they report
// afterwards must be dropped by checking Stopped.
func (t *Task) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	t.stopped.Store(true)
	close(t.stopChan)
	cancel := t.cancel
	t.mu.Unlock()

	t.loopWG.Wait()
	cancel()
	logging.Info().Str("task", t.name).Msg("Scheduled task stopped")
}

// Serve implements suture.Service.
func (t *Task) Serve(ctx context.Context) error {
	if err := t.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	t.Stop()
	t.Wait()
	return ctx.Err()
}

// Wait blocks until every in-flight firing has returned.
func (t *Task) Wait() {
	t.inflight.Wait()
}

// Generation returns the most recently issued generation (0 before the
// first firing).
func (t *Task) Generation() uint64 {
	return t.generation.Load()
}

// IsLatest reports whether gen is the most recent generation and the task
// has not been stopped.
func (t *Task) IsLatest(gen uint64) bool {
	return !t.stopped.Load() && gen == t.generation.Load()
}

// Stopped reports whether the task is not running.
func (t *Task) Stopped() bool {
	return t.stopped.Load()
}

// IsRunning returns whether the task is active.
func (t *Task) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

func (t *Task) loop(ctx context.Context, stopChan <-chan struct{}) {
	defer t.loopWG.Done()

	t.fire(ctx)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.stopped.Store(true)
			return
		case <-stopChan:
			return
		case <-ticker.C:
			t.fire(ctx)
		}
	}
}

func (t *Task) fire(ctx context.Context) {
	if t.stopped.Load() {
		return
	}
	gen := t.generation.Add(1)
	t.inflight.Add(1)
	go func() {
		defer t.inflight.Done()
		t.fn(ctx, gen)
	}()
}
