// Seawatch - Maritime Live Operations and Alert Triage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package triage

import (
	"context"
	"errors"
	"sync"

	"github.com/tomtom215/seawatch/internal/alerts"
	"github.com/tomtom215/seawatch/internal/annotations"
	"github.com/tomtom215/seawatch/internal/authz"
	"github.com/tomtom215/seawatch/internal/kv"
	"github.com/tomtom215/seawatch/internal/logging"
	"github.com/tomtom215/seawatch/internal/metrics"
	"github.com/tomtom215/seawatch/internal/session"
)

// ErrUnknownSession is returned for a session id with no stored session.
var ErrUnknownSession = errors.New("unknown session")

// FetcherFactory builds the alert fetcher for an operator's access token.
type FetcherFactory func(accessToken string) alerts.Fetcher

// Registry holds one console per session. Consoles for sessions persisted
// by an earlier process are rebuilt on first use.
type Registry struct {
	ctx        context.Context
	fetchers   FetcherFactory
	authorizer *authz.Authorizer
	store      kv.Store
	sessions   *session.Store
	opts       Options

	mu       sync.Mutex
	consoles map[string]*Console

	// One annotation store per username, shared by all of that operator's
	// sessions so their read-modify-write updates serialize on one mutex.
	annMu       sync.Mutex
	annotations map[string]*annotations.Store
}

// NewRegistry creates an empty registry. Annotations are kept in store,
// namespaced per username.
func NewRegistry(ctx context.Context, fetchers FetcherFactory, a *authz.Authorizer,
	store kv.Store, sessions *session.Store, opts Options) *Registry {
	return &Registry{
		ctx:         ctx,
		fetchers:    fetchers,
		authorizer:  a,
		store:       store,
		sessions:    sessions,
		opts:        opts,
		consoles:    make(map[string]*Console),
		annotations: make(map[string]*annotations.Store),
	}
}

// Open persists sess and creates its console.
func (r *Registry) Open(ctx context.Context, sess *session.Session) (*Console, error) {
	if err := r.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	c := r.build(sess)

	r.mu.Lock()
	if old, ok := r.consoles[sess.ID]; ok {
		old.Close()
	}
	r.consoles[sess.ID] = c
	metrics.ActiveConsoles.Set(float64(len(r.consoles)))
	r.mu.Unlock()

	logging.Ctx(ctx).Info().
		Str("session_id", sess.ID).
		Str("username", sess.Username).
		Str("role", string(sess.Role)).
		Msg("Triage console opened")
	return c, nil
}

// Get returns the console for id, rebuilding it from the session store if
// needed.
func (r *Registry) Get(ctx context.Context, id string) (*Console, error) {
	if id == "" {
		return nil, ErrUnknownSession
	}
	r.mu.Lock()
	c, ok := r.consoles[id]
	r.mu.Unlock()
	if ok {
		return c, nil
	}

	sess, err := r.sessions.Load(ctx, id)
	if errors.Is(err, session.ErrNotFound) {
		return nil, ErrUnknownSession
	}
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.consoles[id]; ok {
		return c, nil
	}
	c = r.build(sess)
	r.consoles[id] = c
	metrics.ActiveConsoles.Set(float64(len(r.consoles)))
	return c, nil
}

// Close drops the console for id and forgets its session.
func (r *Registry) Close(ctx context.Context, id string) error {
	r.mu.Lock()
	if c, ok := r.consoles[id]; ok {
		c.Close()
		delete(r.consoles, id)
	}
	metrics.ActiveConsoles.Set(float64(len(r.consoles)))
	r.mu.Unlock()
	return r.sessions.Delete(ctx, id)
}

// Len returns the number of live consoles.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.consoles)
}

// Shutdown closes every console without forgetting sessions.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.consoles {
		c.Close()
		delete(r.consoles, id)
	}
	metrics.ActiveConsoles.Set(0)
}

func (r *Registry) build(sess *session.Session) *Console {
	return NewConsole(r.ctx, sess.ID, sess.Username, sess.Role,
		r.fetchers(sess.AccessToken), r.authorizer, r.annotationsFor(sess.Username), r.opts)
}

// annotationsFor returns the shared annotation store of username.
func (r *Registry) annotationsFor(username string) *annotations.Store {
	r.annMu.Lock()
	defer r.annMu.Unlock()
	if s, ok := r.annotations[username]; ok {
		return s
	}
	s := annotations.New(kv.WithPrefix(r.store, "user:"+username))
	r.annotations[username] = s
	return s
}
