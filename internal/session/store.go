// Seawatch - Maritime Live Operations and Alert Triage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

// Package session persists operator sessions: the tokens and identity
// returned by the backend login, keyed by a server-issued session id.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/seawatch/internal/authz"
	"github.com/tomtom215/seawatch/internal/kv"
	"github.com/tomtom215/seawatch/internal/models"
)

// Persisted keys within a session's namespace.
const (
	AccessTokenKey  = "accessToken"
	RefreshTokenKey = "refreshToken"
	RoleKey         = "userRole"
	UsernameKey     = "username"
	createdAtKey    = "createdAt"
)

// ErrNotFound is returned when a session id has no stored access token.
var ErrNotFound = errors.New("session not found")

// Session is one logged-in operator.
type Session struct {
	ID           string     `json:"id"`
	AccessToken  string     `json:"-"`
	RefreshToken string     `json:"-"`
	Role         authz.Role `json:"role"`
	Username     string     `json:"username"`
	CreatedAt    time.Time  `json:"created_at"`
}

// FromLogin builds a new session from a backend login result. The role is
// taken from the access token when it carries one.
func FromLogin(res *models.LoginResult, tokens *TokenReader) *Session {
	stored, _ := authz.ParseRole(res.Role)
	return &Session{
		ID:           uuid.NewString(),
		AccessToken:  res.Access,
		RefreshToken: res.Refresh,
		Role:         tokens.Role(res.Access, stored),
		Username:     res.Username,
		CreatedAt:    time.Now().UTC(),
	}
}

// Store keeps sessions in a kv.Store.
type Store struct {
	kv kv.Store
}

// NewStore returns a Store over s.
func NewStore(s kv.Store) *Store {
	return &Store{kv: s}
}

func (s *Store) scope(id string) kv.Store {
	return kv.WithPrefix(s.kv, "session:"+id)
}

// Save writes every field of sess.
func (s *Store) Save(ctx context.Context, sess *Session) error {
	scoped := s.scope(sess.ID)
	fields := map[string]string{
		AccessTokenKey:  sess.AccessToken,
		RefreshTokenKey: sess.RefreshToken,
		RoleKey:         string(sess.Role),
		UsernameKey:     sess.Username,
		createdAtKey:    sess.CreatedAt.Format(time.RFC3339Nano),
	}
	for key, value := range fields {
		if err := scoped.Set(ctx, key, []byte(value)); err != nil {
			return fmt.Errorf("save session %s: %w", key, err)
		}
	}
	return nil
}

// Load reads the session id. Missing or unreadable fields other than the
// access token are left empty.
func (s *Store) Load(ctx context.Context, id string) (*Session, error) {
	scoped := s.scope(id)
	access, err := scoped.Get(ctx, AccessTokenKey)
	if errors.Is(err, kv.ErrNotFound) || (err == nil && len(access) == 0) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	sess := &Session{ID: id, AccessToken: string(access)}
	sess.RefreshToken = s.optional(ctx, scoped, RefreshTokenKey)
	sess.Username = s.optional(ctx, scoped, UsernameKey)
	sess.Role, _ = authz.ParseRole(s.optional(ctx, scoped, RoleKey))
	if ts, err := time.Parse(time.RFC3339Nano, s.optional(ctx, scoped, createdAtKey)); err == nil {
		sess.CreatedAt = ts
	}
	return sess, nil
}

// Delete removes every field of the session id.
func (s *Store) Delete(ctx context.Context, id string) error {
	scoped := s.scope(id)
	for _, key := range []string{AccessTokenKey, RefreshTokenKey, RoleKey, UsernameKey, createdAtKey} {
		if err := scoped.Delete(ctx, key); err != nil {
			return fmt.Errorf("delete session %s: %w", key, err)
		}
	}
	return nil
}

func (s *Store) optional(ctx context.Context, scoped kv.Store, key string) string {
	v, err := scoped.Get(ctx, key)
	if err != nil {
		return ""
	}
	return string(v)
}
