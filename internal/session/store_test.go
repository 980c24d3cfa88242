// Seawatch - Maritime Live Operations and Alert Triage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/seawatch/internal/authz"
	"github.com/tomtom215/seawatch/internal/kv"
	"github.com/tomtom215/seawatch/internal/models"
)

func signToken(t *testing.T, secret, role string, expires time.Time) string {
	t.Helper()
	claims := &Claims{
		Username: "mara",
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return signed
}

func TestTokenReaderRole(t *testing.T) {
	future := time.Now().Add(time.Hour)
	past := time.Now().Add(-time.Hour)

	tests := []struct {
		name     string
		reader   *TokenReader
		token    string
		fallback authz.Role
		want     authz.Role
	}{
		{"unverified claim", NewTokenReader(""), signToken(t, "other", "ANALYST", future), authz.RoleOperator, authz.RoleAnalyst},
		{"verified claim", NewTokenReader("s3cret"), signToken(t, "s3cret", "admin", future), "", authz.RoleAdmin},
		{"bad signature falls back", NewTokenReader("s3cret"), signToken(t, "wrong", "ADMIN", future), authz.RoleOperator, authz.RoleOperator},
		{"expired falls back", NewTokenReader("s3cret"), signToken(t, "s3cret", "ADMIN", past), authz.RoleAnalyst, authz.RoleAnalyst},
		{"unknown claim falls back", NewTokenReader(""), signToken(t, "x", "CAPTAIN", future), authz.RoleOperator, authz.RoleOperator},
		{"opaque token", NewTokenReader(""), "not-a-jwt", authz.RoleAdmin, authz.RoleAdmin},
		{"nothing known", NewTokenReader(""), "not-a-jwt", "GUEST", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.reader.Role(tt.token, tt.fallback); got != tt.want {
				t.Errorf("Role = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewStore(kv.NewMemory())

	sess := FromLogin(&models.LoginResult{
		Access:   "opaque-access",
		Refresh:  "opaque-refresh",
		Role:     "operator",
		Username: "mara",
	}, NewTokenReader(""))
	if sess.ID == "" || sess.Role != authz.RoleOperator {
		t.Fatalf("FromLogin = %+v", sess)
	}

	if err := store.Save(ctx, sess); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := store.Load(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.AccessToken != "opaque-access" || got.RefreshToken != "opaque-refresh" ||
		got.Role != authz.RoleOperator || got.Username != "mara" || !got.CreatedAt.Equal(sess.CreatedAt) {
		t.Errorf("Load = %+v, want %+v", got, sess)
	}

	if err := store.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Load(ctx, sess.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load after Delete err = %v", err)
	}
}

func TestLoadToleratesMissingFields(t *testing.T) {
	ctx := context.Background()
	backing := kv.NewMemory()
	backing.Set(ctx, "session:abc:accessToken", []byte("tok"))
	backing.Set(ctx, "session:abc:userRole", []byte("PIRATE"))

	got, err := NewStore(backing).Load(ctx, "abc")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Username != "" || got.RefreshToken != "" || !got.CreatedAt.IsZero() {
		t.Errorf("Load = %+v", got)
	}
	if _, ok := authz.ParseRole(string(got.Role)); ok {
		t.Errorf("unknown stored role parsed as %q", got.Role)
	}

	if _, err := NewStore(backing).Load(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load(missing) err = %v", err)
	}
}
