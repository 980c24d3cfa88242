// Seawatch - Maritime Live Operations and Alert Triage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package session

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/seawatch/internal/authz"
)

// Claims are the access token claims Seawatch reads.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenReader extracts claims from backend access tokens. With a secret the
// HS256 signature and expiry are verified; without one the token is only
// decoded.
type TokenReader struct {
	secret []byte
}

// NewTokenReader returns a reader verifying with secret, if non-empty.
func NewTokenReader(secret string) *TokenReader {
	r := &TokenReader{}
	if secret != "" {
		r.secret = []byte(secret)
	}
	return r
}

// Claims parses token.
func (r *TokenReader) Claims(token string) (*Claims, error) {
	claims := &Claims{}
	if r == nil || len(r.secret) == 0 {
		if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
			return nil, fmt.Errorf("failed to parse token: %w", err)
		}
		return claims, nil
	}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return r.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// Role returns the role claim of token when it names a known role, and
// fallback otherwise. An unknown fallback yields a role with no
// capabilities.
func (r *TokenReader) Role(token string, fallback authz.Role) authz.Role {
	if token != "" {
		if claims, err := r.Claims(token); err == nil {
			if role, ok := authz.ParseRole(claims.Role); ok {
				return role
			}
		}
	}
	if role, ok := authz.ParseRole(string(fallback)); ok {
		return role
	}
	return ""
}
