// Seawatch - Maritime Live Operations and Alert Triage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

// Package authz is the role capability matrix. The matrix lives in an
// embedded Casbin policy; every gated action in the console is checked
// here before it touches any state.
package authz

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"

	"github.com/tomtom215/seawatch/internal/metrics"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// Config holds authorizer configuration.
type Config struct {
	// PolicyPath overrides the embedded policy with a Casbin CSV file.
	PolicyPath string
}

// Authorizer answers capability questions for roles.
type Authorizer struct {
	enforcer *casbin.SyncedEnforcer
	cache    *decisionCache
}

// New builds an authorizer from the embedded model and the embedded (or
// configured) policy.
func New(cfg Config) (*Authorizer, error) {
	m, err := model.NewModelFromString(embeddedModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	var enforcer *casbin.SyncedEnforcer
	if cfg.PolicyPath != "" && fileExists(cfg.PolicyPath) {
		enforcer, err = casbin.NewSyncedEnforcer(m, fileadapter.NewAdapter(cfg.PolicyPath))
	} else {
		enforcer, err = casbin.NewSyncedEnforcer(m)
		if err == nil {
			err = loadEmbeddedPolicy(enforcer, embeddedPolicy)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	return &Authorizer{enforcer: enforcer, cache: newDecisionCache()}, nil
}

// MustNew is New for the embedded policy, which is known to be valid.
func MustNew() *Authorizer {
	a, err := New(Config{})
	if err != nil {
		panic(err)
	}
	return a
}

// loadEmbeddedPolicy parses policy lines of the form "p, role, action".
func loadEmbeddedPolicy(enforcer *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if parts[0] != "p" || len(parts) < 3 {
			continue
		}
		if _, err := enforcer.AddPolicy(parts[1], parts[2]); err != nil {
			return fmt.Errorf("failed to add policy %v: %w", parts[1:], err)
		}
	}
	return nil
}

// Allowed reports whether role may perform action. Unknown roles and
// enforcement errors deny.
func (a *Authorizer) Allowed(role Role, action Action) bool {
	role, ok := ParseRole(string(role))
	if !ok {
		return false
	}
	if allowed, ok := a.cache.get(role, action); ok {
		return allowed
	}
	allowed, err := a.enforcer.Enforce(string(role), string(action))
	if err != nil {
		return false
	}
	a.cache.set(role, action, allowed)
	return allowed
}

// Check returns a *RejectionError when role may not perform action.
func (a *Authorizer) Check(role Role, action Action) error {
	if a.Allowed(role, action) {
		return nil
	}
	metrics.AuthzRejections.WithLabelValues(roleLabel(role), string(action)).Inc()
	return &RejectionError{Role: role, Action: action}
}

// Capabilities lists the actions role may perform, in Actions order.
func (a *Authorizer) Capabilities(role Role) []Action {
	out := make([]Action, 0, len(Actions))
	for _, action := range Actions {
		if a.Allowed(role, action) {
			out = append(out, action)
		}
	}
	return out
}

// Matrix returns the full role × action table.
func (a *Authorizer) Matrix() map[Role][]Action {
	out := make(map[Role][]Action, len(Roles))
	for _, role := range Roles {
		out[role] = a.Capabilities(role)
	}
	return out
}

func roleLabel(role Role) string {
	if _, ok := ParseRole(string(role)); ok {
		return string(role)
	}
	return "unknown"
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
