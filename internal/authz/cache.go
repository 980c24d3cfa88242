// Seawatch - Maritime Live Operations and Alert Triage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package authz

import "sync"

// decisionCache memoizes enforcement results. The policy never changes
// after load, so entries never expire.
type decisionCache struct {
	mu    sync.RWMutex
	items map[decisionKey]bool
}

type decisionKey struct {
	role   Role
	action Action
}

func newDecisionCache() *decisionCache {
	return &decisionCache{items: make(map[decisionKey]bool)}
}

func (c *decisionCache) get(role Role, action Action) (bool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	allowed, ok := c.items[decisionKey{role, action}]
	return allowed, ok
}

func (c *decisionCache) set(role Role, action Action, allowed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[decisionKey{role, action}] = allowed
}
