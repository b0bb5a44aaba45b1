// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package authz

import (
	"sync"
	"time"
)

// decisionCache memoizes role/path/action decisions until ttl elapses.
// Expired entries are dropped lazily on lookup and in bulk by prune.
type decisionCache struct {
	ttl   time.Duration
	now   func() time.Time
	mu    sync.RWMutex
	items map[string]decision
}

type decision struct {
	allowed   bool
	expiresAt time.Time
}

func newDecisionCache(ttl time.Duration) *decisionCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &decisionCache{ttl: ttl, now: time.Now, items: make(map[string]decision)}
}

func cacheKey(subject, object, action string) string {
	return subject + "\x00" + object + "\x00" + action
}

func (c *decisionCache) get(subject, object, action string) (allowed, ok bool) {
	key := cacheKey(subject, object, action)
	c.mu.RLock()
	d, found := c.items[key]
	c.mu.RUnlock()
	if !found {
		return false, false
	}
	if c.now().After(d.expiresAt) {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		return false, false
	}
	return d.allowed, true
}

func (c *decisionCache) set(subject, object, action string, allowed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[cacheKey(subject, object, action)] = decision{allowed: allowed, expiresAt: c.now().Add(c.ttl)}
}

// prune removes expired decisions and returns how many were dropped.
func (c *decisionCache) prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	dropped := 0
	for key, d := range c.items {
		if now.After(d.expiresAt) {
			delete(c.items, key)
			dropped++
		}
	}
	return dropped
}

func (c *decisionCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]decision)
}

func (c *decisionCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
