// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

/*
Package cache provides a thread-safe LRU cache with TTL expiry.

The remote text classifier uses it to remember toxicity and stance answers.
Coordinated campaigns repeat the same text across many accounts, so a
batch of copy-paste posts costs one remote call per distinct text.

# Behaviour

  - O(1) Get, Add and Remove via a hashmap over a doubly-linked list
  - least recently used entries are evicted once capacity is reached
  - entries expire lazily on Get; CleanupExpired sweeps them eagerly
  - Stats reports hits, misses and size

# Usage

	c := cache.NewLRU[nlp.ToxicityResult](10000, time.Hour)
	if res, ok := c.Get(key); ok {
	    return res, nil
	}
	c.Add(key, res)
*/
package cache
