/*
 * Copyright 2026 The BlitzBoard Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package cache provides an expiring LRU cache with hit statistics.
package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// ErrInvalidSize is returned when the cache size is not positive.
var ErrInvalidSize = errors.New("cache size must be positive")

// Stats counts lookups of a cache.
type Stats struct {
	hits   atomic.Int64
	misses atomic.Int64
}

// Hits returns the number of lookups that found a value.
func (s *Stats) Hits() int64 { return s.hits.Load() }

// Misses returns the number of lookups that found nothing.
func (s *Stats) Misses() int64 { return s.misses.Load() }

// HitRate returns the share of hits in percent.
func (s *Stats) HitRate() float64 {
	total := s.Hits() + s.Misses()
	if total == 0 {
		return 0
	}
	return float64(s.Hits()) / float64(total) * 100
}

// LRU is a size bounded cache whose entries expire after a fixed TTL.
type LRU[K comparable, V any] struct {
	name  string
	lru   *expirable.LRU[K, V]
	stats Stats
}

// NewLRU creates an LRU holding at most size entries for ttl each.
func NewLRU[K comparable, V any](name string, size int, ttl time.Duration) (*LRU[K, V], error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}

	return &LRU[K, V]{
		name: name,
		lru:  expirable.NewLRU[K, V](size, nil, ttl),
	}, nil
}

// Name returns the name of the cache.
func (c *LRU[K, V]) Name() string { return c.name }

// Stats returns the lookup statistics.
func (c *LRU[K, V]) Stats() *Stats { return &c.stats }

// Len returns the number of live entries.
func (c *LRU[K, V]) Len() int { return c.lru.Len() }

// Get returns the value stored under key.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	v, ok := c.lru.Get(key)
	if ok {
		c.stats.hits.Add(1)
	} else {
		c.stats.misses.Add(1)
	}
	return v, ok
}

// Add stores value under key.
func (c *LRU[K, V]) Add(key K, value V) {
	c.lru.Add(key, value)
}

// Remove drops the entry under key.
func (c *LRU[K, V]) Remove(key K) {
	c.lru.Remove(key)
}

// Purge drops every entry.
func (c *LRU[K, V]) Purge() {
	c.lru.Purge()
}

// GetMany returns the cached values for keys. Keys that are missing are
// fetched in one call to load and cached. Keys load does not return are left
// out of the result.
func (c *LRU[K, V]) GetMany(
	ctx context.Context,
	keys []K,
	load func(ctx context.Context, missing []K) (map[K]V, error),
) (map[K]V, error) {
	found := make(map[K]V, len(keys))
	var missing []K
	for _, key := range keys {
		if _, ok := found[key]; ok {
			continue
		}
		if v, ok := c.Get(key); ok {
			found[key] = v
			continue
		}
		missing = append(missing, key)
	}

	if len(missing) == 0 {
		return found, nil
	}

	loaded, err := load(ctx, missing)
	if err != nil {
		return found, err
	}
	for key, v := range loaded {
		c.Add(key, v)
		found[key] = v
	}
	return found, nil
}
