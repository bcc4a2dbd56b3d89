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

// Package cmap provides a sharded concurrent map.
package cmap

import (
	"hash/maphash"
	"sync"
)

const shardCount = 16

type shard[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]V
}

// Map is a map safe for concurrent use. Keys are spread over shards, each
// with its own lock.
type Map[K comparable, V any] struct {
	seed   maphash.Seed
	shards [shardCount]*shard[K, V]
}

// New creates an empty Map.
func New[K comparable, V any]() *Map[K, V] {
	m := &Map[K, V]{seed: maphash.MakeSeed()}
	for i := range m.shards {
		m.shards[i] = &shard[K, V]{items: make(map[K]V)}
	}
	return m
}

func (m *Map[K, V]) shardOf(key K) *shard[K, V] {
	return m.shards[maphash.Comparable(m.seed, key)%shardCount]
}

// Get returns the value stored under key.
func (m *Map[K, V]) Get(key K) (V, bool) {
	s := m.shardOf(key)
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.items[key]
	return v, ok
}

// Upsert stores the result of fn, called with the current value under key
// while the key's shard is locked.
func (m *Map[K, V]) Upsert(key K, fn func(value V, exists bool) V) V {
	s := m.shardOf(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.items[key]
	v = fn(v, ok)
	s.items[key] = v
	return v
}

// Delete removes the entry under key if fn, called with the current value
// while the key's shard is locked, returns true.
func (m *Map[K, V]) Delete(key K, fn func(value V, exists bool) bool) bool {
	s := m.shardOf(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.items[key]
	if !fn(v, ok) || !ok {
		return false
	}
	delete(s.items, key)
	return true
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int {
	n := 0
	for _, s := range m.shards {
		s.mu.RLock()
		n += len(s.items)
		s.mu.RUnlock()
	}
	return n
}

// Keys returns every key in no particular order.
func (m *Map[K, V]) Keys() []K {
	var keys []K
	for _, s := range m.shards {
		s.mu.RLock()
		for k := range s.items {
			keys = append(keys, k)
		}
		s.mu.RUnlock()
	}
	return keys
}
