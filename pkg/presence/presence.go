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

// Package presence tracks which participants are currently on a document.
//
// The member set is a replay of the presence events received since the
// connection was opened. There is no heartbeat: a participant that goes away
// without announcing a leave stays listed until the next Reset.
package presence

import (
	"maps"
	"sort"
	"sync"

	"github.com/blitzboard/blitzboard/api/wire"
)

// Member is a participant currently on the document.
type Member struct {
	UserID      string
	DisplayName string
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithExcluded keeps the given user out of the member set. It is used to hide
// the local participant from its own list.
func WithExcluded(userID string) Option {
	return func(t *Tracker) { t.excluded = userID }
}

// Tracker holds the member set of one editor session.
type Tracker struct {
	mu       sync.RWMutex
	excluded string
	members  map[string]string
}

// New creates an empty Tracker.
func New(opts ...Option) *Tracker {
	t := &Tracker{members: make(map[string]string)}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Apply applies a presence event. It returns true if the member set changed.
// A leave for an unknown participant is a no-op.
func (t *Tracker) Apply(p wire.Presence) bool {
	if p.UserID == "" || p.UserID == t.excluded {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if p.Joined {
		if name, ok := t.members[p.UserID]; ok && name == p.Name {
			return false
		}
		t.members[p.UserID] = p.Name
		return true
	}

	if _, ok := t.members[p.UserID]; !ok {
		return false
	}
	delete(t.members, p.UserID)
	return true
}

// Members returns a copy of the member set keyed by user ID.
func (t *Tracker) Members() map[string]string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return maps.Clone(t.members)
}

// List returns the members sorted by display name, then user ID.
func (t *Tracker) List() []Member {
	t.mu.RLock()
	list := make([]Member, 0, len(t.members))
	for id, name := range t.members {
		list = append(list, Member{UserID: id, DisplayName: name})
	}
	t.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		if list[i].DisplayName != list[j].DisplayName {
			return list[i].DisplayName < list[j].DisplayName
		}
		return list[i].UserID < list[j].UserID
	})
	return list
}

// Len returns the number of members.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.members)
}

// Reset clears the member set. It is called whenever a connection (re)opens,
// since history is not replayed on a new connection.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	clear(t.members)
}
