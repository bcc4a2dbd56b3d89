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

// Package cursor tracks the last known caret of every remote participant and
// maps carets to approximate screen positions.
package cursor

import (
	"maps"
	"sync"

	"github.com/blitzboard/blitzboard/api/wire"
)

// Entry is the last known cursor of a participant.
type Entry struct {
	UserID      string
	DisplayName string
	Position    int
	Color       Color
}

// Tracker holds the cursors of one editor session. Entries are upserted on
// every cursor event and never removed, so the cursor of a participant that
// left stays at its last position.
type Tracker struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{entries: make(map[string]Entry)}
}

// Apply upserts the cursor of the event's sender. It returns false only for
// events without a sender.
func (t *Tracker) Apply(c wire.Cursor) bool {
	if c.UserID == "" {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries[c.UserID] = Entry{
		UserID:      c.UserID,
		DisplayName: c.Name,
		Position:    c.Position,
		Color:       ColorOf(c.UserID),
	}
	return true
}

// Cursors returns a copy of the entries keyed by user ID.
func (t *Tracker) Cursors() map[string]Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return maps.Clone(t.entries)
}

// Mark is a cursor that can be drawn over the given content.
type Mark struct {
	Entry
	Location  Location
	Placement Placement
}

// Marks returns the cursors that fall inside the content together with
// their placement. Cursors beyond the end of the content are skipped.
func (t *Tracker) Marks(content string) []Mark {
	t.mu.RLock()
	defer t.mu.RUnlock()

	marks := make([]Mark, 0, len(t.entries))
	for _, entry := range t.entries {
		loc, ok := Locate(content, entry.Position)
		if !ok {
			continue
		}
		marks = append(marks, Mark{
			Entry:     entry,
			Location:  loc,
			Placement: loc.Placement(),
		})
	}
	return marks
}
