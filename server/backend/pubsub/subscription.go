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

package pubsub

import (
	"sync"
	"time"

	"github.com/rs/xid"
)

// publishTimeout is how long Publish waits for a full subscription.
const publishTimeout = 100 * time.Millisecond

// Subscription receives the frames published to one document.
type Subscription struct {
	id     string
	docID  string
	mu     sync.Mutex
	closed bool
	events chan []byte

	onClose func()
}

// NewSubscription creates a Subscription with the given buffer size.
func NewSubscription(docID string, bufSize int) *Subscription {
	return &Subscription{
		id:     xid.New().String(),
		docID:  docID,
		events: make(chan []byte, bufSize),
	}
}

// ID returns the id of this subscription.
func (s *Subscription) ID() string {
	return s.id
}

// DocID returns the document this subscription listens to.
func (s *Subscription) DocID() string {
	return s.docID
}

// Events returns the channel frames are delivered on. It is closed when the
// subscription is closed.
func (s *Subscription) Events() <-chan []byte {
	return s.events
}

// Publish delivers the frame to the subscriber. It gives up when the
// subscription stays full for publishTimeout.
func (s *Subscription) Publish(frame []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}

	select {
	case s.events <- frame:
		return true
	case <-time.After(publishTimeout):
		return false
	}
}

// Close closes the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.events)
	onClose := s.onClose
	s.mu.Unlock()

	if onClose != nil {
		onClose()
	}
}
