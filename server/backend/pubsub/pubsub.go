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

// Package pubsub fans out relay frames to every subscriber of a document,
// either within one process or across relays through Redis.
package pubsub

import (
	"context"
	"slices"

	"github.com/blitzboard/blitzboard/pkg/cmap"
	"github.com/blitzboard/blitzboard/pkg/errors"
)

// subscriptionBufferSize is the buffer of each subscription channel.
const subscriptionBufferSize = 256

// ErrBrokerClosed is returned when using a broker that has been closed.
var ErrBrokerClosed = errors.Unavailable("broker closed").WithCode("ErrBrokerClosed")

// Broker publishes frames to the subscribers of a document.
type Broker interface {
	// Publish sends the frame to every subscriber of the document.
	Publish(ctx context.Context, docID string, frame []byte) error

	// Subscribe starts receiving the frames published to the document.
	Subscribe(ctx context.Context, docID string) (*Subscription, error)

	// Close releases the resources of the broker.
	Close() error
}

// Channel returns the name of the channel frames of the document travel on.
func Channel(docID string) string {
	return "doc:" + docID
}

// Memory is a Broker for a single relay process.
type Memory struct {
	subs *cmap.Map[string, []*Subscription]
}

// NewMemory creates an in-process Broker.
func NewMemory() *Memory {
	return &Memory{subs: cmap.New[string, []*Subscription]()}
}

// Publish delivers the frame to every subscription of the document.
func (m *Memory) Publish(_ context.Context, docID string, frame []byte) error {
	subs, _ := m.subs.Get(docID)
	for _, sub := range subs {
		sub.Publish(frame)
	}
	return nil
}

// Subscribe registers a new subscription of the document. Closing the
// subscription unregisters it.
func (m *Memory) Subscribe(_ context.Context, docID string) (*Subscription, error) {
	sub := NewSubscription(docID, subscriptionBufferSize)
	sub.onClose = func() {
		m.subs.Upsert(docID, func(subs []*Subscription, _ bool) []*Subscription {
			return slices.DeleteFunc(slices.Clone(subs), func(s *Subscription) bool {
				return s == sub
			})
		})
		m.subs.Delete(docID, func(subs []*Subscription, exists bool) bool {
			return exists && len(subs) == 0
		})
	}

	m.subs.Upsert(docID, func(subs []*Subscription, _ bool) []*Subscription {
		return append(slices.Clone(subs), sub)
	})
	return sub, nil
}

// Len returns the number of subscriptions of the document.
func (m *Memory) Len(docID string) int {
	subs, _ := m.subs.Get(docID)
	return len(subs)
}

// Close does nothing; subscriptions are closed by their owners.
func (m *Memory) Close() error {
	return nil
}
