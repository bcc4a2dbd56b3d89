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

package relay

import (
	"context"
	"fmt"
	"sync"

	"github.com/blitzboard/blitzboard/pkg/cmap"
	"github.com/blitzboard/blitzboard/server/backend/pubsub"
	"github.com/blitzboard/blitzboard/server/logging"
)

// Reasons a frame is dropped, as reported to Metrics.
const (
	DropMalformed = "malformed"
	DropQueueFull = "queue_full"
	DropBroker    = "broker"
)

// Metrics receives the relay's counters.
type Metrics interface {
	AddPeer()
	RemovePeer()
	SetActiveDocuments(n int)
	AddFrameRelayed(frameType string)
	AddFrameDropped(reason string)
}

type nopMetrics struct{}

func (nopMetrics) AddPeer()               {}
func (nopMetrics) RemovePeer()            {}
func (nopMetrics) SetActiveDocuments(int) {}
func (nopMetrics) AddFrameRelayed(string) {}
func (nopMetrics) AddFrameDropped(string) {}

// room holds the peers of one document and its broker subscription.
type room struct {
	docID string

	mu     sync.RWMutex
	peers  map[string]*peer
	sub    *pubsub.Subscription
	closed bool
}

func newRoom(docID string) *room {
	return &room{
		docID: docID,
		peers: make(map[string]*peer),
	}
}

// subscribe subscribes the room to the broker once and starts forwarding
// frames to its peers.
func (r *room) subscribe(ctx context.Context, broker pubsub.Broker, onDrop func()) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return fmt.Errorf("subscribe %s: room closed", r.docID)
	}
	if r.sub != nil {
		return nil
	}

	sub, err := broker.Subscribe(ctx, r.docID)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", r.docID, err)
	}
	r.sub = sub

	go func() {
		for frame := range sub.Events() {
			r.broadcast(frame, onDrop)
		}
	}()
	return nil
}

// broadcast queues the frame on every peer. Peers whose queue is full miss
// the frame.
func (r *room) broadcast(frame []byte, onDrop func()) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.peers {
		if !p.enqueue(frame) {
			onDrop()
		}
	}
}

func (r *room) close() {
	r.mu.Lock()
	r.closed = true
	sub := r.sub
	r.mu.Unlock()

	if sub != nil {
		sub.Close()
	}
}

// Hub tracks the rooms of every document with at least one peer.
type Hub struct {
	broker  pubsub.Broker
	metrics Metrics
	release func(docID string)
	logger  logging.Logger

	rooms *cmap.Map[string, *room]
}

// NewHub creates a Hub that relays frames through the given broker. release,
// if not nil, is called with the document whose last peer left.
func NewHub(broker pubsub.Broker, metrics Metrics, release func(docID string)) *Hub {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Hub{
		broker:  broker,
		metrics: metrics,
		release: release,
		logger:  logging.New("hub"),
		rooms:   cmap.New[string, *room](),
	}
}

// join adds the peer to the room of its document, creating the room and its
// subscription when the peer is the first one.
func (h *Hub) join(ctx context.Context, p *peer) error {
	var joined *room
	h.rooms.Upsert(p.docID, func(r *room, exists bool) *room {
		if !exists {
			r = newRoom(p.docID)
		}
		r.mu.Lock()
		r.peers[p.id] = p
		r.mu.Unlock()
		joined = r
		return r
	})

	if err := joined.subscribe(ctx, h.broker, func() {
		h.metrics.AddFrameDropped(DropQueueFull)
	}); err != nil {
		h.leave(p)
		return err
	}

	h.metrics.AddPeer()
	h.metrics.SetActiveDocuments(h.rooms.Len())
	logging.From(ctx).Debugf("peer %s joined %s", p.id, p.docID)
	return nil
}

// leave removes the peer and closes the room once it is empty.
func (h *Hub) leave(p *peer) {
	var emptied *room
	removed := false
	h.rooms.Delete(p.docID, func(r *room, exists bool) bool {
		if !exists {
			return false
		}
		r.mu.Lock()
		defer r.mu.Unlock()

		if _, ok := r.peers[p.id]; ok {
			delete(r.peers, p.id)
			removed = true
		}
		if len(r.peers) == 0 {
			emptied = r
			return true
		}
		return false
	})

	p.close()
	if emptied != nil {
		emptied.close()
		if h.release != nil {
			h.release(p.docID)
		}
	}
	if removed {
		h.metrics.RemovePeer()
		h.metrics.SetActiveDocuments(h.rooms.Len())
		h.logger.Debugf("peer %s left %s", p.id, p.docID)
	}
}

// Len returns the number of peers of the document.
func (h *Hub) Len(docID string) int {
	r, ok := h.rooms.Get(docID)
	if !ok {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.peers)
}

// Documents returns the number of documents with at least one peer.
func (h *Hub) Documents() int {
	return h.rooms.Len()
}

// Close disconnects every peer.
func (h *Hub) Close() {
	for _, docID := range h.rooms.Keys() {
		r, ok := h.rooms.Get(docID)
		if !ok {
			continue
		}
		r.mu.RLock()
		peers := make([]*peer, 0, len(r.peers))
		for _, p := range r.peers {
			peers = append(peers, p)
		}
		r.mu.RUnlock()

		for _, p := range peers {
			h.leave(p)
		}
	}
}
