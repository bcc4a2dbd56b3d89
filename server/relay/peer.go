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
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/xid"

	"github.com/blitzboard/blitzboard/server/logging"
)

// writeWait is the time allowed to write one frame to a peer.
const writeWait = 10 * time.Second

// peer is one websocket connection to a document.
type peer struct {
	id     string
	docID  string
	conn   *websocket.Conn
	logger logging.Logger

	mu     sync.Mutex
	closed bool
	send   chan []byte
}

func newPeer(docID string, conn *websocket.Conn, queueSize int) *peer {
	id := xid.New().String()
	return &peer{
		id:     id,
		docID:  docID,
		conn:   conn,
		logger: logging.New("relay", logging.NewField("doc", docID), logging.NewField("peer", id)),
		send:   make(chan []byte, queueSize),
	}
}

// enqueue queues the frame without blocking. It returns false when the
// queue is full or the peer is gone.
func (p *peer) enqueue(frame []byte) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return false
	}

	select {
	case p.send <- frame:
		return true
	default:
		return false
	}
}

// close stops the write loop once the queue is drained.
func (p *peer) close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	close(p.send)
}

// writeLoop writes queued frames and pings to the connection until the
// queue is closed or a write fails.
func (p *peer) writeLoop(pingInterval time.Duration) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = p.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-p.send:
			_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = p.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := p.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				p.logger.Debugf("write: %v", err)
				return
			}
		case <-ticker.C:
			_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				p.logger.Debugf("ping: %v", err)
				return
			}
		}
	}
}

// readLoop hands every inbound frame to fn until the connection fails or
// the peer stays silent for longer than pongTimeout.
func (p *peer) readLoop(maxFrameBytes int64, pongTimeout time.Duration, fn func(frame []byte)) {
	p.conn.SetReadLimit(maxFrameBytes)
	_ = p.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	p.conn.SetPongHandler(func(string) error {
		return p.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})

	for {
		_, frame, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				p.logger.Warnf("read: %v", err)
			}
			return
		}
		_ = p.conn.SetReadDeadline(time.Now().Add(pongTimeout))
		fn(frame)
	}
}
