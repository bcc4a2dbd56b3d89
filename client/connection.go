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

package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"

	"github.com/blitzboard/blitzboard/api/types"
	"github.com/blitzboard/blitzboard/api/wire"
	"github.com/blitzboard/blitzboard/pkg/errors"
	"github.com/blitzboard/blitzboard/server/logging"
)

// State is the state of a Connection.
type State int

// The states of a Connection.
const (
	Connecting State = iota
	Open
	Closed
	Reconnecting
	Failed
)

// String returns the name of the state.
func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Open:
		return "open"
	case Closed:
		return "closed"
	case Reconnecting:
		return "reconnecting"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Status strings shown to the user.
const (
	StatusConnecting      = "Connecting…"
	StatusConnected       = "Connected"
	StatusReconnecting    = "Reconnecting…"
	StatusConnectionError = "Connection error"
	StatusFailed          = "Failed to reconnect"
	StatusDisconnected    = "Disconnected"
)

const writeTimeout = 10 * time.Second

var (
	// ErrNotOpen is returned when sending on a connection that is not open.
	ErrNotOpen = errors.FailedPrecond("connection is not open").WithCode("ErrNotOpen")

	// ErrEmptyDocID is returned when opening a connection without a document.
	ErrEmptyDocID = errors.InvalidArgument("document ID is empty").WithCode("ErrEmptyDocID")
)

// Conn is an established message-stream connection.
type Conn interface {
	// ReadMessage blocks until the next frame arrives.
	ReadMessage() ([]byte, error)
	// WriteMessage writes one frame. It may be called concurrently.
	WriteMessage(data []byte) error
	// Close closes the connection and unblocks ReadMessage.
	Close() error
}

// Dialer opens message-stream connections.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// WebsocketDialer is a Dialer over gorilla websockets.
type WebsocketDialer struct {
	dialer *websocket.Dialer
}

// NewWebsocketDialer creates a WebsocketDialer.
func NewWebsocketDialer() *WebsocketDialer {
	return &WebsocketDialer{dialer: &websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: 10 * time.Second,
	}}
}

// Dial opens a websocket to the given URL.
func (d *WebsocketDialer) Dial(ctx context.Context, url string) (Conn, error) {
	conn, resp, err := d.dialer.DialContext(ctx, url, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	return &websocketConn{conn: conn}, nil
}

type websocketConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *websocketConn) ReadMessage() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	return data, err
}

func (c *websocketConn) WriteMessage(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *websocketConn) Close() error {
	return c.conn.Close()
}

// Listener receives what happens on a Connection, in order, from the
// connection's goroutine.
type Listener interface {
	OnStatus(state State, status string)
	OnMessage(msg wire.Message)
}

// Connection is the message-stream connection of one editor session. It
// reconnects after abnormal closes with a fixed delay, up to a number of
// consecutive attempts, and gives up for good afterwards.
type Connection struct {
	relayURL      string
	user          types.Session
	dialer        Dialer
	delay         time.Duration
	maxReconnects int
	listener      Listener
	logger        logging.Logger

	mu     sync.Mutex
	docID  string
	state  State
	status string
	conn   Conn
	cancel context.CancelFunc
	done   chan struct{}
}

// NewConnection creates a Connection for the given user. It does not
// connect until Open is called.
func NewConnection(user types.Session, listener Listener, opts ...Option) *Connection {
	return newConnection(user, listener, newOptions(opts...))
}

func newConnection(user types.Session, listener Listener, o Options) *Connection {
	return &Connection{
		relayURL:      o.RelayURL,
		user:          user,
		dialer:        o.Dialer,
		delay:         o.ReconnectDelay,
		maxReconnects: o.MaxReconnects,
		listener:      listener,
		logger:        o.Logger,
		state:         Closed,
		status:        StatusDisconnected,
	}
}

// Open connects to the message stream of the document in the background.
// A connection to another document is fully closed first.
func (c *Connection) Open(ctx context.Context, docID string) error {
	if docID == "" {
		return ErrEmptyDocID
	}
	if err := c.Close(); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})

	c.mu.Lock()
	c.docID = docID
	c.cancel = cancel
	c.done = done
	c.mu.Unlock()

	c.setState(Connecting, StatusConnecting)
	go c.run(runCtx, docID, done)
	return nil
}

// Close leaves the document and closes the connection. It never reconnects
// afterwards. The leave is sent only if the connection is open.
func (c *Connection) Close() error {
	c.mu.Lock()
	if c.cancel == nil {
		c.mu.Unlock()
		return nil
	}
	c.cancel()
	done := c.done
	conn := c.conn
	open := c.state == Open
	c.cancel = nil
	c.done = nil
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		if open {
			c.sendLeave(conn)
		}
		_ = conn.Close()
	}
	<-done

	c.setState(Closed, StatusDisconnected)
	return nil
}

// Send sends the message to the peers of the document.
func (c *Connection) Send(msg wire.Message) error {
	c.mu.Lock()
	conn := c.conn
	open := c.state == Open
	c.mu.Unlock()

	if !open || conn == nil {
		return ErrNotOpen
	}

	data, err := wire.Encode(msg)
	if err != nil {
		return err
	}
	if err := conn.WriteMessage(data); err != nil {
		return fmt.Errorf("send %s: %w", msg.Type(), err)
	}
	return nil
}

// IsOpen returns whether messages can be sent.
func (c *Connection) IsOpen() bool {
	return c.State() == Open
}

// State returns the current state.
func (c *Connection) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Status returns the status string shown to the user.
func (c *Connection) Status() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// DocID returns the document of the last Open.
func (c *Connection) DocID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.docID
}

func (c *Connection) run(ctx context.Context, docID string, done chan struct{}) {
	defer close(done)

	streamURL := c.streamURL(docID)
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.delay), uint64(c.maxReconnects)),
		ctx,
	)

	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			wait := policy.NextBackOff()
			if wait == backoff.Stop {
				if ctx.Err() == nil {
					c.logger.Warnf("giving up on %s after %d attempts", docID, c.maxReconnects)
					c.setState(Failed, StatusFailed)
				}
				return
			}

			c.setState(Reconnecting, StatusReconnecting)
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}

		err := c.connect(ctx, streamURL, policy)
		if ctx.Err() != nil {
			return
		}
		c.logger.Warnf("connection to %s: %v", docID, err)
		c.setState(Reconnecting, StatusConnectionError)
	}
}

// connect dials once and reads until the connection breaks.
func (c *Connection) connect(ctx context.Context, streamURL string, policy backoff.BackOff) error {
	conn, err := c.dialer.Dial(ctx, streamURL)
	if err != nil {
		return fmt.Errorf("dial %s: %w", streamURL, err)
	}

	c.mu.Lock()
	if ctx.Err() != nil {
		c.mu.Unlock()
		_ = conn.Close()
		return ctx.Err()
	}
	c.conn = conn
	c.state = Open
	c.status = StatusConnected
	c.mu.Unlock()

	policy.Reset()
	c.notify(Open, StatusConnected)

	if err := c.Send(wire.Presence{
		UserID: c.user.UserID,
		Name:   c.user.DisplayName(),
		Joined: true,
	}); err != nil {
		c.logger.Debugf("send join: %v", err)
	}

	err = c.readLoop(conn)

	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.mu.Unlock()
	_ = conn.Close()

	return err
}

func (c *Connection) readLoop(conn Conn) error {
	for {
		data, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		msg, err := wire.Decode(data)
		if err != nil {
			logging.LogError(c.logger, "drop message", err)
			continue
		}
		if c.listener != nil {
			c.listener.OnMessage(msg)
		}
	}
}

func (c *Connection) sendLeave(conn Conn) {
	data, err := wire.Encode(wire.Presence{
		UserID: c.user.UserID,
		Name:   c.user.DisplayName(),
		Joined: false,
	})
	if err != nil {
		return
	}
	if err := conn.WriteMessage(data); err != nil {
		c.logger.Debugf("send leave: %v", err)
	}
}

func (c *Connection) setState(state State, status string) {
	c.mu.Lock()
	c.state = state
	c.status = status
	c.mu.Unlock()

	c.notify(state, status)
}

func (c *Connection) notify(state State, status string) {
	if c.listener != nil {
		c.listener.OnStatus(state, status)
	}
}

func (c *Connection) streamURL(docID string) string {
	return strings.TrimRight(c.relayURL, "/") + "/ws/" + url.PathEscape(docID)
}
