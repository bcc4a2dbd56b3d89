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

package relay_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blitzboard/blitzboard/api/wire"
	"github.com/blitzboard/blitzboard/server/backend"
	"github.com/blitzboard/blitzboard/server/backend/database"
	"github.com/blitzboard/blitzboard/server/profiling/prometheus"
	"github.com/blitzboard/blitzboard/server/relay"
)

const readTimeout = 2 * time.Second

func newTestRelay(t *testing.T) (*relay.Server, *backend.Backend, *httptest.Server) {
	t.Helper()

	metrics, err := prometheus.NewMetrics()
	require.NoError(t, err)

	be, err := backend.New(context.Background(), &backend.Config{
		StoreURL:         "memory://",
		AutosaveInterval: "1h",
	}, metrics)
	require.NoError(t, err)

	conf := &relay.Config{}
	conf.EnsureDefaultValue()
	s, err := relay.NewServer(conf, be)
	require.NoError(t, err)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		s.Shutdown(false)
		ts.Close()
		assert.NoError(t, be.Shutdown())
	})

	return s, be, ts
}

func dial(t *testing.T, ts *httptest.Server, docID string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/" + docID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, m wire.Message) {
	t.Helper()

	frame, err := wire.Encode(m)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, frame))
}

func receive(t *testing.T, conn *websocket.Conn) wire.Message {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(readTimeout)))
	_, frame, err := conn.ReadMessage()
	require.NoError(t, err)
	m, err := wire.Decode(frame)
	require.NoError(t, err)
	return m
}

func TestRelay(t *testing.T) {
	t.Run("frames reach every peer of the document test", func(t *testing.T) {
		s, _, ts := newTestRelay(t)

		a := dial(t, ts, "d1")
		b := dial(t, ts, "d1")
		other := dial(t, ts, "d2")
		assert.Eventually(t, func() bool {
			return s.Hub().Len("d1") == 2 && s.Hub().Len("d2") == 1
		}, time.Second, 10*time.Millisecond)
		assert.Equal(t, 2, s.Hub().Documents())

		edit := wire.Edit{UserID: "u1", Content: "hello!"}
		send(t, a, edit)
		assert.Equal(t, edit, receive(t, a))
		assert.Equal(t, edit, receive(t, b))

		cursor := wire.Cursor{UserID: "u2", Name: "Bob", Position: 3}
		send(t, b, cursor)
		assert.Equal(t, cursor, receive(t, a))

		send(t, other, wire.Presence{UserID: "u3", Name: "Carol", Joined: true})
		assert.Equal(t, wire.Presence{UserID: "u3", Name: "Carol", Joined: true}, receive(t, other))
	})

	t.Run("malformed frames are dropped test", func(t *testing.T) {
		s, be, ts := newTestRelay(t)

		a := dial(t, ts, "d1")
		b := dial(t, ts, "d1")
		assert.Eventually(t, func() bool {
			return s.Hub().Len("d1") == 2
		}, time.Second, 10*time.Millisecond)

		require.NoError(t, a.WriteMessage(websocket.TextMessage, []byte(`not json`)))
		require.NoError(t, a.WriteMessage(websocket.TextMessage, []byte(`{"type":"edit","content":"x"}`)))
		require.NoError(t, a.WriteMessage(websocket.TextMessage, []byte(`{"type":"cursor","userID":"u1","position":-1}`)))
		require.NoError(t, a.WriteMessage(websocket.TextMessage, []byte(`{"type":"unknown","userID":"u1"}`)))

		edit := wire.Edit{UserID: "u1", Content: ""}
		send(t, a, edit)
		assert.Equal(t, edit, receive(t, b))

		assert.Equal(t, float64(4), testutil.ToFloat64(be.Metrics.FramesDropped(relay.DropMalformed)))
	})

	t.Run("edits are autosaved test", func(t *testing.T) {
		_, be, ts := newTestRelay(t)
		ctx := context.Background()

		_, err := be.DB.CreateDocInfo(ctx, database.NewDocInfo("d1", "owner"))
		require.NoError(t, err)

		a := dial(t, ts, "d1")
		send(t, a, wire.Edit{UserID: "owner", Content: "draft"})
		send(t, a, wire.Edit{UserID: "owner", Content: "final"})
		receive(t, a)
		receive(t, a)

		assert.Equal(t, 1, be.Autosaver.Flush(ctx))
		info, err := be.DB.FindDocInfo(ctx, "d1")
		require.NoError(t, err)
		assert.Equal(t, "final", info.Content)
	})

	t.Run("room is closed when the last peer leaves test", func(t *testing.T) {
		s, _, ts := newTestRelay(t)

		a := dial(t, ts, "d1")
		assert.Eventually(t, func() bool {
			return s.Hub().Len("d1") == 1
		}, time.Second, 10*time.Millisecond)

		require.NoError(t, a.Close())
		assert.Eventually(t, func() bool {
			return s.Hub().Documents() == 0
		}, time.Second, 10*time.Millisecond)
	})
}

func TestHealth(t *testing.T) {
	_, _, ts := newTestRelay(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Status string    `json:"status"`
		Time   time.Time `json:"time"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
	assert.WithinDuration(t, time.Now(), body.Time, time.Minute)
}
