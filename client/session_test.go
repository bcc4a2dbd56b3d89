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

package client_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blitzboard/blitzboard/api/types"
	"github.com/blitzboard/blitzboard/client"
	"github.com/blitzboard/blitzboard/server/backend"
	"github.com/blitzboard/blitzboard/server/backend/database"
	"github.com/blitzboard/blitzboard/server/relay"
)

const (
	waitFor = 2 * time.Second
	tick    = 10 * time.Millisecond
)

var (
	alice = types.Session{UserID: "u-alice", Email: "alice@example.com", Name: "Alice"}
	bob   = types.Session{UserID: "u-bob", Email: "bob@example.com", Name: "Bob"}
	carol = types.Session{UserID: "u-carol", Email: "carol@example.com"}
)

// countingStore counts the content writes made through it.
type countingStore struct {
	database.Database
	contentWrites atomic.Int32
}

func (s *countingStore) UpdateDocContent(ctx context.Context, id, content string) error {
	s.contentWrites.Add(1)
	return s.Database.UpdateDocContent(ctx, id, content)
}

// droppingDialer dials websockets and lets a test break the live one.
type droppingDialer struct {
	dialer *client.WebsocketDialer

	mu    sync.Mutex
	dials int
	last  client.Conn
}

func (d *droppingDialer) Dial(ctx context.Context, url string) (client.Conn, error) {
	conn, err := d.dialer.Dial(ctx, url)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.dials++
	d.last = conn
	return conn, nil
}

func (d *droppingDialer) Dials() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}

func (d *droppingDialer) Drop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	_ = d.last.Close()
}

func memberIDs(v client.View) []string {
	var ids []string
	for _, m := range v.Members {
		ids = append(ids, m.UserID)
	}
	return ids
}

type testEnv struct {
	db       database.Database
	relay    *relay.Server
	relayURL string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	be, err := backend.New(context.Background(), &backend.Config{
		StoreURL:         "memory://",
		AutosaveInterval: "0s",
	}, nil)
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

	ctx := context.Background()
	for _, user := range []types.Session{alice, bob, carol} {
		_, err := be.DB.EnsureUserInfo(ctx, database.NewUserInfo(user.UserID, user.Email, user.Name))
		require.NoError(t, err)
	}

	return &testEnv{
		db:       be.DB,
		relay:    s,
		relayURL: "ws" + strings.TrimPrefix(ts.URL, "http"),
	}
}

func (e *testEnv) newClient(t *testing.T, store client.Store, user types.Session, opts ...client.Option) *client.Client {
	t.Helper()

	opts = append([]client.Option{
		client.WithRelayURL(e.relayURL),
		client.WithDebounce(20 * time.Millisecond),
		client.WithReconnect(10*time.Millisecond, 2),
	}, opts...)
	cli, err := client.New(store, user, opts...)
	require.NoError(t, err)
	return cli
}

func (e *testEnv) createDoc(t *testing.T, owner types.Session, content string, sharedWith ...string) string {
	t.Helper()

	info := database.NewDocInfo(uuid.NewString(), owner.UserID)
	info.Content = content
	info.SharedWith = append(info.SharedWith, sharedWith...)
	created, err := e.db.CreateDocInfo(context.Background(), info)
	require.NoError(t, err)
	return created.ID
}

func (e *testEnv) open(t *testing.T, cli *client.Client, docID string) *client.Session {
	t.Helper()

	s, err := cli.Open(context.Background(), docID)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	assert.Eventually(t, func() bool { return s.View().State == client.Open }, waitFor, tick)
	return s
}

func TestSession(t *testing.T) {
	t.Run("edits reach peers and are persisted by the author test", func(t *testing.T) {
		env := newTestEnv(t)
		docID := env.createDoc(t, alice, "hello", bob.Email)

		bobStore := &countingStore{Database: env.db}
		sa := env.open(t, env.newClient(t, env.db, alice), docID)
		sb := env.open(t, env.newClient(t, bobStore, bob), docID)
		assert.Eventually(t, func() bool { return env.relay.Hub().Len(docID) == 2 }, waitFor, tick)

		sa.Type("hello!")
		assert.Equal(t, "hello!", sa.View().Content)
		assert.Eventually(t, func() bool { return sb.View().Content == "hello!" }, waitFor, tick)

		assert.Eventually(t, func() bool {
			info, err := env.db.FindDocInfo(context.Background(), docID)
			return err == nil && info.Content == "hello!"
		}, waitFor, tick)
		assert.Equal(t, int32(0), bobStore.contentWrites.Load())
	})

	t.Run("members and cursors test", func(t *testing.T) {
		env := newTestEnv(t)
		docID := env.createDoc(t, alice, "line one\nline two", bob.Email)

		sa := env.open(t, env.newClient(t, env.db, alice), docID)
		sb := env.open(t, env.newClient(t, env.db, bob, client.WithExcludeSelf()), docID)

		assert.Eventually(t, func() bool {
			members := sa.View().Members
			return len(members) == 2
		}, waitFor, tick)
		assert.Eventually(t, func() bool { return len(sb.View().Members) == 0 }, waitFor, tick)

		sb.MoveCursor(12)
		assert.Eventually(t, func() bool {
			for _, mark := range sa.View().Cursors {
				if mark.Entry.UserID == bob.UserID {
					return mark.Location.Line == 1 && mark.Location.Column == 3
				}
			}
			return false
		}, waitFor, tick)

		require.NoError(t, sb.Close())
		assert.Eventually(t, func() bool { return len(sa.View().Members) == 1 }, waitFor, tick)
		assert.Equal(t, alice.UserID, sa.View().Members[0].UserID)
	})

	t.Run("read-only users cannot change the document test", func(t *testing.T) {
		env := newTestEnv(t)
		docID := env.createDoc(t, alice, "secret")

		s := env.open(t, env.newClient(t, env.db, carol), docID)
		view := s.View()
		assert.Equal(t, "Read-only", view.Role)
		assert.False(t, view.Permission.CanEdit())

		s.Type("changed")
		s.MoveCursor(1)
		assert.Equal(t, "secret", s.View().Content)
		assert.ErrorIs(t, s.Rename(context.Background(), "mine"), client.ErrNotOwner)
		assert.ErrorIs(t, s.Share(context.Background(), bob.Email), client.ErrNotOwner)

		require.NoError(t, s.Close())
		info, err := env.db.FindDocInfo(context.Background(), docID)
		require.NoError(t, err)
		assert.Equal(t, "secret", info.Content)
	})

	t.Run("rename and share test", func(t *testing.T) {
		env := newTestEnv(t)
		docID := env.createDoc(t, alice, "")
		ctx := context.Background()

		var mu sync.Mutex
		var titles []string
		s := env.open(t, env.newClient(t, env.db, alice, client.WithChangeHandler(func(v client.View) {
			mu.Lock()
			defer mu.Unlock()
			titles = append(titles, v.Title)
		})), docID)
		assert.Equal(t, types.DefaultTitle, s.View().Title)
		assert.Equal(t, "Owner", s.View().Role)

		require.NoError(t, s.Rename(ctx, "Plan"))
		assert.Equal(t, "Plan", s.View().Title)
		assert.Eventually(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			return len(titles) > 0 && titles[len(titles)-1] == "Plan"
		}, waitFor, tick)

		require.NoError(t, s.Share(ctx, bob.Email))
		assert.ErrorIs(t, s.Share(ctx, bob.Email), client.ErrAlreadyShared)
		assert.ErrorIs(t, s.Share(ctx, "nobody@example.com"), client.ErrUserNotFound)
		assert.ErrorIs(t, s.Share(ctx, "  "), client.ErrEmptyEmail)
		assert.Equal(t, []string{bob.Email}, s.View().SharedWith)

		users, err := s.SharedUsers(ctx)
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, "Bob", users[0].DisplayName())

		info, err := env.db.FindDocInfo(ctx, docID)
		require.NoError(t, err)
		assert.Equal(t, "Plan", info.Title)
		assert.Equal(t, []string{bob.Email}, info.SharedWith)
	})

	t.Run("close persists a pending edit test", func(t *testing.T) {
		env := newTestEnv(t)
		docID := env.createDoc(t, alice, "")

		cli := env.newClient(t, env.db, alice, client.WithDebounce(time.Hour))
		s := env.open(t, cli, docID)
		s.Type("draft")
		assert.Eventually(t, func() bool { return s.View().Content == "draft" }, waitFor, tick)

		require.NoError(t, s.Close())
		assert.Equal(t, client.Closed, s.View().State)
		assert.Equal(t, client.StatusDisconnected, s.View().Status)

		info, err := env.db.FindDocInfo(context.Background(), docID)
		require.NoError(t, err)
		assert.Equal(t, "draft", info.Content)

		// A closed session ignores further input.
		s.Type("late")
		assert.Equal(t, "draft", s.View().Content)
	})

	t.Run("close after a burst of typing persists the last value test", func(t *testing.T) {
		env := newTestEnv(t)
		docID := env.createDoc(t, alice, "")

		cli := env.newClient(t, env.db, alice, client.WithDebounce(time.Hour))
		s := env.open(t, cli, docID)
		for _, text := range []string{"n", "no", "not", "note", "notes"} {
			s.Type(text)
		}
		assert.Eventually(t, func() bool { return s.View().Content == "notes" }, waitFor, tick)

		closed := make(chan error, 1)
		go func() { closed <- s.Close() }()
		select {
		case err := <-closed:
			require.NoError(t, err)
		case <-time.After(waitFor):
			t.Fatal("close blocked after a burst of typing")
		}

		info, err := env.db.FindDocInfo(context.Background(), docID)
		require.NoError(t, err)
		assert.Equal(t, "notes", info.Content)
	})

	t.Run("reconnect clears members until they announce again test", func(t *testing.T) {
		env := newTestEnv(t)
		docID := env.createDoc(t, alice, "", bob.Email)

		dialer := &droppingDialer{dialer: client.NewWebsocketDialer()}
		sa := env.open(t, env.newClient(t, env.db, alice, client.WithDialer(dialer)), docID)
		bobClient := env.newClient(t, env.db, bob)
		sb := env.open(t, bobClient, docID)
		assert.Eventually(t, func() bool {
			return assert.ObjectsAreEqual([]string{alice.UserID, bob.UserID}, memberIDs(sa.View()))
		}, waitFor, tick)

		dialer.Drop()
		assert.Eventually(t, func() bool {
			v := sa.View()
			return dialer.Dials() == 2 && v.State == client.Open &&
				assert.ObjectsAreEqual([]string{alice.UserID}, memberIDs(v))
		}, waitFor, tick)

		// bob is still connected but has not announced itself since.
		assert.Never(t, func() bool { return len(sa.View().Members) != 1 }, 100*time.Millisecond, tick)

		require.NoError(t, sb.Close())
		env.open(t, bobClient, docID)
		assert.Eventually(t, func() bool {
			return assert.ObjectsAreEqual([]string{alice.UserID, bob.UserID}, memberIDs(sa.View()))
		}, waitFor, tick)
	})

	t.Run("open unknown document test", func(t *testing.T) {
		env := newTestEnv(t)
		cli := env.newClient(t, env.db, alice)

		_, err := cli.Open(context.Background(), "missing")
		assert.ErrorIs(t, err, client.ErrLoadDocument)
		assert.ErrorIs(t, err, database.ErrDocumentNotFound)
	})

	t.Run("reconnect gives up when the relay is gone test", func(t *testing.T) {
		env := newTestEnv(t)
		docID := env.createDoc(t, alice, "")

		cli := env.newClient(t, env.db, alice, client.WithRelayURL("ws://127.0.0.1:1"))
		s, err := cli.Open(context.Background(), docID)
		require.NoError(t, err)
		defer func() { _ = s.Close() }()

		assert.Eventually(t, func() bool { return s.View().State == client.Failed }, waitFor, tick)
		assert.Equal(t, client.StatusFailed, s.View().Status)
	})
}
