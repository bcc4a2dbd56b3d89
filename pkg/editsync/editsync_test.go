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

package editsync_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blitzboard/blitzboard/api/wire"
	"github.com/blitzboard/blitzboard/pkg/editsync"
)

type fakeStore struct {
	mu       sync.Mutex
	contents []string
	titles   []string
	err      error
}

func (s *fakeStore) UpdateDocContent(_ context.Context, _, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contents = append(s.contents, content)
	return s.err
}

func (s *fakeStore) UpdateDocTitle(_ context.Context, _, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.titles = append(s.titles, title)
	return s.err
}

func (s *fakeStore) Contents() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.contents...)
}

type fakeSender struct {
	mu   sync.Mutex
	open bool
	sent []wire.Message
}

func (s *fakeSender) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

func (s *fakeSender) Send(msg wire.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return nil
}

func TestLocalEdit(t *testing.T) {
	const debounce = 40 * time.Millisecond

	t.Run("burst persists only the last value test", func(t *testing.T) {
		store := &fakeStore{}
		sender := &fakeSender{open: true}
		s := editsync.New("d1", "u1", "hello", "T", store, sender, editsync.WithDebounce(debounce))

		for _, text := range []string{"hello!", "hello!!", "hello!!!"} {
			s.LocalEdit(text)
		}
		assert.Equal(t, "hello!!!", s.Content())
		assert.Empty(t, store.Contents())

		assert.Eventually(t, func() bool {
			return len(store.Contents()) == 1
		}, time.Second, 5*time.Millisecond)
		time.Sleep(2 * debounce)
		assert.Equal(t, []string{"hello!!!"}, store.Contents())
	})

	t.Run("broadcast full buffer while open test", func(t *testing.T) {
		sender := &fakeSender{open: true}
		s := editsync.New("d1", "u1", "", "", &fakeStore{}, sender, editsync.WithDebounce(time.Hour))
		s.LocalEdit("abc")

		require.Len(t, sender.sent, 1)
		assert.Equal(t, wire.Edit{UserID: "u1", Content: "abc"}, sender.sent[0])
		s.Close()
	})

	t.Run("no broadcast while not open test", func(t *testing.T) {
		store := &fakeStore{}
		sender := &fakeSender{open: false}
		s := editsync.New("d1", "u1", "", "", store, sender, editsync.WithDebounce(debounce))
		s.LocalEdit("offline")

		assert.Empty(t, sender.sent)
		assert.Eventually(t, func() bool {
			return len(store.Contents()) == 1
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("persistence failure is reported without retry test", func(t *testing.T) {
		store := &fakeStore{err: errors.New("store down")}
		var mu sync.Mutex
		var errs []error
		s := editsync.New("d1", "u1", "", "", store, nil,
			editsync.WithDebounce(debounce),
			editsync.WithPersistHook(func(_ string, err error) {
				mu.Lock()
				defer mu.Unlock()
				errs = append(errs, err)
			}),
		)
		s.LocalEdit("x")

		assert.Eventually(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			return len(errs) == 1
		}, time.Second, 5*time.Millisecond)
		time.Sleep(3 * debounce)
		assert.Len(t, store.Contents(), 1)
		assert.Equal(t, "x", s.Content())
	})

	t.Run("close flushes pending write test", func(t *testing.T) {
		store := &fakeStore{}
		s := editsync.New("d1", "u1", "", "", store, nil, editsync.WithDebounce(time.Hour))
		s.LocalEdit("draft")
		assert.True(t, s.Pending())

		s.Close()
		assert.Equal(t, []string{"draft"}, store.Contents())
		assert.False(t, s.Pending())
	})

	t.Run("close after a burst persists the last value test", func(t *testing.T) {
		store := &fakeStore{}
		s := editsync.New("d1", "u1", "", "", store, nil, editsync.WithDebounce(time.Hour))
		for _, text := range []string{"d", "dr", "dra", "draft"} {
			s.LocalEdit(text)
		}

		closed := make(chan struct{})
		go func() {
			s.Close()
			close(closed)
		}()
		select {
		case <-closed:
		case <-time.After(time.Second):
			t.Fatal("close blocked after a burst of edits")
		}
		assert.Equal(t, []string{"draft"}, store.Contents())
	})
}

func TestApplyRemote(t *testing.T) {
	t.Run("last writer wins test", func(t *testing.T) {
		store := &fakeStore{}
		s := editsync.New("d1", "u1", "local", "", store, nil)

		assert.True(t, s.ApplyRemote(wire.Edit{UserID: "u2", Content: "remote"}))
		assert.Equal(t, "remote", s.Content())

		assert.True(t, s.ApplyRemote(wire.Edit{UserID: "u3", Content: ""}))
		assert.Equal(t, "", s.Content())
		assert.False(t, s.Pending())
		assert.Empty(t, store.Contents())
	})

	t.Run("ignore own echo test", func(t *testing.T) {
		s := editsync.New("d1", "u1", "local", "", &fakeStore{}, nil)
		assert.False(t, s.ApplyRemote(wire.Edit{UserID: "u1", Content: "echo"}))
		assert.Equal(t, "local", s.Content())
	})
}

func TestSetTitle(t *testing.T) {
	t.Run("persist immediately test", func(t *testing.T) {
		store := &fakeStore{}
		s := editsync.New("d1", "u1", "", "Old", store, nil, editsync.WithDebounce(time.Hour))
		s.LocalEdit("pending")

		require.NoError(t, s.SetTitle(context.Background(), "New"))
		assert.Equal(t, "New", s.Title())
		assert.Equal(t, []string{"New"}, store.titles)
		assert.Empty(t, store.Contents())
		assert.True(t, s.Pending())
		s.Close()
	})

	t.Run("failure keeps local title test", func(t *testing.T) {
		store := &fakeStore{err: errors.New("store down")}
		s := editsync.New("d1", "u1", "", "Old", store, nil)

		assert.Error(t, s.SetTitle(context.Background(), "New"))
		assert.Equal(t, "New", s.Title())
	})
}
