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

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blitzboard/blitzboard/client"
	"github.com/blitzboard/blitzboard/pkg/presence"
	"github.com/blitzboard/blitzboard/server/logging"
)

func TestFileMirror(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	m, err := newFileMirror(path, logging.New("test"))
	require.NoError(t, err)
	defer func() { assert.NoError(t, m.Close()) }()

	require.NoError(t, m.Write("remote"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "remote", string(data))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	edits := make(chan string, 8)
	go func() { _ = m.Watch(ctx, func(content string) { edits <- content }) }()

	// Writes by the mirror itself are not reported.
	require.NoError(t, m.Write("remote 2"))
	require.NoError(t, os.WriteFile(path, []byte("local"), 0o600))

	// The truncation of the write may be reported on its own first.
	deadline := time.After(2 * time.Second)
	for done := false; !done; {
		select {
		case content := <-edits:
			done = content == "local"
		case <-deadline:
			t.Fatal("local edit was not reported")
		}
	}

	// The local edit is known now, so it is not written back.
	require.NoError(t, m.Write("local"))
	assert.Never(t, func() bool { return len(edits) > 0 }, 100*time.Millisecond, 10*time.Millisecond)
}

func TestOffer(t *testing.T) {
	ch := make(chan client.View, 1)
	offer(ch, client.View{Content: "a"})
	offer(ch, client.View{Content: "b"})
	assert.Equal(t, "b", (<-ch).Content)
}

func TestEditor(t *testing.T) {
	t.Run("parse command test", func(t *testing.T) {
		name, arg := parseCommand("  Rename  Weekly plan ")
		assert.Equal(t, "rename", name)
		assert.Equal(t, "Weekly plan", arg)

		name, arg = parseCommand("quit")
		assert.Equal(t, "quit", name)
		assert.Empty(t, arg)
	})

	t.Run("report changes only test", func(t *testing.T) {
		var out bytes.Buffer
		e := &editor{out: &out}

		view := client.View{
			Title:   "Plan",
			Status:  client.StatusConnected,
			Members: []presence.Member{{UserID: "u1", DisplayName: "Alice"}},
		}
		e.report(view)
		assert.Equal(t, "[Connected]\ntitle: Plan\nediting now: Alice\n", out.String())

		out.Reset()
		e.report(view)
		assert.Empty(t, out.String())

		view.Status = client.StatusReconnecting
		e.report(view)
		assert.Equal(t, "[Reconnecting…]\n", out.String())
	})

	t.Run("quit test", func(t *testing.T) {
		var out bytes.Buffer
		e := &editor{out: &out}
		assert.True(t, e.exec(context.Background(), "quit"))
		assert.False(t, e.exec(context.Background(), ""))
		assert.False(t, e.exec(context.Background(), "dance"))
		assert.Contains(t, out.String(), `unknown command "dance"`)
	})
}
