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
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blitzboard/blitzboard/api/types"
	"github.com/blitzboard/blitzboard/client"
	"github.com/blitzboard/blitzboard/server/backend/database"
	"github.com/blitzboard/blitzboard/server/backend/database/memory"
)

func newMemoryStore(t *testing.T) *memory.DB {
	t.Helper()

	db, err := memory.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	for _, user := range []types.Session{alice, bob, carol} {
		_, err := db.EnsureUserInfo(ctx, database.NewUserInfo(user.UserID, user.Email, user.Name))
		require.NoError(t, err)
	}
	return db
}

func TestDocuments(t *testing.T) {
	ctx := context.Background()

	t.Run("list owned and shared documents test", func(t *testing.T) {
		db := newMemoryStore(t)
		cli, err := client.New(db, alice)
		require.NoError(t, err)

		own, err := cli.CreateDocument(ctx)
		require.NoError(t, err)
		assert.Equal(t, alice.UserID, own.OwnerID)
		assert.Empty(t, own.Title)
		assert.Empty(t, own.Content)
		assert.Empty(t, own.SharedWith)

		bobCli, err := client.New(db, bob)
		require.NoError(t, err)
		shared, err := bobCli.CreateDocument(ctx)
		require.NoError(t, err)
		require.NoError(t, bobCli.ShareDocument(ctx, shared.ID, alice.Email))
		_, err = bobCli.CreateDocument(ctx)
		require.NoError(t, err)

		time.Sleep(time.Millisecond)
		require.NoError(t, db.UpdateDocContent(ctx, shared.ID, "latest"))

		entries, err := cli.ListDocuments(ctx)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, shared.ID, entries[0].ID)
		assert.Equal(t, "Bob", entries[0].OwnerName)
		assert.False(t, entries[0].IsOwner)
		assert.Equal(t, own.ID, entries[1].ID)
		assert.Equal(t, "You", entries[1].OwnerName)
		assert.True(t, entries[1].IsOwner)
		assert.Equal(t, "latest", entries[0].Title())
	})

	t.Run("share document test", func(t *testing.T) {
		db := newMemoryStore(t)
		cli, err := client.New(db, alice)
		require.NoError(t, err)
		doc, err := cli.CreateDocument(ctx)
		require.NoError(t, err)

		require.NoError(t, cli.ShareDocument(ctx, doc.ID, bob.Email))
		assert.ErrorIs(t, cli.ShareDocument(ctx, doc.ID, bob.Email), client.ErrAlreadyShared)
		assert.ErrorIs(t, cli.ShareDocument(ctx, doc.ID, "ghost@example.com"), client.ErrUserNotFound)

		bobCli, err := client.New(db, bob)
		require.NoError(t, err)
		assert.ErrorIs(t, bobCli.ShareDocument(ctx, doc.ID, carol.Email), client.ErrNotOwner)
		assert.ErrorIs(t, bobCli.RenameDocument(ctx, doc.ID, "Mine"), client.ErrNotOwner)

		require.NoError(t, cli.RenameDocument(ctx, doc.ID, "Notes"))
		info, err := db.FindDocInfo(ctx, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, "Notes", info.Title)
		assert.Equal(t, []string{bob.Email}, info.SharedWith)
	})

	t.Run("unknown owner test", func(t *testing.T) {
		db := newMemoryStore(t)
		_, err := db.CreateDocInfo(ctx, &database.DocInfo{
			ID:         "d1",
			OwnerID:    "0123456789abcdef",
			SharedWith: []string{alice.Email},
		})
		require.NoError(t, err)

		cli, err := client.New(db, alice)
		require.NoError(t, err)
		entries, err := cli.ListDocuments(ctx)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "01234567", entries[0].OwnerName)
	})

	t.Run("register test", func(t *testing.T) {
		db := newMemoryStore(t)
		dave := types.Session{UserID: "u-dave", Email: "dave@example.com", Name: "Dave"}
		cli, err := client.New(db, dave)
		require.NoError(t, err)
		require.NoError(t, cli.Register(ctx))

		users, err := cli.ResolveUsersByEmail(ctx, []string{dave.Email, "nobody@example.com"})
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, "Dave (dave@example.com)", users[dave.Email].Label())

		_, err = client.New(db, types.Session{})
		assert.ErrorIs(t, err, client.ErrNoSession)
	})
}

func TestDisplayTitle(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		content string
		want    string
	}{
		{"title wins", "  Plan ", "first line", "Plan"},
		{"first line", "", "Groceries\nmilk", "Groceries"},
		{"long first line", "", strings.Repeat("a", 60), strings.Repeat("a", 50)},
		{"untitled", " ", "", types.DefaultTitle},
		{"blank first line", "", "\nsecond", types.DefaultTitle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := &types.Document{Title: tt.title, Content: tt.content}
			assert.Equal(t, tt.want, client.DisplayTitle(doc))
		})
	}
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "", client.Preview(""))
	assert.Equal(t, "one two", client.Preview("one\ntwo\nthree"))
	assert.Equal(t, "padded", client.Preview("  padded  "))

	long := strings.Repeat("x", 141)
	assert.Equal(t, strings.Repeat("x", 140)+"...", client.Preview(long))

	// The length is checked on the whole content, not on the first lines.
	assert.Equal(t, "a b...", client.Preview("a\nb\n"+strings.Repeat("c", 140)))

	// Surrogate pairs are never split.
	emoji := strings.Repeat("😀", 71)
	assert.Equal(t, strings.Repeat("😀", 70)+"...", client.Preview(emoji))
}

func TestTimeAgo(t *testing.T) {
	now := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{30 * time.Second, "Active now"},
		{90 * time.Second, "Last edited 1 min ago"},
		{59 * time.Minute, "Last edited 59 min ago"},
		{3 * time.Hour, "Last edited 3 hr ago"},
		{30 * time.Hour, "Last edited 1 day ago"},
		{72 * time.Hour, "Last edited 3 days ago"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, client.TimeAgo(now, now.Add(-tt.ago)))
	}
}
