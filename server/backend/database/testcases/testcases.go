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

// Package testcases contains testcases for database. It is used by database
// implementations to test their own implementations with the same testcases.
package testcases

import (
	"context"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blitzboard/blitzboard/server/backend/database"
)

// RunDocInfoTest runs the create, find and update tests of documents.
func RunDocInfoTest(t *testing.T, db database.Database) {
	ctx := context.Background()

	t.Run("create and find docInfo test", func(t *testing.T) {
		info := database.NewDocInfo(uuid.NewString(), uuid.NewString())
		created, err := db.CreateDocInfo(ctx, info)
		require.NoError(t, err)
		assert.Equal(t, info.ID, created.ID)

		found, err := db.FindDocInfo(ctx, info.ID)
		require.NoError(t, err)
		assert.Equal(t, info.ID, found.ID)
		assert.Equal(t, info.OwnerID, found.OwnerID)
		assert.Empty(t, found.Title)
		assert.Empty(t, found.Content)
		assert.Empty(t, found.SharedWith)

		_, err = db.CreateDocInfo(ctx, info)
		assert.ErrorIs(t, err, database.ErrDocumentAlreadyExists)
	})

	t.Run("find missing docInfo test", func(t *testing.T) {
		_, err := db.FindDocInfo(ctx, uuid.NewString())
		assert.ErrorIs(t, err, database.ErrDocumentNotFound)
	})

	t.Run("update docInfo test", func(t *testing.T) {
		info := database.NewDocInfo(uuid.NewString(), uuid.NewString())
		info.CreatedAt = time.Now().Add(-time.Hour)
		info.UpdatedAt = info.CreatedAt
		_, err := db.CreateDocInfo(ctx, info)
		require.NoError(t, err)

		require.NoError(t, db.UpdateDocTitle(ctx, info.ID, "Plans"))
		require.NoError(t, db.UpdateDocContent(ctx, info.ID, "hello!"))
		require.NoError(t, db.UpdateDocSharedWith(ctx, info.ID, []string{"bob@example.com"}))

		found, err := db.FindDocInfo(ctx, info.ID)
		require.NoError(t, err)
		assert.Equal(t, "Plans", found.Title)
		assert.Equal(t, "hello!", found.Content)
		assert.Equal(t, []string{"bob@example.com"}, found.SharedWith)
		assert.True(t, found.UpdatedAt.After(info.UpdatedAt))
	})

	t.Run("update missing docInfo test", func(t *testing.T) {
		id := uuid.NewString()
		assert.ErrorIs(t, db.UpdateDocTitle(ctx, id, "x"), database.ErrDocumentNotFound)
		assert.ErrorIs(t, db.UpdateDocContent(ctx, id, "x"), database.ErrDocumentNotFound)
		assert.ErrorIs(t, db.UpdateDocSharedWith(ctx, id, nil), database.ErrDocumentNotFound)
	})
}

// RunFindDocInfosTest runs the listing tests of documents.
func RunFindDocInfosTest(t *testing.T, db database.Database) {
	ctx := context.Background()
	ownerID := uuid.NewString()
	email := fmt.Sprintf("%s@example.com", uuid.NewString())

	var owned []string
	for range 3 {
		info := database.NewDocInfo(uuid.NewString(), ownerID)
		_, err := db.CreateDocInfo(ctx, info)
		require.NoError(t, err)
		owned = append(owned, info.ID)
	}

	shared := database.NewDocInfo(uuid.NewString(), uuid.NewString())
	shared.SharedWith = []string{"someone@example.com", email}
	_, err := db.CreateDocInfo(ctx, shared)
	require.NoError(t, err)

	other := database.NewDocInfo(uuid.NewString(), uuid.NewString())
	other.SharedWith = []string{"x" + email}
	_, err = db.CreateDocInfo(ctx, other)
	require.NoError(t, err)

	t.Run("find docInfos by owner test", func(t *testing.T) {
		infos, err := db.FindDocInfosByOwner(ctx, ownerID)
		require.NoError(t, err)
		assert.ElementsMatch(t, owned, idsOf(infos))

		infos, err = db.FindDocInfosByOwner(ctx, uuid.NewString())
		require.NoError(t, err)
		assert.Empty(t, infos)
	})

	t.Run("find docInfos shared with test", func(t *testing.T) {
		infos, err := db.FindDocInfosSharedWith(ctx, email)
		require.NoError(t, err)
		assert.Equal(t, []string{shared.ID}, idsOf(infos))
	})
}

// RunUserInfoTest runs the user directory tests.
func RunUserInfoTest(t *testing.T, db database.Database) {
	ctx := context.Background()

	t.Run("ensure userInfo test", func(t *testing.T) {
		id := uuid.NewString()
		email := id + "@example.com"

		info, err := db.EnsureUserInfo(ctx, database.NewUserInfo(id, email, ""))
		require.NoError(t, err)
		assert.Equal(t, id, info.ID)

		info, err = db.EnsureUserInfo(ctx, database.NewUserInfo(id, email, "Alice"))
		require.NoError(t, err)
		assert.Equal(t, "Alice", info.Name)

		found, err := db.FindUserInfoByEmail(ctx, email)
		require.NoError(t, err)
		assert.Equal(t, id, found.ID)
		assert.Equal(t, "Alice", found.Name)
	})

	t.Run("find missing userInfo test", func(t *testing.T) {
		_, err := db.FindUserInfoByEmail(ctx, uuid.NewString()+"@example.com")
		assert.ErrorIs(t, err, database.ErrUserNotFound)
	})

	t.Run("find userInfos test", func(t *testing.T) {
		var ids, emails []string
		for range 3 {
			id := uuid.NewString()
			_, err := db.EnsureUserInfo(ctx, database.NewUserInfo(id, id+"@example.com", "user "+id))
			require.NoError(t, err)
			ids = append(ids, id)
			emails = append(emails, id+"@example.com")
		}

		infos, err := db.FindUserInfosByIDs(ctx, append(slices.Clone(ids[:2]), uuid.NewString()))
		require.NoError(t, err)
		assert.ElementsMatch(t, ids[:2], userIDsOf(infos))

		infos, err = db.FindUserInfosByEmails(ctx, emails[1:])
		require.NoError(t, err)
		assert.ElementsMatch(t, ids[1:], userIDsOf(infos))

		infos, err = db.FindUserInfosByIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, infos)
	})
}

func idsOf(infos []*database.DocInfo) []string {
	ids := make([]string, 0, len(infos))
	for _, info := range infos {
		ids = append(ids, info.ID)
	}
	return ids
}

func userIDsOf(infos []*database.UserInfo) []string {
	ids := make([]string, 0, len(infos))
	for _, info := range infos {
		ids = append(ids, info.ID)
	}
	return ids
}
