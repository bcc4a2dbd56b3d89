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

package database_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blitzboard/blitzboard/api/types"
	"github.com/blitzboard/blitzboard/server/backend/database"
)

func TestDocInfo(t *testing.T) {
	t.Run("new doc info test", func(t *testing.T) {
		info := database.NewDocInfo("d1", "u1")
		assert.Equal(t, "d1", info.ID)
		assert.Equal(t, "u1", info.OwnerID)
		assert.Empty(t, info.Title)
		assert.Empty(t, info.Content)
		assert.NotNil(t, info.SharedWith)
		assert.Equal(t, info.CreatedAt, info.UpdatedAt)
	})

	t.Run("deep copy test", func(t *testing.T) {
		info := database.NewDocInfo("d1", "u1")
		info.SharedWith = append(info.SharedWith, "a@example.com")

		clone := info.DeepCopy()
		clone.SharedWith[0] = "b@example.com"
		clone.Title = "changed"
		assert.Equal(t, "a@example.com", info.SharedWith[0])
		assert.Empty(t, info.Title)

		var nilInfo *database.DocInfo
		assert.Nil(t, nilInfo.DeepCopy())
	})

	t.Run("to document test", func(t *testing.T) {
		info := &database.DocInfo{ID: "d1", OwnerID: "u1", Content: "hi"}
		doc := info.ToDocument()
		assert.Equal(t, "hi", doc.Content)
		assert.Equal(t, []string{}, doc.SharedWith)

		perm := doc.PermissionFor(types.Session{UserID: "u1"})
		assert.True(t, perm.IsOwner)
	})
}

func TestUserInfo(t *testing.T) {
	info := database.NewUserInfo("u1", "alice@example.com", "")
	assert.Equal(t, "alice@example.com", info.ToUser().DisplayName())

	clone := info.DeepCopy()
	clone.Name = "Alice"
	assert.Empty(t, info.Name)
}
