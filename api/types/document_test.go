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

package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blitzboard/blitzboard/api/types"
)

func TestPermissionFor(t *testing.T) {
	doc := &types.Document{
		ID:         "d1",
		OwnerID:    "owner",
		SharedWith: []string{"bob@example.com"},
	}

	tests := []struct {
		name    string
		session types.Session
		canEdit bool
		rename  bool
		role    string
	}{
		{"owner", types.Session{UserID: "owner", Email: "alice@example.com"}, true, true, "Owner"},
		{"collaborator", types.Session{UserID: "bob", Email: "bob@example.com"}, true, false, "Collaborator"},
		{"stranger", types.Session{UserID: "eve", Email: "eve@example.com"}, false, false, "Read-only"},
		{"empty email is never shared", types.Session{UserID: "x"}, false, false, "Read-only"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			perm := doc.PermissionFor(tt.session)
			assert.Equal(t, tt.canEdit, perm.CanEdit())
			assert.Equal(t, tt.rename, perm.CanRename())
			assert.Equal(t, tt.rename, perm.CanShare())
			assert.Equal(t, tt.role, perm.Role())
		})
	}

	t.Run("empty owner id never matches an empty user id", func(t *testing.T) {
		perm := (&types.Document{}).PermissionFor(types.Session{})
		assert.False(t, perm.IsOwner)
	})
}

func TestDisplayNames(t *testing.T) {
	assert.Equal(t, "Alice", types.Session{Name: "Alice", Email: "a@x.io"}.DisplayName())
	assert.Equal(t, "a@x.io", types.Session{Email: "a@x.io"}.DisplayName())
	assert.True(t, types.Session{}.IsZero())

	u := &types.User{ID: "1", Email: "b@x.io"}
	assert.Equal(t, "b@x.io", u.Label())
	assert.Equal(t, "b@x.io", u.DisplayName())
	u.Name = "Bob"
	assert.Equal(t, "Bob (b@x.io)", u.Label())
	assert.Equal(t, "Bob", u.DisplayName())
}
