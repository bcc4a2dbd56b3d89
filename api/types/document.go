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

package types

import (
	"slices"
	"time"
)

// DefaultTitle is shown for documents whose title was never set.
const DefaultTitle = "Untitled"

// Document is the state of a document as loaded from the store.
type Document struct {
	ID         string    `json:"id" yaml:"id"`
	Title      string    `json:"title" yaml:"title"`
	Content    string    `json:"content" yaml:"content"`
	OwnerID    string    `json:"ownerID" yaml:"ownerID"`
	SharedWith []string  `json:"sharedWith" yaml:"sharedWith"`
	CreatedAt  time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// IsSharedWith reports whether the given email is on the sharing list.
func (d *Document) IsSharedWith(email string) bool {
	if email == "" {
		return false
	}
	return slices.Contains(d.SharedWith, email)
}

// PermissionFor derives the permission of the given session on this document.
func (d *Document) PermissionFor(s Session) Permission {
	return Permission{
		IsOwner:        s.UserID != "" && s.UserID == d.OwnerID,
		IsCollaborator: d.IsSharedWith(s.Email),
	}
}

// Permission is derived from a document and a session; it is never stored.
type Permission struct {
	IsOwner        bool
	IsCollaborator bool
}

// CanEdit reports whether the session may change the content.
func (p Permission) CanEdit() bool {
	return p.IsOwner || p.IsCollaborator
}

// CanRename reports whether the session may change the title.
func (p Permission) CanRename() bool {
	return p.IsOwner
}

// CanShare reports whether the session may add collaborators.
func (p Permission) CanShare() bool {
	return p.IsOwner
}

// Role returns the label shown next to the document status.
func (p Permission) Role() string {
	switch {
	case p.IsOwner:
		return "Owner"
	case p.IsCollaborator:
		return "Collaborator"
	default:
		return "Read-only"
	}
}
