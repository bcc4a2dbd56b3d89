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

package database

import (
	"slices"
	"time"

	"github.com/blitzboard/blitzboard/api/types"
)

// DocInfo is a structure representing a stored document.
type DocInfo struct {
	// ID is the unique ID of the document.
	ID string `bson:"_id" json:"id"`

	// Title is the title of the document. It is empty until the owner sets it.
	Title string `bson:"title" json:"title"`

	// Content is the text of the document.
	Content string `bson:"content" json:"content"`

	// OwnerID is the ID of the user that created the document.
	OwnerID string `bson:"owner_id" json:"owner_id"`

	// SharedWith is the list of collaborator emails.
	SharedWith []string `bson:"shared_with" json:"shared_with"`

	// CreatedAt is the time when the document is created.
	CreatedAt time.Time `bson:"created_at" json:"created_at"`

	// UpdatedAt is the time when the document is last changed.
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// NewDocInfo creates an empty document owned by the given user.
func NewDocInfo(id, ownerID string) *DocInfo {
	now := time.Now()
	return &DocInfo{
		ID:         id,
		OwnerID:    ownerID,
		SharedWith: []string{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// DeepCopy returns a deep copy of the DocInfo.
func (info *DocInfo) DeepCopy() *DocInfo {
	if info == nil {
		return nil
	}

	clone := *info
	clone.SharedWith = slices.Clone(info.SharedWith)
	return &clone
}

// ToDocument converts the DocInfo to the document the client works with.
func (info *DocInfo) ToDocument() *types.Document {
	sharedWith := slices.Clone(info.SharedWith)
	if sharedWith == nil {
		sharedWith = []string{}
	}

	return &types.Document{
		ID:         info.ID,
		Title:      info.Title,
		Content:    info.Content,
		OwnerID:    info.OwnerID,
		SharedWith: sharedWith,
		CreatedAt:  info.CreatedAt,
		UpdatedAt:  info.UpdatedAt,
	}
}
