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
	"time"

	"github.com/blitzboard/blitzboard/api/types"
)

// UserInfo is a structure representing a row of the user directory.
type UserInfo struct {
	ID        string    `bson:"_id" json:"id"`
	Email     string    `bson:"email" json:"email"`
	Name      string    `bson:"name" json:"name"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// NewUserInfo creates a UserInfo for the given identity.
func NewUserInfo(id, email, name string) *UserInfo {
	return &UserInfo{
		ID:        id,
		Email:     email,
		Name:      name,
		CreatedAt: time.Now(),
	}
}

// DeepCopy returns a deep copy of the UserInfo.
func (i *UserInfo) DeepCopy() *UserInfo {
	if i == nil {
		return nil
	}

	clone := *i
	return &clone
}

// ToUser converts the UserInfo to the user type shown to clients.
func (i *UserInfo) ToUser() *types.User {
	return &types.User{
		ID:    i.ID,
		Name:  i.Name,
		Email: i.Email,
	}
}
