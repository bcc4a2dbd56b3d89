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

// Package types provides the domain types shared by the client, the relay and
// the document store.
package types

// Session is the signed-in user as reported by the identity provider. It is
// immutable for the lifetime of an editor session.
type Session struct {
	UserID string `json:"userID" yaml:"userID"`
	Email  string `json:"email" yaml:"email"`
	Name   string `json:"name,omitempty" yaml:"name,omitempty"`
}

// DisplayName returns the name shown to other participants: the profile name
// when the identity provider has one, otherwise the email.
func (s Session) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Email
}

// IsZero reports whether the session carries no user.
func (s Session) IsZero() bool {
	return s.UserID == ""
}
