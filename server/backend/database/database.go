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

// Package database provides the document store interface shared by the
// relay, the CLI and the editor client.
package database

import (
	"context"

	"github.com/blitzboard/blitzboard/pkg/errors"
)

var (
	// ErrDocumentNotFound is returned when the document could not be found.
	ErrDocumentNotFound = errors.NotFound("document not found").WithCode("ErrDocumentNotFound")

	// ErrDocumentAlreadyExists is returned when a document with the same ID exists.
	ErrDocumentAlreadyExists = errors.AlreadyExists("document already exists").WithCode("ErrDocumentAlreadyExists")

	// ErrUserNotFound is returned when the user could not be found.
	ErrUserNotFound = errors.NotFound("user not found").WithCode("ErrUserNotFound")
)

// Database represents the store that keeps documents and the user directory.
type Database interface {
	// Close all resources of this database.
	Close() error

	// FindDocInfo finds the document of the given ID.
	FindDocInfo(ctx context.Context, id string) (*DocInfo, error)

	// FindDocInfosByOwner returns the documents owned by the given user.
	FindDocInfosByOwner(ctx context.Context, ownerID string) ([]*DocInfo, error)

	// FindDocInfosSharedWith returns the documents whose sharing list
	// contains the given email.
	FindDocInfosSharedWith(ctx context.Context, email string) ([]*DocInfo, error)

	// CreateDocInfo stores a new document.
	CreateDocInfo(ctx context.Context, info *DocInfo) (*DocInfo, error)

	// UpdateDocTitle changes the title of the document.
	UpdateDocTitle(ctx context.Context, id, title string) error

	// UpdateDocContent changes the content of the document.
	UpdateDocContent(ctx context.Context, id, content string) error

	// UpdateDocSharedWith replaces the sharing list of the document.
	UpdateDocSharedWith(ctx context.Context, id string, sharedWith []string) error

	// FindUserInfosByIDs returns the users of the given IDs. Unknown IDs are
	// skipped.
	FindUserInfosByIDs(ctx context.Context, ids []string) ([]*UserInfo, error)

	// FindUserInfosByEmails returns the users of the given emails. Unknown
	// emails are skipped.
	FindUserInfosByEmails(ctx context.Context, emails []string) ([]*UserInfo, error)

	// FindUserInfoByEmail finds the user of the given email.
	FindUserInfoByEmail(ctx context.Context, email string) (*UserInfo, error)

	// EnsureUserInfo registers the user if it is not in the directory yet,
	// and updates its email and name otherwise.
	EnsureUserInfo(ctx context.Context, info *UserInfo) (*UserInfo, error)
}
