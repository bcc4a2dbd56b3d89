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

// Package client provides the BlitzBoard editor client. A Client lists,
// creates and shares the documents of a signed-in user, and opens editor
// Sessions that keep a document in sync with its other participants through
// the relay.
package client

import (
	"context"
	"fmt"

	"github.com/blitzboard/blitzboard/api/types"
	"github.com/blitzboard/blitzboard/pkg/cache"
	"github.com/blitzboard/blitzboard/pkg/errors"
	"github.com/blitzboard/blitzboard/server/backend/database"
)

var (
	// ErrNoSession is returned when a client is created without a user.
	ErrNoSession = errors.Unauthenticated("no signed-in user").WithCode("ErrNoSession")

	// ErrLoadDocument is returned when the document of a session cannot be
	// loaded.
	ErrLoadDocument = errors.Unavailable("failed to load document").WithCode("ErrLoadDocument")

	// ErrNotOwner is returned when a non-owner renames or shares a document.
	ErrNotOwner = errors.PermissionDenied("only the owner can do this").WithCode("ErrNotOwner")

	// ErrAlreadyShared is returned when sharing with an email on the list.
	ErrAlreadyShared = errors.AlreadyExists("already shared with this user").WithCode("ErrAlreadyShared")

	// ErrUserNotFound is returned when sharing with an unknown email.
	ErrUserNotFound = database.ErrUserNotFound

	// ErrEmptyEmail is returned when sharing with an empty email.
	ErrEmptyEmail = errors.InvalidArgument("email is empty").WithCode("ErrEmptyEmail")
)

// Store is the part of the document store the client works with.
type Store interface {
	FindDocInfo(ctx context.Context, id string) (*database.DocInfo, error)
	FindDocInfosByOwner(ctx context.Context, ownerID string) ([]*database.DocInfo, error)
	FindDocInfosSharedWith(ctx context.Context, email string) ([]*database.DocInfo, error)
	CreateDocInfo(ctx context.Context, info *database.DocInfo) (*database.DocInfo, error)
	UpdateDocTitle(ctx context.Context, id, title string) error
	UpdateDocContent(ctx context.Context, id, content string) error
	UpdateDocSharedWith(ctx context.Context, id string, sharedWith []string) error
	FindUserInfosByIDs(ctx context.Context, ids []string) ([]*database.UserInfo, error)
	FindUserInfosByEmails(ctx context.Context, emails []string) ([]*database.UserInfo, error)
	FindUserInfoByEmail(ctx context.Context, email string) (*database.UserInfo, error)
	EnsureUserInfo(ctx context.Context, info *database.UserInfo) (*database.UserInfo, error)
}

// Client is the client of one signed-in user.
type Client struct {
	store Store
	user  types.Session
	opts  Options

	usersByID    *cache.LRU[string, *types.User]
	usersByEmail *cache.LRU[string, *types.User]
}

// New creates an instance of Client.
func New(store Store, user types.Session, opts ...Option) (*Client, error) {
	if user.IsZero() {
		return nil, ErrNoSession
	}

	o := newOptions(opts...)
	usersByID, err := cache.NewLRU[string, *types.User]("users-by-id", o.UserCacheSize, o.UserCacheTTL)
	if err != nil {
		return nil, err
	}
	usersByEmail, err := cache.NewLRU[string, *types.User]("users-by-email", o.UserCacheSize, o.UserCacheTTL)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:        store,
		user:         user,
		opts:         o,
		usersByID:    usersByID,
		usersByEmail: usersByEmail,
	}, nil
}

// User returns the signed-in user.
func (c *Client) User() types.Session {
	return c.user
}

// Register adds the signed-in user to the user directory, so others can
// share documents with them, or refreshes their email and name.
func (c *Client) Register(ctx context.Context) error {
	info, err := c.store.EnsureUserInfo(ctx, database.NewUserInfo(c.user.UserID, c.user.Email, c.user.Name))
	if err != nil {
		return fmt.Errorf("register %s: %w", c.user.Email, err)
	}

	user := info.ToUser()
	c.usersByID.Add(user.ID, user)
	c.usersByEmail.Add(user.Email, user)
	return nil
}

// ResolveUsersByID returns the users of the given IDs that are in the
// directory.
func (c *Client) ResolveUsersByID(ctx context.Context, ids []string) (map[string]*types.User, error) {
	return c.usersByID.GetMany(ctx, ids, func(ctx context.Context, missing []string) (map[string]*types.User, error) {
		infos, err := c.store.FindUserInfosByIDs(ctx, missing)
		if err != nil {
			return nil, fmt.Errorf("find users: %w", err)
		}

		users := make(map[string]*types.User, len(infos))
		for _, info := range infos {
			users[info.ID] = info.ToUser()
		}
		return users, nil
	})
}

// ResolveUsersByEmail returns the users of the given emails that are in the
// directory.
func (c *Client) ResolveUsersByEmail(ctx context.Context, emails []string) (map[string]*types.User, error) {
	return c.usersByEmail.GetMany(ctx, emails, func(ctx context.Context, missing []string) (map[string]*types.User, error) {
		infos, err := c.store.FindUserInfosByEmails(ctx, missing)
		if err != nil {
			return nil, fmt.Errorf("find users: %w", err)
		}

		users := make(map[string]*types.User, len(infos))
		for _, info := range infos {
			users[info.Email] = info.ToUser()
		}
		return users, nil
	})
}
