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

// Package memory implements the database interface using in-memory database.
package memory

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/hashicorp/go-memdb"

	"github.com/blitzboard/blitzboard/server/backend/database"
)

// DB is an in-memory database for testing or temporarily.
type DB struct {
	db *memdb.MemDB
}

// New returns a new in-memory database.
func New() (*DB, error) {
	memDB, err := memdb.NewMemDB(schema)
	if err != nil {
		return nil, fmt.Errorf("new memdb: %w", err)
	}

	return &DB{
		db: memDB,
	}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return nil
}

// FindDocInfo finds the document of the given ID.
func (d *DB) FindDocInfo(_ context.Context, id string) (*database.DocInfo, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(tblDocuments, "id", id)
	if err != nil {
		return nil, fmt.Errorf("find document %s: %w", id, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("find document %s: %w", id, database.ErrDocumentNotFound)
	}

	return raw.(*database.DocInfo).DeepCopy(), nil
}

// FindDocInfosByOwner returns the documents owned by the given user.
func (d *DB) FindDocInfosByOwner(_ context.Context, ownerID string) ([]*database.DocInfo, error) {
	return d.findDocInfos("owner_id", ownerID)
}

// FindDocInfosSharedWith returns the documents shared with the given email.
func (d *DB) FindDocInfosSharedWith(_ context.Context, email string) ([]*database.DocInfo, error) {
	return d.findDocInfos("shared_with", email)
}

func (d *DB) findDocInfos(index, value string) ([]*database.DocInfo, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()

	iter, err := txn.Get(tblDocuments, index, value)
	if err != nil {
		return nil, fmt.Errorf("find documents by %s %s: %w", index, value, err)
	}

	var infos []*database.DocInfo
	for raw := iter.Next(); raw != nil; raw = iter.Next() {
		infos = append(infos, raw.(*database.DocInfo).DeepCopy())
	}
	return infos, nil
}

// CreateDocInfo stores a new document.
func (d *DB) CreateDocInfo(_ context.Context, info *database.DocInfo) (*database.DocInfo, error) {
	txn := d.db.Txn(true)
	defer txn.Abort()

	existing, err := txn.First(tblDocuments, "id", info.ID)
	if err != nil {
		return nil, fmt.Errorf("find document %s: %w", info.ID, err)
	}
	if existing != nil {
		return nil, fmt.Errorf("create document %s: %w", info.ID, database.ErrDocumentAlreadyExists)
	}

	stored := info.DeepCopy()
	if stored.SharedWith == nil {
		stored.SharedWith = []string{}
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = stored.CreatedAt
	}

	if err := txn.Insert(tblDocuments, stored); err != nil {
		return nil, fmt.Errorf("create document %s: %w", info.ID, err)
	}
	txn.Commit()

	return stored.DeepCopy(), nil
}

// UpdateDocTitle changes the title of the document.
func (d *DB) UpdateDocTitle(_ context.Context, id, title string) error {
	return d.updateDocInfo(id, func(info *database.DocInfo) {
		info.Title = title
	})
}

// UpdateDocContent changes the content of the document.
func (d *DB) UpdateDocContent(_ context.Context, id, content string) error {
	return d.updateDocInfo(id, func(info *database.DocInfo) {
		info.Content = content
	})
}

// UpdateDocSharedWith replaces the sharing list of the document.
func (d *DB) UpdateDocSharedWith(_ context.Context, id string, sharedWith []string) error {
	return d.updateDocInfo(id, func(info *database.DocInfo) {
		info.SharedWith = slices.Clone(sharedWith)
		if info.SharedWith == nil {
			info.SharedWith = []string{}
		}
	})
}

func (d *DB) updateDocInfo(id string, update func(info *database.DocInfo)) error {
	txn := d.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tblDocuments, "id", id)
	if err != nil {
		return fmt.Errorf("find document %s: %w", id, err)
	}
	if raw == nil {
		return fmt.Errorf("update document %s: %w", id, database.ErrDocumentNotFound)
	}

	info := raw.(*database.DocInfo).DeepCopy()
	update(info)
	info.UpdatedAt = time.Now()

	if err := txn.Insert(tblDocuments, info); err != nil {
		return fmt.Errorf("update document %s: %w", id, err)
	}
	txn.Commit()
	return nil
}

// FindUserInfosByIDs returns the users of the given IDs.
func (d *DB) FindUserInfosByIDs(_ context.Context, ids []string) ([]*database.UserInfo, error) {
	return d.findUserInfos("id", ids)
}

// FindUserInfosByEmails returns the users of the given emails.
func (d *DB) FindUserInfosByEmails(_ context.Context, emails []string) ([]*database.UserInfo, error) {
	return d.findUserInfos("email", emails)
}

func (d *DB) findUserInfos(index string, values []string) ([]*database.UserInfo, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()

	var infos []*database.UserInfo
	seen := make(map[string]bool)
	for _, value := range values {
		iter, err := txn.Get(tblUsers, index, value)
		if err != nil {
			return nil, fmt.Errorf("find users by %s %s: %w", index, value, err)
		}
		for raw := iter.Next(); raw != nil; raw = iter.Next() {
			info := raw.(*database.UserInfo)
			if seen[info.ID] {
				continue
			}
			seen[info.ID] = true
			infos = append(infos, info.DeepCopy())
		}
	}
	return infos, nil
}

// FindUserInfoByEmail finds the user of the given email.
func (d *DB) FindUserInfoByEmail(_ context.Context, email string) (*database.UserInfo, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(tblUsers, "email", email)
	if err != nil {
		return nil, fmt.Errorf("find user %s: %w", email, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("find user %s: %w", email, database.ErrUserNotFound)
	}

	return raw.(*database.UserInfo).DeepCopy(), nil
}

// EnsureUserInfo registers the user or refreshes its email and name.
func (d *DB) EnsureUserInfo(_ context.Context, info *database.UserInfo) (*database.UserInfo, error) {
	txn := d.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tblUsers, "id", info.ID)
	if err != nil {
		return nil, fmt.Errorf("find user %s: %w", info.ID, err)
	}

	stored := info.DeepCopy()
	if raw != nil {
		stored.CreatedAt = raw.(*database.UserInfo).CreatedAt
	} else if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}

	if err := txn.Insert(tblUsers, stored); err != nil {
		return nil, fmt.Errorf("ensure user %s: %w", info.ID, err)
	}
	txn.Commit()

	return stored.DeepCopy(), nil
}
