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

// Package postgres implements the database interface on PostgreSQL using a
// pgx connection pool.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/blitzboard/blitzboard/server/backend/database"
	"github.com/blitzboard/blitzboard/server/logging"
)

//go:embed schema.sql
var schemaSQL string

const uniqueViolation = "23505"

const docColumns = `id, COALESCE(title, ''), content, owner_id, shared_with, created_at, updated_at`

// DB is a document store backed by PostgreSQL.
type DB struct {
	pool *pgxpool.Pool
}

// Dial connects to the database of the given connection string and creates
// the tables if they do not exist.
func Dial(ctx context.Context, connString string) (*DB, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	logging.DefaultLogger().Infof("PostgreSQL connected, DB: %s", pool.Config().ConnConfig.Database)

	return &DB{pool: pool}, nil
}

// Close closes the connection pool.
func (d *DB) Close() error {
	d.pool.Close()
	return nil
}

func scanDocInfo(row pgx.Row) (*database.DocInfo, error) {
	info := &database.DocInfo{}
	if err := row.Scan(
		&info.ID,
		&info.Title,
		&info.Content,
		&info.OwnerID,
		&info.SharedWith,
		&info.CreatedAt,
		&info.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return info, nil
}

// FindDocInfo finds the document of the given ID.
func (d *DB) FindDocInfo(ctx context.Context, id string) (*database.DocInfo, error) {
	info, err := scanDocInfo(d.pool.QueryRow(ctx,
		`SELECT `+docColumns+` FROM documents WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("find document %s: %w", id, database.ErrDocumentNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find document %s: %w", id, err)
	}
	return info, nil
}

// FindDocInfosByOwner returns the documents owned by the given user.
func (d *DB) FindDocInfosByOwner(ctx context.Context, ownerID string) ([]*database.DocInfo, error) {
	return d.findDocInfos(ctx,
		`SELECT `+docColumns+` FROM documents WHERE owner_id = $1 ORDER BY updated_at DESC`, ownerID)
}

// FindDocInfosSharedWith returns the documents shared with the given email.
func (d *DB) FindDocInfosSharedWith(ctx context.Context, email string) ([]*database.DocInfo, error) {
	return d.findDocInfos(ctx,
		`SELECT `+docColumns+` FROM documents WHERE shared_with @> ARRAY[$1::text] ORDER BY updated_at DESC`, email)
}

func (d *DB) findDocInfos(ctx context.Context, sql string, args ...any) ([]*database.DocInfo, error) {
	rows, err := d.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("find documents: %w", err)
	}

	infos, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*database.DocInfo, error) {
		return scanDocInfo(row)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch documents: %w", err)
	}
	return infos, nil
}

// CreateDocInfo stores a new document.
func (d *DB) CreateDocInfo(ctx context.Context, info *database.DocInfo) (*database.DocInfo, error) {
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

	_, err := d.pool.Exec(ctx, `
		INSERT INTO documents (id, title, content, owner_id, shared_with, created_at, updated_at)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7)`,
		stored.ID, stored.Title, stored.Content, stored.OwnerID, stored.SharedWith,
		stored.CreatedAt, stored.UpdatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return nil, fmt.Errorf("create document %s: %w", info.ID, database.ErrDocumentAlreadyExists)
	}
	if err != nil {
		return nil, fmt.Errorf("create document %s: %w", info.ID, err)
	}

	return stored, nil
}

// UpdateDocTitle changes the title of the document.
func (d *DB) UpdateDocTitle(ctx context.Context, id, title string) error {
	return d.updateDocInfo(ctx, id, `UPDATE documents SET title = $2, updated_at = now() WHERE id = $1`, title)
}

// UpdateDocContent changes the content of the document.
func (d *DB) UpdateDocContent(ctx context.Context, id, content string) error {
	return d.updateDocInfo(ctx, id, `UPDATE documents SET content = $2, updated_at = now() WHERE id = $1`, content)
}

// UpdateDocSharedWith replaces the sharing list of the document.
func (d *DB) UpdateDocSharedWith(ctx context.Context, id string, sharedWith []string) error {
	list := slices.Clone(sharedWith)
	if list == nil {
		list = []string{}
	}
	return d.updateDocInfo(ctx, id, `UPDATE documents SET shared_with = $2, updated_at = now() WHERE id = $1`, list)
}

func (d *DB) updateDocInfo(ctx context.Context, id, sql string, value any) error {
	tag, err := d.pool.Exec(ctx, sql, id, value)
	if err != nil {
		return fmt.Errorf("update document %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update document %s: %w", id, database.ErrDocumentNotFound)
	}
	return nil
}

func scanUserInfo(row pgx.Row) (*database.UserInfo, error) {
	info := &database.UserInfo{}
	if err := row.Scan(&info.ID, &info.Email, &info.Name, &info.CreatedAt); err != nil {
		return nil, err
	}
	return info, nil
}

const userColumns = `id, email, COALESCE(name, ''), created_at`

// FindUserInfosByIDs returns the users of the given IDs.
func (d *DB) FindUserInfosByIDs(ctx context.Context, ids []string) ([]*database.UserInfo, error) {
	return d.findUserInfos(ctx, `SELECT `+userColumns+` FROM users WHERE id = ANY($1)`, ids)
}

// FindUserInfosByEmails returns the users of the given emails.
func (d *DB) FindUserInfosByEmails(ctx context.Context, emails []string) ([]*database.UserInfo, error) {
	return d.findUserInfos(ctx, `SELECT `+userColumns+` FROM users WHERE email = ANY($1)`, emails)
}

func (d *DB) findUserInfos(ctx context.Context, sql string, values []string) ([]*database.UserInfo, error) {
	if len(values) == 0 {
		return nil, nil
	}

	rows, err := d.pool.Query(ctx, sql, values)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}

	infos, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*database.UserInfo, error) {
		return scanUserInfo(row)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch users: %w", err)
	}
	return infos, nil
}

// FindUserInfoByEmail finds the user of the given email.
func (d *DB) FindUserInfoByEmail(ctx context.Context, email string) (*database.UserInfo, error) {
	info, err := scanUserInfo(d.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1 LIMIT 1`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("find user %s: %w", email, database.ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find user %s: %w", email, err)
	}
	return info, nil
}

// EnsureUserInfo registers the user or refreshes its email and name.
func (d *DB) EnsureUserInfo(ctx context.Context, info *database.UserInfo) (*database.UserInfo, error) {
	createdAt := info.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	stored, err := scanUserInfo(d.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, name, created_at)
		VALUES ($1, $2, NULLIF($3, ''), $4)
		ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email, name = EXCLUDED.name
		RETURNING `+userColumns,
		info.ID, info.Email, info.Name, createdAt,
	))
	if err != nil {
		return nil, fmt.Errorf("ensure user %s: %w", info.ID, err)
	}
	return stored, nil
}
