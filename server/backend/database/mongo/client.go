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

// Package mongo implements the database interface using MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/blitzboard/blitzboard/server/backend/database"
	"github.com/blitzboard/blitzboard/server/logging"
)

const docCacheSize = 1000

// Client is a client that connects to MongoDB and reads or saves documents.
type Client struct {
	config *Config
	client *mongo.Client

	docCache *lru.Cache[string, *database.DocInfo]
}

// Dial creates an instance of Client and dials the given MongoDB.
func Dial(conf *Config) (*Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), conf.connectionTimeout())
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(conf.ConnectionURI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	ctxPing, cancelPing := context.WithTimeout(ctx, conf.pingTimeout())
	defer cancelPing()

	if err := client.Ping(ctxPing, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	if err := ensureIndexes(ctx, client.Database(conf.Database)); err != nil {
		return nil, err
	}

	docCache, err := lru.New[string, *database.DocInfo](docCacheSize)
	if err != nil {
		return nil, fmt.Errorf("initialize docinfo cache: %w", err)
	}

	logging.DefaultLogger().Infof("MongoDB connected, DB: %s", conf.Database)

	return &Client{
		config:   conf,
		client:   client,
		docCache: docCache,
	}, nil
}

// Close all resources of this client.
func (c *Client) Close() error {
	if err := c.client.Disconnect(context.Background()); err != nil {
		return fmt.Errorf("close mongo client: %w", err)
	}

	c.docCache.Purge()
	return nil
}

func (c *Client) collection(name string) *mongo.Collection {
	return c.client.Database(c.config.Database).Collection(name)
}

// FindDocInfo finds the document of the given ID.
func (c *Client) FindDocInfo(ctx context.Context, id string) (*database.DocInfo, error) {
	if info, ok := c.docCache.Get(id); ok {
		return info.DeepCopy(), nil
	}

	result := c.collection(ColDocuments).FindOne(ctx, bson.M{"_id": id})
	info := &database.DocInfo{}
	if err := result.Decode(info); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("find document %s: %w", id, database.ErrDocumentNotFound)
		}
		return nil, fmt.Errorf("find document %s: %w", id, err)
	}

	c.docCache.Add(id, info.DeepCopy())
	return info, nil
}

// FindDocInfosByOwner returns the documents owned by the given user.
func (c *Client) FindDocInfosByOwner(ctx context.Context, ownerID string) ([]*database.DocInfo, error) {
	return c.findDocInfos(ctx, bson.M{"owner_id": ownerID})
}

// FindDocInfosSharedWith returns the documents shared with the given email.
func (c *Client) FindDocInfosSharedWith(ctx context.Context, email string) ([]*database.DocInfo, error) {
	return c.findDocInfos(ctx, bson.M{"shared_with": email})
}

func (c *Client) findDocInfos(ctx context.Context, filter bson.M) ([]*database.DocInfo, error) {
	cursor, err := c.collection(ColDocuments).Find(
		ctx,
		filter,
		options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("find documents: %w", err)
	}

	var infos []*database.DocInfo
	if err := cursor.All(ctx, &infos); err != nil {
		return nil, fmt.Errorf("fetch documents: %w", err)
	}
	return infos, nil
}

// CreateDocInfo stores a new document.
func (c *Client) CreateDocInfo(ctx context.Context, info *database.DocInfo) (*database.DocInfo, error) {
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

	if _, err := c.collection(ColDocuments).InsertOne(ctx, stored); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("create document %s: %w", info.ID, database.ErrDocumentAlreadyExists)
		}
		return nil, fmt.Errorf("create document %s: %w", info.ID, err)
	}

	return stored, nil
}

// UpdateDocTitle changes the title of the document.
func (c *Client) UpdateDocTitle(ctx context.Context, id, title string) error {
	return c.updateDocInfo(ctx, id, bson.M{"title": title})
}

// UpdateDocContent changes the content of the document.
func (c *Client) UpdateDocContent(ctx context.Context, id, content string) error {
	return c.updateDocInfo(ctx, id, bson.M{"content": content})
}

// UpdateDocSharedWith replaces the sharing list of the document.
func (c *Client) UpdateDocSharedWith(ctx context.Context, id string, sharedWith []string) error {
	list := slices.Clone(sharedWith)
	if list == nil {
		list = []string{}
	}
	return c.updateDocInfo(ctx, id, bson.M{"shared_with": list})
}

func (c *Client) updateDocInfo(ctx context.Context, id string, fields bson.M) error {
	fields["updated_at"] = time.Now()

	result, err := c.collection(ColDocuments).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("update document %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("update document %s: %w", id, database.ErrDocumentNotFound)
	}

	c.docCache.Remove(id)
	return nil
}

// FindUserInfosByIDs returns the users of the given IDs.
func (c *Client) FindUserInfosByIDs(ctx context.Context, ids []string) ([]*database.UserInfo, error) {
	return c.findUserInfos(ctx, "_id", ids)
}

// FindUserInfosByEmails returns the users of the given emails.
func (c *Client) FindUserInfosByEmails(ctx context.Context, emails []string) ([]*database.UserInfo, error) {
	return c.findUserInfos(ctx, "email", emails)
}

func (c *Client) findUserInfos(ctx context.Context, field string, values []string) ([]*database.UserInfo, error) {
	if len(values) == 0 {
		return nil, nil
	}

	cursor, err := c.collection(ColUsers).Find(ctx, bson.M{field: bson.M{"$in": values}})
	if err != nil {
		return nil, fmt.Errorf("find users by %s: %w", field, err)
	}

	var infos []*database.UserInfo
	if err := cursor.All(ctx, &infos); err != nil {
		return nil, fmt.Errorf("fetch users by %s: %w", field, err)
	}
	return infos, nil
}

// FindUserInfoByEmail finds the user of the given email.
func (c *Client) FindUserInfoByEmail(ctx context.Context, email string) (*database.UserInfo, error) {
	result := c.collection(ColUsers).FindOne(ctx, bson.M{"email": email})

	info := &database.UserInfo{}
	if err := result.Decode(info); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("find user %s: %w", email, database.ErrUserNotFound)
		}
		return nil, fmt.Errorf("find user %s: %w", email, err)
	}
	return info, nil
}

// EnsureUserInfo registers the user or refreshes its email and name.
func (c *Client) EnsureUserInfo(ctx context.Context, info *database.UserInfo) (*database.UserInfo, error) {
	createdAt := info.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	result := c.collection(ColUsers).FindOneAndUpdate(ctx, bson.M{
		"_id": info.ID,
	}, bson.M{
		"$set": bson.M{
			"email": info.Email,
			"name":  info.Name,
		},
		"$setOnInsert": bson.M{
			"created_at": createdAt,
		},
	}, options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After),
	)

	stored := &database.UserInfo{}
	if err := result.Decode(stored); err != nil {
		return nil, fmt.Errorf("ensure user %s: %w", info.ID, err)
	}
	return stored, nil
}
