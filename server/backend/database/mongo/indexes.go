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

package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

const (
	// ColDocuments represents the documents collection in the database.
	ColDocuments = "documents"
	// ColUsers represents the users collection in the database.
	ColUsers = "users"
)

type collectionInfo struct {
	name    string
	indexes []mongo.IndexModel
}

var collectionInfos = []collectionInfo{
	{
		name: ColDocuments,
		indexes: []mongo.IndexModel{{
			Keys: bson.D{
				{Key: "owner_id", Value: int32(1)},
				{Key: "updated_at", Value: int32(-1)},
			},
		}, {
			Keys: bson.D{{Key: "shared_with", Value: int32(1)}},
		}},
	},
	{
		name: ColUsers,
		indexes: []mongo.IndexModel{{
			Keys: bson.D{{Key: "email", Value: int32(1)}},
		}},
	},
}

func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	for _, info := range collectionInfos {
		if _, err := db.Collection(info.name).Indexes().CreateMany(ctx, info.indexes); err != nil {
			return fmt.Errorf("create indexes of %s: %w", info.name, err)
		}
	}
	return nil
}
