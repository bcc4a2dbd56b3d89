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

package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/blitzboard/blitzboard/pkg/errors"
	"github.com/blitzboard/blitzboard/server/backend/database"
	"github.com/blitzboard/blitzboard/server/backend/database/memory"
	"github.com/blitzboard/blitzboard/server/backend/database/mongo"
	"github.com/blitzboard/blitzboard/server/backend/database/postgres"
	"github.com/blitzboard/blitzboard/server/backend/database/postgrest"
	"github.com/blitzboard/blitzboard/server/backend/pubsub"
)

// ErrUnsupportedStore is returned for store URLs of an unknown scheme.
var ErrUnsupportedStore = errors.InvalidArgument("unsupported store scheme").WithCode("ErrUnsupportedStore")

// OpenDatabase opens the document store the URL points to. The key is only
// used by http(s) stores.
func OpenDatabase(ctx context.Context, storeURL, storeKey string) (database.Database, error) {
	scheme, err := storeScheme(storeURL)
	if err != nil {
		return nil, err
	}

	switch scheme {
	case "memory", "mem":
		return memory.New()
	case "mongodb", "mongodb+srv":
		conf := mongo.NewConfig(storeURL)
		if err := conf.Validate(); err != nil {
			return nil, err
		}
		return mongo.Dial(conf)
	case "postgres", "postgresql":
		return postgres.Dial(ctx, storeURL)
	case "http", "https":
		return postgrest.New(postgrest.Config{URL: storeURL, APIKey: storeKey})
	default:
		return nil, fmt.Errorf("%q: %w", storeURL, ErrUnsupportedStore)
	}
}

// OpenBroker opens the broker relays publish frames on. An empty URL keeps
// frames within the process.
func OpenBroker(ctx context.Context, brokerURL, password string) (pubsub.Broker, error) {
	if strings.TrimSpace(brokerURL) == "" {
		return pubsub.NewMemory(), nil
	}

	return pubsub.DialRedis(ctx, &pubsub.RedisConfig{
		URL:      brokerURL,
		Password: password,
	})
}
