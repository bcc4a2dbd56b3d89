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

package mongo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blitzboard/blitzboard/server/backend/database/mongo"
)

func TestConfig(t *testing.T) {
	t.Run("default config test", func(t *testing.T) {
		conf := mongo.NewConfig("mongodb://localhost:27017")
		assert.NoError(t, conf.Validate())
		assert.Equal(t, mongo.DefaultDatabase, conf.Database)
	})

	t.Run("invalid config test", func(t *testing.T) {
		conf := mongo.NewConfig("mongodb://localhost:27017")
		conf.ConnectionTimeout = "5"
		assert.Error(t, conf.Validate())

		conf = mongo.NewConfig("mongodb://localhost:27017")
		conf.PingTimeout = "soon"
		assert.Error(t, conf.Validate())

		conf = mongo.NewConfig("")
		assert.Error(t, conf.Validate())
	})
}
