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

package config_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blitzboard/blitzboard/api/types"
	"github.com/blitzboard/blitzboard/client"
	"github.com/blitzboard/blitzboard/cmd/blitzboard/config"
)

func validConfig() *config.Config {
	return &config.Config{
		StoreURL:   "memory://",
		WSProtocol: config.DefaultWSProtocol,
		WSHost:     config.DefaultWSHost,
		WSPort:     config.DefaultWSPort,
	}
}

func TestConfig(t *testing.T) {
	t.Run("validate test", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate())

		conf := validConfig()
		conf.StoreURL = ""
		assert.ErrorIs(t, conf.Validate(), types.ErrInvalidFields)

		conf = validConfig()
		conf.WSProtocol = "http"
		err := conf.Validate()
		assert.ErrorIs(t, err, types.ErrInvalidFields)
		assert.Contains(t, err.Error(), "ws-protocol")

		conf = validConfig()
		conf.RelayURL = "http://relay.example.com"
		assert.ErrorIs(t, conf.Validate(), types.ErrInvalidFields)

		conf = validConfig()
		conf.Output = "xml"
		assert.ErrorIs(t, conf.Validate(), types.ErrInvalidFields)

		conf = validConfig()
		conf.StoreURL = "https://project.example.com"
		assert.ErrorIs(t, conf.Validate(), config.ErrStoreKeyRequired)
		conf.StoreKey = "anon-key"
		assert.NoError(t, conf.Validate())
	})

	t.Run("relay urls test", func(t *testing.T) {
		conf := validConfig()
		assert.Equal(t, "ws://localhost:8080", conf.RelayBase())
		assert.Equal(t, "http://localhost:8080/health", conf.HealthURL())

		conf.WSProtocol = "wss"
		conf.WSHost = "relay.example.com"
		conf.WSPort = 443
		assert.Equal(t, "wss://relay.example.com:443", conf.RelayBase())
		assert.Equal(t, "https://relay.example.com:443/health", conf.HealthURL())

		conf.RelayURL = "ws://127.0.0.1:9000/"
		conf.APIURL = "http://127.0.0.1:9000/"
		assert.Equal(t, "ws://127.0.0.1:9000/", conf.RelayBase())
		assert.Equal(t, "http://127.0.0.1:9000/health", conf.HealthURL())
	})

	t.Run("session test", func(t *testing.T) {
		conf := validConfig()
		_, err := conf.Session()
		assert.ErrorIs(t, err, config.ErrNoIdentity)

		conf.UserID = "u1"
		conf.Email = "u1@example.com"
		session, err := conf.Session()
		require.NoError(t, err)
		assert.Equal(t, types.Session{UserID: "u1", Email: "u1@example.com"}, session)

		user := types.Session{UserID: "u2", Email: "u2@example.com", Name: "Two"}
		token, err := client.IssueToken(user, "secret", time.Hour)
		require.NoError(t, err)
		conf.AccessToken = token
		conf.JWTSecret = "secret"
		session, err = conf.Session()
		require.NoError(t, err)
		assert.Equal(t, user, session)
	})

	t.Run("open store test", func(t *testing.T) {
		conf := validConfig()
		db, err := conf.OpenStore(context.Background())
		require.NoError(t, err)
		assert.NoError(t, db.Close())

		conf.StoreURL = "ftp://example.com"
		_, err = conf.OpenStore(context.Background())
		assert.Error(t, err)
	})
}
