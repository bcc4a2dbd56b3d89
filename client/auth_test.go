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

package client_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blitzboard/blitzboard/api/types"
	"github.com/blitzboard/blitzboard/client"
)

const secret = "test-secret"

func TestSessionFromToken(t *testing.T) {
	t.Run("verified token test", func(t *testing.T) {
		token, err := client.IssueToken(alice, secret, time.Hour)
		require.NoError(t, err)

		session, err := client.SessionFromToken(token, secret)
		require.NoError(t, err)
		assert.Equal(t, alice, session)
	})

	t.Run("wrong secret test", func(t *testing.T) {
		token, err := client.IssueToken(alice, secret, time.Hour)
		require.NoError(t, err)

		_, err = client.SessionFromToken(token, "other")
		assert.ErrorIs(t, err, client.ErrInvalidToken)
	})

	t.Run("expired token test", func(t *testing.T) {
		token, err := client.IssueToken(alice, secret, -time.Minute)
		require.NoError(t, err)
		_, err = client.SessionFromToken(token, secret)
		require.NoError(t, err, "a non-positive ttl issues a token without expiry")

		claims := client.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   alice.UserID,
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			},
		}
		expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		_, err = client.SessionFromToken(expired, secret)
		assert.ErrorIs(t, err, client.ErrInvalidToken)
	})

	t.Run("unverified token test", func(t *testing.T) {
		claims := client.Claims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "u-erin"},
			Email:            "erin@example.com",
			UserMetadata:     client.UserMetadata{FullName: "Erin Doe"},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("provider-key"))
		require.NoError(t, err)

		session, err := client.SessionFromToken(token, "")
		require.NoError(t, err)
		assert.Equal(t, types.Session{UserID: "u-erin", Email: "erin@example.com", Name: "Erin Doe"}, session)
	})

	t.Run("malformed token test", func(t *testing.T) {
		_, err := client.SessionFromToken("not-a-token", "")
		assert.ErrorIs(t, err, client.ErrInvalidToken)

		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, client.Claims{}).SignedString([]byte(secret))
		require.NoError(t, err)
		_, err = client.SessionFromToken(token, secret)
		assert.ErrorIs(t, err, client.ErrInvalidToken)
	})
}
