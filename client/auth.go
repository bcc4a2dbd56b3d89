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

package client

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/blitzboard/blitzboard/api/types"
	"github.com/blitzboard/blitzboard/pkg/errors"
)

var (
	// ErrInvalidToken is returned when an access token cannot be parsed or
	// verified, or has no subject.
	ErrInvalidToken = errors.Unauthenticated("invalid access token").WithCode("ErrInvalidToken")
)

// UserMetadata is the profile attached to an access token.
type UserMetadata struct {
	Name     string `json:"name,omitempty"`
	FullName string `json:"full_name,omitempty"`
}

// Claims is the claims of an access token issued by the auth provider.
type Claims struct {
	jwt.RegisteredClaims

	Email        string       `json:"email,omitempty"`
	UserMetadata UserMetadata `json:"user_metadata"`
}

// SessionFromToken derives the signed-in user from an access token. The
// token is verified with secret when one is given.
func SessionFromToken(token, secret string) (types.Session, error) {
	claims := &Claims{}

	if secret == "" {
		if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
			return types.Session{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
		}
	} else {
		_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			return types.Session{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
		}
	}

	if claims.Subject == "" {
		return types.Session{}, fmt.Errorf("%w: no subject", ErrInvalidToken)
	}

	name := claims.UserMetadata.Name
	if name == "" {
		name = claims.UserMetadata.FullName
	}

	return types.Session{
		UserID: claims.Subject,
		Email:  claims.Email,
		Name:   name,
	}, nil
}

// IssueToken signs an HS256 access token for the user. It is used for local
// setups without an auth provider.
func IssueToken(user types.Session, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  user.UserID,
			IssuedAt: jwt.NewNumericDate(now),
		},
		Email:        user.Email,
		UserMetadata: UserMetadata{Name: user.Name},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
