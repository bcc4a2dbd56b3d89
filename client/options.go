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
	"time"

	"github.com/blitzboard/blitzboard/pkg/editsync"
	"github.com/blitzboard/blitzboard/server/logging"
)

const (
	// DefaultRelayURL is the base URL of the relay used when none is given.
	DefaultRelayURL = "ws://localhost:8080"

	// DefaultReconnectDelay is the wait before each reconnect attempt.
	DefaultReconnectDelay = 3000 * time.Millisecond

	// DefaultMaxReconnects is the number of consecutive reconnect attempts
	// before the connection gives up.
	DefaultMaxReconnects = 10

	// DefaultUserCacheSize is the number of users kept for name resolution.
	DefaultUserCacheSize = 256

	// DefaultUserCacheTTL is how long a resolved user is kept.
	DefaultUserCacheTTL = 5 * time.Minute
)

// Option configures Options.
type Option func(*Options)

// Options configures how we set up the client and its sessions.
type Options struct {
	// RelayURL is the ws:// or wss:// base URL of the relay. Documents are
	// streamed from <RelayURL>/ws/<docID>.
	RelayURL string

	// Dialer opens message-stream connections. Default is a gorilla
	// websocket dialer.
	Dialer Dialer

	// ReconnectDelay is the wait before each reconnect attempt.
	ReconnectDelay time.Duration

	// MaxReconnects is the number of consecutive reconnect attempts.
	MaxReconnects int

	// Debounce is the quiet period before local edits are persisted.
	Debounce time.Duration

	// ExcludeSelf hides the local user from the member list.
	ExcludeSelf bool

	// OnChange is called on the session loop after every change of the
	// session's view.
	OnChange func(View)

	// UserCacheSize and UserCacheTTL bound the user directory cache.
	UserCacheSize int
	UserCacheTTL  time.Duration

	// Logger is the Logger of the client.
	Logger logging.Logger
}

// WithRelayURL configures the base URL of the relay.
func WithRelayURL(url string) Option {
	return func(o *Options) { o.RelayURL = url }
}

// WithDialer configures the dialer of message-stream connections.
func WithDialer(dialer Dialer) Option {
	return func(o *Options) { o.Dialer = dialer }
}

// WithReconnect configures the reconnect delay and the number of
// consecutive attempts.
func WithReconnect(delay time.Duration, maxAttempts int) Option {
	return func(o *Options) {
		o.ReconnectDelay = delay
		o.MaxReconnects = maxAttempts
	}
}

// WithDebounce configures the quiet period before local edits are persisted.
func WithDebounce(d time.Duration) Option {
	return func(o *Options) { o.Debounce = d }
}

// WithExcludeSelf hides the local user from the member list.
func WithExcludeSelf() Option {
	return func(o *Options) { o.ExcludeSelf = true }
}

// WithChangeHandler configures the function called after every change of a
// session's view. It runs on the session loop and must not block.
func WithChangeHandler(fn func(View)) Option {
	return func(o *Options) { o.OnChange = fn }
}

// WithUserCache configures the size and TTL of the user directory cache.
func WithUserCache(size int, ttl time.Duration) Option {
	return func(o *Options) {
		o.UserCacheSize = size
		o.UserCacheTTL = ttl
	}
}

// WithLogger configures the Logger of the client.
func WithLogger(logger logging.Logger) Option {
	return func(o *Options) { o.Logger = logger }
}

func newOptions(opts ...Option) Options {
	o := Options{
		RelayURL:       DefaultRelayURL,
		ReconnectDelay: DefaultReconnectDelay,
		MaxReconnects:  DefaultMaxReconnects,
		Debounce:       editsync.DefaultDebounce,
		UserCacheSize:  DefaultUserCacheSize,
		UserCacheTTL:   DefaultUserCacheTTL,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Dialer == nil {
		o.Dialer = NewWebsocketDialer()
	}
	if o.Logger == nil {
		o.Logger = logging.New("client")
	}
	return o
}
