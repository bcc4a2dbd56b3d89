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

package pubsub

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/blitzboard/blitzboard/server/logging"
)

// RedisConfig is the configuration of the Redis broker.
type RedisConfig struct {
	// URL is a redis:// or rediss:// URL. A bare host:port is accepted too.
	URL string `yaml:"URL"`

	// Password overrides the password of the URL.
	Password string `yaml:"Password"`
}

// Redis is a Broker that lets several relays share documents through Redis
// channels.
type Redis struct {
	client *redis.Client
	logger logging.Logger
}

// DialRedis connects to Redis and checks the connection.
func DialRedis(ctx context.Context, conf *RedisConfig) (*Redis, error) {
	opts, err := redis.ParseURL(conf.URL)
	if err != nil {
		opts = &redis.Options{Addr: conf.URL}
	}
	if conf.Password != "" {
		opts.Password = conf.Password
	}
	opts.MinIdleConns = 1
	opts.MaxRetries = 3
	opts.DialTimeout = 5 * time.Second
	opts.PoolTimeout = 30 * time.Second

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opts.Addr, err)
	}

	logging.DefaultLogger().Infof("Redis connected, addr: %s", opts.Addr)

	return &Redis{
		client: client,
		logger: logging.New("pubsub"),
	}, nil
}

// Publish publishes the frame on the channel of the document.
func (r *Redis) Publish(ctx context.Context, docID string, frame []byte) error {
	if err := r.client.Publish(ctx, Channel(docID), frame).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", Channel(docID), err)
	}
	return nil
}

// Subscribe subscribes to the channel of the document. The subscription is
// confirmed before Subscribe returns.
func (r *Redis) Subscribe(ctx context.Context, docID string) (*Subscription, error) {
	ps := r.client.Subscribe(ctx, Channel(docID))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe to %s: %w", Channel(docID), err)
	}

	sub := NewSubscription(docID, subscriptionBufferSize)
	sub.onClose = func() {
		if err := ps.Close(); err != nil {
			r.logger.Debugw("close redis subscription", "doc", docID, "error", err)
		}
	}

	go func() {
		for msg := range ps.Channel() {
			if !sub.Publish([]byte(msg.Payload)) {
				r.logger.Debugw("drop frame for slow subscription", "doc", docID, "sub", sub.ID())
			}
		}
		sub.Close()
	}()

	return sub, nil
}

// Close closes the Redis client.
func (r *Redis) Close() error {
	if err := r.client.Close(); err != nil {
		return fmt.Errorf("close redis: %w", err)
	}
	return nil
}
