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
	"fmt"
	"time"
)

const (
	// DefaultConnectionTimeout is the default timeout for connecting to MongoDB.
	DefaultConnectionTimeout = 5 * time.Second

	// DefaultPingTimeout is the default timeout for the ping after connecting.
	DefaultPingTimeout = 5 * time.Second

	// DefaultDatabase is the default name of the database.
	DefaultDatabase = "blitzboard"
)

// Config is the configuration for creating a Client instance.
type Config struct {
	ConnectionTimeout string `yaml:"ConnectionTimeout"`
	ConnectionURI     string `yaml:"ConnectionURI"`
	Database          string `yaml:"Database"`
	PingTimeout       string `yaml:"PingTimeout"`
}

// NewConfig returns a Config for the given URI with default values.
func NewConfig(uri string) *Config {
	return &Config{
		ConnectionTimeout: DefaultConnectionTimeout.String(),
		ConnectionURI:     uri,
		Database:          DefaultDatabase,
		PingTimeout:       DefaultPingTimeout.String(),
	}
}

// Validate returns an error if the provided Config is invalidated.
func (c *Config) Validate() error {
	if c.ConnectionURI == "" {
		return fmt.Errorf("mongo connection URI is required")
	}

	if _, err := time.ParseDuration(c.ConnectionTimeout); err != nil {
		return fmt.Errorf(`invalid mongo connection timeout "%s": %w`, c.ConnectionTimeout, err)
	}

	if _, err := time.ParseDuration(c.PingTimeout); err != nil {
		return fmt.Errorf(`invalid mongo ping timeout "%s": %w`, c.PingTimeout, err)
	}

	return nil
}

func (c *Config) connectionTimeout() time.Duration {
	d, err := time.ParseDuration(c.ConnectionTimeout)
	if err != nil {
		return DefaultConnectionTimeout
	}
	return d
}

func (c *Config) pingTimeout() time.Duration {
	d, err := time.ParseDuration(c.PingTimeout)
	if err != nil {
		return DefaultPingTimeout
	}
	return d
}
