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
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config is the configuration for creating a Backend instance.
type Config struct {
	// StoreURL selects the document store by scheme: memory://, mongodb://,
	// postgres:// or an http(s) PostgREST endpoint. Default is memory.
	StoreURL string `yaml:"StoreURL"`

	// StoreKey is the API key of an http(s) store.
	StoreKey string `yaml:"StoreKey"`

	// BrokerURL is the Redis URL used to share documents between relays.
	// Frames stay within the process when it is empty.
	BrokerURL string `yaml:"BrokerURL"`

	// BrokerPassword overrides the password of BrokerURL.
	BrokerPassword string `yaml:"BrokerPassword"`

	// AutosaveInterval is the time between two autosave passes. "0"
	// disables autosave. Default is "10s".
	AutosaveInterval string `yaml:"AutosaveInterval"`
}

// Validate validates this config.
func (c *Config) Validate() error {
	scheme, err := storeScheme(c.StoreURL)
	if err != nil {
		return err
	}
	if (scheme == "http" || scheme == "https") && c.StoreKey == "" {
		return fmt.Errorf("store key is required for %s stores", scheme)
	}

	interval, err := time.ParseDuration(c.AutosaveInterval)
	if err != nil {
		return fmt.Errorf(
			`invalid argument "%s" for "--autosave-interval" flag: %w`,
			c.AutosaveInterval,
			err,
		)
	}
	if interval < 0 {
		return fmt.Errorf(`invalid argument "%s" for "--autosave-interval" flag: negative`, c.AutosaveInterval)
	}

	return nil
}

// ParseAutosaveInterval returns the autosave interval; zero when disabled.
func (c *Config) ParseAutosaveInterval() time.Duration {
	interval, err := time.ParseDuration(c.AutosaveInterval)
	if err != nil || interval < 0 {
		return 0
	}
	return interval
}

func storeScheme(storeURL string) (string, error) {
	storeURL = strings.TrimSpace(storeURL)
	if storeURL == "" {
		return "memory", nil
	}

	parsed, err := url.Parse(storeURL)
	if err != nil {
		return "", fmt.Errorf("parse store url: %w", err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	switch scheme {
	case "memory", "mem", "mongodb", "mongodb+srv", "postgres", "postgresql", "http", "https":
		return scheme, nil
	default:
		return "", fmt.Errorf("%q: %w", storeURL, ErrUnsupportedStore)
	}
}
