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

package server

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/blitzboard/blitzboard/server/backend"
	"github.com/blitzboard/blitzboard/server/backend/autosave"
	"github.com/blitzboard/blitzboard/server/profiling"
	"github.com/blitzboard/blitzboard/server/relay"
)

// Below are the values of the default values of BlitzBoard config.
const (
	DefaultRelayPort     = relay.DefaultPort
	DefaultProfilingPort = profiling.DefaultPort

	DefaultStoreURL         = "memory://"
	DefaultAutosaveInterval = autosave.DefaultInterval
)

// Config is the configuration for creating a BlitzBoard relay instance.
type Config struct {
	Relay     *relay.Config     `yaml:"Relay"`
	Profiling *profiling.Config `yaml:"Profiling"`
	Backend   *backend.Config   `yaml:"Backend"`
}

// NewConfig returns a Config struct that contains reasonable defaults
// for most of the configurations.
func NewConfig() *Config {
	return newConfig(DefaultRelayPort, DefaultProfilingPort)
}

// NewConfigFromFile returns a Config struct for the given conf file.
func NewConfigFromFile(path string) (*Config, error) {
	conf := &Config{}
	bytes, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err = yaml.Unmarshal(bytes, conf); err != nil {
		return nil, fmt.Errorf("unmarshal config file: %w", err)
	}

	conf.ensureDefaultValue()
	return conf, nil
}

// RelayAddr returns the relay address.
func (c *Config) RelayAddr() string {
	return fmt.Sprintf("localhost:%d", c.Relay.Port)
}

// Validate returns an error if the provided Config is invalidated.
func (c *Config) Validate() error {
	if err := c.Relay.Validate(); err != nil {
		return err
	}

	if c.Profiling != nil {
		if err := c.Profiling.Validate(); err != nil {
			return err
		}
	}

	return c.Backend.Validate()
}

// ensureDefaultValue sets the value of the option to which the default value
// should be applied when the user does not input it.
func (c *Config) ensureDefaultValue() {
	if c.Relay == nil {
		c.Relay = &relay.Config{}
	}
	c.Relay.EnsureDefaultValue()

	if c.Profiling != nil {
		c.Profiling.EnsureDefaultValue()
	}

	if c.Backend == nil {
		c.Backend = &backend.Config{}
	}
	if c.Backend.StoreURL == "" {
		c.Backend.StoreURL = DefaultStoreURL
	}
	if c.Backend.AutosaveInterval == "" {
		c.Backend.AutosaveInterval = DefaultAutosaveInterval.String()
	}
}

func newConfig(port int, profilingPort int) *Config {
	conf := &Config{
		Relay: &relay.Config{
			Port: port,
		},
		Profiling: &profiling.Config{
			Port: profilingPort,
		},
		Backend: &backend.Config{
			StoreURL:         DefaultStoreURL,
			AutosaveInterval: DefaultAutosaveInterval.String(),
		},
	}
	conf.ensureDefaultValue()
	return conf
}
