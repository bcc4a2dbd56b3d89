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

// Package profiling provides the profiling server that exposes relay metrics
// and, optionally, pprof endpoints.
package profiling

import (
	"errors"
	"fmt"
)

// DefaultPort is the default port of the profiling server.
const DefaultPort = 8081

// ErrInvalidProfilingPort occurs when the port in the config is invalid.
var ErrInvalidProfilingPort = errors.New("invalid port number for profiling server")

// Config is the configuration of the profiling server. The server is not
// started at all when the relay has no Config for it.
type Config struct {
	// Port is the port /metrics and /debug/pprof are served on.
	Port int `yaml:"Port"`

	// EnablePprof exposes the runtime profiles of net/http/pprof.
	EnablePprof bool `yaml:"EnablePprof"`
}

// EnsureDefaultValue fills the port when it is not set.
func (c *Config) EnsureDefaultValue() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
}

// Validate checks the port.
func (c *Config) Validate() error {
	if c.Port < 1 || 65535 < c.Port {
		return fmt.Errorf("port %d is out of [1, 65535]: %w", c.Port, ErrInvalidProfilingPort)
	}
	return nil
}
