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

package relay

import (
	"errors"
	"fmt"
	"os"
	"time"
)

const (
	// DefaultPort is the default port of the relay.
	DefaultPort = 8080

	// DefaultPingInterval is the default time between two pings to a peer.
	DefaultPingInterval = 30 * time.Second

	// DefaultPongTimeout is how long a peer may stay silent before it is
	// dropped.
	DefaultPongTimeout = 60 * time.Second

	// DefaultQueueSize is the default number of frames queued for a peer.
	DefaultQueueSize = 256

	// DefaultMaxFrameBytes is the default size limit of an inbound frame.
	DefaultMaxFrameBytes = 1 << 20
)

var (
	// ErrInvalidPort occurs when the port in the config is invalid.
	ErrInvalidPort = errors.New("invalid port number for relay server")
	// ErrInvalidCertFile occurs when the certificate file is invalid.
	ErrInvalidCertFile = errors.New("invalid cert file for relay server")
	// ErrInvalidKeyFile occurs when the key file is invalid.
	ErrInvalidKeyFile = errors.New("invalid key file for relay server")
	// ErrInvalidKeepalive occurs when the ping interval or pong timeout is invalid.
	ErrInvalidKeepalive = errors.New("invalid keepalive for relay server")
	// ErrInvalidQueueSize occurs when the peer queue size is invalid.
	ErrInvalidQueueSize = errors.New("invalid queue size for relay server")
)

// Config is the configuration for creating a Server instance.
type Config struct {
	// Port is the port number for the relay.
	Port int `yaml:"Port"`

	// CertFile is the path to the certificate file.
	CertFile string `yaml:"CertFile"`

	// KeyFile is the path to the key file.
	KeyFile string `yaml:"KeyFile"`

	// PingInterval is the time between two pings to a peer.
	PingInterval string `yaml:"PingInterval"`

	// PongTimeout is how long a peer may stay silent before it is dropped.
	// It must be longer than PingInterval.
	PongTimeout string `yaml:"PongTimeout"`

	// QueueSize is the number of frames queued for a slow peer before
	// frames for it are dropped.
	QueueSize int `yaml:"QueueSize"`

	// MaxFrameBytes is the size limit of an inbound frame.
	MaxFrameBytes int64 `yaml:"MaxFrameBytes"`

	// AllowedOrigins restricts the Origin header of upgrade requests. Every
	// origin is accepted when it is empty.
	AllowedOrigins []string `yaml:"AllowedOrigins"`
}

// Validate validates the port number, the files for certification and the
// keepalive durations.
func (c *Config) Validate() error {
	if c.Port < 1 || 65535 < c.Port {
		return fmt.Errorf("must be between 1 and 65535, given %d: %w", c.Port, ErrInvalidPort)
	}

	if c.CertFile != "" {
		if _, err := os.Stat(c.CertFile); err != nil {
			return fmt.Errorf("%s: %w", c.CertFile, ErrInvalidCertFile)
		}
	}

	if c.KeyFile != "" {
		if _, err := os.Stat(c.KeyFile); err != nil {
			return fmt.Errorf("%s: %w", c.KeyFile, ErrInvalidKeyFile)
		}
	}

	ping, err := time.ParseDuration(c.PingInterval)
	if err != nil || ping <= 0 {
		return fmt.Errorf("ping interval %q: %w", c.PingInterval, ErrInvalidKeepalive)
	}
	pong, err := time.ParseDuration(c.PongTimeout)
	if err != nil || pong <= ping {
		return fmt.Errorf("pong timeout %q: %w", c.PongTimeout, ErrInvalidKeepalive)
	}

	if c.QueueSize < 1 {
		return fmt.Errorf("given %d: %w", c.QueueSize, ErrInvalidQueueSize)
	}

	return nil
}

// EnsureDefaultValue fills the unset fields with their defaults.
func (c *Config) EnsureDefaultValue() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.PingInterval == "" {
		c.PingInterval = DefaultPingInterval.String()
	}
	if c.PongTimeout == "" {
		c.PongTimeout = DefaultPongTimeout.String()
	}
	if c.QueueSize == 0 {
		c.QueueSize = DefaultQueueSize
	}
	if c.MaxFrameBytes == 0 {
		c.MaxFrameBytes = DefaultMaxFrameBytes
	}
}

func (c *Config) pingInterval() time.Duration {
	d, err := time.ParseDuration(c.PingInterval)
	if err != nil {
		return DefaultPingInterval
	}
	return d
}

func (c *Config) pongTimeout() time.Duration {
	d, err := time.ParseDuration(c.PongTimeout)
	if err != nil {
		return DefaultPongTimeout
	}
	return d
}
