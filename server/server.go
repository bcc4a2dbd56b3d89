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

// Package server provides the BlitzBoard relay server, the main entry point
// on the server side. It starts the websocket relay, the profiling server
// and the backend they share.
package server

import (
	"context"
	gosync "sync"

	"github.com/blitzboard/blitzboard/server/backend"
	"github.com/blitzboard/blitzboard/server/profiling"
	"github.com/blitzboard/blitzboard/server/profiling/prometheus"
	"github.com/blitzboard/blitzboard/server/relay"
)

// BlitzBoard is the relay server of BlitzBoard. It receives frames from the
// peers of a document and propagates them to every peer of that document.
type BlitzBoard struct {
	lock gosync.Mutex

	conf            *Config
	backend         *backend.Backend
	relayServer     *relay.Server
	profilingServer *profiling.Server

	shutdown   bool
	shutdownCh chan struct{}
}

// New creates a new instance of BlitzBoard.
func New(conf *Config) (*BlitzBoard, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	metrics, err := prometheus.NewMetrics()
	if err != nil {
		return nil, err
	}

	be, err := backend.New(context.Background(), conf.Backend, metrics)
	if err != nil {
		return nil, err
	}

	relayServer, err := relay.NewServer(conf.Relay, be)
	if err != nil {
		_ = be.Shutdown()
		return nil, err
	}

	var profilingServer *profiling.Server
	if conf.Profiling != nil {
		profilingServer = profiling.NewServer(conf.Profiling, metrics)
	}

	return &BlitzBoard{
		conf:            conf,
		backend:         be,
		relayServer:     relayServer,
		profilingServer: profilingServer,
		shutdownCh:      make(chan struct{}),
	}, nil
}

// Start starts the server by opening the relay port.
func (b *BlitzBoard) Start() error {
	b.lock.Lock()
	defer b.lock.Unlock()

	if err := b.backend.Start(); err != nil {
		return err
	}

	if b.profilingServer != nil {
		if err := b.profilingServer.Start(); err != nil {
			return err
		}
	}

	return b.relayServer.Start()
}

// Shutdown shuts down this BlitzBoard server.
func (b *BlitzBoard) Shutdown(graceful bool) error {
	b.lock.Lock()
	defer b.lock.Unlock()
	if b.shutdown {
		return nil
	}

	b.relayServer.Shutdown(graceful)
	if b.profilingServer != nil {
		b.profilingServer.Shutdown(graceful)
	}

	if err := b.backend.Shutdown(); err != nil {
		return err
	}

	close(b.shutdownCh)
	b.shutdown = true
	return nil
}

// ShutdownCh returns the shutdown channel.
func (b *BlitzBoard) ShutdownCh() <-chan struct{} {
	return b.shutdownCh
}

// RelayAddr returns the address of the relay.
func (b *BlitzBoard) RelayAddr() string {
	return b.relayServer.Addr()
}

// Backend returns the backend of the server. It is used for testing.
func (b *BlitzBoard) Backend() *backend.Backend {
	return b.backend
}
