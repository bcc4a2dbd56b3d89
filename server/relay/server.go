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

// Package relay provides the websocket relay: every frame a peer sends on a
// document's message stream is published on the document's broker channel
// and delivered to every peer of that document.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/blitzboard/blitzboard/api/wire"
	"github.com/blitzboard/blitzboard/internal/version"
	"github.com/blitzboard/blitzboard/server/backend"
	"github.com/blitzboard/blitzboard/server/logging"
)

const shutdownTimeout = 10 * time.Second

// Server relays the frames of websocket peers.
type Server struct {
	conf      *Config
	backend   *backend.Backend
	hub       *Hub
	metrics   Metrics
	validator *wire.Validator
	upgrader  websocket.Upgrader

	router     *mux.Router
	httpServer *http.Server
	listener   net.Listener

	ctx        context.Context
	cancelFunc context.CancelFunc
}

// NewServer creates a new instance of Server.
func NewServer(conf *Config, be *backend.Backend) (*Server, error) {
	validator, err := wire.NewValidator()
	if err != nil {
		return nil, err
	}

	var metrics Metrics = nopMetrics{}
	if be.Metrics != nil {
		metrics = be.Metrics
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	s := &Server{
		conf:      conf,
		backend:   be,
		hub:       NewHub(be.Broker, metrics, be.Autosaver.Release),
		metrics:   metrics,
		validator: validator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
		ctx:        ctx,
		cancelFunc: cancelFunc,
	}
	s.upgrader.CheckOrigin = s.checkOrigin

	s.router = mux.NewRouter()
	s.router.HandleFunc("/health", handleHealth).Methods(http.MethodGet, http.MethodHead)
	s.router.HandleFunc("/ws/{docID}", s.handleStream).Methods(http.MethodGet)

	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s, nil
}

// Handler returns the HTTP handler of the relay.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hub returns the hub of connected peers.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Start starts this server by opening the relay port.
func (s *Server) Start() error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", s.conf.Port))
	if err != nil {
		logging.DefaultLogger().Error(err)
		return err
	}
	s.listener = lis

	go func() {
		logging.DefaultLogger().Infof("serving relay on %d", s.conf.Port)

		var err error
		if s.conf.CertFile != "" && s.conf.KeyFile != "" {
			err = s.httpServer.ServeTLS(lis, s.conf.CertFile, s.conf.KeyFile)
		} else {
			err = s.httpServer.Serve(lis)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.DefaultLogger().Error(err)
		}
	}()

	return nil
}

// Addr returns the address the relay listens on, once started.
func (s *Server) Addr() string {
	if s.listener == nil {
		return fmt.Sprintf(":%d", s.conf.Port)
	}
	return s.listener.Addr().String()
}

// Shutdown shuts down this server. Peers are disconnected in both cases;
// a graceful shutdown lets in-flight HTTP requests finish first.
func (s *Server) Shutdown(graceful bool) {
	s.cancelFunc()

	if graceful {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(ctx); err != nil {
			logging.DefaultLogger().Error(err)
		}
	} else if err := s.httpServer.Close(); err != nil {
		logging.DefaultLogger().Error(err)
	}

	s.hub.Close()
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if len(s.conf.AllowedOrigins) == 0 {
		return true
	}
	return slices.Contains(s.conf.AllowedOrigins, r.Header.Get("Origin"))
}

// handleStream upgrades the request and relays the peer's frames until it
// disconnects.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	docID := mux.Vars(r)["docID"]

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.DefaultLogger().Warnf("upgrade %s: %v", docID, err)
		return
	}

	p := newPeer(docID, conn, s.conf.QueueSize)
	ctx := logging.With(s.ctx, p.logger.With("remote", r.RemoteAddr))
	if err := s.hub.join(ctx, p); err != nil {
		logging.LogError(p.logger, "join", err)
		_ = conn.Close()
		return
	}
	defer s.hub.leave(p)

	go p.writeLoop(s.conf.pingInterval())
	p.readLoop(s.conf.MaxFrameBytes, s.conf.pongTimeout(), func(frame []byte) {
		s.relay(p, frame)
	})
}

// relay validates the frame and publishes it on the document's channel.
func (s *Server) relay(p *peer, frame []byte) {
	if err := s.validator.Validate(frame); err != nil {
		logging.LogError(p.logger, "drop frame", err)
		s.metrics.AddFrameDropped(DropMalformed)
		return
	}

	msg, err := wire.Decode(frame)
	if err != nil {
		logging.LogError(p.logger, "drop frame", err)
		s.metrics.AddFrameDropped(DropMalformed)
		return
	}

	if edit, ok := msg.(wire.Edit); ok && s.backend.Autosaver.Enabled() {
		s.backend.Autosaver.Track(p.docID, edit.Content)
	}

	if err := s.backend.Broker.Publish(s.ctx, p.docID, frame); err != nil {
		logging.LogError(p.logger, "publish frame", err)
		s.metrics.AddFrameDropped(DropBroker)
		return
	}
	s.metrics.AddFrameRelayed(string(msg.Type()))
}

type healthResponse struct {
	Status  string    `json:"status"`
	Time    time.Time `json:"time"`
	Version string    `json:"version"`
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	resp, err := json.Marshal(healthResponse{
		Status:  "ok",
		Time:    time.Now().UTC(),
		Version: version.Version,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodGet {
		_, _ = w.Write(resp)
	}
}
