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

package profiling

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/blitzboard/blitzboard/server/logging"
	"github.com/blitzboard/blitzboard/server/profiling/prometheus"
)

const (
	pathMetrics = "/metrics"
	pathPProf   = "/debug/pprof/"
)

// Server serves metrics and pprof information.
type Server struct {
	conf       *Config
	mux        *http.ServeMux
	httpServer *http.Server
}

// NewServer creates an instance of Server.
func NewServer(conf *Config, metrics *prometheus.Metrics) *Server {
	mux := http.NewServeMux()
	if conf.EnablePprof {
		mux.HandleFunc(pathPProf, pprof.Index)
		mux.HandleFunc(pathPProf+"cmdline", pprof.Cmdline)
		mux.HandleFunc(pathPProf+"profile", pprof.Profile)
		mux.HandleFunc(pathPProf+"symbol", pprof.Symbol)
		mux.HandleFunc(pathPProf+"trace", pprof.Trace)
	}
	if metrics != nil {
		mux.Handle(pathMetrics, promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))
	}

	return &Server{
		conf: conf,
		mux:  mux,
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", conf.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Handler returns the handler of the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start binds the port and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen profiling on %d: %w", s.conf.Port, err)
	}

	go func() {
		logging.DefaultLogger().Infof("serving profiling on %d", s.conf.Port)
		if err := s.httpServer.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			logging.DefaultLogger().Errorf("profiling server: %v", err)
		}
	}()
	return nil
}

// Shutdown stops the server. A graceful shutdown waits for active requests.
func (s *Server) Shutdown(graceful bool) {
	var err error
	if graceful {
		err = s.httpServer.Shutdown(context.Background())
	} else {
		err = s.httpServer.Close()
	}
	if err != nil {
		logging.DefaultLogger().Errorf("shutdown profiling server: %v", err)
	}
}
