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

// Package prometheus provides a Prometheus metrics exporter.
package prometheus

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/blitzboard/blitzboard/internal/version"
)

const (
	namespace      = "blitzboard"
	frameTypeLabel = "frame_type"
	reasonLabel    = "reason"
	resultLabel    = "result"
)

// Metrics manages the metric information of the relay.
type Metrics struct {
	registry *prometheus.Registry

	serverVersion *prometheus.GaugeVec

	peersConnected  prometheus.Gauge
	documentsActive prometheus.Gauge
	framesRelayed   *prometheus.CounterVec
	framesDropped   *prometheus.CounterVec
	autosavesTotal  *prometheus.CounterVec
}

// NewMetrics creates a new instance of Metrics.
func NewMetrics() (*Metrics, error) {
	reg := prometheus.NewRegistry()

	if err := reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return nil, fmt.Errorf("register process collector: %w", err)
	}
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return nil, fmt.Errorf("register go collector: %w", err)
	}

	metrics := &Metrics{
		registry: reg,
		serverVersion: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "version",
			Help:      "Which version is running. 1 for 'server_version' label with current version.",
		}, []string{"server_version"}),
		peersConnected: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "peers_connected",
			Help:      "The number of websocket peers currently connected.",
		}),
		documentsActive: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "documents_active",
			Help:      "The number of documents with at least one connected peer.",
		}),
		framesRelayed: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "frames_relayed_total",
			Help:      "The total count of frames accepted from peers and published.",
		}, []string{frameTypeLabel}),
		framesDropped: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "frames_dropped_total",
			Help:      "The total count of frames that were not delivered.",
		}, []string{reasonLabel}),
		autosavesTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "autosave",
			Name:      "saves_total",
			Help:      "The total count of autosave writes by result.",
		}, []string{resultLabel}),
	}

	metrics.serverVersion.With(prometheus.Labels{
		"server_version": version.Version,
	}).Set(1)

	return metrics, nil
}

// Registry returns the registry of this metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// AddPeer records a connected peer.
func (m *Metrics) AddPeer() {
	m.peersConnected.Inc()
}

// RemovePeer records a disconnected peer.
func (m *Metrics) RemovePeer() {
	m.peersConnected.Dec()
}

// SetActiveDocuments sets the number of documents with connected peers.
func (m *Metrics) SetActiveDocuments(n int) {
	m.documentsActive.Set(float64(n))
}

// AddFrameRelayed counts a frame of the given type published to a document.
func (m *Metrics) AddFrameRelayed(frameType string) {
	m.framesRelayed.With(prometheus.Labels{frameTypeLabel: frameType}).Inc()
}

// AddFrameDropped counts a frame that was dropped for the given reason.
func (m *Metrics) AddFrameDropped(reason string) {
	m.framesDropped.With(prometheus.Labels{reasonLabel: reason}).Inc()
}

// FramesDropped returns the counter of frames dropped for the given reason.
func (m *Metrics) FramesDropped(reason string) prometheus.Counter {
	return m.framesDropped.With(prometheus.Labels{reasonLabel: reason})
}

// AddAutosave counts an autosave write.
func (m *Metrics) AddAutosave(ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	m.autosavesTotal.With(prometheus.Labels{resultLabel: result}).Inc()
}
