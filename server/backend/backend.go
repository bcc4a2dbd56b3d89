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

// Package backend provides the backend of the relay: the document store, the
// broker frames travel on and the autosaver.
package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/blitzboard/blitzboard/server/backend/autosave"
	"github.com/blitzboard/blitzboard/server/backend/database"
	"github.com/blitzboard/blitzboard/server/backend/pubsub"
	"github.com/blitzboard/blitzboard/server/logging"
	"github.com/blitzboard/blitzboard/server/profiling/prometheus"
)

// Backend manages the resources the relay works with.
type Backend struct {
	Config *Config

	// DB is the document store.
	DB database.Database
	// Broker carries frames between the peers of a document.
	Broker pubsub.Broker
	// Autosaver writes relayed content to the store.
	Autosaver *autosave.Autosaver
	// Metrics is used to expose metrics.
	Metrics *prometheus.Metrics
}

// New creates a new instance of Backend.
func New(ctx context.Context, conf *Config, metrics *prometheus.Metrics) (*Backend, error) {
	db, err := OpenDatabase(ctx, conf.StoreURL, conf.StoreKey)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	broker, err := OpenBroker(ctx, conf.BrokerURL, conf.BrokerPassword)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open broker: %w", err)
	}

	var observer autosave.Observer
	if metrics != nil {
		observer = metrics
	}
	saver := autosave.New(db, conf.ParseAutosaveInterval(), observer)

	brokerInfo := "memory"
	if conf.BrokerURL != "" {
		brokerInfo = "redis"
	}
	logging.DefaultLogger().Infof(
		"backend created: store: %s, broker: %s, autosave: %s",
		storeLabel(conf.StoreURL), brokerInfo, conf.AutosaveInterval,
	)

	return &Backend{
		Config:    conf,
		DB:        db,
		Broker:    broker,
		Autosaver: saver,
		Metrics:   metrics,
	}, nil
}

// Start starts the background work of the backend.
func (b *Backend) Start() error {
	if err := b.Autosaver.Start(); err != nil {
		return err
	}

	logging.DefaultLogger().Infof("backend started")
	return nil
}

// Shutdown closes all resources of this instance.
func (b *Backend) Shutdown() error {
	var errs []error

	if err := b.Autosaver.Stop(); err != nil {
		errs = append(errs, err)
	}
	if err := b.Broker.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := b.DB.Close(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	logging.DefaultLogger().Infof("backend stopped")
	return nil
}

// storeLabel returns the scheme of the store URL so credentials stay out of
// the log.
func storeLabel(storeURL string) string {
	scheme, err := storeScheme(storeURL)
	if err != nil {
		return "unknown"
	}
	return scheme
}
