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

// Package autosave periodically writes the latest content relayed for each
// document to the store. It backs up clients whose own debounced save never
// ran, such as a browser tab closed mid-burst.
package autosave

import (
	"context"
	"sync"
	"time"

	"github.com/blitzboard/blitzboard/server/logging"
)

// DefaultInterval is the default time between two autosave passes.
const DefaultInterval = 10 * time.Second

// Store is the part of the document store the autosaver writes to.
type Store interface {
	UpdateDocContent(ctx context.Context, docID, content string) error
}

// Observer is notified of every write.
type Observer interface {
	AddAutosave(ok bool)
}

type entry struct {
	content  string
	dirty    bool
	released bool
}

// Autosaver remembers the latest content of each document and writes the
// changed ones every interval.
type Autosaver struct {
	store    Store
	observer Observer
	interval time.Duration
	logger   logging.Logger

	mu      sync.Mutex
	entries map[string]*entry

	ctx        context.Context
	cancelFunc context.CancelFunc
	done       chan struct{}
}

// New creates an Autosaver. An interval of zero or less disables it: Start
// and Stop do nothing, although Flush still writes tracked content.
func New(store Store, interval time.Duration, observer Observer) *Autosaver {
	ctx, cancelFunc := context.WithCancel(context.Background())
	return &Autosaver{
		store:      store,
		observer:   observer,
		interval:   interval,
		logger:     logging.New("autosave"),
		entries:    make(map[string]*entry),
		ctx:        ctx,
		cancelFunc: cancelFunc,
		done:       make(chan struct{}),
	}
}

// Enabled returns whether periodic saving is on.
func (a *Autosaver) Enabled() bool {
	return a.interval > 0
}

// Track records the latest content of the document.
func (a *Autosaver) Track(docID, content string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	e, ok := a.entries[docID]
	if !ok {
		e = &entry{}
		a.entries[docID] = e
	}
	e.released = false
	if ok && e.content == content {
		return
	}
	e.content = content
	e.dirty = true
}

// Release marks the document as no longer edited. Its entry is dropped by
// the first pass that finds it written.
func (a *Autosaver) Release(docID string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if e, ok := a.entries[docID]; ok {
		e.released = true
	}
}

// Len returns the number of tracked documents.
func (a *Autosaver) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.entries)
}

// Forget drops the document, for example when its last peer left and its
// content has been flushed.
func (a *Autosaver) Forget(docID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.entries, docID)
}

// Start starts the periodic pass.
func (a *Autosaver) Start() error {
	if !a.Enabled() {
		close(a.done)
		return nil
	}

	go a.run()
	a.logger.Infof("autosave started, interval: %s", a.interval)
	return nil
}

// Stop stops the periodic pass and writes what is still dirty.
func (a *Autosaver) Stop() error {
	a.cancelFunc()
	<-a.done
	if a.Enabled() {
		a.Flush(context.Background())
	}
	return nil
}

func (a *Autosaver) run() {
	defer close(a.done)

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.Flush(a.ctx)
		case <-a.ctx.Done():
			return
		}
	}
}

// Flush writes every document changed since its last write. It returns the
// number of successful writes. Failed writes stay dirty for the next pass.
func (a *Autosaver) Flush(ctx context.Context) int {
	type pending struct {
		docID   string
		content string
	}

	a.mu.Lock()
	var batch []pending
	for docID, e := range a.entries {
		switch {
		case e.dirty:
			batch = append(batch, pending{docID: docID, content: e.content})
			e.dirty = false
		case e.released:
			delete(a.entries, docID)
		}
	}
	a.mu.Unlock()

	saved := 0
	for _, p := range batch {
		err := a.store.UpdateDocContent(ctx, p.docID, p.content)
		if a.observer != nil {
			a.observer.AddAutosave(err == nil)
		}
		if err != nil {
			logging.LogError(a.logger, "autosave "+p.docID, err)
			a.markDirty(p.docID, p.content)
			continue
		}
		saved++
		a.logger.Debugw("autosaved", "doc", p.docID)
	}
	return saved
}

// markDirty marks the document dirty again unless newer content arrived.
func (a *Autosaver) markDirty(docID, content string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if e, ok := a.entries[docID]; ok && e.content == content {
		e.dirty = true
	}
}
