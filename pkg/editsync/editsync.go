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

// Package editsync keeps the content of an open document in sync between the
// local editor, remote peers and the document store.
//
// Content follows last-writer-wins: every local edit is broadcast as the full
// buffer and every remote edit replaces the local buffer verbatim. Local
// edits are persisted once the author has been quiet for a while, so a burst
// of keystrokes results in a single write of its final value.
package editsync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/blitzboard/blitzboard/api/wire"
	"github.com/blitzboard/blitzboard/pkg/limit"
	"github.com/blitzboard/blitzboard/server/logging"
)

const (
	// DefaultDebounce is the quiet period after the last local edit before
	// the content is persisted.
	DefaultDebounce = 1500 * time.Millisecond

	// DefaultPersistTimeout bounds a single write to the store.
	DefaultPersistTimeout = 10 * time.Second
)

// Store is the part of the document store the sync writes to.
type Store interface {
	UpdateDocContent(ctx context.Context, docID, content string) error
	UpdateDocTitle(ctx context.Context, docID, title string) error
}

// Sender delivers messages to the peers of the document.
type Sender interface {
	IsOpen() bool
	Send(msg wire.Message) error
}

// Option configures a Sync.
type Option func(*options)

type options struct {
	debounce       time.Duration
	persistTimeout time.Duration
	logger         logging.Logger
	onPersist      func(content string, err error)
}

// WithDebounce sets the quiet period before local edits are persisted.
func WithDebounce(d time.Duration) Option {
	return func(o *options) { o.debounce = d }
}

// WithPersistTimeout bounds each write to the store.
func WithPersistTimeout(d time.Duration) Option {
	return func(o *options) { o.persistTimeout = d }
}

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithPersistHook registers a function called after every content write.
func WithPersistHook(fn func(content string, err error)) Option {
	return func(o *options) { o.onPersist = fn }
}

// Sync holds the content and title of one document for one local user.
type Sync struct {
	docID  string
	userID string

	store     Store
	sender    Sender
	debouncer *limit.Debouncer
	opts      options

	mu      sync.RWMutex
	content string
	title   string
}

// New creates a Sync for the given document, starting from its loaded
// content and title.
func New(docID, userID, content, title string, store Store, sender Sender, opts ...Option) *Sync {
	o := options{
		debounce:       DefaultDebounce,
		persistTimeout: DefaultPersistTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.DefaultLogger()
	}

	return &Sync{
		docID:     docID,
		userID:    userID,
		store:     store,
		sender:    sender,
		debouncer: limit.NewDebouncer(o.debounce),
		opts:      o,
		content:   content,
		title:     title,
	}
}

// Content returns the current content.
func (s *Sync) Content() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.content
}

// Title returns the current title.
func (s *Sync) Title() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.title
}

// LocalEdit replaces the content with newText typed by the local user. The
// full buffer is sent to the peers if the connection is open, and a write of
// newText is scheduled after the quiet period.
func (s *Sync) LocalEdit(newText string) {
	s.mu.Lock()
	s.content = newText
	s.mu.Unlock()

	if s.sender != nil && s.sender.IsOpen() {
		if err := s.sender.Send(wire.Edit{UserID: s.userID, Content: newText}); err != nil {
			s.opts.logger.Debugw("send edit", "doc", s.docID, "error", err)
		}
	}

	s.debouncer.Call(func() {
		s.persist(newText)
	})
}

// ApplyRemote replaces the content with a peer's edit. Edits echoed back from
// the local user are ignored. Remote edits are never persisted here; their
// author persists them. It returns whether the content was replaced.
func (s *Sync) ApplyRemote(edit wire.Edit) bool {
	if edit.UserID == s.userID {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.content = edit.Content
	return true
}

// SetTitle changes the title and persists it right away, independently of
// pending content writes. The title is changed locally even if the write
// fails.
func (s *Sync) SetTitle(ctx context.Context, title string) error {
	s.mu.Lock()
	s.title = title
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.opts.persistTimeout)
	defer cancel()

	if err := s.store.UpdateDocTitle(ctx, s.docID, title); err != nil {
		logging.LogError(s.opts.logger, "persist title", err)
		return fmt.Errorf("update title of %s: %w", s.docID, err)
	}
	return nil
}

// Pending returns whether a content write is waiting for the quiet period.
func (s *Sync) Pending() bool {
	return s.debouncer.Pending()
}

// Flush writes a pending content change immediately.
func (s *Sync) Flush() {
	s.debouncer.Flush()
}

// Close flushes a pending content change and stops scheduling new ones.
func (s *Sync) Close() {
	s.debouncer.Flush()
	s.debouncer.Stop()
}

func (s *Sync) persist(content string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.persistTimeout)
	defer cancel()

	err := s.store.UpdateDocContent(ctx, s.docID, content)
	if err != nil {
		logging.LogError(s.opts.logger, "persist content", err)
	}
	if s.opts.onPersist != nil {
		s.opts.onPersist(content, err)
	}
}
