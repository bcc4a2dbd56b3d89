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

package client

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/blitzboard/blitzboard/api/types"
	"github.com/blitzboard/blitzboard/api/wire"
	"github.com/blitzboard/blitzboard/pkg/cursor"
	"github.com/blitzboard/blitzboard/pkg/editsync"
	"github.com/blitzboard/blitzboard/pkg/errors"
	"github.com/blitzboard/blitzboard/pkg/presence"
	"github.com/blitzboard/blitzboard/server/logging"
)

const eventQueueSize = 256

// View is a snapshot of an editor session.
type View struct {
	DocID      string
	Title      string
	Content    string
	Permission types.Permission
	Role       string
	State      State
	Status     string
	Members    []presence.Member
	Cursors    []cursor.Mark
	SharedWith []string
}

// Session is the editor of one document. Inbound messages, connection
// changes and local intents are handled one at a time, in arrival order, by
// the session's loop.
type Session struct {
	client *Client
	doc    *types.Document
	perm   types.Permission
	logger logging.Logger

	conn     *Connection
	presence *presence.Tracker
	cursors  *cursor.Tracker
	sync     *editsync.Sync
	onChange func(View)

	// state and status mirror the connection, as seen by the loop.
	state  State
	status string

	events    chan func()
	closing   chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// Open loads the document, derives the user's permission on it and connects
// to its message stream.
func (c *Client) Open(ctx context.Context, docID string) (*Session, error) {
	info, err := c.store.FindDocInfo(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w: %w", docID, ErrLoadDocument, err)
	}

	doc := info.ToDocument()
	title := doc.Title
	if title == "" {
		title = types.DefaultTitle
	}

	var presenceOpts []presence.Option
	if c.opts.ExcludeSelf {
		presenceOpts = append(presenceOpts, presence.WithExcluded(c.user.UserID))
	}

	logger := c.opts.Logger.With("doc", docID)
	s := &Session{
		client:   c,
		doc:      doc,
		perm:     doc.PermissionFor(c.user),
		logger:   logger,
		presence: presence.New(presenceOpts...),
		cursors:  cursor.NewTracker(),
		onChange: c.opts.OnChange,
		state:    Connecting,
		status:   StatusConnecting,
		events:   make(chan func(), eventQueueSize),
		closing:  make(chan struct{}),
		done:     make(chan struct{}),
	}

	connOpts := c.opts
	connOpts.Logger = logger
	s.conn = newConnection(c.user, &sessionEvents{s: s}, connOpts)
	s.sync = editsync.New(
		doc.ID, c.user.UserID, doc.Content, title, c.store, s.conn,
		editsync.WithDebounce(c.opts.Debounce),
		editsync.WithLogger(logger),
	)

	go s.loop()

	if err := s.conn.Open(ctx, docID); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// ID returns the ID of the document.
func (s *Session) ID() string {
	return s.doc.ID
}

// Permission returns the permission of the user on the document.
func (s *Session) Permission() types.Permission {
	return s.perm
}

// Type replaces the content with newText typed by the user. It is a no-op
// for read-only users.
func (s *Session) Type(newText string) {
	if !s.perm.CanEdit() {
		return
	}

	s.enqueue(func() {
		s.sync.LocalEdit(newText)
		s.changed()
	})
}

// MoveCursor tells the other participants where the user's caret is. It is
// a no-op for read-only users and while the connection is not open.
func (s *Session) MoveCursor(position int) {
	if !s.perm.CanEdit() || position < 0 {
		return
	}

	s.enqueue(func() {
		if !s.conn.IsOpen() {
			return
		}
		if err := s.conn.Send(wire.Cursor{
			UserID:   s.client.user.UserID,
			Name:     s.client.user.DisplayName(),
			Position: position,
		}); err != nil {
			s.logger.Debugf("send cursor: %v", err)
		}
	})
}

// Rename changes the title of the document and persists it right away. Only
// the owner may rename.
func (s *Session) Rename(ctx context.Context, title string) error {
	if !s.perm.CanRename() {
		return ErrNotOwner
	}

	err := s.sync.SetTitle(ctx, title)
	s.enqueue(s.changed)
	return err
}

// Share adds the email to the sharing list of the document. Only the owner
// may share, and only with users of the directory.
func (s *Session) Share(ctx context.Context, email string) error {
	if !s.perm.CanShare() {
		return ErrNotOwner
	}

	var current []string
	if !s.do(func() { current = slices.Clone(s.doc.SharedWith) }) {
		return ErrSessionClosed
	}

	updated, err := s.client.share(ctx, s.doc.ID, current, email)
	if err != nil {
		return err
	}

	s.enqueue(func() {
		s.doc.SharedWith = updated
		s.changed()
	})
	return nil
}

// SharedUsers returns the users on the sharing list, resolved through the
// user directory. Emails not in the directory are left out.
func (s *Session) SharedUsers(ctx context.Context) ([]*types.User, error) {
	var emails []string
	if !s.do(func() { emails = slices.Clone(s.doc.SharedWith) }) {
		<-s.done
		emails = slices.Clone(s.doc.SharedWith)
	}
	if len(emails) == 0 {
		return nil, nil
	}

	found, err := s.client.ResolveUsersByEmail(ctx, emails)
	if err != nil {
		logging.LogError(s.logger, "resolve shared users", err)
		return nil, err
	}

	users := make([]*types.User, 0, len(found))
	for _, email := range emails {
		if user, ok := found[email]; ok {
			users = append(users, user)
		}
	}
	return users, nil
}

// View returns a snapshot of the session. It must not be called from the
// change handler; the handler receives the snapshot instead.
func (s *Session) View() View {
	var v View
	if s.do(func() { v = s.view() }) {
		return v
	}

	<-s.done
	return s.view()
}

// Close persists a pending edit, leaves the document and closes the
// connection. The session cannot be used afterwards.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.sync.Close()
		err = s.conn.Close()

		s.do(func() {
			s.state = Closed
			s.status = StatusDisconnected
		})
		close(s.closing)
		<-s.done
	})
	return err
}

func (s *Session) loop() {
	defer close(s.done)

	for {
		select {
		case fn := <-s.events:
			fn()
		case <-s.closing:
			return
		}
	}
}

// enqueue hands fn to the loop. It returns false once the session is closed.
func (s *Session) enqueue(fn func()) bool {
	select {
	case <-s.closing:
		return false
	default:
	}

	select {
	case s.events <- fn:
		return true
	case <-s.closing:
		return false
	}
}

// do runs fn on the loop and waits for it.
func (s *Session) do(fn func()) bool {
	ran := make(chan struct{})
	if !s.enqueue(func() {
		fn()
		close(ran)
	}) {
		return false
	}

	select {
	case <-ran:
		return true
	case <-s.done:
		return false
	}
}

func (s *Session) view() View {
	content := s.sync.Content()
	return View{
		DocID:      s.doc.ID,
		Title:      s.sync.Title(),
		Content:    content,
		Permission: s.perm,
		Role:       s.perm.Role(),
		State:      s.state,
		Status:     s.status,
		Members:    s.presence.List(),
		Cursors:    s.cursors.Marks(content),
		SharedWith: slices.Clone(s.doc.SharedWith),
	}
}

func (s *Session) changed() {
	if s.onChange != nil {
		s.onChange(s.view())
	}
}

// sessionEvents feeds the connection's events into the session loop and
// routes inbound messages to the trackers.
type sessionEvents struct {
	s *Session
}

func (e *sessionEvents) OnStatus(state State, status string) {
	e.s.enqueue(func() {
		if state == Open {
			e.s.presence.Reset()
		}
		e.s.state = state
		e.s.status = status
		e.s.changed()
	})
}

func (e *sessionEvents) OnMessage(msg wire.Message) {
	e.s.enqueue(func() {
		msg.Accept(e)
	})
}

func (e *sessionEvents) HandlePresence(p wire.Presence) {
	if e.s.presence.Apply(p) {
		e.s.changed()
	}
}

func (e *sessionEvents) HandleCursor(c wire.Cursor) {
	if e.s.cursors.Apply(c) {
		e.s.changed()
	}
}

func (e *sessionEvents) HandleEdit(edit wire.Edit) {
	if e.s.sync.ApplyRemote(edit) {
		e.s.changed()
	}
}

// ErrSessionClosed is returned by operations on a closed session.
var ErrSessionClosed = errors.FailedPrecond("session is closed").WithCode("ErrSessionClosed")

// share adds email to the current sharing list of the document and returns
// the new list.
func (c *Client) share(ctx context.Context, docID string, current []string, email string) ([]string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrEmptyEmail
	}
	if slices.Contains(current, email) {
		return nil, fmt.Errorf("%s: %w", email, ErrAlreadyShared)
	}

	if _, err := c.store.FindUserInfoByEmail(ctx, email); err != nil {
		return nil, fmt.Errorf("share with %s: %w", email, err)
	}

	updated := append(slices.Clone(current), email)
	if err := c.store.UpdateDocSharedWith(ctx, docID, updated); err != nil {
		logging.LogError(c.opts.Logger, "share "+docID, err)
		return nil, fmt.Errorf("share %s: %w", docID, err)
	}
	return updated, nil
}
