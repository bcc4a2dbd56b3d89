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

// Package wire defines the frames exchanged over a document's message stream.
//
// A frame is a JSON object whose "type" field selects one of three variants:
// Presence, Cursor or Edit. There are no acknowledgements, sequence numbers
// or versions; ordering is whatever the transport provides.
package wire

import (
	"encoding/json"
	"fmt"

	"github.com/blitzboard/blitzboard/pkg/errors"
)

// ErrMalformedMessage is returned when a frame cannot be decoded into one of
// the known variants.
var ErrMalformedMessage = errors.InvalidArgument("malformed message").WithCode("ErrMalformedMessage")

// Type is the discriminator of a frame.
type Type string

const (
	// TypePresence announces that a participant joined or left.
	TypePresence Type = "presence"

	// TypeCursor carries a participant's caret offset.
	TypeCursor Type = "cursor"

	// TypeEdit carries the full content of a document after a local change.
	TypeEdit Type = "edit"
)

// Message is one of Presence, Cursor or Edit.
type Message interface {
	// Type returns the discriminator of the message.
	Type() Type

	// Accept calls the method of h that matches the variant.
	Accept(h Handler)

	isMessage()
}

// Handler receives decoded messages, one method per variant.
type Handler interface {
	HandlePresence(p Presence)
	HandleCursor(c Cursor)
	HandleEdit(e Edit)
}

// Presence is sent when a participant opens or leaves a document.
type Presence struct {
	UserID string `json:"userID"`
	Name   string `json:"name"`
	Joined bool   `json:"joined"`
}

// Type returns TypePresence.
func (Presence) Type() Type { return TypePresence }

// Accept calls h.HandlePresence.
func (p Presence) Accept(h Handler) { h.HandlePresence(p) }

func (Presence) isMessage() {}

// Cursor is sent when a participant moves the caret. Position is an offset
// in UTF-16 code units into the content.
type Cursor struct {
	UserID   string `json:"userID"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

// Type returns TypeCursor.
func (Cursor) Type() Type { return TypeCursor }

// Accept calls h.HandleCursor.
func (c Cursor) Accept(h Handler) { h.HandleCursor(c) }

func (Cursor) isMessage() {}

// Edit carries the whole buffer, not a diff.
type Edit struct {
	UserID  string `json:"userID"`
	Content string `json:"content"`
}

// Type returns TypeEdit.
func (Edit) Type() Type { return TypeEdit }

// Accept calls h.HandleEdit.
func (e Edit) Accept(h Handler) { h.HandleEdit(e) }

func (Edit) isMessage() {}

// Encode marshals the given message together with its discriminator.
func Encode(m Message) ([]byte, error) {
	var frame any
	switch v := m.(type) {
	case Presence:
		frame = struct {
			Type Type `json:"type"`
			Presence
		}{TypePresence, v}
	case Cursor:
		frame = struct {
			Type Type `json:"type"`
			Cursor
		}{TypeCursor, v}
	case Edit:
		frame = struct {
			Type Type `json:"type"`
			Edit
		}{TypeEdit, v}
	default:
		return nil, fmt.Errorf("encode %T: %w", m, ErrMalformedMessage)
	}

	data, err := json.Marshal(frame)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.Type(), err)
	}
	return data, nil
}

// Decode unmarshals a frame into its variant by reading the discriminator
// first. Invalid JSON, unknown types and mistyped fields all fail with
// ErrMalformedMessage.
func Decode(data []byte) (Message, error) {
	var head struct {
		Type Type `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode frame: %s: %w", err.Error(), ErrMalformedMessage)
	}

	switch head.Type {
	case TypePresence:
		var p Presence
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("decode presence: %s: %w", err.Error(), ErrMalformedMessage)
		}
		return p, nil
	case TypeCursor:
		var c Cursor
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("decode cursor: %s: %w", err.Error(), ErrMalformedMessage)
		}
		return c, nil
	case TypeEdit:
		var e Edit
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("decode edit: %s: %w", err.Error(), ErrMalformedMessage)
		}
		return e, nil
	default:
		return nil, fmt.Errorf("decode frame: unknown type %q: %w", head.Type, ErrMalformedMessage)
	}
}
