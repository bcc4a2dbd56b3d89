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
	"time"
	"unicode/utf16"

	"github.com/google/uuid"

	"github.com/blitzboard/blitzboard/api/types"
	"github.com/blitzboard/blitzboard/server/backend/database"
	"github.com/blitzboard/blitzboard/server/logging"
)

const (
	// titleFallbackLength is the length of the first line shown for an
	// untitled document.
	titleFallbackLength = 50

	// PreviewLength is the length of the content preview of a document.
	PreviewLength = 140

	// PreviewLines is the number of lines of the content preview.
	PreviewLines = 2

	// EmptyPreview is shown in place of the preview of an empty document.
	EmptyPreview = "No content yet..."
)

// DocumentEntry is a document on the dashboard of the user.
type DocumentEntry struct {
	*types.Document

	// OwnerName is "You" for the user's own documents, otherwise the name
	// or email of the owner.
	OwnerName string

	IsOwner bool
}

// Title returns the title shown for the entry.
func (e *DocumentEntry) Title() string {
	return DisplayTitle(e.Document)
}

// Preview returns the content preview of the entry.
func (e *DocumentEntry) Preview() string {
	return Preview(e.Content)
}

// ListDocuments returns the documents the user owns or that are shared with
// them, most recently updated first.
func (c *Client) ListDocuments(ctx context.Context) ([]*DocumentEntry, error) {
	owned, err := c.store.FindDocInfosByOwner(ctx, c.user.UserID)
	if err != nil {
		return nil, fmt.Errorf("list documents of %s: %w", c.user.UserID, err)
	}

	infos := make(map[string]*database.DocInfo, len(owned))
	for _, info := range owned {
		infos[info.ID] = info
	}

	if c.user.Email != "" {
		shared, err := c.store.FindDocInfosSharedWith(ctx, c.user.Email)
		if err != nil {
			logging.LogError(c.opts.Logger, "list shared documents", err)
		}
		for _, info := range shared {
			infos[info.ID] = info
		}
	}

	var ownerIDs []string
	for _, info := range infos {
		if info.OwnerID != c.user.UserID && !slices.Contains(ownerIDs, info.OwnerID) {
			ownerIDs = append(ownerIDs, info.OwnerID)
		}
	}

	owners := map[string]*types.User{}
	if len(ownerIDs) > 0 {
		if owners, err = c.ResolveUsersByID(ctx, ownerIDs); err != nil {
			logging.LogError(c.opts.Logger, "resolve owners", err)
			owners = map[string]*types.User{}
		}
	}

	entries := make([]*DocumentEntry, 0, len(infos))
	for _, info := range infos {
		isOwner := info.OwnerID == c.user.UserID
		entries = append(entries, &DocumentEntry{
			Document:  info.ToDocument(),
			OwnerName: ownerName(info.OwnerID, isOwner, owners),
			IsOwner:   isOwner,
		})
	}

	slices.SortStableFunc(entries, func(a, b *DocumentEntry) int {
		if n := b.UpdatedAt.Compare(a.UpdatedAt); n != 0 {
			return n
		}
		return strings.Compare(a.ID, b.ID)
	})
	return entries, nil
}

// CreateDocument creates an empty document owned by the user.
func (c *Client) CreateDocument(ctx context.Context) (*types.Document, error) {
	info, err := c.store.CreateDocInfo(ctx, database.NewDocInfo(uuid.NewString(), c.user.UserID))
	if err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}

	c.opts.Logger.Infof("document %s created", info.ID)
	return info.ToDocument(), nil
}

// ShareDocument adds the email to the sharing list of a document the user
// owns.
func (c *Client) ShareDocument(ctx context.Context, docID, email string) error {
	info, err := c.store.FindDocInfo(ctx, docID)
	if err != nil {
		return fmt.Errorf("share %s: %w", docID, err)
	}
	if info.OwnerID != c.user.UserID {
		return ErrNotOwner
	}

	_, err = c.share(ctx, docID, info.SharedWith, email)
	return err
}

// RenameDocument changes the title of a document the user owns.
func (c *Client) RenameDocument(ctx context.Context, docID, title string) error {
	info, err := c.store.FindDocInfo(ctx, docID)
	if err != nil {
		return fmt.Errorf("rename %s: %w", docID, err)
	}
	if info.OwnerID != c.user.UserID {
		return ErrNotOwner
	}

	if err := c.store.UpdateDocTitle(ctx, docID, title); err != nil {
		return fmt.Errorf("rename %s: %w", docID, err)
	}
	return nil
}

func ownerName(ownerID string, isOwner bool, owners map[string]*types.User) string {
	if isOwner {
		return "You"
	}
	if owner, ok := owners[ownerID]; ok && owner.DisplayName() != "" {
		return owner.DisplayName()
	}
	if len(ownerID) > 8 {
		return ownerID[:8]
	}
	return ownerID
}

// DisplayTitle returns the title of the document, or the beginning of its
// first line when the title is blank, or DefaultTitle.
func DisplayTitle(doc *types.Document) string {
	if title := strings.TrimSpace(doc.Title); title != "" {
		return title
	}

	firstLine, _, _ := strings.Cut(doc.Content, "\n")
	if line := truncate(firstLine, titleFallbackLength); line != "" {
		return line
	}
	return types.DefaultTitle
}

// Preview returns the first lines of the content joined by spaces, cut to
// PreviewLength with a trailing "..." when the content is longer.
func Preview(content string) string {
	lines := strings.SplitN(content, "\n", PreviewLines+1)
	if len(lines) > PreviewLines {
		lines = lines[:PreviewLines]
	}

	preview := truncate(strings.TrimSpace(strings.Join(lines, " ")), PreviewLength)
	if len(utf16.Encode([]rune(content))) > PreviewLength {
		preview += "..."
	}
	return preview
}

// TimeAgo describes how long ago t was, as of now.
func TimeAgo(now, t time.Time) string {
	secs := int(now.Sub(t).Seconds())
	if secs < 60 {
		return "Active now"
	}

	minutes := secs / 60
	if minutes < 60 {
		return fmt.Sprintf("Last edited %d min ago", minutes)
	}

	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf("Last edited %d hr ago", hours)
	}

	days := hours / 24
	if days > 1 {
		return fmt.Sprintf("Last edited %d days ago", days)
	}
	return fmt.Sprintf("Last edited %d day ago", days)
}

// truncate cuts s to at most n UTF-16 code units, never splitting a
// surrogate pair.
func truncate(s string, n int) string {
	units := 0
	for i, r := range s {
		w := utf16.RuneLen(r)
		if w < 0 {
			w = 1
		}
		if units+w > n {
			return s[:i]
		}
		units += w
	}
	return s
}
