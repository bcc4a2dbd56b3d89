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

// Package postgrest implements the database interface over a PostgREST
// endpoint, such as the REST API of a Supabase project.
package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/blitzboard/blitzboard/pkg/errors"
	"github.com/blitzboard/blitzboard/server/backend/database"
)

const (
	tblDocuments = "documents"
	tblUsers     = "users"

	defaultTimeout = 10 * time.Second
)

// ErrRequestFailed is returned when the endpoint answers with an error status.
var ErrRequestFailed = errors.Unavailable("postgrest request failed").WithCode("ErrRequestFailed")

// Config is the configuration for creating a Client.
type Config struct {
	// URL is the base URL of the project; tables live under /rest/v1.
	URL string

	// APIKey is sent as the apikey header.
	APIKey string

	// AccessToken is sent as the bearer token. The API key is used when it
	// is empty.
	AccessToken string

	// HTTPClient overrides the HTTP client.
	HTTPClient *http.Client
}

// Client talks to the tables of a PostgREST endpoint.
type Client struct {
	base        string
	apiKey      string
	accessToken string
	http        *http.Client
}

// New creates a Client for the given configuration.
func New(conf Config) (*Client, error) {
	u, err := url.Parse(conf.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid postgrest url %q", conf.URL)
	}
	if conf.APIKey == "" {
		return nil, fmt.Errorf("postgrest api key is required")
	}

	httpClient := conf.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	token := conf.AccessToken
	if token == "" {
		token = conf.APIKey
	}

	return &Client{
		base:        strings.TrimRight(conf.URL, "/") + "/rest/v1/",
		apiKey:      conf.APIKey,
		accessToken: token,
		http:        httpClient,
	}, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// FindDocInfo finds the document of the given ID.
func (c *Client) FindDocInfo(ctx context.Context, id string) (*database.DocInfo, error) {
	var infos []*database.DocInfo
	query := url.Values{"id": {"eq." + id}, "select": {"*"}}
	if err := c.do(ctx, http.MethodGet, tblDocuments, query, nil, "", &infos); err != nil {
		return nil, fmt.Errorf("find document %s: %w", id, err)
	}
	if len(infos) == 0 {
		return nil, fmt.Errorf("find document %s: %w", id, database.ErrDocumentNotFound)
	}
	return normalizeDoc(infos[0]), nil
}

// FindDocInfosByOwner returns the documents owned by the given user.
func (c *Client) FindDocInfosByOwner(ctx context.Context, ownerID string) ([]*database.DocInfo, error) {
	return c.findDocInfos(ctx, url.Values{
		"owner_id": {"eq." + ownerID},
	})
}

// FindDocInfosSharedWith returns the documents shared with the given email.
func (c *Client) FindDocInfosSharedWith(ctx context.Context, email string) ([]*database.DocInfo, error) {
	return c.findDocInfos(ctx, url.Values{
		"shared_with": {"cs.{" + quote(email) + "}"},
	})
}

func (c *Client) findDocInfos(ctx context.Context, query url.Values) ([]*database.DocInfo, error) {
	query.Set("select", "*")
	query.Set("order", "updated_at.desc")

	var infos []*database.DocInfo
	if err := c.do(ctx, http.MethodGet, tblDocuments, query, nil, "", &infos); err != nil {
		return nil, fmt.Errorf("find documents: %w", err)
	}
	for i := range infos {
		infos[i] = normalizeDoc(infos[i])
	}
	return infos, nil
}

// CreateDocInfo stores a new document.
func (c *Client) CreateDocInfo(ctx context.Context, info *database.DocInfo) (*database.DocInfo, error) {
	stored := info.DeepCopy()
	if stored.SharedWith == nil {
		stored.SharedWith = []string{}
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = stored.CreatedAt
	}

	var created []*database.DocInfo
	err := c.do(ctx, http.MethodPost, tblDocuments, nil, stored, "return=representation", &created)
	if errors.IsStatus(err, errors.ErrCodeAlreadyExists) {
		return nil, fmt.Errorf("create document %s: %w", info.ID, database.ErrDocumentAlreadyExists)
	}
	if err != nil {
		return nil, fmt.Errorf("create document %s: %w", info.ID, err)
	}
	if len(created) == 0 {
		return stored, nil
	}
	return normalizeDoc(created[0]), nil
}

// UpdateDocTitle changes the title of the document.
func (c *Client) UpdateDocTitle(ctx context.Context, id, title string) error {
	return c.updateDocInfo(ctx, id, map[string]any{"title": title})
}

// UpdateDocContent changes the content of the document.
func (c *Client) UpdateDocContent(ctx context.Context, id, content string) error {
	return c.updateDocInfo(ctx, id, map[string]any{"content": content})
}

// UpdateDocSharedWith replaces the sharing list of the document.
func (c *Client) UpdateDocSharedWith(ctx context.Context, id string, sharedWith []string) error {
	list := slices.Clone(sharedWith)
	if list == nil {
		list = []string{}
	}
	return c.updateDocInfo(ctx, id, map[string]any{"shared_with": list})
}

func (c *Client) updateDocInfo(ctx context.Context, id string, fields map[string]any) error {
	fields["updated_at"] = time.Now().UTC()

	var updated []*database.DocInfo
	query := url.Values{"id": {"eq." + id}, "select": {"id"}}
	if err := c.do(ctx, http.MethodPatch, tblDocuments, query, fields, "return=representation", &updated); err != nil {
		return fmt.Errorf("update document %s: %w", id, err)
	}
	if len(updated) == 0 {
		return fmt.Errorf("update document %s: %w", id, database.ErrDocumentNotFound)
	}
	return nil
}

// FindUserInfosByIDs returns the users of the given IDs.
func (c *Client) FindUserInfosByIDs(ctx context.Context, ids []string) ([]*database.UserInfo, error) {
	return c.findUserInfos(ctx, "id", ids)
}

// FindUserInfosByEmails returns the users of the given emails.
func (c *Client) FindUserInfosByEmails(ctx context.Context, emails []string) ([]*database.UserInfo, error) {
	return c.findUserInfos(ctx, "email", emails)
}

func (c *Client) findUserInfos(ctx context.Context, column string, values []string) ([]*database.UserInfo, error) {
	if len(values) == 0 {
		return nil, nil
	}

	quoted := make([]string, 0, len(values))
	for _, v := range values {
		quoted = append(quoted, quote(v))
	}

	var infos []*database.UserInfo
	query := url.Values{
		column:   {"in.(" + strings.Join(quoted, ",") + ")"},
		"select": {"*"},
	}
	if err := c.do(ctx, http.MethodGet, tblUsers, query, nil, "", &infos); err != nil {
		return nil, fmt.Errorf("find users by %s: %w", column, err)
	}
	return infos, nil
}

// FindUserInfoByEmail finds the user of the given email.
func (c *Client) FindUserInfoByEmail(ctx context.Context, email string) (*database.UserInfo, error) {
	var infos []*database.UserInfo
	query := url.Values{"email": {"eq." + email}, "select": {"*"}, "limit": {"1"}}
	if err := c.do(ctx, http.MethodGet, tblUsers, query, nil, "", &infos); err != nil {
		return nil, fmt.Errorf("find user %s: %w", email, err)
	}
	if len(infos) == 0 {
		return nil, fmt.Errorf("find user %s: %w", email, database.ErrUserNotFound)
	}
	return infos[0], nil
}

// EnsureUserInfo registers the user or refreshes its email and name.
func (c *Client) EnsureUserInfo(ctx context.Context, info *database.UserInfo) (*database.UserInfo, error) {
	row := map[string]any{
		"id":    info.ID,
		"email": info.Email,
		"name":  info.Name,
	}

	var stored []*database.UserInfo
	query := url.Values{"on_conflict": {"id"}}
	prefer := "resolution=merge-duplicates,return=representation"
	if err := c.do(ctx, http.MethodPost, tblUsers, query, row, prefer, &stored); err != nil {
		return nil, fmt.Errorf("ensure user %s: %w", info.ID, err)
	}
	if len(stored) == 0 {
		return info.DeepCopy(), nil
	}
	return stored[0], nil
}

func (c *Client) do(
	ctx context.Context,
	method, table string,
	query url.Values,
	body any,
	prefer string,
	out any,
) error {
	endpoint := c.base + table
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s row: %w", table, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, table, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", table, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return statusError(resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", table, err)
	}
	return nil
}

func statusError(status int, body []byte) error {
	var payload struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &payload)

	msg := fmt.Sprintf("status %d %s: %s", status, payload.Code, payload.Message)
	switch {
	case status == http.StatusConflict || payload.Code == "23505":
		return fmt.Errorf("%s: %w", msg, errors.AlreadyExists("row already exists"))
	case status == http.StatusUnauthorized:
		return fmt.Errorf("%s: %w", msg, errors.Unauthenticated("unauthenticated"))
	case status == http.StatusForbidden:
		return fmt.Errorf("%s: %w", msg, errors.PermissionDenied("permission denied"))
	default:
		return fmt.Errorf("%s: %w", msg, ErrRequestFailed)
	}
}

// quote wraps a value in double quotes for PostgREST list and array filters.
func quote(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `"`, `\"`)
	return `"` + v + `"`
}

func normalizeDoc(info *database.DocInfo) *database.DocInfo {
	if info.SharedWith == nil {
		info.SharedWith = []string{}
	}
	return info
}
