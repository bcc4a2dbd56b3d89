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

package postgrest_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blitzboard/blitzboard/pkg/errors"
	"github.com/blitzboard/blitzboard/server/backend/database"
	"github.com/blitzboard/blitzboard/server/backend/database/postgrest"
	"github.com/blitzboard/blitzboard/server/backend/database/testcases"
)

const apiKey = "anon-key"

// fakeREST serves the subset of PostgREST the client uses.
type fakeREST struct {
	mu    sync.Mutex
	docs  map[string]*database.DocInfo
	users map[string]*database.UserInfo
}

func newFakeREST() *fakeREST {
	return &fakeREST{
		docs:  make(map[string]*database.DocInfo),
		users: make(map[string]*database.UserInfo),
	}
}

func (f *fakeREST) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("apikey") != apiKey || !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"no api key"}`))
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	query := r.URL.Query()
	switch strings.TrimPrefix(r.URL.Path, "/rest/v1/") {
	case "documents":
		f.serveDocuments(w, r, query)
	case "users":
		f.serveUsers(w, r, query)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeREST) serveDocuments(w http.ResponseWriter, r *http.Request, query map[string][]string) {
	switch r.Method {
	case http.MethodGet:
		var result []*database.DocInfo
		for _, doc := range f.docs {
			if v := first(query, "id"); v != "" && "eq."+doc.ID != v {
				continue
			}
			if v := first(query, "owner_id"); v != "" && "eq."+doc.OwnerID != v {
				continue
			}
			if v := first(query, "shared_with"); v != "" {
				email := strings.Trim(strings.TrimPrefix(v, "cs."), `{}"`)
				if !slices.Contains(doc.SharedWith, email) {
					continue
				}
			}
			result = append(result, doc)
		}
		sort.Slice(result, func(i, j int) bool {
			return result[i].UpdatedAt.After(result[j].UpdatedAt)
		})
		writeJSON(w, http.StatusOK, result)
	case http.MethodPost:
		doc := &database.DocInfo{}
		if err := json.NewDecoder(r.Body).Decode(doc); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if _, ok := f.docs[doc.ID]; ok {
			writeJSON(w, http.StatusConflict, map[string]string{"code": "23505", "message": "duplicate key"})
			return
		}
		f.docs[doc.ID] = doc
		writeJSON(w, http.StatusCreated, []*database.DocInfo{doc})
	case http.MethodPatch:
		id := strings.TrimPrefix(first(query, "id"), "eq.")
		doc, ok := f.docs[id]
		if !ok {
			writeJSON(w, http.StatusOK, []any{})
			return
		}
		var fields struct {
			Title      *string   `json:"title"`
			Content    *string   `json:"content"`
			SharedWith []string  `json:"shared_with"`
			UpdatedAt  time.Time `json:"updated_at"`
		}
		if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if fields.Title != nil {
			doc.Title = *fields.Title
		}
		if fields.Content != nil {
			doc.Content = *fields.Content
		}
		if fields.SharedWith != nil {
			doc.SharedWith = fields.SharedWith
		}
		doc.UpdatedAt = fields.UpdatedAt
		writeJSON(w, http.StatusOK, []map[string]string{{"id": id}})
	}
}

func (f *fakeREST) serveUsers(w http.ResponseWriter, r *http.Request, query map[string][]string) {
	switch r.Method {
	case http.MethodGet:
		var result []*database.UserInfo
		for _, user := range f.users {
			if v := first(query, "id"); v != "" && !matches(v, user.ID) {
				continue
			}
			if v := first(query, "email"); v != "" && !matches(v, user.Email) {
				continue
			}
			result = append(result, user)
		}
		writeJSON(w, http.StatusOK, result)
	case http.MethodPost:
		user := &database.UserInfo{}
		if err := json.NewDecoder(r.Body).Decode(user); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if existing, ok := f.users[user.ID]; ok {
			user.CreatedAt = existing.CreatedAt
		} else {
			user.CreatedAt = time.Now()
		}
		f.users[user.ID] = user
		writeJSON(w, http.StatusCreated, []*database.UserInfo{user})
	}
}

func first(query map[string][]string, key string) string {
	if v := query[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

// matches evaluates eq. and in. filters.
func matches(filter, value string) bool {
	if strings.HasPrefix(filter, "eq.") {
		return strings.TrimPrefix(filter, "eq.") == value
	}
	list := strings.TrimSuffix(strings.TrimPrefix(filter, "in.("), ")")
	for _, item := range strings.Split(list, ",") {
		if strings.Trim(item, `"`) == value {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient(t *testing.T) {
	srv := httptest.NewServer(newFakeREST())
	defer srv.Close()

	cli, err := postgrest.New(postgrest.Config{URL: srv.URL, APIKey: apiKey})
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, cli.Close())
	}()

	t.Run("RunDocInfo test", func(t *testing.T) {
		testcases.RunDocInfoTest(t, cli)
	})

	t.Run("RunFindDocInfos test", func(t *testing.T) {
		testcases.RunFindDocInfosTest(t, cli)
	})

	t.Run("RunUserInfo test", func(t *testing.T) {
		testcases.RunUserInfoTest(t, cli)
	})

	t.Run("rejected credentials test", func(t *testing.T) {
		bad, err := postgrest.New(postgrest.Config{URL: srv.URL, APIKey: "wrong"})
		require.NoError(t, err)

		_, err = bad.FindDocInfo(context.Background(), "d1")
		assert.True(t, errors.IsStatus(err, errors.ErrCodeUnauthenticated))
	})
}

func TestNew(t *testing.T) {
	_, err := postgrest.New(postgrest.Config{URL: "not a url", APIKey: apiKey})
	assert.Error(t, err)

	_, err = postgrest.New(postgrest.Config{URL: "https://example.supabase.co"})
	assert.Error(t, err)

	_, err = postgrest.New(postgrest.Config{URL: "https://example.supabase.co", APIKey: apiKey})
	assert.NoError(t, err)
}
