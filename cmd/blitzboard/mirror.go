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

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/blitzboard/blitzboard/server/logging"
)

// fileMirror keeps a local file and a document's content in sync. Content
// written by the mirror is remembered so the watch event it causes is not
// reported back as a local edit.
type fileMirror struct {
	path    string
	watcher *fsnotify.Watcher
	logger  logging.Logger

	mu   sync.Mutex
	last string
}

func newFileMirror(path string, logger logging.Logger) (*fileMirror, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	// Editors often replace files instead of writing them, so the directory
	// is watched rather than the file.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	return &fileMirror{
		path:    abs,
		watcher: watcher,
		logger:  logger,
	}, nil
}

// Write writes content to the file unless it already holds it.
func (m *fileMirror) Write(content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if content == m.last {
		return nil
	}
	if err := os.WriteFile(m.path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", m.path, err)
	}
	m.last = content
	return nil
}

// Watch calls onEdit with the content of the file whenever it is changed by
// something other than the mirror, until ctx is done.
func (m *fileMirror) Watch(ctx context.Context, onEdit func(content string)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-m.watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != m.path || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}
			if content, changed := m.read(); changed {
				onEdit(content)
			}
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return nil
			}
			m.logger.Warnf("watch %s: %v", m.path, err)
		}
	}
}

func (m *fileMirror) read() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.path)
	if err != nil {
		m.logger.Debugf("read %s: %v", m.path, err)
		return "", false
	}

	content := string(data)
	if content == m.last {
		return "", false
	}
	m.last = content
	return content, true
}

// Close stops watching.
func (m *fileMirror) Close() error {
	return m.watcher.Close()
}
