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

// Package limit provides event timing control components.
package limit

import (
	"sync"
	"time"
)

// Debouncer delays a callback until a quiet period has passed since the last
// call. Only the callback of the last call in a burst runs.
type Debouncer struct {
	wait time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending func()
	seq     uint64
	stopped bool

	// inflight counts callbacks fired by the timer that have not returned.
	inflight int
	idle     *sync.Cond
}

// NewDebouncer creates a Debouncer with the given quiet period.
func NewDebouncer(wait time.Duration) *Debouncer {
	d := &Debouncer{wait: wait}
	d.idle = sync.NewCond(&d.mu)
	return d
}

// Call schedules the callback to run once the quiet period has passed,
// replacing any callback scheduled before. Calls after Stop are ignored.
func (d *Debouncer) Call(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	if d.timer != nil {
		d.timer.Stop()
	}

	d.seq++
	seq := d.seq
	d.pending = callback
	d.timer = time.AfterFunc(d.wait, func() {
		fn := d.take(seq)
		if fn == nil {
			return
		}
		defer d.release()
		fn()
	})
}

// take returns the pending callback if it still belongs to the given call and
// marks it in flight.
func (d *Debouncer) take(seq uint64) func() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if seq != d.seq || d.pending == nil {
		return nil
	}
	fn := d.pending
	d.pending = nil
	d.timer = nil
	d.inflight++
	return fn
}

func (d *Debouncer) release() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.inflight--
	if d.inflight == 0 {
		d.idle.Broadcast()
	}
}

// waitIdle blocks until no timer callback is running.
func (d *Debouncer) waitIdle() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for d.inflight > 0 {
		d.idle.Wait()
	}
}

// Pending returns whether a callback is waiting for its quiet period.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

// Cancel drops the pending callback without running it. It returns whether
// there was one.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cancelLocked() != nil
}

func (d *Debouncer) cancelLocked() func() {
	fn := d.pending
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = nil
	d.pending = nil
	d.seq++
	return fn
}

// Flush runs the pending callback immediately on the calling goroutine and
// waits for callbacks already started by the timer. It returns whether a
// pending callback was run.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	fn := d.cancelLocked()
	d.mu.Unlock()

	if fn != nil {
		fn()
	}
	d.waitIdle()
	return fn != nil
}

// Stop cancels the pending callback and ignores further calls. It waits for
// a callback that is already running.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	d.cancelLocked()
	d.mu.Unlock()

	d.waitIdle()
}
