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

package pubsub_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blitzboard/blitzboard/server/backend/pubsub"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()

	t.Run("publish subscribe test", func(t *testing.T) {
		broker := pubsub.NewMemory()
		subA, err := broker.Subscribe(ctx, "d1")
		require.NoError(t, err)
		defer subA.Close()
		subB, err := broker.Subscribe(ctx, "d1")
		require.NoError(t, err)
		defer subB.Close()
		other, err := broker.Subscribe(ctx, "d2")
		require.NoError(t, err)
		defer other.Close()

		frame := []byte(`{"type":"edit","userID":"u1","content":"hi"}`)
		require.NoError(t, broker.Publish(ctx, "d1", frame))

		assert.Equal(t, frame, <-subA.Events())
		assert.Equal(t, frame, <-subB.Events())
		select {
		case <-other.Events():
			t.Fatal("frame leaked to another document")
		case <-time.After(20 * time.Millisecond):
		}
	})

	t.Run("close unregisters test", func(t *testing.T) {
		broker := pubsub.NewMemory()
		sub, err := broker.Subscribe(ctx, "d1")
		require.NoError(t, err)
		assert.Equal(t, 1, broker.Len("d1"))

		sub.Close()
		sub.Close()
		assert.Equal(t, 0, broker.Len("d1"))

		_, ok := <-sub.Events()
		assert.False(t, ok)
		assert.NoError(t, broker.Publish(ctx, "d1", []byte("x")))
	})

	t.Run("order is kept per subscription test", func(t *testing.T) {
		broker := pubsub.NewMemory()
		sub, err := broker.Subscribe(ctx, "d1")
		require.NoError(t, err)
		defer sub.Close()

		var wg sync.WaitGroup
		wg.Add(1)
		var got []string
		go func() {
			defer wg.Done()
			for range 3 {
				got = append(got, string(<-sub.Events()))
			}
		}()

		for _, frame := range []string{"a", "b", "c"} {
			require.NoError(t, broker.Publish(ctx, "d1", []byte(frame)))
		}
		wg.Wait()
		assert.Equal(t, []string{"a", "b", "c"}, got)
	})

	t.Run("channel name test", func(t *testing.T) {
		assert.Equal(t, "doc:abc", pubsub.Channel("abc"))
	})
}
