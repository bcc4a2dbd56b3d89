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

package logging

import (
	"context"
)

type ctxKey int

const loggerKey ctxKey = iota

// With returns a context carrying the logger. The relay hands the logger of
// a peer down to the hub this way.
func With(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// From returns the logger carried by ctx, or the default logger.
func From(ctx context.Context) Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerKey).(Logger); ok {
			return logger
		}
	}
	return DefaultLogger()
}
