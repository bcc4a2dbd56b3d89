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
	"errors"

	"go.uber.org/zap/zapcore"

	errs "github.com/blitzboard/blitzboard/pkg/errors"
)

// LevelOf determines the log level for the given error. Caller-side errors
// such as a missing document are expected and logged quietly; backend errors
// and errors without a status are logged as errors.
func LevelOf(err error) zapcore.Level {
	if err == nil || errors.Is(err, context.Canceled) {
		return zapcore.DebugLevel
	}

	switch errs.StatusOf(err) {
	case errs.ErrCodeInvalidArgument, errs.ErrCodeNotFound, errs.ErrCodeAlreadyExists:
		return zapcore.InfoLevel
	case errs.ErrCodeUnauthenticated, errs.ErrCodePermissionDenied, errs.ErrCodeFailedPrecondition:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

// LogError logs the given error with a level derived from its status.
func LogError(logger Logger, msg string, err error) {
	if err == nil {
		return
	}

	code := errs.CodeOf(err)
	switch LevelOf(err) {
	case zapcore.DebugLevel:
		logger.Debugw(msg, "error", err, "code", code)
	case zapcore.InfoLevel:
		logger.Infow(msg, "error", err, "code", code)
	case zapcore.WarnLevel:
		logger.Warnw(msg, "error", err, "code", code)
	default:
		logger.Errorw(msg, "error", err, "code", code)
	}
}
