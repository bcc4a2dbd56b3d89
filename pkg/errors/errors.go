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

// Package errors provides status-coded errors shared by the client, the relay
// and the document store backends.
package errors

import (
	"errors"
)

// StatusError represents an error that carries an error status and a
// machine-readable code such as "ErrDocumentNotFound".
type StatusError interface {
	error
	Status() StatusCode
	Code() string
	WithCode(code string) StatusError
}

type errorWithStatus struct {
	err    error
	status StatusCode
	code   string
}

// Error returns the error message.
func (e errorWithStatus) Error() string {
	return e.err.Error()
}

// Status returns the error status.
func (e errorWithStatus) Status() StatusCode {
	return e.status
}

// Code returns the string representation of the error code.
func (e errorWithStatus) Code() string {
	return e.code
}

// Unwrap returns the underlying error.
func (e errorWithStatus) Unwrap() error {
	return e.err
}

// WithCode returns a new StatusError with the given code.
func (e errorWithStatus) WithCode(code string) StatusError {
	return errorWithStatus{
		err:    e.err,
		status: e.status,
		code:   code,
	}
}

func newErrorWithStatus(message string, status StatusCode) StatusError {
	return errorWithStatus{
		err:    errors.New(message),
		status: status,
	}
}

// NotFound creates a new "not found" error.
func NotFound(message string) StatusError {
	return newErrorWithStatus(message, ErrCodeNotFound)
}

// InvalidArgument creates a new "invalid argument" error. Malformed frames
// and bad configuration values use this status.
func InvalidArgument(message string) StatusError {
	return newErrorWithStatus(message, ErrCodeInvalidArgument)
}

// AlreadyExists creates a new "already exists" error.
func AlreadyExists(message string) StatusError {
	return newErrorWithStatus(message, ErrCodeAlreadyExists)
}

// PermissionDenied creates a new "permission denied" error.
func PermissionDenied(message string) StatusError {
	return newErrorWithStatus(message, ErrCodePermissionDenied)
}

// FailedPrecond creates a new "failed precondition" error. It is used when
// an operation needs a state the caller is not in, e.g. sending on a
// connection that is not open.
func FailedPrecond(message string) StatusError {
	return newErrorWithStatus(message, ErrCodeFailedPrecondition)
}

// Unauthenticated creates a new "unauthenticated" error.
func Unauthenticated(message string) StatusError {
	return newErrorWithStatus(message, ErrCodeUnauthenticated)
}

// Unavailable is for a store or broker that cannot be reached.
func Unavailable(message string) StatusError {
	return newErrorWithStatus(message, ErrCodeUnavailable)
}

// StatusOf extracts the status from the given error chain. It returns 0 when
// no StatusError is found.
func StatusOf(err error) StatusCode {
	if err == nil {
		return 0
	}

	var statusErr StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Status()
	}

	return 0
}

// CodeOf extracts the string code from the given error chain.
func CodeOf(err error) string {
	var statusErr StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code()
	}

	return ""
}

// IsStatus checks if the given error has the specified status.
func IsStatus(err error, code StatusCode) bool {
	return StatusOf(err) == code
}
