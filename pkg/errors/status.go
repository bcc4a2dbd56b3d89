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

package errors

import "fmt"

// StatusCode classifies a StatusError. Values share the gRPC numbering.
type StatusCode int

// Codes in use. The relay and the stores only ever produce these.
const (
	ErrCodeInvalidArgument    StatusCode = 3
	ErrCodeNotFound           StatusCode = 5
	ErrCodeAlreadyExists      StatusCode = 6
	ErrCodePermissionDenied   StatusCode = 7
	ErrCodeFailedPrecondition StatusCode = 9
	ErrCodeUnavailable        StatusCode = 14
	ErrCodeUnauthenticated    StatusCode = 16
)

var codeNames = map[StatusCode]string{
	ErrCodeInvalidArgument:    "invalid_argument",
	ErrCodeNotFound:           "not_found",
	ErrCodeAlreadyExists:      "already_exists",
	ErrCodePermissionDenied:   "permission_denied",
	ErrCodeFailedPrecondition: "failed_precondition",
	ErrCodeUnavailable:        "unavailable",
	ErrCodeUnauthenticated:    "unauthenticated",
}

func (c StatusCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("code_%d", int(c))
}
