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

package types

import (
	goerrors "errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/blitzboard/blitzboard/pkg/errors"
)

var (
	defaultValidator = initValidator()

	// ErrInvalidFields is wrapped by every InvalidFieldsError.
	ErrInvalidFields = errors.InvalidArgument("invalid fields").WithCode("ErrInvalidFields")
)

// FieldViolation is a field that failed validation.
type FieldViolation struct {
	Field       string
	Description string
}

// InvalidFieldsError is returned by ValidateStruct.
type InvalidFieldsError struct {
	Violations []*FieldViolation
}

// Error returns the violations joined by "; ".
func (e *InvalidFieldsError) Error() string {
	descriptions := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		descriptions = append(descriptions, v.Description)
	}
	return strings.Join(descriptions, "; ")
}

// Unwrap returns ErrInvalidFields.
func (e *InvalidFieldsError) Unwrap() error {
	return ErrInvalidFields
}

// initValidator creates a validator that names fields after their yaml tag.
func initValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

// registerValidation is shortcut of defaultValidator.RegisterValidation.
func registerValidation(tag string, fn validator.Func) {
	if err := defaultValidator.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// ValidateStruct validates s against its `validate` tags.
func ValidateStruct(s any) error {
	err := defaultValidator.Struct(s)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !goerrors.As(err, &errs) {
		return err
	}

	invalid := &InvalidFieldsError{}
	for _, fe := range errs {
		invalid.Violations = append(invalid.Violations, &FieldViolation{
			Field:       fe.Field(),
			Description: describe(fe),
		})
	}
	return invalid
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "required_if":
		return fmt.Sprintf("%s is required when %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], given %q", fe.Field(), fe.Param(), fe.Value())
	case "ws_url":
		return fmt.Sprintf("%s must be a ws:// or wss:// URL, given %q", fe.Field(), fe.Value())
	default:
		return fmt.Sprintf("%s failed on %q, given %v", fe.Field(), fe.Tag(), fe.Value())
	}
}

func init() {
	registerValidation("ws_url", func(level validator.FieldLevel) bool {
		u, err := url.Parse(level.Field().String())
		if err != nil || u.Host == "" {
			return false
		}
		return u.Scheme == "ws" || u.Scheme == "wss"
	})
}
