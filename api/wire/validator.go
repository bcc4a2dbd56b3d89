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

package wire

import (
	"bytes"
	_ "embed"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const frameSchemaURL = "https://blitzboard.dev/schemas/frame.schema.json"

//go:embed frame.schema.json
var frameSchema []byte

// Validator checks raw frames against the frame JSON schema before they are
// relayed to other participants.
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles the embedded frame schema.
func NewValidator() (*Validator, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(frameSchema))
	if err != nil {
		return nil, fmt.Errorf("unmarshal frame schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(frameSchemaURL, doc); err != nil {
		return nil, fmt.Errorf("add frame schema: %w", err)
	}

	schema, err := compiler.Compile(frameSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile frame schema: %w", err)
	}

	return &Validator{schema: schema}, nil
}

// Validate returns ErrMalformedMessage when the frame is not valid JSON or
// does not match any variant of the schema.
func (v *Validator) Validate(frame []byte) error {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(frame))
	if err != nil {
		return fmt.Errorf("parse frame: %s: %w", err.Error(), ErrMalformedMessage)
	}

	if err := v.schema.Validate(inst); err != nil {
		return fmt.Errorf("validate frame: %s: %w", err.Error(), ErrMalformedMessage)
	}

	return nil
}
