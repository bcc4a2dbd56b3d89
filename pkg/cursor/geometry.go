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

package cursor

import "unicode/utf16"

const (
	// LineHeight is the height of one line of the editor in pixels.
	LineHeight = 24

	// CharWidth is the width of one character in pixels. Text is assumed to
	// be fixed-width; proportional fonts will drift.
	CharWidth = 8
)

// Location is a line and column in the content, both zero-based. Columns
// count UTF-16 code units.
type Location struct {
	Line   int
	Column int
}

// Placement is the approximate pixel offset of a cursor from the top-left
// corner of the editor.
type Placement struct {
	Top  int
	Left int
}

// Placement returns the pixel offset of the location.
func (l Location) Placement() Placement {
	return Placement{
		Top:  l.Line * LineHeight,
		Left: l.Column * CharWidth,
	}
}

// Len returns the length of content in UTF-16 code units, the unit cursor
// positions are expressed in.
func Len(content string) int {
	n := 0
	for _, r := range content {
		n += utf16.RuneLen(r)
	}
	return n
}

// Locate maps a position into the content to a line and column. The line is
// the number of newlines before the position and the column the distance from
// the last of them. It returns false for positions outside [0, Len(content)],
// which happens when a cursor event is older than the latest edit.
func Locate(content string, position int) (Location, bool) {
	if position < 0 {
		return Location{}, false
	}

	units := utf16.Encode([]rune(content))
	if position > len(units) {
		return Location{}, false
	}

	line := 0
	lineStart := 0
	for i := 0; i < position; i++ {
		if units[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}

	return Location{Line: line, Column: position - lineStart}, true
}
