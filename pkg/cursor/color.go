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

// Color is one of the eight colors a participant's cursor can take.
type Color struct {
	Name string
	Hex  string
}

// Palette is the fixed, ordered set of cursor colors. Mixed-version peers
// index into this exact order, so it must not change.
var Palette = [8]Color{
	{Name: "red", Hex: "#F87171"},
	{Name: "amber", Hex: "#FBBF24"},
	{Name: "green", Hex: "#34D399"},
	{Name: "blue", Hex: "#60A5FA"},
	{Name: "purple", Hex: "#A78BFA"},
	{Name: "pink", Hex: "#F472B6"},
	{Name: "yellow", Hex: "#FACC15"},
	{Name: "teal", Hex: "#2DD4BF"},
}

// ColorOf returns the color assigned to the given user. It depends only on
// the user ID.
func ColorOf(userID string) Color {
	h := hashOf(userID)
	if h < 0 {
		h = -h
	}
	return Palette[h%int64(len(Palette))]
}

// hashOf computes hash = code + ((hash << 5) - hash) over the UTF-16 code
// units of s, the way browser peers compute it: the shift wraps at 32 bits
// while the accumulator itself does not.
func hashOf(s string) int64 {
	var hash int64
	for _, code := range utf16.Encode([]rune(s)) {
		shifted := int64(int32(uint32(int32(hash)) << 5))
		hash = int64(code) + (shifted - hash)
	}
	return hash
}
