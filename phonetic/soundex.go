/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */

// Package phonetic implements the language-specific Soundex variants
// used by the keymaker's Soundex string metric (spec.md §4.8), grounded on
// original_source/src/phonetic/*.
// None of these codes are truncated to a fixed length, matching the
// "refined"/Kölner-style variants the original implements rather than
// the classic 4-character US Census Soundex.
package phonetic

import "strings"

// Encoder produces a phonetic code for a word in one language.
type Encoder interface {
	Encode(str string) string
	Name() string
	Description() string
}

// replacePairs sequentially replaces each pair's key with its value,
// left to right, continuing the search for the next occurrence from
// just past the inserted replacement text so replacements never
// rescan their own output. Mirrors the `replace()` helper template in
// original_source/src/phonetic/soundex.h.
func replacePairs(s string, pairs [][2]string) string {
	for _, p := range pairs {
		s = replaceFrom(s, 0, p[0], p[1])
	}
	return s
}

func replaceFrom(s string, start int, old, repl string) string {
	if old == "" || start > len(s) {
		return s
	}
	pos := start
	for {
		idx := strings.Index(s[pos:], old)
		if idx < 0 {
			break
		}
		idx += pos
		s = s[:idx] + repl + s[idx+len(old):]
		pos = idx + len(repl)
	}
	return s
}

// replacePrefix applies the first matching prefix substitution and
// stops, mirroring replace_prefix in soundex.h.
func replacePrefix(s string, pairs [][2]string) string {
	for _, p := range pairs {
		if strings.HasPrefix(s, p[0]) {
			return p[1] + s[len(p[0]):]
		}
	}
	return s
}

func isAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isUpper(b byte) bool { return b >= 'A' && b <= 'Z' }

func toUpper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

// trimLeadingNonAlpha drops bytes before the first ASCII letter.
func trimLeadingNonAlpha(s string) string {
	for i := 0; i < len(s); i++ {
		if isAlpha(s[i]) {
			return s[i:]
		}
	}
	return ""
}

// upperASCII upper-cases only the ASCII letters of s, leaving any
// remaining multi-byte sequences (accents not covered by a language's
// accent table) untouched.
func upperASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		b[i] = toUpper(c)
	}
	return string(b)
}

// keepAlpha drops every byte that is not an ASCII letter.
func keepAlpha(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if isAlpha(s[i]) {
			out = append(out, s[i])
		}
	}
	return string(out)
}
