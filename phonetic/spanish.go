/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package phonetic

// Spanish implements the Spanish Soundex variant described at
// https://wiki.postgresql.org/wiki/SoundexESP, grounded on
// original_source/src/phonetic/spanish_soundex.h.
type Spanish struct{}

func (Spanish) Name() string        { return "SoundexSpanish" }
func (Spanish) Description() string { return "Soundex for Spanish Language" }

var spanishAccents = [][2]string{
	{"Ñ", "N"}, {"Á", "A"}, {"É", "E"}, {"Í", "I"},
	{"Ó", "O"}, {"Ú", "U"}, {"À", "A"}, {"È", "E"},
	{"Ì", "I"}, {"Ò", "O"}, {"Ù", "U"}, {"Ü", "U"},
	{"ñ", "N"}, {"á", "A"}, {"é", "E"}, {"í", "I"},
	{"ó", "O"}, {"ú", "U"}, {"à", "A"}, {"è", "E"},
	{"ì", "I"}, {"ò", "O"}, {"ù", "U"}, {"ü", "U"},
}

var spanishComposed = [][2]string{
	{"CH", "V"}, {"QU", "K"}, {"LL", "J"}, {"CE", "S"},
	{"CI", "S"}, {"YA", "J"}, {"YE", "J"}, {"YI", "J"},
	{"YO", "J"}, {"YU", "J"}, {"GE", "J"}, {"GI", "J"},
	{"NY", "N"},
}

func (Spanish) Encode(str string) string {
	if str == "" {
		return ""
	}

	s := replacePairs(str, spanishAccents)
	s = upperASCII(s)

	// Drop leading non-alphabetic characters and leading 'H's.
	start := 0
	for start < len(s) && !(isAlpha(s[start]) && s[start] != 'H') {
		start++
	}
	s = s[start:]
	if s == "" {
		return ""
	}

	switch s[0] {
	case 'V':
		s = "B" + s[1:]
	case 'Z', 'X':
		s = "S" + s[1:]
	case 'G':
		if len(s) > 1 && (s[1] == 'E' || s[1] == 'I') {
			s = "J" + s[1:]
		}
	case 'C':
		// The original's condition on the following letter is always
		// true (a three-way OR of mutually exclusive inequalities),
		// so 'C' maps to 'K' here whenever a second character exists.
		if len(s) > 1 {
			s = "K" + s[1:]
		}
	}

	s = replacePairs(s, spanishComposed)
	if s == "" {
		return ""
	}

	header := s[0]
	out := []byte{header}
	lastCode := byte(0)
	haveCode := false
	for i := 0; i < len(s); i++ {
		code, ok := spanishDigit(s[i])
		if !ok {
			continue
		}
		if haveCode && code == lastCode {
			continue
		}
		out = append(out, code)
		lastCode, haveCode = code, true
	}
	return string(out)
}

func spanishDigit(c byte) (byte, bool) {
	switch c {
	case 'B', 'P', 'F', 'V':
		return '1', true
	case 'C', 'G', 'K', 'S', 'X', 'Z':
		return '2', true
	case 'D', 'T':
		return '3', true
	case 'L':
		return '4', true
	case 'M', 'N':
		return '5', true
	case 'R':
		return '6', true
	case 'Q', 'J':
		return '7', true
	case 'A', 'E', 'H', 'I', 'O', 'U', 'W', 'Y':
		return '0', true
	default:
		return 0, false
	}
}
