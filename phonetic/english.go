/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package phonetic

// English implements the refined Soundex for English described at
// http://ntz-develop.blogspot.mx/2011/03/phonetic-algorithms.html,
// grounded on original_source/src/phonetic/english_soundex.h.
type English struct{}

func (English) Name() string        { return "SoundexEnglish" }
func (English) Description() string { return "Soundex for English Language" }

func (English) Encode(str string) string {
	s := trimLeadingNonAlpha(str)
	if s == "" {
		return ""
	}

	out := []byte{toUpper(s[0])}
	lastCode := byte(0)
	haveCode := false
	for i := 0; i < len(s); i++ {
		code, ok := englishDigit(s[i])
		if !ok {
			continue
		}
		if haveCode && code == lastCode {
			continue
		}
		out = append(out, code)
		lastCode = code
		haveCode = true
	}
	return string(out)
}

func englishDigit(c byte) (byte, bool) {
	switch c {
	case 'b', 'p', 'B', 'P':
		return '1', true
	case 'f', 'v', 'F', 'V':
		return '2', true
	case 'c', 'k', 's', 'C', 'K', 'S':
		return '3', true
	case 'g', 'j', 'G', 'J':
		return '4', true
	case 'q', 'x', 'z', 'Q', 'X', 'Z':
		return '5', true
	case 'd', 't', 'D', 'T':
		return '6', true
	case 'l', 'L':
		return '7', true
	case 'm', 'n', 'M', 'N':
		return '8', true
	case 'r', 'R':
		return '9', true
	case 'a', 'e', 'h', 'i', 'o', 'u', 'w', 'y', 'A', 'E', 'H', 'I', 'O', 'U', 'W', 'Y':
		return '0', true
	default:
		return 0, false
	}
}
