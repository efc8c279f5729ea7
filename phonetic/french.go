/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package phonetic

// French implements Soundex 2 for French, grounded on
// original_source/src/phonetic/french_soundex.h.
type French struct{}

func (French) Name() string        { return "SoundexFrench" }
func (French) Description() string { return "Soundex for French Language" }

var frenchAccents = [][2]string{
	{"Á", "A"}, {"À", "A"}, {"Ä", "A"}, {"Â", "A"}, {"Ã", "A"},
	{"É", "E"}, {"È", "E"}, {"Ë", "E"}, {"Ê", "E"}, {"Œ", "E"},
	{"Í", "I"}, {"Ì", "I"}, {"Ï", "I"}, {"Î", "I"},
	{"Ó", "O"}, {"Ò", "O"}, {"Ö", "O"}, {"Ô", "O"}, {"Õ", "O"},
	{"Ú", "U"}, {"Ù", "U"}, {"Ü", "U"}, {"Û", "U"},
	{"á", "A"}, {"à", "A"}, {"ä", "A"}, {"â", "A"}, {"ã", "A"},
	{"é", "E"}, {"è", "E"}, {"ë", "E"}, {"ê", "E"}, {"œ", "E"},
	{"í", "I"}, {"ì", "I"}, {"ï", "I"}, {"î", "I"},
	{"ó", "O"}, {"ò", "O"}, {"ö", "O"}, {"ô", "O"}, {"õ", "O"},
	{"ú", "U"}, {"ù", "U"}, {"ü", "U"}, {"û", "U"},
	{"Ñ", "N"}, {"Ç", "S"}, {"ñ", "N"}, {"ç", "S"},
}

var frenchComposed = [][2]string{
	{"GUI", "KI"}, {"GUE", "KE"}, {"GA", "KA"},
	{"GO", "KO"}, {"GU", "K"}, {"CA", "KA"},
	{"CO", "KO"}, {"CU", "KU"}, {"Q", "K"},
	{"CC", "K"}, {"CK", "K"},
}

var frenchPrefixes = [][2]string{
	{"KN", "NN"}, {"PF", "FF"}, {"PH", "FF"},
	{"ASA", "AZA"}, {"SCH", "SSS"}, {"MAC", "MCC"},
}

func (French) Encode(str string) string {
	if str == "" {
		return ""
	}

	s := replacePairs(str, frenchAccents)
	s = upperASCII(s)
	s = keepAlpha(s)
	if s == "" {
		return ""
	}

	s = replacePairs(s, frenchComposed)

	// Replace vowels except the first.
	b := []byte(s)
	for i := 1; i < len(b); i++ {
		switch b[i] {
		case 'E', 'I', 'O', 'U':
			b[i] = 'A'
		}
	}
	s = string(b)

	s = replacePrefix(s, frenchPrefixes)

	// Complementary substitutions: same list minus the last entry,
	// searched (not just prefix-matched) from position 1 onward.
	for _, p := range frenchPrefixes[:len(frenchPrefixes)-1] {
		s = replaceFrom(s, 1, p[0], p[1])
	}

	// Drop 'H' unless preceded by 'C' or 'S'; drop 'Y' unless preceded by 'A'.
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case 'H':
			if len(out) > 0 && (out[len(out)-1] == 'C' || out[len(out)-1] == 'S') {
				out = append(out, c)
			}
		case 'Y':
			if len(out) > 0 && out[len(out)-1] == 'A' {
				out = append(out, c)
			}
		default:
			out = append(out, c)
		}
	}
	s = string(out)
	if s == "" {
		return ""
	}

	// Drop a trailing A/T/D/S.
	if len(s) > 1 {
		switch s[len(s)-1] {
		case 'A', 'T', 'D', 'S':
			s = s[:len(s)-1]
		}
	}
	if s == "" {
		return ""
	}

	// Collapse repeated adjacent letters.
	collapsed := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if i > 0 && s[i] == s[i-1] {
			continue
		}
		collapsed = append(collapsed, s[i])
	}
	return string(collapsed)
}
