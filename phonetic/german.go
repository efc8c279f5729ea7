/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package phonetic

// German implements Kölner Phonetik, grounded on
// original_source/src/phonetic/german_soundex.h.
type German struct{}

func (German) Name() string        { return "SoundexGerman" }
func (German) Description() string { return "Soundex for German Language" }

var germanAccents = [][2]string{
	{"Ä", "A"}, {"ä", "A"}, {"Ö", "O"}, {"ö", "O"},
	{"Ü", "U"}, {"ü", "U"}, {"ß", "S"},
}

var germanComposed = [][2]string{
	{"PH", "3"}, {"CA", "4"}, {"CH", "4"}, {"CK", "4"},
	{"CO", "4"}, {"CQ", "4"}, {"CU", "4"}, {"CX", "4"},
	{"DC", "8"}, {"DS", "8"}, {"DZ", "8"}, {"TC", "8"},
	{"TS", "8"}, {"TZ", "8"}, {"KX", "8"}, {"QX", "8"},
	{"SC", "8"}, {"ZC", "8"},
}

func (German) Encode(str string) string {
	if str == "" {
		return ""
	}

	s := replacePairs(str, germanAccents)
	s = upperASCII(s)
	s = trimLeadingNonAlpha(s)
	if s == "" {
		return ""
	}

	if len(s) > 1 && s[0] == 'C' {
		switch s[1] {
		case 'A', 'H', 'K', 'L', 'O', 'Q', 'R', 'U', 'X':
			s = "4" + s[2:]
		}
	}

	s = replacePairs(s, germanComposed)

	out := make([]byte, 0, len(s)+1)
	lastCode := byte(0)
	haveCode := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case 'A', 'E', 'I', 'J', 'O', 'U', 'Y':
			if !haveCode || lastCode != '0' {
				out = append(out, '0')
				lastCode, haveCode = '0', true
			}
		case 'B', 'P':
			if !haveCode || lastCode != '1' {
				out = append(out, '1')
				lastCode, haveCode = '1', true
			}
		case 'D', 'T':
			if !haveCode || lastCode != '2' {
				out = append(out, '2')
				lastCode, haveCode = '2', true
			}
		case 'F', 'V', 'W':
			if !haveCode || lastCode != '3' {
				out = append(out, '3')
				lastCode, haveCode = '3', true
			}
		case 'G', 'K', 'Q':
			if !haveCode || lastCode != '4' {
				out = append(out, '4')
				lastCode, haveCode = '4', true
			}
		case 'L':
			if !haveCode || lastCode != '5' {
				out = append(out, '5')
				lastCode, haveCode = '5', true
			}
		case 'M', 'N':
			if !haveCode || lastCode != '6' {
				out = append(out, '6')
				lastCode, haveCode = '6', true
			}
		case 'R':
			if !haveCode || lastCode != '7' {
				out = append(out, '7')
				lastCode, haveCode = '7', true
			}
		case 'C', 'S', 'Z':
			if !haveCode || lastCode != '8' {
				out = append(out, '8')
				lastCode, haveCode = '8', true
			}
		case 'X':
			if haveCode && lastCode == '4' {
				out = append(out, '8')
				lastCode = '8'
			} else {
				out = append(out, '4', '8')
				lastCode, haveCode = '8', true
			}
		case '3', '4', '8':
			out = append(out, c)
			lastCode, haveCode = c, true
		default:
			// dropped
		}
	}
	return string(out)
}
