/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */

// Package keymaker implements MultiValueKeyMaker and its per-type
// sub-keys (spec.md §4.8), grounded on
// original_source/src/multivalue/keymaker.h.
package keymaker

import (
	"math"
	"strings"
	"unicode"

	"github.com/Kronuz/xapiand-core/phonetic"
)

// StringMetric scores how far a document value is from a fixed
// reference value; StringKey picks the minimum such distance across a
// slot's multi-values.
type StringMetric interface {
	Name() string
	Distance(value string) float64
}

type caseFold struct {
	ref   string
	icase bool
}

func (c caseFold) fold(s string) string {
	if c.icase {
		return strings.ToLower(s)
	}
	return s
}

// Levenshtein edit-distance metric.
type Levenshtein struct {
	caseFold
}

func NewLevenshtein(value string, icase bool) Levenshtein {
	return Levenshtein{caseFold{ref: value, icase: icase}}
}

func (l Levenshtein) Name() string { return "Levenshtein" }
func (l Levenshtein) Distance(value string) float64 {
	return float64(levenshteinDistance(l.fold(l.ref), l.fold(value)))
}

func levenshteinDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min3(cur[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

// Jaro similarity-derived distance (1 - similarity).
type Jaro struct {
	caseFold
}

func NewJaro(value string, icase bool) Jaro { return Jaro{caseFold{ref: value, icase: icase}} }
func (j Jaro) Name() string                 { return "Jaro" }
func (j Jaro) Distance(value string) float64 {
	return 1 - jaroSimilarity(j.fold(j.ref), j.fold(value))
}

func jaroSimilarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 && len(rb) == 0 {
		return 1
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	matchDist := int(math.Max(float64(len(ra)), float64(len(rb)))/2) - 1
	if matchDist < 0 {
		matchDist = 0
	}
	aMatched := make([]bool, len(ra))
	bMatched := make([]bool, len(rb))
	matches := 0
	for i := range ra {
		lo := i - matchDist
		if lo < 0 {
			lo = 0
		}
		hi := i + matchDist + 1
		if hi > len(rb) {
			hi = len(rb)
		}
		for j := lo; j < hi; j++ {
			if bMatched[j] || ra[i] != rb[j] {
				continue
			}
			aMatched[i] = true
			bMatched[j] = true
			matches++
			break
		}
	}
	if matches == 0 {
		return 0
	}
	var transpositions int
	k := 0
	for i := range ra {
		if !aMatched[i] {
			continue
		}
		for !bMatched[k] {
			k++
		}
		if ra[i] != rb[k] {
			transpositions++
		}
		k++
	}
	m := float64(matches)
	return (m/float64(len(ra)) + m/float64(len(rb)) + (m-float64(transpositions)/2)/m) / 3
}

// JaroWinkler boosts Jaro similarity for shared prefixes.
type JaroWinkler struct {
	caseFold
}

func NewJaroWinkler(value string, icase bool) JaroWinkler {
	return JaroWinkler{caseFold{ref: value, icase: icase}}
}
func (j JaroWinkler) Name() string { return "Jaro_Winkler" }
func (j JaroWinkler) Distance(value string) float64 {
	a, b := j.fold(j.ref), j.fold(value)
	sim := jaroSimilarity(a, b)
	prefix := commonPrefixLen(a, b, 4)
	sim += float64(prefix) * 0.1 * (1 - sim)
	return 1 - sim
}

func commonPrefixLen(a, b string, max int) int {
	ra, rb := []rune(a), []rune(b)
	n := 0
	for n < len(ra) && n < len(rb) && n < max && ra[n] == rb[n] {
		n++
	}
	return n
}

// SorensenDice bigram-overlap distance.
type SorensenDice struct {
	caseFold
}

func NewSorensenDice(value string, icase bool) SorensenDice {
	return SorensenDice{caseFold{ref: value, icase: icase}}
}
func (s SorensenDice) Name() string { return "Sorensen_Dice" }
func (s SorensenDice) Distance(value string) float64 {
	return 1 - diceCoefficient(s.fold(s.ref), s.fold(value))
}

func bigrams(s string) map[string]int {
	r := []rune(s)
	m := map[string]int{}
	for i := 0; i+1 < len(r); i++ {
		m[string(r[i:i+2])]++
	}
	return m
}

func diceCoefficient(a, b string) float64 {
	ba, bb := bigrams(a), bigrams(b)
	if len(ba) == 0 && len(bb) == 0 {
		return 1
	}
	intersection := 0
	for k, ca := range ba {
		if cb, ok := bb[k]; ok {
			intersection += minInt(ca, cb)
		}
	}
	total := 0
	for _, c := range ba {
		total += c
	}
	for _, c := range bb {
		total += c
	}
	if total == 0 {
		return 0
	}
	return 2 * float64(intersection) / float64(total)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Jaccard character-set distance.
type Jaccard struct {
	caseFold
}

func NewJaccard(value string, icase bool) Jaccard { return Jaccard{caseFold{ref: value, icase: icase}} }
func (j Jaccard) Name() string                    { return "Jaccard" }
func (j Jaccard) Distance(value string) float64 {
	return 1 - jaccardSimilarity(j.fold(j.ref), j.fold(value))
}

func jaccardSimilarity(a, b string) float64 {
	sa, sb := runeSet(a), runeSet(b)
	if len(sa) == 0 && len(sb) == 0 {
		return 1
	}
	inter, union := 0, 0
	seen := map[rune]bool{}
	for r := range sa {
		seen[r] = true
	}
	for r := range sb {
		seen[r] = true
	}
	for r := range seen {
		_, inA := sa[r]
		_, inB := sb[r]
		if inA && inB {
			inter++
		}
		if inA || inB {
			union++
		}
	}
	if union == 0 {
		return 1
	}
	return float64(inter) / float64(union)
}

func runeSet(s string) map[rune]struct{} {
	m := map[rune]struct{}{}
	for _, r := range s {
		m[r] = struct{}{}
	}
	return m
}

// LCSubstr is a distance derived from the longest common substring.
type LCSubstr struct {
	caseFold
}

func NewLCSubstr(value string, icase bool) LCSubstr { return LCSubstr{caseFold{ref: value, icase: icase}} }
func (l LCSubstr) Name() string                     { return "LCSubstr" }
func (l LCSubstr) Distance(value string) float64 {
	a, b := l.fold(l.ref), l.fold(value)
	lcs := longestCommonSubstring(a, b)
	maxLen := math.Max(float64(len([]rune(a))), float64(len([]rune(b))))
	if maxLen == 0 {
		return 0
	}
	return 1 - float64(lcs)/maxLen
}

func longestCommonSubstring(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	best := 0
	for i := 1; i <= len(ra); i++ {
		cur := make([]int, len(rb)+1)
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > best {
					best = cur[j]
				}
			}
		}
		prev = cur
	}
	return best
}

// LCSubsequence is a distance derived from the longest common subsequence.
type LCSubsequence struct {
	caseFold
}

func NewLCSubsequence(value string, icase bool) LCSubsequence {
	return LCSubsequence{caseFold{ref: value, icase: icase}}
}
func (l LCSubsequence) Name() string { return "LCSubsequence" }
func (l LCSubsequence) Distance(value string) float64 {
	a, b := l.fold(l.ref), l.fold(value)
	lcs := longestCommonSubsequence(a, b)
	maxLen := math.Max(float64(len([]rune(a))), float64(len([]rune(b))))
	if maxLen == 0 {
		return 0
	}
	return 1 - float64(lcs)/maxLen
}

func longestCommonSubsequence(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		cur := make([]int, len(rb)+1)
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				cur[j] = prev[j-1] + 1
			} else if prev[j] >= cur[j-1] {
				cur[j] = prev[j]
			} else {
				cur[j] = cur[j-1]
			}
		}
		prev = cur
	}
	return prev[len(rb)]
}

// Soundex composes a phonetic.Encoder with an LCSubsequence distance
// over the encoded forms, matching SoundexMetric<Lang, LCSubsequence>
// in the original.
type Soundex struct {
	encoder phonetic.Encoder
	refCode string
	icase   bool
}

func NewSoundex(encoder phonetic.Encoder, value string, icase bool) Soundex {
	return Soundex{encoder: encoder, refCode: encoder.Encode(normaliseWord(value)), icase: icase}
}

func (s Soundex) Name() string { return s.encoder.Name() }
func (s Soundex) Distance(value string) float64 {
	code := s.encoder.Encode(normaliseWord(value))
	lcs := longestCommonSubsequence(s.refCode, code)
	maxLen := math.Max(float64(len(s.refCode)), float64(len(code)))
	if maxLen == 0 {
		return 0
	}
	return 1 - float64(lcs)/maxLen
}

func normaliseWord(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// SoundexFor resolves a language name/code to its phonetic.Encoder,
// defaulting to English for anything unrecognised (matching the
// original's phf switch default case).
func SoundexFor(language string) phonetic.Encoder {
	switch strings.ToLower(language) {
	case "french", "fr":
		return phonetic.French{}
	case "german", "de":
		return phonetic.German{}
	case "spanish", "es":
		return phonetic.Spanish{}
	default:
		return phonetic.English{}
	}
}
