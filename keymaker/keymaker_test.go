/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package keymaker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDoc map[uint32][]string

func (d fakeDoc) Values(slot uint32) []string { return d[slot] }

func TestSerialiseKeyPicksEnds(t *testing.T) {
	doc := fakeDoc{1: {"apple", "banana", "cherry"}}
	k := NewSerialiseKey(1, false)
	assert.Equal(t, "apple", k.FindSmallest(doc))
	assert.Equal(t, "cherry", k.FindBiggest(doc))
}

func TestSerialiseKeyEmptySlot(t *testing.T) {
	doc := fakeDoc{}
	k := NewSerialiseKey(1, false)
	assert.Equal(t, maxCmpValue, k.FindSmallest(doc))
	assert.Equal(t, minCmpValue, k.FindBiggest(doc))
}

func TestIntegerKeyNearestByDistance(t *testing.T) {
	doc := fakeDoc{1: {"1", "5", "20"}}
	k := NewIntegerKey(1, false, 6)
	// nearest to 6 among {1,5,20} is 5, distance 1.
	got := k.FindSmallest(doc)
	assert.Equal(t, "00000000000000000001", got)
}

func TestBoolKeyDistance(t *testing.T) {
	doc := fakeDoc{1: {"t"}}
	k := NewBoolKey(1, false, true)
	assert.Equal(t, "0", k.FindSmallest(doc))

	k2 := NewBoolKey(1, false, false)
	assert.Equal(t, "1", k2.FindSmallest(doc))
}

func TestGeoKeyDistanceToIdenticalPointIsZero(t *testing.T) {
	decode := func(s string) (Centroid, bool) {
		switch s {
		case "north":
			return Centroid{0, 0, 1}, true
		default:
			return Centroid{}, false
		}
	}
	doc := fakeDoc{1: {"north"}}
	k := NewGeoKey(1, false, []Centroid{{0, 0, 1}}, decode)
	got := k.FindSmallest(doc)
	assert.Contains(t, got, "0.000000000000")
}

func TestStringKeyLevenshteinMinimumDistance(t *testing.T) {
	doc := fakeDoc{1: {"robert", "robbert", "completely different"}}
	metric := NewLevenshtein("robert", false)
	k := NewStringKey(1, false, metric)
	got := k.FindSmallest(doc)
	assert.Contains(t, got, "0.000000000000", "exact match distance must be zero")
}

func TestSoundexMetricGroupsPhoneticallySimilarNames(t *testing.T) {
	metric := NewSoundex(SoundexFor("english"), "Robert", false)
	dRobert := metric.Distance("Robert")
	dRupert := metric.Distance("Rupert")
	dBanana := metric.Distance("Banana")
	assert.Less(t, dRobert, dBanana)
	assert.LessOrEqual(t, dRupert, dBanana)
}

func TestMultiKeyMakerEncodesForwardAndReverse(t *testing.T) {
	doc := fakeDoc{1: {"alpha"}, 2: {"2", "9"}}
	mk := New()
	mk.Add(NewSerialiseKey(1, false))
	mk.Add(NewIntegerKey(2, true, 0))

	key := mk.Key(doc)
	require.NotEmpty(t, key)
	// Reverse (last, in this case only sub-key reversed) sub-key ends
	// with the reverse terminator.
	assert.Equal(t, byte(0xFF), key[len(key)-1])
	assert.Equal(t, byte(0xFF), key[len(key)-2])
}

func TestEncodeSubKeyEscapesZeroBytes(t *testing.T) {
	out := encodeSubKey("a\x00b", false, true)
	assert.Equal(t, []byte{'a', 0x00, 0x00, 'b'}, out)

	rev := encodeSubKey("a\x00b", true, false)
	assert.Equal(t, byte(0xFF), rev[len(rev)-1])
	assert.Equal(t, byte(0xFF), rev[len(rev)-2])
}
