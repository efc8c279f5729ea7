/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package uuid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAndString(t *testing.T) {
	s := "00000000-0000-1000-8000-010000000000"
	u, err := Parse(s)
	require.NoError(t, err)
	assert.Equal(t, s, u.String())
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("00000000-0000-1000-8000-010000000000"))
	assert.False(t, IsValid("not-a-uuid"))
	assert.False(t, IsValid("00000000-0000-1000-8000-01000000000")) // too short
}

func TestSerialiseRoundTrip(t *testing.T) {
	cases := []string{
		"00000000-0000-1000-8000-010000000000",
		"550e8400-e29b-41d4-a716-446655440000", // v4, full-form path
		"6ba7b810-9dad-11d1-80b4-00c04fd430c8", // v1, condensed path
	}
	for _, s := range cases {
		u, err := Parse(s)
		require.NoError(t, err)

		enc := u.Serialise()
		assert.GreaterOrEqual(t, len(enc), 4)
		assert.LessOrEqual(t, len(enc), 17)

		got, rest, err := Unserialise(enc)
		require.NoError(t, err)
		assert.Empty(t, rest)
		assert.Equal(t, u, got, "round-trip mismatch for %s", s)
	}
}

func TestSerialiseInitialUUIDLength(t *testing.T) {
	u, err := Parse("00000000-0000-1000-8000-010000000000")
	require.NoError(t, err)
	enc := u.Serialise()
	assert.GreaterOrEqual(t, len(enc), 4)
	assert.LessOrEqual(t, len(enc), 16)
}

func TestCompactCrushPreservesIdentity(t *testing.T) {
	u, err := Parse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	require.NoError(t, err)
	crushed := u.CompactCrush()

	assert.Equal(t, u.variant(), crushed.variant())
	assert.Equal(t, u.version(), crushed.version())

	// after crushing, re-serialising must pick the compact shape and the
	// node must reconstruct deterministically from (time, clock, salt).
	enc := crushed.Serialise()
	back, _, err := Unserialise(enc)
	require.NoError(t, err)
	assert.Equal(t, crushed, back)
}

func TestIsSerialised(t *testing.T) {
	u, err := Parse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	require.NoError(t, err)
	enc := u.Serialise()
	assert.True(t, IsSerialised(enc))

	both := append(append([]byte{}, enc...), enc...)
	assert.True(t, IsSerialised(both))

	assert.False(t, IsSerialised([]byte{0xff}))
}
