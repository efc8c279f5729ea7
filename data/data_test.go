/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package data

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataMultipartRoundTrip(t *testing.T) {
	d := New()
	d.SetObject([]byte(`{"a":1}`), false)
	d.SetStored(ParseContentType("image/png"), 3, 1024, make([]byte, 200), false)

	serialised := d.Serialise()
	require.NotEmpty(t, serialised)

	back := Feed(serialised)
	obj, ok, err := back.GetObject()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"a":1}`, string(obj))

	loc, ok := back.Get(ParseContentType("image/png"))
	require.True(t, ok)
	assert.Equal(t, int64(3), loc.Volume)
	assert.Equal(t, int64(1024), loc.Offset)
	assert.Equal(t, 200, loc.Size)
}

func TestLocatorCompressionFallback(t *testing.T) {
	small := Locator{Type: CompressedInplace}
	small.SetData([]byte("short"))
	assert.Equal(t, Inplace, small.Type, "payload below threshold must not compress")

	incompressible := make([]byte, 256)
	for i := range incompressible {
		incompressible[i] = byte(i * 97)
	}
	l := Locator{Type: CompressedInplace}
	l.SetData(incompressible)
	got, err := l.Data()
	require.NoError(t, err)
	assert.Equal(t, incompressible, got)

	compressible := []byte(strings.Repeat("a", 512))
	l2 := Locator{Type: CompressedInplace}
	l2.SetData(compressible)
	assert.Equal(t, CompressedInplace, l2.Type)
	assert.Less(t, len(l2.Raw), len(compressible))
	got2, err := l2.Data()
	require.NoError(t, err)
	assert.Equal(t, compressible, got2)
}

func TestFlushReplacesByContentType(t *testing.T) {
	d := New()
	d.SetObject([]byte("v1"), false)
	d.SetStored(ParseContentType("image/png"), 0, 0, []byte("png-bytes"), false)

	replacement := Locator{ContentType: ParseContentType("image/png"), Type: Stored}
	replacement.SetData([]byte("new-png-bytes"))
	d.Flush([]Locator{replacement})

	loc, ok := d.Get(ParseContentType("image/png"))
	require.True(t, ok)
	assert.Equal(t, "new-png-bytes", string(loc.Raw))

	obj, ok, err := d.GetObject()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v1", string(obj))
}

func TestGetAcceptedWildcardAndExactHint(t *testing.T) {
	d := New()
	d.SetObject([]byte(`{}`), false)
	d.SetStored(ParseContentType("image/png"), 0, 0, []byte("png"), false)

	accepts := []Accept{
		{ContentType: ContentType{First: "*", Second: "*"}, Priority: 0.1},
		{ContentType: ParseContentType("image/png"), Priority: 0.9},
	}
	loc, accept, ok := d.GetAccepted(accepts, ContentType{})
	require.True(t, ok)
	assert.Equal(t, ParseContentType("image/png"), loc.ContentType)
	assert.Equal(t, 0.9, accept.Priority)

	loc2, _, ok2 := d.GetAccepted(accepts, ParseContentType("application/json"))
	require.True(t, ok2)
	assert.Equal(t, ContentType{}, loc2.ContentType)
}

func TestFeedRejectsCorruptRecord(t *testing.T) {
	d := Feed([]byte{0xff, 0x01, 0x02})
	assert.Empty(t, d.Locators)

	empty := New().Serialise()
	assert.Empty(t, empty)
}
