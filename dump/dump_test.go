/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package dump

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetaRoundTrip(t *testing.T) {
	buf := WriteMeta("127.0.0.1:8890", []MetaEntry{
		{Key: "version", Value: []byte("1")},
		{Key: "db_version", Value: []byte("2")},
	})
	endpoints, entries, err := ReadMeta(buf)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8890", endpoints)
	require.Len(t, entries, 2)
	assert.Equal(t, "version", entries[0].Key)
	assert.Equal(t, []byte("2"), entries[1].Value)
}

func TestDocsRoundTrip(t *testing.T) {
	buf := WriteDocs("127.0.0.1:8890", []DocEntry{
		{Blob: []byte(`{"name":"robert"}`), ContentType: "application/json", TypeByte: 1},
		{Blob: []byte(`{"name":"anna"}`), ContentType: "application/json", TypeByte: 1},
	})
	endpoints, entries, err := ReadDocs(buf)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8890", endpoints)
	require.Len(t, entries, 2)
	assert.Equal(t, byte(1), entries[0].TypeByte)
	assert.Equal(t, "application/json", entries[1].ContentType)
}

func TestSchemaRoundTrip(t *testing.T) {
	payload := []byte(`{"_schema":{"name":{"_type":"keyword"}}}`)
	buf := WriteSchema("127.0.0.1:8890", payload)
	endpoints, got, err := ReadSchema(buf)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8890", endpoints)
	assert.Equal(t, payload, got)
}

func TestChecksumMismatchIsRejected(t *testing.T) {
	buf := WriteMeta("ep", nil)
	buf[0] ^= 0xFF // corrupt the magic's length prefix
	_, _, err := ReadMeta(buf)
	assert.Error(t, err)
}

func TestTruncatedBufferIsRejected(t *testing.T) {
	_, _, err := ReadMeta([]byte{1, 2})
	assert.Error(t, err)
}

func TestEmptyEntriesRoundTrip(t *testing.T) {
	buf := WriteMeta("ep", nil)
	endpoints, entries, err := ReadMeta(buf)
	require.NoError(t, err)
	assert.Equal(t, "ep", endpoints)
	assert.Empty(t, entries)
}
