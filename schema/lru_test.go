/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package schema

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	docs map[string]*Schema
}

func (f *fakeFetcher) GetForeignSchema(path, id string) (*Schema, error) {
	s, ok := f.docs[path+"/"+id]
	if !ok {
		return nil, fmt.Errorf("no such foreign schema: %s/%s", path, id)
	}
	return s, nil
}

func (f *fakeFetcher) SaveForeignSchema(path, id string, s *Schema) error {
	f.docs[path+"/"+id] = s
	return nil
}

func TestLRUCompareAndSwap(t *testing.T) {
	l := NewLRU()
	assert.Nil(t, l.Load("idx"))

	s1 := New()
	assert.True(t, l.CompareAndSwap("idx", nil, s1))
	assert.Equal(t, s1, l.Load("idx"))

	s2 := New()
	s2.Strict = true
	assert.False(t, l.CompareAndSwap("idx", nil, s2), "stale expected value must be rejected")
	assert.True(t, l.CompareAndSwap("idx", s1, s2))
	assert.Equal(t, s2, l.Load("idx"))
}

func TestLRUDrop(t *testing.T) {
	l := NewLRU()
	s1 := New()
	require.True(t, l.CompareAndSwap("idx", nil, s1))
	assert.False(t, l.Drop("idx", New()))
	assert.True(t, l.Drop("idx", s1))
	assert.Nil(t, l.Load("idx"))
}

func TestGetResolvesLocalSchemaWhenNotForeign(t *testing.T) {
	l := NewLRU()
	s1 := New()
	s1.Strict = true
	require.True(t, l.CompareAndSwap("myindex", nil, s1))

	res := l.Get("myindex", nil, false, nil, 3)
	assert.Same(t, s1, res.Snapshot)
	assert.Empty(t, res.ForeignRef)
}

func TestGetResolvesForeignSchemaChain(t *testing.T) {
	target := New()
	target.Strict = true
	fetch := &fakeFetcher{docs: map[string]*Schema{
		".xapiand/shared/doc1": target,
	}}

	l := NewLRU()
	local := &Schema{Fields: map[string]*FieldSpec{}, Foreign: ".xapiand/shared/doc1"}
	require.True(t, l.CompareAndSwap("myindex", nil, local))

	res := l.Get("myindex", nil, false, fetch, 3)
	assert.Same(t, target, res.Snapshot)
	assert.Equal(t, ".xapiand/shared/doc1", res.ForeignRef)
}

func TestGetDetectsCycleBetweenForeignSchemas(t *testing.T) {
	a := &Schema{Fields: map[string]*FieldSpec{}, Foreign: ".xapiand/shared/b"}
	b := &Schema{Fields: map[string]*FieldSpec{}, Foreign: ".xapiand/shared/a"}
	fetch := &fakeFetcher{docs: map[string]*Schema{
		".xapiand/shared/a": a,
		".xapiand/shared/b": b,
	}}

	l := NewLRU()
	local := &Schema{Fields: map[string]*FieldSpec{}, Foreign: ".xapiand/shared/a"}
	require.True(t, l.CompareAndSwap("myindex", nil, local))

	res := l.Get("myindex", nil, false, fetch, 8)
	// On a cycle the fetch fails and the local (unresolved) snapshot is
	// returned, matching the "any load failure is absorbed" contract.
	assert.Same(t, local, res.Snapshot)
}

func TestGetSynthesisesDefaultForeignRefWhenRequired(t *testing.T) {
	l := NewLRU()
	fetch := &fakeFetcher{docs: map[string]*Schema{}}
	res := l.Get("some/path", nil, true, fetch, 3)
	assert.Equal(t, ".xapiand/index/some%2Fpath", res.ForeignRef)
}

func TestSplitEndpoint(t *testing.T) {
	path, id, err := SplitEndpoint("myindex/doc1")
	require.NoError(t, err)
	assert.Equal(t, "myindex", path)
	assert.Equal(t, "doc1", id)

	_, _, err = SplitEndpoint("noslash")
	assert.Error(t, err)
}
