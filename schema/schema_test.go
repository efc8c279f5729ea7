/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldSpecCloneIsIndependent(t *testing.T) {
	fs := &FieldSpec{Path: "a.b", Prefix: []byte("XY"), Accuracy: []int64{10, 100}}
	clone := fs.Clone()
	clone.Prefix[0] = 'Z'
	clone.Accuracy[0] = 999
	assert.Equal(t, byte('X'), fs.Prefix[0])
	assert.Equal(t, int64(10), fs.Accuracy[0])
}

func TestSchemaWithFieldIsCopyOnWrite(t *testing.T) {
	s := New()
	fs := &FieldSpec{Path: "name", Concrete: Text}
	s2 := s.WithField(fs)

	_, ok := s.Get("name")
	assert.False(t, ok, "original snapshot must not observe the mutation")

	got, ok := s2.Get("name")
	require.True(t, ok)
	assert.Equal(t, Text, got.Concrete)
}

func TestSchemaSerialiseRoundTrip(t *testing.T) {
	s := New()
	s = s.WithField(&FieldSpec{Path: "age", Concrete: Integer, Slot: 5, Accuracy: []int64{10, 100}})
	data, err := s.Serialise()
	require.NoError(t, err)

	back, err := Unserialise(data)
	require.NoError(t, err)
	fs, ok := back.Get("age")
	require.True(t, ok)
	assert.Equal(t, uint32(5), fs.Slot)
	assert.Equal(t, []int64{10, 100}, fs.Accuracy)
}

func TestDetectConcreteRules(t *testing.T) {
	det := DefaultDetection()
	assert.Equal(t, Boolean, DetectConcrete(det, true))
	assert.Equal(t, Positive, DetectConcrete(det, float64(42)))
	assert.Equal(t, Float, DetectConcrete(det, 4.5))
	assert.Equal(t, UUID, DetectConcrete(det, "550e8400-e29b-41d4-a716-446655440000"))
	assert.Equal(t, Date, DetectConcrete(det, "2020-01-02"))
	assert.Equal(t, Keyword, DetectConcrete(det, "Capitalized"))
	assert.Equal(t, Text, DetectConcrete(det, "free flowing text"))
}

func TestDetectConcreteStrictDisablesDetectors(t *testing.T) {
	det := Detection{} // every detector off
	assert.Equal(t, Text, DetectConcrete(det, "2020-01-02"), "date detector disabled falls through to text")
}

func TestSlotForIsDeterministicAndAvoidsCollisions(t *testing.T) {
	used := map[uint32]bool{}
	a := SlotFor("name", used)
	used[a] = true
	b := SlotFor("name", used)
	assert.NotEqual(t, a, b, "a second allocation for an already-used slot must probe forward")

	used2 := map[uint32]bool{}
	c := SlotFor("name", used2)
	assert.Equal(t, a, c, "hashing the same path with an empty used set is deterministic")
}

func TestPrefixForSharesAncestorPrefixes(t *testing.T) {
	used := map[string]bool{}
	existing := map[string]*FieldSpec{}
	p1 := PrefixFor("a.b", existing, used)
	existing["a.b"] = &FieldSpec{Path: "a.b", Prefix: p1}
	p2 := PrefixFor("a.b.c", existing, used)
	assert.True(t, len(p2) > len(p1), "descendant prefix extends the ancestor's")
	assert.Equal(t, p1, p2[:len(p1)])
}

func TestIndexAssignsFieldsAndProducesTerms(t *testing.T) {
	s := New()
	obj := map[string]interface{}{
		"name": "Robert",
		"age":  float64(30),
	}
	res, err := Index(s, obj, "doc1")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Terms)
	assert.NotEmpty(t, res.Values)

	nameField, ok := res.Schema.Get("name")
	require.True(t, ok)
	ageField, ok := res.Schema.Get("age")
	require.True(t, ok)
	assert.NotEqual(t, nameField.Slot, ageField.Slot)
}

func TestIndexStrictModeRejectsUndeclaredType(t *testing.T) {
	s := New()
	s.Strict = true
	_, err := Index(s, map[string]interface{}{"thing": "x"}, "doc1")
	require.Error(t, err)
	_, ok := err.(*MissingTypeError)
	assert.True(t, ok)
}
