/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package patch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func obj() map[string]interface{} {
	return map[string]interface{}{
		"a": float64(1),
		"b": map[string]interface{}{
			"c": "hello",
		},
		"list": []interface{}{float64(1), float64(2), float64(3)},
	}
}

func TestPatchAddReplaceRemove(t *testing.T) {
	o := obj()
	out, err := Apply([]Operation{
		{Op: OpAdd, Path: "/b/d", Value: "new"},
		{Op: OpReplace, Path: "/a", Value: float64(42)},
		{Op: OpRemove, Path: "/b/c"},
	}, o)
	require.NoError(t, err)

	m := out.(map[string]interface{})
	assert.Equal(t, float64(42), m["a"])
	b := m["b"].(map[string]interface{})
	assert.Equal(t, "new", b["d"])
	_, stillThere := b["c"]
	assert.False(t, stillThere)
}

func TestPatchArrayAddAppendAndRemove(t *testing.T) {
	o := obj()
	out, err := Apply([]Operation{
		{Op: OpAdd, Path: "/list/-", Value: float64(4)},
		{Op: OpAdd, Path: "/list/0", Value: float64(0)},
		{Op: OpRemove, Path: "/list/1"},
	}, o)
	require.NoError(t, err)

	m := out.(map[string]interface{})
	list := m["list"].([]interface{})
	assert.Equal(t, []interface{}{float64(0), float64(2), float64(3), float64(4)}, list)
}

func TestPatchMoveAndCopy(t *testing.T) {
	o := obj()
	out, err := Apply([]Operation{
		{Op: OpCopy, Path: "/b/copy", From: "/b/c"},
		{Op: OpMove, Path: "/moved", From: "/b/c"},
	}, o)
	require.NoError(t, err)

	m := out.(map[string]interface{})
	b := m["b"].(map[string]interface{})
	assert.Equal(t, "hello", b["copy"])
	_, stillThere := b["c"]
	assert.False(t, stillThere)
	assert.Equal(t, "hello", m["moved"])
}

func TestPatchTest(t *testing.T) {
	o := obj()
	_, err := Apply([]Operation{
		{Op: OpTest, Path: "/a", Value: float64(1)},
	}, o)
	require.NoError(t, err)

	_, err = Apply([]Operation{
		{Op: OpTest, Path: "/a", Value: float64(2)},
	}, obj())
	require.Error(t, err)
}

func TestPatchIncrDecr(t *testing.T) {
	o := obj()
	out, err := Apply([]Operation{
		{Op: OpIncr, Path: "/a", Value: float64(5)},
	}, o)
	require.NoError(t, err)
	assert.Equal(t, float64(6), out.(map[string]interface{})["a"])

	out, err = Apply([]Operation{
		{Op: OpDecr, Path: "/a", Value: float64(2)},
	}, out)
	require.NoError(t, err)
	assert.Equal(t, float64(4), out.(map[string]interface{})["a"])
}

func TestPatchIncrLimitExceeded(t *testing.T) {
	o := obj()
	limit := 3.0
	_, err := Apply([]Operation{
		{Op: OpIncr, Path: "/a", Value: float64(5), Limit: &limit},
	}, o)
	require.Error(t, err)
	var limitErr *LimitError
	assert.ErrorAs(t, err, &limitErr)
}

func TestPatchUnknownOp(t *testing.T) {
	_, err := Apply([]Operation{{Op: "bogus", Path: "/a"}}, obj())
	require.Error(t, err)
}
