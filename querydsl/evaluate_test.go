/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package querydsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kronuz/xapiand-core/schema"
)

func fields(values map[string][]interface{}) func(string) []interface{} {
	return func(path string) []interface{} { return values[path] }
}

func TestEvaluateTermEquality(t *testing.T) {
	s := schema.New()
	c, err := Compile(s, map[string]interface{}{"city": "boston"})
	require.NoError(t, err)

	assert.True(t, Evaluate(c.Query, fields(map[string][]interface{}{"city": {"boston"}})))
	assert.False(t, Evaluate(c.Query, fields(map[string][]interface{}{"city": {"nyc"}})))
}

func TestEvaluateRange(t *testing.T) {
	s := schema.New()
	c, err := Compile(s, map[string]interface{}{"age": "18..65"})
	require.NoError(t, err)

	assert.True(t, Evaluate(c.Query, fields(map[string][]interface{}{"age": {float64(30)}})))
	assert.False(t, Evaluate(c.Query, fields(map[string][]interface{}{"age": {float64(70)}})))
}

func TestEvaluateAndOr(t *testing.T) {
	s := schema.New()
	c, err := Compile(s, map[string]interface{}{
		"_and": []interface{}{
			map[string]interface{}{"city": "boston"},
			map[string]interface{}{"active": "true"},
		},
	})
	require.NoError(t, err)

	docs := fields(map[string][]interface{}{"city": {"boston"}, "active": {"true"}})
	assert.True(t, Evaluate(c.Query, docs))

	docs2 := fields(map[string][]interface{}{"city": {"boston"}, "active": {"false"}})
	assert.False(t, Evaluate(c.Query, docs2))
}

func TestEvaluateMatchAllAndNothing(t *testing.T) {
	assert.True(t, Evaluate(MatchAll(), fields(nil)))
	assert.False(t, Evaluate(MatchNothing(), fields(nil)))
}

func TestEvaluateIn(t *testing.T) {
	s := schema.New()
	c, err := Compile(s, map[string]interface{}{
		"_in": map[string]interface{}{"color": []interface{}{"red", "green"}},
	})
	require.NoError(t, err)

	assert.True(t, Evaluate(c.Query, fields(map[string][]interface{}{"color": {"green"}})))
	assert.False(t, Evaluate(c.Query, fields(map[string][]interface{}{"color": {"blue"}})))
}
