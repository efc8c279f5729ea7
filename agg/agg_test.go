/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package agg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDoc map[string][]interface{}

func (d fakeDoc) Field(path string) []interface{} { return d[path] }

func TestCountMetric(t *testing.T) {
	root, err := New("", map[string]interface{}{
		"total": map[string]interface{}{AggCount: map[string]interface{}{"_field": "age"}},
	})
	require.NoError(t, err)
	root.Observe(fakeDoc{"age": {float64(1)}})
	root.Observe(fakeDoc{"age": {float64(2)}})
	root.Update()

	res := root.Result().(map[string]interface{})
	child := res["total"].(map[string]interface{})
	assert.Equal(t, int64(2), child["value"])
}

func TestAvgAndStats(t *testing.T) {
	root, err := New("", map[string]interface{}{
		"a": map[string]interface{}{AggAvg: map[string]interface{}{"_field": "v"}},
		"s": map[string]interface{}{AggStats: map[string]interface{}{"_field": "v"}},
	})
	require.NoError(t, err)
	for _, v := range []float64{1, 2, 3, 4} {
		root.Observe(fakeDoc{"v": {v}})
	}
	root.Update()
	res := root.Result().(map[string]interface{})
	assert.Equal(t, 2.5, res["a"].(map[string]interface{})["value"])
	stats := res["s"].(map[string]interface{})
	assert.Equal(t, int64(4), stats["count"])
	assert.Equal(t, 1.0, stats["min"])
	assert.Equal(t, 4.0, stats["max"])
}

func TestMedianOddAndEven(t *testing.T) {
	root, err := New("", map[string]interface{}{
		"m": map[string]interface{}{AggMedian: map[string]interface{}{"_field": "v"}},
	})
	require.NoError(t, err)
	for _, v := range []float64{5, 1, 3} {
		root.Observe(fakeDoc{"v": {v}})
	}
	root.Update()
	res := root.Result().(map[string]interface{})
	assert.Equal(t, 3.0, res["m"].(map[string]interface{})["value"])

	even, err := New("", map[string]interface{}{
		"m": map[string]interface{}{AggMedian: map[string]interface{}{"_field": "v"}},
	})
	require.NoError(t, err)
	for _, v := range []float64{7, 1, 5, 3} {
		even.Observe(fakeDoc{"v": {v}})
	}
	even.Update()
	res = even.Result().(map[string]interface{})
	assert.Equal(t, 4.0, res["m"].(map[string]interface{})["value"])
}

func TestTermsBucketAggregation(t *testing.T) {
	root, err := New("", map[string]interface{}{
		"colors": map[string]interface{}{AggTerms: map[string]interface{}{"_field": "color"}},
	})
	require.NoError(t, err)
	root.Observe(fakeDoc{"color": {"red"}})
	root.Observe(fakeDoc{"color": {"red"}})
	root.Observe(fakeDoc{"color": {"blue"}})
	root.Update()

	res := root.Result().(map[string]interface{})
	buckets := res["colors"].(map[string]interface{})["buckets"].([]map[string]interface{})
	require.Len(t, buckets, 2)

	totalDocCount := int64(0)
	for _, b := range buckets {
		totalDocCount += b["_doc_count"].(int64)
	}
	assert.Equal(t, int64(3), totalDocCount)
}

func TestHistogramBucketsByInterval(t *testing.T) {
	root, err := New("", map[string]interface{}{
		"hist": map[string]interface{}{AggHistogram: map[string]interface{}{"_field": "v", "_interval": float64(10)}},
	})
	require.NoError(t, err)
	for _, v := range []float64{1, 5, 11, 15, 25} {
		root.Observe(fakeDoc{"v": {v}})
	}
	root.Update()
	res := root.Result().(map[string]interface{})
	buckets := res["hist"].(map[string]interface{})["buckets"].([]map[string]interface{})
	assert.Len(t, buckets, 3)
}

func TestRangeAggregationOpenEnded(t *testing.T) {
	from := 10.0
	root, err := New("", map[string]interface{}{
		"r": map[string]interface{}{AggRange: map[string]interface{}{
			"_field": "v",
			"_ranges": []interface{}{
				map[string]interface{}{"_to": from, "_key": "low"},
				map[string]interface{}{"_from": from, "_key": "high"},
			},
		}},
	})
	require.NoError(t, err)
	root.Observe(fakeDoc{"v": {5.0}})
	root.Observe(fakeDoc{"v": {15.0}})
	root.Update()
	res := root.Result().(map[string]interface{})
	buckets := res["r"].(map[string]interface{})["buckets"].([]map[string]interface{})
	require.Len(t, buckets, 2)
}

func TestMatchSpyCountsTotal(t *testing.T) {
	spy, err := NewMatchSpy(map[string]interface{}{
		"c": map[string]interface{}{AggCount: map[string]interface{}{"_field": "age"}},
	})
	require.NoError(t, err)
	spy.Apply(fakeDoc{"age": {float64(1)}})
	spy.Apply(fakeDoc{"age": {float64(2)}})
	spy.Done()
	res := spy.Result()
	assert.Equal(t, int64(2), res["_total"])
}

func TestBuildRejectsUnknownKind(t *testing.T) {
	_, err := New("", map[string]interface{}{
		"bad": map[string]interface{}{"_not_a_kind": map[string]interface{}{}},
	})
	require.Error(t, err)
}

func TestFilterAggGatesObservationByQuery(t *testing.T) {
	root, err := New("", map[string]interface{}{
		"boston_only": map[string]interface{}{
			AggFilter: map[string]interface{}{
				"city": "boston",
				keyAggs: map[string]interface{}{
					"total": map[string]interface{}{AggCount: map[string]interface{}{"_field": "age"}},
				},
			},
		},
	})
	require.NoError(t, err)

	root.Observe(fakeDoc{"city": {"boston"}, "age": {float64(30)}})
	root.Observe(fakeDoc{"city": {"nyc"}, "age": {float64(40)}})
	root.Observe(fakeDoc{"city": {"boston"}, "age": {float64(50)}})
	root.Update()

	res := root.Result().(map[string]interface{})
	filtered := res["boston_only"].(map[string]interface{})
	assert.Equal(t, int64(2), filtered["_doc_count"], "only the two boston documents must be observed")

	total := filtered["total"].(map[string]interface{})
	assert.Equal(t, int64(2), total["value"], "the nested count must only see documents that passed the filter")
}

func TestMatchSpySerialiseRoundTrip(t *testing.T) {
	aggObj := map[string]interface{}{
		"c": map[string]interface{}{AggCount: map[string]interface{}{"_field": "age"}},
	}
	spy, err := NewMatchSpy(aggObj)
	require.NoError(t, err)

	wire, err := spy.Serialise()
	require.NoError(t, err)

	rebuilt, err := UnserialiseMatchSpy(wire)
	require.NoError(t, err)

	rebuilt.Apply(fakeDoc{"age": {float64(7)}})
	rebuilt.Done()
	res := rebuilt.Result()
	assert.Equal(t, int64(1), res["_total"])
}
