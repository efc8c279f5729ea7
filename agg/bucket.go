/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package agg

import (
	"fmt"
	"math"

	"github.com/Kronuz/xapiand-core/querydsl"
	"github.com/Kronuz/xapiand-core/schema"
)

// FilterAgg gates observation of its child aggregations by whether a
// document satisfies pred, mirroring the original's FilterAggregation.
type FilterAgg struct {
	name string
	pred func(Document) bool
	root *Root
	docs int64
}

func newFilterAgg(name string, params interface{}) (Aggregation, error) {
	m, ok := params.(map[string]interface{})
	if !ok {
		return nil, &AggregationError{Msg: "_filter requires an object"}
	}
	sub, _ := m[keyAggs].(map[string]interface{})
	root := &Root{name: name, children: map[string]Aggregation{}}
	if sub != nil {
		r, err := New(name, m)
		if err != nil {
			return nil, err
		}
		root = r
	}

	// Everything in m besides _aggs is the embedded query the filter
	// gates observation by; compiled against an empty schema since the
	// aggregation tree has no schema of its own to resolve field types
	// against (every leaf compiles as an untyped equality/range term,
	// matched against the same decoded values Document.Field returns).
	queryObj := make(map[string]interface{}, len(m))
	for k, v := range m {
		if k == keyAggs {
			continue
		}
		queryObj[k] = v
	}
	compiled, err := querydsl.Compile(schema.New(), queryObj)
	if err != nil {
		return nil, err
	}
	pred := func(doc Document) bool { return querydsl.Evaluate(compiled.Query, doc.Field) }

	return &FilterAgg{name: name, pred: pred, root: root}, nil
}

func (f *FilterAgg) Name() string { return f.name }
func (f *FilterAgg) Observe(doc Document) {
	if !f.pred(doc) {
		return
	}
	f.docs++
	f.root.Observe(doc)
}
func (f *FilterAgg) Update()                             { f.root.Update() }
func (f *FilterAgg) GetAgg(n string) (Aggregation, bool) { return f.root.GetAgg(n) }
func (f *FilterAgg) Result() interface{} {
	out := f.root.Result().(map[string]interface{})
	out["_doc_count"] = f.docs
	return out
}

// bucketed is the shared implementation of a bucket aggregator: a map
// from bucket key to a recursively-aggregating Root, built lazily on
// first observation of that key, matching how Values/Terms/Histogram/
// Range each own a `bucket_key -> Aggregation` map in the original.
type bucketed struct {
	name     string
	field    string
	spec     map[string]interface{}
	buckets  map[string]*Root
	order    []string
	keyOf    func(Document) ([]string, bool)
}

func newBucketed(name, field string, spec map[string]interface{}, keyOf func(Document) ([]string, bool)) *bucketed {
	return &bucketed{name: name, field: field, spec: spec, buckets: map[string]*Root{}, keyOf: keyOf}
}

func (b *bucketed) Name() string { return b.name }

func (b *bucketed) Observe(doc Document) {
	keys, ok := b.keyOf(doc)
	if !ok {
		return
	}
	for _, k := range keys {
		root, exists := b.buckets[k]
		if !exists {
			sub, _ := b.spec[keyAggs].(map[string]interface{})
			if sub == nil {
				sub = map[string]interface{}{}
			}
			root, _ = New(k, map[string]interface{}{keyAggs: sub})
			b.buckets[k] = root
			b.order = append(b.order, k)
		}
		root.Observe(doc)
	}
}

func (b *bucketed) Update() {
	for _, root := range b.buckets {
		root.Update()
	}
}

func (b *bucketed) Result() interface{} {
	out := make([]map[string]interface{}, 0, len(b.order))
	for _, k := range b.order {
		root := b.buckets[k]
		entry := root.Result().(map[string]interface{})
		entry["key"] = k
		out = append(out, entry)
	}
	return map[string]interface{}{"buckets": out}
}

func (b *bucketed) GetAgg(name string) (Aggregation, bool) {
	root, ok := b.buckets[name]
	return root, ok
}

func newValuesAgg(name string, params interface{}) (Aggregation, error) {
	m, ok := params.(map[string]interface{})
	if !ok {
		return nil, &AggregationError{Msg: "_values requires an object"}
	}
	field := fieldOf(m)
	keyOf := func(doc Document) ([]string, bool) {
		vals := doc.Field(field)
		if len(vals) == 0 {
			return nil, false
		}
		keys := make([]string, 0, len(vals))
		for _, v := range vals {
			keys = append(keys, fmt.Sprint(v))
		}
		return keys, true
	}
	return newBucketed(name, field, m, keyOf), nil
}

func newTermsAgg(name string, params interface{}) (Aggregation, error) {
	return newValuesAgg(name, params)
}

func newHistogramAgg(name string, params interface{}) (Aggregation, error) {
	m, ok := params.(map[string]interface{})
	if !ok {
		return nil, &AggregationError{Msg: "_histogram requires an object"}
	}
	field := fieldOf(m)
	interval, _ := m["_interval"].(float64)
	if interval <= 0 {
		return nil, &AggregationError{Msg: "_histogram requires interval > 0"}
	}
	offset, _ := m["_offset"].(float64)
	keyOf := func(doc Document) ([]string, bool) {
		f, ok := firstFloat(doc, field)
		if !ok {
			return nil, false
		}
		bucket := math.Floor((f - offset) / interval)
		return []string{fmt.Sprintf("%g", bucket*interval+offset)}, true
	}
	return newBucketed(name, field, m, keyOf), nil
}

func newRangeAgg(name string, params interface{}) (Aggregation, error) {
	m, ok := params.(map[string]interface{})
	if !ok {
		return nil, &AggregationError{Msg: "_range requires an object"}
	}
	field := fieldOf(m)
	rangesRaw, _ := m["_ranges"].([]interface{})
	type bound struct {
		from, to *float64
		key      string
	}
	var bounds []bound
	for i, r := range rangesRaw {
		rm, ok := r.(map[string]interface{})
		if !ok {
			continue
		}
		var from, to *float64
		if v, ok := rm["_from"].(float64); ok {
			from = &v
		}
		if v, ok := rm["_to"].(float64); ok {
			to = &v
		}
		key := fmt.Sprintf("range_%d", i)
		if k, ok := rm["_key"].(string); ok {
			key = k
		}
		bounds = append(bounds, bound{from, to, key})
	}
	keyOf := func(doc Document) ([]string, bool) {
		f, ok := firstFloat(doc, field)
		if !ok {
			return nil, false
		}
		var keys []string
		for _, b := range bounds {
			if b.from != nil && f < *b.from {
				continue
			}
			if b.to != nil && f >= *b.to {
				continue
			}
			keys = append(keys, b.key)
		}
		return keys, len(keys) > 0
	}
	return newBucketed(name, field, m, keyOf), nil
}
