/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */

// Package agg implements the aggregation framework of spec.md §4.4: a
// composable tree of metric and bucket aggregators evaluated over
// matched documents, grounded on
// original_source/src/aggregations/aggregations.cc. The reserved
// aggregation-operator names below follow the metric/bucket kinds
// spec.md names explicitly; the upstream metrics.h that defines their
// exact C++ string constants was not present in the filtered source
// set, so the literal values are this package's own choice.
package agg

import "fmt"

const (
	AggCount         = "_count"
	AggSum           = "_sum"
	AggAvg           = "_avg"
	AggMin           = "_min"
	AggMax           = "_max"
	AggVariance      = "_variance"
	AggStdDeviation  = "_std_dev"
	AggMedian        = "_median"
	AggMode          = "_mode"
	AggStats         = "_stats"
	AggExtendedStats = "_extended_stats"
	AggFilter        = "_filter"
	AggValues        = "_values"
	AggValue         = "_value"
	AggTerms         = "_terms"
	AggTerm          = "_term"
	AggHistogram     = "_histogram"
	AggRange         = "_range"

	keyAggs = "_aggs"
	keyField = "_field"
)

// Document is the minimal field-value accessor an aggregator needs.
type Document interface {
	// Field returns the decoded value(s) stored at a dotted field path.
	Field(path string) []interface{}
}

// Aggregation is one node in the aggregation tree.
type Aggregation interface {
	Name() string
	// Observe records one matched document.
	Observe(doc Document)
	// Update finalises any post-pass state (e.g. median from buckets).
	Update()
	// Result returns the structured response for this node.
	Result() interface{}
	// GetAgg looks up a named child aggregation, if any.
	GetAgg(name string) (Aggregation, bool)
}

// AggregationError mirrors the original's AggregationError exception,
// raised for malformed aggregation DSL objects.
type AggregationError struct{ Msg string }

func (e *AggregationError) Error() string { return e.Msg }

// Root is the top-level aggregation node: a named map of children plus
// a running total of observed documents.
type Root struct {
	name     string
	children map[string]Aggregation
	total    int64
}

// New compiles an aggregation DSL object ({"_aggs": {name: {...}}} or
// bare {name: {...}}) into a Root. No schema is consulted: each
// aggregator reads its field's decoded values through Document.Field.
func New(name string, obj map[string]interface{}) (*Root, error) {
	r := &Root{name: name, children: map[string]Aggregation{}}
	aggsObj, ok := obj[keyAggs].(map[string]interface{})
	if !ok {
		aggsObj = obj
	}
	for childName, raw := range aggsObj {
		spec, ok := raw.(map[string]interface{})
		if !ok {
			return nil, &AggregationError{Msg: "all aggregations must be objects"}
		}
		child, err := build(childName, spec)
		if err != nil {
			return nil, err
		}
		r.children[childName] = child
	}
	return r, nil
}

func (r *Root) Name() string { return r.name }

func (r *Root) Observe(doc Document) {
	r.total++
	for _, c := range r.children {
		c.Observe(doc)
	}
}

func (r *Root) Update() {
	for _, c := range r.children {
		c.Update()
	}
}

func (r *Root) Result() interface{} {
	out := map[string]interface{}{"_doc_count": r.total}
	for name, c := range r.children {
		out[name] = c.Result()
	}
	return out
}

func (r *Root) GetAgg(name string) (Aggregation, bool) {
	c, ok := r.children[name]
	return c, ok
}

// Total is the number of documents observed at the root, mirroring the
// match-spy's "_total" counter.
func (r *Root) Total() int64 { return r.total }

func build(name string, spec map[string]interface{}) (Aggregation, error) {
	if len(spec) == 0 {
		return nil, &AggregationError{Msg: fmt.Sprintf("aggregation %q has no kind", name)}
	}
	for kind, params := range spec {
		switch kind {
		case AggCount, AggSum, AggAvg, AggMin, AggMax, AggVariance, AggStdDeviation, AggMedian, AggMode, AggStats, AggExtendedStats:
			return newMetric(name, kind, params)
		case AggFilter:
			return newFilterAgg(name, params)
		case AggValues, AggValue:
			return newValuesAgg(name, params)
		case AggTerms, AggTerm:
			return newTermsAgg(name, params)
		case AggHistogram:
			return newHistogramAgg(name, params)
		case AggRange:
			return newRangeAgg(name, params)
		}
		return nil, &AggregationError{Msg: fmt.Sprintf("unknown aggregation kind %q", kind)}
	}
	return nil, &AggregationError{Msg: "unreachable"}
}

func fieldOf(params interface{}) string {
	m, ok := params.(map[string]interface{})
	if !ok {
		return ""
	}
	if f, ok := m[keyField].(string); ok {
		return f
	}
	return ""
}

func firstFloat(doc Document, field string) (float64, bool) {
	vals := doc.Field(field)
	if len(vals) == 0 {
		return 0, false
	}
	switch v := vals[0].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}
