/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package agg

import (
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// MatchSpy plugs an aggregation tree into the search path: it counts
// every matched document and calls Root.Observe, mirroring
// AggregationMatchSpy(agg_obj, schema) in spec.md §4.4.
type MatchSpy struct {
	Root   *Root
	aggObj map[string]interface{}
}

// NewMatchSpy compiles aggObj into a Root and wraps it as a spy,
// retaining aggObj itself so the spy can re-describe its own
// compile-time configuration without the caller keeping a copy.
func NewMatchSpy(aggObj map[string]interface{}) (*MatchSpy, error) {
	root, err := New("", aggObj)
	if err != nil {
		return nil, err
	}
	return &MatchSpy{Root: root, aggObj: aggObj}, nil
}

// Apply is called once per document the posting-list engine visits
// during a match.
func (s *MatchSpy) Apply(doc Document) { s.Root.Observe(doc) }

// Done finalises per-bucket post-pass state once matching completes.
func (s *MatchSpy) Done() { s.Root.Update() }

// Result returns the structured aggregation response, with "_total"
// at the top mirroring the match-spy's own document counter.
func (s *MatchSpy) Result() map[string]interface{} {
	out := s.Root.Result().(map[string]interface{})
	out["_total"] = s.Root.Total()
	return out
}

// wireForm is what Serialise/Unserialise exchange: the aggregation
// object the spy was compiled from, letting a remote shard rebuild an
// identical spy. It carries no schema.
type wireForm struct {
	AggsObj map[string]interface{} `json:"aggs_obj"`
}

// Serialise encodes the spy's own compile-time configuration (not its
// accumulated state) for shipping to a remote matcher, self-describing
// the same way the original's AggregationMatchSpy carries its agg_obj.
func (s *MatchSpy) Serialise() ([]byte, error) {
	return json.Marshal(wireForm{AggsObj: s.aggObj})
}

// UnserialiseMatchSpy rebuilds a fresh MatchSpy from a serialised
// configuration, ready to Apply against a local match.
func UnserialiseMatchSpy(data []byte) (*MatchSpy, error) {
	var w wireForm
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	return NewMatchSpy(w.AggsObj)
}
