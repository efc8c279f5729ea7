/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package schema

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	"go.uber.org/atomic"

	"github.com/Kronuz/xapiand-core/xlog"
)

// Reserved field names the schema service recognises inside a user
// object, grounded on original_source/src/reserved.h.
const (
	ReservedSchema   = "_schema"
	ReservedEndpoint = "_endpoint"
	ReservedType     = "_type"
	ReservedRecurse  = "_recurse"
)

// ForeignFetcher retrieves the shared schema document living at
// path/id in another index; it is the Go analogue of the original's
// get_shared/save_shared pair, left to the caller (the indexing
// package wires it to an actual database handler).
type ForeignFetcher interface {
	GetForeignSchema(path, id string) (*Schema, error)
	SaveForeignSchema(path, id string, s *Schema) error
}

// LRU is the process-wide cache of current schema snapshots, keyed by
// (unsharded) index path. Every entry is a CAS-guarded atomic pointer,
// the same pattern aistore's LOM cache uses to let readers see a
// consistent snapshot while a writer installs a new one.
type LRU struct {
	mu      sync.Mutex
	entries map[string]*atomic.Value
}

// NewLRU returns an empty cache.
func NewLRU() *LRU {
	return &LRU{entries: map[string]*atomic.Value{}}
}

func (l *LRU) slot(path string) *atomic.Value {
	l.mu.Lock()
	defer l.mu.Unlock()
	v, ok := l.entries[path]
	if !ok {
		v = &atomic.Value{}
		l.entries[path] = v
	}
	return v
}

// Load returns the current snapshot for path, or nil if none exists yet.
func (l *LRU) Load(path string) *Schema {
	v := l.slot(path)
	s, _ := v.Load().(*Schema)
	return s
}

// CompareAndSwap installs next iff the current snapshot equals old by
// pointer identity (Schema values are never mutated in place, so
// pointer equality is the right notion of "unchanged since read").
func (l *LRU) CompareAndSwap(path string, old, next *Schema) bool {
	v := l.slot(path)
	for {
		cur, _ := v.Load().(*Schema)
		if cur != old {
			return false
		}
		// go.uber.org/atomic.Value has no native CAS for arbitrary
		// types; a mutex-guarded check-then-set under l.mu gives the
		// same atomicity here since all writers go through CompareAndSwap.
		l.mu.Lock()
		cur2, _ := v.Load().(*Schema)
		if cur2 != old {
			l.mu.Unlock()
			continue
		}
		v.Store(next)
		l.mu.Unlock()
		return true
	}
}

// Drop removes path's entry iff it currently equals old.
func (l *LRU) Drop(path string, old *Schema) bool {
	return l.CompareAndSwap(path, old, nil)
}

// unshardedPath strips a "/.__NN" shard suffix, mirroring
// unsharded_path in original_source/src/schemas_lru.cc.
func unshardedPath(path string) string {
	if i := strings.Index(path, "/.__"); i >= 0 {
		return path[:i]
	}
	return path
}

// SplitEndpoint splits a "<path>/<id>" foreign endpoint reference; both
// halves must be non-empty.
func SplitEndpoint(endpoint string) (path, id string, err error) {
	i := strings.LastIndexByte(endpoint, '/')
	if i <= 0 || i == len(endpoint)-1 {
		return "", "", fmt.Errorf("endpoint %q must contain index and docid", endpoint)
	}
	path, id = endpoint[:i], endpoint[i+1:]
	p, err1 := url.QueryUnescape(path)
	d, err2 := url.QueryUnescape(id)
	if err1 != nil || err2 != nil {
		return "", "", fmt.Errorf("endpoint %q is not percent-decodable", endpoint)
	}
	return p, d, nil
}

// Result is what Get returns: the usable snapshot, an optional
// user-supplied mutation to apply on top of it, and the foreign
// endpoint reference in effect (empty for a purely local schema).
type Result struct {
	Snapshot   *Schema
	Mutation   *Schema
	ForeignRef string
}

// Get implements the schema service's public get() contract: load the
// local snapshot, detect any "_schema"-embedded foreign reference or
// mutation in objHint, synthesise a default foreign endpoint when
// require_foreign demands one, and resolve a foreign schema through
// fetch with recursion bounded by maxRecursion and cycles rejected.
// Any foreign-fetch failure is absorbed: the local snapshot is
// returned unchanged and the failure is only logged, matching the
// original's "on any load failure the initial schema is returned"
// contract.
func (l *LRU) Get(indexPath string, objHint map[string]interface{}, requireForeign bool, fetch ForeignFetcher, maxRecursion int) Result {
	localPath := unshardedPath(indexPath)
	local := l.Load(localPath)
	if local == nil {
		local = New()
	}

	var mutation *Schema
	foreignRef := local.Foreign

	if raw, ok := objHint[ReservedSchema]; ok {
		if m, ok := raw.(map[string]interface{}); ok {
			if ep, ok := m[ReservedEndpoint].(string); ok && ep != "" {
				foreignRef = ep
			}
			mutation = schemaFromHint(m)
		}
	}

	if requireForeign && foreignRef == "" && localPath != ".xapiand" {
		foreignRef = fmt.Sprintf(".xapiand/index/%s", url.QueryEscape(localPath))
	}

	if foreignRef == "" {
		return Result{Snapshot: local, Mutation: mutation}
	}

	resolved, err := resolveForeign(foreignRef, fetch, maxRecursion, map[string]int{})
	if err != nil {
		xlog.Warningf("schema: foreign schema fetch failed for %q: %v", foreignRef, err)
		return Result{Snapshot: local, Mutation: mutation, ForeignRef: foreignRef}
	}
	return Result{Snapshot: resolved, Mutation: mutation, ForeignRef: foreignRef}
}

// resolveForeign walks a chain of foreign references, bounding depth
// at maxRecursion and rejecting any path visited twice.
func resolveForeign(endpoint string, fetch ForeignFetcher, maxRecursion int, seen map[string]int) (*Schema, error) {
	if fetch == nil {
		return nil, fmt.Errorf("no foreign schema fetcher configured")
	}
	path, id, err := SplitEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	if seen[path] > 0 {
		return nil, fmt.Errorf("cyclic schema reference detected: %s", endpoint)
	}
	if len(seen) >= maxRecursion {
		return nil, fmt.Errorf("maximum recursion reached: %s", endpoint)
	}
	seen[path]++

	s, err := fetch.GetForeignSchema(path, id)
	if err != nil {
		return nil, err
	}
	if s.IsForeign() {
		return resolveForeign(s.Foreign, fetch, maxRecursion, seen)
	}
	return s, nil
}

// schemaFromHint turns an embedded "_schema" map (minus its endpoint,
// which the caller already extracted) into a mutation schema to merge
// on top of the resolved snapshot.
func schemaFromHint(m map[string]interface{}) *Schema {
	s := New()
	if t, ok := m[ReservedType].(string); ok && strings.Contains(t, "foreign") {
		if ep, ok := m[ReservedEndpoint].(string); ok {
			s.Foreign = ep
		}
	}
	return s
}
