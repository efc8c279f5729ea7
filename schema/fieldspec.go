/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */

// Package schema implements the schema service of spec.md §4.1: it
// turns a decoded document object into field specifications, terms and
// values, persists schema snapshots under a SchemaLRU, and resolves
// foreign schema references. Grounded on
// original_source/src/schemas_lru.cc, adapted from the copy-on-write,
// CAS-guarded cache idiom aistore uses for its LOM and bucket-metadata
// caches.
package schema

// Kind is the two-level type of a FieldSpec.
type Kind int

const (
	KindForeign Kind = iota
	KindObject
	KindArray
	KindConcrete
)

// ConcreteType enumerates the leaf types a concrete field can hold.
type ConcreteType int

const (
	Empty ConcreteType = iota
	Keyword
	Text
	StringLegacy
	Integer
	Positive
	Float
	Boolean
	Date
	Time
	Timedelta
	UUID
	Script
	Geo
	ArrayType
	ObjectType
)

// IndexFlags controls what a concrete field emits into the posting list.
type IndexFlags struct {
	Terms     bool
	Values    bool
	Positions bool
	Spelling  bool
}

// DefaultIndexFlags matches every term/value/position channel, the
// schema service's default for a newly detected field.
func DefaultIndexFlags() IndexFlags {
	return IndexFlags{Terms: true, Values: true, Positions: true}
}

// StopStrategy controls stopword handling for text fields.
type StopStrategy int

const (
	StopNone StopStrategy = iota
	StopStopOnly
	StopStemSometimes
	StopStemAll
)

// StemStrategy controls whether/how a text field is stemmed.
type StemStrategy int

const (
	StemNone StemStrategy = iota
	StemSome
	StemAll
)

// FieldSpec is the effective specification of one dotted field path.
// Invariant: for any two distinct fields reachable from the same
// Schema root, (Prefix, Slot) is unique, and Accuracy is strictly
// ascending.
type FieldSpec struct {
	Path string

	Kind     Kind
	Concrete ConcreteType

	Prefix []byte
	Slot   uint32

	BoolTerm bool
	Index    IndexFlags

	Stop StopStrategy
	Stem StemStrategy
	Lang string

	Accuracy         []int64
	AccuracyPrefixes [][]byte

	// Partials/Error configure geo field precision: Partials limits the
	// HTM trixel levels generated, Error is the acceptable radian error.
	Partials bool
	Error    float64

	Namespace    bool
	PartialPaths bool
}

// Clone returns a deep-enough copy of f for copy-on-write schema
// mutation: slices are copied so a mutation to the clone can never be
// observed by a concurrent reader holding the original snapshot.
func (f *FieldSpec) Clone() *FieldSpec {
	if f == nil {
		return nil
	}
	clone := *f
	clone.Prefix = append([]byte(nil), f.Prefix...)
	clone.Accuracy = append([]int64(nil), f.Accuracy...)
	clone.AccuracyPrefixes = make([][]byte, len(f.AccuracyPrefixes))
	for i, p := range f.AccuracyPrefixes {
		clone.AccuracyPrefixes[i] = append([]byte(nil), p...)
	}
	return &clone
}
