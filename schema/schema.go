/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package schema

import (
	"github.com/Kronuz/xapiand-core/xdebug"
)

// Detection toggles a Schema carries for its whole tree; individual
// fields can still declare an explicit concrete type to opt out.
type Detection struct {
	Date    bool
	Time    bool
	Numeric bool
	Geo     bool
	Bool    bool
	Text    bool
	Term    bool
	UUID    bool
}

// DefaultDetection enables every detector, the schema service's
// default for a brand-new index.
func DefaultDetection() Detection {
	return Detection{Date: true, Time: true, Numeric: true, Geo: true, Bool: true, Text: true, Term: true, UUID: true}
}

// Schema is an immutable tree of FieldSpec keyed by dotted path. Any
// mutation must go through With* and produce a new Schema; the old one
// remains valid for any reader that captured it before the mutation,
// matching the copy-on-write contract of spec.md §3.
type Schema struct {
	Fields    map[string]*FieldSpec
	Detection Detection
	Strict    bool

	// Foreign, when non-empty, is the "<path>/<id>" endpoint this
	// schema's real definition lives at; a foreign schema's Fields tree
	// is empty until the referenced document has been fetched.
	Foreign string
}

// New returns an empty local schema with every detector enabled.
func New() *Schema {
	return &Schema{
		Fields:    map[string]*FieldSpec{},
		Detection: DefaultDetection(),
	}
}

// IsForeign reports whether this schema snapshot is a pointer to
// another index's document rather than a locally stored definition.
func (s *Schema) IsForeign() bool { return s.Foreign != "" }

// Clone returns a new Schema with a shallow-copied Fields map whose
// FieldSpec values are themselves deep-cloned, ready for in-place
// mutation without disturbing the original snapshot.
func (s *Schema) Clone() *Schema {
	clone := &Schema{
		Fields:    make(map[string]*FieldSpec, len(s.Fields)),
		Detection: s.Detection,
		Strict:    s.Strict,
		Foreign:   s.Foreign,
	}
	for path, fs := range s.Fields {
		clone.Fields[path] = fs.Clone()
	}
	return clone
}

// Get returns the FieldSpec at path, if any.
func (s *Schema) Get(path string) (*FieldSpec, bool) {
	fs, ok := s.Fields[path]
	return fs, ok
}

// WithField returns a clone of s with fs installed at its Path. The
// receiver is left untouched: callers install the result back into the
// SchemaLRU via a CAS.
func (s *Schema) WithField(fs *FieldSpec) *Schema {
	xdebug.Assert(fs.Path != "", "field path must not be empty")
	clone := s.Clone()
	clone.Fields[fs.Path] = fs
	return clone
}

// Serialise and Unserialise are implemented in msgpack.go.
