/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */

// Package data implements the document data-record codec of spec.md §4.5:
// a locator list that lets a single stored document carry several
// differently-typed representations of its payload (the "main" msgpack
// object plus any number of stored blobs), each independently inplace or
// LZ4-compressed, serialised behind a short header/footer so corruption
// is detectable without a full schema walk. Grounded on
// original_source/src/database/data.cc.
package data

import (
	"bytes"
	"strings"

	"github.com/pierrec/lz4/v3"

	"github.com/Kronuz/xapiand-core/xlog"
)

// compressMinSize is the size below which Locator.SetData never attempts
// LZ4 compression: original_source/src/database/data.cc only compresses
// payloads of at least 128 bytes, on the grounds that LZ4's frame
// overhead makes compression a net loss below that.
const compressMinSize = 128

// LocatorType distinguishes how a Locator's bytes are stored and whether
// they are LZ4-compressed.
type LocatorType byte

const (
	// Inplace means Raw holds the literal payload.
	Inplace LocatorType = iota
	// CompressedInplace means Raw holds an LZ4 frame of the payload.
	CompressedInplace
	// Stored means the payload lives in an external volume at
	// (Volume, Offset) for Size bytes; Raw may also hold a copy of the
	// payload, which is serialised along with the reference.
	Stored
	// CompressedStored is Stored, LZ4-compressed.
	CompressedStored
)

func (t LocatorType) compressed() bool {
	return t == CompressedInplace || t == CompressedStored
}

func (t LocatorType) stored() bool {
	return t == Stored || t == CompressedStored
}

// ContentType is a parsed "type/subtype" MIME content type, lower-cased
// and stripped of whitespace and parameters, the way
// original_source/src/database/data.cc's ct_type_t parses Content-Type
// headers before comparing them.
type ContentType struct {
	First  string
	Second string
}

// ParseContentType parses a "type/subtype[;params]" string. An empty
// input yields the zero ContentType, used as the sentinel for the
// locator holding the document's "main" object.
func ParseContentType(s string) ContentType {
	if i := strings.IndexByte(s, ';'); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return ContentType{}
	}
	i := strings.IndexByte(s, '/')
	if i < 0 {
		return ContentType{First: s}
	}
	return ContentType{First: s[:i], Second: s[i+1:]}
}

func (c ContentType) String() string {
	if c.First == "" && c.Second == "" {
		return ""
	}
	return c.First + "/" + c.Second
}

func (c ContentType) Empty() bool { return c.First == "" && c.Second == "" }

// matches reports whether the accept-side content type a (which may
// carry "*" wildcards in either half) matches the concrete type c.
func (a ContentType) matches(c ContentType) bool {
	if a.First != "*" && a.First != c.First {
		return false
	}
	if a.Second != "*" && a.Second != c.Second {
		return false
	}
	return true
}

// Locator is one representation of a document's payload, identified by
// its ContentType. A Data record with an empty-ContentType locator
// carries the document's "main" object; any other ContentType is an
// additional stored representation (e.g. a rendered thumbnail).
type Locator struct {
	ContentType ContentType
	Type        LocatorType
	Size        int
	Volume      int64
	Offset      int64
	Raw         []byte

	decompressed []byte // lazily populated cache for compressed types
}

// SetData installs new payload bytes, choosing whether to LZ4-compress
// them. Compression is only attempted for payloads of at least
// compressMinSize bytes, and is only kept if it actually shrinks the
// data; otherwise the locator falls back to the non-compressed
// counterpart of its type, mirroring Locator::data(new_data) in
// original_source/src/database/data.cc.
func (l *Locator) SetData(raw []byte) {
	l.decompressed = nil
	l.Size = len(raw)
	if !l.Type.compressed() {
		l.Raw = raw
		return
	}
	if len(raw) >= compressMinSize {
		compressed := compress(raw)
		if len(compressed) < len(raw) {
			l.Raw = compressed
			return
		}
	}
	// Compression not worth it: fall back to the uncompressed type.
	if l.Type == CompressedStored {
		l.Type = Stored
	} else {
		l.Type = Inplace
	}
	l.Raw = raw
}

// Data returns the locator's payload, transparently decompressing and
// caching the result for compressed types.
func (l *Locator) Data() ([]byte, error) {
	if !l.Type.compressed() {
		return l.Raw, nil
	}
	if l.decompressed != nil {
		return l.decompressed, nil
	}
	raw, err := decompress(l.Raw)
	if err != nil {
		return nil, err
	}
	l.decompressed = raw
	return raw, nil
}

func compress(raw []byte) []byte {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	_, _ = w.Write(raw)
	_ = w.Close()
	return buf.Bytes()
}

func decompress(raw []byte) ([]byte, error) {
	r := lz4.NewReader(bytes.NewReader(raw))
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		xlog.Warningf("data: failed to decompress locator: %v", err)
		return nil, err
	}
	return buf.Bytes(), nil
}

// equalContentType is the locator equality used by Data.Flush to find
// the existing representation an update should replace:
// Locator::operator== in the original only ever compares ct_type.
func (l Locator) equalContentType(o Locator) bool {
	return l.ContentType == o.ContentType
}

// serialise writes length-prefixed: total-len, ct_type, type byte,
// [volume, offset, size if stored], raw bytes.
func (l Locator) serialise() []byte {
	var body []byte
	ct := l.ContentType.String()
	body = putVarlen(body, uint64(len(ct)))
	body = append(body, ct...)
	body = append(body, byte(l.Type))
	if l.Type.stored() {
		body = putVarlen(body, uint64(l.Volume))
		body = putVarlen(body, uint64(l.Offset))
		body = putVarlen(body, uint64(l.Size))
	}
	body = append(body, l.Raw...)

	out := putVarlen(nil, uint64(len(body)))
	out = append(out, body...)
	return out
}

// unserialiseLocator reads one length-prefixed Locator off the front of
// buf and returns the remaining bytes.
func unserialiseLocator(buf []byte) (Locator, []byte, bool) {
	n, rest, ok := takeVarlen(buf)
	if !ok || n == 0 || uint64(len(rest)) < n {
		return Locator{}, buf, false
	}
	body, tail := rest[:n], rest[n:]

	ctLen, body, ok := takeVarlen(body)
	if !ok || uint64(len(body)) < ctLen {
		return Locator{}, buf, false
	}
	ct := ParseContentType(string(body[:ctLen]))
	body = body[ctLen:]

	if len(body) < 1 {
		return Locator{}, buf, false
	}
	typ := LocatorType(body[0])
	body = body[1:]

	loc := Locator{ContentType: ct, Type: typ}
	if typ.stored() {
		var volume, offset, size uint64
		if volume, body, ok = takeVarlen(body); !ok {
			return Locator{}, buf, false
		}
		if offset, body, ok = takeVarlen(body); !ok {
			return Locator{}, buf, false
		}
		if size, body, ok = takeVarlen(body); !ok {
			return Locator{}, buf, false
		}
		loc.Volume, loc.Offset, loc.Size = int64(volume), int64(offset), int(size)
	}
	loc.Raw = append([]byte(nil), body...)
	if !typ.stored() {
		loc.Size = len(loc.Raw)
	}
	return loc, tail, true
}
