/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package keymaker

// MultiValueKeyMaker composes several per-slot sub-keys into a single
// sortable byte string, grounded on
// Multi_MultiValueKeyMaker::operator() in
// original_source/src/multivalue/keymaker.cc's counterpart header.
type MultiValueKeyMaker struct {
	keys []Key
}

// New returns an empty key maker; Add appends sub-keys in priority order.
func New() *MultiValueKeyMaker { return &MultiValueKeyMaker{} }

// Add appends a sub-key, most significant first.
func (m *MultiValueKeyMaker) Add(k Key) { m.keys = append(m.keys, k) }

// Key builds the composite sort key for doc: for each sub-key it picks
// findSmallest (ascending/forward) or findBiggest (descending/reverse
// sub-keys pick the value that will sort correctly once complemented),
// then encodes it per spec.md §4.8's escaping rules so the
// concatenation of variable-length sub-keys remains comparable
// byte-by-byte.
func (m *MultiValueKeyMaker) Key(doc Document) []byte {
	var out []byte
	for i, k := range m.keys {
		var v string
		if k.Reverse() {
			v = k.FindBiggest(doc)
		} else {
			v = k.FindSmallest(doc)
		}
		last := i == len(m.keys)-1
		out = append(out, encodeSubKey(v, k.Reverse(), last)...)
	}
	return out
}

// encodeSubKey applies the reverse/forward byte-doubling and
// terminator rules: reverse sub-keys complement every byte (0x00
// becomes 0xFF 0x00) and terminate with 0xFF 0xFF; forward sub-keys
// double any 0x00 byte and terminate with 0x00 0x00, except the very
// last forward sub-key, which needs no terminator at all.
func encodeSubKey(v string, reverse bool, last bool) []byte {
	if reverse {
		out := make([]byte, 0, len(v)+2)
		for i := 0; i < len(v); i++ {
			c := v[i]
			if c == 0x00 {
				out = append(out, 0xFF, 0x00)
			} else {
				out = append(out, ^c)
			}
		}
		out = append(out, 0xFF, 0xFF)
		return out
	}

	out := make([]byte, 0, len(v)+2)
	for i := 0; i < len(v); i++ {
		c := v[i]
		out = append(out, c)
		if c == 0x00 {
			out = append(out, 0x00)
		}
	}
	if !last {
		out = append(out, 0x00, 0x00)
	}
	return out
}
