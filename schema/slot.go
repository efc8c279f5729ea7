/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package schema

import (
	"strings"

	"github.com/OneOfOne/xxhash"
)

// reservedSlots are slot numbers the original implementation carves
// out for the always-present id/version fields; user fields never
// collide with them.
const reservedSlots = 2

// SlotFor derives the deterministic slot for a dotted field path: a
// 32-bit hash of the path, folded into the user slot space and probed
// linearly against used until a free one is found. Grounded on the
// schema service's "hash of the dotted path into a 32-bit slot space
// with collision resolution" rule (spec.md §4.1); xxhash is the
// teacher's hash of choice for content-addressed lookups (cmn/cksum).
func SlotFor(path string, used map[uint32]bool) uint32 {
	h := xxhash.ChecksumString32(path)
	slot := reservedSlots + h%(1<<30)
	for used[slot] {
		slot++
	}
	return slot
}

// segmentPrefix assigns a short alphabetic prefix to a single path
// segment, two uppercase letters derived from the
// segment's hash so that prefixes stay short and rarely collide.
func segmentPrefix(segment string, used map[string]bool) []byte {
	h := xxhash.ChecksumString32(segment)
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	for attempt := uint32(0); ; attempt++ {
		a := alphabet[(h+attempt)%26]
		b := alphabet[(h/26+attempt*7)%26]
		candidate := string([]byte{a, b})
		if !used[candidate] {
			used[candidate] = true
			return []byte(candidate)
		}
	}
}

// PrefixFor composes the accumulated prefix for a dotted path out of
// each segment's own prefix, reusing any prefix already recorded for
// an ancestor path in existing.
func PrefixFor(path string, existing map[string]*FieldSpec, usedPrefixes map[string]bool) []byte {
	segments := strings.Split(path, ".")
	var out []byte
	acc := ""
	for i, seg := range segments {
		if i == 0 {
			acc = seg
		} else {
			acc = acc + "." + seg
		}
		if fs, ok := existing[acc]; ok && len(fs.Prefix) > 0 {
			out = fs.Prefix
			continue
		}
		out = append(append([]byte(nil), out...), segmentPrefix(seg, usedPrefixes)...)
	}
	return out
}

// namespacePrefix is the single shared prefix every field declared
// namespace=true under the same root segment funnels its terms
// through, per spec.md §4.1's "fields under namespace=true share a
// single namespace prefix" rule.
func namespacePrefix(root string, usedPrefixes map[string]bool) []byte {
	return segmentPrefix("ns:"+root, usedPrefixes)
}
