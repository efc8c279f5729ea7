/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package uuid

// vl is the 13-entry variable-length-prefix table for condensed UUIDs,
// indexed [length-4][quadrant][prefix|mask]; quadrant is whether the
// first byte's top nibble is non-zero. Copied verbatim from
// original_source/src/cuuid/uuid.cc so serialised condensed UUIDs stay
// byte-compatible with the source implementation.
var vl = [13][2][2]byte{
	{{0x1c, 0xfc}, {0x1c, 0xfc}}, // 4
	{{0x18, 0xfc}, {0x18, 0xfc}}, // 5
	{{0x14, 0xfc}, {0x14, 0xfc}}, // 6
	{{0x10, 0xfc}, {0x10, 0xfc}}, // 7
	{{0x04, 0xfc}, {0x40, 0xc0}}, // 8
	{{0x0a, 0xfe}, {0xa0, 0xe0}}, // 9
	{{0x08, 0xfe}, {0x80, 0xe0}}, // 10
	{{0x02, 0xff}, {0x20, 0xf0}}, // 11
	{{0x03, 0xff}, {0x30, 0xf0}}, // 12
	{{0x0c, 0xff}, {0xc0, 0xf0}}, // 13
	{{0x0d, 0xff}, {0xd0, 0xf0}}, // 14
	{{0x0e, 0xff}, {0xe0, 0xf0}}, // 15
	{{0x0f, 0xff}, {0xf0, 0xf0}}, // 16
}
