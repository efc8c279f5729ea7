/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */

// Package index implements the indexing pipeline of spec.md §4.2: a
// bulk-buffering coordinator, a pool of preparer workers running
// Schema.index(), and a single indexer task applying the prepared
// terms under optimistic concurrency. Grounded on the bounded-channel
// plus WaitGroup plus atomic-counter worker-pool idiom used throughout
// aistore (cluster/, reb/) for coordinating a fixed worker pool against
// a single downstream consumer.
package index

import (
	"sync"

	"github.com/Kronuz/xapiand-core/data"
)

// changeKey identifies one document's change-sequence slot.
type changeKey struct {
	dbPath string
	termID string
}

// ChangeSeq is the process-wide optimistic-concurrency map described
// in spec.md §4.2: `documents: key → (term_id, Data)`. Writers call
// Get to materialise the current snapshot (creating an empty one if
// absent) and Set to install a new snapshot, which only succeeds if
// the stored snapshot still equals the expected old one.
type ChangeSeq struct {
	mu      sync.Mutex
	entries map[changeKey]*data.Data
}

// NewChangeSeq returns an empty change-sequence map.
func NewChangeSeq() *ChangeSeq {
	return &ChangeSeq{entries: map[changeKey]*data.Data{}}
}

// Get atomically materialises the current snapshot for (dbPath,
// termID), creating an empty Data the first time it's observed.
func (c *ChangeSeq) Get(dbPath, termID string) *data.Data {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := changeKey{dbPath, termID}
	d, ok := c.entries[key]
	if !ok {
		d = data.New()
		c.entries[key] = d
	}
	return d
}

// Set accepts newData iff the currently stored snapshot equals
// expectedOld by serialised-form equality, or no entry exists yet. On
// acceptance the stored snapshot is replaced and true is returned;
// otherwise the caller must retry its prepare from scratch.
func (c *ChangeSeq) Set(dbPath, termID string, newData, expectedOld *data.Data) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := changeKey{dbPath, termID}
	cur, ok := c.entries[key]
	if ok && !dataEqual(cur, expectedOld) {
		return false
	}
	c.entries[key] = newData
	return true
}

func dataEqual(a, b *data.Data) bool {
	if a == nil || b == nil {
		return a == b
	}
	return string(a.Serialise()) == string(b.Serialise())
}
