/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package index

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kronuz/xapiand-core/data"
	"github.com/Kronuz/xapiand-core/schema"
)

type fakeDB struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeDB) ReplaceDocumentTerm(termID string, doc *schema.IndexResult, commit, wal bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, termID)
	return nil
}

func TestDocIndexerProcessesAllSubmittedObjects(t *testing.T) {
	s := schema.New()
	db := &fakeDB{}
	cs := NewChangeSeq()
	di := NewDocIndexer(s, db, cs, "testdb", 4)

	for i := 0; i < 20; i++ {
		di.Prepare(map[string]interface{}{"_id": "doc", "name": "robert"})
	}
	di.Wait()

	db.mu.Lock()
	defer db.mu.Unlock()
	assert.Equal(t, 20, len(db.calls))
	assert.Equal(t, int64(20), di.indexer.Processed())
}

func TestDocIndexerSentinelOnPrepareFailure(t *testing.T) {
	s := schema.New()
	s.Strict = true // every leaf without a declared type now fails to prepare
	db := &fakeDB{}
	cs := NewChangeSeq()
	di := NewDocIndexer(s, db, cs, "testdb", 2)

	di.Prepare(map[string]interface{}{"_id": "doc", "name": "robert"})
	di.Wait()

	db.mu.Lock()
	defer db.mu.Unlock()
	assert.Empty(t, db.calls, "a failed prepare must not reach the database")
	assert.Equal(t, int64(1), di.indexer.Processed(), "the sentinel tuple still advances the processed counter")
}

func TestPreparerPoolRetriesOnChangeSeqConflict(t *testing.T) {
	s := schema.New()
	cs := NewChangeSeq()
	pool := &preparerPool{schema: s, changeSeq: cs, dbPath: "testdb"}

	// afterGet installs a concurrent winner between the first attempt's
	// Get and Set, so that attempt loses and prepare has to retry.
	winner := data.New()
	winner.SetObject([]byte(`"winner"`), false)
	pool.afterGet = func() {
		old := cs.Get("testdb", "doc")
		require.True(t, cs.Set("testdb", "doc", winner, old), "simulated concurrent winner installs first")
		pool.afterGet = nil
	}

	res, ok := pool.prepare("doc", map[string]interface{}{"_id": "doc", "name": "robert"}, 1)
	require.True(t, ok, "the loser must retry against the winner's Data and eventually succeed")
	require.NotNil(t, res)

	final := cs.Get("testdb", "doc")
	assert.Equal(t, res.Data.Serialise(), final.Serialise())
	assert.NotEqual(t, winner.Serialise(), final.Serialise(), "the retried prepare's own Data must have been installed, not the winner's")
}

func TestPreparerPoolExhaustsRetriesOnPersistentConflict(t *testing.T) {
	s := schema.New()
	cs := NewChangeSeq()
	pool := &preparerPool{schema: s, changeSeq: cs, dbPath: "testdb"}

	// afterGet fires once prepare has captured its "old" snapshot but
	// before it recomputes and calls Set, deterministically installing a
	// rival snapshot underneath it so the Set below is guaranteed to lose.
	rival := data.New()
	rival.SetObject([]byte(`"rival"`), false)
	pool.afterGet = func() {
		old := cs.Get("testdb", "doc")
		require.True(t, cs.Set("testdb", "doc", rival, old))
		pool.afterGet = nil // only the first (only) attempt needs the rival
	}

	res, ok := pool.prepare("doc", map[string]interface{}{"_id": "doc", "name": "robert"}, 0)
	assert.False(t, ok, "a conflict with zero retries left must drop the document as a sentinel failure")
	assert.Nil(t, res)

	final := cs.Get("testdb", "doc")
	assert.Equal(t, rival.Serialise(), final.Serialise(), "the rival's Data must remain installed, not the loser's")
}

func TestChangeSeqCompareAndSwap(t *testing.T) {
	cs := NewChangeSeq()
	snap := cs.Get("db", "term1")
	require.NotNil(t, snap)

	next := snap
	assert.True(t, cs.Set("db", "term1", next, snap))

	stale := cs.Get("db", "term1")
	_ = stale
	newer := snap
	assert.True(t, cs.Set("db", "term1", newer, next))
}
