/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package index

import (
	"sync"

	"go.uber.org/atomic"

	"github.com/Kronuz/xapiand-core/schema"
	"github.com/Kronuz/xapiand-core/xconfig"
	"github.com/Kronuz/xapiand-core/xlog"
)

// Database is the narrow write surface the indexer task needs; it
// stands in for the out-of-scope posting-list store (spec.md §1).
type Database interface {
	ReplaceDocumentTerm(termID string, doc *schema.IndexResult, commit, wal bool) error
}

// prepared is what a DocPreparer hands to the ready queue: an empty
// TermID marks a failed prepare, a sentinel the Indexer must still
// dequeue so its processed counter advances.
type prepared struct {
	TermID string
	Result *schema.IndexResult
}

// DocIndexer is the coordinator: Prepare hands each object straight to
// the preparer pool's input queue, whose capacity is the configured
// bulk size (xconfig.Config.BulkSize). Objects are not collected into
// batches before they are enqueued.
type DocIndexer struct {
	schema   *schema.Schema
	preparer *preparerPool
	indexer  *indexerTask

	mu    sync.Mutex
	batch []map[string]interface{}

	sem chan struct{}

	submitted atomic.Int64
}

// NewDocIndexer wires a DocIndexer to nPreparers worker goroutines and
// starts the single downstream Indexer task.
func NewDocIndexer(s *schema.Schema, db Database, changeSeq *ChangeSeq, dbPath string, nPreparers int) *DocIndexer {
	cfg := xconfig.Get()
	idx := &indexerTask{db: db, ready: make(chan prepared, cfg.BulkSize), done: make(chan struct{})}
	idx.start()

	sem := make(chan struct{}, cfg.SemaphoreMax)
	pool := &preparerPool{
		in:        make(chan map[string]interface{}, cfg.BulkSize),
		out:       idx.ready,
		schema:    s,
		changeSeq: changeSeq,
		dbPath:    dbPath,
		sem:       sem,
	}
	pool.start(nPreparers)

	return &DocIndexer{
		schema:   s,
		preparer: pool,
		indexer:  idx,
		sem:      sem,
	}
}

// Prepare enqueues one object, blocking only when the semaphore is
// saturated (xconfig.Config.SemaphoreMax in flight).
func (d *DocIndexer) Prepare(obj map[string]interface{}) {
	d.sem <- struct{}{}
	d.preparer.in <- obj
	d.submitted.Inc()
}

// Wait signals the preparer pool that no more objects are coming,
// drains both queues and blocks until the indexer has processed
// everything submitted.
func (d *DocIndexer) Wait() {
	close(d.preparer.in)
	d.preparer.wg.Wait()
	close(d.indexer.ready)
	<-d.indexer.done
}

// preparerPool is the DocPreparer pool: N workers each call
// Schema.index() on a dequeued object and forward the result (or a
// sentinel on failure) to the single ready queue.
type preparerPool struct {
	in        chan map[string]interface{}
	out       chan prepared
	schema    *schema.Schema
	changeSeq *ChangeSeq
	dbPath    string
	sem       chan struct{}
	wg        sync.WaitGroup

	// afterGet, when set, runs right after the change-seq snapshot is
	// captured and before schema.Index/Set; tests use it to deterministically
	// inject a conflicting writer between the two. Nil in production.
	afterGet func()
}

func (p *preparerPool) start(n int) {
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go p.run()
	}
}

func (p *preparerPool) run() {
	defer p.wg.Done()
	retries := xconfig.Get().DBRetries
	for obj := range p.in {
		termID := docIDOf(obj)
		res, ok := p.prepare(termID, obj, retries)
		if !ok {
			p.out <- prepared{} // sentinel: advances the downstream counter
			<-p.sem
			continue
		}
		p.out <- prepared{TermID: termID, Result: res}
		<-p.sem
	}
}

// prepare runs the optimistic-concurrency loop of spec.md §4.2:
// get_document_change_seq captures the change-seq snapshot the new
// Data is compiled against, schema.Index computes the candidate
// Data/terms, and set_document_change_seq installs it only if the
// snapshot hasn't moved underneath it. A loser retries the prepare
// from scratch (recomputing against the winner's Data) up to retries
// times before the document is dropped as a sentinel failure.
func (p *preparerPool) prepare(termID string, obj map[string]interface{}, retries int) (*schema.IndexResult, bool) {
	for attempt := 0; attempt <= retries; attempt++ {
		old := p.changeSeq.Get(p.dbPath, termID)
		if p.afterGet != nil {
			p.afterGet()
		}
		res, err := schema.Index(p.schema, obj, termID)
		if err != nil {
			xlog.Warningf("index: prepare failed: %v", err)
			return nil, false
		}
		if p.changeSeq.Set(p.dbPath, termID, res.Data, old) {
			return res, true
		}
		xlog.Warningf("index: change-seq conflict for %s, retrying (attempt %d/%d)", termID, attempt+1, retries)
	}
	xlog.Warningf("index: change-seq conflict for %s exhausted retries", termID)
	return nil, false
}

func docIDOf(obj map[string]interface{}) string {
	if id, ok := obj["_id"].(string); ok {
		return id
	}
	return ""
}

// indexerTask is the single-consumer indexer: it applies
// replace_document_term for every non-empty prepared tuple under the
// database lock, advancing processed per dequeue regardless of
// whether the tuple carried real work.
type indexerTask struct {
	db        Database
	ready     chan prepared
	done      chan struct{}
	processed atomic.Int64
	mu        sync.Mutex
}

func (t *indexerTask) start() {
	go func() {
		defer close(t.done)
		for p := range t.ready {
			t.processed.Inc()
			if p.TermID == "" || p.Result == nil {
				continue
			}
			t.mu.Lock()
			if err := t.db.ReplaceDocumentTerm(p.TermID, p.Result, false, false); err != nil {
				xlog.Warningf("index: replace_document_term(%s) failed: %v", p.TermID, err)
			}
			t.mu.Unlock()
		}
	}()
}

// Processed returns the number of ready-queue entries dequeued so far.
func (t *indexerTask) Processed() int64 { return t.processed.Load() }
