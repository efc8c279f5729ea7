// Package main is a smoke-test executable wiring the schema service,
// the indexing pipeline, the query DSL compiler, the aggregation
// framework and the keymaker together end to end, in the spirit of
// cmd/aisnodeprofile's thin flag-parsing entry point.
/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/Kronuz/xapiand-core/agg"
	"github.com/Kronuz/xapiand-core/dump"
	"github.com/Kronuz/xapiand-core/index"
	"github.com/Kronuz/xapiand-core/keymaker"
	"github.com/Kronuz/xapiand-core/querydsl"
	"github.com/Kronuz/xapiand-core/schema"
	"github.com/Kronuz/xapiand-core/uuid"
	"github.com/Kronuz/xapiand-core/xlog"
)

var dbPath = flag.String("db", "smoke.db", "database path tag used for the change-sequence map")

func main() {
	os.Exit(run())
}

func run() int {
	flag.Parse()

	docs := []map[string]interface{}{
		{"_id": "1", "name": "robert", "age": float64(34), "city": "Boston"},
		{"_id": "2", "name": "anna", "age": float64(29), "city": "Seattle"},
		{"_id": "3", "name": "robbert", "age": float64(41), "city": "Boston"},
	}

	s := schema.New()
	db := &memDB{}
	changeSeq := index.NewChangeSeq()
	indexer := index.NewDocIndexer(s, db, changeSeq, *dbPath, 4)

	for _, d := range docs {
		indexer.Prepare(d)
	}
	indexer.Wait()
	xlog.Infof("indexed %d documents, %d replace_document_term calls", len(docs), len(db.replaced))

	compiled, err := querydsl.Compile(s, map[string]interface{}{
		"city": "Boston",
		"_sort": []interface{}{"-age"},
	})
	if err != nil {
		xlog.Errorf("compile failed: %v", err)
		return 1
	}
	fmt.Printf("compiled query op=%d sort=%+v\n", compiled.Query.Op, compiled.Sort)

	root, err := agg.New("", map[string]interface{}{
		"by_city": map[string]interface{}{
			agg.AggTerms: map[string]interface{}{"_field": "city"},
		},
		"avg_age": map[string]interface{}{
			agg.AggAvg: map[string]interface{}{"_field": "age"},
		},
	})
	if err != nil {
		xlog.Errorf("aggregation build failed: %v", err)
		return 1
	}
	for _, d := range docs {
		root.Observe(aggDoc(d))
	}
	root.Update()
	if out, err := json.Marshal(root.Result()); err == nil {
		fmt.Printf("aggregations: %s\n", out)
	}

	mk := keymaker.New()
	mk.Add(keymaker.NewStringKey(0, false, keymaker.NewLevenshtein("robert", false)))
	key := mk.Key(nameDoc{"robbert"})
	fmt.Printf("keymaker sort key for %q: %x\n", "robbert", key)

	id, err := uuid.Parse("00000000-0000-1000-8000-010203040506")
	if err == nil {
		fmt.Printf("uuid condensed form: %x\n", id.Serialise())
	}

	meta := dump.WriteMeta(*dbPath, []dump.MetaEntry{{Key: "version", Value: []byte("1")}})
	if endpoints, entries, err := dump.ReadMeta(meta); err == nil {
		fmt.Printf("dump round-trip ok: endpoints=%s entries=%d\n", endpoints, len(entries))
	}

	return 0
}

// memDB is an in-memory Database used only to exercise the indexing
// pipeline in this smoke test; a real deployment wires in the
// posting-list store instead.
type memDB struct {
	replaced []string
}

func (m *memDB) ReplaceDocumentTerm(termID string, doc *schema.IndexResult, commit, wal bool) error {
	m.replaced = append(m.replaced, termID)
	return nil
}

type aggDoc map[string]interface{}

func (d aggDoc) Field(path string) []interface{} {
	if v, ok := d[path]; ok {
		return []interface{}{v}
	}
	return nil
}

type nameDoc struct{ name string }

func (d nameDoc) Values(slot uint32) []string { return []string{d.name} }
