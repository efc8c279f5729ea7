/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package schema

import (
	"fmt"
	"math"
	"sort"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/Kronuz/xapiand-core/data"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Term is a single posting-list entry produced by indexing a field:
// the wire term string (prefix + serialised value, or prefix + token
// for text) and its weight/position hints.
type Term struct {
	Value    string
	Position int
	WDF      int
}

// Value is a fixed-width, sort-preserving serialisation of a leaf
// scalar, stored under the field's value slot for range queries.
type Value struct {
	Slot uint32
	Data []byte
}

// IndexResult is what Index produces for one document: the flat term
// list, the value slots touched, the (possibly grown) schema to
// persist back through the SchemaLRU, and the Data snapshot the
// change-seq map compares/installs under the optimistic-concurrency
// protocol of spec.md §4.2.
type IndexResult struct {
	Terms  []Term
	Values []Value
	Schema *Schema
	DocID  string
	Data   *data.Data
}

// Index implements the schema service's index() write path: walk obj
// depth-first, resolve or create a FieldSpec per leaf according to
// detection rules, and emit terms/values/accuracy terms for each. A
// copy-on-write clone of schema is returned carrying any newly created
// fields; the caller installs it back into the SchemaLRU via CAS.
func Index(schema *Schema, obj map[string]interface{}, docID string) (*IndexResult, error) {
	work := schema.Clone()
	res := &IndexResult{Schema: work, DocID: docID, Data: documentData(obj)}
	usedSlots := map[uint32]bool{}
	usedPrefixes := map[string]bool{}
	for _, fs := range work.Fields {
		usedSlots[fs.Slot] = true
	}

	var walk func(path string, v interface{}) error
	walk = func(path string, v interface{}) error {
		if strings.HasPrefix(lastSegment(path), "_") {
			return nil // reserved metadata keys never become fields
		}
		switch val := v.(type) {
		case map[string]interface{}:
			if work.Detection.Geo && isGeoShape(val) {
				return indexLeaf(work, res, usedSlots, usedPrefixes, path, Geo, val)
			}
			for k, child := range val {
				if err := walk(joinPath(path, k), child); err != nil {
					return err
				}
			}
			return nil
		case []interface{}:
			for _, child := range val {
				if err := walk(path, child); err != nil {
					return err
				}
			}
			return nil
		default:
			fs, ok := work.Get(path)
			var concrete ConcreteType
			if ok {
				concrete = fs.Concrete
			} else if work.Strict {
				return &MissingTypeError{Path: path}
			} else {
				concrete = DetectConcrete(work.Detection, v)
				if concrete == Empty {
					concrete = Text
				}
			}
			return indexLeaf(work, res, usedSlots, usedPrefixes, path, concrete, v)
		}
	}

	for k, v := range obj {
		if strings.HasPrefix(k, "_") {
			continue
		}
		if err := walk(k, v); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// documentData builds the Data record a prepared document's change-seq
// snapshot is compared and installed under: obj's main representation,
// serialised as JSON (this port's stand-in for the original's MsgPack
// main object, per data/accept.go's content-type negotiation).
func documentData(obj map[string]interface{}) *data.Data {
	raw, err := json.Marshal(obj)
	if err != nil {
		return data.New()
	}
	d := data.New()
	d.SetObject(raw, false)
	return d
}

func lastSegment(path string) string {
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		return path[i+1:]
	}
	return path
}

func joinPath(base, seg string) string {
	if base == "" {
		return seg
	}
	return base + "." + seg
}

// indexLeaf resolves/creates the FieldSpec for path and appends its
// term, value and accuracy-bucket terms into res.
func indexLeaf(work *Schema, res *IndexResult, usedSlots map[uint32]bool, usedPrefixes map[string]bool, path string, concrete ConcreteType, v interface{}) error {
	fs, ok := work.Get(path)
	if !ok {
		fs = &FieldSpec{
			Path:     path,
			Kind:     KindConcrete,
			Concrete: concrete,
			Prefix:   PrefixFor(path, work.Fields, usedPrefixes),
			Slot:     SlotFor(path, usedSlots),
			Index:    DefaultIndexFlags(),
		}
		if concrete == Integer || concrete == Positive || concrete == Float || concrete == Date {
			fs.Accuracy = defaultAccuracy(concrete)
		}
		usedSlots[fs.Slot] = true
		work.Fields[path] = fs
	}

	serial, err := serialiseValue(fs.Concrete, v)
	if err != nil {
		return &ClientError{Msg: fmt.Sprintf("field %s: %v", path, err)}
	}

	if fs.Index.Terms {
		term := string(fs.Prefix) + serial
		res.Terms = append(res.Terms, Term{Value: term})
	}
	if fs.Index.Values {
		res.Values = append(res.Values, Value{Slot: fs.Slot, Data: []byte(serial)})
	}
	for i, bucket := range fs.Accuracy {
		if bucketed, ok := bucketValue(fs.Concrete, v, bucket); ok {
			prefix := fs.Prefix
			if i < len(fs.AccuracyPrefixes) {
				prefix = fs.AccuracyPrefixes[i]
			}
			res.Terms = append(res.Terms, Term{Value: string(prefix) + bucketed})
		}
	}
	return nil
}

// defaultAccuracy mirrors the schema service's default accuracy
// buckets: powers of ten for numerics, and year/month/day/hour
// truncations (seconds granularity) for dates.
func defaultAccuracy(concrete ConcreteType) []int64 {
	switch concrete {
	case Date:
		return []int64{3600, 86400, 2592000, 31536000}
	default:
		return []int64{10, 100, 1000, 10000}
	}
}

// serialiseValue produces the fixed-width, sort-preserving wire form
// stored in a value slot and used as the equality term's suffix.
func serialiseValue(concrete ConcreteType, v interface{}) (string, error) {
	switch concrete {
	case Integer, Positive:
		f, ok := asFloat(v)
		if !ok {
			return "", fmt.Errorf("expected numeric value")
		}
		return fmt.Sprintf("%020d", int64(f)), nil
	case Float:
		f, ok := asFloat(v)
		if !ok {
			return "", fmt.Errorf("expected numeric value")
		}
		return fmt.Sprintf("%+024.6f", f), nil
	case Boolean:
		b, ok := v.(bool)
		if !ok {
			return "", fmt.Errorf("expected boolean value")
		}
		if b {
			return "t", nil
		}
		return "f", nil
	default:
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("expected string value")
		}
		return s, nil
	}
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// bucketValue computes the accuracy-bucket term for one threshold by
// rounding numerics down to a multiple of the bucket. Dates, geo and
// every other type get no accuracy term.
func bucketValue(concrete ConcreteType, v interface{}, bucket int64) (string, bool) {
	switch concrete {
	case Integer, Positive, Float:
		f, ok := asFloat(v)
		if !ok || bucket == 0 {
			return "", false
		}
		rounded := math.Floor(f/float64(bucket)) * float64(bucket)
		return fmt.Sprintf("%020d", int64(rounded)), true
	case Date:
		return "", false
	}
	return "", false
}

// SortedAccuracy returns a copy of fs.Accuracy sorted ascending; it
// neither asserts nor removes duplicates, and fs is left unchanged.
func SortedAccuracy(fs *FieldSpec) []int64 {
	out := append([]int64(nil), fs.Accuracy...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
