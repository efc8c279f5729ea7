/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package querydsl

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Kronuz/xapiand-core/schema"
)

// Reserved DSL operator names, grounded on query_dsl.h and
// original_source/src/reserved.h's query-side reserved words.
const (
	opAnd          = "_and"
	opOr           = "_or"
	opAndNot       = "_and_not"
	opAndMaybe     = "_and_maybe"
	opFilter       = "_filter"
	opScaleWeight  = "_scale_weight"
	opIn           = "_in"
	opRange        = "_range"
	opRangeFrom    = "_from"
	opRangeTo      = "_to"
	opSort         = "_sort"
	opOffset       = "_offset"
	opLimit        = "_limit"
	opCheckAtLeast = "_check_at_least"
	opQuery        = "_query"
)

// Compile translates a decoded DSL object into a Compiled query tree,
// resolving field leaves against s. Grounded on QueryDSL::get_query /
// QueryDSL::process in original_source/src/query_dsl.h.
func Compile(s *schema.Schema, obj map[string]interface{}) (*Compiled, error) {
	c := &Compiled{Limit: -1, Offset: 0, CheckAtLeast: -1}
	q, err := compileObject(s, "", obj, OpAnd, c)
	if err != nil {
		return nil, err
	}
	if q == nil {
		q = MatchAll()
	}
	c.Query = q
	return c, nil
}

func compileObject(s *schema.Schema, path string, obj map[string]interface{}, defaultOp Op, c *Compiled) (*Query, error) {
	var parts []*Query
	for key, val := range obj {
		switch key {
		case opAnd:
			q, err := compileOperandList(s, path, val, OpAnd, c)
			if err != nil {
				return nil, err
			}
			parts = append(parts, q)
		case opOr:
			q, err := compileOperandList(s, path, val, OpOr, c)
			if err != nil {
				return nil, err
			}
			parts = append(parts, q)
		case opAndNot:
			q, err := compilePair(s, path, val, AndNot, c)
			if err != nil {
				return nil, err
			}
			parts = append(parts, q)
		case opAndMaybe:
			q, err := compilePair(s, path, val, AndMaybe, c)
			if err != nil {
				return nil, err
			}
			parts = append(parts, q)
		case opFilter:
			q, err := compilePair(s, path, val, Filter, c)
			if err != nil {
				return nil, err
			}
			parts = append(parts, q)
		case opScaleWeight:
			q, err := compileScaleWeight(s, path, val, c)
			if err != nil {
				return nil, err
			}
			parts = append(parts, q)
		case opIn:
			q, err := compileIn(s, path, val)
			if err != nil {
				return nil, err
			}
			parts = append(parts, q)
		case opRange:
			q, err := compileRange(path, val)
			if err != nil {
				return nil, err
			}
			parts = append(parts, q)
		case opQuery:
			sub, ok := val.(map[string]interface{})
			if !ok {
				return nil, &QueryDslError{Msg: "_query expects an object"}
			}
			q, err := compileObject(s, path, sub, defaultOp, c)
			if err != nil {
				return nil, err
			}
			parts = append(parts, q)
		case opSort:
			if err := compileSort(val, c); err != nil {
				return nil, err
			}
		case opOffset:
			n, ok := asInt(val)
			if !ok {
				return nil, &InvalidArgumentError{Msg: "_offset must be numeric"}
			}
			c.Offset = n
		case opLimit:
			n, ok := asInt(val)
			if !ok {
				return nil, &InvalidArgumentError{Msg: "_limit must be numeric"}
			}
			c.Limit = n
		case opCheckAtLeast:
			n, ok := asInt(val)
			if !ok {
				return nil, &InvalidArgumentError{Msg: "_check_at_least must be numeric"}
			}
			c.CheckAtLeast = n
		default:
			q, err := compileLeaf(s, joinPath(path, key), val)
			if err != nil {
				return nil, err
			}
			parts = append(parts, q)
		}
	}
	return combine(defaultOp, parts), nil
}

func combine(op Op, parts []*Query) *Query {
	switch len(parts) {
	case 0:
		return nil
	case 1:
		return parts[0]
	default:
		return &Query{Op: op, Children: parts}
	}
}

func compileOperandList(s *schema.Schema, path string, val interface{}, op Op, c *Compiled) (*Query, error) {
	arr, ok := val.([]interface{})
	if !ok {
		return nil, &ClientError{Msg: fmt.Sprintf("%v expects an array of operands", op)}
	}
	if len(arr) < 2 {
		return nil, &ClientError{Msg: "combinator requires at least two operands"}
	}
	var parts []*Query
	for _, item := range arr {
		sub, ok := item.(map[string]interface{})
		if !ok {
			return nil, &ClientError{Msg: "combinator operand must be an object"}
		}
		q, err := compileObject(s, path, sub, OpAnd, c)
		if err != nil {
			return nil, err
		}
		if q != nil {
			parts = append(parts, q)
		}
	}
	return &Query{Op: op, Children: parts}, nil
}

func compilePair(s *schema.Schema, path string, val interface{}, build func(a, b *Query) *Query, c *Compiled) (*Query, error) {
	arr, ok := val.([]interface{})
	if !ok || len(arr) != 2 {
		return nil, &ClientError{Msg: "binary combinator requires exactly two operands"}
	}
	var qs [2]*Query
	for i, item := range arr {
		sub, ok := item.(map[string]interface{})
		if !ok {
			return nil, &ClientError{Msg: "combinator operand must be an object"}
		}
		q, err := compileObject(s, path, sub, OpAnd, c)
		if err != nil {
			return nil, err
		}
		if q == nil {
			q = MatchAll()
		}
		qs[i] = q
	}
	return build(qs[0], qs[1]), nil
}

func compileScaleWeight(s *schema.Schema, path string, val interface{}, c *Compiled) (*Query, error) {
	m, ok := val.(map[string]interface{})
	if !ok {
		return nil, &ClientError{Msg: "_scale_weight expects an object with weight and query"}
	}
	weight, _ := asFloat(m["weight"])
	sub, ok := m["query"].(map[string]interface{})
	if !ok {
		return nil, &ClientError{Msg: "_scale_weight requires a query operand"}
	}
	q, err := compileObject(s, path, sub, OpAnd, c)
	if err != nil {
		return nil, err
	}
	if q == nil {
		q = MatchAll()
	}
	return ScaleWeight(q, weight), nil
}

// compileLeaf handles {field: value}: either an equality/range scalar
// leaf or a namespace disjunction. A nested object under a field name
// is not a supported shape (operators are always top-level keys).
func compileLeaf(s *schema.Schema, path string, val interface{}) (*Query, error) {
	if _, ok := val.(map[string]interface{}); ok {
		return nil, &QueryDslError{Msg: fmt.Sprintf("field %q cannot take an object value", path)}
	}

	if str, ok := val.(string); ok {
		if lo, hi, ok := splitRangeLiteral(str); ok {
			var fromPtr, toPtr *string
			if lo != "" {
				fromPtr = &lo
			}
			if hi != "" {
				toPtr = &hi
			}
			return Range(path, fromPtr, toPtr), nil
		}
	}

	fs, ok := s.Get(path)
	if !ok {
		return Term(path, fmt.Sprint(val)), nil
	}
	if fs.Namespace {
		return compileNamespaceEquality(s, path, val), nil
	}
	return Term(path, serialiseLiteral(fs, val)), nil
}

// compileNamespaceEquality emits an OR across every prefix a
// namespace=true field has been observed with, per spec.md §4.1/4.3.
func compileNamespaceEquality(s *schema.Schema, path string, val interface{}) *Query {
	var parts []*Query
	for p, fs := range s.Fields {
		if !fs.Namespace {
			continue
		}
		if p == path || strings.HasPrefix(p, path+".") || strings.HasPrefix(path, p+".") {
			parts = append(parts, Term(p, serialiseLiteral(fs, val)))
		}
	}
	if len(parts) == 0 {
		return Term(path, fmt.Sprint(val))
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].Field < parts[j].Field })
	return Or(parts...)
}

func serialiseLiteral(fs *schema.FieldSpec, val interface{}) string {
	switch v := val.(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		if v {
			return "t"
		}
		return "f"
	default:
		return fmt.Sprint(v)
	}
}

// splitRangeLiteral recognises the "lo..hi" range string form, with
// either end optionally empty for an open bound.
func splitRangeLiteral(s string) (lo, hi string, ok bool) {
	idx := strings.Index(s, "..")
	if idx < 0 {
		return "", "", false
	}
	return s[:idx], s[idx+2:], true
}

func compileRange(path string, val interface{}) (*Query, error) {
	m, ok := val.(map[string]interface{})
	if !ok {
		return nil, &ClientError{Msg: "_range expects an object with _from/_to"}
	}
	var from, to *string
	if v, ok := m[opRangeFrom]; ok {
		s := fmt.Sprint(v)
		from = &s
	}
	if v, ok := m[opRangeTo]; ok {
		s := fmt.Sprint(v)
		to = &s
	}
	return Range(path, from, to), nil
}

func compileIn(s *schema.Schema, path string, val interface{}) (*Query, error) {
	m, ok := val.(map[string]interface{})
	if !ok {
		return nil, &ClientError{Msg: "_in expects {field: [values...]}"}
	}
	for field, raw := range m {
		arr, ok := raw.([]interface{})
		if !ok {
			return nil, &ClientError{Msg: "_in values must be an array"}
		}
		values := make([]string, 0, len(arr))
		allNumeric := true
		nums := make([]float64, 0, len(arr))
		for _, item := range arr {
			values = append(values, fmt.Sprint(item))
			f, isNum := asFloat(item)
			if !isNum {
				allNumeric = false
			} else {
				nums = append(nums, f)
			}
		}
		if allNumeric && isContiguous(nums) {
			sort.Float64s(nums)
			lo := strconv.FormatFloat(nums[0], 'f', -1, 64)
			hi := strconv.FormatFloat(nums[len(nums)-1], 'f', -1, 64)
			return Range(joinPath(path, field), &lo, &hi), nil
		}
		terms := make([]*Query, 0, len(values))
		for _, v := range values {
			terms = append(terms, Term(joinPath(path, field), v))
		}
		return Or(terms...), nil
	}
	return nil, &ClientError{Msg: "_in requires at least one field"}
}

func isContiguous(nums []float64) bool {
	if len(nums) < 2 {
		return false
	}
	sorted := append([]float64(nil), nums...)
	sort.Float64s(sorted)
	for i := 1; i < len(sorted); i++ {
		if sorted[i]-sorted[i-1] != 1 {
			return false
		}
	}
	return true
}

func compileSort(val interface{}, c *Compiled) error {
	switch v := val.(type) {
	case string:
		c.Sort = append(c.Sort, parseSortEntry(v))
	case []interface{}:
		for _, item := range v {
			str, ok := item.(string)
			if !ok {
				return &ClientError{Msg: "_sort entries must be strings"}
			}
			c.Sort = append(c.Sort, parseSortEntry(str))
		}
	default:
		return &ClientError{Msg: "_sort must be a string or array of strings"}
	}
	return nil
}

func parseSortEntry(s string) SortKey {
	if strings.HasPrefix(s, "-") {
		return SortKey{Field: s[1:], Reverse: true}
	}
	return SortKey{Field: s}
}

func joinPath(base, seg string) string {
	if base == "" {
		return seg
	}
	return base + "." + seg
}

func asInt(v interface{}) (int, bool) {
	f, ok := asFloat(v)
	if !ok {
		return 0, false
	}
	return int(f), true
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
