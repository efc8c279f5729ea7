/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package querydsl

import (
	"fmt"
	"strconv"
)

// Evaluate walks a compiled query tree against a document's decoded
// field values, standing in for the boolean match Xapian::Query would
// perform over the real posting lists (out of scope, spec.md §1). It
// is used wherever a query needs to gate something in-process instead
// of reaching the engine, e.g. a `_filter` aggregation's predicate.
func Evaluate(q *Query, field func(path string) []interface{}) bool {
	if q == nil {
		return true
	}
	switch q.Op {
	case OpMatchAll:
		return true
	case OpMatchNothing:
		return false
	case OpAnd, OpEliteSet:
		return evalAll(q.Children, field, q.Op == OpEliteSet)
	case OpOr:
		return evalAll(q.Children, field, true)
	case OpAndNot:
		return Evaluate(q.Children[0], field) && !Evaluate(q.Children[1], field)
	case OpAndMaybe, OpFilter, OpScaleWeight:
		// AND_MAYBE's optional operand only contributes weight; FILTER's
		// right operand narrows the match same as AND; ScaleWeight wraps
		// a single operand and never changes whether it matched.
		if q.Op == OpFilter {
			return Evaluate(q.Children[0], field) && Evaluate(q.Children[1], field)
		}
		return Evaluate(q.Children[0], field)
	case OpTerm:
		return anyMatches(field(q.Field), func(v interface{}) bool {
			return fmt.Sprint(v) == q.Term
		})
	case OpRange:
		return anyMatches(field(q.Field), func(v interface{}) bool { return inRange(v, q.RangeFrom, q.RangeTo) })
	case OpIn:
		return anyMatches(field(q.Field), func(v interface{}) bool {
			for _, want := range q.InValues {
				if fmt.Sprint(v) == want {
					return true
				}
			}
			return false
		})
	}
	return false
}

// evalAll reports whether children satisfy the combinator: all of them
// for AND-like ops, any of them when or is true (OR, EliteSet's
// best-effort approximation of "enough of the elite set matched").
func evalAll(children []*Query, field func(path string) []interface{}, or bool) bool {
	if len(children) == 0 {
		return true
	}
	for _, c := range children {
		matched := Evaluate(c, field)
		if or && matched {
			return true
		}
		if !or && !matched {
			return false
		}
	}
	return !or
}

func anyMatches(values []interface{}, pred func(interface{}) bool) bool {
	for _, v := range values {
		if pred(v) {
			return true
		}
	}
	return false
}

// inRange reports whether v falls within [from, to], parsing both the
// bound strings and v numerically when possible and falling back to
// lexicographic string comparison otherwise (dates/terms use the same
// sortable-string encoding on both sides, per schema/index.go's
// serialiseValue).
func inRange(v interface{}, from, to *string) bool {
	s := fmt.Sprint(v)
	f, isNum := asFloat(v)
	if from != nil {
		if fromNum, err := strconv.ParseFloat(*from, 64); isNum && err == nil {
			if f < fromNum {
				return false
			}
		} else if s < *from {
			return false
		}
	}
	if to != nil {
		if toNum, err := strconv.ParseFloat(*to, 64); isNum && err == nil {
			if f > toNum {
				return false
			}
		} else if s > *to {
			return false
		}
	}
	return true
}
