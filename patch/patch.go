/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */

// Package patch implements the RFC 6902 JSON Patch processor of
// spec.md §4.7, plus the non-standard incr/decr operations, over the
// generic map[string]interface{}/[]interface{} document tree the
// schema and indexing packages build from decoded msgpack/JSON.
// Grounded on original_source/src/msgpack_patcher.cc.
package patch

import "fmt"

// Op names, identical to the JSON string values the wire format uses.
const (
	OpAdd     = "add"
	OpRemove  = "remove"
	OpReplace = "replace"
	OpMove    = "move"
	OpCopy    = "copy"
	OpTest    = "test"
	OpIncr    = "incr"
	OpDecr    = "decr"
)

// Operation is one entry of a patch document.
type Operation struct {
	Op    string      `json:"op"`
	Path  string      `json:"path"`
	From  string      `json:"from,omitempty"`
	Value interface{} `json:"value,omitempty"`
	Limit *float64    `json:"limit,omitempty"`
}

// Error is a client-facing patch failure: a malformed patch document,
// an out-of-range path, a type mismatch, or a failed "test" assertion.
// It is distinguished from LimitError so callers can tell an incr/decr
// overshoot apart from a generic patch error, the same split the
// original makes between ClientError and LimitError.
type Error struct {
	msg string
}

func (e *Error) Error() string { return e.msg }

func errorf(format string, a ...interface{}) error {
	return &Error{msg: fmt.Sprintf(format, a...)}
}

// LimitError reports that an incr/decr operation's limit was exceeded.
type LimitError struct {
	msg string
}

func (e *LimitError) Error() string { return e.msg }

// Apply runs every operation in patch against object in order, mutating
// and returning the resulting document. object must be a
// map[string]interface{}, []interface{}, or scalar, as produced by a
// generic msgpack/JSON decode.
func Apply(patch []Operation, object interface{}) (interface{}, error) {
	root := &object
	for _, op := range patch {
		var err error
		switch op.Op {
		case OpAdd:
			err = applyAdd(root, op)
		case OpRemove:
			err = applyRemove(root, op)
		case OpReplace:
			err = applyReplace(root, op)
		case OpMove:
			err = applyMove(root, op)
		case OpCopy:
			err = applyCopy(root, op)
		case OpTest:
			err = applyTest(root, op)
		case OpIncr:
			err = applyIncr(root, op, 1)
		case OpDecr:
			err = applyIncr(root, op, -1)
		default:
			err = errorf("in patch op: %q is not a valid value", op.Op)
		}
		if err != nil {
			return object, err
		}
	}
	return *root, nil
}

func applyAdd(root *interface{}, op Operation) error {
	tokens, err := splitPointer(op.Path)
	if err != nil {
		return errorf("in patch add: %s", err)
	}
	if len(tokens) == 0 {
		return errorf("is not allowed path: ''")
	}
	target := tokens[len(tokens)-1]
	parentGet, parentSet, err := resolve(root, tokens[:len(tokens)-1])
	if err != nil {
		return errorf("in patch add: %s", err)
	}
	return addChild(parentGet, parentSet, target, op.Value)
}

func applyRemove(root *interface{}, op Operation) error {
	tokens, err := splitPointer(op.Path)
	if err != nil {
		return errorf("in patch remove: %s", err)
	}
	if len(tokens) == 0 {
		return errorf("is not allowed path: ''")
	}
	target := tokens[len(tokens)-1]
	parentGet, parentSet, err := resolve(root, tokens[:len(tokens)-1])
	if err != nil {
		return errorf("in patch remove: %s", err)
	}
	return removeChild(parentGet, parentSet, target)
}

func applyReplace(root *interface{}, op Operation) error {
	tokens, err := splitPointer(op.Path)
	if err != nil {
		return errorf("in patch replace: %s", err)
	}
	_, set, err := resolve(root, tokens)
	if err != nil {
		return errorf("in patch replace: %s", err)
	}
	return set(op.Value)
}

func applyMove(root *interface{}, op Operation) error {
	pathTokens, err := splitPointer(op.Path)
	if err != nil {
		return errorf("in patch move: %s", err)
	}
	if len(pathTokens) == 0 {
		return errorf("is not allowed path: ''")
	}
	fromTokens, err := splitPointer(op.From)
	if err != nil {
		return errorf("in patch move: %s", err)
	}
	if len(fromTokens) == 0 {
		return errorf("is not allowed from: ''")
	}

	fromGet, _, err := resolve(root, fromTokens)
	if err != nil {
		return errorf("in patch move: %s", err)
	}
	val := fromGet()

	target := pathTokens[len(pathTokens)-1]
	toGet, toSet, err := resolve(root, pathTokens[:len(pathTokens)-1])
	if err != nil {
		return errorf("in patch move: %s", err)
	}
	if err := addChild(toGet, toSet, target, val); err != nil {
		return errorf("in patch move: %s", err)
	}

	fromTarget := fromTokens[len(fromTokens)-1]
	fromParentGet, fromParentSet, err := resolve(root, fromTokens[:len(fromTokens)-1])
	if err != nil {
		return errorf("in patch move: %s", err)
	}
	return removeChild(fromParentGet, fromParentSet, fromTarget)
}

func applyCopy(root *interface{}, op Operation) error {
	pathTokens, err := splitPointer(op.Path)
	if err != nil {
		return errorf("in patch 'copy': %s", err)
	}
	if len(pathTokens) == 0 {
		return errorf("is not allowed path: ''")
	}
	fromTokens, err := splitPointer(op.From)
	if err != nil {
		return errorf("in patch 'copy': %s", err)
	}
	if len(fromTokens) == 0 {
		return errorf("is not allowed from: ''")
	}

	fromGet, _, err := resolve(root, fromTokens)
	if err != nil {
		return errorf("in patch 'copy': %s", err)
	}
	val := deepCopy(fromGet())

	target := pathTokens[len(pathTokens)-1]
	toGet, toSet, err := resolve(root, pathTokens[:len(pathTokens)-1])
	if err != nil {
		return errorf("in patch 'copy': %s", err)
	}
	return addChild(toGet, toSet, target, val)
}

func applyTest(root *interface{}, op Operation) error {
	tokens, err := splitPointer(op.Path)
	if err != nil {
		return errorf("in patch test: %s", err)
	}
	get, _, err := resolve(root, tokens)
	if err != nil {
		return errorf("in patch test: %s", err)
	}
	got := get()
	if !deepEqual(op.Value, got) {
		return errorf("in patch test: objects are not equal. expected: %v result: %v", op.Value, got)
	}
	return nil
}

// applyIncr implements both incr and decr: decr is incr with sign -1.
func applyIncr(root *interface{}, op Operation, sign float64) error {
	tokens, err := splitPointer(op.Path)
	if err != nil {
		return errorf("in patch increment: %s", err)
	}
	get, set, err := resolve(root, tokens)
	if err != nil {
		return errorf("in patch increment: %s", err)
	}
	delta, err := toFloat(op.Value)
	if err != nil {
		return errorf("in patch increment: %s", err)
	}
	delta *= sign

	raw := get()
	cur, err := toFloat(raw)
	if err != nil {
		return errorf("in patch increment: object is not numeric")
	}
	next := cur + delta

	if op.Limit != nil {
		limit := *op.Limit
		if delta < 0 {
			if next <= limit {
				return &LimitError{msg: "in patch increment: limit exceeded"}
			}
		} else if next >= limit {
			return &LimitError{msg: "in patch increment: limit exceeded"}
		}
	}
	// An integer target stays an integer unless the result is non-integral.
	if next == float64(int64(next)) {
		switch raw.(type) {
		case int:
			return set(int(next))
		case int64:
			return set(int64(next))
		}
	}
	return set(next)
}

func toFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		var f float64
		if _, err := fmt.Sscanf(n, "%g", &f); err != nil {
			return 0, errorf("%q must be string or numeric", n)
		}
		return f, nil
	default:
		return 0, errorf("value must be string or numeric")
	}
}
