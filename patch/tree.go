/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package patch

import (
	"strconv"
	"strings"
)

// splitPointer tokenizes an RFC 6901 JSON pointer ("/a/b/0") into its
// unescaped segments, decoding "~1" as "/" and "~0" as "~" per the RFC,
// the same job _tokenizer does against rapidjson's GenericPointer in
// original_source/src/msgpack_patcher.h.
func splitPointer(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	if path[0] != '/' {
		return nil, errorf("bad syntax: %q (check RFC 6901)", path)
	}
	parts := strings.Split(path[1:], "/")
	tokens := make([]string, len(parts))
	for i, p := range parts {
		p = strings.ReplaceAll(p, "~1", "/")
		p = strings.ReplaceAll(p, "~0", "~")
		tokens[i] = p
	}
	return tokens, nil
}

// resolve walks tokens from root and returns a get/set pair for the
// node at that path. set writes back through whichever container
// (map key or array index) holds the node, which is always an
// in-place operation since resolve never needs to grow or shrink an
// intermediate container — only addChild/removeChild do that, against
// the node's own parent.
func resolve(root *interface{}, tokens []string) (get func() interface{}, set func(interface{}) error, err error) {
	get = func() interface{} { return *root }
	set = func(v interface{}) error { *root = v; return nil }

	for _, t := range tokens {
		cur := get()
		switch c := cur.(type) {
		case map[string]interface{}:
			if _, ok := c[t]; !ok {
				return nil, nil, errorf("target %q not found", t)
			}
			token := t
			container := c
			get = func() interface{} { return container[token] }
			set = func(v interface{}) error { container[token] = v; return nil }
		case []interface{}:
			idx, err := strconv.Atoi(t)
			if err != nil || idx < 0 || idx >= len(c) {
				return nil, nil, errorf("target in array must be a positive integer: %q", t)
			}
			container := c
			get = func() interface{} { return container[idx] }
			set = func(v interface{}) error { container[idx] = v; return nil }
		default:
			return nil, nil, errorf("object is not array or map")
		}
	}
	return get, set, nil
}

// addChild implements _add from msgpack_patcher.h: assign into a map by
// key, or insert/append into an array by numeric index or "-".
func addChild(parentGet func() interface{}, parentSet func(interface{}) error, target string, val interface{}) error {
	switch c := parentGet().(type) {
	case map[string]interface{}:
		c[target] = val
		return nil
	case []interface{}:
		if target == "-" {
			return parentSet(append(c, val))
		}
		idx, err := strconv.Atoi(target)
		if err != nil || idx < 0 || idx > len(c) {
			return errorf("target in array must be a positive integer or '-'")
		}
		grown := make([]interface{}, len(c)+1)
		copy(grown, c[:idx])
		grown[idx] = val
		copy(grown[idx+1:], c[idx:])
		return parentSet(grown)
	default:
		return errorf("object is not array or map")
	}
}

// removeChild implements _erase.
func removeChild(parentGet func() interface{}, parentSet func(interface{}) error, target string) error {
	switch c := parentGet().(type) {
	case map[string]interface{}:
		if _, ok := c[target]; !ok {
			return errorf("target %q not found", target)
		}
		delete(c, target)
		return nil
	case []interface{}:
		idx, err := strconv.Atoi(target)
		if err != nil || idx < 0 || idx >= len(c) {
			return errorf("target in array must be a positive integer")
		}
		shrunk := make([]interface{}, 0, len(c)-1)
		shrunk = append(shrunk, c[:idx]...)
		shrunk = append(shrunk, c[idx+1:]...)
		return parentSet(shrunk)
	default:
		return errorf("object is not array or map")
	}
}

func deepCopy(v interface{}) interface{} {
	switch c := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(c))
		for k, vv := range c {
			out[k] = deepCopy(vv)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(c))
		for i, vv := range c {
			out[i] = deepCopy(vv)
		}
		return out
	default:
		return v
	}
}

func deepEqual(a, b interface{}) bool {
	switch av := a.(type) {
	case map[string]interface{}:
		bv, ok := b.(map[string]interface{})
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			if bv2, ok := bv[k]; !ok || !deepEqual(v, bv2) {
				return false
			}
		}
		return true
	case []interface{}:
		bv, ok := b.([]interface{})
		if !ok || len(av) != len(bv) {
			return false
		}
		for i, v := range av {
			if !deepEqual(v, bv[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
