/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package schema

import (
	"regexp"
	"strconv"
	"strings"
)

// Reserved field names recognised at the root of a field declaration,
// grounded on original_source/src/reserved.h.
const (
	ReservedValue    = "_value"
	ReservedValues   = "_values"
	ReservedAccuracy = "_accuracy"
	ReservedLanguage = "_language"
	ReservedStore    = "_store"
	ReservedIndex    = "_index"
	ReservedPrefix   = "_prefix"
	ReservedSlot     = "_slot"
)

// Errors raised while translating a document object into field specs.
type ClientError struct{ Msg string }

func (e *ClientError) Error() string { return e.Msg }

type ForeignSchemaError struct{ Msg string }

func (e *ForeignSchemaError) Error() string { return e.Msg }

type MissingTypeError struct{ Path string }

func (e *MissingTypeError) Error() string {
	return "field " + e.Path + " has no declared type and strict mode forbids detection"
}

type LimitError struct{ Msg string }

func (e *LimitError) Error() string { return e.Msg }

var (
	dateRe      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}([T ]\d{2}:\d{2}(:\d{2}(\.\d+)?)?(Z|[+-]\d{2}:?\d{2})?)?$`)
	timeRe      = regexp.MustCompile(`^\d{1,2}:\d{2}(:\d{2}(\.\d+)?)?$`)
	timedeltaRe = regexp.MustCompile(`^[+-]\d{2}:\d{2}(:\d{2}(\.\d+)?)?$`)
	uuidRe      = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
	textForbid  = regexp.MustCompile(`[^\p{L}\p{N} '._-]`)
)

// DetectConcrete classifies a leaf scalar value per spec.md §4.1's
// detection rules, honouring only the detectors enabled in det. It
// returns Empty when nothing applies and the leaf should fall through
// to strict-mode rejection (if strict) or a default (text/keyword).
func DetectConcrete(det Detection, v interface{}) ConcreteType {
	switch val := v.(type) {
	case bool:
		if det.Bool {
			return Boolean
		}
	case float64:
		if det.Numeric {
			return detectNumeric(val)
		}
	case int, int64:
		if det.Numeric {
			return Integer
		}
	case string:
		return detectString(det, val)
	case map[string]interface{}:
		if det.Geo && isGeoShape(val) {
			return Geo
		}
		return ObjectType
	case []interface{}:
		return ArrayType
	}
	return Empty
}

func detectNumeric(v float64) ConcreteType {
	if v == float64(int64(v)) {
		if v >= 0 {
			return Positive
		}
		return Integer
	}
	return Float
}

func detectString(det Detection, s string) ConcreteType {
	if det.UUID && uuidRe.MatchString(s) {
		return UUID
	}
	if det.Date && dateRe.MatchString(s) {
		return Date
	}
	if det.Time && timeRe.MatchString(s) {
		return Time
	}
	if det.Time && timedeltaRe.MatchString(s) {
		return Timedelta
	}
	if det.Term && looksLikeKeyword(s) {
		return Keyword
	}
	return Text
}

// looksLikeKeyword implements the "any uppercase character, or any
// character outside the permitted text alphabet" rule that defaults a
// string to keyword rather than free text.
func looksLikeKeyword(s string) bool {
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			return true
		}
	}
	return textForbid.MatchString(s)
}

// isGeoShape reports whether m carries the reserved EWKT/GeoJSON-style
// geometry tags the schema service recognises for geo detection.
func isGeoShape(m map[string]interface{}) bool {
	_, hasType := m["type"]
	_, hasCoords := m["coordinates"]
	if hasType && hasCoords {
		return true
	}
	_, hasEWKT := m["_ewkt"]
	return hasEWKT
}

// parseNumericString parses s, after trimming surrounding whitespace, as
// a float64, reporting false for an empty or non-numeric string. Nothing
// in this module calls it.
func parseNumericString(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
