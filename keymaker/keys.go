/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package keymaker

import (
	"fmt"
	"math"
	"sort"
)

// Document is the minimal per-slot multi-value accessor a Key needs;
// the indexing/query packages adapt their own document representation
// to this interface.
type Document interface {
	// Values returns the sorted StringList stored at slot, or nil if
	// the document has no value there.
	Values(slot uint32) []string
}

const (
	maxCmpValue = "\xff\xff\xff\xff\xff\xff\xff\xff"
	minCmpValue = "\x00"
)

// Key is one sub-key a MultiValueKeyMaker composes into the final sort key.
type Key interface {
	Name() string
	Slot() uint32
	Reverse() bool
	FindSmallest(doc Document) string
	FindBiggest(doc Document) string
}

type baseKey struct {
	slot    uint32
	reverse bool
}

func (b baseKey) Slot() uint32  { return b.slot }
func (b baseKey) Reverse() bool { return b.reverse }

// SerialiseKey orders by the raw lexicographic value stored in the slot.
type SerialiseKey struct {
	baseKey
}

func NewSerialiseKey(slot uint32, reverse bool) *SerialiseKey {
	return &SerialiseKey{baseKey{slot, reverse}}
}

func (k *SerialiseKey) Name() string { return "SerialiseKey" }
func (k *SerialiseKey) FindSmallest(doc Document) string {
	values := doc.Values(k.slot)
	if len(values) == 0 {
		return maxCmpValue
	}
	return values[0]
}
func (k *SerialiseKey) FindBiggest(doc Document) string {
	values := doc.Values(k.slot)
	if len(values) == 0 {
		return minCmpValue
	}
	return values[len(values)-1]
}

// numericDistanceKey shares the min-absolute-distance-to-reference
// logic used by FloatKey/IntegerKey/PositiveKey/DateKey: since the
// values are sorted ascending, the nearest value to ref is always the
// back (ref ≥ max), the front (ref ≤ min), or found by a single binary
// probe, rather than a full scan.
type numericDistanceKey struct {
	baseKey
	ref    float64
	parse  func(string) (float64, bool)
	format func(float64) string
}

func (k *numericDistanceKey) FindSmallest(doc Document) string {
	return k.find(doc, false)
}
func (k *numericDistanceKey) FindBiggest(doc Document) string {
	return k.find(doc, true)
}

func (k *numericDistanceKey) find(doc Document, biggest bool) string {
	values := doc.Values(k.slot)
	if len(values) == 0 {
		if biggest {
			return minCmpValue
		}
		return maxCmpValue
	}
	nums := make([]float64, 0, len(values))
	for _, v := range values {
		if f, ok := k.parse(v); ok {
			nums = append(nums, f)
		}
	}
	if len(nums) == 0 {
		if biggest {
			return minCmpValue
		}
		return maxCmpValue
	}
	sort.Float64s(nums)

	nearest := nearestByBinaryProbe(nums, k.ref)
	dist := math.Abs(nearest - k.ref)
	if biggest {
		// Largest distance is always at one of the two sorted ends.
		dLo := math.Abs(nums[0] - k.ref)
		dHi := math.Abs(nums[len(nums)-1] - k.ref)
		dist = math.Max(dLo, dHi)
	}
	return k.format(dist)
}

// nearestByBinaryProbe finds the value in sorted nums closest to ref
// without a full linear scan, exploiting the slot's StringList sort order.
func nearestByBinaryProbe(nums []float64, ref float64) float64 {
	if ref >= nums[len(nums)-1] {
		return nums[len(nums)-1]
	}
	if ref <= nums[0] {
		return nums[0]
	}
	i := sort.Search(len(nums), func(i int) bool { return nums[i] >= ref })
	if i == 0 {
		return nums[0]
	}
	before, after := nums[i-1], nums[i]
	if ref-before <= after-ref {
		return before
	}
	return after
}

// FloatKey orders by minimum absolute distance to a float reference.
type FloatKey struct{ numericDistanceKey }

func NewFloatKey(slot uint32, reverse bool, ref float64) *FloatKey {
	return &FloatKey{numericDistanceKey{
		baseKey: baseKey{slot, reverse}, ref: ref,
		parse:  func(s string) (float64, bool) { var f float64; _, err := fmt.Sscanf(s, "%g", &f); return f, err == nil },
		format: func(f float64) string { return fmt.Sprintf("%024.6f", f) },
	}}
}
func (k *FloatKey) Name() string { return "FloatKey" }

// IntegerKey orders by minimum absolute distance to an integer reference.
type IntegerKey struct{ numericDistanceKey }

func NewIntegerKey(slot uint32, reverse bool, ref int64) *IntegerKey {
	return &IntegerKey{numericDistanceKey{
		baseKey: baseKey{slot, reverse}, ref: float64(ref),
		parse:  func(s string) (float64, bool) { var f float64; _, err := fmt.Sscanf(s, "%g", &f); return f, err == nil },
		format: func(f float64) string { return fmt.Sprintf("%020d", int64(f)) },
	}}
}
func (k *IntegerKey) Name() string { return "IntegerKey" }

// PositiveKey orders by minimum absolute distance to a non-negative
// integer reference.
type PositiveKey struct{ numericDistanceKey }

func NewPositiveKey(slot uint32, reverse bool, ref uint64) *PositiveKey {
	return &PositiveKey{numericDistanceKey{
		baseKey: baseKey{slot, reverse}, ref: float64(ref),
		parse:  func(s string) (float64, bool) { var f float64; _, err := fmt.Sscanf(s, "%g", &f); return f, err == nil },
		format: func(f float64) string { return fmt.Sprintf("%020d", int64(f)) },
	}}
}
func (k *PositiveKey) Name() string { return "PositiveKey" }

// DateKey orders by minimum absolute distance (in seconds) to a
// reference Unix timestamp.
type DateKey struct{ numericDistanceKey }

func NewDateKey(slot uint32, reverse bool, ref float64) *DateKey {
	return &DateKey{numericDistanceKey{
		baseKey: baseKey{slot, reverse}, ref: ref,
		parse:  func(s string) (float64, bool) { var f float64; _, err := fmt.Sscanf(s, "%g", &f); return f, err == nil },
		format: func(f float64) string { return fmt.Sprintf("%024.6f", f) },
	}}
}
func (k *DateKey) Name() string { return "DateKey" }

// BoolKey has distance 0 if the reference boolean is present in the
// slot's values, else 1.
type BoolKey struct {
	baseKey
	ref string
}

func NewBoolKey(slot uint32, reverse bool, ref bool) *BoolKey {
	v := "f"
	if ref {
		v = "t"
	}
	return &BoolKey{baseKey{slot, reverse}, v}
}
func (k *BoolKey) Name() string { return "BoolKey" }
func (k *BoolKey) FindSmallest(doc Document) string { return k.distance(doc) }
func (k *BoolKey) FindBiggest(doc Document) string  { return k.distance(doc) }
func (k *BoolKey) distance(doc Document) string {
	for _, v := range doc.Values(k.slot) {
		if v == k.ref {
			return "0"
		}
	}
	return "1"
}

// Centroid is a point on the unit sphere used by GeoKey's great-circle
// distance computation.
type Centroid struct{ X, Y, Z float64 }

func (c Centroid) angle(o Centroid) float64 {
	dot := c.X*o.X + c.Y*o.Y + c.Z*o.Z
	if dot > 1 {
		dot = 1
	}
	if dot < -1 {
		dot = -1
	}
	return math.Acos(dot)
}

// GeoKey orders by the minimum great-circle angle between a reference
// centroid set and the document's centroids, π when the document has none.
type GeoKey struct {
	baseKey
	centroids []Centroid
	decode    func(string) (Centroid, bool)
}

func NewGeoKey(slot uint32, reverse bool, centroids []Centroid, decode func(string) (Centroid, bool)) *GeoKey {
	return &GeoKey{baseKey{slot, reverse}, centroids, decode}
}
func (k *GeoKey) Name() string { return "GeoKey" }

func (k *GeoKey) FindSmallest(doc Document) string { return k.find(doc, false) }
func (k *GeoKey) FindBiggest(doc Document) string  { return k.find(doc, true) }

func (k *GeoKey) find(doc Document, biggest bool) string {
	values := doc.Values(k.slot)
	best := math.Pi
	if biggest {
		best = 0
	}
	found := false
	for _, raw := range values {
		c, ok := k.decode(raw)
		if !ok {
			continue
		}
		for _, ref := range k.centroids {
			a := ref.angle(c)
			if (!biggest && a < best) || (biggest && a > best) {
				best = a
				found = true
			}
		}
	}
	if !found && len(values) == 0 {
		best = math.Pi
	}
	return fmt.Sprintf("%024.12f", best)
}

// StringKeyOf wraps any StringMetric as a Key, mirroring the
// original's StringKey<Metric> template.
type StringKeyOf struct {
	baseKey
	metric StringMetric
}

func NewStringKey(slot uint32, reverse bool, metric StringMetric) *StringKeyOf {
	return &StringKeyOf{baseKey{slot, reverse}, metric}
}
func (k *StringKeyOf) Name() string { return k.metric.Name() }

func (k *StringKeyOf) FindSmallest(doc Document) string {
	values := doc.Values(k.slot)
	if len(values) == 0 {
		return maxCmpValue
	}
	min := math.MaxFloat64
	for _, v := range values {
		d := k.metric.Distance(v)
		if d < min {
			min = d
		}
	}
	return fmt.Sprintf("%024.12f", min)
}

func (k *StringKeyOf) FindBiggest(doc Document) string {
	values := doc.Values(k.slot)
	if len(values) == 0 {
		return minCmpValue
	}
	max := -math.MaxFloat64
	for _, v := range values {
		d := k.metric.Distance(v)
		if d > max {
			max = d
		}
	}
	return fmt.Sprintf("%024.12f", max)
}
