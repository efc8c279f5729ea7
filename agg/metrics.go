/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package agg

import (
	"math"
	"sort"
)

// metric accumulates scalar state over observed documents for one
// field, per spec.md §4.4's metric aggregator family.
type metric struct {
	name  string
	kind  string
	field string

	count    int64
	sum      float64
	sumSq    float64
	min      float64
	max      float64
	hasValue bool
	values   []float64 // retained for median/mode; bounded by caller's result set size
}

func newMetric(name, kind string, params interface{}) (Aggregation, error) {
	return &metric{name: name, kind: kind, field: fieldOf(params), min: math.Inf(1), max: math.Inf(-1)}, nil
}

func (m *metric) Name() string { return m.name }

func (m *metric) Observe(doc Document) {
	f, ok := firstFloat(doc, m.field)
	if !ok {
		return
	}
	m.count++
	m.sum += f
	m.sumSq += f * f
	m.hasValue = true
	if f < m.min {
		m.min = f
	}
	if f > m.max {
		m.max = f
	}
	if m.kind == AggMedian || m.kind == AggMode {
		m.values = append(m.values, f)
	}
}

func (m *metric) Update() {
	if m.kind == AggMedian && len(m.values) > 0 {
		sort.Float64s(m.values)
	}
}

func (m *metric) variance() float64 {
	if m.count == 0 {
		return 0
	}
	mean := m.sum / float64(m.count)
	return m.sumSq/float64(m.count) - mean*mean
}

func (m *metric) median() float64 {
	n := len(m.values)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return m.values[n/2]
	}
	return (m.values[n/2-1] + m.values[n/2]) / 2
}

func (m *metric) mode() float64 {
	if len(m.values) == 0 {
		return 0
	}
	counts := map[float64]int{}
	best, bestCount := m.values[0], 0
	for _, v := range m.values {
		counts[v]++
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return best
}

func (m *metric) Result() interface{} {
	switch m.kind {
	case AggCount:
		return map[string]interface{}{"value": m.count}
	case AggSum:
		return map[string]interface{}{"value": m.sum}
	case AggAvg:
		if m.count == 0 {
			return map[string]interface{}{"value": nil}
		}
		return map[string]interface{}{"value": m.sum / float64(m.count)}
	case AggMin:
		return singleOrNil(m.hasValue, m.min)
	case AggMax:
		return singleOrNil(m.hasValue, m.max)
	case AggVariance:
		return map[string]interface{}{"value": m.variance()}
	case AggStdDeviation:
		return map[string]interface{}{"value": math.Sqrt(m.variance())}
	case AggMedian:
		return map[string]interface{}{"value": m.median()}
	case AggMode:
		return map[string]interface{}{"value": m.mode()}
	case AggStats:
		return m.stats()
	case AggExtendedStats:
		stats := m.stats()
		stats["variance"] = m.variance()
		stats["std_deviation"] = math.Sqrt(m.variance())
		return stats
	}
	return nil
}

func singleOrNil(has bool, v float64) map[string]interface{} {
	if !has {
		return map[string]interface{}{"value": nil}
	}
	return map[string]interface{}{"value": v}
}

func (m *metric) stats() map[string]interface{} {
	avg := 0.0
	if m.count > 0 {
		avg = m.sum / float64(m.count)
	}
	min, max := m.min, m.max
	if !m.hasValue {
		min, max = 0, 0
	}
	return map[string]interface{}{
		"count": m.count,
		"min":   min,
		"max":   max,
		"avg":   avg,
		"sum":   m.sum,
	}
}

func (m *metric) GetAgg(string) (Aggregation, bool) { return nil, false }
