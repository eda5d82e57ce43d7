package aggregate

import (
	"encoding/json"
	"math"
)

// Value is one metric's aggregated result for one day. Which fields are
// populated depends on the strategy kind; JSON output carries only the
// fields the kind defines, and latest-kind values serialize as a bare
// number to match the archived summary format.
type Value struct {
	Kind   Kind
	Total  float64
	Avg    float64
	Min    float64
	Max    float64
	Latest float64
	Count  int
}

// MarshalJSON emits fields in byte-sorted key order so the output matches
// what a decode-into-map reencode produces; the content hasher relies on
// that for stable digests across round-trips.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindSum, KindDuration, KindCount:
		return json.Marshal(struct {
			Count int     `json:"count"`
			Total float64 `json:"total"`
		}{v.Count, v.Total})
	case KindAvgMinMax:
		return json.Marshal(struct {
			Avg   float64 `json:"avg"`
			Count int     `json:"count"`
			Max   float64 `json:"max"`
			Min   float64 `json:"min"`
		}{v.Avg, v.Count, v.Max, v.Min})
	case KindLatest:
		return json.Marshal(v.Latest)
	default:
		return json.Marshal(struct {
			Avg   float64 `json:"avg"`
			Count int     `json:"count"`
		}{v.Avg, v.Count})
	}
}

// round2 rounds to 2 decimal places, half away from zero. Summing first
// and rounding once keeps floating accumulation drift out of the result.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Aggregate collapses one day's numeric values for a metric into a single
// Value according to the strategy kind.
//
// Preconditions: values contains only finite numbers and is non-empty —
// callers omit the metric-day entirely instead of aggregating nothing.
// For KindLatest, values must already be in chronological order.
func Aggregate(values []float64, kind Kind) Value {
	switch kind {
	case KindSum, KindDuration:
		var sum float64
		for _, v := range values {
			sum += v
		}
		return Value{Kind: kind, Total: round2(sum), Count: len(values)}

	case KindCount:
		// Event metrics report their event count as both fields so every
		// total-bearing kind has a uniform response shape.
		return Value{Kind: kind, Total: float64(len(values)), Count: len(values)}

	case KindLatest:
		return Value{Kind: kind, Latest: round2(values[len(values)-1])}

	case KindAvgMinMax:
		sum := values[0]
		min := values[0]
		max := values[0]
		for _, v := range values[1:] {
			sum += v
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
		return Value{
			Kind:  kind,
			Avg:   round2(sum / float64(len(values))),
			Min:   round2(min),
			Max:   round2(max),
			Count: len(values),
		}

	default: // KindAvg, and the fallback for anything unrecognized
		var sum float64
		for _, v := range values {
			sum += v
		}
		return Value{Kind: KindAvg, Avg: round2(sum / float64(len(values))), Count: len(values)}
	}
}
