package query

import (
	"sort"
	"time"
)

// bucketStart truncates a timestamp to the start of its grouping bucket.
// Week buckets are 7-day spans anchored at days 1/8/15/22/29 of the
// month, not calendar-week-aligned.
func bucketStart(t time.Time, period Period) time.Time {
	switch period {
	case PeriodHour:
		return t.Truncate(time.Hour)
	case PeriodWeek:
		day := ((t.Day()-1)/7)*7 + 1
		return time.Date(t.Year(), t.Month(), day, 0, 0, 0, 0, t.Location())
	case PeriodMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	default: // PeriodDay
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	}
}

type groupKey struct {
	metric string
	bucket time.Time
}

// GroupPoints buckets points per metric and period, collapsing each
// bucket with the given aggregation op. Output is sorted by bucket time,
// then metric name, so grouped results are deterministic regardless of
// input order.
func GroupPoints(points []TimeSeriesPoint, period Period, op Op) []TimeSeriesPoint {
	if period == "" {
		return points
	}
	if op == "" {
		op = OpAvg
	}

	type accum struct {
		sum, min, max float64
		count         int
		unit          string
	}
	groups := make(map[groupKey]*accum)

	for _, p := range points {
		key := groupKey{metric: p.Metric, bucket: bucketStart(p.Timestamp, period)}
		a := groups[key]
		if a == nil {
			a = &accum{min: p.Value, max: p.Value, unit: p.Unit}
			groups[key] = a
		}
		a.sum += p.Value
		a.count++
		if p.Value < a.min {
			a.min = p.Value
		}
		if p.Value > a.max {
			a.max = p.Value
		}
	}

	out := make([]TimeSeriesPoint, 0, len(groups))
	for key, a := range groups {
		var v float64
		switch op {
		case OpSum:
			v = a.sum
		case OpMin:
			v = a.min
		case OpMax:
			v = a.max
		case OpCount:
			v = float64(a.count)
		default:
			v = a.sum / float64(a.count)
		}
		out = append(out, TimeSeriesPoint{
			Timestamp: key.bucket,
			Metric:    key.metric,
			Value:     v,
			Unit:      a.unit,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].Metric < out[j].Metric
	})
	return out
}
