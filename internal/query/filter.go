package query

import (
	"fmt"

	"github.com/claude/healthvault/internal/aggregate"
)

// NormalizeMetrics maps metric names (canonical keys or raw identifiers,
// in any mix) to raw identifiers for source lookups.
func NormalizeMetrics(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	ids := make([]string, len(names))
	for i, name := range names {
		ids[i] = aggregate.MetricIDForKey(name)
	}
	return ids
}

// CanonicalMetric returns the short key for a raw identifier, for use in
// outward-facing results.
func CanonicalMetric(metricID string) string {
	return aggregate.CanonicalKey(metricID)
}

// matches evaluates one filter against a value.
func (f Filter) matches(v float64) (bool, error) {
	switch f.Op {
	case ">":
		return v > f.Value, nil
	case "<":
		return v < f.Value, nil
	case "=":
		return v == f.Value, nil
	case ">=":
		return v >= f.Value, nil
	case "<=":
		return v <= f.Value, nil
	case "!=":
		return v != f.Value, nil
	case "between":
		return v >= f.Value && v <= f.Value2, nil
	default:
		return false, fmt.Errorf("unsupported filter operator %q", f.Op)
	}
}

// ApplyFilters drops points whose metric has a filter it does not satisfy.
// Filter keys may be canonical or raw metric names.
func ApplyFilters(points []TimeSeriesPoint, filters map[string]Filter) ([]TimeSeriesPoint, error) {
	if len(filters) == 0 {
		return points, nil
	}

	// Index filters under both name forms so callers can use either.
	byMetric := make(map[string]Filter, len(filters)*2)
	for name, f := range filters {
		byMetric[name] = f
		byMetric[CanonicalMetric(aggregate.MetricIDForKey(name))] = f
		byMetric[aggregate.MetricIDForKey(name)] = f
	}

	var out []TimeSeriesPoint
	for _, p := range points {
		f, ok := byMetric[p.Metric]
		if !ok {
			out = append(out, p)
			continue
		}
		match, err := f.matches(p.Value)
		if err != nil {
			return nil, err
		}
		if match {
			out = append(out, p)
		}
	}
	return out, nil
}
