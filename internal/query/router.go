package query

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"
)

// DefaultRecencyThresholdDays is how far back the fast source is trusted
// to be complete.
const DefaultRecencyThresholdDays = 90

// Router serves queries from the fast or complete source, splitting at
// the recency boundary when a range straddles it. Metadata calls always
// union across both sources.
type Router struct {
	fast        Source
	complete    Source
	recencyDays int
	log         *slog.Logger
	now         func() time.Time
}

// NewRouter creates a Router. recencyDays <= 0 selects the default.
func NewRouter(fast, complete Source, recencyDays int, log *slog.Logger) *Router {
	if recencyDays <= 0 {
		recencyDays = DefaultRecencyThresholdDays
	}
	return &Router{
		fast:        fast,
		complete:    complete,
		recencyDays: recencyDays,
		log:         log,
		now:         time.Now,
	}
}

// Query routes a query to the appropriate source(s) and returns the
// merged result. Filters, grouping, and pagination are applied here, on
// top of raw source data, so both halves of a split query are treated
// identically.
func (r *Router) Query(ctx context.Context, p Params) (*Result, error) {
	fetch := Params{
		DataType:  p.DataType,
		Metrics:   NormalizeMetrics(p.Metrics),
		DateRange: p.DateRange,
	}

	raw, err := r.fetch(ctx, fetch)
	if err != nil {
		return nil, err
	}

	// Canonicalize before filtering and grouping: sources are free to emit
	// raw identifiers or canonical keys, and a split query may mix both.
	// Grouping on the raw names would keep the two halves of one metric in
	// separate buckets at the boundary.
	data := raw.Data
	for i := range data {
		data[i].Metric = CanonicalMetric(data[i].Metric)
	}

	data, err = ApplyFilters(data, p.Filters)
	if err != nil {
		return nil, err
	}
	data = GroupPoints(data, p.GroupBy, p.Aggregation)

	total := len(data)
	data = paginate(data, p.Offset, p.Limit)

	return &Result{
		Data: data,
		Metadata: Metadata{
			Source:          raw.Metadata.Source,
			QueriedAt:       r.now().UTC(),
			DateRange:       p.DateRange,
			TotalRecords:    total,
			ReturnedRecords: len(data),
		},
	}, nil
}

// fetch picks the source(s) for the raw data retrieval.
func (r *Router) fetch(ctx context.Context, p Params) (*Result, error) {
	if p.DateRange == nil {
		return r.fast.Query(ctx, p)
	}

	boundary := r.now().AddDate(0, 0, -r.recencyDays)

	// Entirely older than the boundary: the fast source is never touched.
	if p.DateRange.End.Before(boundary) {
		return r.complete.Query(ctx, p)
	}

	// Entirely recent: fast serves it alone if it has the data.
	if !p.DateRange.Start.Before(boundary) {
		has, err := r.fast.HasData(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("checking fast source: %w", err)
		}
		if has {
			return r.fast.Query(ctx, p)
		}
		return r.complete.Query(ctx, p)
	}

	// Straddles the boundary: fast gets the recent half when it can serve
	// it, otherwise the complete source takes the whole range.
	recentHalf := Params{DataType: p.DataType, Metrics: p.Metrics,
		DateRange: &DateRange{Start: boundary, End: p.DateRange.End}}
	has, err := r.fast.HasData(ctx, recentHalf)
	if err != nil {
		return nil, fmt.Errorf("checking fast source: %w", err)
	}
	if !has {
		return r.complete.Query(ctx, p)
	}

	olderHalf := Params{DataType: p.DataType, Metrics: p.Metrics,
		DateRange: &DateRange{Start: p.DateRange.Start, End: boundary}}
	return r.splitQuery(ctx, olderHalf, recentHalf)
}

// splitQuery runs the two halves concurrently and joins before merging.
// If either half fails the whole query fails: silently dropping a
// historical segment would misrepresent completeness.
func (r *Router) splitQuery(ctx context.Context, older, recent Params) (*Result, error) {
	type outcome struct {
		res *Result
		err error
	}
	olderCh := make(chan outcome, 1)
	recentCh := make(chan outcome, 1)

	go func() {
		res, err := r.complete.Query(ctx, older)
		olderCh <- outcome{res, err}
	}()
	go func() {
		res, err := r.fast.Query(ctx, recent)
		recentCh <- outcome{res, err}
	}()

	olderOut := <-olderCh
	recentOut := <-recentCh
	if olderOut.err != nil {
		return nil, fmt.Errorf("complete source (split query): %w", olderOut.err)
	}
	if recentOut.err != nil {
		return nil, fmt.Errorf("fast source (split query): %w", recentOut.err)
	}

	if r.log != nil {
		r.log.Debug("split query merged",
			"older_points", len(olderOut.res.Data),
			"recent_points", len(recentOut.res.Data),
		)
	}

	// Older then recent; re-sort since completion order is not
	// guaranteed to match chronological order within each half either.
	data := append(olderOut.res.Data, recentOut.res.Data...)
	sort.SliceStable(data, func(i, j int) bool {
		return data[i].Timestamp.Before(data[j].Timestamp)
	})

	return &Result{
		Data: data,
		Metadata: Metadata{
			Source: olderOut.res.Metadata.Source + "+" + recentOut.res.Metadata.Source,
		},
	}, nil
}

// AvailableMetrics unions metric names across both sources; this is a
// metadata call and ignores the routing decision entirely.
func (r *Router) AvailableMetrics(ctx context.Context) ([]string, error) {
	fastMetrics, err := r.fast.AvailableMetrics(ctx)
	if err != nil {
		return nil, fmt.Errorf("fast source metrics: %w", err)
	}
	completeMetrics, err := r.complete.AvailableMetrics(ctx)
	if err != nil {
		return nil, fmt.Errorf("complete source metrics: %w", err)
	}

	seen := make(map[string]bool)
	var union []string
	for _, m := range append(fastMetrics, completeMetrics...) {
		key := CanonicalMetric(m)
		if !seen[key] {
			seen[key] = true
			union = append(union, key)
		}
	}
	sort.Strings(union)
	return union, nil
}

// DateRange returns the min/max union of both sources' spans.
func (r *Router) DateRange(ctx context.Context) (time.Time, time.Time, bool, error) {
	fStart, fEnd, fOK, err := r.fast.DateRange(ctx)
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("fast source range: %w", err)
	}
	cStart, cEnd, cOK, err := r.complete.DateRange(ctx)
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("complete source range: %w", err)
	}

	switch {
	case fOK && cOK:
		start, end := fStart, fEnd
		if cStart.Before(start) {
			start = cStart
		}
		if cEnd.After(end) {
			end = cEnd
		}
		return start, end, true, nil
	case fOK:
		return fStart, fEnd, true, nil
	case cOK:
		return cStart, cEnd, true, nil
	default:
		return time.Time{}, time.Time{}, false, nil
	}
}

// HasData is a logical OR across sources.
func (r *Router) HasData(ctx context.Context, p Params) (bool, error) {
	p.Metrics = NormalizeMetrics(p.Metrics)
	has, err := r.fast.HasData(ctx, p)
	if err != nil {
		return false, fmt.Errorf("fast source: %w", err)
	}
	if has {
		return true, nil
	}
	has, err = r.complete.HasData(ctx, p)
	if err != nil {
		return false, fmt.Errorf("complete source: %w", err)
	}
	return has, nil
}

func paginate(points []TimeSeriesPoint, offset, limit int) []TimeSeriesPoint {
	if offset > 0 {
		if offset >= len(points) {
			return nil
		}
		points = points[offset:]
	}
	if limit > 0 && limit < len(points) {
		points = points[:limit]
	}
	return points
}
