package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/claude/healthvault/internal/aggregate"
	"github.com/claude/healthvault/internal/models"
	"github.com/claude/healthvault/internal/query"
)

// DataTypeDailySummary tags archived summary payloads.
const DataTypeDailySummary = "daily_summary"

// Metadata keys recorded on summary objects at upload time.
const (
	MetaRangeStart = "range_start"
	MetaRangeEnd   = "range_end"
	MetaExportID   = "export_id"
)

// Source serves queries from archived daily summaries — the complete,
// authoritative history behind the recency boundary.
type Source struct {
	client *Client
	log    *slog.Logger
}

// Compile-time check: *Source satisfies query.Source.
var _ query.Source = (*Source)(nil)

// NewSource creates an archive-backed query source.
func NewSource(client *Client, log *slog.Logger) *Source {
	return &Source{client: client, log: log}
}

// Name identifies this source in result metadata.
func (s *Source) Name() string {
	return "archive"
}

// Query lists summary objects overlapping the requested range, fetches
// their payloads in parallel, and flattens matching daily values into
// points. Fetch completion order is arbitrary, so the merged points are
// re-sorted by timestamp before returning. Any failed fetch fails the
// whole query; a partially-served archive read must not look complete.
func (s *Source) Query(ctx context.Context, p query.Params) (*query.Result, error) {
	refs, err := s.overlappingRefs(ctx, p.DateRange)
	if err != nil {
		return nil, err
	}

	wantKeys := canonicalSet(p.Metrics)

	type outcome struct {
		points []query.TimeSeriesPoint
		err    error
	}
	results := make(chan outcome, len(refs))

	for _, ref := range refs {
		go func(ref ObjectRef) {
			points, err := s.fetchPoints(ctx, ref, p.DateRange, wantKeys)
			results <- outcome{points, err}
		}(ref)
	}

	var points []query.TimeSeriesPoint
	for range refs {
		out := <-results
		if out.err != nil {
			return nil, out.err
		}
		points = append(points, out.points...)
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})

	if s.log != nil {
		s.log.Debug("archive query", "objects", len(refs), "points", len(points))
	}

	return &query.Result{
		Data:     points,
		Metadata: query.Metadata{Source: s.Name(), TotalRecords: len(points), ReturnedRecords: len(points)},
	}, nil
}

// fetchPoints downloads one summary object and extracts matching points.
func (s *Source) fetchPoints(ctx context.Context, ref ObjectRef, dr *query.DateRange, wantKeys map[string]bool) ([]query.TimeSeriesPoint, error) {
	payload, _, err := s.client.Download(ctx, ref.URI)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", ref.URI, err)
	}

	var build aggregate.BuildResult
	if err := json.Unmarshal(payload, &build); err != nil {
		return nil, fmt.Errorf("decoding summary %s: %w", ref.URI, err)
	}

	var points []query.TimeSeriesPoint
	for dayKey, metrics := range build.DailySummaries {
		day, err := time.Parse(models.SampleDateOnlyLayout, dayKey)
		if err != nil {
			continue
		}
		if dr != nil && (day.Before(dr.Start) || !day.Before(dr.End)) {
			continue
		}

		for key, raw := range metrics {
			if len(wantKeys) > 0 && !wantKeys[key] {
				continue
			}
			v, ok := scalarValue(raw)
			if !ok {
				continue
			}
			points = append(points, query.TimeSeriesPoint{
				Timestamp: day,
				Metric:    key,
				Value:     v,
				Unit:      aggregate.GetStrategy(aggregate.MetricIDForKey(key)).Unit,
			})
		}
	}
	return points, nil
}

// scalarValue picks the representative number out of a decoded daily
// value: latest-kind values are bare numbers, total-bearing kinds carry
// "total" (sleep summaries included), and avg kinds carry "avg".
func scalarValue(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case map[string]any:
		if total, ok := v["total"].(float64); ok {
			return total, true
		}
		if avg, ok := v["avg"].(float64); ok {
			return avg, true
		}
	}
	return 0, false
}

// AvailableMetrics unions metricsPresent across archived manifests using
// the list metadata; payloads are not downloaded for this.
func (s *Source) AvailableMetrics(ctx context.Context) ([]string, error) {
	refs, err := s.client.List(ctx, DataTypeDailySummary)
	if err != nil {
		return nil, fmt.Errorf("listing archive: %w", err)
	}

	seen := make(map[string]bool)
	var metrics []string
	for _, ref := range refs {
		for _, key := range splitMetricList(ref.Metadata["metrics"]) {
			if !seen[key] {
				seen[key] = true
				metrics = append(metrics, key)
			}
		}
	}
	sort.Strings(metrics)
	return metrics, nil
}

// DateRange reports the min/max day span across archived objects.
func (s *Source) DateRange(ctx context.Context) (time.Time, time.Time, bool, error) {
	refs, err := s.client.List(ctx, DataTypeDailySummary)
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("listing archive: %w", err)
	}

	var start, end time.Time
	found := false
	for _, ref := range refs {
		rs, err1 := time.Parse(models.SampleDateOnlyLayout, ref.Metadata[MetaRangeStart])
		re, err2 := time.Parse(models.SampleDateOnlyLayout, ref.Metadata[MetaRangeEnd])
		if err1 != nil || err2 != nil {
			continue
		}
		if !found || rs.Before(start) {
			start = rs
		}
		if !found || re.After(end) {
			end = re
		}
		found = true
	}
	return start, end, found, nil
}

// HasData reports whether any archived object overlaps the params.
func (s *Source) HasData(ctx context.Context, p query.Params) (bool, error) {
	refs, err := s.overlappingRefs(ctx, p.DateRange)
	if err != nil {
		return false, err
	}
	return len(refs) > 0, nil
}

// overlappingRefs lists summary objects whose recorded day range
// intersects the query range (all of them when no range is given).
func (s *Source) overlappingRefs(ctx context.Context, dr *query.DateRange) ([]ObjectRef, error) {
	refs, err := s.client.List(ctx, DataTypeDailySummary)
	if err != nil {
		return nil, fmt.Errorf("listing archive: %w", err)
	}
	if dr == nil {
		return refs, nil
	}

	var matched []ObjectRef
	for _, ref := range refs {
		rs, err1 := time.Parse(models.SampleDateOnlyLayout, ref.Metadata[MetaRangeStart])
		re, err2 := time.Parse(models.SampleDateOnlyLayout, ref.Metadata[MetaRangeEnd])
		if err1 != nil || err2 != nil {
			// No usable range metadata: fetch it rather than risk a gap.
			matched = append(matched, ref)
			continue
		}
		// Object covers [rs, re] inclusive; query range is [Start, End).
		if re.Before(dr.Start) || !rs.Before(dr.End) {
			continue
		}
		matched = append(matched, ref)
	}
	return matched, nil
}

func canonicalSet(metrics []string) map[string]bool {
	if len(metrics) == 0 {
		return nil
	}
	set := make(map[string]bool, len(metrics))
	for _, m := range metrics {
		set[aggregate.CanonicalKey(m)] = true
	}
	return set
}

func splitMetricList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
