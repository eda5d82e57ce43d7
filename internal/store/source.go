package store

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/healthvault/internal/query"
)

// Compile-time check: *DB satisfies query.Source as the fast source.
var _ query.Source = (*DB)(nil)

// Name identifies this source in result metadata.
func (db *DB) Name() string {
	return "cache"
}

// Query returns numeric sample points for the requested metrics and
// range. Filters, grouping, and pagination are the router's job; this
// source only retrieves.
func (db *DB) Query(ctx context.Context, p query.Params) (*query.Result, error) {
	sql := `SELECT start_time, metric_id, qty, unit
	 FROM health_samples
	 WHERE qty IS NOT NULL`
	args := []any{}

	if len(p.Metrics) > 0 {
		args = append(args, p.Metrics)
		sql += fmt.Sprintf(" AND metric_id = ANY($%d)", len(args))
	}
	if p.DateRange != nil {
		args = append(args, p.DateRange.Start, p.DateRange.End)
		sql += fmt.Sprintf(" AND start_time >= $%d AND start_time < $%d", len(args)-1, len(args))
	}
	sql += " ORDER BY start_time ASC"

	rows, err := db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("cache query: %w", err)
	}
	defer rows.Close()

	var points []query.TimeSeriesPoint
	for rows.Next() {
		var pt query.TimeSeriesPoint
		if err := rows.Scan(&pt.Timestamp, &pt.Metric, &pt.Value, &pt.Unit); err != nil {
			return nil, fmt.Errorf("cache scan: %w", err)
		}
		points = append(points, pt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &query.Result{
		Data:     points,
		Metadata: query.Metadata{Source: db.Name(), TotalRecords: len(points), ReturnedRecords: len(points)},
	}, nil
}

// AvailableMetrics lists raw metric identifiers present in the cache.
func (db *DB) AvailableMetrics(ctx context.Context) ([]string, error) {
	return db.DistinctMetrics(ctx)
}

// DateRange reports the cached data span.
func (db *DB) DateRange(ctx context.Context) (time.Time, time.Time, bool, error) {
	return db.SampleSpan(ctx)
}

// HasData reports whether any numeric sample matches the params.
func (db *DB) HasData(ctx context.Context, p query.Params) (bool, error) {
	sql := `SELECT EXISTS (SELECT 1 FROM health_samples WHERE qty IS NOT NULL`
	args := []any{}

	if len(p.Metrics) > 0 {
		args = append(args, p.Metrics)
		sql += fmt.Sprintf(" AND metric_id = ANY($%d)", len(args))
	}
	if p.DateRange != nil {
		args = append(args, p.DateRange.Start, p.DateRange.End)
		sql += fmt.Sprintf(" AND start_time >= $%d AND start_time < $%d", len(args)-1, len(args))
	}
	sql += ")"

	var exists bool
	if err := db.Pool.QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("cache existence check: %w", err)
	}
	return exists, nil
}
