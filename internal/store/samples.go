package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/claude/healthvault/internal/models"
)

// insertColumns is the per-row placeholder count for InsertSamples.
const insertColumns = 7

// insertChunkSize caps rows per INSERT statement. Postgres allows 65535
// bind parameters per statement; 5000 rows of 7 columns stays well under.
const insertChunkSize = 5000

// InsertSamples batch-inserts health samples, chunked so large ingests
// never exceed the statement parameter limit. Returns the number actually
// inserted (duplicates are skipped via ON CONFLICT DO NOTHING). The
// numeric column is left NULL for non-numeric values such as sleep
// stages; those rows still round-trip through FetchSamples for builds.
func (db *DB) InsertSamples(ctx context.Context, samples []models.HealthSample) (int64, error) {
	var inserted int64
	for _, chunk := range sampleChunks(samples, insertChunkSize) {
		n, err := db.insertChunk(ctx, chunk)
		if err != nil {
			return inserted, err
		}
		inserted += n
	}
	return inserted, nil
}

func (db *DB) insertChunk(ctx context.Context, samples []models.HealthSample) (int64, error) {
	query := `INSERT INTO health_samples (start_time, end_time, metric_id, value, qty, unit, source_category)
VALUES `
	args := make([]any, 0, len(samples)*insertColumns)
	valueStrings := make([]string, 0, len(samples))

	for i, s := range samples {
		base := i * insertColumns
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7,
		))

		var qty *float64
		if v, ok := s.NumericValue(); ok {
			qty = &v
		}
		args = append(args, s.StartTime.Time, s.EndTime.Time, s.MetricID, s.Value,
			qty, s.Unit, string(s.SourceCategory))
	}

	query += strings.Join(valueStrings, ",") + " ON CONFLICT DO NOTHING"

	tag, err := db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting health samples: %w", err)
	}
	return tag.RowsAffected(), nil
}

// sampleChunks slices a batch into insert-sized pieces without copying.
func sampleChunks(samples []models.HealthSample, size int) [][]models.HealthSample {
	if len(samples) == 0 {
		return nil
	}
	chunks := make([][]models.HealthSample, 0, (len(samples)+size-1)/size)
	for start := 0; start < len(samples); start += size {
		end := start + size
		if end > len(samples) {
			end = len(samples)
		}
		chunks = append(chunks, samples[start:end])
	}
	return chunks
}

// FetchSamples retrieves raw samples in [start, end) grouped by metric
// identifier — the summary builder's input shape.
func (db *DB) FetchSamples(ctx context.Context, start, end time.Time) (map[string][]models.HealthSample, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT start_time, end_time, metric_id, value, unit, source_category
		 FROM health_samples
		 WHERE start_time >= $1 AND start_time < $2
		 ORDER BY start_time ASC`,
		start, end)
	if err != nil {
		return nil, fmt.Errorf("querying samples: %w", err)
	}
	defer rows.Close()

	byMetric := make(map[string][]models.HealthSample)
	for rows.Next() {
		var s models.HealthSample
		var startTime, endTime time.Time
		var category string
		if err := rows.Scan(&startTime, &endTime, &s.MetricID, &s.Value, &s.Unit, &category); err != nil {
			return nil, fmt.Errorf("scanning sample: %w", err)
		}
		s.StartTime = models.SampleTime{Time: startTime}
		s.EndTime = models.SampleTime{Time: endTime}
		s.SourceCategory = models.SourceCategory(category)
		byMetric[s.MetricID] = append(byMetric[s.MetricID], s)
	}
	return byMetric, rows.Err()
}

// DistinctMetrics lists metric identifiers with at least one stored sample.
func (db *DB) DistinctMetrics(ctx context.Context) ([]string, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT DISTINCT metric_id FROM health_samples ORDER BY metric_id`)
	if err != nil {
		return nil, fmt.Errorf("querying distinct metrics: %w", err)
	}
	defer rows.Close()

	var metrics []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, fmt.Errorf("scanning metric id: %w", err)
		}
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}

// SampleSpan reports the min/max start_time across all samples.
func (db *DB) SampleSpan(ctx context.Context) (start, end time.Time, ok bool, err error) {
	var minTime, maxTime *time.Time
	err = db.Pool.QueryRow(ctx,
		`SELECT MIN(start_time), MAX(start_time) FROM health_samples`).Scan(&minTime, &maxTime)
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("querying sample span: %w", err)
	}
	if minTime == nil || maxTime == nil {
		return time.Time{}, time.Time{}, false, nil
	}
	return *minTime, *maxTime, true, nil
}

// PruneBefore deletes samples older than the cutoff, keeping the local
// cache bounded to the recency window the router trusts it for.
func (db *DB) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM health_samples WHERE start_time < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning samples: %w", err)
	}
	return tag.RowsAffected(), nil
}
