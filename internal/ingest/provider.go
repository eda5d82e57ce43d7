// Package ingest accepts already-parsed sample payloads at the ingestion
// boundary and writes them to the local cache. Vendor export parsing
// (XML/CSV) happens upstream; this package never sees files.
package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/claude/healthvault/internal/models"
	"github.com/claude/healthvault/internal/store"
)

// Result holds the outcome of an ingest operation.
type Result struct {
	SamplesReceived int      `json:"samples_received"`
	SamplesInserted int64    `json:"samples_inserted"`
	SamplesSkipped  int64    `json:"samples_skipped"`
	SamplesDropped  int      `json:"samples_dropped"`
	MetricsSeen     int      `json:"metrics_seen"`
	DroppedMetrics  []string `json:"dropped_metrics,omitempty"`
	Message         string   `json:"message,omitempty"`
}

// Provider stores incoming sample payloads.
type Provider struct {
	db  *store.DB
	log *slog.Logger
}

// NewProvider creates a sample ingest provider.
func NewProvider(db *store.DB, log *slog.Logger) *Provider {
	return &Provider{db: db, log: log}
}

// Ingest validates and stores a sample payload. Samples with a missing
// metric identifier or zero start time are dropped and reported, not
// rejected as errors: partial sensor corruption is routine.
func (p *Provider) Ingest(ctx context.Context, payload *models.SamplePayload) (*Result, error) {
	result := &Result{}

	var rows []models.HealthSample
	droppedSet := map[string]bool{}

	for metricID, samples := range payload.Samples {
		result.MetricsSeen++
		for _, s := range samples {
			result.SamplesReceived++

			if metricID == "" || s.StartTime.IsZero() {
				result.SamplesDropped++
				if metricID != "" && !droppedSet[metricID] {
					droppedSet[metricID] = true
					result.DroppedMetrics = append(result.DroppedMetrics, metricID)
				}
				continue
			}

			s.MetricID = metricID
			if s.EndTime.IsZero() {
				s.EndTime = s.StartTime
			}
			switch s.SourceCategory {
			case models.SourceWatch, models.SourcePhone:
			default:
				s.SourceCategory = models.SourceOther
			}
			rows = append(rows, s)
		}
	}

	if len(rows) > 0 {
		inserted, err := p.db.InsertSamples(ctx, rows)
		if err != nil {
			return result, fmt.Errorf("inserting samples: %w", err)
		}
		result.SamplesInserted = inserted
		result.SamplesSkipped = int64(len(rows)) - inserted
	}

	if result.SamplesDropped > 0 {
		result.Message = fmt.Sprintf("%d samples dropped (missing metric id or start time)", result.SamplesDropped)
		p.log.Warn("ingest dropped samples", "dropped", result.SamplesDropped)
	}

	return result, nil
}
