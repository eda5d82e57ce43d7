package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/claude/healthvault/internal/aggregate"
	"github.com/claude/healthvault/internal/models"
	"github.com/claude/healthvault/internal/query"
)

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var payload models.SamplePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	result, err := s.ingest.Ingest(r.Context(), &payload)
	if err != nil {
		s.log.Error("ingest error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var params query.Params
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	result, err := s.queries.Query(r.Context(), params)
	if err != nil {
		s.log.Error("query error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleAvailableMetrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := s.queries.AvailableMetrics(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"metrics": metrics})
}

func (s *Server) handleDateRange(w http.ResponseWriter, r *http.Request) {
	start, end, ok, err := s.queries.DateRange(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"has_data": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"has_data": true,
		"start":    start.Format(time.RFC3339),
		"end":      end.Format(time.RFC3339),
	})
}

// handleCompleteness scores the metric set unioned across both storage
// tiers, so it reports the same tier as the MCP completeness tool.
func (s *Server) handleCompleteness(w http.ResponseWriter, r *http.Request) {
	metrics, err := s.queries.AvailableMetrics(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	// The router reports canonical keys; the scorer's catalog is keyed by
	// raw identifiers.
	present := make(map[string]bool, len(metrics))
	for _, m := range metrics {
		present[aggregate.MetricIDForKey(m)] = true
	}

	start, end, ok, err := s.queries.DateRange(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if !ok {
		start, end = time.Now(), time.Now()
	}

	result := s.scorer.Score(present, start, end)
	writeJSON(w, http.StatusOK, map[string]any{
		"completeness": result,
		"tier":         s.scorer.TierFor(result).String(),
	})
}

type exportRequest struct {
	Start    string `json:"start,omitempty"`
	End      string `json:"end,omitempty"`
	ExportID string `json:"export_id,omitempty"`
}

// handleExport aggregates stored samples into daily summaries and uploads
// them to the archive. Without an explicit range, the whole stored span is
// exported.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	start, end, err := s.exportRange(r.Context(), req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	samples, err := s.db.FetchSamples(r.Context(), start, end)
	if err != nil {
		s.log.Error("export fetch error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	stats, err := s.exporter.Run(r.Context(), samples, req.ExportID)
	if err != nil {
		s.log.Error("export error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) exportRange(ctx context.Context, req exportRequest) (time.Time, time.Time, error) {
	if req.Start == "" {
		start, end, ok, err := s.db.SampleSpan(ctx)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		if !ok {
			now := time.Now()
			return now, now, nil
		}
		// End is inclusive of the last sample's day.
		return start, end.Add(24 * time.Hour), nil
	}

	start, err := parseFlexTime(req.Start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end := time.Now()
	if req.End != "" {
		end, err = parseFlexTime(req.End)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return start, end, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// parseFlexTime accepts RFC3339 or a bare date.
func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
