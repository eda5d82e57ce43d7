package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// SampleTime handles the vendor export date format: "2006-01-02 15:04:05 -0700".
// Also handles date-only "2006-01-02" used in pre-aggregated exports.
type SampleTime struct {
	time.Time
}

const (
	SampleTimeLayout     = "2006-01-02 15:04:05 -0700"
	SampleDateOnlyLayout = "2006-01-02"
)

func (t *SampleTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return t.Parse(s)
}

func (t SampleTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Format(SampleTimeLayout))
}

// Parse parses a sample time string, trying full datetime first, then date-only.
func (t *SampleTime) Parse(s string) error {
	parsed, err := time.Parse(SampleTimeLayout, s)
	if err == nil {
		t.Time = parsed
		return nil
	}
	parsed, err2 := time.Parse(SampleDateOnlyLayout, s)
	if err2 == nil {
		t.Time = parsed
		return nil
	}
	return fmt.Errorf("cannot parse sample time %q: %w", s, err)
}

// SourceCategory is the de-identified device class a sample came from.
// Raw device and app names never leave the ingestion boundary; only these
// three categories appear in summaries and manifests.
type SourceCategory string

const (
	SourceWatch SourceCategory = "watch"
	SourcePhone SourceCategory = "phone"
	SourceOther SourceCategory = "other"
)

// HealthSample is a single raw measurement as delivered by the ingestion
// collaborator. Value may be non-numeric for category-typed samples
// (e.g. sleep stages), so numeric consumers must go through NumericValue.
type HealthSample struct {
	MetricID       string         `json:"metric_id"`
	Value          string         `json:"value"`
	StartTime      SampleTime     `json:"start_time"`
	EndTime        SampleTime     `json:"end_time"`
	Unit           string         `json:"unit"`
	SourceCategory SourceCategory `json:"source_category"`
}

// NumericValue parses the sample's value as a float. Returns false for
// non-numeric, NaN, or infinite values; such samples are dropped before
// aggregation rather than reported as errors.
func (s HealthSample) NumericValue() (float64, bool) {
	v, err := strconv.ParseFloat(s.Value, 64)
	if err != nil {
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// DayKey returns the calendar day of the sample's start time as YYYY-MM-DD.
func (s HealthSample) DayKey() string {
	return s.StartTime.Format(SampleDateOnlyLayout)
}

// SamplePayload is the ingestion boundary shape: already-parsed samples
// grouped by raw metric identifier.
type SamplePayload struct {
	Samples map[string][]HealthSample `json:"samples"`
}
