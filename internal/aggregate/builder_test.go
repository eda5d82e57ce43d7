package aggregate

import (
	"testing"
	"time"

	"github.com/claude/healthvault/internal/models"
	"github.com/claude/healthvault/internal/score"
)

func sampleAt(day, hour int, value string, cat models.SourceCategory) models.HealthSample {
	start := time.Date(2024, 2, day, hour, 0, 0, 0, time.UTC)
	return models.HealthSample{
		Value:          value,
		StartTime:      models.SampleTime{Time: start},
		EndTime:        models.SampleTime{Time: start.Add(time.Minute)},
		SourceCategory: cat,
	}
}

func testBuilder() *Builder {
	b := NewBuilder(score.NewScorer())
	b.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	return b
}

func TestBuildDailySummaries(t *testing.T) {
	samples := map[string][]models.HealthSample{
		"HKQuantityTypeIdentifierStepCount": {
			sampleAt(1, 9, "1000", models.SourceWatch),
			sampleAt(1, 12, "500", models.SourcePhone),
			sampleAt(2, 10, "2000", models.SourceWatch),
		},
		"HKQuantityTypeIdentifierHeartRate": {
			sampleAt(1, 9, "65", models.SourceWatch),
			sampleAt(1, 10, "140", models.SourceWatch),
		},
	}

	result := testBuilder().Build(samples)

	day1 := result.DailySummaries["2024-02-01"]
	if day1 == nil {
		t.Fatal("missing summary for 2024-02-01")
	}

	steps, ok := day1["stepCount"].(Value)
	if !ok {
		t.Fatalf("stepCount entry = %T, want Value", day1["stepCount"])
	}
	if steps.Total != 1500 || steps.Count != 2 {
		t.Errorf("day1 steps = {total %v count %d}, want {1500 2}", steps.Total, steps.Count)
	}

	hr, ok := day1["heartRate"].(Value)
	if !ok {
		t.Fatalf("heartRate entry = %T, want Value", day1["heartRate"])
	}
	if hr.Min != 65 || hr.Max != 140 || hr.Avg != 102.5 {
		t.Errorf("day1 hr = {min %v max %v avg %v}", hr.Min, hr.Max, hr.Avg)
	}

	day2 := result.DailySummaries["2024-02-02"]
	if day2 == nil {
		t.Fatal("missing summary for 2024-02-02")
	}
	if _, ok := day2["heartRate"]; ok {
		t.Error("day2 has heartRate entry despite no samples; maps must stay sparse")
	}
}

func TestBuildSleepDelegation(t *testing.T) {
	samples := map[string][]models.HealthSample{
		SleepAnalysisID: {
			{
				Value:          "core",
				StartTime:      models.SampleTime{Time: time.Date(2024, 2, 1, 23, 0, 0, 0, time.UTC)},
				EndTime:        models.SampleTime{Time: time.Date(2024, 2, 2, 6, 0, 0, 0, time.UTC)},
				SourceCategory: models.SourceWatch,
			},
		},
	}

	result := testBuilder().Build(samples)

	// Attributed to the end day, stored under the "sleep" key.
	day := result.DailySummaries["2024-02-02"]
	if day == nil {
		t.Fatal("sleep summary not attributed to wake-up day")
	}
	sleep, ok := day["sleep"].(SleepSummary)
	if !ok {
		t.Fatalf("sleep entry = %T, want SleepSummary", day["sleep"])
	}
	if sleep.Core != 420 || sleep.Total != 420 {
		t.Errorf("sleep = {core %d total %d}, want {420 420}", sleep.Core, sleep.Total)
	}
}

func TestBuildDropsNonNumeric(t *testing.T) {
	samples := map[string][]models.HealthSample{
		"HKQuantityTypeIdentifierStepCount": {
			sampleAt(1, 9, "not-a-number", models.SourceWatch),
		},
	}

	result := testBuilder().Build(samples)
	if len(result.DailySummaries) != 0 {
		t.Errorf("summaries = %v, want empty", result.DailySummaries)
	}
	if len(result.Manifest.MetricsPresent) != 0 {
		t.Errorf("metricsPresent = %v, want empty", result.Manifest.MetricsPresent)
	}
}

func TestBuildManifest(t *testing.T) {
	samples := map[string][]models.HealthSample{
		"HKQuantityTypeIdentifierStepCount": {
			sampleAt(1, 9, "1000", models.SourceWatch),
			sampleAt(3, 9, "1200", models.SourceWatch),
			sampleAt(2, 9, "900", models.SourcePhone),
			sampleAt(2, 11, "300", models.SourceOther),
		},
	}

	result := testBuilder().Build(samples)
	m := result.Manifest

	if m.Version != ManifestVersion {
		t.Errorf("version = %q, want %q", m.Version, ManifestVersion)
	}
	if m.DateRange.Start != "2024-02-01" || m.DateRange.End != "2024-02-03" {
		t.Errorf("dateRange = %+v, want 2024-02-01..2024-02-03", m.DateRange)
	}
	if len(m.MetricsPresent) != 1 || m.MetricsPresent[0] != "stepCount" {
		t.Errorf("metricsPresent = %v, want [stepCount]", m.MetricsPresent)
	}
	if m.ExportDate != "2024-03-01T12:00:00Z" {
		t.Errorf("exportDate = %q", m.ExportDate)
	}
	if m.UploadDate != "" {
		t.Errorf("uploadDate = %q, want empty before upload", m.UploadDate)
	}

	if m.Sources.Watch != 50 || m.Sources.Phone != 25 || m.Sources.Other != 25 {
		t.Errorf("sources = %+v, want 50/25/25", m.Sources)
	}

	if m.Completeness.RecordCount != 4 {
		t.Errorf("recordCount = %d, want 4", m.Completeness.RecordCount)
	}
	if m.Completeness.DaysCovered != 3 {
		t.Errorf("daysCovered = %d, want 3", m.Completeness.DaysCovered)
	}
	if m.Completeness.CoreComplete {
		t.Error("coreComplete = true with a single core metric present")
	}
	if m.Completeness.Tier != "none" {
		t.Errorf("tier = %q, want none for 3 days of one metric", m.Completeness.Tier)
	}
}

func TestBuildEmptyInput(t *testing.T) {
	result := testBuilder().Build(map[string][]models.HealthSample{})
	if len(result.DailySummaries) != 0 {
		t.Errorf("summaries = %v, want empty", result.DailySummaries)
	}
	if result.Manifest.Completeness.Score != 0 {
		t.Errorf("score = %d, want 0", result.Manifest.Completeness.Score)
	}
	if result.Manifest.Sources != (SourceMix{}) {
		t.Errorf("sources = %+v, want zero", result.Manifest.Sources)
	}
}

// TestBuildLatestUsesChronologicalOrder: samples arrive unsorted; the
// latest-kind value must still be the chronologically last one.
func TestBuildLatestUsesChronologicalOrder(t *testing.T) {
	samples := map[string][]models.HealthSample{
		"HKQuantityTypeIdentifierBodyMass": {
			sampleAt(1, 20, "71.5", models.SourceOther),
			sampleAt(1, 7, "70.1", models.SourceOther),
		},
	}

	result := testBuilder().Build(samples)
	v := result.DailySummaries["2024-02-01"]["bodyMass"].(Value)
	if v.Latest != 71.5 {
		t.Errorf("latest = %v, want 71.5 (the 20:00 sample)", v.Latest)
	}
}
