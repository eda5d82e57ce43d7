package aggregate

import (
	"testing"
	"time"

	"github.com/claude/healthvault/internal/models"
)

func mkTime(day int, hour, min int) time.Time {
	return time.Date(2024, 1, day, hour, min, 0, 0, time.UTC)
}

// TestAggregateSleepNight covers a full night spanning midnight: every
// interval ends on Jan 11, so the whole session is attributed to the
// morning the sleeper woke up.
func TestAggregateSleepNight(t *testing.T) {
	intervals := []SleepInterval{
		{Start: mkTime(10, 22, 30), End: mkTime(11, 6, 30), Value: "HKCategoryValueSleepAnalysisInBed"},
		{Start: mkTime(10, 22, 45), End: mkTime(11, 2, 20), Value: "HKCategoryValueSleepAnalysisAsleepCore"},
		{Start: mkTime(11, 2, 20), End: mkTime(11, 4, 50), Value: "HKCategoryValueSleepAnalysisAsleepDeep"},
		{Start: mkTime(11, 4, 50), End: mkTime(11, 6, 20), Value: "HKCategoryValueSleepAnalysisAsleepREM"},
		{Start: mkTime(11, 6, 20), End: mkTime(11, 6, 30), Value: "HKCategoryValueSleepAnalysisAwake"},
	}

	days := AggregateSleep(intervals)
	if len(days) != 1 {
		t.Fatalf("got %d days, want 1: %v", len(days), days)
	}

	s, ok := days["2024-01-11"]
	if !ok {
		t.Fatalf("summary not attributed to wake-up day: %v", days)
	}

	if s.InBed != 480 {
		t.Errorf("inBed = %d, want 480", s.InBed)
	}
	if s.Core != 215 {
		t.Errorf("core = %d, want 215", s.Core)
	}
	if s.Deep != 150 {
		t.Errorf("deep = %d, want 150", s.Deep)
	}
	if s.REM != 90 {
		t.Errorf("rem = %d, want 90", s.REM)
	}
	if s.Awake != 10 {
		t.Errorf("awake = %d, want 10", s.Awake)
	}
	if s.Total != 455 {
		t.Errorf("total = %d, want 455", s.Total)
	}
	if s.Total != s.Core+s.Deep+s.REM {
		t.Errorf("total %d != core+deep+rem %d", s.Total, s.Core+s.Deep+s.REM)
	}
	if s.Efficiency == nil {
		t.Fatal("efficiency missing despite in-bed time")
	}
	if *s.Efficiency != 0.95 {
		t.Errorf("efficiency = %v, want 0.95", *s.Efficiency)
	}
}

// TestAggregateSleepEndDayAttribution: an interval entirely before
// midnight stays on its own day, one crossing midnight moves to the next.
func TestAggregateSleepEndDayAttribution(t *testing.T) {
	intervals := []SleepInterval{
		{Start: mkTime(10, 21, 0), End: mkTime(10, 23, 0), Value: "core"},  // ends Jan 10
		{Start: mkTime(10, 23, 30), End: mkTime(11, 1, 30), Value: "core"}, // ends Jan 11
	}

	days := AggregateSleep(intervals)
	if days["2024-01-10"].Core != 120 {
		t.Errorf("Jan 10 core = %d, want 120", days["2024-01-10"].Core)
	}
	if days["2024-01-11"].Core != 120 {
		t.Errorf("Jan 11 core = %d, want 120", days["2024-01-11"].Core)
	}
}

func TestAggregateSleepUnknownStageDropped(t *testing.T) {
	intervals := []SleepInterval{
		{Start: mkTime(10, 22, 0), End: mkTime(10, 23, 0), Value: "mystery"},
	}
	if days := AggregateSleep(intervals); len(days) != 0 {
		t.Errorf("unknown stage produced a summary: %v", days)
	}
}

// TestAggregateSleepRoundsAfterSummation: two 24-second segments sum to
// 0.8 minutes and round to 1; rounding each segment first would give 0.
func TestAggregateSleepRoundsAfterSummation(t *testing.T) {
	base := time.Date(2024, 1, 10, 23, 0, 0, 0, time.UTC)
	intervals := []SleepInterval{
		{Start: base, End: base.Add(24 * time.Second), Value: "deep"},
		{Start: base.Add(time.Minute), End: base.Add(time.Minute + 24*time.Second), Value: "deep"},
	}

	days := AggregateSleep(intervals)
	if got := days["2024-01-10"].Deep; got != 1 {
		t.Errorf("deep = %d, want 1 (rounded once after summation)", got)
	}
}

func TestAggregateSleepNoInBedNoEfficiency(t *testing.T) {
	intervals := []SleepInterval{
		{Start: mkTime(10, 23, 0), End: mkTime(11, 6, 0), Value: "core"},
	}
	days := AggregateSleep(intervals)
	s := days["2024-01-11"]
	if s.Efficiency != nil {
		t.Errorf("efficiency = %v, want nil without in-bed time", *s.Efficiency)
	}
	if s.Total != 420 {
		t.Errorf("total = %d, want 420", s.Total)
	}
}

func TestSleepIntervalsFromSamples(t *testing.T) {
	samples := []models.HealthSample{
		{
			Value:     "deep",
			StartTime: models.SampleTime{Time: mkTime(10, 23, 0)},
			EndTime:   models.SampleTime{Time: mkTime(11, 1, 0)},
		},
	}
	intervals := SleepIntervalsFromSamples(samples)
	if len(intervals) != 1 {
		t.Fatalf("got %d intervals, want 1", len(intervals))
	}
	iv := intervals[0]
	if iv.Value != "deep" || !iv.Start.Equal(mkTime(10, 23, 0)) || !iv.End.Equal(mkTime(11, 1, 0)) {
		t.Errorf("interval = %+v", iv)
	}
}
