package aggregate

import "testing"

func TestGetStrategyKnown(t *testing.T) {
	tests := []struct {
		metricID string
		kind     Kind
		key      string
		unit     string
	}{
		{"HKQuantityTypeIdentifierHeartRate", KindAvgMinMax, "heartRate", "bpm"},
		{"HKQuantityTypeIdentifierStepCount", KindSum, "stepCount", "count"},
		{"HKQuantityTypeIdentifierBodyMass", KindLatest, "bodyMass", "kg"},
		{"HKQuantityTypeIdentifierAppleExerciseTime", KindDuration, "appleExerciseTime", "min"},
		{"HKCategoryTypeIdentifierMindfulSession", KindCount, "mindfulSession", "count"},
		{SleepAnalysisID, KindDuration, "sleep", "min"},
	}

	for _, tt := range tests {
		s := GetStrategy(tt.metricID)
		if s.Kind != tt.kind || s.CanonicalKey != tt.key || s.Unit != tt.unit {
			t.Errorf("GetStrategy(%s) = {%v %q %q}, want {%v %q %q}",
				tt.metricID, s.Kind, s.CanonicalKey, s.Unit, tt.kind, tt.key, tt.unit)
		}
	}
}

// TestGetStrategyUnknown verifies that an unlisted metric degrades to a
// plain average instead of failing the build.
func TestGetStrategyUnknown(t *testing.T) {
	s := GetStrategy("HKQuantityTypeIdentifierSomethingBrandNew")
	if s.Kind != KindAvg {
		t.Errorf("unknown metric kind = %v, want %v", s.Kind, KindAvg)
	}
	if s.CanonicalKey != "somethingBrandNew" {
		t.Errorf("unknown metric key = %q, want %q", s.CanonicalKey, "somethingBrandNew")
	}
	if s.Unit != "unknown" {
		t.Errorf("unknown metric unit = %q, want %q", s.Unit, "unknown")
	}
}

func TestCanonicalKey(t *testing.T) {
	tests := []struct {
		metricID string
		want     string
	}{
		{"HKQuantityTypeIdentifierHeartRate", "heartRate"},
		{"HKCategoryTypeIdentifierSleepAnalysis", "sleep"},
		{"HKCategoryTypeIdentifierToothbrushingEvent", "toothbrushingEvent"},
		{"HKDataTypeIdentifierCustomThing", "customThing"},
		{"alreadyShort", "alreadyShort"},
		{"Capitalized", "capitalized"},
	}

	for _, tt := range tests {
		if got := CanonicalKey(tt.metricID); got != tt.want {
			t.Errorf("CanonicalKey(%s) = %q, want %q", tt.metricID, got, tt.want)
		}
	}
}

func TestMetricIDForKeyRoundTrip(t *testing.T) {
	for _, id := range KnownMetricIDs() {
		key := CanonicalKey(id)
		if got := MetricIDForKey(key); got != id {
			t.Errorf("MetricIDForKey(%q) = %q, want %q", key, got, id)
		}
	}

	// Unknown keys pass through unchanged.
	if got := MetricIDForKey("someFutureMetric"); got != "someFutureMetric" {
		t.Errorf("MetricIDForKey(unknown) = %q, want passthrough", got)
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindSum, "sum"},
		{KindAvg, "avg"},
		{KindAvgMinMax, "avg_min_max"},
		{KindLatest, "latest"},
		{KindDuration, "duration"},
		{KindCount, "count"},
		{Kind(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
