package models

import "testing"

func TestClassifySleepStage(t *testing.T) {
	tests := []struct {
		raw  string
		want SleepStage
	}{
		{"HKCategoryValueSleepAnalysisInBed", SleepStageInBed},
		{"HKCategoryValueSleepAnalysisAwake", SleepStageAwake},
		{"HKCategoryValueSleepAnalysisAsleepCore", SleepStageCore},
		{"HKCategoryValueSleepAnalysisAsleepDeep", SleepStageDeep},
		{"HKCategoryValueSleepAnalysisAsleepREM", SleepStageREM},
		// Unstaged "asleep" records count as core sleep.
		{"HKCategoryValueSleepAnalysisAsleepUnspecified", SleepStageCore},
		{"asleep", SleepStageCore},
		// Short forms from pre-processed exports.
		{"deep", SleepStageDeep},
		{"rem", SleepStageREM},
		{"in bed", SleepStageInBed},
		{"  Awake  ", SleepStageAwake},
		// Unrecognized values contribute to no bucket.
		{"", SleepStageUnknown},
		{"banana", SleepStageUnknown},
	}

	for _, tt := range tests {
		if got := ClassifySleepStage(tt.raw); got != tt.want {
			t.Errorf("ClassifySleepStage(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestSleepStageString(t *testing.T) {
	tests := []struct {
		stage SleepStage
		want  string
	}{
		{SleepStageInBed, "inBed"},
		{SleepStageAwake, "awake"},
		{SleepStageCore, "core"},
		{SleepStageDeep, "deep"},
		{SleepStageREM, "rem"},
		{SleepStageUnknown, "unknown"},
	}
	for _, tt := range tests {
		if got := tt.stage.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.stage, got, tt.want)
		}
	}
}

func TestCountsAsleep(t *testing.T) {
	asleep := []SleepStage{SleepStageCore, SleepStageDeep, SleepStageREM}
	for _, s := range asleep {
		if !s.CountsAsleep() {
			t.Errorf("%v.CountsAsleep() = false, want true", s)
		}
	}
	notAsleep := []SleepStage{SleepStageInBed, SleepStageAwake, SleepStageUnknown}
	for _, s := range notAsleep {
		if s.CountsAsleep() {
			t.Errorf("%v.CountsAsleep() = true, want false", s)
		}
	}
}
