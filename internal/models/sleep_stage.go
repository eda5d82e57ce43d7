package models

import "strings"

// SleepStage is a bucket a sleep interval's duration is summed into.
type SleepStage int

const (
	SleepStageUnknown SleepStage = iota
	SleepStageInBed
	SleepStageAwake
	SleepStageCore
	SleepStageDeep
	SleepStageREM
)

// String returns the summary field name for the stage.
func (s SleepStage) String() string {
	switch s {
	case SleepStageInBed:
		return "inBed"
	case SleepStageAwake:
		return "awake"
	case SleepStageCore:
		return "core"
	case SleepStageDeep:
		return "deep"
	case SleepStageREM:
		return "rem"
	default:
		return "unknown"
	}
}

// CountsAsleep reports whether the stage contributes to total sleep time.
// In-bed and awake time are tracked but excluded from the total.
func (s SleepStage) CountsAsleep() bool {
	switch s {
	case SleepStageCore, SleepStageDeep, SleepStageREM:
		return true
	default:
		return false
	}
}

// stagePatterns is checked in order; first substring match wins. The order
// matters: "inbed" must precede the generic "asleep" fallback, and the
// fallback maps unstaged "asleep" records to core sleep.
var stagePatterns = []struct {
	substr string
	stage  SleepStage
}{
	{"inbed", SleepStageInBed},
	{"in bed", SleepStageInBed},
	{"awake", SleepStageAwake},
	{"core", SleepStageCore},
	{"deep", SleepStageDeep},
	{"rem", SleepStageREM},
	{"asleep", SleepStageCore},
}

// ClassifySleepStage maps a raw sleep sample value (e.g.
// "HKCategoryValueSleepAnalysisAsleepDeep" or just "deep") to a stage
// bucket using case-insensitive substring matching. Unrecognized values
// return SleepStageUnknown and contribute to no bucket.
func ClassifySleepStage(raw string) SleepStage {
	lower := strings.ToLower(strings.TrimSpace(raw))
	for _, p := range stagePatterns {
		if strings.Contains(lower, p.substr) {
			return p.stage
		}
	}
	return SleepStageUnknown
}
