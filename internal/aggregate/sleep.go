package aggregate

import (
	"math"
	"time"

	"github.com/claude/healthvault/internal/models"
)

// SleepInterval is one staged sleep segment from the ingestion boundary.
type SleepInterval struct {
	Start time.Time
	End   time.Time
	Value string
}

// SleepSummary is one night's sleep, attributed to the day the sleeper
// woke up. All durations are whole minutes; total covers only core, deep,
// and REM sleep. Efficiency is total/inBed, present only when in-bed time
// was recorded. Fields are declared in byte-sorted JSON key order for
// stable content hashing.
type SleepSummary struct {
	Awake      int      `json:"awake"`
	Core       int      `json:"core"`
	Deep       int      `json:"deep"`
	Efficiency *float64 `json:"efficiency,omitempty"`
	InBed      int      `json:"inBed"`
	REM        int      `json:"rem"`
	Total      int      `json:"total"`
}

// sleepAccum holds unrounded per-stage minute totals for one day.
type sleepAccum struct {
	inBed, awake, core, deep, rem float64
}

// AggregateSleep folds staged sleep intervals into per-day summaries.
//
// Intervals are grouped by the calendar day of their END time, so a
// session crossing midnight lands on the day the sleeper woke up. Rounding
// to whole minutes happens once per bucket after summation, not per
// interval. Overlapping intervals of different stages (two sensors
// reporting at once) are summed independently, which can push total past
// the wall-clock window; that is accepted rather than deduplicated.
func AggregateSleep(intervals []SleepInterval) map[string]SleepSummary {
	days := make(map[string]*sleepAccum)

	for _, iv := range intervals {
		stage := models.ClassifySleepStage(iv.Value)
		if stage == models.SleepStageUnknown {
			continue
		}

		dayKey := iv.End.Format(models.SampleDateOnlyLayout)
		acc := days[dayKey]
		if acc == nil {
			acc = &sleepAccum{}
			days[dayKey] = acc
		}

		minutes := iv.End.Sub(iv.Start).Minutes()
		switch stage {
		case models.SleepStageInBed:
			acc.inBed += minutes
		case models.SleepStageAwake:
			acc.awake += minutes
		case models.SleepStageCore:
			acc.core += minutes
		case models.SleepStageDeep:
			acc.deep += minutes
		case models.SleepStageREM:
			acc.rem += minutes
		}
	}

	result := make(map[string]SleepSummary, len(days))
	for dayKey, acc := range days {
		s := SleepSummary{
			InBed: int(math.Round(acc.inBed)),
			Awake: int(math.Round(acc.awake)),
			Core:  int(math.Round(acc.core)),
			Deep:  int(math.Round(acc.deep)),
			REM:   int(math.Round(acc.rem)),
		}
		s.Total = s.Core + s.Deep + s.REM
		if s.InBed > 0 {
			eff := round2(float64(s.Total) / float64(s.InBed))
			s.Efficiency = &eff
		}
		result[dayKey] = s
	}
	return result
}

// SleepIntervalsFromSamples converts raw sleep-analysis samples to
// intervals for AggregateSleep. The sample value carries the stage name.
func SleepIntervalsFromSamples(samples []models.HealthSample) []SleepInterval {
	intervals := make([]SleepInterval, 0, len(samples))
	for _, s := range samples {
		intervals = append(intervals, SleepInterval{
			Start: s.StartTime.Time,
			End:   s.EndTime.Time,
			Value: s.Value,
		})
	}
	return intervals
}
