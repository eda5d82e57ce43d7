package aggregate

import (
	"sort"
	"time"

	"github.com/claude/healthvault/internal/models"
	"github.com/claude/healthvault/internal/score"
)

// ManifestVersion identifies the strategy-table generation a summary was
// built with. Bump whenever an entry in strategyTable changes meaning.
const ManifestVersion = "2"

// DailySummaries is the sparse day → (canonical key → aggregated value)
// map. A day appears only if at least one metric had a valid sample; a
// missing key means "no data", never "zero".
type DailySummaries map[string]map[string]any

// SourceMix is the de-identified breakdown of where samples came from,
// as percentages summing to ~100 when any samples exist.
type SourceMix struct {
	Other float64 `json:"other"`
	Phone float64 `json:"phone"`
	Watch float64 `json:"watch"`
}

// ManifestCompleteness is the completeness block embedded in a manifest.
type ManifestCompleteness struct {
	CoreComplete bool   `json:"coreComplete"`
	DaysCovered  int    `json:"daysCovered"`
	RecordCount  int    `json:"recordCount"`
	Score        int    `json:"score"`
	Tier         string `json:"tier"`
}

// DateRange is an inclusive day span in YYYY-MM-DD form.
type DateRange struct {
	End   string `json:"end"`
	Start string `json:"start"`
}

// Manifest is the metadata envelope archived alongside the summaries.
// It is created once per build and never mutated; it is the only
// structure that gets hashed and stored with the payload. Like the value
// types, fields are declared in byte-sorted JSON key order.
type Manifest struct {
	Completeness   ManifestCompleteness `json:"completeness"`
	DateRange      DateRange            `json:"dateRange"`
	ExportDate     string               `json:"exportDate"`
	MetricsPresent []string             `json:"metricsPresent"`
	Sources        SourceMix            `json:"sources"`
	UploadDate     string               `json:"uploadDate,omitempty"`
	Version        string               `json:"version"`
}

// BuildResult pairs the summaries with their manifest.
type BuildResult struct {
	DailySummaries DailySummaries `json:"dailySummaries"`
	Manifest       Manifest       `json:"manifest"`
}

// Builder runs aggregation passes. It holds no mutable state, so one
// Builder can serve concurrent builds over independent inputs.
type Builder struct {
	scorer *score.Scorer
	now    func() time.Time
}

// NewBuilder creates a Builder using the given completeness scorer.
func NewBuilder(scorer *score.Scorer) *Builder {
	return &Builder{scorer: scorer, now: time.Now}
}

// Build aggregates raw samples into daily summaries plus a manifest.
//
// Every metric except sleep analysis goes through the per-day strategy
// aggregator; sleep analysis is delegated to AggregateSleep and written
// under the "sleep" key. Non-numeric sample values are dropped silently,
// and metric-days with no surviving samples produce no entry at all.
func (b *Builder) Build(samplesByMetric map[string][]models.HealthSample) *BuildResult {
	summaries := make(DailySummaries)
	present := make(map[string]bool)
	var recordCount int
	var sourceCounts struct{ watch, phone, other int }
	var minDay, maxDay string

	noteDay := func(day string) {
		if minDay == "" || day < minDay {
			minDay = day
		}
		if day > maxDay {
			maxDay = day
		}
	}

	for metricID, samples := range samplesByMetric {
		if len(samples) == 0 {
			continue
		}

		for _, s := range samples {
			switch s.SourceCategory {
			case models.SourceWatch:
				sourceCounts.watch++
			case models.SourcePhone:
				sourceCounts.phone++
			default:
				sourceCounts.other++
			}
		}

		if metricID == SleepAnalysisID {
			sleepDays := AggregateSleep(SleepIntervalsFromSamples(samples))
			if len(sleepDays) == 0 {
				continue
			}
			for day, summary := range sleepDays {
				dayEntry(summaries, day)["sleep"] = summary
				noteDay(day)
			}
			present[metricID] = true
			recordCount += len(samples)
			continue
		}

		strategy := GetStrategy(metricID)
		byDay := groupNumericByDay(samples)
		if len(byDay) == 0 {
			continue
		}

		for day, values := range byDay {
			dayEntry(summaries, day)[strategy.CanonicalKey] = Aggregate(values, strategy.Kind)
			recordCount += len(values)
			noteDay(day)
		}
		present[metricID] = true
	}

	manifest := Manifest{
		Version:        ManifestVersion,
		ExportDate:     b.now().UTC().Format(time.RFC3339),
		DateRange:      DateRange{Start: minDay, End: maxDay},
		MetricsPresent: presentKeys(present),
		Sources:        sourceMix(sourceCounts.watch, sourceCounts.phone, sourceCounts.other),
	}
	manifest.Completeness = b.completeness(present, minDay, maxDay, recordCount)

	return &BuildResult{DailySummaries: summaries, Manifest: manifest}
}

func (b *Builder) completeness(present map[string]bool, minDay, maxDay string, recordCount int) ManifestCompleteness {
	var start, end time.Time
	if minDay != "" {
		start, _ = time.Parse(models.SampleDateOnlyLayout, minDay)
		// Range end is exclusive of the last day's midnight, so cover it fully.
		end, _ = time.Parse(models.SampleDateOnlyLayout, maxDay)
		end = end.Add(24 * time.Hour)
	}

	result := b.scorer.Score(present, start, end)
	tier := b.scorer.TierFor(result)
	return ManifestCompleteness{
		Score:        result.Score,
		Tier:         tier.String(),
		CoreComplete: result.CoreComplete,
		DaysCovered:  result.DaysCovered,
		RecordCount:  recordCount,
	}
}

// groupNumericByDay buckets parseable sample values by calendar day,
// preserving chronological order within each day for latest-kind metrics.
func groupNumericByDay(samples []models.HealthSample) map[string][]float64 {
	sorted := make([]models.HealthSample, len(samples))
	copy(sorted, samples)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTime.Before(sorted[j].StartTime.Time)
	})

	byDay := make(map[string][]float64)
	for _, s := range sorted {
		v, ok := s.NumericValue()
		if !ok {
			continue
		}
		byDay[s.DayKey()] = append(byDay[s.DayKey()], v)
	}
	return byDay
}

func dayEntry(summaries DailySummaries, day string) map[string]any {
	entry := summaries[day]
	if entry == nil {
		entry = make(map[string]any)
		summaries[day] = entry
	}
	return entry
}

func presentKeys(present map[string]bool) []string {
	keys := make([]string, 0, len(present))
	for metricID := range present {
		keys = append(keys, CanonicalKey(metricID))
	}
	sort.Strings(keys)
	return keys
}

func sourceMix(watch, phone, other int) SourceMix {
	total := watch + phone + other
	if total == 0 {
		return SourceMix{}
	}
	pct := func(n int) float64 {
		return round2(float64(n) / float64(total) * 100)
	}
	return SourceMix{Watch: pct(watch), Phone: pct(phone), Other: pct(other)}
}
