package score

import (
	"testing"
	"time"
)

func presentSet(ids ...string) map[string]bool {
	m := make(map[string]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

func allCatalogMetrics() []string {
	var ids []string
	for _, categoryIDs := range DefaultCatalog().Categories {
		ids = append(ids, categoryIDs...)
	}
	return ids
}

func span(days int) (time.Time, time.Time) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, days)
}

func TestScoreEmpty(t *testing.T) {
	s := NewScorer()
	start, end := span(100)
	r := s.Score(map[string]bool{}, start, end)

	if r.Score != 0 {
		t.Errorf("score = %d, want 0", r.Score)
	}
	if r.CoreComplete {
		t.Error("coreComplete = true with nothing present")
	}
	if r.PresentCount != 0 {
		t.Errorf("presentCount = %d, want 0", r.PresentCount)
	}
	if len(r.MissingCore) != len(DefaultCatalog().Core) {
		t.Errorf("missingCore = %v", r.MissingCore)
	}
}

func TestScoreWeights(t *testing.T) {
	s := NewScorer()
	catalog := DefaultCatalog()
	start, end := span(100)

	// Full core alone is worth exactly 50.
	r := s.Score(presentSet(catalog.Core...), start, end)
	if r.Score != 50 {
		t.Errorf("full core score = %d, want 50", r.Score)
	}
	if !r.CoreComplete {
		t.Error("coreComplete = false with full core")
	}

	// Core plus recommended is worth 80.
	both := append(append([]string{}, catalog.Core...), catalog.Recommended...)
	r = s.Score(presentSet(both...), start, end)
	if r.Score != 80 {
		t.Errorf("core+recommended score = %d, want 80", r.Score)
	}

	// Everything is worth 100.
	r = s.Score(presentSet(allCatalogMetrics()...), start, end)
	if r.Score != 100 {
		t.Errorf("full catalog score = %d, want 100", r.Score)
	}
}

func TestScorePartialCore(t *testing.T) {
	s := NewScorer()
	catalog := DefaultCatalog()
	start, end := span(100)

	// 4 of 5 core metrics: core component is 40 of 50.
	r := s.Score(presentSet(catalog.Core[:4]...), start, end)
	if r.Score != 40 {
		t.Errorf("4/5 core score = %d, want 40", r.Score)
	}
	if r.CoreComplete {
		t.Error("coreComplete = true with a core metric missing")
	}
	if len(r.MissingCore) != 1 || r.MissingCore[0] != catalog.Core[4] {
		t.Errorf("missingCore = %v, want [%s]", r.MissingCore, catalog.Core[4])
	}
}

func TestScoreCategoryScores(t *testing.T) {
	s := NewScorer()
	start, end := span(30)

	// 2 of 5 heart metrics present: heart category scores 40.
	r := s.Score(presentSet(
		"HKQuantityTypeIdentifierHeartRate",
		"HKQuantityTypeIdentifierRestingHeartRate",
	), start, end)

	if got := r.CategoryScores["heart"]; got != 40 {
		t.Errorf("heart category = %d, want 40", got)
	}
	if got := r.CategoryScores["sleep"]; got != 0 {
		t.Errorf("sleep category = %d, want 0", got)
	}
}

func TestDaysCoveredCeil(t *testing.T) {
	s := NewScorer()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		hours int
		want  int
	}{
		{0, 0},
		{12, 1},
		{24, 1},
		{36, 2},
		{240, 10},
	}
	for _, tt := range tests {
		r := s.Score(nil, start, start.Add(time.Duration(tt.hours)*time.Hour))
		if r.DaysCovered != tt.want {
			t.Errorf("daysCovered for %dh = %d, want %d", tt.hours, r.DaysCovered, tt.want)
		}
	}
}

func TestTierGold(t *testing.T) {
	s := NewScorer()
	catalog := DefaultCatalog()
	both := append(append([]string{}, catalog.Core...), catalog.Recommended...)
	start, end := span(90)

	r := s.Score(presentSet(both...), start, end)
	if got := s.TierFor(r); got != TierGold {
		t.Errorf("tier = %v, want gold (score %d, days %d)", got, r.Score, r.DaysCovered)
	}
}

// TestTierMissingCoreCapsAtBronze: gold and silver both require the full
// core set, no matter how high the score is.
func TestTierMissingCoreCapsAtBronze(t *testing.T) {
	s := NewScorer()
	catalog := DefaultCatalog()

	var ids []string
	for _, id := range allCatalogMetrics() {
		if id != catalog.Core[0] {
			ids = append(ids, id)
		}
	}
	start, end := span(365)

	r := s.Score(presentSet(ids...), start, end)
	if r.Score < 75 {
		t.Fatalf("fixture too weak: score = %d", r.Score)
	}
	if got := s.TierFor(r); got != TierBronze {
		t.Errorf("tier = %v, want bronze with one core metric missing", got)
	}
}

func TestTierThresholds(t *testing.T) {
	s := NewScorer()
	catalog := DefaultCatalog()
	both := append(append([]string{}, catalog.Core...), catalog.Recommended...)

	tests := []struct {
		name string
		ids  []string
		days int
		want Tier
	}{
		{"gold set over 90 days", both, 90, TierGold},
		{"gold set but only 60 days", both, 60, TierSilver},
		{"gold set but only 10 days", both, 10, TierBronze},
		{"gold set but 3 days", both, 3, TierNone},
		// Core alone misses silver's recommended floor and lands on bronze.
		{"core only over a year", catalog.Core, 365, TierBronze},
		{"nothing", nil, 365, TierNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := span(tt.days)
			r := s.Score(presentSet(tt.ids...), start, end)
			if got := s.TierFor(r); got != tt.want {
				t.Errorf("tier = %v, want %v (score %d, days %d)", got, tt.want, r.Score, r.DaysCovered)
			}
		})
	}
}

func TestTierString(t *testing.T) {
	tests := []struct {
		tier Tier
		want string
	}{
		{TierNone, "none"},
		{TierBronze, "bronze"},
		{TierSilver, "silver"},
		{TierGold, "gold"},
	}
	for _, tt := range tests {
		if got := tt.tier.String(); got != tt.want {
			t.Errorf("Tier(%d).String() = %q, want %q", tt.tier, got, tt.want)
		}
	}
}

func TestCustomThresholds(t *testing.T) {
	catalog := DefaultCatalog()
	s := NewScorerWith(catalog, []TierThreshold{
		{Tier: TierGold, MinScore: 10, MinDays: 1},
	})

	start, end := span(2)
	r := s.Score(presentSet(catalog.Core...), start, end)
	if got := s.TierFor(r); got != TierGold {
		t.Errorf("tier = %v, want gold under relaxed thresholds", got)
	}
}
