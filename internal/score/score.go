package score

import (
	"math"
	"sort"
	"time"
)

// Weighting of the three completeness components. Core metrics dominate:
// a full core alone scores 50, a full recommended set adds 30, and the
// long tail of everything else tops out at 20.
const (
	coreWeight        = 50.0
	recommendedWeight = 30.0
	otherWeight       = 20.0
)

// CompletenessResult reports how complete an observed metric set is over
// a date span.
type CompletenessResult struct {
	Score              int            `json:"score"`
	CoreComplete       bool           `json:"coreComplete"`
	CategoryScores     map[string]int `json:"categoryScores"`
	MissingCore        []string       `json:"missingCore"`
	MissingRecommended []string       `json:"missingRecommended"`
	PresentCount       int            `json:"presentCount"`
	TotalPossible      int            `json:"totalPossible"`
	StartDate          time.Time      `json:"startDate"`
	EndDate            time.Time      `json:"endDate"`
	DaysCovered        int            `json:"daysCovered"`
}

// Scorer evaluates completeness against an injected catalog and tier
// thresholds. It is pure and safe for concurrent use.
type Scorer struct {
	catalog    Catalog
	thresholds []TierThreshold
}

// NewScorer returns a Scorer with the production catalog and thresholds.
func NewScorer() *Scorer {
	return NewScorerWith(DefaultCatalog(), DefaultThresholds())
}

// NewScorerWith returns a Scorer over alternate tables, used by tests and
// by deployments with custom metric sets.
func NewScorerWith(catalog Catalog, thresholds []TierThreshold) *Scorer {
	return &Scorer{catalog: catalog, thresholds: thresholds}
}

// Score computes the weighted completeness of the present metric set over
// [start, end). Present keys are raw metric identifiers.
func (s *Scorer) Score(present map[string]bool, start, end time.Time) CompletenessResult {
	missingCore := missingFrom(s.catalog.Core, present)
	missingRecommended := missingFrom(s.catalog.Recommended, present)

	coreScore := ratio(len(s.catalog.Core)-len(missingCore), len(s.catalog.Core)) * coreWeight
	recommendedScore := ratio(len(s.catalog.Recommended)-len(missingRecommended), len(s.catalog.Recommended)) * recommendedWeight

	special := make(map[string]bool, len(s.catalog.Core)+len(s.catalog.Recommended))
	for _, id := range s.catalog.Core {
		special[id] = true
	}
	for _, id := range s.catalog.Recommended {
		special[id] = true
	}

	totalOther := s.catalog.TotalMetrics() - len(special)
	presentOther := 0
	presentCount := 0
	categoryScores := make(map[string]int, len(s.catalog.Categories))
	for category, ids := range s.catalog.Categories {
		inCategory := 0
		for _, id := range ids {
			if present[id] {
				inCategory++
				presentCount++
				if !special[id] {
					presentOther++
				}
			}
		}
		categoryScores[category] = int(math.Round(ratio(inCategory, len(ids)) * 100))
	}

	otherScore := float64(presentOther) / math.Max(1, float64(totalOther)) * otherWeight

	daysCovered := 0
	if end.After(start) {
		daysCovered = int(math.Ceil(end.Sub(start).Hours() / 24))
	}

	return CompletenessResult{
		Score:              int(math.Round(coreScore + recommendedScore + otherScore)),
		CoreComplete:       len(missingCore) == 0,
		CategoryScores:     categoryScores,
		MissingCore:        missingCore,
		MissingRecommended: missingRecommended,
		PresentCount:       presentCount,
		TotalPossible:      s.catalog.TotalMetrics(),
		StartDate:          start,
		EndDate:            end,
		DaysCovered:        daysCovered,
	}
}

// CorePct returns the percentage of core metrics present in a result.
func (s *Scorer) CorePct(r CompletenessResult) float64 {
	return ratio(len(s.catalog.Core)-len(r.MissingCore), len(s.catalog.Core)) * 100
}

// RecommendedPct returns the percentage of recommended metrics present.
func (s *Scorer) RecommendedPct(r CompletenessResult) float64 {
	return ratio(len(s.catalog.Recommended)-len(r.MissingRecommended), len(s.catalog.Recommended)) * 100
}

func missingFrom(required []string, present map[string]bool) []string {
	var missing []string
	for _, id := range required {
		if !present[id] {
			missing = append(missing, id)
		}
	}
	sort.Strings(missing)
	return missing
}

func ratio(n, d int) float64 {
	if d <= 0 {
		return 0
	}
	return float64(n) / float64(d)
}
