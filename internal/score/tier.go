package score

// Tier is the ordered attestation trust classification derived from a
// CompletenessResult. It is always recomputed from its inputs, never
// stored independently of them.
type Tier int

const (
	TierNone Tier = iota
	TierBronze
	TierSilver
	TierGold
)

func (t Tier) String() string {
	switch t {
	case TierGold:
		return "gold"
	case TierSilver:
		return "silver"
	case TierBronze:
		return "bronze"
	default:
		return "none"
	}
}

// TierThreshold is the bar a result must clear for one tier. Gold and
// silver demand a fully present core; bronze tolerates a partial core
// down to MinCorePct.
type TierThreshold struct {
	Tier                Tier
	MinScore            int
	MinDays             int
	MinRecommendedPct   float64
	RequireCoreComplete bool
	MinCorePct          float64
}

// DefaultThresholds returns the fixed production thresholds, ordered
// gold → bronze; TierFor takes the first match. A data set that cannot
// clear bronze's day coverage is TierNone even with a perfect score.
func DefaultThresholds() []TierThreshold {
	return []TierThreshold{
		{Tier: TierGold, MinScore: 75, MinDays: 90, MinRecommendedPct: 75, RequireCoreComplete: true},
		{Tier: TierSilver, MinScore: 50, MinDays: 30, MinRecommendedPct: 50, RequireCoreComplete: true},
		{Tier: TierBronze, MinScore: 25, MinDays: 7, MinCorePct: 80},
	}
}

// TierFor classifies a completeness result. Thresholds are checked in
// order, first match wins; nothing matching means TierNone.
func (s *Scorer) TierFor(r CompletenessResult) Tier {
	for _, th := range s.thresholds {
		if r.Score < th.MinScore || r.DaysCovered < th.MinDays {
			continue
		}
		if s.RecommendedPct(r) < th.MinRecommendedPct {
			continue
		}
		if th.RequireCoreComplete && !r.CoreComplete {
			continue
		}
		if !th.RequireCoreComplete && s.CorePct(r) < th.MinCorePct {
			continue
		}
		return th.Tier
	}
	return TierNone
}
