package scoring

import "github.com/dotcommander/gearfit/internal/types"

// Point values of the additive scoring model.
const (
	UniqueBaseBonus        = 100.0
	UniqueRankStep         = 20.0
	AspectBonus            = 50.0
	GreaterAffixMultiplier = 0.5
	TemperBonus            = 25.0
	ItemPowerFloor         = 800.0
	ItemPowerStep          = 12.5
	ItemPowerMaxBonus      = 10.0
	MinSlotMaxScore        = 10.0
)

// Tier thresholds as a fraction of the slot max score.
const (
	BISThreshold       = 0.75
	AncestralThreshold = 0.40
	StarterThreshold   = 0.15
)

// Metric categories
const (
	CategoryUnique    = "unique"
	CategoryAspect    = "aspect"
	CategoryAffix     = "affix"
	CategoryTemper    = "temper"
	CategoryItemPower = "item_power"
	CategoryFit       = "fit"
)

// ScoredItem is the result of scoring one item against one slot's requirements.
type ScoredItem struct {
	Score             float64         `json:"score"`
	MaxScore          float64         `json:"max_score"`
	Tier              types.Tier      `json:"tier"`
	HasPriorityUnique bool            `json:"has_priority_unique"`
	UniqueRank        int             `json:"unique_rank"` // -1 when no priority unique matched
	MatchingAffixes   int             `json:"matching_affixes"`
	TotalAffixes      int             `json:"total_affixes"`
	HasAspect         bool            `json:"has_aspect"`
	MatchedTempers    int             `json:"matched_tempers"`
	GreaterAffixHits  int             `json:"greater_affix_hits"`
	Details           []ScoringMetric `json:"details,omitempty"`
}

// Percentage returns the score as a fraction of the max score.
func (s ScoredItem) Percentage() float64 {
	if s.MaxScore <= 0 {
		return 0
	}
	return s.Score / s.MaxScore
}

// ScoringMetric represents a single scoring criterion
type ScoringMetric struct {
	Category  string  `json:"category"`
	Name      string  `json:"name"`
	Points    float64 `json:"points"`
	MaxPoints float64 `json:"max_points"`
	Passed    bool    `json:"passed"`
	Note      string  `json:"note,omitempty"`
}

// ClassifyTier maps a scored item to its tier given the slot max score.
func ClassifyTier(s ScoredItem, maxScore float64) types.Tier {
	pct := 0.0
	if maxScore > 0 {
		pct = s.Score / maxScore
	}

	switch {
	case s.HasPriorityUnique && s.UniqueRank == 0 && pct >= BISThreshold:
		return types.TierBIS
	case s.HasPriorityUnique || pct >= AncestralThreshold:
		return types.TierAncestral
	case pct >= StarterThreshold || s.MatchingAffixes >= 1:
		return types.TierStarter
	default:
		return types.TierNotRecommended
	}
}

// Scorer scores an item against a slot's requirements.
type Scorer interface {
	Score(item types.Item, req types.SlotRequirements) ScoredItem
}

// ScorerFunc adapts a function to the Scorer interface.
type ScorerFunc func(item types.Item, req types.SlotRequirements) ScoredItem

// Score calls f(item, req).
func (f ScorerFunc) Score(item types.Item, req types.SlotRequirements) ScoredItem {
	return f(item, req)
}

// Default scores without memoization.
var Default Scorer = ScorerFunc(ScoreItemForSlot)
