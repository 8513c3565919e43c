package scoring

import (
	"fmt"

	"github.com/dotcommander/gearfit/internal/types"
)

// CalculateSlotMaxScore returns the theoretical ceiling score for a slot.
// The result is never below MinSlotMaxScore.
func CalculateSlotMaxScore(req types.SlotRequirements) float64 {
	var ceiling float64
	if len(req.PriorityUniques) > 0 {
		ceiling += UniqueBaseBonus
	}
	if len(req.PriorityAspects) > 0 {
		ceiling += AspectBonus
	}
	for _, affix := range req.PriorityAffixes {
		ceiling += float64(affix.Weight) * (1 + GreaterAffixMultiplier)
	}
	ceiling += TemperBonus * float64(len(req.RequiredTempers))
	ceiling += ItemPowerMaxBonus

	if ceiling < MinSlotMaxScore {
		return MinSlotMaxScore
	}
	return ceiling
}

// ScoreItemForSlot scores one item against one slot's requirements.
// It is a pure function of its inputs.
func ScoreItemForSlot(item types.Item, req types.SlotRequirements) ScoredItem {
	maxScore := CalculateSlotMaxScore(req)
	result := ScoredItem{
		MaxScore:     maxScore,
		UniqueRank:   -1,
		TotalAffixes: len(req.PriorityAffixes),
	}

	var score float64
	var details []ScoringMetric

	points, metric := scoreUnique(item, req, &result)
	score += points
	if metric != nil {
		details = append(details, *metric)
	}

	points, metric = scoreAspect(item, req, &result)
	score += points
	if metric != nil {
		details = append(details, *metric)
	}

	points, affixMetrics := scoreAffixes(item, req, &result)
	score += points
	details = append(details, affixMetrics...)

	points, temperMetrics := scoreTempers(item, req, &result)
	score += points
	details = append(details, temperMetrics...)

	if !result.HasPriorityUnique && !result.HasAspect && result.MatchingAffixes == 0 {
		return ScoredItem{
			MaxScore:     maxScore,
			Tier:         types.TierNotRecommended,
			UniqueRank:   -1,
			TotalAffixes: len(req.PriorityAffixes),
			Details: []ScoringMetric{{
				Category: CategoryFit,
				Name:     "Relevant to slot",
				Passed:   false,
				Note:     "no priority unique, aspect or affix",
			}},
		}
	}

	ipBonus := ItemPowerBonus(item.ItemPower)
	score += ipBonus
	details = append(details, ScoringMetric{
		Category:  CategoryItemPower,
		Name:      "Item power",
		Points:    ipBonus,
		MaxPoints: ItemPowerMaxBonus,
		Passed:    ipBonus > 0,
		Note:      fmt.Sprintf("%d item power", item.ItemPower),
	})

	result.Score = score
	result.Details = details
	result.Tier = ClassifyTier(result, maxScore)
	return result
}

// scoreUnique awards the rank-scaled unique bonus. The bonus is not floored, so
// ranks beyond the fifth yield negative points.
func scoreUnique(item types.Item, req types.SlotRequirements, result *ScoredItem) (float64, *ScoringMetric) {
	if len(req.PriorityUniques) == 0 {
		return 0, nil
	}

	metric := &ScoringMetric{
		Category:  CategoryUnique,
		Name:      "Priority unique",
		MaxPoints: UniqueBaseBonus,
	}
	if !item.IsUnique || item.UniqueID == "" {
		metric.Note = "wants " + req.TopUnique()
		return 0, metric
	}

	rank := IndexName(req.PriorityUniques, item.UniqueID)
	if rank < 0 {
		metric.Note = "wants " + req.TopUnique()
		return 0, metric
	}

	points := UniqueBaseBonus - UniqueRankStep*float64(rank)
	result.HasPriorityUnique = true
	result.UniqueRank = rank
	metric.Points = points
	metric.Passed = true
	metric.Note = fmt.Sprintf("rank %d of %d", rank+1, len(req.PriorityUniques))
	return points, metric
}

func scoreAspect(item types.Item, req types.SlotRequirements, result *ScoredItem) (float64, *ScoringMetric) {
	if len(req.PriorityAspects) == 0 {
		return 0, nil
	}

	metric := &ScoringMetric{
		Category:  CategoryAspect,
		Name:      "Priority aspect",
		MaxPoints: AspectBonus,
	}
	if item.Aspect == nil || IndexName(req.PriorityAspects, item.Aspect.Name) < 0 {
		return 0, metric
	}

	result.HasAspect = true
	metric.Points = AspectBonus
	metric.Passed = true
	metric.Note = item.Aspect.Name
	return AspectBonus, metric
}

func scoreAffixes(item types.Item, req types.SlotRequirements, result *ScoredItem) (float64, []ScoringMetric) {
	if len(req.PriorityAffixes) == 0 {
		return 0, nil
	}

	present := newNameSet(affixNames(item.Affixes), affixNames(item.TemperedAffixes))
	greater := newNameSet(item.GreaterAffixes)

	var total float64
	metrics := make([]ScoringMetric, 0, len(req.PriorityAffixes))
	for _, want := range req.PriorityAffixes {
		weight := float64(want.Weight)
		metric := ScoringMetric{
			Category:  CategoryAffix,
			Name:      want.Name,
			MaxPoints: weight * (1 + GreaterAffixMultiplier),
		}
		if present.has(want.Name) {
			points := weight
			result.MatchingAffixes++
			if greater.has(want.Name) {
				points += weight * GreaterAffixMultiplier
				result.GreaterAffixHits++
				metric.Note = "greater affix"
			}
			metric.Points = points
			metric.Passed = true
			total += points
		}
		metrics = append(metrics, metric)
	}

	return total, metrics
}

func scoreTempers(item types.Item, req types.SlotRequirements, result *ScoredItem) (float64, []ScoringMetric) {
	if len(req.RequiredTempers) == 0 {
		return 0, nil
	}

	tempered := newNameSet(affixNames(item.TemperedAffixes))

	var total float64
	metrics := make([]ScoringMetric, 0, len(req.RequiredTempers))
	for _, want := range req.RequiredTempers {
		metric := ScoringMetric{
			Category:  CategoryTemper,
			Name:      want,
			MaxPoints: TemperBonus,
		}
		if tempered.has(want) {
			result.MatchedTempers++
			metric.Points = TemperBonus
			metric.Passed = true
			total += TemperBonus
		}
		metrics = append(metrics, metric)
	}

	return total, metrics
}

func affixNames(affixes []types.Affix) []string {
	names := make([]string, len(affixes))
	for i, a := range affixes {
		names[i] = a.Name
	}
	return names
}
