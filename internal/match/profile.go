package match

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/dotcommander/gearfit/internal/scoring"
	"github.com/dotcommander/gearfit/internal/types"
)

// MatchProfile scores the user's candidates for every slot of one profile.
func MatchProfile(name string, profile types.BuildProfile, resolver Resolver, scorer scoring.Scorer) ProfileMatch {
	if scorer == nil {
		scorer = scoring.Default
	}

	pm := ProfileMatch{
		Profile:         name,
		MissingCritical: []MissingItem{},
		UpgradePriority: []Upgrade{},
		TierCounts:      make(map[types.Tier]int),
	}

	for _, slot := range profile.OrderedSlots() {
		req := profile.Slots[slot]
		sm := matchSlot(slot, req, resolver.Candidates(slot, req), scorer)

		pm.Slots = append(pm.Slots, sm)
		pm.Score += sm.Score
		pm.MaxScore += sm.MaxScore
		pm.TierCounts[sm.Tier]++

		if sm.Item == nil {
			if top := req.TopUnique(); top != "" {
				pm.MissingCritical = append(pm.MissingCritical, MissingItem{
					Slot:       slot,
					Item:       top,
					Importance: types.ImportanceHigh,
				})
			}
			continue
		}

		if sm.Tier == types.TierNotRecommended || sm.Tier == types.TierStarter {
			pm.UpgradePriority = append(pm.UpgradePriority, suggestUpgrade(slot, req, sm.Tier))
		}
	}

	pm.Percentage = percentage(pm.Score, pm.MaxScore)
	return pm
}

// matchSlot keeps the candidate with the strictly highest score; the first wins ties.
func matchSlot(slot types.Slot, req types.SlotRequirements, candidates []types.Item, scorer scoring.Scorer) SlotMatch {
	maxScore := scoring.CalculateSlotMaxScore(req)
	sm := SlotMatch{
		Slot:       slot,
		MaxScore:   maxScore,
		Tier:       types.TierNone,
		Candidates: len(candidates),
	}

	bestIdx := -1
	var best scoring.ScoredItem
	for i := range candidates {
		scored := scorer.Score(candidates[i], req)
		if bestIdx < 0 || scored.Score > best.Score {
			bestIdx = i
			best = scored
		}
	}

	if bestIdx < 0 {
		sm.Scored = scoring.ScoredItem{MaxScore: maxScore, Tier: types.TierNone, UniqueRank: -1, TotalAffixes: len(req.PriorityAffixes)}
		sm.Notes = SlotNotes(nil, sm.Scored, req)
		return sm
	}

	item := candidates[bestIdx]
	sm.Item = &item
	sm.Score = best.Score
	sm.Tier = best.Tier
	sm.Scored = best
	sm.Notes = SlotNotes(&item, best, req)
	return sm
}

// suggestUpgrade names the top missing unique, else the two heaviest affixes.
func suggestUpgrade(slot types.Slot, req types.SlotRequirements, tier types.Tier) Upgrade {
	importance := types.ImportanceMedium
	if tier == types.TierNotRecommended {
		importance = types.ImportanceHigh
	}

	suggestion := req.TopUnique()
	if suggestion == "" {
		suggestion = strings.Join(topAffixes(req.PriorityAffixes, 2), "+")
	}
	if suggestion == "" {
		suggestion = fmt.Sprintf("Better %s item", slot)
	}

	return Upgrade{
		Slot:        slot,
		CurrentTier: tier,
		Suggestion:  suggestion,
		Importance:  importance,
	}
}

// topAffixes returns up to n affix names by descending weight, keeping list order on ties.
func topAffixes(affixes []types.AffixWeight, n int) []string {
	sorted := make([]types.AffixWeight, len(affixes))
	copy(sorted, affixes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Weight > sorted[j].Weight
	})

	if len(sorted) > n {
		sorted = sorted[:n]
	}
	names := make([]string, len(sorted))
	for i, a := range sorted {
		names[i] = a.Name
	}
	return names
}

// percentage rounds 100*score/max to one decimal place.
func percentage(score, maxScore float64) float64 {
	if maxScore == 0 {
		return 0
	}
	return math.Round(1000*score/maxScore) / 10
}
