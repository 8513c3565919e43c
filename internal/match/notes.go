package match

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dotcommander/gearfit/internal/scoring"
	"github.com/dotcommander/gearfit/internal/types"
)

// SlotNotes returns human-readable annotations for a slot's chosen item.
// Notes describe the result; they never affect scoring. item is nil for an empty slot.
func SlotNotes(item *types.Item, scored scoring.ScoredItem, req types.SlotRequirements) []string {
	if item == nil {
		notes := []string{"No item equipped"}
		if top := req.TopUnique(); top != "" {
			notes = append(notes, "Looking for "+Humanize(top))
		}
		return notes
	}

	var notes []string
	notes = append(notes, uniqueNotes(scored, req)...)
	notes = append(notes, aspectNotes(scored, req)...)

	if scored.TotalAffixes > 0 {
		notes = append(notes, fmt.Sprintf("%d/%d priority affixes", scored.MatchingAffixes, scored.TotalAffixes))
	}
	if scored.GreaterAffixHits > 0 {
		notes = append(notes, fmt.Sprintf("%d greater %s on priority stats",
			scored.GreaterAffixHits, plural(scored.GreaterAffixHits, "affix", "affixes")))
	}
	if missing := missingTempers(*item, req); len(missing) > 0 {
		notes = append(notes, "Missing tempers: "+strings.Join(missing, ", "))
	}
	if scored.Tier == types.TierNotRecommended {
		notes = append(notes, "Does not fit this build")
	}

	return notes
}

func uniqueNotes(scored scoring.ScoredItem, req types.SlotRequirements) []string {
	if !scored.HasPriorityUnique {
		return nil
	}
	if scored.UniqueRank == 0 {
		return []string{"Best-in-slot unique"}
	}
	return []string{fmt.Sprintf("Priority unique #%d, %s preferred", scored.UniqueRank+1, Humanize(req.TopUnique()))}
}

func aspectNotes(scored scoring.ScoredItem, req types.SlotRequirements) []string {
	if len(req.PriorityAspects) == 0 {
		return nil
	}
	if scored.HasAspect {
		return []string{"Recommended aspect"}
	}
	return []string{"Missing aspect: " + Humanize(req.PriorityAspects[0])}
}

// missingTempers lists required tempers absent from the item's tempered affixes.
func missingTempers(item types.Item, req types.SlotRequirements) []string {
	var missing []string
	for _, want := range req.RequiredTempers {
		found := false
		for _, t := range item.TemperedAffixes {
			if scoring.EqualName(t.Name, want) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, Humanize(want))
		}
	}
	return missing
}

// Humanize turns an identifier such as "harlequin_crest" into "Harlequin Crest".
func Humanize(name string) string {
	words := strings.Fields(strings.ReplaceAll(name, "_", " "))
	return cases.Title(language.English).String(strings.Join(words, " "))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
