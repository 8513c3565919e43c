package scoring

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

var (
	bracketPattern     = regexp.MustCompile(`\[.*?\]`)
	punctuationPattern = regexp.MustCompile(`[^\w\s]`)
	whitespacePattern  = regexp.MustCompile(`\s+`)
)

// FoldName returns the case-folded, trimmed form of a gear name.
// All name comparisons in the engine go through it.
func FoldName(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// EqualName reports whether two gear names match case-insensitively.
func EqualName(a, b string) bool {
	return FoldName(a) == FoldName(b)
}

// IndexName returns the position of name in list, or -1.
func IndexName(list []string, name string) int {
	want := FoldName(name)
	for i, candidate := range list {
		if FoldName(candidate) == want {
			return i
		}
	}
	return -1
}

// nameSet is a folded lookup set.
type nameSet map[string]struct{}

func newNameSet(names ...[]string) nameSet {
	set := make(nameSet)
	for _, list := range names {
		for _, n := range list {
			set[FoldName(n)] = struct{}{}
		}
	}
	return set
}

func (s nameSet) has(name string) bool {
	_, ok := s[FoldName(name)]
	return ok
}

// NormalizeName converts a display name to lowercase_with_underscores.
// Bracketed fragments and punctuation are removed.
func NormalizeName(name string) string {
	name = bracketPattern.ReplaceAllString(name, "")
	name = punctuationPattern.ReplaceAllString(name, "")
	name = strings.ToLower(strings.TrimSpace(name))
	return whitespacePattern.ReplaceAllString(name, "_")
}

// ItemPowerBonus is the linear ramp from ItemPowerFloor to ItemPowerMaxBonus points.
func ItemPowerBonus(itemPower int) float64 {
	bonus := (float64(itemPower) - ItemPowerFloor) / ItemPowerStep
	switch {
	case bonus < 0:
		return 0
	case bonus > ItemPowerMaxBonus:
		return ItemPowerMaxBonus
	default:
		return bonus
	}
}
