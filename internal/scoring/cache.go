package scoring

import (
	"encoding/json"
	"fmt"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dotcommander/gearfit/internal/types"
)

// Cache memoizes ScoreItemForSlot results. Profiles of the same build often
// repeat a slot's requirements, so identical (item, requirements) pairs recur.
// A nil *Cache scores directly. Cache is safe for concurrent use.
//
// Items and requirements that differ only in name case, affix order or
// display name share an entry. Their scores and counts are identical, but a
// hit returns the Details of the pair that was scored first, so metric notes
// keep that pair's spelling and order.
type Cache struct {
	lru *lru.Cache[string, ScoredItem]
}

// NewCache creates a cache holding up to size results.
func NewCache(size int) (*Cache, error) {
	l, err := lru.New[string, ScoredItem](size)
	if err != nil {
		return nil, fmt.Errorf("error creating score cache: %w", err)
	}
	return &Cache{lru: l}, nil
}

// Score returns the cached result for (item, req), computing it on a miss.
func (c *Cache) Score(item types.Item, req types.SlotRequirements) ScoredItem {
	if c == nil {
		return ScoreItemForSlot(item, req)
	}

	key := ItemFingerprint(item) + "\x00" + RequirementsFingerprint(req)
	if scored, ok := c.lru.Get(key); ok {
		return scored
	}

	scored := ScoreItemForSlot(item, req)
	c.lru.Add(key, scored)
	return scored
}

// Len returns the number of cached results.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}

// itemKey holds every item field that can influence a score. Keys are JSON
// encoded so names containing separators cannot collide.
type itemKey struct {
	UniqueID       string   `json:"u"`
	IsUnique       bool     `json:"iu"`
	ItemPower      int      `json:"ip"`
	Aspect         *string  `json:"as,omitempty"`
	Affixes        []string `json:"a"`
	Tempered       []string `json:"t"`
	GreaterAffixes []string `json:"g"`
}

type requirementsKey struct {
	Uniques []string `json:"u"`
	Aspects []string `json:"as"`
	Affixes []string `json:"a"`
	Weights []int    `json:"w"`
	Tempers []string `json:"t"`
}

// ItemFingerprint returns a deterministic fingerprint of every item field that
// can influence a score. Set-like fields are order-independent.
func ItemFingerprint(item types.Item) string {
	k := itemKey{
		UniqueID:       FoldName(item.UniqueID),
		IsUnique:       item.IsUnique,
		ItemPower:      item.ItemPower,
		Affixes:        sortedFolded(affixNames(item.Affixes)),
		Tempered:       sortedFolded(affixNames(item.TemperedAffixes)),
		GreaterAffixes: sortedFolded(item.GreaterAffixes),
	}
	if item.Aspect != nil {
		name := FoldName(item.Aspect.Name)
		k.Aspect = &name
	}
	return encodeKey(k)
}

// RequirementsFingerprint returns a deterministic fingerprint of a slot's
// requirements. Unique order is significant (it sets the rank).
func RequirementsFingerprint(req types.SlotRequirements) string {
	affixes := make([]types.AffixWeight, len(req.PriorityAffixes))
	for i, a := range req.PriorityAffixes {
		affixes[i] = types.AffixWeight{Name: FoldName(a.Name), Weight: a.Weight}
	}
	sort.Slice(affixes, func(i, j int) bool {
		if affixes[i].Name != affixes[j].Name {
			return affixes[i].Name < affixes[j].Name
		}
		return affixes[i].Weight < affixes[j].Weight
	})

	k := requirementsKey{
		Uniques: foldAll(req.PriorityUniques),
		Aspects: sortedFolded(req.PriorityAspects),
		Affixes: make([]string, len(affixes)),
		Weights: make([]int, len(affixes)),
		Tempers: foldAll(req.RequiredTempers),
	}
	for i, a := range affixes {
		k.Affixes[i], k.Weights[i] = a.Name, a.Weight
	}
	return encodeKey(k)
}

func encodeKey(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		// Only strings, ints and bools are encoded.
		panic(fmt.Sprintf("scoring: encoding cache key: %v", err))
	}
	return string(data)
}

func sortedFolded(names []string) []string {
	folded := foldAll(names)
	sort.Strings(folded)
	return folded
}

func foldAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = FoldName(n)
	}
	return out
}
