// Package types provides the gear and build records shared across the gearfit codebase.
// This package is at the bottom of the dependency graph and should not import
// any other internal packages to avoid circular dependencies.
package types

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Slot identifies an equipment slot.
type Slot string

// Slot constants.
const (
	SlotHelm    Slot = "helm"
	SlotChest   Slot = "chest"
	SlotGloves  Slot = "gloves"
	SlotPants   Slot = "pants"
	SlotBoots   Slot = "boots"
	SlotAmulet  Slot = "amulet"
	SlotRing    Slot = "ring"
	SlotWeapon  Slot = "weapon"
	SlotOffhand Slot = "offhand"
)

// AllSlots is the canonical slot order. Every walk over a profile's slots follows it.
var AllSlots = []Slot{
	SlotHelm,
	SlotChest,
	SlotGloves,
	SlotPants,
	SlotBoots,
	SlotAmulet,
	SlotRing,
	SlotWeapon,
	SlotOffhand,
}

// IsKnown reports whether s is one of AllSlots.
func (s Slot) IsKnown() bool {
	for _, known := range AllSlots {
		if s == known {
			return true
		}
	}
	return false
}

// Tier is the qualitative bucket an item falls into for a slot.
type Tier string

// Tier constants, best first.
const (
	TierBIS            Tier = "bis"
	TierAncestral      Tier = "ancestral"
	TierStarter        Tier = "starter"
	TierNotRecommended Tier = "not_recommended"
	TierNone           Tier = "none"
)

// Rank orders tiers from best (0) to worst.
func (t Tier) Rank() int {
	switch t {
	case TierBIS:
		return 0
	case TierAncestral:
		return 1
	case TierStarter:
		return 2
	case TierNotRecommended:
		return 3
	default:
		return 4
	}
}

// Importance constants for missing items and upgrade suggestions.
const (
	ImportanceHigh   = "high"
	ImportanceMedium = "medium"
	ImportanceLow    = "low"
)

// Affix is a named numeric stat modifier on an item.
type Affix struct {
	Name  string  `json:"name" yaml:"name"`
	Value float64 `json:"value" yaml:"value"`
}

// Aspect is a named special power attached to an item.
type Aspect struct {
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Value       float64 `json:"value,omitempty" yaml:"value,omitempty"`
}

// Sockets records socket capacity and usage.
type Sockets struct {
	Total  int `json:"total" yaml:"total" validate:"gte=0"`
	Filled int `json:"filled" yaml:"filled" validate:"gte=0,ltefield=Total"`
}

// Item is one parsed piece of gear. Items are produced by the scanner and never mutated.
type Item struct {
	Name             string   `json:"name" yaml:"name"`
	Slot             Slot     `json:"slot" yaml:"slot" validate:"slot"`
	ItemPower        int      `json:"item_power" yaml:"item_power" validate:"gte=0"`
	IsUnique         bool     `json:"is_unique" yaml:"is_unique"`
	UniqueID         string   `json:"unique_id,omitempty" yaml:"unique_id,omitempty"`
	Affixes          []Affix  `json:"affixes,omitempty" yaml:"affixes,omitempty"`
	TemperedAffixes  []Affix  `json:"tempered_affixes,omitempty" yaml:"tempered_affixes,omitempty"`
	GreaterAffixes   []string `json:"greater_affixes,omitempty" yaml:"greater_affixes,omitempty"`
	Aspect           *Aspect  `json:"aspect,omitempty" yaml:"aspect,omitempty"`
	Sockets          Sockets  `json:"sockets" yaml:"sockets"`
	ClassRestriction string   `json:"class_restriction,omitempty" yaml:"class_restriction,omitempty"`
}

// AffixWeight is a designer-assigned importance for one affix.
type AffixWeight struct {
	Name   string `json:"name" yaml:"name" validate:"required"`
	Weight int    `json:"weight" yaml:"weight" validate:"gte=0"`
}

// UnmarshalYAML accepts either {name, weight} or a bare affix name, which
// decodes with weight 0.
func (a *AffixWeight) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*a = AffixWeight{Name: node.Value}
		return nil
	}
	type plain AffixWeight
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*a = AffixWeight(p)
	return nil
}

// SlotRequirements describes what a build wants in one slot.
type SlotRequirements struct {
	Slot            Slot          `json:"slot" yaml:"slot"`
	PriorityUniques []string      `json:"priority_uniques,omitempty" yaml:"priority_uniques,omitempty"`
	PriorityAspects []string      `json:"priority_aspects,omitempty" yaml:"priority_aspects,omitempty"`
	PriorityAffixes []AffixWeight `json:"priority_affixes,omitempty" yaml:"priority_affixes,omitempty" validate:"dive"`
	RequiredTempers []string      `json:"required_tempers,omitempty" yaml:"required_tempers,omitempty"`
}

// TopUnique returns the highest-priority unique, or "" when the slot lists none.
func (r SlotRequirements) TopUnique() string {
	if len(r.PriorityUniques) == 0 {
		return ""
	}
	return r.PriorityUniques[0]
}

// BuildProfile is one named gearing milestone of a build.
type BuildProfile struct {
	Name  string                    `json:"name,omitempty" yaml:"name,omitempty"`
	Slots map[Slot]SlotRequirements `json:"slots" yaml:"slots" validate:"dive"`
}

// UnmarshalYAML accepts {name, slots: {slot: requirements}} and the flat form
// {slot: requirements}, where every key other than name is a slot.
func (p *BuildProfile) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode || hasKey(node, "slots") {
		type plain BuildProfile
		return node.Decode((*plain)(p))
	}

	*p = BuildProfile{Slots: make(map[Slot]SlotRequirements, len(node.Content)/2)}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i].Value, node.Content[i+1]
		if key == "name" {
			if err := value.Decode(&p.Name); err != nil {
				return err
			}
			continue
		}
		var req SlotRequirements
		if err := value.Decode(&req); err != nil {
			return fmt.Errorf("slot %s: %w", key, err)
		}
		p.Slots[Slot(key)] = req
	}
	return nil
}

func hasKey(m *yaml.Node, key string) bool {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return true
		}
	}
	return false
}

// OrderedSlots returns the profile's slots in AllSlots order, followed by any
// unknown slot keys in lexical order.
func (p BuildProfile) OrderedSlots() []Slot {
	ordered := make([]Slot, 0, len(p.Slots))
	for _, s := range AllSlots {
		if _, ok := p.Slots[s]; ok {
			ordered = append(ordered, s)
		}
	}

	var extra []Slot
	for s := range p.Slots {
		if !s.IsKnown() {
			extra = append(extra, s)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })

	return append(ordered, extra...)
}

// Build is a read-only gear plan with one or more profiles.
type Build struct {
	ID           string                  `json:"id" yaml:"id" validate:"required"`
	Name         string                  `json:"name" yaml:"name" validate:"required"`
	Class        string                  `json:"class" yaml:"class"`
	Tier         string                  `json:"tier,omitempty" yaml:"tier,omitempty"`
	SourceURL    string                  `json:"source_url,omitempty" yaml:"source_url,omitempty"`
	Tags         []string                `json:"tags,omitempty" yaml:"tags,omitempty"`
	LastUpdated  string                  `json:"last_updated,omitempty" yaml:"last_updated,omitempty"`
	ProfileOrder []string                `json:"profile_order" yaml:"profile_order"`
	Profiles     map[string]BuildProfile `json:"profiles" yaml:"profiles" validate:"dive"`
}

// Gear is a user's inventory grouped by item slot. A slot may hold several items.
type Gear map[Slot][]Item

// Count returns the total number of items across all slots.
func (g Gear) Count() int {
	n := 0
	for _, items := range g {
		n += len(items)
	}
	return n
}
