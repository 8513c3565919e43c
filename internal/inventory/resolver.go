package inventory

import (
	"sort"

	"github.com/dotcommander/gearfit/internal/scoring"
	"github.com/dotcommander/gearfit/internal/types"
)

// Resolver reconciles build slot keys with the user's item slots.
//
// Lookup order for a build slot:
//  1. items stored under the same slot key
//  2. for weapon, items stored under offhand
//  3. items from any slot whose unique id matches one of the slot's priority uniques
type Resolver struct {
	gear  types.Gear
	order []types.Slot
}

// NewResolver creates a Resolver over gear.
func NewResolver(gear types.Gear) *Resolver {
	order := make([]types.Slot, 0, len(gear))
	for _, s := range types.AllSlots {
		if _, ok := gear[s]; ok {
			order = append(order, s)
		}
	}
	var extra []types.Slot
	for s := range gear {
		if !s.IsKnown() {
			extra = append(extra, s)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })

	return &Resolver{gear: gear, order: append(order, extra...)}
}

// Candidates returns the user's items for a build slot.
func (r *Resolver) Candidates(slot types.Slot, req types.SlotRequirements) []types.Item {
	if items := r.gear[slot]; len(items) > 0 {
		return items
	}
	if slot == types.SlotWeapon {
		if items := r.gear[types.SlotOffhand]; len(items) > 0 {
			return items
		}
	}
	if len(req.PriorityUniques) == 0 {
		return nil
	}

	var found []types.Item
	for _, s := range r.order {
		for _, item := range r.gear[s] {
			if item.IsUnique && item.UniqueID != "" && scoring.IndexName(req.PriorityUniques, item.UniqueID) >= 0 {
				found = append(found, item)
			}
		}
	}
	return found
}

// SlotFor returns the profile slot an item is scored against, applying the
// Resolver's lookup order from the item's side: its own slot, offhand items
// in weapon, then any slot that lists the item's unique as a priority.
func SlotFor(item types.Item, profile types.BuildProfile) (types.Slot, bool) {
	if _, ok := profile.Slots[item.Slot]; ok {
		return item.Slot, true
	}
	if item.Slot == types.SlotOffhand {
		if _, ok := profile.Slots[types.SlotWeapon]; ok {
			return types.SlotWeapon, true
		}
	}
	if item.IsUnique && item.UniqueID != "" {
		for _, slot := range profile.OrderedSlots() {
			if scoring.IndexName(profile.Slots[slot].PriorityUniques, item.UniqueID) >= 0 {
				return slot, true
			}
		}
	}
	return "", false
}
