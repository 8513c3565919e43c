package inventory

import (
	"strings"

	"github.com/dotcommander/gearfit/internal/types"
)

// slotAliases maps alternative slot spellings to canonical slots.
var slotAliases = map[string]types.Slot{
	"head":       types.SlotHelm,
	"helmet":     types.SlotHelm,
	"body":       types.SlotChest,
	"chestarmor": types.SlotChest,
	"hands":      types.SlotGloves,
	"legs":       types.SlotPants,
	"feet":       types.SlotBoots,
	"neck":       types.SlotAmulet,
	"mainhand":   types.SlotWeapon,
}

// itemTypePrefixes maps item-type name prefixes to slots. First match wins.
var itemTypePrefixes = []struct {
	prefix string
	slot   types.Slot
}{
	{"helm", types.SlotHelm},
	{"chest", types.SlotChest},
	{"gloves", types.SlotGloves},
	{"pants", types.SlotPants},
	{"boots", types.SlotBoots},
	{"amulet", types.SlotAmulet},
	{"ring", types.SlotRing},
	{"1hsword", types.SlotWeapon},
	{"1hmace", types.SlotWeapon},
	{"1haxe", types.SlotWeapon},
	{"dagger", types.SlotWeapon},
	{"wand", types.SlotWeapon},
	{"2hsword", types.SlotWeapon},
	{"2hmace", types.SlotWeapon},
	{"2haxe", types.SlotWeapon},
	{"2hpolearm", types.SlotWeapon},
	{"2hscythe", types.SlotWeapon},
	{"staff", types.SlotWeapon},
	{"bow", types.SlotWeapon},
	{"crossbow", types.SlotWeapon},
	{"focus", types.SlotOffhand},
	{"shield", types.SlotOffhand},
	{"totem", types.SlotOffhand},
}

// NormalizeSlot maps a raw slot or item-type name to a canonical slot.
// The second result is false when the name cannot be mapped; the folded name
// is still returned so callers can report it.
func NormalizeSlot(raw string) (types.Slot, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(key)
	if key == "" {
		return "", false
	}

	if s := types.Slot(key); s.IsKnown() {
		return s, true
	}
	if s, ok := slotAliases[key]; ok {
		return s, true
	}
	for _, p := range itemTypePrefixes {
		if strings.HasPrefix(key, p.prefix) {
			return p.slot, true
		}
	}
	return types.Slot(key), false
}
