package catalog

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/dotcommander/gearfit/internal/types"
)

// LegacyProfileName is the profile name given to single-profile build files.
const LegacyProfileName = "default"

// buildDocument is the on-disk shape of a build. It accepts both the
// multi-profile layout and the legacy single-profile "gear" layout.
type buildDocument struct {
	types.Build `yaml:",inline"`
	Gear        map[types.Slot]types.SlotRequirements `yaml:"gear,omitempty"`
}

// DecodeBuild parses one build file (JSON or YAML) and fills layout defaults:
//   - a legacy "gear" map becomes a profile named "default"
//   - a missing profile_order is filled from the sorted profile names
//   - each requirement's slot defaults to its map key
//
// Profile names listed in profile_order but absent from profiles are kept;
// matching skips them.
func DecodeBuild(data []byte) (types.Build, error) {
	var doc buildDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return types.Build{}, err
	}

	b := doc.Build
	if len(doc.Gear) > 0 {
		if b.Profiles == nil {
			b.Profiles = make(map[string]types.BuildProfile)
		}
		if _, exists := b.Profiles[LegacyProfileName]; exists {
			return types.Build{}, fmt.Errorf("build %q has both gear and a %q profile", b.ID, LegacyProfileName)
		}
		b.Profiles[LegacyProfileName] = types.BuildProfile{Name: LegacyProfileName, Slots: doc.Gear}
		if len(b.ProfileOrder) > 0 {
			b.ProfileOrder = append(b.ProfileOrder, LegacyProfileName)
		}
	}

	if len(b.ProfileOrder) == 0 && len(b.Profiles) > 0 {
		b.ProfileOrder = make([]string, 0, len(b.Profiles))
		for name := range b.Profiles {
			b.ProfileOrder = append(b.ProfileOrder, name)
		}
		sort.Strings(b.ProfileOrder)
	}

	for name, profile := range b.Profiles {
		if profile.Name == "" {
			profile.Name = name
		}
		for slot, req := range profile.Slots {
			if req.Slot == "" {
				req.Slot = slot
				profile.Slots[slot] = req
			}
		}
		b.Profiles[name] = profile
	}

	return b, nil
}
