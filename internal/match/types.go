// Package match runs the scoring engine across build profiles and ranks builds
// by how close a user's gear is to completing them.
package match

import (
	"github.com/dotcommander/gearfit/internal/scoring"
	"github.com/dotcommander/gearfit/internal/types"
)

// SlotMatch is the recommended item for one slot of a profile.
type SlotMatch struct {
	Slot       types.Slot         `json:"slot"`
	Item       *types.Item        `json:"item,omitempty"` // nil when the user has no candidate
	Score      float64            `json:"score"`
	MaxScore   float64            `json:"max_score"`
	Tier       types.Tier         `json:"tier"`
	Scored     scoring.ScoredItem `json:"scored"`
	Candidates int                `json:"candidates"`
	Notes      []string           `json:"notes,omitempty"`
}

// MissingItem is a critical item the user does not have for a slot.
type MissingItem struct {
	Slot       types.Slot `json:"slot"`
	Item       string     `json:"item"`
	Importance string     `json:"importance"`
}

// Upgrade suggests what to look for in a weak slot.
type Upgrade struct {
	Slot        types.Slot `json:"slot"`
	CurrentTier types.Tier `json:"current_tier"`
	Suggestion  string     `json:"suggestion"`
	Importance  string     `json:"importance"`
}

// ProfileMatch is the match record for one build profile.
type ProfileMatch struct {
	Profile         string             `json:"profile"`
	Slots           []SlotMatch        `json:"slots"`
	MissingCritical []MissingItem      `json:"missing_critical"`
	UpgradePriority []Upgrade          `json:"upgrade_priority"`
	Score           float64            `json:"score"`
	MaxScore        float64            `json:"max_score"`
	Percentage      float64            `json:"percentage"`
	TierCounts      map[types.Tier]int `json:"tier_counts"`
}

// BuildMatch holds every profile match of one build and its best profile.
type BuildMatch struct {
	BuildID        string         `json:"build_id"`
	BuildName      string         `json:"build_name"`
	Class          string         `json:"class"`
	BuildTier      string         `json:"build_tier,omitempty"`
	SourceURL      string         `json:"source_url,omitempty"`
	Profiles       []ProfileMatch `json:"profiles"`
	BestProfile    string         `json:"best_profile"`
	BestPercentage float64        `json:"best_percentage"`
}

// Best returns the best profile match, or nil when the build has no profiles.
func (b *BuildMatch) Best() *ProfileMatch {
	for i := range b.Profiles {
		if b.Profiles[i].Profile == b.BestProfile {
			return &b.Profiles[i]
		}
	}
	return nil
}

// Resolver supplies the user's candidate items for a build slot.
// Mapping item slots to build slot keys is the resolver's job.
type Resolver interface {
	Candidates(slot types.Slot, req types.SlotRequirements) []types.Item
}

// DirectResolver looks candidates up by exact slot key.
type DirectResolver types.Gear

// Candidates returns the items stored under slot.
func (g DirectResolver) Candidates(slot types.Slot, _ types.SlotRequirements) []types.Item {
	return g[slot]
}
