package baseline

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/dotcommander/gearfit/internal/match"
	"github.com/dotcommander/gearfit/internal/scoring"
	"github.com/dotcommander/gearfit/internal/types"
)

// Version is the snapshot file format version.
const Version = "1.0"

// Entry is the recorded best profile of one build.
type Entry struct {
	Profile    string  `json:"profile"`
	Percentage float64 `json:"percentage"`
}

// Baseline is a snapshot of match results used to track progress between runs.
type Baseline struct {
	Version              string           `json:"version"`
	CreatedAt            string           `json:"created_at"`
	RunID                string           `json:"run_id,omitempty"`
	InventoryFingerprint string           `json:"inventory_fingerprint"`
	Builds               map[string]Entry `json:"builds"`
}

// CreateBaseline records the best profile of every match.
func CreateBaseline(matches []match.BuildMatch, gear types.Gear, runID string, now time.Time) *Baseline {
	b := &Baseline{
		Version:              Version,
		CreatedAt:            now.UTC().Format(time.RFC3339),
		RunID:                runID,
		InventoryFingerprint: InventoryFingerprint(gear),
		Builds:               make(map[string]Entry, len(matches)),
	}
	for _, m := range matches {
		b.Builds[m.BuildID] = Entry{Profile: m.BestProfile, Percentage: m.BestPercentage}
	}
	return b
}

// LoadBaseline loads a baseline from a JSON file
func LoadBaseline(path string) (*Baseline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read baseline file: %w", err)
	}

	var b Baseline
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse baseline file: %w", err)
	}
	if b.Builds == nil {
		b.Builds = make(map[string]Entry)
	}
	return &b, nil
}

// SaveBaseline saves the baseline to a JSON file
func (b *Baseline) SaveBaseline(path string) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal baseline: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write baseline file: %w", err)
	}
	return nil
}

// SameInventory reports whether gear matches the inventory the baseline was taken from.
func (b *Baseline) SameInventory(gear types.Gear) bool {
	return b.InventoryFingerprint == InventoryFingerprint(gear)
}

// Delta is the change of one build's best percentage since the baseline.
type Delta struct {
	BuildID         string  `json:"build_id"`
	Previous        float64 `json:"previous"`
	Current         float64 `json:"current"`
	Change          float64 `json:"change"`
	New             bool    `json:"new,omitempty"`
	PreviousProfile string  `json:"previous_profile,omitempty"`
}

// String renders the change as a signed percentage, e.g. "+4.5%".
func (d Delta) String() string {
	if d.New {
		return "new"
	}
	if d.Change == 0 {
		return "±0.0%"
	}
	return fmt.Sprintf("%+.1f%%", d.Change)
}

// Compare returns one delta per match, in match order. Builds absent from the
// baseline are marked New.
func (b *Baseline) Compare(matches []match.BuildMatch) []Delta {
	deltas := make([]Delta, 0, len(matches))
	for _, m := range matches {
		d := Delta{BuildID: m.BuildID, Current: m.BestPercentage}
		prev, ok := b.Builds[m.BuildID]
		if !ok {
			d.New = true
			deltas = append(deltas, d)
			continue
		}
		d.Previous = prev.Percentage
		d.Change = math.Round((m.BestPercentage-prev.Percentage)*10) / 10
		if prev.Profile != m.BestProfile {
			d.PreviousProfile = prev.Profile
		}
		deltas = append(deltas, d)
	}
	return deltas
}

// InventoryFingerprint hashes every item that can influence a score. Item and
// slot order do not matter.
func InventoryFingerprint(gear types.Gear) string {
	var lines []string
	for slot, items := range gear {
		for _, item := range items {
			lines = append(lines, string(slot)+"="+scoring.ItemFingerprint(item))
		}
	}
	sort.Strings(lines)

	hash := sha256.Sum256([]byte(strings.Join(lines, "\n")))
	return fmt.Sprintf("%x", hash)
}
