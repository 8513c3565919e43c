// Package output renders match reports, item scores and validation results
// as console text, JSON or Markdown.
package output

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/dotcommander/gearfit/internal/baseline"
	"github.com/dotcommander/gearfit/internal/cue"
	"github.com/dotcommander/gearfit/internal/match"
	"github.com/dotcommander/gearfit/internal/scoring"
	"github.com/dotcommander/gearfit/internal/types"
)

// Tool is the name recorded in report headers.
const Tool = "gearfit"

// Report is a ranked match run ready for rendering.
type Report struct {
	Matches   []match.BuildMatch
	Deltas    map[string]baseline.Delta // keyed by build id, nil without a baseline
	Unchanged bool                      // gear is identical to the baseline's
	ShowNotes bool
	RunID     string
	Catalog   string
	StartTime time.Time
}

// Delta returns the baseline delta of a build, if one was computed.
func (r *Report) Delta(buildID string) (baseline.Delta, bool) {
	if r.Deltas == nil {
		return baseline.Delta{}, false
	}
	d, ok := r.Deltas[buildID]
	return d, ok
}

// ScoreResult is one item scored against one slot of a build profile.
type ScoreResult struct {
	BuildID string
	Profile string
	Slot    types.Slot
	Item    types.Item
	Scored  scoring.ScoredItem
	Notes   []string
	Explain bool
}

// FileResult holds the validation outcome of one file.
type FileResult struct {
	File   string
	Type   string
	Errors []cue.ValidationError
}

// Formatter renders each kind of result.
type Formatter interface {
	Format(report *Report) error
	FormatScore(result *ScoreResult) error
	FormatValidation(results []FileResult) error
}

var (
	redStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	greenStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	yellowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	boldStyle   = lipgloss.NewStyle().Bold(true)
)

// tierStyle colors a tier label.
func tierStyle(t types.Tier) lipgloss.Style {
	switch t {
	case types.TierBIS:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true) // magenta
	case types.TierAncestral:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // yellow
	case types.TierStarter:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("12")) // blue
	case types.TierNotRecommended:
		return dimStyle
	default:
		return redStyle
	}
}

// tierLabel is the display name of a tier.
func tierLabel(t types.Tier) string {
	switch t {
	case types.TierBIS:
		return "BiS"
	case types.TierNotRecommended:
		return "Not recommended"
	case "":
		return "None"
	default:
		return match.Humanize(string(t))
	}
}

// itemName is the display name of a slot's chosen item.
func itemName(sm match.SlotMatch) string {
	if sm.Item == nil {
		return "(empty)"
	}
	if sm.Item.Name != "" {
		return sm.Item.Name
	}
	if sm.Item.UniqueID != "" {
		return match.Humanize(sm.Item.UniqueID)
	}
	return "(unnamed)"
}

// progressBar renders pct (0-100) as a fixed width bar.
func progressBar(pct float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := int(pct/100*float64(width) + 0.5)
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// errorCount counts validation errors across files.
func errorCount(results []FileResult) (files, errors int) {
	for _, r := range results {
		if len(r.Errors) > 0 {
			files++
			errors += len(r.Errors)
		}
	}
	return files, errors
}
