package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/dotcommander/gearfit/internal/match"
	"github.com/dotcommander/gearfit/internal/scoring"
)

// ConsoleFormatter formats output for console display
type ConsoleFormatter struct {
	w         io.Writer
	quiet     bool
	verbose   bool
	colorize  bool
	startTime time.Time
}

// NewConsoleFormatter creates a new ConsoleFormatter writing to w, or stdout when w is nil.
func NewConsoleFormatter(w io.Writer, quiet, verbose bool) *ConsoleFormatter {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleFormatter{
		w:         w,
		quiet:     quiet,
		verbose:   verbose,
		colorize:  true,
		startTime: time.Now(),
	}
}

// Format prints the ranking followed by the slot breakdown of every build.
func (f *ConsoleFormatter) Format(r *Report) error {
	if f.quiet {
		return nil
	}
	if len(r.Matches) == 0 {
		fmt.Fprintln(f.w, "No builds matched.")
		return nil
	}

	printRanking(f.w, r, f.colorize)

	for i := range r.Matches {
		f.printBuild(r, &r.Matches[i])
	}

	f.printSummary(r)
	return nil
}

// printBuild prints the best profile of a build, or every profile when verbose.
func (f *ConsoleFormatter) printBuild(r *Report, m *match.BuildMatch) {
	fmt.Fprintln(f.w)
	header := fmt.Sprintf("%s (%s)", m.BuildName, m.Class)
	if m.BuildTier != "" {
		header += " [" + m.BuildTier + "]"
	}
	fmt.Fprintln(f.w, f.style(boldStyle).Render(header))
	if m.SourceURL != "" && f.verbose {
		fmt.Fprintln(f.w, f.style(dimStyle).Render("  "+m.SourceURL))
	}
	if d, ok := r.Delta(m.BuildID); ok && d.PreviousProfile != "" {
		fmt.Fprintf(f.w, "  best profile changed: %s → %s\n", d.PreviousProfile, m.BestProfile)
	}

	for i := range m.Profiles {
		p := &m.Profiles[i]
		if !f.verbose && p.Profile != m.BestProfile {
			continue
		}
		f.printProfile(r, p)
	}
}

func (f *ConsoleFormatter) printProfile(r *Report, p *match.ProfileMatch) {
	fmt.Fprintf(f.w, "  %s  %.1f%%  (%.0f/%.0f)\n", p.Profile, p.Percentage, p.Score, p.MaxScore)

	for _, sm := range p.Slots {
		tier := fmt.Sprintf("%-15s", tierLabel(sm.Tier))
		fmt.Fprintf(f.w, "    %-10s %s %s", sm.Slot, f.style(tierStyle(sm.Tier)).Render(tier), itemName(sm))
		if sm.Item != nil {
			fmt.Fprintf(f.w, "  %s", f.style(dimStyle).Render(fmt.Sprintf("%.0f/%.0f", sm.Score, sm.MaxScore)))
		}
		fmt.Fprintln(f.w)
		if r.ShowNotes {
			for _, note := range sm.Notes {
				fmt.Fprintf(f.w, "      %s\n", f.style(dimStyle).Render("· "+note))
			}
		}
	}

	if len(p.MissingCritical) > 0 {
		fmt.Fprintln(f.w, "    Missing:")
		for _, mi := range p.MissingCritical {
			fmt.Fprintf(f.w, "      %s %s (%s)\n", f.style(redStyle).Render("✘"), match.Humanize(mi.Item), mi.Slot)
		}
	}
	if len(p.UpgradePriority) > 0 {
		fmt.Fprintln(f.w, "    Upgrades:")
		for _, u := range p.UpgradePriority {
			fmt.Fprintf(f.w, "      %s %s: %s\n", f.style(yellowStyle).Render("↑"), u.Slot, u.Suggestion)
		}
	}
}

// printSummary prints the closing line.
func (f *ConsoleFormatter) printSummary(r *Report) {
	fmt.Fprintln(f.w)

	complete := 0
	for _, m := range r.Matches {
		if m.BestPercentage >= 100 {
			complete++
		}
	}

	start := r.StartTime
	if start.IsZero() {
		start = f.startTime
	}
	text := fmt.Sprintf("%d %s matched (%s)", len(r.Matches), pluralizeCount("build", len(r.Matches)),
		formatDuration(time.Since(start)))
	if r.Deltas != nil && r.Unchanged {
		text += ", gear unchanged since baseline"
	}

	switch {
	case complete > 0 && f.colorize:
		printCelebration(f.w, fmt.Sprintf("%s, %d complete", text, complete))
	case complete > 0:
		fmt.Fprintf(f.w, "%s, %d complete\n", text, complete)
	default:
		fmt.Fprintln(f.w, text)
	}
}

// FormatScore prints an item's score for one slot. With Explain set, every
// scoring metric is listed.
func (f *ConsoleFormatter) FormatScore(s *ScoreResult) error {
	if f.quiet {
		return nil
	}

	name := s.Item.Name
	if name == "" {
		name = "(unnamed)"
	}
	fmt.Fprintf(f.w, "%s → %s / %s / %s\n", f.style(boldStyle).Render(name), s.BuildID, s.Profile, s.Slot)
	fmt.Fprintf(f.w, "  Score: %.1f / %.1f (%.0f%%)  %s\n",
		s.Scored.Score, s.Scored.MaxScore, s.Scored.Percentage()*100,
		f.style(tierStyle(s.Scored.Tier)).Render(tierLabel(s.Scored.Tier)))

	if s.Explain {
		details := append([]scoring.ScoringMetric(nil), s.Scored.Details...)
		sort.SliceStable(details, func(i, j int) bool { return details[i].Category < details[j].Category })
		for _, d := range details {
			mark := f.style(greenStyle).Render("✓")
			if !d.Passed {
				mark = f.style(dimStyle).Render("·")
			}
			line := fmt.Sprintf("    %s %-10s %-28s %5.1f / %5.1f", mark, d.Category, d.Name, d.Points, d.MaxPoints)
			if d.Note != "" {
				line += "  " + d.Note
			}
			fmt.Fprintln(f.w, line)
		}
	}

	for _, note := range s.Notes {
		fmt.Fprintf(f.w, "  · %s\n", note)
	}
	return nil
}

// FormatValidation prints failing files and a pass count.
func (f *ConsoleFormatter) FormatValidation(results []FileResult) error {
	if f.quiet {
		return nil
	}

	if f.verbose {
		for _, r := range results {
			if len(r.Errors) == 0 {
				fmt.Fprintf(f.w, "%s %s\n", f.style(greenStyle).Render("✓"), r.File)
			}
		}
	}
	printAllErrors(f.w, results, f.colorize)

	failed, errs := errorCount(results)
	text := fmt.Sprintf("%d/%d passed", len(results)-failed, len(results))
	if errs > 0 {
		text += fmt.Sprintf(", %d %s", errs, pluralizeCount("error", errs))
		fmt.Fprintln(f.w, f.style(redStyle).Render(text))
		return nil
	}
	fmt.Fprintln(f.w, f.style(greenStyle).Render("✓ "+text))
	return nil
}

// style returns s when colorizing and a plain style otherwise.
func (f *ConsoleFormatter) style(s lipgloss.Style) lipgloss.Style {
	if f.colorize {
		return s
	}
	return lipgloss.NewStyle()
}
