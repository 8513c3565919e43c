package output

import (
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/dotcommander/gearfit/internal/cue"
	"github.com/dotcommander/gearfit/internal/match"
)

// barWidth is the width of ranking progress bars.
const barWidth = 20

// calculateColumnWidths computes the build name and profile column widths.
func calculateColumnWidths(matches []match.BuildMatch) (maxNameLen, maxProfileLen int) {
	for _, m := range matches {
		if n := utf8.RuneCountInString(m.BuildName); n > maxNameLen {
			maxNameLen = n
		}
		if n := utf8.RuneCountInString(m.BestProfile); n > maxProfileLen {
			maxProfileLen = n
		}
	}
	return maxNameLen, maxProfileLen
}

// percentStyle picks the ranking color for a completion percentage.
func percentStyle(pct float64) lipgloss.Style {
	switch {
	case pct >= 75:
		return greenStyle
	case pct >= 40:
		return yellowStyle
	default:
		return redStyle
	}
}

// printRanking prints one aligned line per build, best first.
func printRanking(w io.Writer, r *Report, colorize bool) {
	maxNameLen, maxProfileLen := calculateColumnWidths(r.Matches)

	for i, m := range r.Matches {
		name := fmt.Sprintf("%-*s", maxNameLen, m.BuildName)
		profile := fmt.Sprintf("%-*s", maxProfileLen, m.BestProfile)
		pct := fmt.Sprintf("%5.1f%%", m.BestPercentage)
		bar := progressBar(m.BestPercentage, barWidth)

		delta := ""
		if d, ok := r.Delta(m.BuildID); ok {
			delta = "  " + d.String()
		}

		if colorize {
			style := percentStyle(m.BestPercentage)
			fmt.Fprintf(w, "%3d. %s  %s  %s %s%s\n",
				i+1, boldStyle.Render(name), dimStyle.Render(profile),
				style.Render(bar), style.Render(pct), dimStyle.Render(delta))
		} else {
			fmt.Fprintf(w, "%3d. %s  %s  %s %s%s\n", i+1, name, profile, bar, pct, delta)
		}
	}
}

// printAllErrors prints validation errors grouped by file.
func printAllErrors(w io.Writer, results []FileResult, colorize bool) {
	for _, r := range results {
		if len(r.Errors) == 0 {
			continue
		}
		if colorize {
			fmt.Fprintf(w, "  %s\n", redStyle.Render(r.File))
		} else {
			fmt.Fprintf(w, "  %s\n", r.File)
		}
		for _, err := range r.Errors {
			printError(w, err, colorize)
		}
	}
}

// printError prints a single error with indentation.
func printError(w io.Writer, err cue.ValidationError, colorize bool) {
	style := lipgloss.NewStyle()
	prefix := "    ✘ "
	if err.Severity == "warning" {
		prefix = "    ⚠ "
	}
	if colorize {
		if err.Severity == "warning" {
			style = yellowStyle
		} else {
			style = redStyle
		}
	}

	if err.Path != "" {
		fmt.Fprintf(w, "%s%s: %s\n", prefix, style.Render(err.Path), err.Message)
	} else {
		fmt.Fprintf(w, "%s%s\n", prefix, style.Render(err.Message))
	}
}

// pluralizeCount returns singular or plural form based on count.
func pluralizeCount(s string, count int) string {
	if count == 1 {
		return s
	}
	return s + "s"
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
