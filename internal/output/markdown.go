package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dotcommander/gearfit/internal/match"
)

// MarkdownFormatter formats output as Markdown
type MarkdownFormatter struct {
	w          io.Writer
	verbose    bool
	outputFile string
}

// NewMarkdownFormatter creates a new MarkdownFormatter
func NewMarkdownFormatter(w io.Writer, verbose bool, outputFile string) *MarkdownFormatter {
	if w == nil {
		w = os.Stdout
	}
	return &MarkdownFormatter{
		w:          w,
		verbose:    verbose,
		outputFile: outputFile,
	}
}

// Format writes the match report as Markdown.
func (f *MarkdownFormatter) Format(r *Report) error {
	var builder strings.Builder

	builder.WriteString("# Gearfit Report\n\n")
	builder.WriteString(fmt.Sprintf("**Generated:** %s\n\n", time.Now().Format("2006-01-02 15:04:05")))
	if r.Catalog != "" {
		builder.WriteString(fmt.Sprintf("**Catalog:** %s\n\n", r.Catalog))
	}
	if r.Deltas != nil && r.Unchanged {
		builder.WriteString("*Gear unchanged since baseline.*\n\n")
	}

	builder.WriteString("## Ranking\n\n")
	if len(r.Matches) == 0 {
		builder.WriteString("*No builds matched.*\n")
		return f.write(builder.String())
	}

	withDelta := r.Deltas != nil
	builder.WriteString("| # | Build | Class | Profile | Complete |")
	if withDelta {
		builder.WriteString(" Change |")
	}
	builder.WriteString("\n|---|-------|-------|---------|----------|")
	if withDelta {
		builder.WriteString("--------|")
	}
	builder.WriteString("\n")
	for i, m := range r.Matches {
		builder.WriteString(fmt.Sprintf("| %d | [%s](#%s) | %s | %s | %.1f%% |",
			i+1, escapeCell(m.BuildName), createAnchor(m.BuildName), m.Class, m.BestProfile, m.BestPercentage))
		if withDelta {
			d, _ := r.Delta(m.BuildID)
			builder.WriteString(fmt.Sprintf(" %s |", d.String()))
		}
		builder.WriteString("\n")
	}
	builder.WriteString("\n")

	for i := range r.Matches {
		f.writeBuild(&builder, r, &r.Matches[i])
	}

	return f.write(builder.String())
}

func (f *MarkdownFormatter) writeBuild(b *strings.Builder, r *Report, m *match.BuildMatch) {
	b.WriteString(fmt.Sprintf("## %s\n\n", m.BuildName))
	b.WriteString(fmt.Sprintf("Class: `%s`", m.Class))
	if m.BuildTier != "" {
		b.WriteString(fmt.Sprintf(" · Tier: `%s`", m.BuildTier))
	}
	if m.SourceURL != "" {
		b.WriteString(fmt.Sprintf(" · [Guide](%s)", m.SourceURL))
	}
	b.WriteString("\n\n")

	for i := range m.Profiles {
		p := &m.Profiles[i]
		if !f.verbose && p.Profile != m.BestProfile {
			continue
		}

		b.WriteString(fmt.Sprintf("### %s (%.1f%%)\n\n", p.Profile, p.Percentage))
		b.WriteString("| Slot | Tier | Item | Score |\n")
		b.WriteString("|------|------|------|-------|\n")
		for _, sm := range p.Slots {
			score := "-"
			if sm.Item != nil {
				score = fmt.Sprintf("%.0f/%.0f", sm.Score, sm.MaxScore)
			}
			item := escapeCell(itemName(sm))
			if r.ShowNotes && len(sm.Notes) > 0 {
				item += "<br>" + escapeCell(strings.Join(sm.Notes, "; "))
			}
			b.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n", sm.Slot, tierLabel(sm.Tier), item, score))
		}
		b.WriteString("\n")

		if len(p.MissingCritical) > 0 {
			b.WriteString("#### Missing\n\n")
			for _, mi := range p.MissingCritical {
				b.WriteString(fmt.Sprintf("- **%s** - %s (%s)\n", mi.Slot, match.Humanize(mi.Item), mi.Importance))
			}
			b.WriteString("\n")
		}
		if len(p.UpgradePriority) > 0 {
			b.WriteString("#### Upgrades\n\n")
			for _, u := range p.UpgradePriority {
				b.WriteString(fmt.Sprintf("- **%s** - %s\n", u.Slot, u.Suggestion))
			}
			b.WriteString("\n")
		}
	}
}

// FormatScore writes a single item score as Markdown.
func (f *MarkdownFormatter) FormatScore(s *ScoreResult) error {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("# %s\n\n", s.Item.Name))
	b.WriteString(fmt.Sprintf("Build `%s` · profile `%s` · slot `%s`\n\n", s.BuildID, s.Profile, s.Slot))
	b.WriteString(fmt.Sprintf("**Score:** %.1f / %.1f · **Tier:** %s\n\n", s.Scored.Score, s.Scored.MaxScore, tierLabel(s.Scored.Tier)))

	if s.Explain && len(s.Scored.Details) > 0 {
		b.WriteString("| Category | Name | Points | Max |\n")
		b.WriteString("|----------|------|--------|-----|\n")
		for _, d := range s.Scored.Details {
			b.WriteString(fmt.Sprintf("| %s | %s | %.1f | %.1f |\n", d.Category, escapeCell(d.Name), d.Points, d.MaxPoints))
		}
		b.WriteString("\n")
	}
	for _, note := range s.Notes {
		b.WriteString(fmt.Sprintf("- %s\n", note))
	}

	return f.write(b.String())
}

// FormatValidation writes validation results as Markdown.
func (f *MarkdownFormatter) FormatValidation(results []FileResult) error {
	var b strings.Builder

	failed, errs := errorCount(results)
	b.WriteString("# Gearfit Validation\n\n")
	b.WriteString("| Metric | Count |\n")
	b.WriteString("|--------|-------|\n")
	b.WriteString(fmt.Sprintf("| Files | %d |\n", len(results)))
	b.WriteString(fmt.Sprintf("| Failed | %d |\n", failed))
	b.WriteString(fmt.Sprintf("| Errors | %d |\n\n", errs))

	for _, r := range results {
		if !f.verbose && len(r.Errors) == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("## %s\n\n", r.File))
		b.WriteString(fmt.Sprintf("Status: %s · Type: `%s`\n\n", getStatusEmoji(len(r.Errors) == 0), r.Type))
		for _, err := range r.Errors {
			if err.Path != "" {
				b.WriteString(fmt.Sprintf("- **%s** - %s\n", err.Path, err.Message))
			} else {
				b.WriteString(fmt.Sprintf("- %s\n", err.Message))
			}
		}
		if len(r.Errors) > 0 {
			b.WriteString("\n")
		}
	}

	if failed == 0 {
		b.WriteString("✓ All files passed validation!\n")
	} else {
		b.WriteString(fmt.Sprintf("✗ %d %s failed validation\n", failed, pluralizeCount("file", failed)))
	}
	return f.write(b.String())
}

func (f *MarkdownFormatter) write(content string) error {
	if f.outputFile != "" {
		if err := os.WriteFile(f.outputFile, []byte(content), 0644); err != nil {
			return fmt.Errorf("error writing to file %s: %w", f.outputFile, err)
		}
		return nil
	}
	_, err := io.WriteString(f.w, content)
	return err
}

// getStatusEmoji returns an emoji for the status
func getStatusEmoji(success bool) string {
	if success {
		return "✅"
	}
	return "❌"
}

// createAnchor creates a markdown-safe anchor
func createAnchor(text string) string {
	anchor := strings.ToLower(strings.TrimSpace(text))
	anchor = strings.ReplaceAll(anchor, " ", "-")
	anchor = strings.ReplaceAll(anchor, ".", "")
	anchor = strings.ReplaceAll(anchor, "/", "-")
	anchor = strings.ReplaceAll(anchor, "'", "")
	return anchor
}

// escapeCell keeps pipes from breaking table cells.
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
