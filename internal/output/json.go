package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dotcommander/gearfit/internal/baseline"
	"github.com/dotcommander/gearfit/internal/match"
	"github.com/dotcommander/gearfit/internal/scoring"
	"github.com/dotcommander/gearfit/internal/types"
)

// Version is the report format version.
const Version = "1.0.0"

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	w          io.Writer
	indent     bool
	outputFile string
}

// NewJSONFormatter creates a new JSONFormatter. Output goes to outputFile when
// set, otherwise to w (stdout when nil).
func NewJSONFormatter(w io.Writer, indent bool, outputFile string) *JSONFormatter {
	if w == nil {
		w = os.Stdout
	}
	return &JSONFormatter{
		w:          w,
		indent:     indent,
		outputFile: outputFile,
	}
}

// JSONReport represents the complete JSON report structure
type JSONReport struct {
	Header  JSONHeader   `json:"header"`
	Summary JSONSummary  `json:"summary"`
	Results []JSONResult `json:"results"`
}

// JSONHeader contains report metadata
type JSONHeader struct {
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
	RunID     string `json:"run_id,omitempty"`
	Catalog   string `json:"catalog,omitempty"`
}

// JSONSummary contains summary statistics
type JSONSummary struct {
	Builds         int     `json:"builds"`
	Complete       int     `json:"complete"`
	BestBuild      string  `json:"best_build,omitempty"`
	BestPercentage float64 `json:"best_percentage"`
	Unchanged      *bool   `json:"gear_unchanged,omitempty"`
	Duration       string  `json:"duration"`
}

// JSONResult is one build's match with its optional baseline delta.
type JSONResult struct {
	match.BuildMatch
	Delta *baseline.Delta `json:"delta,omitempty"`
}

// JSONScore is the JSON form of a single item score.
type JSONScore struct {
	BuildID string             `json:"build_id"`
	Profile string             `json:"profile"`
	Slot    types.Slot         `json:"slot"`
	Item    types.Item         `json:"item"`
	Scored  scoring.ScoredItem `json:"scored"`
	Notes   []string           `json:"notes,omitempty"`
}

// JSONFileResult is the JSON form of one file's validation result.
type JSONFileResult struct {
	File    string                `json:"file"`
	Type    string                `json:"type"`
	Success bool                  `json:"success"`
	Errors  []JSONValidationError `json:"errors,omitempty"`
}

// JSONValidationError represents a validation error
type JSONValidationError struct {
	Path     string `json:"path,omitempty"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// Format writes the match report as JSON.
func (f *JSONFormatter) Format(r *Report) error {
	start := r.StartTime
	if start.IsZero() {
		start = time.Now()
	}

	report := JSONReport{
		Header: f.header(r.RunID, r.Catalog),
		Summary: JSONSummary{
			Builds:   len(r.Matches),
			Duration: time.Since(start).Round(time.Millisecond).String(),
		},
		Results: make([]JSONResult, len(r.Matches)),
	}
	if len(r.Matches) > 0 {
		report.Summary.BestBuild = r.Matches[0].BuildID
		report.Summary.BestPercentage = r.Matches[0].BestPercentage
	}
	if r.Deltas != nil {
		unchanged := r.Unchanged
		report.Summary.Unchanged = &unchanged
	}

	for i, m := range r.Matches {
		if m.BestPercentage >= 100 {
			report.Summary.Complete++
		}
		result := JSONResult{BuildMatch: m}
		if !r.ShowNotes {
			result.BuildMatch.Profiles = stripNotes(m.Profiles)
		}
		if d, ok := r.Delta(m.BuildID); ok {
			result.Delta = &d
		}
		report.Results[i] = result
	}

	return f.write(report)
}

// FormatScore writes a single item score as JSON.
func (f *JSONFormatter) FormatScore(s *ScoreResult) error {
	scored := s.Scored
	if !s.Explain {
		scored.Details = nil
	}
	return f.write(JSONScore{
		BuildID: s.BuildID,
		Profile: s.Profile,
		Slot:    s.Slot,
		Item:    s.Item,
		Scored:  scored,
		Notes:   s.Notes,
	})
}

// FormatValidation writes validation results as JSON.
func (f *JSONFormatter) FormatValidation(results []FileResult) error {
	out := make([]JSONFileResult, len(results))
	for i, r := range results {
		jr := JSONFileResult{File: r.File, Type: r.Type, Success: len(r.Errors) == 0}
		for _, err := range r.Errors {
			jr.Errors = append(jr.Errors, JSONValidationError{
				Path:     err.Path,
				Message:  err.Message,
				Severity: err.Severity,
			})
		}
		out[i] = jr
	}
	return f.write(struct {
		Header  JSONHeader       `json:"header"`
		Results []JSONFileResult `json:"results"`
	}{Header: f.header("", ""), Results: out})
}

func (f *JSONFormatter) header(runID, catalog string) JSONHeader {
	return JSONHeader{
		Tool:      Tool,
		Version:   Version,
		Timestamp: time.Now().Format(time.RFC3339),
		RunID:     runID,
		Catalog:   catalog,
	}
}

func (f *JSONFormatter) write(v any) error {
	var jsonBytes []byte
	var err error

	if f.indent {
		jsonBytes, err = json.MarshalIndent(v, "", "  ")
	} else {
		jsonBytes, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %w", err)
	}

	if f.outputFile != "" {
		if err := os.WriteFile(f.outputFile, append(jsonBytes, '\n'), 0644); err != nil {
			return fmt.Errorf("error writing to file %s: %w", f.outputFile, err)
		}
		return nil
	}
	_, err = fmt.Fprintln(f.w, string(jsonBytes))
	return err
}

// stripNotes copies profiles without slot notes.
func stripNotes(profiles []match.ProfileMatch) []match.ProfileMatch {
	out := make([]match.ProfileMatch, len(profiles))
	for i, p := range profiles {
		slots := make([]match.SlotMatch, len(p.Slots))
		copy(slots, p.Slots)
		for j := range slots {
			slots[j].Notes = nil
		}
		p.Slots = slots
		out[i] = p
	}
	return out
}
