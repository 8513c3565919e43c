package outputters

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dotcommander/gearfit/internal/config"
	"github.com/dotcommander/gearfit/internal/output"
)

// Outputter handles output formatting
type Outputter struct {
	config *config.Config
	w      io.Writer
}

// NewOutputter creates a new Outputter writing to w, or stdout when w is nil.
func NewOutputter(config *config.Config, w io.Writer) *Outputter {
	if w == nil {
		w = os.Stdout
	}
	return &Outputter{
		config: config,
		w:      w,
	}
}

// Formatter returns the formatter for format.
func (o *Outputter) Formatter(format string) (output.Formatter, error) {
	switch format {
	case "console":
		return output.NewConsoleFormatter(o.w, o.config.Quiet, o.config.Verbose), nil
	case "json":
		return output.NewJSONFormatter(o.w, true, o.config.Output), nil
	case "markdown":
		return output.NewMarkdownFormatter(o.w, o.config.Verbose, o.config.Output), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// Format formats the match report using the configured format
func (o *Outputter) Format(report *output.Report, format string) error {
	if report.StartTime.IsZero() {
		report.StartTime = time.Now()
	}
	if report.Catalog == "" {
		report.Catalog = o.config.Catalog
	}
	if !report.ShowNotes {
		report.ShowNotes = o.config.ShowNotes
	}

	formatter, err := o.Formatter(format)
	if err != nil {
		return err
	}
	return formatter.Format(report)
}

// FormatScore formats a single item score using the configured format
func (o *Outputter) FormatScore(result *output.ScoreResult, format string) error {
	formatter, err := o.Formatter(format)
	if err != nil {
		return err
	}
	return formatter.FormatScore(result)
}

// FormatValidation formats validation results using the configured format
func (o *Outputter) FormatValidation(results []output.FileResult, format string) error {
	formatter, err := o.Formatter(format)
	if err != nil {
		return err
	}
	return formatter.FormatValidation(results)
}
