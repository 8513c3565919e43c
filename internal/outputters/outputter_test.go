package outputters

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotcommander/gearfit/internal/config"
	"github.com/dotcommander/gearfit/internal/match"
	"github.com/dotcommander/gearfit/internal/output"
	"github.com/dotcommander/gearfit/internal/types"
)

func testReport() *output.Report {
	return &output.Report{Matches: []match.BuildMatch{{
		BuildID:        "ball_lightning",
		BuildName:      "Ball Lightning",
		Class:          "sorcerer",
		BestProfile:    "default",
		BestPercentage: 50,
		Profiles: []match.ProfileMatch{{
			Profile:    "default",
			Percentage: 50,
			Slots:      []match.SlotMatch{{Slot: types.SlotHelm, Tier: types.TierStarter, Notes: []string{"note"}}},
		}},
	}}}
}

func TestNewOutputter(t *testing.T) {
	cfg := &config.Config{Format: "console"}
	o := NewOutputter(cfg, nil)
	require.NotNil(t, o)
	assert.Equal(t, cfg, o.config)
	assert.NotNil(t, o.w)
}

func TestOutputter_Formatter(t *testing.T) {
	o := NewOutputter(&config.Config{}, &bytes.Buffer{})

	tests := []struct {
		format  string
		want    any
		wantErr bool
	}{
		{"console", &output.ConsoleFormatter{}, false},
		{"json", &output.JSONFormatter{}, false},
		{"markdown", &output.MarkdownFormatter{}, false},
		{"xml", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			f, err := o.Formatter(tt.format)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "unsupported format: xml")
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, f)
		})
	}
}

func TestOutputter_FormatAppliesConfig(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Config{Catalog: "/data/builds", ShowNotes: true}
	o := NewOutputter(cfg, &buf)

	r := testReport()
	require.NoError(t, o.Format(r, "json"))

	assert.False(t, r.StartTime.IsZero())
	assert.Equal(t, "/data/builds", r.Catalog)
	assert.True(t, r.ShowNotes)

	var got output.JSONReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "/data/builds", got.Header.Catalog)
	assert.Equal(t, []string{"note"}, got.Results[0].Profiles[0].Slots[0].Notes)
}

func TestOutputter_FormatQuietConsole(t *testing.T) {
	var buf bytes.Buffer
	o := NewOutputter(&config.Config{Quiet: true}, &buf)

	require.NoError(t, o.Format(testReport(), "console"))
	assert.Empty(t, buf.String())
}

func TestOutputter_FormatToFile(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "out.md")
	o := NewOutputter(&config.Config{Output: path}, &buf)

	require.NoError(t, o.Format(testReport(), "markdown"))
	assert.Empty(t, buf.String())
	assert.FileExists(t, path)
}

func TestOutputter_UnsupportedFormat(t *testing.T) {
	o := NewOutputter(&config.Config{}, &bytes.Buffer{})

	assert.Error(t, o.Format(testReport(), "yaml"))
	assert.Error(t, o.FormatScore(&output.ScoreResult{}, "yaml"))
	assert.Error(t, o.FormatValidation(nil, "yaml"))
}

func TestOutputter_FormatScoreAndValidation(t *testing.T) {
	var buf bytes.Buffer
	o := NewOutputter(&config.Config{}, &buf)

	require.NoError(t, o.FormatScore(&output.ScoreResult{BuildID: "b", Profile: "p", Slot: types.SlotRing, Item: types.Item{Name: "Ring"}}, "markdown"))
	assert.Contains(t, buf.String(), "# Ring")

	buf.Reset()
	require.NoError(t, o.FormatValidation([]output.FileResult{{File: "a.json", Type: "build"}}, "markdown"))
	assert.Contains(t, buf.String(), "All files passed validation")
}
