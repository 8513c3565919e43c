package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotcommander/gearfit/internal/baseline"
	"github.com/dotcommander/gearfit/internal/cue"
	"github.com/dotcommander/gearfit/internal/scoring"
	"github.com/dotcommander/gearfit/internal/types"
)

func TestJSONFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	r := sampleReport()
	r.RunID = "run-1"
	r.Deltas = map[string]baseline.Delta{"ball_lightning": {BuildID: "ball_lightning", Change: 2}}

	require.NoError(t, NewJSONFormatter(&buf, true, "").Format(r))

	var report JSONReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &report))

	assert.Equal(t, Tool, report.Header.Tool)
	assert.Equal(t, "run-1", report.Header.RunID)
	assert.Equal(t, 2, report.Summary.Builds)
	assert.Equal(t, 1, report.Summary.Complete)
	assert.Equal(t, "ball_lightning", report.Summary.BestBuild)
	assert.Equal(t, 62.5, report.Summary.BestPercentage)
	require.NotNil(t, report.Summary.Unchanged)
	assert.False(t, *report.Summary.Unchanged)

	require.Len(t, report.Results, 2)
	assert.Equal(t, "ball_lightning", report.Results[0].BuildID)
	require.NotNil(t, report.Results[0].Delta)
	assert.Equal(t, 2.0, report.Results[0].Delta.Change)
	assert.Nil(t, report.Results[1].Delta)

	// Notes are dropped unless requested, without touching the input.
	endgame := report.Results[0].Profiles[1]
	assert.Empty(t, endgame.Slots[0].Notes)
	assert.NotEmpty(t, r.Matches[0].Profiles[1].Slots[0].Notes)
}

func TestJSONFormatter_FormatNotes(t *testing.T) {
	var buf bytes.Buffer
	r := sampleReport()
	r.ShowNotes = true

	require.NoError(t, NewJSONFormatter(&buf, false, "").Format(r))
	assert.Contains(t, buf.String(), "Best-in-slot unique")
	assert.NotContains(t, buf.String(), "gear_unchanged")
}

func TestJSONFormatter_OutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	var buf bytes.Buffer

	require.NoError(t, NewJSONFormatter(&buf, true, path).Format(sampleReport()))
	assert.Empty(t, buf.String())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))

	bad := NewJSONFormatter(&buf, true, filepath.Join(t.TempDir(), "missing", "report.json"))
	err = bad.Format(sampleReport())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error writing to file")
}

func TestJSONFormatter_FormatScore(t *testing.T) {
	var buf bytes.Buffer
	result := &ScoreResult{
		BuildID: "ball_lightning",
		Profile: "endgame",
		Slot:    types.SlotHelm,
		Item:    types.Item{Name: "Harlequin Crest", Slot: types.SlotHelm},
		Scored: scoring.ScoredItem{
			Score:   100,
			Details: []scoring.ScoringMetric{{Category: scoring.CategoryUnique, Name: "harlequin_crest"}},
		},
	}

	require.NoError(t, NewJSONFormatter(&buf, false, "").FormatScore(result))

	var got JSONScore
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, types.SlotHelm, got.Slot)
	assert.Equal(t, 100.0, got.Scored.Score)
	assert.Empty(t, got.Scored.Details)

	buf.Reset()
	result.Explain = true
	require.NoError(t, NewJSONFormatter(&buf, false, "").FormatScore(result))
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Len(t, got.Scored.Details, 1)
}

func TestJSONFormatter_FormatValidation(t *testing.T) {
	var buf bytes.Buffer
	results := []FileResult{
		{File: "a.json", Type: "build"},
		{File: "b.json", Type: "item", Errors: []cue.ValidationError{{Path: "slot", Message: "bad slot", Severity: "error"}}},
	}

	require.NoError(t, NewJSONFormatter(&buf, true, "").FormatValidation(results))

	var got struct {
		Results []JSONFileResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got.Results, 2)
	assert.True(t, got.Results[0].Success)
	assert.False(t, got.Results[1].Success)
	assert.Equal(t, "bad slot", got.Results[1].Errors[0].Message)
}
