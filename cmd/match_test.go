package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotcommander/gearfit/internal/baseline"
	"github.com/dotcommander/gearfit/internal/output"
)

func readReport(t *testing.T, path string) output.JSONReport {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var report output.JSONReport
	require.NoError(t, json.Unmarshal(data, &report))
	return report
}

func resetMatchFlags(t *testing.T) {
	t.Helper()
	oldTop, oldSave, oldBuilds := matchTop, matchSaveBaseline, matchBuilds
	t.Cleanup(func() {
		matchTop, matchSaveBaseline, matchBuilds = oldTop, oldSave, oldBuilds
	})
}

func TestRunMatch(t *testing.T) {
	resetMatchFlags(t)
	out := filepath.Join(t.TempDir(), "report.json")
	ws := setupWorkspace(t, map[string]any{"format": "json", "output": out, "workers": 2})

	require.NoError(t, runMatch([]string{ws.inventory}))

	report := readReport(t, out)
	assert.Equal(t, 2, report.Summary.Builds)
	assert.Equal(t, "ball_lightning", report.Summary.BestBuild)
	assert.Equal(t, ws.catalog, report.Header.Catalog)
	assert.NotEmpty(t, report.Header.RunID)

	require.Len(t, report.Results, 2)
	best := report.Results[0]
	assert.Equal(t, "ball_lightning", best.BuildID)
	assert.Len(t, best.Profiles, 2)
	assert.Greater(t, best.BestPercentage, 0.0)
	assert.Equal(t, "twisting_blades", report.Results[1].BuildID)
	assert.Equal(t, 0.0, report.Results[1].BestPercentage)
}

func TestRunMatchFilters(t *testing.T) {
	resetMatchFlags(t)
	out := filepath.Join(t.TempDir(), "report.json")
	ws := setupWorkspace(t, map[string]any{
		"format":   "json",
		"output":   out,
		"classes":  []string{"Sorcerer"},
		"profiles": []string{"endgame"},
	})

	require.NoError(t, runMatch([]string{ws.inventory}))

	report := readReport(t, out)
	require.Len(t, report.Results, 1)
	assert.Equal(t, "endgame", report.Results[0].BestProfile)
	assert.Len(t, report.Results[0].Profiles, 1)
}

func TestRunMatchTop(t *testing.T) {
	resetMatchFlags(t)
	out := filepath.Join(t.TempDir(), "report.json")
	ws := setupWorkspace(t, map[string]any{"format": "json", "output": out})
	matchTop = 1

	require.NoError(t, runMatch([]string{ws.inventory}))
	assert.Len(t, readReport(t, out).Results, 1)
}

func TestRunMatchBaseline(t *testing.T) {
	resetMatchFlags(t)
	out := filepath.Join(t.TempDir(), "report.json")
	ws := setupWorkspace(t, map[string]any{"format": "json", "output": out})
	baselinePath := filepath.Join(ws.dir, "baseline.json")
	viper.Set("baseline", baselinePath)

	// First run creates the baseline.
	matchSaveBaseline = true
	require.NoError(t, runMatch([]string{ws.inventory}))
	saved, err := baseline.LoadBaseline(baselinePath)
	require.NoError(t, err)
	assert.Len(t, saved.Builds, 2)
	assert.NotEmpty(t, saved.RunID)

	// Second run compares against it.
	matchSaveBaseline = false
	require.NoError(t, runMatch([]string{ws.inventory}))
	report := readReport(t, out)
	require.NotNil(t, report.Summary.Unchanged)
	assert.True(t, *report.Summary.Unchanged)
	require.NotNil(t, report.Results[0].Delta)
	assert.Equal(t, "±0.0%", report.Results[0].Delta.String())
}

func TestRunMatchErrors(t *testing.T) {
	resetMatchFlags(t)

	t.Run("missing baseline", func(t *testing.T) {
		ws := setupWorkspace(t, map[string]any{"format": "json", "output": filepath.Join(t.TempDir(), "r.json")})
		viper.Set("baseline", filepath.Join(ws.dir, "nope.json"))
		err := runMatch([]string{ws.inventory})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read baseline file")
	})

	t.Run("empty catalog", func(t *testing.T) {
		ws := setupWorkspace(t, nil)
		catalogPath = t.TempDir()
		err := runMatch([]string{ws.inventory})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no builds found")
	})

	t.Run("unknown profile", func(t *testing.T) {
		ws := setupWorkspace(t, map[string]any{"profiles": []string{"mythic"}})
		err := runMatch([]string{ws.inventory})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no builds have profile mythic")
	})

	t.Run("missing inventory", func(t *testing.T) {
		ws := setupWorkspace(t, nil)
		err := runMatch([]string{filepath.Join(ws.dir, "missing.json")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error loading inventory")
	})
}
