package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotcommander/gearfit/internal/catalog"
)

func resetBuildsFlags(t *testing.T) {
	t.Helper()
	oldClasses, oldPattern := buildsClasses, buildsPattern
	t.Cleanup(func() { buildsClasses, buildsPattern = oldClasses, oldPattern })
}

func TestRunBuilds(t *testing.T) {
	tests := []struct {
		name     string
		format   string
		classes  []string
		contains []string
		excludes []string
	}{
		{
			name:     "table",
			format:   "console",
			contains: []string{"ID", "CLASS", "ball_lightning", "twisting_blades", "starter, endgame", "2 builds"},
		},
		{
			name:     "class filter",
			format:   "console",
			classes:  []string{"rogue"},
			contains: []string{"twisting_blades", "1 builds"},
			excludes: []string{"ball_lightning"},
		},
		{
			name:     "markdown",
			format:   "markdown",
			contains: []string{"| ID | Class | Tier | Name | Profiles |", "| ball_lightning | sorcerer | S | Ball Lightning | starter, endgame |"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetBuildsFlags(t)
			setupWorkspace(t, map[string]any{"format": tt.format})
			buildsClasses = tt.classes

			var buf bytes.Buffer
			require.NoError(t, runBuilds(&buf))
			for _, want := range tt.contains {
				assert.Contains(t, buf.String(), want)
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, buf.String(), unwanted)
			}
		})
	}
}

func TestRunBuildsJSON(t *testing.T) {
	resetBuildsFlags(t)
	setupWorkspace(t, map[string]any{"format": "json"})

	var buf bytes.Buffer
	require.NoError(t, runBuilds(&buf))

	var entries []catalog.Entry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entries))
	// Grouped by class, then id.
	require.Len(t, entries, 2)
	assert.Equal(t, "twisting_blades", entries[0].ID)
	assert.Equal(t, "rogue", entries[0].Class)
	assert.Equal(t, []string{"default"}, entries[0].Profiles)
	assert.Equal(t, "ball_lightning", entries[1].ID)
	assert.Equal(t, []string{"starter", "endgame"}, entries[1].Profiles)
}

func TestWriteBuildsTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	writeBuildsTable(&buf, nil)
	assert.Equal(t, "No builds found.\n", buf.String())
}
