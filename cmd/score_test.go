package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotcommander/gearfit/internal/output"
)

const helmItem = `name: Harlequin Crest
slot: helm
item_power: 925
is_unique: true
unique_id: harlequin_crest
affixes:
  - name: cooldown_reduction
    value: 10
`

func resetScoreFlags(t *testing.T) {
	t.Helper()
	oldBuild, oldProfile, oldSlot, oldExplain := scoreBuild, scoreProfile, scoreSlot, scoreExplain
	t.Cleanup(func() {
		scoreBuild, scoreProfile, scoreSlot, scoreExplain = oldBuild, oldProfile, oldSlot, oldExplain
	})
}

func TestRunScore(t *testing.T) {
	resetScoreFlags(t)
	out := filepath.Join(t.TempDir(), "score.json")
	ws := setupWorkspace(t, map[string]any{"format": "json", "output": out})
	itemFile := filepath.Join(ws.dir, "helm.yaml")
	writeFile(t, itemFile, helmItem)

	scoreBuild = "ball_lightning"
	scoreProfile = "Endgame"
	scoreExplain = true
	require.NoError(t, runScore(itemFile))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var got output.JSONScore
	require.NoError(t, json.Unmarshal(data, &got))

	assert.Equal(t, "ball_lightning", got.BuildID)
	assert.Equal(t, "endgame", got.Profile)
	assert.Equal(t, "helm", string(got.Slot))
	assert.True(t, got.Scored.HasPriorityUnique)
	assert.Equal(t, 0, got.Scored.UniqueRank)
	assert.Greater(t, got.Scored.Score, 0.0)
	assert.LessOrEqual(t, got.Scored.Score, got.Scored.MaxScore)
	assert.NotEmpty(t, got.Scored.Details)
}

func TestRunScoreOffhandInWeaponSlot(t *testing.T) {
	resetScoreFlags(t)
	out := filepath.Join(t.TempDir(), "score.json")
	ws := setupWorkspace(t, map[string]any{"format": "json", "output": out})
	writeFile(t, filepath.Join(ws.catalog, "necromancer", "bone_spear.yaml"), `id: bone_spear
name: Bone Spear
class: necromancer
gear:
  weapon:
    priority_affixes:
      - name: critical_strike_damage
        weight: 10
`)
	itemFile := filepath.Join(ws.dir, "focus.yaml")
	writeFile(t, itemFile, `name: Bone Focus
slot: focus
item_power: 900
affixes:
  - name: critical_strike_damage
    value: 40
`)

	scoreBuild = "bone_spear"
	require.NoError(t, runScore(itemFile))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var got output.JSONScore
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "weapon", string(got.Slot))
	assert.Equal(t, "offhand", string(got.Item.Slot))
	assert.Equal(t, 1, got.Scored.MatchingAffixes)
}

func TestRunScoreErrors(t *testing.T) {
	tests := []struct {
		name    string
		build   string
		profile string
		slot    string
		wantErr string
	}{
		{"unknown build", "minions", "", "", `build "minions" not found`},
		{"unknown profile", "ball_lightning", "mythic", "", `has no profile "mythic"`},
		{"unknown slot", "ball_lightning", "", "cape", `unknown slot "cape"`},
		{"slot not in profile", "ball_lightning", "starter", "ring", "fits a slot of profile"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetScoreFlags(t)
			ws := setupWorkspace(t, map[string]any{"format": "json", "output": filepath.Join(t.TempDir(), "s.json")})
			itemFile := filepath.Join(ws.dir, "helm.yaml")
			writeFile(t, itemFile, helmItem)

			scoreBuild, scoreProfile, scoreSlot, scoreExplain = tt.build, tt.profile, tt.slot, false
			err := runScore(itemFile)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
