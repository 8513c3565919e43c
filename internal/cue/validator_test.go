package cue

import (
	"strings"
	"testing"

	"github.com/dotcommander/gearfit/internal/discovery"
)

func loadedValidator(t *testing.T) *Validator {
	t.Helper()
	v := NewValidator()
	if err := v.LoadSchemas(); err != nil {
		t.Fatalf("LoadSchemas failed: %v", err)
	}
	return v
}

// TestLoadSchemas tests loading embedded CUE schemas
func TestLoadSchemas(t *testing.T) {
	v := loadedValidator(t)

	for _, name := range []string{SchemaBuild, SchemaItem, SchemaIndex} {
		if _, ok := v.schemas[name]; !ok {
			t.Errorf("Expected schema %q to be loaded", name)
		}
	}
}

func TestValidateBuild(t *testing.T) {
	v := loadedValidator(t)

	tests := []struct {
		name      string
		data      map[string]any
		wantError bool
	}{
		{
			name: "valid multi-profile build",
			data: map[string]any{
				"id":            "ball_lightning",
				"name":          "Ball Lightning",
				"class":         "sorcerer",
				"profile_order": []any{"endgame"},
				"profiles": map[string]any{
					"endgame": map[string]any{
						"slots": map[string]any{
							"helm": map[string]any{
								"priority_uniques": []any{"harlequin_crest"},
								"priority_affixes": []any{map[string]any{"name": "cooldown_reduction", "weight": 10}},
							},
						},
					},
				},
			},
		},
		{
			name: "valid legacy build",
			data: map[string]any{
				"id":   "tb",
				"name": "Twisting Blades",
				"gear": map[string]any{"boots": map[string]any{"required_tempers": []any{"movement_speed"}}},
			},
		},
		{
			name:      "missing id",
			data:      map[string]any{"name": "No ID"},
			wantError: true,
		},
		{
			name: "negative weight",
			data: map[string]any{
				"id": "x", "name": "X",
				"gear": map[string]any{"helm": map[string]any{
					"priority_affixes": []any{map[string]any{"name": "a", "weight": -1}},
				}},
			},
			wantError: true,
		},
		{
			name:      "unknown field",
			data:      map[string]any{"id": "x", "name": "X", "colour": "red"},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs, err := v.ValidateBuild(tt.data)
			if err != nil {
				t.Fatalf("ValidateBuild() error = %v", err)
			}
			if (len(errs) > 0) != tt.wantError {
				t.Errorf("ValidateBuild() errors = %v, wantError %v", errs, tt.wantError)
			}
		})
	}
}

func TestValidateItem(t *testing.T) {
	v := loadedValidator(t)

	tests := []struct {
		name      string
		data      map[string]any
		wantError bool
	}{
		{"minimal", map[string]any{"name": "Ring", "slot": "ring"}, false},
		{"nullable fields", map[string]any{"slot": "helm", "unique_id": nil, "aspect": nil}, false},
		{"full", map[string]any{
			"name": "Shako", "slot": "helm", "item_power": 925, "is_unique": true, "unique_id": "harlequin_crest",
			"affixes":         []any{map[string]any{"name": "cooldown_reduction", "value": 12.5}},
			"greater_affixes": []any{"cooldown_reduction"},
			"aspect":          map[string]any{"name": "aspect_of_disobedience", "value": 3},
			"sockets":         map[string]any{"total": 2, "filled": 1},
		}, false},
		{"negative item power", map[string]any{"slot": "helm", "item_power": -3}, true},
		{"overfilled sockets", map[string]any{"slot": "helm", "sockets": map[string]any{"total": 1, "filled": 2}}, true},
		{"affix without name", map[string]any{"slot": "helm", "affixes": []any{map[string]any{"value": 1}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs, err := v.ValidateItem(tt.data)
			if err != nil {
				t.Fatalf("ValidateItem() error = %v", err)
			}
			if (len(errs) > 0) != tt.wantError {
				t.Errorf("ValidateItem() errors = %v, wantError %v", errs, tt.wantError)
			}
		})
	}
}

func TestValidateFile(t *testing.T) {
	v := loadedValidator(t)

	tests := []struct {
		name      string
		content   string
		fileType  discovery.FileType
		wantError string
	}{
		{"valid build", `{"id": "x", "name": "X", "profiles": {"p": {"slots": {}}}}`, discovery.FileTypeBuild, ""},
		{"flat profile build", `{"id": "x", "name": "X", "profiles": {"p": {"name": "P", "helm": {"priority_uniques": ["harlequin_crest"]}}}}`, discovery.FileTypeBuild, ""},
		{"flat profile bad slot", `{"id": "x", "name": "X", "profiles": {"p": {"helm": {"priority_affixes": [{"name": "a", "weight": -1}]}}}}`, discovery.FileTypeBuild, "profiles"},
		{"build is a list", `[1, 2]`, discovery.FileTypeBuild, "expected an object"},
		{"valid index", `{"class": "rogue", "builds": [{"id": "tb", "file": "tb.json"}]}`, discovery.FileTypeIndex, ""},
		{"item list", `[{"slot": "helm"}, {"slot": "ring", "item_power": -1}]`, discovery.FileTypeItem, "[1]"},
		{"slot keyed items", "helm:\n  name: h\nring:\n  - name: r\n    item_power: -5\n", discovery.FileTypeItem, "ring[0]"},
		{"single item", `{"name": "x", "slot": "boots"}`, discovery.FileTypeItem, ""},
		{"parse error", `{"id": `, discovery.FileTypeBuild, "error parsing file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs, err := v.ValidateFile("f.json", []byte(tt.content), tt.fileType)
			if err != nil {
				t.Fatalf("ValidateFile() error = %v", err)
			}
			if tt.wantError == "" {
				if len(errs) > 0 {
					t.Errorf("ValidateFile() unexpected errors: %v", errs)
				}
				return
			}
			if len(errs) == 0 {
				t.Fatalf("ValidateFile() expected error containing %q", tt.wantError)
			}
			if errs[0].File != "f.json" {
				t.Errorf("File = %q, want f.json", errs[0].File)
			}
			if !strings.Contains(errs[0].String(), tt.wantError) {
				t.Errorf("error %q does not contain %q", errs[0].String(), tt.wantError)
			}
		})
	}

	if _, err := v.ValidateFile("f", []byte(`{}`), discovery.FileTypeUnknown); err == nil {
		t.Error("expected error for unknown file type")
	}
}

func TestValidateWithoutSchemas(t *testing.T) {
	if _, err := NewValidator().ValidateBuild(map[string]any{}); err == nil {
		t.Error("expected error when schemas are not loaded")
	}
}
