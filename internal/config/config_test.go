package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetViper resets viper to a clean state for each test
func resetViper() {
	viper.Reset()
}

// chdir switches into dir for the duration of the test
func chdir(t *testing.T, dir string) {
	t.Helper()
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(oldWd)
	})
}

func validConfig() *Config {
	return &Config{
		Format:  "console",
		Workers: 1,
		Log:     LogConfig{Level: "warn", Format: "text"},
	}
}

// TestLoadConfigDefaults tests that default values are set correctly
func TestLoadConfigDefaults(t *testing.T) {
	resetViper()
	chdir(t, t.TempDir())

	config, err := LoadConfig("")
	require.NoError(t, err)
	require.NotNil(t, config)

	assert.Empty(t, config.Catalog)
	assert.Equal(t, "console", config.Format)
	assert.False(t, config.Quiet)
	assert.False(t, config.Verbose)
	assert.False(t, config.Strict)
	assert.False(t, config.ShowNotes)
	assert.Equal(t, 4, config.Workers)
	assert.Equal(t, 4096, config.CacheSize)
	assert.Equal(t, "warn", config.Log.Level)
	assert.Equal(t, "text", config.Log.Format)
	assert.Empty(t, config.ConfigFile)
}

// TestLoadConfigFromJSON tests loading configuration from JSON file
func TestLoadConfigFromJSON(t *testing.T) {
	resetViper()
	tmpDir := t.TempDir()

	content := `{
  "catalog": "/custom/builds",
  "format": "json",
  "output": "report.json",
  "workers": 8,
  "cacheSize": 0,
  "strict": true,
  "showNotes": true,
  "profiles": ["endgame"],
  "classes": ["sorcerer", "rogue"],
  "log": {"level": "debug", "format": "json"}
}`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".gearfitrc.json"), []byte(content), 0644))
	chdir(t, tmpDir)

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "/custom/builds", config.Catalog)
	assert.Equal(t, "json", config.Format)
	assert.Equal(t, "report.json", config.Output)
	assert.Equal(t, 8, config.Workers)
	assert.Equal(t, 0, config.CacheSize)
	assert.True(t, config.Strict)
	assert.True(t, config.ShowNotes)
	assert.Equal(t, []string{"endgame"}, config.Profiles)
	assert.Equal(t, []string{"sorcerer", "rogue"}, config.Classes)
	assert.Equal(t, "debug", config.Log.Level)
	assert.Equal(t, "json", config.Log.Format)
	assert.True(t, filepath.IsAbs(config.ConfigFile))
}

// TestLoadConfigFromYAML tests loading configuration from YAML file found in a parent directory
func TestLoadConfigFromYAML(t *testing.T) {
	resetViper()
	tmpDir := t.TempDir()

	yamlContent := `
catalog: data/builds
format: markdown
baseline: .gearfit-baseline.json
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".gearfitrc.yaml"), []byte(yamlContent), 0644))
	sub := filepath.Join(tmpDir, "inventory")
	require.NoError(t, os.MkdirAll(sub, 0755))
	chdir(t, sub)

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "markdown", config.Format)
	assert.Equal(t, ".gearfit-baseline.json", config.Baseline)
	// Resolved against the config file's directory.
	assert.True(t, strings.HasSuffix(config.Catalog, filepath.Join("data", "builds")))
	assert.True(t, filepath.IsAbs(config.Catalog))
}

func TestLoadConfigCatalogOverride(t *testing.T) {
	resetViper()
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".gearfitrc.yml"), []byte("catalog: elsewhere\n"), 0644))
	chdir(t, tmpDir)

	config, err := LoadConfig("my/builds")
	require.NoError(t, err)
	assert.Equal(t, "my/builds", config.Catalog)
}

func TestLoadConfigFromEnv(t *testing.T) {
	resetViper()
	chdir(t, t.TempDir())
	t.Setenv("GEARFIT_WORKERS", "2")
	t.Setenv("GEARFIT_LOG_LEVEL", "error")

	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 2, config.Workers)
	assert.Equal(t, "error", config.Log.Level)
}

func TestLoadConfigValidationError(t *testing.T) {
	resetViper()
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".gearfitrc.json"), []byte(`{"format": "xml"}`), 0644))
	chdir(t, tmpDir)

	_, err := LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
	assert.Contains(t, err.Error(), "invalid format: xml")
}

func TestLoadConfigUnreadableFile(t *testing.T) {
	resetViper()
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".gearfitrc.json"), []byte(`{"format": `), 0644))
	chdir(t, tmpDir)

	_, err := LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid console", func(c *Config) {}, ""},
		{"valid json", func(c *Config) { c.Format = "json" }, ""},
		{"valid markdown", func(c *Config) { c.Format = "markdown" }, ""},
		{"invalid format", func(c *Config) { c.Format = "html" }, "invalid format: html"},
		{"zero workers", func(c *Config) { c.Workers = 0 }, "workers must be at least 1"},
		{"negative cache", func(c *Config) { c.CacheSize = -1 }, "cacheSize must not be negative"},
		{"upper-case level", func(c *Config) { c.Log.Level = "DEBUG" }, ""},
		{"invalid level", func(c *Config) { c.Log.Level = "loud" }, "invalid log level: loud"},
		{"invalid log format", func(c *Config) { c.Log.Format = "xml" }, "invalid log format: xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := validateConfig(c)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
