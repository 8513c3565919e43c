package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/dotcommander/gearfit/internal/project"
)

// Config represents the gearfit configuration
type Config struct {
	Catalog        string    `mapstructure:"catalog"`
	FollowSymlinks bool      `mapstructure:"followSymlinks"`
	Format         string    `mapstructure:"format"`
	Output         string    `mapstructure:"output"`
	Quiet          bool      `mapstructure:"quiet"`
	Verbose        bool      `mapstructure:"verbose"`
	Workers        int       `mapstructure:"workers"`
	CacheSize      int       `mapstructure:"cacheSize"`
	Strict         bool      `mapstructure:"strict"`
	ShowNotes      bool      `mapstructure:"showNotes"`
	Profiles       []string  `mapstructure:"profiles"`
	Classes        []string  `mapstructure:"classes"`
	Baseline       string    `mapstructure:"baseline"`
	Log            LogConfig `mapstructure:"log"`

	// ConfigFile is the file the settings were read from, if any.
	ConfigFile string `mapstructure:"-"`
}

// LogConfig contains logger configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig loads configuration from defaults, the nearest .gearfitrc file,
// GEARFIT_ environment variables and any flags bound to viper. A non-empty
// catalog overrides the configured one.
func LoadConfig(catalog string) (*Config, error) {
	viper.SetDefault("catalog", "")
	viper.SetDefault("format", "console")
	viper.SetDefault("followSymlinks", false)
	viper.SetDefault("quiet", false)
	viper.SetDefault("verbose", false)
	viper.SetDefault("workers", 4)
	viper.SetDefault("cacheSize", 4096)
	viper.SetDefault("strict", false)
	viper.SetDefault("showNotes", false)
	viper.SetDefault("log.level", "warn")
	viper.SetDefault("log.format", "text")

	configFile := ""
	if root, err := project.FindProjectRoot("."); err == nil {
		if info, err := project.Detect(root); err == nil {
			configFile = info.ConfigFile
		}
	}
	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
		}
	}

	viper.SetEnvPrefix("GEARFIT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	config.ConfigFile = configFile

	if catalog != "" {
		config.Catalog = catalog
	}
	// A relative catalog in a config file is relative to that file.
	if configFile != "" && config.Catalog != "" && catalog == "" && !filepath.IsAbs(config.Catalog) {
		config.Catalog = filepath.Join(filepath.Dir(configFile), config.Catalog)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	if config.Format != "console" && config.Format != "json" && config.Format != "markdown" {
		return fmt.Errorf("invalid format: %s. Must be 'console', 'json', or 'markdown'", config.Format)
	}

	if config.Workers < 1 {
		return fmt.Errorf("workers must be at least 1")
	}

	if config.CacheSize < 0 {
		return fmt.Errorf("cacheSize must not be negative")
	}

	switch strings.ToLower(config.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s. Must be 'text' or 'json'", config.Log.Format)
	}

	return nil
}
