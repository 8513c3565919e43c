package logger

import (
	"log/slog"
	"strings"
)

// Log level string values
const (
	LevelDebug   = "debug"
	LevelInfo    = "info"
	LevelWarn    = "warn"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Log format string values
const (
	FormatJSON = "json"
	FormatText = "text"
)

// AttrKeyRunID is the attribute carrying the invocation's run id.
const AttrKeyRunID = "run_id"

// Config represents logger configuration
type Config struct {
	Level     string // "debug", "info", "warn", "error"
	Format    string // "json", "text"
	AddSource bool   // Include source file/line in logs
}

// DefaultConfig returns the CLI defaults: warnings and errors only, as text.
func DefaultConfig() Config {
	return Config{Level: LevelWarn, Format: FormatText}
}

// LogLevel converts string level to slog.Level
func (c Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn, LevelWarning:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsJSON returns true if format is JSON
func (c Config) IsJSON() bool {
	return strings.ToLower(c.Format) == FormatJSON
}
