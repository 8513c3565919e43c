package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestJSONLogging(t *testing.T) {
	var buf bytes.Buffer

	log := New(Config{Level: "info", Format: "json"}, &buf)
	log.Info("test message", "key", "value", "number", 42)

	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}

	if logEntry["msg"] != "test message" {
		t.Errorf("Expected msg='test message', got %v", logEntry["msg"])
	}
	if logEntry["level"] != "INFO" {
		t.Errorf("Expected level=INFO, got %v", logEntry["level"])
	}
	if logEntry["key"] != "value" {
		t.Errorf("Expected key=value, got %v", logEntry["key"])
	}
	if logEntry["number"] != float64(42) {
		t.Errorf("Expected number=42, got %v", logEntry["number"])
	}
}

func TestTextLoggingFiltersLevel(t *testing.T) {
	var buf bytes.Buffer

	log := New(DefaultConfig(), &buf)
	log.Info("hidden")
	log.Warn("Skipping invalid build", "file", "x.json")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "file=x.json") {
		t.Errorf("unexpected text output: %s", out)
	}
}

func TestLogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := (Config{Level: tt.level}).LogLevel(); got != tt.want {
			t.Errorf("LogLevel(%q) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestRunIDContext(t *testing.T) {
	id := NewRunID()
	if len(id) != 36 {
		t.Fatalf("NewRunID() = %q, want a UUID", id)
	}

	ctx := WithRunID(context.Background(), id)
	got, ok := RunIDFromContext(ctx)
	if !ok || got != id {
		t.Errorf("RunIDFromContext() = %q, %v", got, ok)
	}
	if _, ok := RunIDFromContext(context.Background()); ok {
		t.Error("empty context should carry no run id")
	}

	var buf bytes.Buffer
	FromContext(ctx, New(Config{Level: "info", Format: "json"}, &buf)).Info("hello")

	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}
	if logEntry[AttrKeyRunID] != id {
		t.Errorf("Expected run_id=%s, got %v", id, logEntry[AttrKeyRunID])
	}
}
