package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Config{Level: "info", Format: "json"})
	logger.Info("evaluated", "scale", "gcs")
	logger.Debug("hidden")

	out := buf.String()
	if !strings.Contains(out, `"msg":"evaluated"`) {
		t.Errorf("expected JSON record, got %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Error("debug record should be filtered at info level")
	}
}

func TestNewTextDefault(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Config{Level: "debug"})
	logger.Debug("checked", "field", "inr")
	if !strings.Contains(buf.String(), "msg=checked") {
		t.Errorf("expected text record, got %q", buf.String())
	}
}

func TestValidLevel(t *testing.T) {
	if !ValidLevel("Warn") {
		t.Error("expected Warn to be valid")
	}
	if ValidLevel("trace") {
		t.Error("expected trace to be invalid")
	}
}
