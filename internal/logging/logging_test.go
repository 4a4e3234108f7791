package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{" warn ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "debug", Format: "json", Writer: &buf})

	log.Debug("step warnings", slog.Int("step", 3))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not json: %v (%q)", err, buf.String())
	}
	if rec["msg"] != "step warnings" {
		t.Errorf("expected msg 'step warnings', got %v", rec["msg"])
	}
	if rec["step"] != float64(3) {
		t.Errorf("expected step 3, got %v", rec["step"])
	}
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Writer: &buf})

	log.Info("hidden")
	log.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info message should be filtered at warn level")
	}
	if !strings.Contains(out, "shown") {
		t.Error("warn message missing")
	}
}

func TestNewFromEnv(t *testing.T) {
	tests := []struct {
		level, format string
		debug         bool
		json          bool
	}{
		{"", "", false, false},
		{"debug", "json", true, true},
		{"error", "text", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.level+"/"+tt.format, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tt.level)
			t.Setenv("LOG_FORMAT", tt.format)

			log := NewFromEnv()
			if got := log.Enabled(context.Background(), slog.LevelDebug); got != tt.debug {
				t.Errorf("debug enabled = %v, want %v", got, tt.debug)
			}
			if _, ok := log.Handler().(*slog.JSONHandler); ok != tt.json {
				t.Errorf("json handler = %v, want %v", ok, tt.json)
			}
		})
	}
}

func TestNoopDropsEverything(t *testing.T) {
	if Noop().Enabled(context.Background(), slog.LevelError) {
		t.Error("noop logger should not be enabled at any level")
	}
}
