package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, Options{Level: "warn"})

	log.Info("hidden")
	log.Warn("shown", "slot", 2)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record leaked at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "slot=2") {
		t.Errorf("warn record missing: %q", out)
	}
}

func TestNew_FansOutToFile(t *testing.T) {
	var terminal, file bytes.Buffer
	log := New(&terminal, Options{Level: "info", File: &file})

	log.Info("execution completed", "steps", 3)

	if !strings.Contains(terminal.String(), "execution completed") {
		t.Errorf("terminal output missing record: %q", terminal.String())
	}
	if !strings.Contains(file.String(), `"msg":"execution completed"`) {
		t.Errorf("file output missing JSON record: %q", file.String())
	}
}

func TestToJournalKey(t *testing.T) {
	if got := toJournalKey("plan.mode-1"); got != "PLAN_MODE_1" {
		t.Errorf("toJournalKey() = %q, want PLAN_MODE_1", got)
	}
}
