package obs

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestInitLoggerJSON(t *testing.T) {
	prev := Logger
	t.Cleanup(func() { Logger = prev })

	var buf bytes.Buffer
	InitLogger(&buf, "warn", "json")
	Logger.Info("dropped")
	Logger.Warn("iteration_cap_reached", "iterations", 10)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %q", buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec["msg"] != "iteration_cap_reached" || rec["iterations"] != float64(10) {
		t.Fatalf("unexpected record: %v", rec)
	}
}

func TestInitLoggerText(t *testing.T) {
	prev := Logger
	t.Cleanup(func() { Logger = prev })

	var buf bytes.Buffer
	InitLogger(&buf, "info", "text")
	Logger.Info("progress", "sessions", 5)
	if !strings.Contains(buf.String(), "msg=progress sessions=5") {
		t.Fatalf("unexpected text output: %q", buf.String())
	}
}
