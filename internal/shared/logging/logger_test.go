package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"err":     slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for raw, expected := range cases {
		if got := ParseLevel(raw); got != expected {
			t.Fatalf("ParseLevel(%q) expected %v got %v", raw, expected, got)
		}
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Config{Level: "info", Format: "json"})
	logger.Debug("hidden")
	logger.Info("order created", slog.String("orderId", "o1"))
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, `"orderId":"o1"`) {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestOpenDailyFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	file, err := OpenDailyFile(dir, time.Date(2024, 5, 1, 23, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer file.Close()
	if filepath.Base(file.Name()) != "2024-05-01.log" {
		t.Fatalf("unexpected file %s", file.Name())
	}
	if _, err := os.Stat(file.Name()); err != nil {
		t.Fatalf("stat: %v", err)
	}
}
