package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Vodeneev/betlinkbot/internal/pkg/config"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		" warn ":  slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSetupLogger_StdoutAndFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	path := filepath.Join(t.TempDir(), "logs", "bot.jsonl")
	var stdout bytes.Buffer

	logger, closer, err := setupLogger(&config.LoggingConfig{Level: "warn", File: path}, "telegram-bot", &stdout)
	if err != nil {
		t.Fatalf("setupLogger: %v", err)
	}

	logger.Info("hidden")
	logger.Warn("link rejected", "user_id", "42")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	out := stdout.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record passed warn level: %q", out)
	}
	if !strings.Contains(out, "link rejected") || !strings.Contains(out, "service=telegram-bot") {
		t.Errorf("stdout = %q", out)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var rec map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &rec); err != nil {
		t.Fatalf("log file is not one JSON line: %v (%q)", err, data)
	}
	if rec["msg"] != "link rejected" || rec["user_id"] != "42" || rec["service"] != "telegram-bot" {
		t.Errorf("record = %v", rec)
	}
}
