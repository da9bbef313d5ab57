package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kingrea/assent/internal/config"
)

func TestNewWritesJSONLines(t *testing.T) {
	cfg := config.Default(t.TempDir())
	logger, err := New(cfg, false)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	logger.Info("approved", zap.String("file", "T.approved.txt"))
	logger.Debug("hidden at info level")
	if err := logger.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(cfg.LogsDir(), FileName))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one entry, got %d: %q", len(lines), data)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("entry is not json: %v", err)
	}
	if entry["msg"] != "approved" || entry["file"] != "T.approved.txt" {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestNopCloseIsSafe(t *testing.T) {
	if err := Nop().Close(); err != nil {
		t.Fatalf("nop close: %v", err)
	}
	var nilLogger *Logger
	if err := nilLogger.Close(); err != nil {
		t.Fatalf("nil close: %v", err)
	}
}
