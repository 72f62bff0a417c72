package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestConsoleLogger(buf *bytes.Buffer, level slog.Level) *slog.Logger {
	levelVar := new(slog.LevelVar)
	levelVar.Set(level)
	return slog.New(newConsoleHandler(buf, levelVar))
}

func TestConsoleHandlerRendersComponentPrefix(t *testing.T) {
	var buf bytes.Buffer
	logger := NewComponentLogger(newTestConsoleLogger(&buf, slog.LevelInfo), "jobs")

	logger.Info("batch started", Int("files", 3), String("model", "base"))

	line := strings.TrimSpace(buf.String())
	if !strings.Contains(line, " INFO jobs: batch started") {
		t.Fatalf("unexpected line %q", line)
	}
	if !strings.Contains(line, "files=3") || !strings.Contains(line, "model=base") {
		t.Fatalf("missing fields in %q", line)
	}
}

func TestConsoleHandlerQuotesAndErrors(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestConsoleLogger(&buf, slog.LevelInfo)

	logger.Error("job failed",
		Error(errors.New("exit status 1: no audio stream")),
		String("path", "/media/my file.mp3"),
		Duration("elapsed", 1500*time.Millisecond),
	)

	line := strings.TrimSpace(buf.String())
	if !strings.Contains(line, "ERROR") {
		t.Fatalf("missing level in %q", line)
	}
	if !strings.Contains(line, `error="exit status 1: no audio stream"`) {
		t.Fatalf("error field not quoted in %q", line)
	}
	if !strings.Contains(line, `path="/media/my file.mp3"`) {
		t.Fatalf("spaced value not quoted in %q", line)
	}
	if !strings.Contains(line, "elapsed=1.5s") {
		t.Fatalf("duration not rendered in %q", line)
	}
}

func TestConsoleHandlerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestConsoleLogger(&buf, slog.LevelWarn)

	logger.Debug("hidden")
	logger.Info("also hidden")
	logger.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("filtered levels leaked: %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Fatalf("warn should pass: %q", out)
	}
}

func TestConsoleHandlerGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestConsoleLogger(&buf, slog.LevelInfo)

	logger.WithGroup("batch").Info("done", Int("completed", 2))

	if !strings.Contains(buf.String(), "batch.completed=2") {
		t.Fatalf("group prefix missing in %q", buf.String())
	}
}

func TestNewWritesToFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "logs", "whisperq.log")

	logger, err := New(Options{Level: "debug", Format: "json", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("startup", String("version", "test"))

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &record); err != nil {
		t.Fatalf("log line is not json: %v", err)
	}
	if record["msg"] != "startup" || record["level"] != "info" {
		t.Fatalf("unexpected record %v", record)
	}
	if _, ok := record["ts"]; !ok {
		t.Fatal("timestamp key missing")
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := NewNop()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("nop logger must be disabled at every level")
	}
}

func TestArgsHelper(t *testing.T) {
	args := Args(String("a", "b"), Int("c", 1))
	if len(args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(args))
	}
}
