package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogsCommandShowsTail(t *testing.T) {
	env := setupCLITestEnv(t)

	logDir := filepath.Join(env.baseDir, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		t.Fatalf("mkdir logs: %v", err)
	}
	logPath := filepath.Join(logDir, "whisperq.log")
	if err := os.WriteFile(logPath, []byte("line-1\nline-2\nline-3\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	out, _, err := runCLI(t, []string{"logs", "-n", "2"}, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	requireContains(t, out, "line-2")
	requireContains(t, out, "line-3")
	if strings.Contains(out, "line-1") {
		t.Fatalf("expected only the last 2 lines, got %q", out)
	}
}

func TestLogsCommandMissingFile(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"logs"}, env.configPath)
	if err != nil {
		t.Fatalf("logs on empty log: %v", err)
	}
	if strings.TrimSpace(out) != "" {
		t.Fatalf("expected no output for fresh log, got %q", out)
	}
}
