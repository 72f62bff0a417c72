package logs

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeLines(t *testing.T, path string, lines ...string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	for _, line := range lines {
		if _, err := f.WriteString(line + "\n"); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
}

func TestTailReturnsLastLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "whisperq.log")
	writeLines(t, path, "one", "two", "three", "four", "five")

	lines, offset, err := Tail(path, 3)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if strings.Join(lines, ",") != "three,four,five" {
		t.Fatalf("unexpected lines %v", lines)
	}
	if info, _ := os.Stat(path); offset != info.Size() {
		t.Fatalf("offset %d should be end of file %d", offset, info.Size())
	}
}

func TestTailShortFileAndMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "whisperq.log")
	writeLines(t, path, "only")

	lines, _, err := Tail(path, 10)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(lines) != 1 || lines[0] != "only" {
		t.Fatalf("unexpected lines %v", lines)
	}

	lines, offset, err := Tail(filepath.Join(t.TempDir(), "absent.log"), 10)
	if err != nil || len(lines) != 0 || offset != 0 {
		t.Fatalf("missing file: got (%v, %d, %v)", lines, offset, err)
	}
}

func TestFollowStreamsAppendedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "whisperq.log")
	writeLines(t, path, "old")
	_, offset, err := Tail(path, 0)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	var buf bytes.Buffer
	done := make(chan error, 1)
	go func() { done <- Follow(ctx, path, offset, &buf) }()

	time.Sleep(50 * time.Millisecond)
	writeLines(t, path, "fresh-1", "fresh-2")

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(buf.String(), "fresh-2") {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Follow: %v", err)
	}

	out := buf.String()
	if strings.Contains(out, "old") {
		t.Fatalf("follow must start at the given offset, got %q", out)
	}
	if !strings.Contains(out, "fresh-1") || !strings.Contains(out, "fresh-2") {
		t.Fatalf("appended lines missing from %q", out)
	}
}
