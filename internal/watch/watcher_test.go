package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherReportsSettledMedia(t *testing.T) {
	dir := t.TempDir()
	seen := make(chan string, 4)

	w, err := New(dir, func(path string) { seen <- path }, nil, WithSettleDelay(20*time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watch loop a moment to come up before writing.
	time.Sleep(50 * time.Millisecond)

	mediaPath := filepath.Join(dir, "meeting.mp3")
	if err := os.WriteFile(mediaPath, []byte("audio"), 0o644); err != nil {
		t.Fatalf("write media: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("text"), 0o644); err != nil {
		t.Fatalf("write text: %v", err)
	}

	select {
	case path := <-seen:
		if path != mediaPath {
			t.Fatalf("expected %s, got %s", mediaPath, path)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("media file never reported")
	}

	select {
	case path := <-seen:
		t.Fatalf("unexpected extra report for %s", path)
	case <-time.After(200 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v on cancellation", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not exit after cancellation")
	}
}

func TestWatcherWaitsForFileToStopGrowing(t *testing.T) {
	dir := t.TempDir()
	seen := make(chan string, 1)

	w, err := New(dir, func(path string) { seen <- path }, nil, WithSettleDelay(30*time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)
	time.Sleep(50 * time.Millisecond)

	path := filepath.Join(dir, "long-recording.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for i := 0; i < 4; i++ {
		if _, err := f.Write(make([]byte, 1024)); err != nil {
			t.Fatalf("write chunk: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}
	f.Close()

	select {
	case <-seen:
	case <-time.After(5 * time.Second):
		t.Fatal("growing file never settled")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() != 4096 {
		t.Fatalf("file reported before fully written: %d bytes", info.Size())
	}
}

func TestNewRequiresHandlerAndDir(t *testing.T) {
	if _, err := New(t.TempDir(), nil, nil); err == nil {
		t.Fatal("expected error for nil handler")
	}
	if _, err := New("/nonexistent/path/whisperq", func(string) {}, nil); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
