package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRunRejectsUnknownModel(t *testing.T) {
	env := setupCLITestEnv(t)
	media := filepath.Join(env.baseDir, "clip.mp3")
	if err := os.WriteFile(media, []byte("audio"), 0o644); err != nil {
		t.Fatalf("write media: %v", err)
	}

	_, _, err := runCLI(t, []string{"run", "--model", "bogus", media}, env.configPath)
	if err == nil {
		t.Fatal("expected error for unknown model")
	}
	requireContains(t, err.Error(), "unknown model")
}

func TestRunRejectsUnsupportedFormat(t *testing.T) {
	env := setupCLITestEnv(t)
	media := filepath.Join(env.baseDir, "clip.mp3")
	if err := os.WriteFile(media, []byte("audio"), 0o644); err != nil {
		t.Fatalf("write media: %v", err)
	}

	_, _, err := runCLI(t, []string{"run", "--format", "yaml", media}, env.configPath)
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}
	requireContains(t, err.Error(), "unsupported output format")
}

func TestRunRequiresDownloadedModel(t *testing.T) {
	env := setupCLITestEnv(t)
	media := filepath.Join(env.baseDir, "clip.mp3")
	if err := os.WriteFile(media, []byte("audio"), 0o644); err != nil {
		t.Fatalf("write media: %v", err)
	}

	_, _, err := runCLI(t, []string{"run", media}, env.configPath)
	if err == nil {
		t.Fatal("expected error when model is not downloaded")
	}
	requireContains(t, err.Error(), "not downloaded")
}

func TestRunRejectsBatchWithNoSupportedFiles(t *testing.T) {
	env := setupCLITestEnv(t)
	env.installModel(t, "base")
	notes := filepath.Join(env.baseDir, "notes.txt")
	if err := os.WriteFile(notes, []byte("text"), 0o644); err != nil {
		t.Fatalf("write notes: %v", err)
	}

	out, _, err := runCLI(t, []string{"run", notes}, env.configPath)
	if err == nil {
		t.Fatal("expected error when no media files are supported")
	}
	requireContains(t, out, "Skipping unsupported file")
}

func TestFormatsCommand(t *testing.T) {
	out, _, err := runCLI(t, []string{"formats"}, "")
	if err != nil {
		t.Fatalf("formats: %v", err)
	}
	requireContains(t, out, "txt, srt, vtt, json")
	requireContains(t, out, "mp3")
	requireContains(t, out, "mkv")
}
