package convert

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConvertInvokesFFmpegWithCanonicalArgs(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "talk.mp3")
	output := filepath.Join(dir, "talk.wav")

	var gotName string
	var gotArgs []string
	c := New("ffmpeg")
	c.WithCommandRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		gotName = name
		gotArgs = args
		return nil, os.WriteFile(output, []byte("RIFF"), 0o644)
	})

	if err := c.Convert(context.Background(), input, output); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if gotName != "ffmpeg" {
		t.Fatalf("unexpected binary %s", gotName)
	}

	joined := strings.Join(gotArgs, " ")
	for _, fragment := range []string{"-hide_banner", "-nostdin", "-y", "-i " + input, "-vn", "-ac 1", "-ar 16000", "-c:a pcm_s16le"} {
		if !strings.Contains(joined, fragment) {
			t.Errorf("args missing %q: %s", fragment, joined)
		}
	}
	if gotArgs[len(gotArgs)-1] != output {
		t.Fatalf("output path must be the final argument, got %v", gotArgs)
	}
}

func TestConvertWrapsFailureWithOutputTail(t *testing.T) {
	c := New("")
	c.WithCommandRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		output := strings.Repeat("frame info\n", 10) + "Invalid data found when processing input\n"
		return []byte(output), errors.New("exit status 1")
	})

	err := c.Convert(context.Background(), "/in/broken.mkv", "/out/broken.wav")
	var convErr *ConversionError
	if !errors.As(err, &convErr) {
		t.Fatalf("expected ConversionError, got %v", err)
	}
	if convErr.Input != "/in/broken.mkv" {
		t.Fatalf("unexpected input %s", convErr.Input)
	}
	if !strings.Contains(convErr.Detail, "Invalid data found") {
		t.Fatalf("detail should keep the final ffmpeg lines, got %q", convErr.Detail)
	}
	if strings.Count(convErr.Detail, "\n") > 5 {
		t.Fatalf("detail should be truncated to a short tail, got %q", convErr.Detail)
	}
}

func TestConvertDetectsMissingOutput(t *testing.T) {
	c := New("")
	c.WithCommandRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return nil, nil
	})

	err := c.Convert(context.Background(), "/in/a.mp3", filepath.Join(t.TempDir(), "never-written.wav"))
	var convErr *ConversionError
	if !errors.As(err, &convErr) {
		t.Fatalf("expected ConversionError, got %v", err)
	}
	if !strings.Contains(convErr.Detail, "produced no output") {
		t.Fatalf("unexpected detail %q", convErr.Detail)
	}
}

func TestNewDefaultsBinary(t *testing.T) {
	if c := New(""); c.binary != DefaultBinary {
		t.Fatalf("expected default binary, got %s", c.binary)
	}
	if c := New("/opt/ffmpeg/bin/ffmpeg"); c.binary != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("expected override, got %s", c.binary)
	}
}
