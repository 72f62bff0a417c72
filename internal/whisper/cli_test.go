package whisper

import (
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"whisperq/internal/pcm"
)

func writeModelFile(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "ggml-base.bin")
	data := make([]byte, 128)
	binary.LittleEndian.PutUint32(data, 0x67676d6c)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write model: %v", err)
	}
	return path
}

func TestLoadModel(t *testing.T) {
	dir := t.TempDir()
	path := writeModelFile(t, dir)

	model, err := LoadModel(path)
	if err != nil {
		t.Fatalf("LoadModel: %v", err)
	}
	if model.Path != path || model.Size != 128 {
		t.Fatalf("unexpected model %+v", model)
	}
}

func TestLoadModelRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadModel(filepath.Join(dir, "absent.bin")); err == nil {
		t.Fatal("expected error for missing file")
	}

	bogus := filepath.Join(dir, "bogus.bin")
	if err := os.WriteFile(bogus, []byte("<html>404</html>"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := LoadModel(bogus)
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected LoadError, got %v", err)
	}
	if !strings.Contains(err.Error(), "ggml") {
		t.Fatalf("error should mention the magic check: %v", err)
	}

	short := filepath.Join(dir, "short.bin")
	if err := os.WriteFile(short, []byte{1, 2}, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadModel(short); err == nil {
		t.Fatal("expected error for truncated file")
	}

	if _, err := LoadModel(dir); err == nil {
		t.Fatal("expected error for directory")
	}
}

func TestParseProgressLine(t *testing.T) {
	cases := []struct {
		line string
		want int
		ok   bool
	}{
		{"whisper_print_progress_callback: progress =   5%", 5, true},
		{"whisper_print_progress_callback: progress = 100%", 100, true},
		{"progress = 0%", 0, true},
		{"progress =  42", 42, true},
		{"loading model from 'ggml-base.bin'", 0, false},
		{"progress = banana", 0, false},
		{"progress = 150%", 0, false},
		{"progress = -1%", 0, false},
	}
	for _, tc := range cases {
		got, ok := parseProgressLine(tc.line)
		if ok != tc.ok || got != tc.want {
			t.Errorf("parseProgressLine(%q) = (%d, %v), want (%d, %v)", tc.line, got, ok, tc.want, tc.ok)
		}
	}
}

func TestBuildArgs(t *testing.T) {
	args := buildArgs("/m/ggml-base.bin", "/w/audio.wav", "/w/audio", "en")
	want := []string{"-m", "/m/ggml-base.bin", "-f", "/w/audio.wav", "-oj", "-of", "/w/audio", "--print-progress", "-l", "en"}
	if strings.Join(args, " ") != strings.Join(want, " ") {
		t.Fatalf("unexpected args %v", args)
	}

	args = buildArgs("/m/ggml-base.bin", "/w/audio.wav", "/w/audio", "")
	for _, arg := range args {
		if arg == "-l" {
			t.Fatal("autodetect must not pass a language flag")
		}
	}
}

func TestCLIEngineTranscribe(t *testing.T) {
	dir := t.TempDir()
	modelPath := writeModelFile(t, dir)
	model, err := LoadModel(modelPath)
	if err != nil {
		t.Fatalf("LoadModel: %v", err)
	}

	engine := NewCLIEngine("")
	engine.WithCommandRunner(func(ctx context.Context, onStderrLine func(string), name string, args ...string) error {
		if name != DefaultBinary {
			t.Fatalf("unexpected binary %s", name)
		}

		var wavPath, outBase string
		for i := 0; i < len(args)-1; i++ {
			switch args[i] {
			case "-f":
				wavPath = args[i+1]
			case "-of":
				outBase = args[i+1]
			}
		}
		if wavPath == "" || outBase == "" {
			t.Fatalf("missing -f or -of in args %v", args)
		}

		// The engine must have written canonical audio before invoking.
		samples, err := pcm.ReadFile(wavPath)
		if err != nil {
			t.Fatalf("engine wrote non-canonical wav: %v", err)
		}
		if len(samples) != 4 {
			t.Fatalf("expected 4 samples, got %d", len(samples))
		}

		onStderrLine("whisper_print_progress_callback: progress =  50%")
		onStderrLine("whisper_print_progress_callback: progress = 100%")

		payload := `{"transcription":[
			{"offsets":{"from":0,"to":1500},"text":" hello"},
			{"offsets":{"from":1500,"to":3000},"text":" world "}
		]}`
		return os.WriteFile(outBase+".json", []byte(payload), 0o644)
	})

	var progress []int
	segments, err := engine.Transcribe(context.Background(), model, []float32{0, 0.25, -0.25, 0.5}, "en", func(p int) {
		progress = append(progress, p)
	})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}

	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	// Millisecond offsets come back as centiseconds, text trimmed.
	if segments[0].Start != 0 || segments[0].End != 150 || segments[0].Text != "hello" {
		t.Fatalf("unexpected first segment %+v", segments[0])
	}
	if segments[1].Start != 150 || segments[1].End != 300 || segments[1].Text != "world" {
		t.Fatalf("unexpected second segment %+v", segments[1])
	}
	if len(progress) != 2 || progress[0] != 50 || progress[1] != 100 {
		t.Fatalf("unexpected progress callbacks %v", progress)
	}
}

func TestCLIEngineTranscribeFailure(t *testing.T) {
	dir := t.TempDir()
	model, err := LoadModel(writeModelFile(t, dir))
	if err != nil {
		t.Fatalf("LoadModel: %v", err)
	}

	engine := NewCLIEngine("")
	engine.WithCommandRunner(func(ctx context.Context, onStderrLine func(string), name string, args ...string) error {
		return errors.New("exit status 1")
	})

	_, err = engine.Transcribe(context.Background(), model, []float32{0}, "", nil)
	var transcribeErr *TranscribeError
	if !errors.As(err, &transcribeErr) {
		t.Fatalf("expected TranscribeError, got %v", err)
	}
}

func TestCLIEngineNilModel(t *testing.T) {
	engine := NewCLIEngine("")
	if _, err := engine.Transcribe(context.Background(), nil, []float32{0}, "", nil); err == nil {
		t.Fatal("expected error for nil model")
	}
}
