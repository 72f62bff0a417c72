package whisper

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"whisperq/internal/pcm"
)

// DefaultBinary is the whisper.cpp CLI executable name.
const DefaultBinary = "whisper-cli"

// CLIEngine runs inference through the whisper.cpp command line tool. The
// samples are written to a temporary canonical WAV, whisper-cli is invoked
// with JSON output, and fractional progress is parsed from its stderr
// progress lines.
type CLIEngine struct {
	binary        string
	commandRunner func(ctx context.Context, onStderrLine func(string), name string, args ...string) error
}

// NewCLIEngine creates an engine backed by the given whisper.cpp binary.
func NewCLIEngine(binary string) *CLIEngine {
	if binary == "" {
		binary = DefaultBinary
	}
	return &CLIEngine{binary: binary}
}

// WithCommandRunner sets a custom command runner (for testing).
func (e *CLIEngine) WithCommandRunner(runner func(ctx context.Context, onStderrLine func(string), name string, args ...string) error) {
	e.commandRunner = runner
}

// Transcribe implements Engine.
func (e *CLIEngine) Transcribe(ctx context.Context, model *Model, samples []float32, language string, onProgress func(int)) ([]Segment, error) {
	if model == nil {
		return nil, &TranscribeError{Err: fmt.Errorf("model handle is nil")}
	}

	workDir, err := os.MkdirTemp("", "whisperq-*")
	if err != nil {
		return nil, &TranscribeError{Err: fmt.Errorf("create workspace: %w", err)}
	}
	defer os.RemoveAll(workDir)

	wavPath := filepath.Join(workDir, "audio.wav")
	if err := pcm.WriteFile(wavPath, pcm.FromFloat32(samples)); err != nil {
		return nil, &TranscribeError{Err: fmt.Errorf("write audio: %w", err)}
	}

	outBase := filepath.Join(workDir, "audio")
	args := buildArgs(model.Path, wavPath, outBase, language)

	onLine := func(line string) {
		if onProgress == nil {
			return
		}
		if p, ok := parseProgressLine(line); ok {
			onProgress(p)
		}
	}

	if err := e.run(ctx, onLine, e.binary, args...); err != nil {
		return nil, &TranscribeError{Err: err}
	}

	segments, err := loadSegments(outBase + ".json")
	if err != nil {
		return nil, &TranscribeError{Err: err}
	}
	return segments, nil
}

func (e *CLIEngine) run(ctx context.Context, onStderrLine func(string), name string, args ...string) error {
	if e.commandRunner != nil {
		return e.commandRunner(ctx, onStderrLine, name, args...)
	}

	cmd := exec.CommandContext(ctx, name, args...)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	// Progress lines arrive on stderr while inference runs; keep a tail of
	// recent output for diagnostics on failure.
	var (
		mu   sync.Mutex
		tail []string
	)
	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for scanner.Scan() {
			line := scanner.Text()
			onStderrLine(line)
			mu.Lock()
			tail = append(tail, line)
			if len(tail) > 20 {
				tail = tail[1:]
			}
			mu.Unlock()
		}
	}()

	waitErr := cmd.Wait()
	<-done
	if waitErr != nil {
		mu.Lock()
		detail := strings.TrimSpace(strings.Join(tail, "\n"))
		mu.Unlock()
		if detail != "" {
			return fmt.Errorf("%s: %w: %s", name, waitErr, detail)
		}
		return fmt.Errorf("%s: %w", name, waitErr)
	}
	return nil
}

func buildArgs(modelPath, wavPath, outBase, language string) []string {
	args := []string{
		"-m", modelPath,
		"-f", wavPath,
		"-oj",
		"-of", outBase,
		"--print-progress",
	}
	if lang := strings.TrimSpace(language); lang != "" {
		args = append(args, "-l", lang)
	}
	return args
}

// parseProgressLine extracts the percentage from whisper.cpp progress
// output, e.g. "whisper_print_progress_callback: progress =  15%".
func parseProgressLine(line string) (int, bool) {
	idx := strings.Index(line, "progress =")
	if idx < 0 {
		return 0, false
	}
	value := strings.TrimSpace(line[idx+len("progress ="):])
	value = strings.TrimSuffix(value, "%")
	p, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || p < 0 || p > 100 {
		return 0, false
	}
	return p, true
}

// cliOutput mirrors the whisper.cpp -oj output document.
type cliOutput struct {
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

func loadSegments(jsonPath string) ([]Segment, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("read engine output: %w", err)
	}
	var payload cliOutput
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse engine output: %w", err)
	}

	segments := make([]Segment, 0, len(payload.Transcription))
	for _, entry := range payload.Transcription {
		segments = append(segments, Segment{
			// Offsets are milliseconds; timestamps are tracked in centiseconds.
			Start: entry.Offsets.From / 10,
			End:   entry.Offsets.To / 10,
			Text:  strings.TrimSpace(entry.Text),
		})
	}
	return segments, nil
}
