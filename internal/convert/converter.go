package convert

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// DefaultBinary is the ffmpeg executable name.
const DefaultBinary = "ffmpeg"

// ConversionError reports a failed conversion. Every failure cause — no
// audio stream, unsupported codec, unwritable output, non-zero exit — is
// folded into this one class; the recovery action is the same for all.
type ConversionError struct {
	Input  string
	Detail string
	Err    error
}

func (e *ConversionError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("convert %s: %v: %s", e.Input, e.Err, e.Detail)
	}
	return fmt.Sprintf("convert %s: %v", e.Input, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// Converter shells out to ffmpeg to produce canonical PCM WAV files.
type Converter struct {
	binary        string
	commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// New creates a converter backed by the given ffmpeg binary.
func New(binary string) *Converter {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Converter{binary: binary}
}

// WithCommandRunner sets a custom command runner (for testing). The runner
// returns combined output for diagnostics.
func (c *Converter) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) ([]byte, error)) {
	c.commandRunner = runner
}

// Convert decodes inputPath and writes a canonical WAV to outputPath,
// overwriting any existing file. Success is binary; ffmpeg offers no usable
// fine-grained progress for this invocation shape.
func (c *Converter) Convert(ctx context.Context, inputPath, outputPath string) error {
	args := buildArgs(inputPath, outputPath)

	output, err := c.run(ctx, c.binary, args...)
	if err != nil {
		return &ConversionError{
			Input:  inputPath,
			Detail: tailOf(string(output)),
			Err:    err,
		}
	}
	if _, err := os.Stat(outputPath); err != nil {
		return &ConversionError{
			Input:  inputPath,
			Detail: "ffmpeg exited cleanly but produced no output",
			Err:    err,
		}
	}
	return nil
}

func (c *Converter) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if c.commandRunner != nil {
		return c.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}

func buildArgs(inputPath, outputPath string) []string {
	return []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", inputPath,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		outputPath,
	}
}

// tailOf keeps the last few lines of ffmpeg output; the useful diagnostic
// is almost always at the end.
func tailOf(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) > 6 {
		lines = lines[len(lines)-6:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
