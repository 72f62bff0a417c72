package config

import (
	"fmt"
	"strings"
)

var knownOutputFormats = map[string]struct{}{
	"txt":  {},
	"srt":  {},
	"vtt":  {},
	"json": {},
}

// Validate checks configuration values for internal consistency.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Transcription.Model) == "" {
		return fmt.Errorf("transcription.model must not be empty")
	}
	if _, ok := knownOutputFormats[c.Transcription.OutputFormat]; !ok {
		return fmt.Errorf("transcription.output_format: unsupported value %q (txt, srt, vtt, json)", c.Transcription.OutputFormat)
	}
	if c.Transcription.MaxParallel < 1 {
		return fmt.Errorf("transcription.max_parallel must be at least 1, got %d", c.Transcription.MaxParallel)
	}
	if c.Notifications.RequestTimeout < 0 {
		return fmt.Errorf("notifications.request_timeout must not be negative")
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (console, json)", c.Logging.Format)
	}
	return nil
}
