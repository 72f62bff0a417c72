// Package logging builds the slog loggers used across whisperq.
//
// It provides a human-readable console handler for interactive use, a JSON
// handler for log files and scripting, attribute helpers shared by every
// package, and a no-op logger for tests.
package logging
