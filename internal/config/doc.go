// Package config loads, normalizes, and validates whisperq configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob
// the CLI needs: tool directories, per-batch transcription defaults,
// notification settings, and log output options.
package config
