// Package logs reads back the whisperq log file for the CLI: the last N
// lines for a quick look, or a polling follow for live batches.
package logs
