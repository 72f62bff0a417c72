// Package convert normalizes arbitrary media files into the canonical
// mono 16 kHz 16-bit PCM intermediate by invoking ffmpeg.
package convert
