// Package pcm reads and writes the canonical intermediate audio format:
// mono, 16 kHz, 16-bit signed little-endian PCM in a WAV container. The
// converter produces it and the transcription engine requires it; any file
// that does not match is rejected outright.
package pcm
