// Package whisper adapts a local whisper.cpp installation as the
// transcription engine. A Model handle binds a ggml model file; the Engine
// runs inference over canonical PCM samples and returns timed text segments
// with fractional progress callbacks.
package whisper
