// Package language normalizes user-supplied language hints to the ISO 639-1
// codes the transcription engine expects.
package language
