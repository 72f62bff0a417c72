// Command whisperq is the batch transcription CLI. It converts local media
// files to text transcripts with ffmpeg and whisper.cpp, manages the local
// model catalog, and can watch a directory for new media.
package main
