// Package media admits input files into the transcription pipeline. The
// gate decides by file extension alone; content inspection is left to the
// converter, which surfaces unreadable or corrupt media as job failures.
package media
