package media

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"whisperq/internal/jobs"
)

// supportedExtensions lists the audio and video containers the converter
// knows how to decode, lowercase and without the dot.
var supportedExtensions = map[string]struct{}{
	"mp3":  {},
	"wav":  {},
	"flac": {},
	"m4a":  {},
	"aac":  {},
	"ogg":  {},
	"wma":  {},
	"opus": {},
	"mp4":  {},
	"mkv":  {},
	"avi":  {},
	"mov":  {},
	"wmv":  {},
	"flv":  {},
	"webm": {},
	"3gp":  {},
}

// Extensions returns the supported extensions in sorted order.
func Extensions() []string {
	out := make([]string, 0, len(supportedExtensions))
	for ext := range supportedExtensions {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Supported reports whether the path's extension is admissible. The check
// is case-insensitive and ignores file contents entirely.
func Supported(path string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "" {
		return false
	}
	_, ok := supportedExtensions[ext]
	return ok
}

// Ingest filters candidate paths through the gate and models each admitted
// file as a pending record with a fresh unique id. Rejected paths are
// returned separately so callers can report them; they never become jobs.
// File size is recorded best effort and left at zero when unreadable.
func Ingest(paths []string) (accepted []jobs.FileRecord, rejected []string) {
	for _, path := range paths {
		if !Supported(path) {
			rejected = append(rejected, path)
			continue
		}
		var size int64
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			size = info.Size()
		}
		accepted = append(accepted, jobs.FileRecord{
			ID:     uuid.NewString(),
			Path:   path,
			Name:   filepath.Base(path),
			Size:   size,
			Status: jobs.StatusPending,
		})
	}
	return accepted, rejected
}
