package jobs

import (
	"strings"

	"whisperq/internal/format"
)

// Status represents the lifecycle of a job.
type Status string

const (
	StatusPending      Status = "pending"
	StatusConverting   Status = "converting"
	StatusTranscribing Status = "transcribing"
	StatusCompleted    Status = "completed"
	StatusError        Status = "error"
)

// CancelledMessage is the fixed error text set on user-cancelled jobs.
const CancelledMessage = "cancelled"

var allStatuses = []Status{
	StatusPending,
	StatusConverting,
	StatusTranscribing,
	StatusCompleted,
	StatusError,
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	for _, status := range allStatuses {
		if status == normalized {
			return status, true
		}
	}
	return "", false
}

// IsTerminal reports whether no further transitions can occur.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusError
}

// IsActive reports whether the status reflects an in-flight stage.
func (s Status) IsActive() bool {
	return s == StatusConverting || s == StatusTranscribing
}

// FileRecord is one input selected for transcription, created by the media
// gate. Terminal fields are mutated only by the Manager, via its Job copy.
type FileRecord struct {
	ID         string
	Path       string
	Name       string
	Size       int64
	Status     Status
	Progress   float64
	Error      string
	OutputPath string
}

// Settings is the immutable per-batch configuration. Each job captures its
// own copy at creation so later changes cannot race a running batch.
type Settings struct {
	Language         string
	Model            string
	OutputFormat     format.Kind
	KeepIntermediate bool
	OutputDir        string
	MaxParallel      int
}

// Job is the unit of work tracked by the Manager. Its ID is shared with the
// originating FileRecord.
type Job struct {
	ID         string
	FilePath   string
	Settings   Settings
	Status     Status
	Progress   float64
	Error      string
	OutputPath string
}

// ProgressEvent is an immutable notification emitted on every state or
// progress change. Events are not persisted; the registry stays
// authoritative and pollable.
type ProgressEvent struct {
	JobID    string
	Status   Status
	Progress float64
	Message  string
}
