package whisper

import (
	"context"
	"fmt"
)

// Segment is one unit of recognized speech. Start and End are centisecond
// offsets with Start <= End; segments arrive in non-decreasing Start order
// and are indexed by emission order, not timestamp.
type Segment struct {
	Start int64
	End   int64
	Text  string
}

// TranscribeError reports an engine failure or a precondition violation.
type TranscribeError struct {
	Err error
}

func (e *TranscribeError) Error() string {
	return fmt.Sprintf("transcribe: %v", e.Err)
}

func (e *TranscribeError) Unwrap() error { return e.Err }

// Engine runs inference over canonical PCM samples.
//
// samples are normalized 32-bit floats converted one to one from the 16-bit
// canonical PCM. onProgress, when non-nil, receives values in 0..=100,
// monotonically non-decreasing; it is not guaranteed to reach 100 before a
// natural return, which callers must treat as final regardless. An Engine
// supports one inference per call; concurrent jobs issue concurrent calls.
type Engine interface {
	Transcribe(ctx context.Context, model *Model, samples []float32, language string, onProgress func(int)) ([]Segment, error)
}
