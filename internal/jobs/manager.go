package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"whisperq/internal/format"
	"whisperq/internal/language"
	"whisperq/internal/logging"
	"whisperq/internal/notifications"
	"whisperq/internal/pcm"
	"whisperq/internal/whisper"
)

// Converter produces the canonical PCM intermediate for one input file.
type Converter interface {
	Convert(ctx context.Context, inputPath, outputPath string) error
}

// Manager owns the job registry and drives batches through the pipeline.
type Manager struct {
	converter Converter
	engine    whisper.Engine
	modelPath func(name string) string
	workDir   string
	logger    *slog.Logger
	notifier  notifications.Service

	mu       sync.Mutex
	registry map[string]*Job
	order    []string
	cancels  map[string]context.CancelFunc
	events   chan ProgressEvent

	wg sync.WaitGroup
}

// ManagerOption configures optional Manager behavior.
type ManagerOption func(*Manager)

// WithNotifier sets the push notification service for batch lifecycle events.
func WithNotifier(notifier notifications.Service) ManagerOption {
	return func(m *Manager) {
		if notifier != nil {
			m.notifier = notifier
		}
	}
}

// WithEventBuffer overrides the event channel capacity.
func WithEventBuffer(size int) ManagerOption {
	return func(m *Manager) {
		if size > 0 {
			m.events = make(chan ProgressEvent, size)
		}
	}
}

const defaultEventBuffer = 256

// NewManager constructs a job manager.
//
// modelPath resolves a model name to its expected file path; workDir holds
// intermediate canonical WAV files.
func NewManager(converter Converter, engine whisper.Engine, modelPath func(name string) string, workDir string, logger *slog.Logger, opts ...ManagerOption) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	m := &Manager{
		converter: converter,
		engine:    engine,
		modelPath: modelPath,
		workDir:   workDir,
		logger:    logging.NewComponentLogger(logger, "jobs"),
		notifier:  notifications.NewNop(),
		registry:  make(map[string]*Job),
		cancels:   make(map[string]context.CancelFunc),
		events:    make(chan ProgressEvent, defaultEventBuffer),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Events returns the progress event stream. Delivery is best effort: when
// the buffer is full events are dropped rather than blocking a pipeline,
// and the registry remains authoritative.
func (m *Manager) Events() <-chan ProgressEvent {
	return m.events
}

// StartBatch models one job per file and begins background processing.
// It fails fast, before any job is created, when the configured model file
// is absent or invalid. Progress arrives through the event stream.
func (m *Manager) StartBatch(files []FileRecord, settings Settings) error {
	if len(files) == 0 {
		return errors.New("batch contains no files")
	}
	if settings.MaxParallel < 1 {
		return fmt.Errorf("max parallel must be positive, got %d", settings.MaxParallel)
	}
	if _, err := format.ParseKind(string(settings.OutputFormat)); err != nil {
		return err
	}

	modelFile := m.modelPath(settings.Model)
	if _, err := whisper.LoadModel(modelFile); err != nil {
		return fmt.Errorf("model %q is not available: %w", settings.Model, err)
	}

	ids := make([]string, 0, len(files))
	m.mu.Lock()
	for _, file := range files {
		if _, exists := m.registry[file.ID]; exists {
			m.mu.Unlock()
			return fmt.Errorf("job %s already exists", file.ID)
		}
	}
	for _, file := range files {
		job := &Job{
			ID:       file.ID,
			FilePath: file.Path,
			Settings: settings,
			Status:   StatusPending,
		}
		m.registry[file.ID] = job
		m.order = append(m.order, file.ID)
		ids = append(ids, file.ID)
		m.publishLocked(job, "")
	}
	m.mu.Unlock()

	m.logger.Info("batch started",
		logging.Int("files", len(ids)),
		logging.String("model", settings.Model),
		logging.String("output_format", string(settings.OutputFormat)),
		logging.Int("max_parallel", settings.MaxParallel),
	)
	_ = m.notifier.NotifyBatchStarted(context.Background(), len(ids))

	m.wg.Add(1)
	go m.runBatch(ids, settings.MaxParallel)
	return nil
}

// Wait blocks until every batch started so far has reached a terminal state.
func (m *Manager) Wait() {
	m.wg.Wait()
}

// runBatch dispatches jobs in waves of at most maxParallel and waits for a
// whole wave to finish before starting the next, so earlier submissions are
// never scheduled later than newer ones.
func (m *Manager) runBatch(ids []string, maxParallel int) {
	defer m.wg.Done()
	start := time.Now()

	for _, wave := range chunkIDs(ids, maxParallel) {
		var waveWG sync.WaitGroup
		for _, id := range wave {
			ctx, ok := m.beginJob(id)
			if !ok {
				continue
			}
			waveWG.Add(1)
			go func(id string, ctx context.Context) {
				defer waveWG.Done()
				m.runJob(ctx, id)
			}(id, ctx)
		}
		waveWG.Wait()
	}

	completed, failed := m.tally(ids)
	m.logger.Info("batch finished",
		logging.Int("completed", completed),
		logging.Int("failed", failed),
		logging.Duration("duration", time.Since(start)),
	)
	_ = m.notifier.NotifyBatchCompleted(context.Background(), completed, failed, time.Since(start))
}

// beginJob registers a cancellable context for a job about to run. Jobs
// already forced terminal (cancelled before dispatch) are skipped.
func (m *Manager) beginJob(id string) (context.Context, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.registry[id]
	if !ok || job.Status.IsTerminal() {
		return nil, false
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancels[id] = cancel
	return ctx, true
}

func (m *Manager) endJob(id string) {
	m.mu.Lock()
	if cancel, ok := m.cancels[id]; ok {
		cancel()
		delete(m.cancels, id)
	}
	m.mu.Unlock()
}

// runJob advances one job through convert, transcribe, format, and write.
// Every failure is absorbed into the job's terminal Error state; nothing
// escapes to affect sibling jobs.
func (m *Manager) runJob(ctx context.Context, id string) {
	defer m.endJob(id)

	job, ok := m.snapshot(id)
	if !ok || job.Status.IsTerminal() {
		return
	}
	jobLogger := m.logger.With(logging.String(logging.FieldJobID, id))

	if !m.transition(id, StatusConverting, 0, "") {
		return
	}
	wavPath := filepath.Join(m.workDir, id+".wav")
	if !job.Settings.KeepIntermediate {
		// Best-effort cleanup once the job is terminal.
		defer os.Remove(wavPath)
	}

	jobLogger.Info("converting input",
		logging.String(logging.FieldStage, "convert"),
		logging.String("source", job.FilePath),
	)
	if err := m.converter.Convert(ctx, job.FilePath, wavPath); err != nil {
		m.fail(id, jobLogger, "convert", err)
		return
	}

	if !m.transition(id, StatusTranscribing, progressAfterConvert, "") {
		return
	}

	rawSamples, err := pcm.ReadFile(wavPath)
	if err != nil {
		m.fail(id, jobLogger, "transcribe", err)
		return
	}
	samples := pcm.ToFloat32(rawSamples)

	// Each concurrent run binds its own model handle; inference state is
	// never shared across simultaneous jobs.
	model, err := whisper.LoadModel(m.modelPath(job.Settings.Model))
	if err != nil {
		m.fail(id, jobLogger, "transcribe", err)
		return
	}

	jobLogger.Info("transcribing",
		logging.String(logging.FieldStage, "transcribe"),
		logging.String("model", job.Settings.Model),
		logging.Int("samples", len(samples)),
	)
	segments, err := m.engine.Transcribe(ctx, model, samples, language.ToISO2(job.Settings.Language), func(p int) {
		m.setProgress(id, mapEngineProgress(p))
	})
	if err != nil {
		m.fail(id, jobLogger, "transcribe", err)
		return
	}

	rendered, err := format.Render(segments, job.Settings.OutputFormat)
	if err != nil {
		m.fail(id, jobLogger, "format", err)
		return
	}

	outputPath := resolveOutputPath(job.FilePath, job.Settings)
	if err := os.WriteFile(outputPath, []byte(rendered), 0o644); err != nil {
		m.fail(id, jobLogger, "write", fmt.Errorf("write output: %w", err))
		return
	}

	m.complete(id, outputPath)
	jobLogger.Info("job completed",
		logging.Int("segments", len(segments)),
		logging.String("output", outputPath),
	)
}

// Conversion counts as a fixed 30% of total work; engine progress fills the
// remaining 70%.
const progressAfterConvert = 30

func mapEngineProgress(p int) float64 {
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	return progressAfterConvert + float64(p)*0.7
}

// resolveOutputPath places the transcript next to the input unless an
// output directory override is set. Existing files are overwritten.
func resolveOutputPath(inputPath string, settings Settings) string {
	dir := strings.TrimSpace(settings.OutputDir)
	if dir == "" {
		dir = filepath.Dir(inputPath)
	}
	base := filepath.Base(inputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, stem+"."+settings.OutputFormat.Extension())
}

// Job returns a snapshot of one job.
func (m *Manager) Job(id string) (Job, bool) {
	return m.snapshot(id)
}

// Jobs returns snapshots of all registered jobs in creation order.
func (m *Manager) Jobs() []Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Job, 0, len(m.registry))
	for _, id := range m.order {
		if job, ok := m.registry[id]; ok {
			out = append(out, *job)
		}
	}
	return out
}

// Cancel stops a job. A still-running pipeline task is asked to stop, and
// the registry entry is forced into Error with the fixed cancellation
// message regardless of whether the task honors the request promptly.
func (m *Manager) Cancel(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.registry[id]
	if !ok {
		return fmt.Errorf("unknown job %s", id)
	}
	if cancel, ok := m.cancels[id]; ok {
		cancel()
		delete(m.cancels, id)
	}
	job.Status = StatusError
	job.Error = CancelledMessage
	if job.Progress >= 100 {
		// Full progress is reserved for completed jobs.
		job.Progress = 0
	}
	m.publishLocked(job, CancelledMessage)
	return nil
}

// ClearCompleted removes every job whose state is exactly Completed.
// Error jobs are retained for inspection.
func (m *Manager) ClearCompleted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.order[:0]
	for _, id := range m.order {
		job, ok := m.registry[id]
		if ok && job.Status == StatusCompleted {
			delete(m.registry, id)
			continue
		}
		kept = append(kept, id)
	}
	m.order = kept
}

func (m *Manager) snapshot(id string) (Job, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.registry[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// transition moves a live job to a new status and progress floor. It
// returns false when the job is gone or already terminal, which tells the
// pipeline to stop quietly (cancellation has won the race).
func (m *Manager) transition(id string, status Status, progress float64, message string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.registry[id]
	if !ok || job.Status.IsTerminal() {
		return false
	}
	job.Status = status
	if progress > job.Progress {
		job.Progress = progress
	}
	m.publishLocked(job, message)
	return true
}

// setProgress raises a live job's progress. Values never decrease and
// updates after a terminal state are ignored, so late engine callbacks
// cannot resurrect a cancelled job.
func (m *Manager) setProgress(id string, progress float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.registry[id]
	if !ok || job.Status.IsTerminal() {
		return
	}
	if progress > 100 {
		progress = 100
	}
	if progress <= job.Progress {
		return
	}
	job.Progress = progress
	m.publishLocked(job, "")
}

func (m *Manager) fail(id string, jobLogger *slog.Logger, stage string, err error) {
	m.mu.Lock()
	job, ok := m.registry[id]
	if !ok || job.Status.IsTerminal() {
		m.mu.Unlock()
		return
	}
	message := err.Error()
	if errors.Is(err, context.Canceled) {
		message = CancelledMessage
	}
	job.Status = StatusError
	job.Error = message
	m.publishLocked(job, message)
	m.mu.Unlock()

	jobLogger.Error("job failed",
		logging.String(logging.FieldStage, stage),
		logging.Error(err),
	)
}

func (m *Manager) complete(id string, outputPath string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.registry[id]
	if !ok || job.Status.IsTerminal() {
		return
	}
	job.Status = StatusCompleted
	job.Progress = 100
	job.OutputPath = outputPath
	m.publishLocked(job, "")
}

// publishLocked emits an event matching the registry entry. The caller
// holds the registry lock, so observers can never receive an event that
// disagrees with a concurrent status query.
func (m *Manager) publishLocked(job *Job, message string) {
	if message == "" {
		message = job.Error
	}
	event := ProgressEvent{
		JobID:    job.ID,
		Status:   job.Status,
		Progress: job.Progress,
		Message:  message,
	}
	select {
	case m.events <- event:
	default:
	}
}

func (m *Manager) tally(ids []string) (completed, failed int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		job, ok := m.registry[id]
		if !ok {
			continue
		}
		switch job.Status {
		case StatusCompleted:
			completed++
		case StatusError:
			failed++
		}
	}
	return completed, failed
}

func chunkIDs(ids []string, size int) [][]string {
	if size < 1 {
		size = 1
	}
	var chunks [][]string
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}
