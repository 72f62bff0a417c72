package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"

	"whisperq/internal/logging"
	"whisperq/internal/media"
)

// Handler receives the path of a settled media file.
type Handler func(path string)

// Watcher monitors one directory for new media files.
type Watcher struct {
	dir     string
	handler Handler
	logger  *slog.Logger
	fs      *fsnotify.Watcher
	settle  time.Duration
}

// Option configures optional Watcher behavior.
type Option func(*Watcher)

// WithSettleDelay overrides how long a new file must stop growing before
// it is handed off. Copies into the watched directory arrive incrementally,
// so firing on the create event alone would transcribe truncated media.
func WithSettleDelay(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.settle = d
		}
	}
}

const defaultSettleDelay = 2 * time.Second

// New builds a watcher over dir. Files already present are not replayed;
// only arrivals after Run starts are reported.
func New(dir string, handler Handler, logger *slog.Logger, opts ...Option) (*Watcher, error) {
	if handler == nil {
		return nil, errors.New("watch handler is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fs.Add(dir); err != nil {
		fs.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	w := &Watcher{
		dir:     dir,
		handler: handler,
		logger:  logging.NewComponentLogger(logger, "watch"),
		fs:      fs,
		settle:  defaultSettleDelay,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run processes filesystem events until ctx is cancelled. It returns nil on
// cancellation and an error only when the underlying watcher breaks.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fs.Close()
	w.logger.Info("watching for new media",
		logging.String("dir", w.dir),
		logging.Duration("settle_delay", w.settle),
	)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return errors.New("watcher event stream closed")
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !media.Supported(event.Name) {
				w.logger.Debug("ignoring unsupported file", logging.String("path", event.Name))
				continue
			}
			go w.settleAndReport(ctx, event.Name)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return errors.New("watcher error stream closed")
			}
			w.logger.Warn("watcher error", logging.Error(err))
		}
	}
}

// settleAndReport waits for the file's size to hold steady across one
// settle interval before invoking the handler.
func (w *Watcher) settleAndReport(ctx context.Context, path string) {
	var lastSize int64 = -1
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(w.settle):
		}

		info, err := os.Stat(path)
		if err != nil {
			// Renamed or deleted before it settled.
			w.logger.Debug("file vanished before settling", logging.String("path", path))
			return
		}
		if info.Size() == lastSize {
			break
		}
		lastSize = info.Size()
	}

	w.logger.Info("new media settled", logging.String("path", path))
	w.handler(path)
}
