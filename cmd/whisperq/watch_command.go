package main

import (
	"fmt"
	"io"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"whisperq/internal/config"
	"whisperq/internal/jobs"
	"whisperq/internal/logging"
	"whisperq/internal/media"
	"whisperq/internal/models"
	"whisperq/internal/watch"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var (
		modelFlag    string
		languageFlag string
		formatFlag   string
		outputDir    string
		parallel     int
		keepWav      bool
	)

	cmd := &cobra.Command{
		Use:   "watch <directory>",
		Short: "Watch a directory and transcribe new media as it arrives",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, cfg, err := ctx.newManager()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			settings, err := resolveSettings(cmd, cfg, modelFlag, languageFlag, formatFlag, outputDir, parallel, keepWav)
			if err != nil {
				return err
			}
			if !models.IsDownloaded(cfg.Paths.ModelsDir, settings.Model) {
				return fmt.Errorf("model %q is not downloaded; run `whisperq models download %s`", settings.Model, settings.Model)
			}

			dir, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}

			lock := flock.New(filepath.Join(cfg.Paths.LogDir, "whisperq.lock"))
			ok, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire lock: %w", err)
			}
			if !ok {
				return fmt.Errorf("another whisperq instance is already running")
			}
			defer lock.Unlock()

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			submit := func(path string) {
				accepted, _ := media.Ingest([]string{path})
				if len(accepted) == 0 {
					return
				}
				if err := manager.StartBatch(accepted, settings); err != nil {
					logger.Error("submit watched file",
						logging.String("path", path),
						logging.Error(err),
					)
				}
			}

			watcher, err := watch.New(dir, submit, logger)
			if err != nil {
				return err
			}

			go reportTerminalEvents(out, manager)

			fmt.Fprintf(out, "Watching %s (model %s, format %s). Press Ctrl-C to stop.\n",
				dir, settings.Model, settings.OutputFormat)
			if err := watcher.Run(runCtx); err != nil {
				return err
			}

			fmt.Fprintln(out, "Stopping; waiting for in-flight jobs...")
			manager.Wait()
			return nil
		},
	}

	cmd.Flags().StringVarP(&modelFlag, "model", "m", "", "Model name (tiny, base, small, ...)")
	cmd.Flags().StringVarP(&languageFlag, "language", "l", "", "Language hint (ISO code or name, empty for autodetect)")
	cmd.Flags().StringVarP(&formatFlag, "format", "f", "", "Output format (txt, srt, vtt, json)")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory for transcripts (default: beside each input)")
	cmd.Flags().IntVarP(&parallel, "parallel", "p", 0, "Maximum concurrent jobs")
	cmd.Flags().BoolVar(&keepWav, "keep-intermediate", false, "Keep the intermediate WAV files")

	return cmd
}

// reportTerminalEvents prints one line per finished job for the lifetime of
// the watch session.
func reportTerminalEvents(out io.Writer, manager *jobs.Manager) {
	for event := range manager.Events() {
		if !event.Status.IsTerminal() {
			continue
		}
		job, ok := manager.Job(event.JobID)
		if !ok {
			continue
		}
		switch event.Status {
		case jobs.StatusCompleted:
			fmt.Fprintf(out, "Completed %s -> %s\n", filepath.Base(job.FilePath), job.OutputPath)
		case jobs.StatusError:
			fmt.Fprintf(out, "Failed %s: %s\n", filepath.Base(job.FilePath), job.Error)
		}
	}
}
