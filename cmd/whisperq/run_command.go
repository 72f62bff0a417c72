package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"whisperq/internal/config"
	"whisperq/internal/format"
	"whisperq/internal/jobs"
	"whisperq/internal/language"
	"whisperq/internal/media"
	"whisperq/internal/models"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var (
		modelFlag    string
		languageFlag string
		formatFlag   string
		outputDir    string
		parallel     int
		keepWav      bool
	)

	cmd := &cobra.Command{
		Use:   "run <file>...",
		Short: "Transcribe one or more media files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, cfg, err := ctx.newManager()
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

			paths := make([]string, 0, len(args))
			for _, arg := range args {
				expanded, err := config.ExpandPath(arg)
				if err != nil {
					return err
				}
				paths = append(paths, expanded)
			}

			accepted, rejected := media.Ingest(paths)
			out := cmd.OutOrStdout()
			for _, path := range rejected {
				fmt.Fprintf(out, "Skipping unsupported file: %s\n", path)
			}
			if len(accepted) == 0 {
				return fmt.Errorf("no supported media files among %d argument(s)", len(args))
			}

			lock := flock.New(filepath.Join(cfg.Paths.LogDir, "whisperq.lock"))
			ok, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire lock: %w", err)
			}
			if !ok {
				return fmt.Errorf("another whisperq batch is already running")
			}
			defer lock.Unlock()

			fmt.Fprintf(out, "Transcribing %d file(s) with model %s (language: %s, format: %s)\n",
				len(accepted), settings.Model, languageLabel(settings.Language), settings.OutputFormat)

			if err := manager.StartBatch(accepted, settings); err != nil {
				return err
			}

			renderBatchProgress(cmd, manager, len(accepted))

			finished := manager.Jobs()
			fmt.Fprintln(out, renderJobTable(finished))

			failed := 0
			for _, job := range finished {
				if job.Status == jobs.StatusError {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d job(s) failed", failed, len(finished))
			}
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

// resolveSettings layers explicit flags over the configuration defaults.
func resolveSettings(cmd *cobra.Command, cfg *config.Config, model, lang, formatName, outputDir string, parallel int, keepWav bool) (jobs.Settings, error) {
	settings := jobs.Settings{
		Language:         cfg.Transcription.Language,
		Model:            cfg.Transcription.Model,
		KeepIntermediate: cfg.Transcription.KeepIntermediate,
		OutputDir:        cfg.Transcription.OutputDir,
		MaxParallel:      cfg.Transcription.MaxParallel,
	}

	kind, err := format.ParseKind(cfg.Transcription.OutputFormat)
	if err != nil {
		return jobs.Settings{}, err
	}
	settings.OutputFormat = kind

	if cmd.Flags().Changed("model") {
		settings.Model = strings.TrimSpace(model)
	}
	if cmd.Flags().Changed("language") {
		settings.Language = strings.TrimSpace(lang)
	}
	if cmd.Flags().Changed("format") {
		kind, err := format.ParseKind(formatName)
		if err != nil {
			return jobs.Settings{}, err
		}
		settings.OutputFormat = kind
	}
	if cmd.Flags().Changed("output-dir") {
		expanded, err := config.ExpandPath(outputDir)
		if err != nil {
			return jobs.Settings{}, err
		}
		settings.OutputDir = expanded
	}
	if cmd.Flags().Changed("parallel") {
		settings.MaxParallel = parallel
	}
	if cmd.Flags().Changed("keep-intermediate") {
		settings.KeepIntermediate = keepWav
	}

	if _, ok := models.Lookup(settings.Model); !ok {
		return jobs.Settings{}, fmt.Errorf("unknown model %q", settings.Model)
	}
	if settings.MaxParallel < 1 {
		return jobs.Settings{}, fmt.Errorf("parallelism must be at least 1, got %d", settings.MaxParallel)
	}
	return settings, nil
}

// renderBatchProgress consumes the event stream until every job is
// terminal, showing either a live progress bar or plain log lines.
func renderBatchProgress(cmd *cobra.Command, manager *jobs.Manager, total int) {
	out := cmd.OutOrStdout()
	interactive := false
	if file, ok := out.(*os.File); ok {
		interactive = isTerminal(file)
	}

	done := make(chan struct{})
	go func() {
		manager.Wait()
		close(done)
	}()

	progress := make(map[string]float64, total)
	var bar *jobProgressBar
	if interactive {
		bar = newJobProgressBar(out, total)
	}

	events := manager.Events()
	for {
		select {
		case event := <-events:
			progress[event.JobID] = event.Progress
			if bar != nil {
				bar.update(progress)
			} else if event.Status.IsTerminal() {
				fmt.Fprintf(out, "%s: %s %s\n", shortID(event.JobID), event.Status, event.Message)
			}
		case <-done:
			for {
				select {
				case event := <-events:
					progress[event.JobID] = event.Progress
				default:
					if bar != nil {
						bar.update(progress)
						bar.finish()
					}
					return
				}
			}
		}
	}
}

func renderJobTable(list []jobs.Job) string {
	rows := make([][]string, 0, len(list))
	for _, job := range list {
		result := job.OutputPath
		if job.Status == jobs.StatusError {
			result = job.Error
		}
		rows = append(rows, []string{
			filepath.Base(job.FilePath),
			string(job.Status),
			fmt.Sprintf("%.0f%%", job.Progress),
			result,
		})
	}
	return renderTable(
		[]string{"File", "Status", "Progress", "Result"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
	)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func languageLabel(code string) string {
	return language.DisplayName(code)
}
