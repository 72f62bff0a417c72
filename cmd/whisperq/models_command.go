package main

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"whisperq/internal/models"
)

func newModelsCommand(ctx *commandContext) *cobra.Command {
	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "Manage local speech models",
	}
	modelsCmd.AddCommand(newModelsListCommand(ctx))
	modelsCmd.AddCommand(newModelsDownloadCommand(ctx))
	return modelsCmd
}

func newModelsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List known models and their download state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			rows := make([][]string, 0, 8)
			for _, info := range models.Builtin() {
				rows = append(rows, []string{
					info.Name,
					info.Size,
					yesNo(models.IsDownloaded(cfg.Paths.ModelsDir, info.Name)),
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Model", "Size", "Downloaded"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft},
			))
			fmt.Fprintf(out, "Models directory: %s\n", cfg.Paths.ModelsDir)
			return nil
		},
	}
}

func newModelsDownloadCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "download <model>",
		Short: "Download a model from the upstream repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			name := args[0]
			info, ok := models.Lookup(name)
			if !ok {
				return fmt.Errorf("unknown model %q; run `whisperq models list`", name)
			}
			if !force && models.IsDownloaded(cfg.Paths.ModelsDir, info.Name) {
				fmt.Fprintf(cmd.OutOrStdout(), "Model %s is already downloaded (use --force to re-download)\n", info.Name)
				return nil
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Downloading %s (%s)...\n", info.Name, info.Size)

			interactive := false
			if file, ok := out.(*os.File); ok {
				interactive = isTerminal(file)
			}
			var bar *progressbar.ProgressBar
			onProgress := func(downloaded, total int64) {
				if bar == nil {
					if total <= 0 {
						total = -1
					}
					if interactive {
						bar = progressbar.DefaultBytes(total, info.Name)
					} else {
						bar = progressbar.DefaultBytesSilent(total, info.Name)
					}
				}
				_ = bar.Set64(downloaded)
			}

			downloader := models.NewDownloader()
			if err := downloader.Download(cmd.Context(), cfg.Paths.ModelsDir, info.Name, onProgress); err != nil {
				return err
			}

			fmt.Fprintf(out, "Installed %s\n", models.Path(cfg.Paths.ModelsDir, info.Name))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Re-download even if the model is present")
	return cmd
}
