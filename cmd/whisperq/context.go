package main

import (
	"log/slog"
	"strings"
	"sync"

	"whisperq/internal/config"
	"whisperq/internal/convert"
	"whisperq/internal/jobs"
	"whisperq/internal/logging"
	"whisperq/internal/models"
	"whisperq/internal/notifications"
	"whisperq/internal/whisper"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// ensureLogger builds the shared file logger. Logs go to the configured log
// file so interactive progress output stays uncluttered.
func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.New(logging.Options{
			Level:       cfg.Logging.Level,
			Format:      cfg.Logging.Format,
			OutputPaths: []string{cfg.LogPath()},
		})
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

// newManager assembles the pipeline from configuration.
func (c *commandContext) newManager() (*jobs.Manager, *config.Config, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, nil, err
	}

	converter := convert.New(cfg.FFmpegBinary())
	engine := whisper.NewCLIEngine(cfg.WhisperBinary())
	resolver := func(name string) string {
		return models.Path(cfg.Paths.ModelsDir, name)
	}

	manager := jobs.NewManager(converter, engine, resolver, cfg.Paths.WorkDir, logger,
		jobs.WithNotifier(notifications.NewService(cfg)),
	)
	return manager, cfg, nil
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
