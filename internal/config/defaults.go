package config

const (
	defaultModelsDir    = "~/.local/share/whisperq/models"
	defaultWorkDir      = "~/.local/share/whisperq/work"
	defaultLogDir       = "~/.local/share/whisperq/logs"
	defaultModel        = "base"
	defaultOutputFormat = "srt"
	defaultMaxParallel  = 1
	defaultNtfyTimeout  = 10
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ModelsDir: defaultModelsDir,
			WorkDir:   defaultWorkDir,
			LogDir:    defaultLogDir,
		},
		Transcription: Transcription{
			Model:        defaultModel,
			OutputFormat: defaultOutputFormat,
			MaxParallel:  defaultMaxParallel,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
