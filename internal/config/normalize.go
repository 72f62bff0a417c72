package config

import "strings"

func (c *Config) normalize() error {
	var err error
	if c.Paths.ModelsDir, err = expandPath(c.Paths.ModelsDir); err != nil {
		return err
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}
	if dir := strings.TrimSpace(c.Transcription.OutputDir); dir != "" {
		if c.Transcription.OutputDir, err = expandPath(dir); err != nil {
			return err
		}
	}

	c.Transcription.Language = strings.TrimSpace(c.Transcription.Language)
	c.Transcription.Model = strings.TrimSpace(c.Transcription.Model)
	c.Transcription.OutputFormat = strings.ToLower(strings.TrimSpace(c.Transcription.OutputFormat))
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	return nil
}
