package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLanguages()
	c.normalizeTranscription()
	c.normalizeTranslation()
	c.normalizeSynthesis()
	c.normalizeExport()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLanguages() {
	c.Languages.Source = strings.ToLower(strings.TrimSpace(c.Languages.Source))
	c.Languages.Target = strings.ToLower(strings.TrimSpace(c.Languages.Target))
	if c.Languages.Target == "" {
		c.Languages.Target = defaultTargetLanguage
	}
}

func (c *Config) normalizeTranscription() {
	c.Transcription.Binary = strings.TrimSpace(c.Transcription.Binary)
	if c.Transcription.Binary == "" {
		c.Transcription.Binary = defaultWhisperBinary
	}
	c.Transcription.Model = strings.TrimSpace(c.Transcription.Model)
	if c.Transcription.Model == "" {
		c.Transcription.Model = defaultWhisperModel
	}
}

func (c *Config) normalizeTranslation() {
	c.Translation.Endpoint = strings.TrimSpace(c.Translation.Endpoint)
	if c.Translation.MaxAttempts <= 0 {
		c.Translation.MaxAttempts = defaultTranslateMaxAttempts
	}
	if c.Translation.RetryDelaySeconds <= 0 {
		c.Translation.RetryDelaySeconds = defaultTranslateRetryDelay
	}
}

func (c *Config) normalizeSynthesis() {
	c.Synthesis.Binary = strings.TrimSpace(c.Synthesis.Binary)
	if c.Synthesis.Binary == "" {
		c.Synthesis.Binary = defaultTTSBinary
	}
	c.Synthesis.Voice = strings.TrimSpace(c.Synthesis.Voice)
	if c.Synthesis.MaxAttempts <= 0 {
		c.Synthesis.MaxAttempts = defaultTTSMaxAttempts
	}
	if c.Synthesis.InitialDelaySeconds <= 0 {
		c.Synthesis.InitialDelaySeconds = defaultTTSInitialDelay
	}
	if c.Synthesis.RequestSpacingMS < 0 {
		c.Synthesis.RequestSpacingMS = defaultTTSRequestSpacing
	}
}

func (c *Config) normalizeExport() {
	c.Export.FFmpegBinary = strings.TrimSpace(c.Export.FFmpegBinary)
	if c.Export.FFmpegBinary == "" {
		c.Export.FFmpegBinary = defaultFFmpegBinary
	}
	c.Export.FFprobeBinary = strings.TrimSpace(c.Export.FFprobeBinary)
	if c.Export.FFprobeBinary == "" {
		c.Export.FFprobeBinary = defaultFFprobeBinary
	}
	c.Export.AudioBitrate = strings.TrimSpace(c.Export.AudioBitrate)
	if c.Export.AudioBitrate == "" {
		c.Export.AudioBitrate = defaultAudioBitrate
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays <= 0 {
		c.Logging.RetentionDays = defaultLogRetentionDays
	}
}
