package config

const (
	defaultWorkDir   = "~/.local/share/dubforge/projects"
	defaultOutputDir = "~/dubforge"
	defaultLogDir    = "~/.local/share/dubforge/logs"

	defaultSourceLanguage = ""
	defaultTargetLanguage = "km"

	defaultWhisperBinary = "whisper"
	defaultWhisperModel  = "small"

	defaultTranslateMaxAttempts = 3
	defaultTranslateRetryDelay  = 2

	defaultTTSBinary         = "edge-tts"
	defaultTTSMaxAttempts    = 5
	defaultTTSInitialDelay   = 1
	defaultTTSRequestSpacing = 500

	defaultFFmpegBinary   = "ffmpeg"
	defaultFFprobeBinary  = "ffprobe"
	defaultOriginalVolume = 0.3
	defaultAudioBitrate   = "192k"

	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:   defaultWorkDir,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Languages: Languages{
			Source: defaultSourceLanguage,
			Target: defaultTargetLanguage,
		},
		Transcription: Transcription{
			Binary: defaultWhisperBinary,
			Model:  defaultWhisperModel,
		},
		Translation: Translation{
			MaxAttempts:       defaultTranslateMaxAttempts,
			RetryDelaySeconds: defaultTranslateRetryDelay,
		},
		Synthesis: Synthesis{
			Binary:              defaultTTSBinary,
			MaxAttempts:         defaultTTSMaxAttempts,
			InitialDelaySeconds: defaultTTSInitialDelay,
			RequestSpacingMS:    defaultTTSRequestSpacing,
		},
		Export: Export{
			FFmpegBinary:   defaultFFmpegBinary,
			FFprobeBinary:  defaultFFprobeBinary,
			OriginalVolume: defaultOriginalVolume,
			DuckOriginal:   true,
			AudioBitrate:   defaultAudioBitrate,
			AllowHardware:  true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
