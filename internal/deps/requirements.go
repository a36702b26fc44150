package deps

import "dubforge/internal/config"

// For lists the external tools a full pipeline run needs under the given
// configuration. Transcription and synthesis binaries are only required by
// their own stages, so either may be absent when running export alone; they
// are still surfaced as hard requirements here because `dub` runs all four.
func For(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.Export.FFmpegBinary,
			Description: "Mixes and encodes the final video",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.Export.FFprobeBinary,
			Description: "Inspects source media duration and streams",
		},
		{
			Name:        "Whisper",
			Command:     cfg.Transcription.Binary,
			Description: "Transcribes the source audio",
		},
		{
			Name:        "Edge TTS",
			Command:     cfg.Synthesis.Binary,
			Description: "Synthesizes dub speech clips",
		},
	}
}

// AllAvailable reports whether every non-optional requirement is present.
func AllAvailable(statuses []Status) bool {
	for _, status := range statuses {
		if !status.Optional && !status.Available {
			return false
		}
	}
	return true
}
