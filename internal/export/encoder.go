package export

import (
	"fmt"
	"strings"

	"dubforge/internal/timeline"
)

// Encoder presets. Hardware uses NVENC's balanced p4 preset with constant
// quality; software falls back to libx264 fast at the equivalent CRF.
const (
	hardwarePreset  = "p4"
	softwareCRF     = "23"
	hardwareCQ      = "23"
	defaultBitrate  = "192k"
	encoderProfile  = "high"
	softwarePreset  = "fast"
	softwareEncoder = "libx264"
	hardwareEncoder = "h264_nvenc"
)

// muxPlan describes one final-pass invocation.
type muxPlan struct {
	videoPath      string
	premixPath     string // empty when no segment published audio
	outputPath     string
	originalVolume float64
	duckWindows    []duckWindow
	audioBitrate   string
	hardware       bool
}

// duckWindow is a time span during which the original audio is driven to
// zero so the dub line reads clearly.
type duckWindow struct {
	start float64
	end   float64
}

// duckWindowsFor derives the ducking spans from every segment that published
// a synthesized clip.
func duckWindowsFor(segments []timeline.Segment) []duckWindow {
	windows := make([]duckWindow, 0, len(segments))
	for _, seg := range segments {
		if !seg.HasAudio() {
			continue
		}
		windows = append(windows, duckWindow{start: seg.EffectiveStart(), end: seg.End})
	}
	return windows
}

// buildMuxArgs assembles the single final-pass ffmpeg invocation: decode the
// source (hardware-accelerated when the hardware path is selected), attenuate
// and optionally duck the original audio, mix in the pre-mixed dub track as
// the only other audio input, and write a fast-start MP4.
func buildMuxArgs(plan muxPlan) []string {
	args := []string{"-y", "-hide_banner"}
	if plan.hardware {
		args = append(args, "-hwaccel", "cuda")
	}
	args = append(args, "-i", plan.videoPath)
	if plan.premixPath != "" {
		args = append(args, "-i", plan.premixPath)
	}

	var audio strings.Builder
	audio.WriteString(fmt.Sprintf("[0:a]volume=%s", formatSeconds(plan.originalVolume)))
	for _, window := range plan.duckWindows {
		audio.WriteString(fmt.Sprintf(",volume=0:enable='between(t,%s,%s)'",
			formatSeconds(window.start), formatSeconds(window.end)))
	}
	if plan.premixPath != "" {
		audio.WriteString("[orig];[orig][1:a]amix=inputs=2:duration=longest:normalize=0[aout]")
	} else {
		audio.WriteString("[aout]")
	}

	args = append(args,
		"-filter_complex", audio.String(),
		"-map", "0:v",
		"-map", "[aout]",
	)

	if plan.hardware {
		args = append(args,
			"-c:v", hardwareEncoder,
			"-preset", hardwarePreset,
			"-rc", "vbr",
			"-cq", hardwareCQ,
			"-b:v", "0",
			"-profile:v", encoderProfile,
		)
	} else {
		args = append(args,
			"-c:v", softwareEncoder,
			"-preset", softwarePreset,
			"-crf", softwareCRF,
			"-profile:v", encoderProfile,
		)
	}

	bitrate := plan.audioBitrate
	if bitrate == "" {
		bitrate = defaultBitrate
	}
	args = append(args,
		"-c:a", "aac",
		"-b:a", bitrate,
		"-movflags", "+faststart",
		"-threads", "0",
		plan.outputPath,
	)
	return args
}
