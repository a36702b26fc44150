package export

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-audio/wav"

	"dubforge/internal/services"
	"dubforge/internal/timeline"
)

// premixSampleRate is the intermediate track's sample rate. The file is
// uncompressed PCM so it is fast to produce and fast for the final pass to
// re-read.
const premixSampleRate = 44100

// buildPremixArgs assembles the ffmpeg invocation that collapses every
// per-segment clip into a single WAV aligned to the master timeline:
// per-clip tempo chain, start-offset delay, trailing pad, then one
// sum-without-normalization mix trimmed to the video duration.
func buildPremixArgs(clips []timeline.Segment, videoDuration float64, outputPath string) []string {
	args := []string{"-y", "-hide_banner"}
	for _, clip := range clips {
		args = append(args, "-i", clip.AudioPath)
	}

	var graph strings.Builder
	labels := make([]string, 0, len(clips))
	for i, clip := range clips {
		label := fmt.Sprintf("[c%d]", i)
		graph.WriteString(fmt.Sprintf("[%d:a]%s%s", i, clipFilterChain(clip), label))
		graph.WriteString(";")
		labels = append(labels, label)
	}

	graph.WriteString(strings.Join(labels, ""))
	if len(clips) > 1 {
		// Loudness is intentionally not normalized; clipping on heavy
		// overlap is accepted and left to the caller's tuning.
		graph.WriteString(fmt.Sprintf("amix=inputs=%d:duration=longest:normalize=0,", len(clips)))
	}
	graph.WriteString(fmt.Sprintf("atrim=duration=%s[mix]", formatSeconds(videoDuration)))

	args = append(args,
		"-filter_complex", graph.String(),
		"-map", "[mix]",
		"-acodec", "pcm_s16le",
		"-ar", fmt.Sprintf("%d", premixSampleRate),
		"-threads", "0",
		outputPath,
	)
	return args
}

// clipFilterChain renders one clip's filter sequence: atempo chain, adelay to
// its effective start, and apad so all clips share a common trailing length
// before the mix.
func clipFilterChain(clip timeline.Segment) string {
	var filters []string
	for _, factor := range TempoChain(clip.Tempo) {
		filters = append(filters, fmt.Sprintf("atempo=%s", formatTempoFactor(factor)))
	}
	if delayMS := int(clip.EffectiveStart() * 1000); delayMS > 0 {
		filters = append(filters, fmt.Sprintf("adelay=%d|%d", delayMS, delayMS))
	}
	filters = append(filters, "apad")
	return strings.Join(filters, ",")
}

// validatePremix confirms the rendered intermediate decodes as a non-empty
// WAV before the final pass depends on it.
func validatePremix(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return services.Wrap(services.ErrProcess, "export", "premix", "intermediate missing", err)
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		return services.Wrap(services.ErrProcess, "export", "premix", "intermediate is not a valid wav", nil)
	}
	duration, err := decoder.Duration()
	if err != nil {
		return services.Wrap(services.ErrProcess, "export", "premix", "intermediate duration unreadable", err)
	}
	if duration <= 0 {
		return services.Wrap(services.ErrProcess, "export", "premix", "intermediate is empty", nil)
	}
	return nil
}

func formatSeconds(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func formatTempoFactor(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
