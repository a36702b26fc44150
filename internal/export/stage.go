package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dubforge/internal/jobs"
	"dubforge/internal/logging"
	"dubforge/internal/services"
	"dubforge/internal/services/ffmpegcli"
	"dubforge/internal/timeline"
)

// Progress weights: when dub clips exist the pre-mix pass owns the early
// slice and the encode pass the remainder; without clips the sidecar write is
// the only early work.
var (
	premixPhase     = Phase{Base: 5, Span: 25}
	encodePhase     = Phase{Base: 30, Span: 70}
	encodeOnlyPhase = Phase{Base: 5, Span: 95}
)

// Request describes one export run.
type Request struct {
	VideoPath      string
	OutputPath     string
	Timeline       *timeline.Timeline
	OriginalVolume float64 // [0,1] multiplier for the original audio
	DuckOriginal   bool    // silence original audio under dubbed windows
	AudioBitrate   string  // AAC bitrate, empty for the default
}

// Runner abstracts the ffmpeg invocation so tests can substitute the
// subprocess. The production implementation is *ffmpegcli.Runner.
type Runner interface {
	Run(ctx context.Context, args []string, onLine func(string)) error
}

var _ Runner = (*ffmpegcli.Runner)(nil)

// Stage renders the final video and subtitle sidecar as one composite job.
type Stage struct {
	runner        Runner
	probe         *CapabilityProbe
	ffprobeBinary string
	logger        *slog.Logger
	request       Request
}

// NewStage constructs the export stage.
func NewStage(runner Runner, probe *CapabilityProbe, ffprobeBinary string, logger *slog.Logger, request Request) *Stage {
	return &Stage{
		runner:        runner,
		probe:         probe,
		ffprobeBinary: ffprobeBinary,
		logger:        logging.NewComponentLogger(logger, "export"),
		request:       request,
	}
}

// Name implements jobs.Task.
func (s *Stage) Name() string { return "export" }

// Run implements jobs.Task. It writes the subtitle sidecar before touching
// audio, pre-mixes the dub clips when any exist, then muxes and encodes the
// final MP4. Partial output files are left on disk after cancellation or
// failure; only the pre-mix intermediate is always removed.
func (s *Stage) Run(ctx context.Context, rep *jobs.Reporter) error {
	req := s.request
	if err := validateRequest(req); err != nil {
		return err
	}
	if err := rep.Checkpoint(); err != nil {
		return err
	}

	sidecarPath := sidecarFor(req.OutputPath)
	if err := req.Timeline.WriteSRT(sidecarPath); err != nil {
		return fmt.Errorf("write subtitle sidecar: %w", err)
	}
	s.logger.Info("subtitle sidecar written",
		logging.String("path", sidecarPath),
		logging.Int("segments", req.Timeline.Len()))
	rep.Progress(5)

	info, err := inspectMedia(ctx, s.ffprobeBinary, req.VideoPath)
	if err != nil {
		return services.Wrap(services.ErrProcess, "export", "probe", "", err)
	}
	duration := info.DurationSeconds

	clips := presentClips(req.Timeline)
	hardware := s.probe.HardwareH264(ctx)

	premixPath := ""
	if len(clips) > 0 {
		if err := rep.Checkpoint(); err != nil {
			return err
		}
		premixPath, err = s.premix(ctx, rep, clips, duration)
		if premixPath != "" {
			defer os.Remove(premixPath)
		}
		if err != nil {
			return err
		}
		rep.Progress(premixPhase.Done())
	} else {
		// No segment published audio: the export proceeds with the
		// original track only. This is not an error.
		s.logger.Info("no dub clips present; exporting original audio only")
	}

	if err := rep.Checkpoint(); err != nil {
		return err
	}

	plan := muxPlan{
		videoPath:      req.VideoPath,
		premixPath:     premixPath,
		outputPath:     req.OutputPath,
		originalVolume: req.OriginalVolume,
		audioBitrate:   req.AudioBitrate,
		hardware:       hardware,
	}
	if req.DuckOriginal {
		plan.duckWindows = duckWindowsFor(clips)
	}

	phase := encodePhase
	if premixPath == "" {
		phase = encodeOnlyPhase
	}
	s.logger.Info("encode started",
		logging.Bool("hardware", hardware),
		logging.Int("dub_clips", len(clips)),
		logging.String("output", req.OutputPath))

	sampler := logging.NewProgressSampler(5)
	err = s.runner.Run(ctx, buildMuxArgs(plan), func(line string) {
		elapsed, ok := ParseElapsed(line)
		if !ok || duration <= 0 {
			return
		}
		percent := phase.Map(elapsed / duration)
		rep.Progress(percent)
		if sampler.ShouldLog(percent, "encode") {
			s.logger.Debug("encode progress", logging.Int("percent", percent))
		}
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}

	s.logger.Info("export finished", logging.String("output", req.OutputPath))
	return nil
}

// premix renders every present clip into the single intermediate track.
func (s *Stage) premix(ctx context.Context, rep *jobs.Reporter, clips []timeline.Segment, duration float64) (string, error) {
	tmp, err := os.CreateTemp("", "dubforge-premix-*.wav")
	if err != nil {
		return "", fmt.Errorf("create premix intermediate: %w", err)
	}
	premixPath := tmp.Name()
	if err := tmp.Close(); err != nil {
		return premixPath, fmt.Errorf("close premix intermediate: %w", err)
	}

	rep.Progress(premixPhase.Base)
	s.logger.Info("premix started", logging.Int("clips", len(clips)))

	args := buildPremixArgs(clips, duration, premixPath)
	err = s.runner.Run(ctx, args, func(line string) {
		if elapsed, ok := ParseElapsed(line); ok && duration > 0 {
			rep.Progress(premixPhase.Map(elapsed / duration))
		}
	})
	if err != nil {
		if ctx.Err() != nil {
			return premixPath, ctx.Err()
		}
		return premixPath, err
	}
	if err := validatePremix(premixPath); err != nil {
		return premixPath, err
	}
	return premixPath, nil
}

// presentClips returns the segments whose synthesized clip actually exists on
// disk, in playback order.
func presentClips(tl *timeline.Timeline) []timeline.Segment {
	clips := make([]timeline.Segment, 0)
	for _, seg := range tl.WithAudio() {
		if _, err := os.Stat(seg.AudioPath); err != nil {
			continue
		}
		clips = append(clips, seg)
	}
	return clips
}

func validateRequest(req Request) error {
	if strings.TrimSpace(req.VideoPath) == "" {
		return services.Wrap(services.ErrValidation, "export", "request", "empty video path", nil)
	}
	if strings.TrimSpace(req.OutputPath) == "" {
		return services.Wrap(services.ErrValidation, "export", "request", "empty output path", nil)
	}
	if req.Timeline == nil {
		return services.Wrap(services.ErrValidation, "export", "request", "timeline required", nil)
	}
	if req.OriginalVolume < 0 || req.OriginalVolume > 1 {
		return services.Wrap(services.ErrValidation, "export", "request",
			fmt.Sprintf("original volume %.2f outside [0,1]", req.OriginalVolume), nil)
	}
	return nil
}

// sidecarFor places the subtitle file next to the output video.
func sidecarFor(outputPath string) string {
	ext := filepath.Ext(outputPath)
	return strings.TrimSuffix(outputPath, ext) + ".srt"
}
