// Package synthesize produces one speech clip per translated segment via the
// text-to-speech collaborator.
package synthesize

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dubforge/internal/jobs"
	"dubforge/internal/logging"
	"dubforge/internal/services"
	"dubforge/internal/timeline"
)

const (
	defaultMaxAttempts  = 5
	defaultInitialDelay = time.Second
	defaultSpacing      = 500 * time.Millisecond
)

// Synthesizer is the text-to-speech contract the stage consumes. The
// production implementation is *edgetts.Client.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice, outputPath string) error
}

// Events carries the stage's per-segment notifications, emitted in timeline
// order.
type Events struct {
	OnClipReady func(index int, path string)
}

// Option customizes a Stage.
type Option func(*Stage)

// WithPolicy overrides the per-segment retry policy.
func WithPolicy(policy jobs.Policy) Option {
	return func(s *Stage) { s.policy = policy }
}

// WithSpacing overrides the pause inserted between synthesis requests.
func WithSpacing(d time.Duration) Option {
	return func(s *Stage) { s.spacing = d }
}

// Stage implements jobs.Task for speech synthesis. Unlike translation,
// exhausting the retry budget on any segment fails the whole job: the speech
// service is essential, not degradable per segment. Requests are spaced out
// to stay under the service's rate limits.
type Stage struct {
	synth        Synthesizer
	logger       *slog.Logger
	tl           *timeline.Timeline
	outputDir    string
	defaultVoice string
	policy       jobs.Policy
	spacing      time.Duration
	sleep        func(ctx context.Context, d time.Duration) error
	events       Events
}

// NewStage constructs the synthesis stage. Clips are written into outputDir
// as tts_NNNN.mp3, keyed by segment index.
func NewStage(synth Synthesizer, logger *slog.Logger, tl *timeline.Timeline, outputDir, defaultVoice string, events Events, opts ...Option) *Stage {
	s := &Stage{
		synth:        synth,
		logger:       logging.NewComponentLogger(logger, "synthesize"),
		tl:           tl,
		outputDir:    outputDir,
		defaultVoice: defaultVoice,
		policy:       jobs.BackoffPolicy(defaultMaxAttempts, defaultInitialDelay),
		spacing:      defaultSpacing,
		sleep:        jobs.Sleep,
		events:       events,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name implements jobs.Task.
func (s *Stage) Name() string { return "synthesize" }

// Run implements jobs.Task.
func (s *Stage) Run(ctx context.Context, rep *jobs.Reporter) error {
	if s.tl == nil {
		return services.Wrap(services.ErrValidation, "synthesize", "request", "timeline required", nil)
	}
	if strings.TrimSpace(s.outputDir) == "" {
		return services.Wrap(services.ErrValidation, "synthesize", "request", "empty output directory", nil)
	}
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return fmt.Errorf("create clip directory: %w", err)
	}

	segments := s.tl.Segments()
	total := len(segments)
	s.logger.Info("synthesis started",
		logging.Int("segments", total),
		logging.String("voice", s.defaultVoice))

	for i, seg := range segments {
		if err := rep.Checkpoint(); err != nil {
			return err
		}
		// Untranslated segments cost nothing: no request, no retry budget.
		if seg.DubText == "" {
			rep.Progress((i + 1) * 100 / total)
			continue
		}

		voice := seg.Voice
		if voice == "" {
			voice = s.defaultVoice
		}
		clipPath := filepath.Join(s.outputDir, fmt.Sprintf("tts_%04d.mp3", seg.Index))

		err := s.policy.Do(ctx, func() error {
			return s.synth.Synthesize(ctx, seg.DubText, voice, clipPath)
		})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("synthesize segment %d: %w", seg.Index, err)
		}

		s.tl.SetAudioPath(seg.Index, clipPath)
		if s.events.OnClipReady != nil {
			s.events.OnClipReady(seg.Index, clipPath)
		}
		s.logger.Debug("clip written",
			logging.Int(logging.FieldSegment, seg.Index),
			logging.String("path", clipPath))
		rep.Progress((i + 1) * 100 / total)

		if i < total-1 {
			if err := s.sleep(ctx, s.spacing); err != nil {
				return err
			}
		}
	}

	s.logger.Info("synthesis finished", logging.Int("clips", len(s.tl.WithAudio())))
	return nil
}
