// Package translate fills each timeline segment's dub text via the
// machine-translation collaborator, one segment at a time.
package translate

import (
	"context"
	"log/slog"
	"time"

	"dubforge/internal/jobs"
	"dubforge/internal/logging"
	"dubforge/internal/services"
	"dubforge/internal/timeline"
)

const (
	defaultMaxAttempts = 3
	defaultRetryDelay  = 2 * time.Second
)

// Translator is the translation contract the stage consumes. The production
// implementation is *gtranslate.Client.
type Translator interface {
	Translate(ctx context.Context, text, target string) (string, error)
}

// Events carries the stage's per-segment notifications, emitted in timeline
// order. All callbacks are optional.
type Events struct {
	OnSegmentTranslated func(index int, text string)
	OnSegmentSkipped    func(index int)
}

// Option customizes a Stage.
type Option func(*Stage)

// WithPolicy overrides the per-segment retry policy.
func WithPolicy(policy jobs.Policy) Option {
	return func(s *Stage) { s.policy = policy }
}

// Stage implements jobs.Task for translation. Retry exhaustion on one
// segment is absorbed: the segment is skipped, a counter advances, and the
// job continues. Only cancellation or an internal fault ends the run early.
type Stage struct {
	translator Translator
	logger     *slog.Logger
	tl         *timeline.Timeline
	target     string
	policy     jobs.Policy
	events     Events
	skipped    int
}

// NewStage constructs the translation stage for the given timeline and
// target language code.
func NewStage(translator Translator, logger *slog.Logger, tl *timeline.Timeline, target string, events Events, opts ...Option) *Stage {
	s := &Stage{
		translator: translator,
		logger:     logging.NewComponentLogger(logger, "translate"),
		tl:         tl,
		target:     target,
		policy:     jobs.FixedPolicy(defaultMaxAttempts, defaultRetryDelay),
		events:     events,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name implements jobs.Task.
func (s *Stage) Name() string { return "translate" }

// Skipped returns the number of segments whose retries were exhausted. Valid
// after the job reaches a terminal state.
func (s *Stage) Skipped() int { return s.skipped }

// Run implements jobs.Task.
func (s *Stage) Run(ctx context.Context, rep *jobs.Reporter) error {
	if s.tl == nil {
		return services.Wrap(services.ErrValidation, "translate", "request", "timeline required", nil)
	}
	segments := s.tl.Segments()
	total := len(segments)
	s.logger.Info("translation started",
		logging.Int("segments", total),
		logging.String("target", s.target))

	for i, seg := range segments {
		if err := rep.Checkpoint(); err != nil {
			return err
		}

		translated := ""
		err := s.policy.Do(ctx, func() error {
			text, err := s.translator.Translate(ctx, seg.SourceText, s.target)
			if err != nil {
				return err
			}
			translated = text
			return nil
		})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.skip(seg.Index, err)
		} else if translated == "" {
			// The service answered but produced nothing usable.
			s.skip(seg.Index, nil)
		} else {
			s.tl.SetDubText(seg.Index, translated)
			if s.events.OnSegmentTranslated != nil {
				s.events.OnSegmentTranslated(seg.Index, translated)
			}
		}

		rep.Progress((i + 1) * 100 / total)
	}

	s.logger.Info("translation finished",
		logging.Int("translated", s.tl.DubbedCount()),
		logging.Int("skipped", s.skipped))
	return nil
}

func (s *Stage) skip(index int, cause error) {
	s.skipped++
	if cause != nil {
		s.logger.Warn("segment skipped after exhausting retries",
			logging.Int(logging.FieldSegment, index),
			logging.Error(cause))
	} else {
		s.logger.Warn("segment skipped, empty translation",
			logging.Int(logging.FieldSegment, index))
	}
	if s.events.OnSegmentSkipped != nil {
		s.events.OnSegmentSkipped(index)
	}
}
