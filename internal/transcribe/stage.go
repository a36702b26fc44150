// Package transcribe turns a source video into a fresh caption timeline by
// driving the speech-recognition collaborator as a background job.
package transcribe

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"dubforge/internal/jobs"
	"dubforge/internal/logging"
	"dubforge/internal/services"
	"dubforge/internal/services/whisper"
	"dubforge/internal/timeline"
)

// Recognizer is the speech-recognition contract the stage consumes. The
// production implementation is *whisper.Client.
type Recognizer interface {
	Transcribe(ctx context.Context, mediaPath, language string) ([]whisper.Segment, error)
}

// Request describes one transcription run.
type Request struct {
	VideoPath string
	Language  string // BCP-47-ish code passed through to the recognizer; empty means auto-detect
}

// Events carries the stage's partial-result notifications. All callbacks are
// optional and are invoked from the job goroutine.
type Events struct {
	// OnTimeline receives the full replacement timeline on success.
	OnTimeline func(*timeline.Timeline)
}

// Stage implements jobs.Task for transcription.
type Stage struct {
	recognizer Recognizer
	logger     *slog.Logger
	request    Request
	events     Events
}

// NewStage constructs the transcription stage.
func NewStage(recognizer Recognizer, logger *slog.Logger, request Request, events Events) *Stage {
	return &Stage{
		recognizer: recognizer,
		logger:     logging.NewComponentLogger(logger, "transcribe"),
		request:    request,
		events:     events,
	}
}

// Name implements jobs.Task.
func (s *Stage) Name() string { return "transcribe" }

// Run implements jobs.Task. The model call is a single opaque blocking step
// with no intermediate feedback, so it owns a fixed slice of the progress
// range; the remainder is spread over assembling the timeline.
func (s *Stage) Run(ctx context.Context, rep *jobs.Reporter) error {
	if strings.TrimSpace(s.request.VideoPath) == "" {
		return services.Wrap(services.ErrValidation, "transcribe", "request", "empty video path", nil)
	}
	if err := rep.Checkpoint(); err != nil {
		return err
	}
	rep.Progress(5)

	s.logger.Info("transcription started",
		logging.String("video", s.request.VideoPath),
		logging.String("language", s.request.Language))

	segments, err := s.recognizer.Transcribe(ctx, s.request.VideoPath, s.request.Language)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	rep.Progress(20)
	s.logger.Info("recognition returned", logging.Int("segments", len(segments)))

	if err := rep.Checkpoint(); err != nil {
		return err
	}

	tl := timeline.New()
	total := len(segments)
	for i, seg := range segments {
		entry := timeline.Segment{
			Index:      i + 1,
			Start:      seg.Start,
			End:        seg.End,
			SourceText: strings.TrimSpace(seg.Text),
		}
		if err := tl.Add(entry); err != nil {
			return fmt.Errorf("assemble timeline: %w", err)
		}
		rep.Progress(20 + (i+1)*75/total)
	}

	if s.events.OnTimeline != nil {
		s.events.OnTimeline(tl)
	}
	s.logger.Info("transcription finished", logging.Int("segments", tl.Len()))
	return nil
}
