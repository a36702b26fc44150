// Package workflow coordinates pipeline runs: it owns the loaded project and
// timeline, enforces exactly one active background job, chains the four
// stages for a full dub, and records terminal job outcomes.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"dubforge/internal/config"
	"dubforge/internal/jobs"
	"dubforge/internal/language"
	"dubforge/internal/logging"
	"dubforge/internal/project"
	"dubforge/internal/textutil"
)

// ErrJobActive is returned when a stage is started while another job has not
// reached a terminal state. Jobs never run concurrently against the same
// timeline; arbitration is the coordinator's responsibility.
var ErrJobActive = errors.New("another job is already active")

// Observer receives live pipeline notifications. Callbacks run on job
// goroutines; keep them fast.
type Observer struct {
	OnStageStart func(stage string)
	OnProgress   func(stage string, percent int)
	OnStageDone  func(stage string, result jobs.Result)
}

// Coordinator drives stage jobs for one project store.
type Coordinator struct {
	cfg      *config.Config
	store    *project.Store
	logger   *slog.Logger
	observer Observer

	mu     sync.Mutex
	active *jobs.Job
}

// NewCoordinator constructs a coordinator.
func NewCoordinator(cfg *config.Config, store *project.Store, logger *slog.Logger, observer Observer) *Coordinator {
	return &Coordinator{
		cfg:      cfg,
		store:    store,
		logger:   logging.NewComponentLogger(logger, "workflow"),
		observer: observer,
	}
}

// Cancel requests cancellation of the active job, if any.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	job := c.active
	c.mu.Unlock()
	if job != nil {
		job.Cancel()
	}
}

// Active reports whether a job is currently running.
func (c *Coordinator) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active != nil
}

// runStage executes one task to its terminal state, canceling it when ctx is
// done, and records the outcome in the project's job history.
func (c *Coordinator) runStage(ctx context.Context, proj *project.Project, task jobs.Task) (jobs.Result, error) {
	stage := task.Name()

	c.mu.Lock()
	if c.active != nil {
		c.mu.Unlock()
		return jobs.Result{}, fmt.Errorf("%w: cannot start %s", ErrJobActive, stage)
	}

	if c.observer.OnStageStart != nil {
		c.observer.OnStageStart(stage)
	}
	started := time.Now()
	sampler := logging.NewProgressSampler(5)
	job := jobs.Start(ctx, task, jobs.Events{
		OnProgress: func(percent int) {
			if c.observer.OnProgress != nil {
				c.observer.OnProgress(stage, percent)
			}
			if sampler.ShouldLog(percent, stage) {
				c.logger.Debug("stage progress",
					logging.String(logging.FieldStage, stage),
					logging.Int("percent", percent))
			}
		},
	})
	c.active = job
	c.mu.Unlock()

	c.logger.Info("stage started",
		logging.String(logging.FieldStage, stage),
		logging.String(logging.FieldJobID, job.ID()))

	result := job.Wait()

	c.mu.Lock()
	c.active = nil
	c.mu.Unlock()

	record := project.JobRecord{
		ProjectID:  proj.ID,
		JobID:      job.ID(),
		Stage:      stage,
		Status:     string(result.Status),
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
	if result.Err != nil {
		record.ErrorMessage = result.Err.Error()
	}
	if err := c.store.RecordJob(ctx, record); err != nil {
		c.logger.Warn("job history write failed", logging.Error(err))
	}

	if c.observer.OnStageDone != nil {
		c.observer.OnStageDone(stage, result)
	}
	c.logger.Info("stage finished",
		logging.String(logging.FieldStage, stage),
		logging.String("status", string(result.Status)),
		logging.Error(result.Err))
	return result, nil
}

// resultErr flattens a terminal job result into the error the CLI surfaces.
func resultErr(stage string, result jobs.Result) error {
	switch result.Status {
	case jobs.StatusCompleted:
		return nil
	case jobs.StatusCancelled:
		return fmt.Errorf("%s cancelled: %w", stage, context.Canceled)
	default:
		return fmt.Errorf("%s failed: %w", stage, result.Err)
	}
}

// clipDir returns the directory for a project's synthesized clips.
func (c *Coordinator) clipDir(proj *project.Project) string {
	if strings.TrimSpace(proj.ClipDir) != "" {
		return proj.ClipDir
	}
	return filepath.Join(c.cfg.Paths.WorkDir, "clips", fmt.Sprintf("%s-%d", textutil.SanitizeToken(proj.Name), proj.ID))
}

// outputPath returns the destination for a project's finished video.
func (c *Coordinator) outputPath(proj *project.Project) string {
	if strings.TrimSpace(proj.OutputPath) != "" {
		return proj.OutputPath
	}
	base := filepath.Base(proj.VideoPath)
	ext := filepath.Ext(base)
	stem := textutil.SanitizeFileName(strings.TrimSuffix(base, ext))
	if stem == "" {
		stem = fmt.Sprintf("project-%d", proj.ID)
	}
	name := fmt.Sprintf("%s-%s.mp4", stem, proj.TargetLanguage)
	return filepath.Join(c.cfg.Paths.OutputDir, name)
}

// voiceFor resolves the synthesis voice for a project.
func (c *Coordinator) voiceFor(proj *project.Project) string {
	if strings.TrimSpace(proj.Voice) != "" {
		return proj.Voice
	}
	if strings.TrimSpace(c.cfg.Synthesis.Voice) != "" {
		return c.cfg.Synthesis.Voice
	}
	return language.DefaultVoice(proj.TargetLanguage)
}
