package workflow

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"dubforge/internal/export"
	"dubforge/internal/jobs"
	"dubforge/internal/logging"
	"dubforge/internal/project"
	"dubforge/internal/services/edgetts"
	"dubforge/internal/services/ffmpegcli"
	"dubforge/internal/services/gtranslate"
	"dubforge/internal/services/whisper"
	"dubforge/internal/synthesize"
	"dubforge/internal/timeline"
	"dubforge/internal/transcribe"
	"dubforge/internal/translate"
)

// Transcribe runs the transcription stage and persists the resulting
// timeline. Any previously stored timeline is replaced.
func (c *Coordinator) Transcribe(ctx context.Context, proj *project.Project) error {
	client := whisper.NewClient(
		whisper.WithBinary(c.cfg.Transcription.Binary),
		whisper.WithModel(c.cfg.Transcription.Model),
	)
	hint := proj.SourceLanguage
	if hint == "" {
		hint = c.cfg.Languages.Source
	}

	var produced *timeline.Timeline
	stage := transcribe.NewStage(client, c.logger,
		transcribe.Request{VideoPath: proj.VideoPath, Language: hint},
		transcribe.Events{OnTimeline: func(tl *timeline.Timeline) { produced = tl }})

	result, err := c.runStage(ctx, proj, stage)
	if err != nil {
		return err
	}
	if err := resultErr(stage.Name(), result); err != nil {
		return err
	}
	if produced == nil {
		return errors.New("transcription finished without a timeline")
	}
	return c.store.SaveTimeline(ctx, proj.ID, produced)
}

// Translate runs the translation stage over the stored timeline.
func (c *Coordinator) Translate(ctx context.Context, proj *project.Project) error {
	tl, err := c.loadPopulatedTimeline(ctx, proj, "translate")
	if err != nil {
		return err
	}

	opts := []gtranslate.Option{}
	if c.cfg.Translation.Endpoint != "" {
		opts = append(opts, gtranslate.WithEndpoint(c.cfg.Translation.Endpoint))
	}
	client := gtranslate.NewClient(opts...)
	policy := jobs.FixedPolicy(c.cfg.Translation.MaxAttempts,
		time.Duration(c.cfg.Translation.RetryDelaySeconds)*time.Second)

	stage := translate.NewStage(client, c.logger, tl, proj.TargetLanguage,
		translate.Events{}, translate.WithPolicy(policy))

	result, err := c.runStage(ctx, proj, stage)
	if err != nil {
		return err
	}
	if err := resultErr(stage.Name(), result); err != nil {
		return err
	}
	if skipped := stage.Skipped(); skipped > 0 {
		c.logger.Warn("translation skipped segments", logging.Int("skipped", skipped))
	}
	return c.store.SaveTimeline(ctx, proj.ID, tl)
}

// Synthesize runs the speech-synthesis stage over the stored timeline and
// records the clip directory on the project.
func (c *Coordinator) Synthesize(ctx context.Context, proj *project.Project) error {
	tl, err := c.loadPopulatedTimeline(ctx, proj, "synthesize")
	if err != nil {
		return err
	}

	client := edgetts.NewClient(edgetts.WithBinary(c.cfg.Synthesis.Binary))
	policy := jobs.BackoffPolicy(c.cfg.Synthesis.MaxAttempts,
		time.Duration(c.cfg.Synthesis.InitialDelaySeconds)*time.Second)
	dir := c.clipDir(proj)

	stage := synthesize.NewStage(client, c.logger, tl, dir, c.voiceFor(proj),
		synthesize.Events{},
		synthesize.WithPolicy(policy),
		synthesize.WithSpacing(time.Duration(c.cfg.Synthesis.RequestSpacingMS)*time.Millisecond))

	result, err := c.runStage(ctx, proj, stage)
	if err != nil {
		return err
	}
	if err := resultErr(stage.Name(), result); err != nil {
		return err
	}
	if err := c.store.SaveTimeline(ctx, proj.ID, tl); err != nil {
		return err
	}
	if proj.ClipDir != dir {
		proj.ClipDir = dir
		if err := c.store.UpdateProject(ctx, proj); err != nil {
			return err
		}
	}
	return nil
}

// Export runs the final mix and encode over the stored timeline.
func (c *Coordinator) Export(ctx context.Context, proj *project.Project) error {
	tl, err := c.loadPopulatedTimeline(ctx, proj, "export")
	if err != nil {
		return err
	}

	runner := ffmpegcli.NewRunner(ffmpegcli.WithBinary(c.cfg.Export.FFmpegBinary))
	probe := export.NewCapabilityProbe(c.cfg.Export.FFmpegBinary)
	if !c.cfg.Export.AllowHardware {
		probe = export.NewDisabledProbe()
	}

	outputPath := c.outputPath(proj)
	stage := export.NewStage(runner, probe, c.cfg.Export.FFprobeBinary, c.logger, export.Request{
		VideoPath:      proj.VideoPath,
		OutputPath:     outputPath,
		Timeline:       tl,
		OriginalVolume: c.cfg.Export.OriginalVolume,
		DuckOriginal:   c.cfg.Export.DuckOriginal,
		AudioBitrate:   c.cfg.Export.AudioBitrate,
	})

	result, err := c.runStage(ctx, proj, stage)
	if err != nil {
		return err
	}
	if err := resultErr(stage.Name(), result); err != nil {
		return err
	}

	if proj.OutputPath != outputPath {
		proj.OutputPath = outputPath
		if err := c.store.UpdateProject(ctx, proj); err != nil {
			return err
		}
	}
	if !c.cfg.Workflow.KeepClips && proj.ClipDir != "" {
		if err := os.RemoveAll(proj.ClipDir); err != nil {
			c.logger.Warn("clip cleanup failed", logging.Error(err))
		}
	}
	return nil
}

// Dub chains the four stages into a full pipeline run.
func (c *Coordinator) Dub(ctx context.Context, proj *project.Project) error {
	steps := []func(context.Context, *project.Project) error{
		c.Transcribe,
		c.Translate,
		c.Synthesize,
		c.Export,
	}
	for _, step := range steps {
		if err := step(ctx, proj); err != nil {
			return err
		}
	}
	return nil
}

func (c *Coordinator) loadPopulatedTimeline(ctx context.Context, proj *project.Project, stage string) (*timeline.Timeline, error) {
	tl, err := c.store.LoadTimeline(ctx, proj.ID)
	if err != nil {
		return nil, err
	}
	if tl.Len() == 0 {
		return nil, fmt.Errorf("%s requires a transcribed timeline; run transcribe first", stage)
	}
	return tl, nil
}
