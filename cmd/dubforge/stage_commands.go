package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"dubforge/internal/config"
	"dubforge/internal/project"
	"dubforge/internal/timeline"
	"dubforge/internal/workflow"
)

type stageRunner func(*workflow.Coordinator, context.Context, *project.Project) error

func newDubCommand(ctx *commandContext) *cobra.Command {
	return newStageCommand(ctx, stageSpec{
		use:       "dub VIDEO",
		short:     "Run the full pipeline: transcribe, translate, synthesize, export",
		withVoice: true,
		run:       (*workflow.Coordinator).Dub,
	})
}

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	return newStageCommand(ctx, stageSpec{
		use:   "transcribe VIDEO",
		short: "Transcribe the video's speech into a caption timeline",
		run:   (*workflow.Coordinator).Transcribe,
	})
}

func newTranslateCommand(ctx *commandContext) *cobra.Command {
	return newStageCommand(ctx, stageSpec{
		use:   "translate VIDEO",
		short: "Translate the transcribed captions into the target language",
		run:   (*workflow.Coordinator).Translate,
	})
}

func newSynthesizeCommand(ctx *commandContext) *cobra.Command {
	return newStageCommand(ctx, stageSpec{
		use:       "synthesize VIDEO",
		short:     "Synthesize speech clips for the translated captions",
		withVoice: true,
		run:       (*workflow.Coordinator).Synthesize,
	})
}

func newExportCommand(ctx *commandContext) *cobra.Command {
	cmd := newStageCommand(ctx, stageSpec{
		use:      "export VIDEO",
		short:    "Mix the clips over the original audio and export the dubbed video",
		captions: true,
		run:      (*workflow.Coordinator).Export,
	})
	return cmd
}

type stageSpec struct {
	use       string
	short     string
	withVoice bool
	captions  bool
	run       stageRunner
}

func newStageCommand(cmdCtx *commandContext, spec stageSpec) *cobra.Command {
	var (
		targetFlag   string
		voiceFlag    string
		captionsFlag string
	)

	cmd := &cobra.Command{
		Use:   spec.use,
		Short: spec.short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coordinator, store, _, err := cmdCtx.openCoordinator()
			if err != nil {
				return err
			}
			defer store.Close()

			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}

			proj, err := resolveProject(cmd.Context(), store, cfg, args[0], targetFlag, voiceFlag)
			if err != nil {
				return err
			}

			if captionsFlag != "" {
				if err := importCaptions(cmd.Context(), store, proj.ID, captionsFlag); err != nil {
					return err
				}
			}

			return spec.run(coordinator, cmd.Context(), proj)
		},
	}

	cmd.Flags().StringVar(&targetFlag, "target", "", "Target language code (overrides the configured default)")
	if spec.withVoice {
		cmd.Flags().StringVar(&voiceFlag, "voice", "", "TTS voice (overrides the target language's default)")
	}
	if spec.captions {
		cmd.Flags().StringVar(&captionsFlag, "captions", "", "Replace the stored timeline with captions from an SRT file before exporting")
	}

	return cmd
}

// importCaptions replaces the project's stored timeline with segments read
// from an externally edited SRT file.
func importCaptions(ctx context.Context, store *project.Store, projectID int64, path string) error {
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return err
	}
	tl, err := timeline.ReadSRT(expanded)
	if err != nil {
		return err
	}
	if tl.Len() == 0 {
		return fmt.Errorf("no caption blocks found in %s", expanded)
	}
	return store.SaveTimeline(ctx, projectID, tl)
}
