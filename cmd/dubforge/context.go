package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"

	"dubforge/internal/config"
	"dubforge/internal/jobs"
	"dubforge/internal/logging"
	"dubforge/internal/project"
	"dubforge/internal/workflow"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		path := ""
		if c.configFlag != nil {
			path = *c.configFlag
		}
		cfg, resolvedPath, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolvedPath
	})
	return c.config, c.configErr
}

// openCoordinator builds the store, logger, and coordinator for a stage
// command. The caller must Close the returned store.
func (c *commandContext) openCoordinator() (*workflow.Coordinator, *project.Store, *slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	logger, err := newCommandLogger(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	store, err := project.Open(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	coordinator := workflow.NewCoordinator(cfg, store, logger, consoleObserver())
	return coordinator, store, logger, nil
}

func newCommandLogger(cfg *config.Config) (*slog.Logger, error) {
	return logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		LogDir: cfg.Paths.LogDir,
	})
}

// consoleObserver prints stage progress to stderr. On a terminal the
// progress line is rewritten in place; otherwise each update gets its
// own line so piped output stays readable.
func consoleObserver() workflow.Observer {
	interactive := isatty.IsTerminal(os.Stderr.Fd())
	lastPercent := -1

	return workflow.Observer{
		OnStageStart: func(stage string) {
			lastPercent = -1
			fmt.Fprintf(os.Stderr, "%s: started\n", stage)
		},
		OnProgress: func(stage string, percent int) {
			if percent == lastPercent {
				return
			}
			lastPercent = percent
			if interactive {
				fmt.Fprintf(os.Stderr, "\r%s: %3d%%", stage, percent)
				return
			}
			fmt.Fprintf(os.Stderr, "%s: %d%%\n", stage, percent)
		},
		OnStageDone: func(stage string, result jobs.Result) {
			if interactive && lastPercent >= 0 {
				fmt.Fprintln(os.Stderr)
			}
			fmt.Fprintf(os.Stderr, "%s: %s\n", stage, result.Status)
		},
	}
}

// resolveProject loads the project for a video path, creating it on first
// use. Flag values override stored settings for the lifetime of the run
// and are persisted for later stage invocations.
func resolveProject(ctx context.Context, store *project.Store, cfg *config.Config, videoPath, target, voice string) (*project.Project, error) {
	videoPath = strings.TrimSpace(videoPath)
	if videoPath == "" {
		return nil, fmt.Errorf("video path is required")
	}
	expanded, err := config.ExpandPath(videoPath)
	if err != nil {
		return nil, err
	}

	proj, err := store.GetProjectByVideo(ctx, expanded)
	if err == nil {
		changed := false
		if target != "" && target != proj.TargetLanguage {
			proj.TargetLanguage = target
			changed = true
		}
		if voice != "" && voice != proj.Voice {
			proj.Voice = voice
			changed = true
		}
		if changed {
			if err := store.UpdateProject(ctx, proj); err != nil {
				return nil, err
			}
		}
		return proj, nil
	}
	if !errors.Is(err, project.ErrNotFound) {
		return nil, err
	}

	if _, err := os.Stat(expanded); err != nil {
		return nil, fmt.Errorf("video file: %w", err)
	}
	if target == "" {
		target = cfg.Languages.Target
	}
	return store.CreateProject(ctx, project.Project{
		Name:           projectName(expanded),
		VideoPath:      expanded,
		SourceLanguage: cfg.Languages.Source,
		TargetLanguage: target,
		Voice:          voice,
	})
}

func projectName(videoPath string) string {
	base := filepath.Base(videoPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
