package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"dubforge/internal/config"
	"dubforge/internal/project"
)

func newTestStore(t *testing.T) *project.Store {
	t.Helper()
	store, err := project.OpenPath(filepath.Join(t.TempDir(), "dubforge.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestResolveProjectCreatesOnFirstUse(t *testing.T) {
	store := newTestStore(t)
	cfg := config.Default()

	video := filepath.Join(t.TempDir(), "movie.mp4")
	if err := os.WriteFile(video, []byte("x"), 0o644); err != nil {
		t.Fatalf("write video: %v", err)
	}

	proj, err := resolveProject(context.Background(), store, &cfg, video, "", "")
	if err != nil {
		t.Fatalf("resolveProject: %v", err)
	}
	if proj.Name != "movie" {
		t.Fatalf("expected project name movie, got %q", proj.Name)
	}
	if proj.TargetLanguage != cfg.Languages.Target {
		t.Fatalf("expected configured target %q, got %q", cfg.Languages.Target, proj.TargetLanguage)
	}

	again, err := resolveProject(context.Background(), store, &cfg, video, "", "")
	if err != nil {
		t.Fatalf("resolveProject second call: %v", err)
	}
	if again.ID != proj.ID {
		t.Fatalf("expected same project, got ids %d and %d", proj.ID, again.ID)
	}
}

func TestResolveProjectPersistsFlagOverrides(t *testing.T) {
	store := newTestStore(t)
	cfg := config.Default()

	video := filepath.Join(t.TempDir(), "movie.mp4")
	if err := os.WriteFile(video, []byte("x"), 0o644); err != nil {
		t.Fatalf("write video: %v", err)
	}

	if _, err := resolveProject(context.Background(), store, &cfg, video, "", ""); err != nil {
		t.Fatalf("resolveProject: %v", err)
	}

	proj, err := resolveProject(context.Background(), store, &cfg, video, "fr", "fr-FR-DeniseNeural")
	if err != nil {
		t.Fatalf("resolveProject with overrides: %v", err)
	}
	if proj.TargetLanguage != "fr" || proj.Voice != "fr-FR-DeniseNeural" {
		t.Fatalf("overrides not applied: %+v", proj)
	}

	stored, err := store.GetProject(context.Background(), proj.ID)
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	if stored.TargetLanguage != "fr" || stored.Voice != "fr-FR-DeniseNeural" {
		t.Fatalf("overrides not persisted: %+v", stored)
	}
}

func TestResolveProjectRejectsMissingVideo(t *testing.T) {
	store := newTestStore(t)
	cfg := config.Default()

	if _, err := resolveProject(context.Background(), store, &cfg, filepath.Join(t.TempDir(), "absent.mp4"), "", ""); err == nil {
		t.Fatal("expected error for missing video file")
	}
	if _, err := resolveProject(context.Background(), store, &cfg, "  ", "", ""); err == nil {
		t.Fatal("expected error for blank video path")
	}
}
