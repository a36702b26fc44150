package project_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"dubforge/internal/project"
	"dubforge/internal/timeline"
)

func openStore(t *testing.T) *project.Store {
	t.Helper()
	store, err := project.OpenPath(filepath.Join(t.TempDir(), "dubforge.db"))
	if err != nil {
		t.Fatalf("OpenPath failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestProjectLifecycle(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	created, err := store.CreateProject(ctx, project.Project{
		Name:           "episode-one",
		VideoPath:      "/videos/episode-one.mp4",
		SourceLanguage: "zh",
		TargetLanguage: "km",
	})
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected assigned ID")
	}

	loaded, err := store.GetProject(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetProject failed: %v", err)
	}
	if loaded.VideoPath != created.VideoPath || loaded.TargetLanguage != "km" {
		t.Fatalf("loaded project differs: %+v", loaded)
	}

	byVideo, err := store.GetProjectByVideo(ctx, "/videos/episode-one.mp4")
	if err != nil || byVideo.ID != created.ID {
		t.Fatalf("GetProjectByVideo: %v %+v", err, byVideo)
	}

	loaded.Voice = "km-KH-PisethNeural"
	loaded.OutputPath = "/out/episode-one-km.mp4"
	if err := store.UpdateProject(ctx, loaded); err != nil {
		t.Fatalf("UpdateProject failed: %v", err)
	}
	reloaded, err := store.GetProject(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Voice != "km-KH-PisethNeural" || reloaded.OutputPath != "/out/episode-one-km.mp4" {
		t.Fatalf("update lost: %+v", reloaded)
	}

	if err := store.DeleteProject(ctx, created.ID); err != nil {
		t.Fatalf("DeleteProject failed: %v", err)
	}
	if _, err := store.GetProject(ctx, created.ID); !errors.Is(err, project.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateProjectRejectsDuplicateVideo(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	spec := project.Project{VideoPath: "/videos/a.mp4", TargetLanguage: "km"}
	if _, err := store.CreateProject(ctx, spec); err != nil {
		t.Fatal(err)
	}
	if _, err := store.CreateProject(ctx, spec); err == nil {
		t.Fatal("expected unique constraint violation")
	}
}

func TestSaveAndLoadTimeline(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	p, err := store.CreateProject(ctx, project.Project{VideoPath: "/videos/a.mp4", TargetLanguage: "km"})
	if err != nil {
		t.Fatal(err)
	}

	tl := timeline.New()
	segments := []timeline.Segment{
		{Index: 3, Start: 10, End: 12, SourceText: "third", Tempo: 1.5},
		{Index: 1, Start: 0, End: 2, SourceText: "first", DubText: "dub", AudioPath: "/clips/tts_0001.mp3"},
		{Index: 2, Start: 5, End: 7, SourceText: "second", Offset: -1, Voice: "km-KH-PisethNeural"},
	}
	for _, seg := range segments {
		if err := tl.Add(seg); err != nil {
			t.Fatal(err)
		}
	}

	if err := store.SaveTimeline(ctx, p.ID, tl); err != nil {
		t.Fatalf("SaveTimeline failed: %v", err)
	}

	restored, err := store.LoadTimeline(ctx, p.ID)
	if err != nil {
		t.Fatalf("LoadTimeline failed: %v", err)
	}
	if restored.Len() != 3 {
		t.Fatalf("restored %d segments", restored.Len())
	}

	// Playback order, not index order, survives the round trip.
	got := restored.Segments()
	if got[0].Index != 3 || got[1].Index != 1 || got[2].Index != 2 {
		t.Fatalf("order lost: %d %d %d", got[0].Index, got[1].Index, got[2].Index)
	}
	if got[0].Tempo != 1.5 {
		t.Fatalf("tempo lost: %v", got[0].Tempo)
	}
	if got[1].DubText != "dub" || got[1].AudioPath != "/clips/tts_0001.mp3" {
		t.Fatalf("dub fields lost: %+v", got[1])
	}
	if got[2].Offset != -1 || got[2].Voice != "km-KH-PisethNeural" {
		t.Fatalf("overrides lost: %+v", got[2])
	}

	// Saving again replaces rather than appends.
	if ok := restored.SetDubText(2, "now dubbed"); !ok {
		t.Fatal("SetDubText failed")
	}
	if err := store.SaveTimeline(ctx, p.ID, restored); err != nil {
		t.Fatal(err)
	}
	again, err := store.LoadTimeline(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if again.Len() != 3 {
		t.Fatalf("segments duplicated: %d", again.Len())
	}
	seg, _ := again.Segment(2)
	if seg.DubText != "now dubbed" {
		t.Fatalf("mutation lost: %+v", seg)
	}
}

func TestJobHistory(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	p, err := store.CreateProject(ctx, project.Project{VideoPath: "/videos/a.mp4", TargetLanguage: "km"})
	if err != nil {
		t.Fatal(err)
	}

	started := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	records := []project.JobRecord{
		{ProjectID: p.ID, JobID: "job-1", Stage: "transcribe", Status: "completed", StartedAt: started, FinishedAt: started.Add(time.Minute)},
		{ProjectID: p.ID, JobID: "job-2", Stage: "translate", Status: "failed", ErrorMessage: "network down", StartedAt: started.Add(2 * time.Minute), FinishedAt: started.Add(3 * time.Minute)},
		{ProjectID: p.ID, JobID: "job-3", Stage: "translate", Status: "completed", StartedAt: started.Add(4 * time.Minute), FinishedAt: started.Add(5 * time.Minute)},
	}
	for _, rec := range records {
		if err := store.RecordJob(ctx, rec); err != nil {
			t.Fatalf("RecordJob failed: %v", err)
		}
	}

	history, err := store.JobHistory(ctx, p.ID)
	if err != nil {
		t.Fatalf("JobHistory failed: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("history has %d records", len(history))
	}
	if history[1].ErrorMessage != "network down" {
		t.Fatalf("error message lost: %+v", history[1])
	}
	if !history[0].StartedAt.Equal(started) {
		t.Fatalf("timestamp mangled: %v", history[0].StartedAt)
	}

	last, err := store.LastJob(ctx, p.ID, "translate")
	if err != nil {
		t.Fatalf("LastJob failed: %v", err)
	}
	if last.JobID != "job-3" || last.Status != "completed" {
		t.Fatalf("wrong last job: %+v", last)
	}

	if _, err := store.LastJob(ctx, p.ID, "export"); !errors.Is(err, project.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// Deleting the project cascades to history.
	if err := store.DeleteProject(ctx, p.ID); err != nil {
		t.Fatal(err)
	}
	history, err = store.JobHistory(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 0 {
		t.Fatalf("history survived project deletion: %v", history)
	}
}

func TestOpenPathRejectsSecondInstance(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dubforge.db")

	first, err := project.OpenPath(path)
	if err != nil {
		t.Fatal(err)
	}
	defer first.Close()

	if _, err := project.OpenPath(path); err == nil {
		t.Fatal("expected lock contention error")
	}
}
