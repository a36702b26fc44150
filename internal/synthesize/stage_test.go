package synthesize

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"dubforge/internal/jobs"
	"dubforge/internal/logging"
	"dubforge/internal/services"
	"dubforge/internal/timeline"
)

type call struct {
	text  string
	voice string
	path  string
}

type fakeSynth struct {
	started atomic.Int32
	calls   []call
	failFor string // dub text that always fails
	err     error
	block   bool
}

func (f *fakeSynth) Synthesize(ctx context.Context, text, voice, outputPath string) error {
	f.started.Add(1)
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	f.calls = append(f.calls, call{text: text, voice: voice, path: outputPath})
	if text == f.failFor {
		return f.err
	}
	return os.WriteFile(outputPath, []byte("mp3"), 0o644)
}

func dubbedTimeline(t *testing.T) *timeline.Timeline {
	t.Helper()
	tl := timeline.New()
	segments := []timeline.Segment{
		{Index: 1, Start: 0, End: 2, SourceText: "one", DubText: "muoy"},
		{Index: 2, Start: 5, End: 7, SourceText: "two", DubText: "pir", Voice: "km-KH-PisethNeural"},
		{Index: 3, Start: 10, End: 12, SourceText: "three"},
		{Index: 4, Start: 15, End: 17, SourceText: "four", DubText: "buon"},
	}
	for _, seg := range segments {
		if err := tl.Add(seg); err != nil {
			t.Fatal(err)
		}
	}
	return tl
}

func waitFor(t *testing.T, job *jobs.Job) jobs.Result {
	t.Helper()
	select {
	case <-job.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("job did not finish")
	}
	return job.Wait()
}

func TestRunWritesClipsAndFallsBackToDefaultVoice(t *testing.T) {
	dir := t.TempDir()
	tl := dubbedTimeline(t)
	synth := &fakeSynth{}

	var ready []int
	stage := NewStage(synth, logging.NewNop(), tl, dir, "km-KH-SreymomNeural",
		Events{OnClipReady: func(index int, _ string) { ready = append(ready, index) }},
		WithSpacing(0))

	var spacings []time.Duration
	stage.sleep = func(_ context.Context, d time.Duration) error {
		spacings = append(spacings, d)
		return nil
	}

	result := waitFor(t, jobs.Start(context.Background(), stage, jobs.Events{}))
	if result.Status != jobs.StatusCompleted {
		t.Fatalf("status = %s, err = %v", result.Status, result.Err)
	}

	if len(synth.calls) != 3 {
		t.Fatalf("expected 3 synthesis calls, got %+v", synth.calls)
	}
	if synth.calls[0].voice != "km-KH-SreymomNeural" {
		t.Fatalf("default voice not applied: %+v", synth.calls[0])
	}
	if synth.calls[1].voice != "km-KH-PisethNeural" {
		t.Fatalf("per-segment voice override lost: %+v", synth.calls[1])
	}
	if want := filepath.Join(dir, "tts_0004.mp3"); synth.calls[2].path != want {
		t.Fatalf("clip path = %q, want %q", synth.calls[2].path, want)
	}

	if len(ready) != 3 || ready[0] != 1 || ready[1] != 2 || ready[2] != 4 {
		t.Fatalf("clip notifications = %v", ready)
	}
	if got := len(tl.WithAudio()); got != 3 {
		t.Fatalf("timeline tracks %d clips", got)
	}
	seg, _ := tl.Segment(3)
	if seg.AudioPath != "" {
		t.Fatalf("untranslated segment gained audio: %q", seg.AudioPath)
	}
	// A pause after each synthesized segment except the final one, and
	// skipped segments pause nothing.
	if len(spacings) != 2 {
		t.Fatalf("spacing sleeps = %v", spacings)
	}
}

func TestRunFailsJobWhenRetriesExhaust(t *testing.T) {
	dir := t.TempDir()
	tl := dubbedTimeline(t)
	transient := services.Wrap(services.ErrRateLimited, "edgetts", "synthesize", "503", nil)
	synth := &fakeSynth{failFor: "pir", err: transient}

	var delays []time.Duration
	policy := jobs.BackoffPolicy(5, time.Second).WithSleep(func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	})
	stage := NewStage(synth, logging.NewNop(), tl, dir, "km-KH-SreymomNeural",
		Events{}, WithPolicy(policy), WithSpacing(0))
	stage.sleep = func(context.Context, time.Duration) error { return nil }

	result := waitFor(t, jobs.Start(context.Background(), stage, jobs.Events{}))
	if result.Status != jobs.StatusFailed {
		t.Fatalf("exhausted synthesis retries must fail the job: %s", result.Status)
	}
	if !errors.Is(result.Err, services.ErrTransient) {
		t.Fatalf("err = %v", result.Err)
	}

	// Four doubling waits between five attempts.
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second}
	if len(delays) != len(want) {
		t.Fatalf("delays = %v", delays)
	}
	for i, d := range want {
		if delays[i] != d {
			t.Fatalf("delays = %v, want %v", delays, want)
		}
	}

	// Segment 4 must never be attempted after the fatal error.
	for _, c := range synth.calls {
		if c.text == "buon" {
			t.Fatalf("work continued past the fatal segment: %+v", synth.calls)
		}
	}
	seg, _ := tl.Segment(1)
	if seg.AudioPath == "" {
		t.Fatal("earlier segment's clip association lost")
	}
}

func TestRunSkipsEmptyDubTextWithoutCalls(t *testing.T) {
	dir := t.TempDir()
	tl := timeline.New()
	if err := tl.Add(timeline.Segment{Index: 1, Start: 0, End: 2, SourceText: "one"}); err != nil {
		t.Fatal(err)
	}
	synth := &fakeSynth{}
	stage := NewStage(synth, logging.NewNop(), tl, dir, "km-KH-SreymomNeural", Events{}, WithSpacing(0))

	result := waitFor(t, jobs.Start(context.Background(), stage, jobs.Events{}))
	if result.Status != jobs.StatusCompleted {
		t.Fatalf("status = %s, err = %v", result.Status, result.Err)
	}
	if synth.started.Load() != 0 {
		t.Fatalf("empty dub text must not reach the service, got %d calls", synth.started.Load())
	}
}

func TestCancelDuringSynthesis(t *testing.T) {
	dir := t.TempDir()
	tl := dubbedTimeline(t)
	synth := &fakeSynth{block: true}
	stage := NewStage(synth, logging.NewNop(), tl, dir, "km-KH-SreymomNeural", Events{}, WithSpacing(0))

	job := jobs.Start(context.Background(), stage, jobs.Events{})
	deadline := time.Now().Add(5 * time.Second)
	for synth.started.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("synthesizer never called")
		}
		time.Sleep(time.Millisecond)
	}
	job.Cancel()

	result := waitFor(t, job)
	if result.Status != jobs.StatusCancelled {
		t.Fatalf("status = %s, err = %v", result.Status, result.Err)
	}
	if !errors.Is(result.Err, context.Canceled) {
		t.Fatalf("err = %v", result.Err)
	}
}

func TestRunValidatesInputs(t *testing.T) {
	synth := &fakeSynth{}
	stage := NewStage(synth, logging.NewNop(), nil, t.TempDir(), "v", Events{})
	result := waitFor(t, jobs.Start(context.Background(), stage, jobs.Events{}))
	if result.Status != jobs.StatusFailed || !errors.Is(result.Err, services.ErrValidation) {
		t.Fatalf("status = %s, err = %v", result.Status, result.Err)
	}

	stage = NewStage(synth, logging.NewNop(), timeline.New(), "  ", "v", Events{})
	result = waitFor(t, jobs.Start(context.Background(), stage, jobs.Events{}))
	if result.Status != jobs.StatusFailed || !errors.Is(result.Err, services.ErrValidation) {
		t.Fatalf("status = %s, err = %v", result.Status, result.Err)
	}
}
