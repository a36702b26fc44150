package jobs_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"dubforge/internal/jobs"
)

type funcTask struct {
	name string
	run  func(ctx context.Context, rep *jobs.Reporter) error
}

func (t funcTask) Name() string { return t.name }

func (t funcTask) Run(ctx context.Context, rep *jobs.Reporter) error { return t.run(ctx, rep) }

func TestJobSuccessEndsAtHundred(t *testing.T) {
	var mu sync.Mutex
	var seen []int
	job := jobs.Start(context.Background(), funcTask{
		name: "demo",
		run: func(_ context.Context, rep *jobs.Reporter) error {
			rep.Progress(10)
			rep.Progress(55)
			return nil
		},
	}, jobs.Events{OnProgress: func(p int) {
		mu.Lock()
		seen = append(seen, p)
		mu.Unlock()
	}})

	result := job.Wait()
	if result.Status != jobs.StatusCompleted {
		t.Fatalf("expected completed, got %v (%v)", result.Status, result.Err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seen) == 0 || seen[len(seen)-1] != 100 {
		t.Fatalf("expected progress to end at 100, got %v", seen)
	}
	for i := 1; i < len(seen); i++ {
		if seen[i] < seen[i-1] {
			t.Fatalf("progress not monotonic: %v", seen)
		}
	}
}

func TestProgressClampIsMonotonic(t *testing.T) {
	var mu sync.Mutex
	var seen []int
	job := jobs.Start(context.Background(), funcTask{
		name: "regressing",
		run: func(_ context.Context, rep *jobs.Reporter) error {
			rep.Progress(40)
			rep.Progress(20) // parser regression must not be observable
			rep.Progress(60)
			rep.Progress(250)
			return nil
		},
	}, jobs.Events{OnProgress: func(p int) {
		mu.Lock()
		seen = append(seen, p)
		mu.Unlock()
	}})
	job.Wait()

	mu.Lock()
	defer mu.Unlock()
	for i := 1; i < len(seen); i++ {
		if seen[i] < seen[i-1] {
			t.Fatalf("progress not monotonic: %v", seen)
		}
	}
	for _, p := range seen {
		if p > 100 {
			t.Fatalf("progress exceeded 100: %v", seen)
		}
	}
}

func TestCancelBeforeFirstCheckpoint(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	calls := 0
	job := jobs.Start(context.Background(), funcTask{
		name: "cancellable",
		run: func(_ context.Context, rep *jobs.Reporter) error {
			close(started)
			<-release
			if err := rep.Checkpoint(); err != nil {
				return err
			}
			calls++
			return nil
		},
	}, jobs.Events{})

	<-started
	job.Cancel()
	job.Cancel() // idempotent
	close(release)

	result := job.Wait()
	if result.Status != jobs.StatusCancelled {
		t.Fatalf("expected cancelled, got %v", result.Status)
	}
	if calls != 0 {
		t.Fatalf("expected zero external calls after cancellation, got %d", calls)
	}
}

func TestCancelledJobNeverReportsFailure(t *testing.T) {
	started := make(chan struct{})
	job := jobs.Start(context.Background(), funcTask{
		name: "failing-after-cancel",
		run: func(ctx context.Context, _ *jobs.Reporter) error {
			close(started)
			<-ctx.Done()
			// The interrupted step happens to look like an ordinary failure.
			return errors.New("stream closed unexpectedly")
		},
	}, jobs.Events{})

	<-started
	job.Cancel()
	result := job.Wait()
	if result.Status != jobs.StatusCancelled {
		t.Fatalf("expected cancelled, got %v (%v)", result.Status, result.Err)
	}
}

func TestFailureCarriesTaskError(t *testing.T) {
	boom := errors.New("boom")
	job := jobs.Start(context.Background(), funcTask{
		name: "failing",
		run:  func(context.Context, *jobs.Reporter) error { return boom },
	}, jobs.Events{})

	result := job.Wait()
	if result.Status != jobs.StatusFailed {
		t.Fatalf("expected failed, got %v", result.Status)
	}
	if !errors.Is(result.Err, boom) {
		t.Fatalf("expected task error, got %v", result.Err)
	}
}

func TestDoneFiresExactlyOncePerOutcome(t *testing.T) {
	for _, tc := range []struct {
		name string
		run  func(ctx context.Context, rep *jobs.Reporter) error
	}{
		{"success", func(context.Context, *jobs.Reporter) error { return nil }},
		{"failure", func(context.Context, *jobs.Reporter) error { return errors.New("nope") }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var mu sync.Mutex
			doneCount := 0
			job := jobs.Start(context.Background(), funcTask{name: tc.name, run: tc.run}, jobs.Events{
				OnDone: func(jobs.Result) {
					mu.Lock()
					doneCount++
					mu.Unlock()
				},
			})
			job.Wait()
			// Give a misbehaving double-fire a chance to show up.
			time.Sleep(10 * time.Millisecond)
			mu.Lock()
			defer mu.Unlock()
			if doneCount != 1 {
				t.Fatalf("expected one done signal, got %d", doneCount)
			}
		})
	}
}

func TestStatusTransitions(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	job := jobs.Start(context.Background(), funcTask{
		name: "states",
		run: func(ctx context.Context, _ *jobs.Reporter) error {
			close(started)
			<-release
			return ctx.Err()
		},
	}, jobs.Events{})

	<-started
	if got := job.Status(); got != jobs.StatusRunning {
		t.Fatalf("expected running, got %v", got)
	}
	job.Cancel()
	if got := job.Status(); got != jobs.StatusCancelling && got != jobs.StatusCancelled {
		t.Fatalf("expected cancelling, got %v", got)
	}
	close(release)
	result := job.Wait()
	if !result.Status.Terminal() {
		t.Fatalf("expected terminal status, got %v", result.Status)
	}
}
