package jobs

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a job.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusRunning    Status = "running"
	StatusCancelling Status = "cancelling"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

// Terminal reports whether the status is an end state.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// Task is the unit of work a job executes. Run must treat the reporter's
// Checkpoint results as cancellation requests and return promptly when one
// fires; blocking external calls already dispatched may finish their current
// atomic step first.
type Task interface {
	Name() string
	Run(ctx context.Context, rep *Reporter) error
}

// Result is the terminal outcome of a job.
type Result struct {
	Status Status
	Err    error
}

// Events receives job lifecycle notifications. Callbacks are invoked from the
// job's goroutine; nil members are skipped. OnDone fires exactly once for
// every started job regardless of outcome.
type Events struct {
	OnProgress func(percent int)
	OnDone     func(Result)
}

// Job is one asynchronous execution of a Task.
type Job struct {
	id   string
	task Task

	mu            sync.Mutex
	status        Status
	cancelFn      context.CancelFunc
	cancelPending bool
	lastProgress  int

	events Events
	done   chan struct{}
	result Result
}

// Start launches the task on its own goroutine and returns immediately.
func Start(ctx context.Context, task Task, events Events) *Job {
	runCtx, cancel := context.WithCancel(ctx)
	j := &Job{
		id:       uuid.NewString(),
		task:     task,
		status:   StatusRunning,
		cancelFn: cancel,
		events:   events,
		done:     make(chan struct{}),
	}
	go j.run(runCtx)
	return j
}

// ID returns the job's unique identifier.
func (j *Job) ID() string {
	return j.id
}

// Status returns the job's current lifecycle state.
func (j *Job) Status() Status {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

// Cancel requests that the job stop at its next checkpoint. It is idempotent
// and safe to call at any time after Start.
func (j *Job) Cancel() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.cancelPending || j.status.Terminal() {
		return
	}
	j.cancelPending = true
	if j.status == StatusRunning {
		j.status = StatusCancelling
	}
	j.cancelFn()
}

// Done returns a channel closed after the terminal outcome is delivered.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Wait blocks until the job reaches a terminal state and returns its result.
func (j *Job) Wait() Result {
	<-j.done
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result
}

// Progress returns the most recent progress value.
func (j *Job) Progress() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.lastProgress
}

func (j *Job) run(ctx context.Context) {
	rep := &Reporter{job: j, ctx: ctx}
	err := j.task.Run(ctx, rep)

	j.mu.Lock()
	cancelled := j.cancelPending
	j.mu.Unlock()

	result := Result{Status: StatusCompleted}
	switch {
	case cancelled || errors.Is(err, context.Canceled):
		// A cancelled job reports cancellation even when the interrupted
		// checkpoint surfaced as an error.
		result = Result{Status: StatusCancelled, Err: context.Canceled}
	case err != nil:
		result = Result{Status: StatusFailed, Err: err}
	default:
		rep.Progress(100)
	}

	j.finish(result)
}

func (j *Job) finish(result Result) {
	j.mu.Lock()
	j.status = result.Status
	j.result = result
	j.cancelFn()
	j.mu.Unlock()

	if j.events.OnDone != nil {
		j.events.OnDone(result)
	}
	close(j.done)
}

func (j *Job) reportProgress(percent int) {
	j.mu.Lock()
	// Monotonic non-decreasing clamp; progress never runs backwards even if
	// a parser briefly regresses.
	if percent < j.lastProgress {
		percent = j.lastProgress
	}
	if percent > 100 {
		percent = 100
	}
	changed := percent != j.lastProgress
	j.lastProgress = percent
	j.mu.Unlock()

	if changed && j.events.OnProgress != nil {
		j.events.OnProgress(percent)
	}
}

// Reporter is the task-facing side of the job protocol.
type Reporter struct {
	job *Job
	ctx context.Context
}

// Progress publishes a 0-100 progress value. Values are clamped so the
// observed sequence is always non-decreasing.
func (r *Reporter) Progress(percent int) {
	r.job.reportProgress(percent)
}

// Checkpoint is where a task observes cancellation. It returns the context
// error when a cancellation request is pending and nil otherwise.
func (r *Reporter) Checkpoint() error {
	return r.ctx.Err()
}
