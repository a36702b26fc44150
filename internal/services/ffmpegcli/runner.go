package ffmpegcli

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"dubforge/internal/services"
)

var commandContext = exec.CommandContext

// tailLines is how many diagnostic lines are retained for error reporting.
const tailLines = 20

// Runner executes ffmpeg invocations.
type Runner struct {
	binary string
}

// Option configures the runner.
type Option func(*Runner)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(r *Runner) {
		if strings.TrimSpace(binary) != "" {
			r.binary = binary
		}
	}
}

// NewRunner constructs a Runner using defaults.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{binary: "ffmpeg"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Binary returns the resolved ffmpeg command name.
func (r *Runner) Binary() string {
	return r.binary
}

// Run launches ffmpeg with the provided arguments and invokes onLine for
// every diagnostic line ffmpeg writes on stdout or stderr. A non-zero exit
// returns a process error whose message includes the final output tail.
func (r *Runner) Run(ctx context.Context, args []string, onLine func(string)) error {
	cmd := commandContext(ctx, r.binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return services.Wrap(services.ErrProcess, "ffmpeg", "start", r.binary, err)
	}

	tail := newTailBuffer(tailLines)
	var deliverMu sync.Mutex
	deliver := func(line string) {
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			return
		}
		// Both pipes feed the same callback; keep delivery serialized.
		deliverMu.Lock()
		defer deliverMu.Unlock()
		tail.Add(line)
		if onLine != nil {
			onLine(line)
		}
	}

	var group errgroup.Group
	group.Go(func() error { return scanLines(stdout, deliver) })
	group.Go(func() error { return scanLines(stderr, deliver) })
	scanErr := group.Wait()

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		detail := fmt.Sprintf("exit: %v\n%s", err, tail.String())
		return services.Wrap(services.ErrProcess, "ffmpeg", "run", detail, nil)
	}
	if scanErr != nil {
		return fmt.Errorf("read ffmpeg output: %w", scanErr)
	}
	return nil
}

func scanLines(r interface{ Read([]byte) (int, error) }, deliver func(string)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		deliver(scanner.Text())
	}
	return scanner.Err()
}

// tailBuffer keeps the last N lines written to it. Both output pipes feed it,
// so access is guarded.
type tailBuffer struct {
	mu    sync.Mutex
	limit int
	lines []string
}

func newTailBuffer(limit int) *tailBuffer {
	return &tailBuffer{limit: limit}
}

func (t *tailBuffer) Add(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lines = append(t.lines, line)
	if len(t.lines) > t.limit {
		t.lines = t.lines[len(t.lines)-t.limit:]
	}
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.Join(t.lines, "\n")
}
