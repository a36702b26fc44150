package whisper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"dubforge/internal/services"
)

// DefaultModel is used when the caller does not pick a model size.
const DefaultModel = "small"

// Segment is one transcribed unit as reported by the model.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Client invokes the whisper command line. The model call is a single opaque
// blocking step; there is no intermediate feedback until the full segment
// list is available.
type Client struct {
	binary        string
	model         string
	commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// Option configures the client.
type Option func(*Client)

// WithBinary overrides the default whisper binary name.
func WithBinary(binary string) Option {
	return func(c *Client) {
		if strings.TrimSpace(binary) != "" {
			c.binary = binary
		}
	}
}

// WithModel selects the model size (tiny, base, small, medium, large).
func WithModel(model string) Option {
	return func(c *Client) {
		if strings.TrimSpace(model) != "" {
			c.model = model
		}
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func WithCommandRunner(runner func(ctx context.Context, name string, args ...string) ([]byte, error)) Option {
	return func(c *Client) {
		c.commandRunner = runner
	}
}

// NewClient constructs a Client using defaults.
func NewClient(opts ...Option) *Client {
	c := &Client{binary: "whisper", model: DefaultModel}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the configured model size.
func (c *Client) Model() string {
	return c.model
}

// Transcribe runs the model over mediaPath and returns the full segment list.
// Failures are model errors; they are fatal and never retried.
func (c *Client) Transcribe(ctx context.Context, mediaPath, language string) ([]Segment, error) {
	mediaPath = strings.TrimSpace(mediaPath)
	if mediaPath == "" {
		return nil, services.Wrap(services.ErrValidation, "transcribe", "input", "empty media path", nil)
	}

	outputDir, err := os.MkdirTemp("", "dubforge-whisper-*")
	if err != nil {
		return nil, fmt.Errorf("create transcription output dir: %w", err)
	}
	defer os.RemoveAll(outputDir)

	args := []string{
		mediaPath,
		"--model", c.model,
		"--output_format", "json",
		"--output_dir", outputDir,
		"--verbose", "False",
	}
	if language = strings.TrimSpace(language); language != "" {
		args = append(args, "--language", language)
	}

	if output, err := c.run(ctx, c.binary, args...); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		detail := strings.TrimSpace(string(output))
		return nil, services.Wrap(services.ErrModel, "transcribe", "inference", detail, err)
	}

	resultPath := filepath.Join(outputDir, transcriptBasename(mediaPath)+".json")
	data, err := os.ReadFile(resultPath)
	if err != nil {
		return nil, services.Wrap(services.ErrModel, "transcribe", "result", "transcript file missing", err)
	}
	return parseTranscript(data)
}

func (c *Client) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if c.commandRunner != nil {
		return c.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	return cmd.CombinedOutput()
}

func transcriptBasename(mediaPath string) string {
	base := filepath.Base(mediaPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func parseTranscript(data []byte) ([]Segment, error) {
	var payload struct {
		Segments []Segment `json:"segments"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, services.Wrap(services.ErrModel, "transcribe", "parse", "invalid transcript JSON", err)
	}
	if len(payload.Segments) == 0 {
		return nil, services.Wrap(services.ErrModel, "transcribe", "parse", "transcript contains no segments", errors.New("empty segment list"))
	}
	segments := make([]Segment, 0, len(payload.Segments))
	for _, seg := range payload.Segments {
		seg.Text = strings.TrimSpace(seg.Text)
		segments = append(segments, seg)
	}
	return segments, nil
}
