package edgetts

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"dubforge/internal/services"
)

// Client synthesizes speech by invoking the edge-tts binary.
type Client struct {
	binary        string
	commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// Option configures the client.
type Option func(*Client)

// WithBinary overrides the default edge-tts binary name.
func WithBinary(binary string) Option {
	return func(c *Client) {
		if strings.TrimSpace(binary) != "" {
			c.binary = binary
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
	c := &Client{binary: "edge-tts"}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Synthesize renders text with the given voice into outputPath. The text is
// passed through a temp file so shell quoting never mangles it.
func (c *Client) Synthesize(ctx context.Context, text, voice, outputPath string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return services.Wrap(services.ErrValidation, "synthesize", "request", "empty text", nil)
	}
	voice = strings.TrimSpace(voice)
	if voice == "" {
		return services.Wrap(services.ErrValidation, "synthesize", "request", "empty voice", nil)
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("ensure synthesis output dir: %w", err)
	}

	textFile, err := os.CreateTemp(filepath.Dir(outputPath), "tts-text-*.txt")
	if err != nil {
		return fmt.Errorf("create synthesis text file: %w", err)
	}
	textPath := textFile.Name()
	defer os.Remove(textPath)
	if _, err := textFile.WriteString(text); err != nil {
		textFile.Close()
		return fmt.Errorf("write synthesis text file: %w", err)
	}
	if err := textFile.Close(); err != nil {
		return fmt.Errorf("close synthesis text file: %w", err)
	}

	args := []string{"--voice", voice, "--file", textPath, "--write-media", outputPath}
	output, err := c.run(ctx, c.binary, args...)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		detail := strings.TrimSpace(string(output))
		if isRateLimitOutput(detail) {
			return services.Wrap(services.ErrRateLimited, "synthesize", "request", detail, err)
		}
		return services.Wrap(services.ErrTransient, "synthesize", "request", detail, err)
	}

	if info, statErr := os.Stat(outputPath); statErr != nil || info.Size() == 0 {
		return services.Wrap(services.ErrTransient, "synthesize", "result", "no audio written", statErr)
	}
	return nil
}

func (c *Client) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if c.commandRunner != nil {
		return c.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	return cmd.CombinedOutput()
}

func isRateLimitOutput(output string) bool {
	lowered := strings.ToLower(output)
	return strings.Contains(lowered, "503") ||
		strings.Contains(lowered, "429") ||
		strings.Contains(lowered, "rate") ||
		strings.Contains(lowered, "throttl")
}
