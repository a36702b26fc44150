package ffprobe

import (
	"context"
	"fmt"
	"os/exec"
	"testing"
)

func TestInspectParsesFormatAndStreams(t *testing.T) {
	payload := `{
		"streams": [
			{"codec_type": "video", "width": 1920, "height": 1080, "r_frame_rate": "30000/1001"},
			{"codec_type": "audio"}
		],
		"format": {"duration": "15.480000"}
	}`
	original := commandContext
	commandContext = func(ctx context.Context, _ string, _ ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "sh", "-c", fmt.Sprintf("cat <<'EOF'\n%s\nEOF", payload))
	}
	t.Cleanup(func() { commandContext = original })

	info, err := Inspect(context.Background(), "", "/videos/input.mp4")
	if err != nil {
		t.Fatalf("Inspect returned error: %v", err)
	}
	if info.DurationSeconds != 15.48 {
		t.Fatalf("unexpected duration: %v", info.DurationSeconds)
	}
	if info.Width != 1920 || info.Height != 1080 {
		t.Fatalf("unexpected dimensions: %dx%d", info.Width, info.Height)
	}
	if info.FPS < 29.96 || info.FPS > 29.98 {
		t.Fatalf("unexpected fps: %v", info.FPS)
	}
	if !info.HasAudio {
		t.Fatal("expected audio stream to be detected")
	}
}

func TestInspectRejectsEmptyPath(t *testing.T) {
	if _, err := Inspect(context.Background(), "ffprobe", "  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestParseFrameRate(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"25/1", 25},
		{"24", 24},
		{"0/0", 0},
		{"", 0},
	}
	for _, tc := range cases {
		if got := parseFrameRate(tc.in); got != tc.want {
			t.Errorf("parseFrameRate(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
