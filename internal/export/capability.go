package export

import (
	"context"
	"os/exec"
	"strings"
	"sync"
)

var capabilityCommand = exec.CommandContext

// CapabilityProbe answers whether hardware H.264 encoding is available. The
// toolchain is queried once per probe lifetime; construct it at startup and
// share it so the query never repeats.
type CapabilityProbe struct {
	binary string
	once   sync.Once
	hw     bool
}

// NewCapabilityProbe builds a probe for the given ffmpeg binary.
func NewCapabilityProbe(binary string) *CapabilityProbe {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	return &CapabilityProbe{binary: binary}
}

// NewDisabledProbe returns a probe that always reports no hardware support,
// for configurations that force software encoding.
func NewDisabledProbe() *CapabilityProbe {
	p := &CapabilityProbe{}
	p.once.Do(func() {})
	return p
}

// HardwareH264 reports whether the installed ffmpeg exposes the h264_nvenc
// encoder. Probe failures mean "hardware unavailable"; software encoding is
// always a valid fallback, so no error is surfaced.
func (p *CapabilityProbe) HardwareH264(ctx context.Context) bool {
	p.once.Do(func() {
		cmd := capabilityCommand(ctx, p.binary, "-hide_banner", "-encoders")
		output, err := cmd.CombinedOutput()
		if err != nil {
			return
		}
		p.hw = strings.Contains(string(output), "h264_nvenc")
	})
	return p.hw
}
