package export

import (
	"context"

	"dubforge/internal/media/ffprobe"
)

// inspectMedia is the ffprobe function used by the export package. It is a
// package-level variable so tests can override it.
var inspectMedia = ffprobe.Inspect

// SetProbeForTests overrides the media inspector during tests.
func SetProbeForTests(fn func(context.Context, string, string) (ffprobe.Info, error)) func() {
	previous := inspectMedia
	inspectMedia = fn
	return func() {
		inspectMedia = previous
	}
}
