package export

import (
	"regexp"
	"strconv"
)

// ffmpeg reports encode position on its diagnostic stream as
// "time=HH:MM:SS.cc". Lines without the marker carry no progress signal and
// are ignored.
var elapsedPattern = regexp.MustCompile(`time=(\d+):(\d+):(\d+(?:\.\d+)?)`)

// ParseElapsed extracts the processed-media position in seconds from one
// diagnostic line. The second return value is false for non-matching lines.
func ParseElapsed(line string) (float64, bool) {
	match := elapsedPattern.FindStringSubmatch(line)
	if match == nil {
		return 0, false
	}
	hours, errH := strconv.Atoi(match[1])
	minutes, errM := strconv.Atoi(match[2])
	seconds, errS := strconv.ParseFloat(match[3], 64)
	if errH != nil || errM != nil || errS != nil {
		return 0, false
	}
	return float64(hours*3600+minutes*60) + seconds, true
}

// Phase maps one sub-phase's completion fraction onto a slice of the job's
// overall 0-100 progression, so pre-mix and encode report a single smooth
// sequence to the caller.
type Phase struct {
	Base int
	Span int
}

// Map converts a 0-1 fraction into an overall percent. The fraction is
// clamped and the result is held just under the phase ceiling; the caller
// reports the ceiling itself only when the phase finishes.
func (p Phase) Map(fraction float64) int {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	return p.Base + int(fraction*float64(p.Span)*0.99)
}

// Done returns the percent at the end of the phase.
func (p Phase) Done() int {
	return p.Base + p.Span
}
