package timeline

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// FormatTimestamp renders seconds as an SRT timestamp (HH:MM:SS,mmm).
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	ms := int64(seconds*1000 + 0.5)
	hours := ms / 3_600_000
	ms -= hours * 3_600_000
	minutes := ms / 60_000
	ms -= minutes * 60_000
	secs := ms / 1_000
	ms -= secs * 1_000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, ms)
}

// ParseTimestamp parses an SRT timestamp into seconds. A period is accepted
// in place of the standard comma.
func ParseTimestamp(value string) (float64, error) {
	value = strings.ReplaceAll(strings.TrimSpace(value), ".", ",")
	timeParts := strings.Split(value, ",")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(timeParts[1])
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return float64(hours*3600+minutes*60+seconds) + float64(millis)/1000, nil
}

// WriteSRT writes the timeline as a sidecar subtitle file. Blocks are
// renumbered sequentially; each block carries the dub text, falling back to
// the source text when translation never succeeded for that segment.
func (t *Timeline) WriteSRT(path string) error {
	var builder strings.Builder
	for i, seg := range t.segments {
		text := seg.DubText
		if text == "" {
			text = seg.SourceText
		}
		fmt.Fprintf(&builder, "%d\n%s --> %s\n%s\n\n",
			i+1, FormatTimestamp(seg.Start), FormatTimestamp(seg.End), text)
	}
	if err := os.WriteFile(path, []byte(builder.String()), 0o644); err != nil {
		return fmt.Errorf("write srt: %w", err)
	}
	return nil
}

var srtBlockPattern = regexp.MustCompile(
	`(\d+)\s*\n` +
		`(\d{2}:\d{2}:\d{2}[,.]\d{3})\s*-->\s*(\d{2}:\d{2}:\d{2}[,.]\d{3})\s*\n` +
		`([\s\S]*?)(?:\n\n|\z)`)

// ReadSRT parses a subtitle file into a timeline. The block text is loaded as
// source text; re-importing a previously exported dub file therefore treats
// its text as the material to dub.
func ReadSRT(path string) (*Timeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read srt: %w", err)
	}
	content := strings.TrimPrefix(string(data), "\ufeff")

	tl := New()
	for _, match := range srtBlockPattern.FindAllStringSubmatch(content, -1) {
		index, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		start, err := ParseTimestamp(match[2])
		if err != nil {
			return nil, fmt.Errorf("srt block %s: %w", match[1], err)
		}
		end, err := ParseTimestamp(match[3])
		if err != nil {
			return nil, fmt.Errorf("srt block %s: %w", match[1], err)
		}
		if err := tl.Add(Segment{
			Index:      index,
			Start:      start,
			End:        end,
			SourceText: strings.TrimSpace(match[4]),
		}); err != nil {
			return nil, err
		}
	}
	return tl, nil
}
