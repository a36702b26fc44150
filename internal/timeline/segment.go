package timeline

import (
	"fmt"

	"github.com/samber/lo"
)

// Tempo multiplier bounds. Values outside the range are clamped on write.
const (
	MinTempo = 0.25
	MaxTempo = 4.0
)

// Segment is one caption/dub unit. Index is its stable identity across all
// stages; it stays unique within a timeline but is not required to remain
// contiguous after manual edits.
type Segment struct {
	Index      int
	Start      float64 // seconds
	End        float64 // seconds, always > Start
	SourceText string
	DubText    string
	Tempo      float64 // playback-rate multiplier
	Offset     float64 // seconds added to Start before mixing; may be negative
	AudioPath  string  // synthesized clip on disk; empty until synthesis succeeds
	Voice      string  // synthesis voice override; empty means job default
}

// EffectiveStart is the mix position after the offset adjustment, floored at
// zero so a negative offset can never schedule audio before the video starts.
func (s Segment) EffectiveStart() float64 {
	if start := s.Start + s.Offset; start > 0 {
		return start
	}
	return 0
}

// Duration returns the caption's length in seconds.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// HasAudio reports whether a synthesized clip has been published for the segment.
func (s Segment) HasAudio() bool {
	return s.AudioPath != ""
}

// ClampTempo forces a tempo multiplier into the supported range. Zero (the
// unset value) maps to 1.0.
func ClampTempo(tempo float64) float64 {
	switch {
	case tempo == 0:
		return 1.0
	case tempo < MinTempo:
		return MinTempo
	case tempo > MaxTempo:
		return MaxTempo
	}
	return tempo
}

// Timeline is the ordered collection of segments for one loaded video.
// Insertion order is playback order; index uniqueness is the only structural
// invariant.
type Timeline struct {
	segments []Segment
	byIndex  map[int]int
}

// New returns an empty timeline.
func New() *Timeline {
	return &Timeline{byIndex: make(map[int]int)}
}

// FromSegments builds a timeline from a segment list, validating each entry.
func FromSegments(segments []Segment) (*Timeline, error) {
	tl := New()
	for _, seg := range segments {
		if err := tl.Add(seg); err != nil {
			return nil, err
		}
	}
	return tl, nil
}

// Add appends a segment, enforcing index uniqueness and timing sanity.
func (t *Timeline) Add(seg Segment) error {
	if seg.Index <= 0 {
		return fmt.Errorf("segment index must be positive, got %d", seg.Index)
	}
	if seg.End <= seg.Start {
		return fmt.Errorf("segment %d: end %.3f must be after start %.3f", seg.Index, seg.End, seg.Start)
	}
	if _, exists := t.byIndex[seg.Index]; exists {
		return fmt.Errorf("segment index %d already present", seg.Index)
	}
	seg.Tempo = ClampTempo(seg.Tempo)
	t.byIndex[seg.Index] = len(t.segments)
	t.segments = append(t.segments, seg)
	return nil
}

// Len returns the number of segments.
func (t *Timeline) Len() int {
	return len(t.segments)
}

// Segments returns a copy of the segments in playback order.
func (t *Timeline) Segments() []Segment {
	out := make([]Segment, len(t.segments))
	copy(out, t.segments)
	return out
}

// Segment returns the segment with the given index.
func (t *Timeline) Segment(index int) (Segment, bool) {
	pos, ok := t.byIndex[index]
	if !ok {
		return Segment{}, false
	}
	return t.segments[pos], true
}

// SetDubText records a successful translation for the segment.
func (t *Timeline) SetDubText(index int, text string) bool {
	pos, ok := t.byIndex[index]
	if !ok {
		return false
	}
	t.segments[pos].DubText = text
	return true
}

// SetAudioPath records a successful synthesis for the segment.
func (t *Timeline) SetAudioPath(index int, path string) bool {
	pos, ok := t.byIndex[index]
	if !ok {
		return false
	}
	t.segments[pos].AudioPath = path
	return true
}

// Update replaces a segment's editable fields while keeping its identity. The
// caller is responsible for invalidating synthesized audio when it edits
// timing the audio was keyed to.
func (t *Timeline) Update(seg Segment) error {
	pos, ok := t.byIndex[seg.Index]
	if !ok {
		return fmt.Errorf("segment index %d not present", seg.Index)
	}
	if seg.End <= seg.Start {
		return fmt.Errorf("segment %d: end %.3f must be after start %.3f", seg.Index, seg.End, seg.Start)
	}
	seg.Tempo = ClampTempo(seg.Tempo)
	t.segments[pos] = seg
	return nil
}

// WithAudio returns the segments that have a synthesized clip recorded, in
// playback order.
func (t *Timeline) WithAudio() []Segment {
	return lo.Filter(t.Segments(), func(seg Segment, _ int) bool {
		return seg.HasAudio()
	})
}

// DubbedCount returns how many segments carry translated text.
func (t *Timeline) DubbedCount() int {
	return lo.CountBy(t.segments, func(seg Segment) bool {
		return seg.DubText != ""
	})
}
