package timeline_test

import (
	"os"
	"path/filepath"
	"testing"

	"dubforge/internal/timeline"
)

func TestFormatTimestamp(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "00:00:00,000"},
		{1.5, "00:00:01,500"},
		{65.25, "00:01:05,250"},
		{3661.001, "01:01:01,001"},
		{-2, "00:00:00,000"},
	}
	for _, tc := range cases {
		if got := timeline.FormatTimestamp(tc.in); got != tc.want {
			t.Errorf("FormatTimestamp(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestWriteSRTUsesDubTextWithSourceFallback(t *testing.T) {
	tl := timeline.New()
	mustAdd(t, tl, timeline.Segment{Index: 1, Start: 0, End: 2, SourceText: "你好", DubText: "សួស្តី"})
	mustAdd(t, tl, timeline.Segment{Index: 2, Start: 5, End: 7, SourceText: "再见"})

	path := filepath.Join(t.TempDir(), "out.srt")
	if err := tl.WriteSRT(path); err != nil {
		t.Fatalf("WriteSRT: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	content := string(data)

	want := "1\n00:00:00,000 --> 00:00:02,000\nសួស្តី\n\n2\n00:00:05,000 --> 00:00:07,000\n再见\n\n"
	if content != want {
		t.Fatalf("unexpected srt content:\n%q\nwant:\n%q", content, want)
	}
}

func TestReadSRTRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.srt")
	content := "\ufeff1\n00:00:00,500 --> 00:00:02,000\nfirst line\n\n2\n00:00:05.000 --> 00:00:07,250\nsecond\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	tl, err := timeline.ReadSRT(path)
	if err != nil {
		t.Fatalf("ReadSRT: %v", err)
	}
	if tl.Len() != 2 {
		t.Fatalf("expected 2 segments, got %d", tl.Len())
	}
	seg, ok := tl.Segment(1)
	if !ok || seg.Start != 0.5 || seg.End != 2.0 || seg.SourceText != "first line" {
		t.Fatalf("unexpected first segment: %+v", seg)
	}
	seg, ok = tl.Segment(2)
	if !ok || seg.Start != 5.0 || seg.End != 7.25 {
		t.Fatalf("unexpected second segment: %+v", seg)
	}
}

func TestParseTimestampRejectsGarbage(t *testing.T) {
	for _, bad := range []string{"", "1:2", "aa:bb:cc,ddd", "00:00:00"} {
		if _, err := timeline.ParseTimestamp(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func mustAdd(t *testing.T, tl *timeline.Timeline, seg timeline.Segment) {
	t.Helper()
	if err := tl.Add(seg); err != nil {
		t.Fatalf("add segment %d: %v", seg.Index, err)
	}
}
