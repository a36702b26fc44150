// Package ffmpegcli runs the ffmpeg command line and streams its diagnostic
// output line by line. Callers supply the full argument list; this package
// owns process lifecycle, line delivery, and the captured output tail that
// makes non-zero exits actionable.
package ffmpegcli
