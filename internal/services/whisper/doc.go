// Package whisper shells out to the Whisper CLI to transcribe a video's
// audio track into time-stamped text segments.
package whisper
