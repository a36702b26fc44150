// Package services defines the error taxonomy shared by the external
// collaborators (transcription, translation, speech synthesis, and the
// ffmpeg toolchain) and helpers for classifying their failures.
package services
