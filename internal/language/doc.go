// Package language provides unified language code normalization and mapping.
//
// All language-related conversions (ISO 639-1, ISO 639-2, display names,
// default synthesis voices) are consolidated here so the recognizer,
// translator, and synthesizer stages agree on what a language code means.
package language
