// Package export renders the dubbed output: it writes the subtitle sidecar,
// collapses all per-segment speech clips into one intermediate track
// (pre-mix), and muxes that track with the attenuated original audio and the
// source video into the final MP4, preferring hardware H.264 encoding when
// the local ffmpeg supports it.
package export
