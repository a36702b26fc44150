// Package timeline holds the caption data model: an ordered list of
// time-stamped segments carrying source text, dub text, per-segment tempo and
// offset overrides, and the synthesized audio reference each stage fills in.
package timeline
