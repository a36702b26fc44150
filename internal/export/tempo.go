package export

import "dubforge/internal/timeline"

// atempo is only valid over [0.5, 2.0]; multipliers outside that range are
// decomposed into a chain of in-range factors whose product equals the
// target. 3.0 becomes [2.0, 1.5]; 0.25 becomes [0.5, 0.5].
const (
	atempoMin = 0.5
	atempoMax = 2.0
)

// TempoChain decomposes a playback-rate multiplier into atempo-safe factors.
// A target of exactly 1.0 needs no filter and yields an empty chain. The
// input is clamped to the supported segment tempo range first.
func TempoChain(target float64) []float64 {
	target = timeline.ClampTempo(target)
	if target == 1.0 {
		return nil
	}

	var factors []float64
	remaining := target
	for remaining > atempoMax {
		factors = append(factors, atempoMax)
		remaining /= atempoMax
	}
	for remaining < atempoMin {
		factors = append(factors, atempoMin)
		remaining /= atempoMin
	}
	return append(factors, remaining)
}
