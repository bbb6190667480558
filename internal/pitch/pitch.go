// Package pitch estimates a per-frame fundamental frequency with a voicing
// confidence. The rest of the analyzer depends only on the Observation
// contract, not on how the estimates are produced.
package pitch

// Observation is one analysis frame's pitch estimate. FreqHz is 0 for
// unvoiced frames; Confidence is in [0,1].
type Observation struct {
	FreqHz     float64
	Confidence float64
}

// Voiced reports whether the frame carried a usable pitch estimate.
func (o Observation) Voiced() bool {
	return o.FreqHz > 0
}

// Range bounds the fundamental frequencies the tracker searches, tuned per
// instrument register.
type Range struct {
	MinHz float64
	MaxHz float64
}

// VoiceRange covers C2..C6, the original app's default for horns and voice.
func VoiceRange() Range {
	return Range{MinHz: 65.41, MaxHz: 1046.50}
}

// GuitarRange starts at A1 so the low E string (E2 = 82 Hz) sits well inside
// the searched band.
func GuitarRange() Range {
	return Range{MinHz: 55.0, MaxHz: 1046.50}
}
