// Package synth is the real-time voice core of polysynth: bandlimited
// oscillators, a zero-delay-feedback state-variable filter, an ADSR envelope,
// the per-voice signal chain and the voice pool that interleaves timed events
// with per-sample rendering.
//
// Nothing reachable from Engine.Process allocates, locks or blocks.
package synth

import "github.com/chewxy/math32"

const (
	twoPi = 2 * math32.Pi

	// denormalThreshold is the magnitude below which samples are forced to 0.
	denormalThreshold = 1e-24
)

// softClip is a rational tanh approximation used to tame transient overs.
func softClip(x float32) float32 {
	x2 := x * x
	return x * (27 + x2) / (27 + 9*x2)
}

func flushDenormal(x float32) float32 {
	if math32.Abs(x) < denormalThreshold {
		return 0
	}
	return x
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// NoteToFrequency converts a MIDI note number to Hz with A4 (69) at 440 Hz.
func NoteToFrequency(note uint8) float32 {
	return 440 * math32.Pow(2, (float32(note)-69)/12)
}
