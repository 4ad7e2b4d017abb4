package synth

import (
	"fmt"
	"strings"

	"github.com/chewxy/math32"
)

// MaxPolyphony is the largest pool the engine will ever hold.
const MaxPolyphony = 64

// Wave is the voice-level waveform selection. Triangle is synthesized by
// integrating the bandlimited square.
type Wave uint8

const (
	WaveSine Wave = iota
	WaveSaw
	WaveSquare
	WaveTriangle
)

func (w Wave) String() string {
	switch w {
	case WaveSine:
		return "sine"
	case WaveSaw:
		return "saw"
	case WaveSquare:
		return "square"
	case WaveTriangle:
		return "triangle"
	}
	return "unknown"
}

// oscillator maps the voice wave onto the waveform both oscillators run.
func (w Wave) oscillator() Waveform {
	switch w {
	case WaveSine:
		return Sine
	case WaveSaw:
		return Saw
	default:
		return Square
	}
}

func ParseWave(s string) (Wave, error) {
	switch strings.ToLower(s) {
	case "sine":
		return WaveSine, nil
	case "saw":
		return WaveSaw, nil
	case "square":
		return WaveSquare, nil
	case "triangle", "tri":
		return WaveTriangle, nil
	}
	return 0, fmt.Errorf("unknown wave %q", s)
}

func ParseFilterMode(s string) (FilterMode, error) {
	switch strings.ToLower(s) {
	case "off":
		return FilterOff, nil
	case "lowpass", "lp":
		return LowPass, nil
	case "bandpass", "bp":
		return BandPass, nil
	case "highpass", "hp":
		return HighPass, nil
	}
	return 0, fmt.Errorf("unknown filter mode %q", s)
}

// FloatRange maps plain parameter values to [0, 1]. A Factor of 0 or 1 is
// linear; other factors skew the curve, values below 1 giving more
// resolution to the low end.
type FloatRange struct {
	Min    float32
	Max    float32
	Factor float32
}

func (r FloatRange) Clamp(v float32) float32 {
	return clamp(v, r.Min, r.Max)
}

func (r FloatRange) Normalize(v float32) float32 {
	if r.Max <= r.Min {
		return 0
	}
	n := (r.Clamp(v) - r.Min) / (r.Max - r.Min)
	if r.skewed() {
		n = math32.Pow(n, r.Factor)
	}
	return n
}

func (r FloatRange) Unnormalize(n float32) float32 {
	n = clamp(n, 0, 1)
	if r.skewed() {
		n = math32.Pow(n, 1/r.Factor)
	}
	return n*(r.Max-r.Min) + r.Min
}

func (r FloatRange) skewed() bool {
	return r.Factor > 0 && r.Factor != 1
}

// ModulatedParam resolves a plain value after adding a normalized offset.
type ModulatedParam interface {
	PreviewModulated(normalizedOffset float32) float32
}

// FloatParam is a resolved plain value together with its range.
type FloatParam struct {
	Value float32
	Range FloatRange
}

// PreviewModulated returns the plain value the parameter would have with
// normalizedOffset added in the normalized domain.
func (p FloatParam) PreviewModulated(normalizedOffset float32) float32 {
	if normalizedOffset == 0 {
		return p.Range.Clamp(p.Value)
	}
	return p.Range.Unnormalize(p.Range.Normalize(p.Value) + normalizedOffset)
}

// Poly modulation targets carried by PolyModulation events.
const (
	ModGain   uint32 = 1
	ModCutoff uint32 = 2
)

var (
	GainRange      = FloatRange{Min: 0, Max: 2}
	MixRange       = FloatRange{Min: 0, Max: 1}
	DetuneRange    = FloatRange{Min: 0, Max: 50}
	AttackRange    = FloatRange{Min: 0, Max: 2000, Factor: 2.5}
	DecayRange     = FloatRange{Min: 1, Max: 4000, Factor: 2.5}
	SustainRange   = FloatRange{Min: 0, Max: 1}
	ReleaseRange   = FloatRange{Min: 1, Max: 8000, Factor: 2.5}
	CutoffRange    = FloatRange{Min: 20, Max: 20000, Factor: 0.2}
	ResonanceRange = FloatRange{Min: 0, Max: 1}
	DepthRange     = FloatRange{Min: -1, Max: 1}
)

// Params is one resolved snapshot of every timbral parameter. The engine
// reads it and never writes to it.
type Params struct {
	Gain       FloatParam
	MaxVoices  int
	Wave       Wave
	OscMix     float32
	Detune     float32 // cents
	Attack     float32 // ms
	Decay      float32 // ms
	Sustain    float32
	Release    float32 // ms
	FilterMode FilterMode
	Cutoff     FloatParam // Hz
	Resonance  float32
	ModCutoff  float32
	ModGain    float32
}

func DefaultParams() Params {
	return Params{
		Gain:       FloatParam{Value: 0.8, Range: GainRange},
		MaxVoices:  32,
		Wave:       WaveSaw,
		OscMix:     0.5,
		Detune:     6,
		Attack:     5,
		Decay:      80,
		Sustain:    0.7,
		Release:    150,
		FilterMode: LowPass,
		Cutoff:     FloatParam{Value: 1600, Range: CutoffRange},
		Resonance:  0.2,
	}
}

// Q maps resonance in [0, 1] to a filter quality factor in [1, 8].
func (p *Params) Q() float32 {
	return 1 + 7*p.Resonance
}

// Sanitize clamps every field into its declared range.
func (p *Params) Sanitize() {
	p.Gain.Range = GainRange
	p.Gain.Value = GainRange.Clamp(p.Gain.Value)
	p.MaxVoices = clampVoices(p.MaxVoices)
	if p.Wave > WaveTriangle {
		p.Wave = WaveSaw
	}
	p.OscMix = MixRange.Clamp(p.OscMix)
	p.Detune = DetuneRange.Clamp(p.Detune)
	p.Attack = AttackRange.Clamp(p.Attack)
	p.Decay = DecayRange.Clamp(p.Decay)
	p.Sustain = SustainRange.Clamp(p.Sustain)
	p.Release = ReleaseRange.Clamp(p.Release)
	if p.FilterMode > HighPass {
		p.FilterMode = LowPass
	}
	p.Cutoff.Range = CutoffRange
	p.Cutoff.Value = CutoffRange.Clamp(p.Cutoff.Value)
	p.Resonance = ResonanceRange.Clamp(p.Resonance)
	p.ModCutoff = DepthRange.Clamp(p.ModCutoff)
	p.ModGain = DepthRange.Clamp(p.ModGain)
}

func clampVoices(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxPolyphony {
		return MaxPolyphony
	}
	return n
}
