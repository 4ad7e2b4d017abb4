package synth

import "github.com/chewxy/math32"

// FilterMode selects the response tap of a Filter.
type FilterMode uint8

const (
	FilterOff FilterMode = iota
	LowPass
	BandPass
	HighPass
)

func (m FilterMode) String() string {
	switch m {
	case FilterOff:
		return "off"
	case LowPass:
		return "lowpass"
	case BandPass:
		return "bandpass"
	case HighPass:
		return "highpass"
	}
	return "unknown"
}

// Filter is a 2-pole zero-delay-feedback (TPT) state-variable filter. The
// two integrator states are its only memory.
type Filter struct {
	sampleRate float32
	ic1eq      float32
	ic2eq      float32
	g          float32
	r          float32 // 1/Q
	mode       FilterMode
}

func NewFilter(sampleRate float32) Filter {
	return Filter{sampleRate: sampleRate, r: 1, mode: LowPass}
}

// Configure sets cutoff, resonance and response. The cutoff is kept between
// 1e-5 and 0.49 of the sample rate and the damping between 0.02 and 10.
func (f *Filter) Configure(cutoffHz, q float32, mode FilterMode) {
	norm := clamp(cutoffHz/f.sampleRate, 1e-5, 0.49)
	f.g = math32.Tan(math32.Pi * norm)
	f.r = clamp(1/math32.Max(q, 0.05), 0.02, 10)
	f.mode = mode
}

func (f *Filter) Mode() FilterMode { return f.mode }

// Reset clears the integrator state.
func (f *Filter) Reset() {
	f.ic1eq = 0
	f.ic2eq = 0
}

// Process filters one sample.
func (f *Filter) Process(x float32) float32 {
	if f.mode == FilterOff {
		return x
	}
	g, r := f.g, f.r
	h := 1 / (1 + g*(g+r))
	v1 := h * (f.ic1eq + g*(x-f.ic2eq))
	v2 := f.ic2eq + g*v1
	f.ic1eq = 2*v1 - f.ic1eq
	f.ic2eq = 2*v2 - f.ic2eq

	switch f.mode {
	case BandPass:
		return v1
	case HighPass:
		return x - r*v1 - v2
	default:
		return v2
	}
}
