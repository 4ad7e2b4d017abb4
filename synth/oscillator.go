package synth

import "github.com/chewxy/math32"

// Waveform selects what an Oscillator generates.
type Waveform uint8

const (
	Sine Waveform = iota
	Saw
	Square
)

func (w Waveform) String() string {
	switch w {
	case Sine:
		return "sine"
	case Saw:
		return "saw"
	case Square:
		return "square"
	}
	return "unknown"
}

// Oscillator is a phase accumulator with PolyBLEP corrected saw and square
// outputs. Phase is in radians and always kept in [0, 2π).
type Oscillator struct {
	sampleRate float32
	phase      float32
	incr       float32
	Wave       Waveform
}

func NewOscillator(sampleRate float32, wave Waveform) Oscillator {
	return Oscillator{sampleRate: sampleRate, Wave: wave}
}

// SetFrequency recomputes the per-sample phase increment. A non-positive
// frequency stalls or reverses the oscillator.
func (o *Oscillator) SetFrequency(f float32) {
	o.incr = (f / o.sampleRate) * twoPi
}

// SetPhase moves the oscillator to phase radians, wrapped into [0, 2π).
func (o *Oscillator) SetPhase(phase float32) {
	o.phase = wrapPhase(phase)
}

func (o *Oscillator) Phase() float32     { return o.phase }
func (o *Oscillator) Increment() float32 { return o.incr }

// Next renders one sample of the selected waveform.
func (o *Oscillator) Next() float32 {
	switch o.Wave {
	case Saw:
		return o.NextSaw()
	case Square:
		return o.NextSquare()
	default:
		return o.NextSine()
	}
}

func (o *Oscillator) NextSine() float32 {
	y := math32.Sin(o.phase)
	o.advance()
	return flushDenormal(y)
}

func (o *Oscillator) NextSaw() float32 {
	t, dt := o.normalized()
	y := 2*t - 1
	y -= polyBLEP(t, dt)
	o.advance()
	return flushDenormal(y)
}

func (o *Oscillator) NextSquare() float32 {
	t, dt := o.normalized()
	var y float32 = -1
	if t < 0.5 {
		y = 1
	}
	y += polyBLEP(t, dt)
	t2 := t + 0.5
	if t2 >= 1 {
		t2--
	}
	y -= polyBLEP(t2, dt)
	o.advance()
	return flushDenormal(y)
}

// normalized returns phase and increment as fractions of one period.
func (o *Oscillator) normalized() (t, dt float32) {
	return o.phase / twoPi, o.incr / twoPi
}

func (o *Oscillator) advance() {
	o.phase = wrapPhase(o.phase + o.incr)
}

func wrapPhase(p float32) float32 {
	if p >= twoPi {
		p -= twoPi
		if p >= twoPi {
			p = math32.Mod(p, twoPi)
		}
	} else if p < 0 {
		p = math32.Mod(p, twoPi) + twoPi
	}
	// Mod can land exactly on the upper bound after float rounding.
	if p >= twoPi || p < 0 {
		p = 0
	}
	return p
}

// polyBLEP is the two-sample polynomial residual of a bandlimited step,
// given normalized phase t and normalized increment dt.
func polyBLEP(t, dt float32) float32 {
	switch {
	case t < dt:
		t /= dt
		return t + t - t*t - 1
	case t > 1-dt:
		t = (t - 1) / dt
		return t*t + t + t + 1
	}
	return 0
}
