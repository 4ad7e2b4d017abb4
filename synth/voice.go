package synth

import "github.com/chewxy/math32"

const (
	triangleLeak  = 0.9995
	triangleLimit = 1.2
	triangleGain  = 0.8

	minCutoffHz = 20
)

// NoID marks a note that carries no host voice identifier.
const NoID int32 = -1

// Voice is the signal chain of one sounding note.
type Voice struct {
	active    bool
	releasing bool
	channel   uint8
	note      uint8
	id        int32
	freq      float32
	velocity  float32
	age       uint64

	// normalized poly modulation offsets
	gainMod   float32
	cutoffMod float32

	osc1     Oscillator
	osc2     Oscillator
	env      Envelope
	filter   Filter
	triangle float32
}

func NewVoice(sampleRate float32) Voice {
	return Voice{
		id:     NoID,
		osc1:   NewOscillator(sampleRate, Saw),
		osc2:   NewOscillator(sampleRate, Saw),
		env:    NewEnvelope(sampleRate),
		filter: NewFilter(sampleRate),
	}
}

func (v *Voice) Active() bool          { return v.active }
func (v *Voice) Releasing() bool       { return v.releasing }
func (v *Voice) Channel() uint8        { return v.channel }
func (v *Voice) Note() uint8           { return v.note }
func (v *Voice) ID() int32             { return v.id }
func (v *Voice) Frequency() float32    { return v.freq }
func (v *Voice) Velocity() float32     { return v.velocity }
func (v *Voice) Age() uint64           { return v.age }
func (v *Voice) Envelope() *Envelope   { return &v.env }
func (v *Voice) GainOffset() float32   { return v.gainMod }
func (v *Voice) CutoffOffset() float32 { return v.cutoffMod }

// Start reinitializes the voice for a new note. The second oscillator is
// detuned by detuneCents and starts half a period ahead.
func (v *Voice) Start(channel, note uint8, velocity float32, wave Wave, detuneCents, sampleRate float32) {
	v.active = true
	v.releasing = false
	v.channel = channel
	v.note = note
	v.id = NoID
	v.velocity = velocity
	v.freq = NoteToFrequency(note)

	w := wave.oscillator()
	v.osc1 = NewOscillator(sampleRate, w)
	v.osc2 = NewOscillator(sampleRate, w)
	v.osc1.SetFrequency(v.freq)
	v.osc2.SetPhase(math32.Pi)
	offset := v.freq * (math32.Pow(2, detuneCents/1200) - 1)
	v.osc2.SetFrequency(math32.Max(v.freq+offset, 1))

	v.filter.sampleRate = sampleRate
	v.filter.Reset()
	v.env.sampleRate = sampleRate
	v.env.NoteOn()

	v.gainMod = 0
	v.cutoffMod = 0
	v.triangle = 0
}

// Release moves the envelope to its release stage once per note.
func (v *Voice) Release() {
	if v.active && !v.releasing {
		v.releasing = true
		v.env.NoteOff()
	}
}

// SetFilterTarget resolves the voice's cutoff from cutoff plus the scaled
// poly offset and reconfigures the filter.
func (v *Voice) SetFilterTarget(q float32, mode FilterMode, sampleRate, cutoffOffset float32, cutoff ModulatedParam) {
	hz := clamp(cutoff.PreviewModulated(cutoffOffset), minCutoffHz, sampleRate*0.49)
	v.filter.Configure(hz, q, mode)
}

// Render produces one sample. It is the only place a voice goes inactive:
// once the envelope is idle the voice turns itself off and returns 0.
func (v *Voice) Render(wave Wave, oscMix, gain float32) float32 {
	e := v.env.Next()
	if v.env.IsIdle() {
		v.active = false
		v.releasing = false
		return 0
	}

	s1 := v.osc1.Next()
	s2 := v.osc2.Next()
	x := s1*(1-oscMix) + s2*oscMix
	if wave == WaveTriangle {
		x = v.integrate(x)
	}

	y := v.filter.Process(x * e * v.velocity)
	return flushDenormal(softClip(y * gain))
}

// integrate turns a bandlimited square into a triangle with a leaky
// integrator so DC does not accumulate.
func (v *Voice) integrate(square float32) float32 {
	k := clamp(v.freq/v.osc1.sampleRate, 0.0001, 0.45)
	v.triangle += 2 * k * square
	v.triangle *= triangleLeak
	return clamp(v.triangle, -triangleLimit, triangleLimit) * triangleGain
}
