package synth

// Stage is the current segment of an Envelope.
type Stage uint8

const (
	Idle Stage = iota
	Attack
	Decay
	Sustain
	Release
)

func (s Stage) String() string {
	switch s {
	case Idle:
		return "idle"
	case Attack:
		return "attack"
	case Decay:
		return "decay"
	case Sustain:
		return "sustain"
	case Release:
		return "release"
	}
	return "unknown"
}

// Envelope is a linear ADSR. Durations are held in samples; a duration of
// one sample or less completes its stage in a single step.
type Envelope struct {
	sampleRate float32
	attack     float32
	decay      float32
	sustain    float32
	release    float32
	level      float32
	stage      Stage
}

func NewEnvelope(sampleRate float32) Envelope {
	return Envelope{sampleRate: sampleRate, sustain: 0.7, release: 0.2}
}

// SetTimes configures stage durations in milliseconds and the sustain level.
func (e *Envelope) SetTimes(attackMs, decayMs, sustain, releaseMs float32) {
	e.attack = msToSamples(attackMs, e.sampleRate)
	e.decay = msToSamples(decayMs, e.sampleRate)
	e.sustain = clamp(sustain, 0, 1)
	e.release = msToSamples(releaseMs, e.sampleRate)
}

func msToSamples(ms, sampleRate float32) float32 {
	if ms < 0 {
		ms = 0
	}
	return ms * sampleRate / 1000
}

// NoteOn restarts the attack from the current level.
func (e *Envelope) NoteOn() { e.stage = Attack }

// NoteOff enters release unless the envelope is already silent.
func (e *Envelope) NoteOff() {
	if e.stage != Idle {
		e.stage = Release
	}
}

// Reset silences the envelope immediately.
func (e *Envelope) Reset() {
	e.stage = Idle
	e.level = 0
}

func (e *Envelope) Level() float32 { return e.level }
func (e *Envelope) Stage() Stage   { return e.stage }

// IsIdle reports whether the envelope produces nothing anymore.
func (e *Envelope) IsIdle() bool { return e.stage == Idle || e.level <= 0 }

// Next advances one sample and returns the new level.
func (e *Envelope) Next() float32 {
	switch e.stage {
	case Idle:
		e.level = 0
	case Attack:
		e.level += step(e.attack)
		if e.level >= 1 {
			e.level = 1
			e.stage = Decay
		}
	case Decay:
		e.level -= step(e.decay)
		if e.level <= e.sustain {
			e.level = e.sustain
			e.stage = Sustain
		}
	case Release:
		e.level -= step(e.release)
		if e.level <= 0 {
			e.level = 0
			e.stage = Idle
		}
	}
	e.level = clamp(e.level, 0, 1)
	return e.level
}

func step(samples float32) float32 {
	if samples <= 1 {
		return 1
	}
	return 1 / samples
}
