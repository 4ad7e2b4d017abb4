package synth

import "github.com/chewxy/math32"

// Engine owns the voice pool and renders blocks of stereo audio while
// applying sample-accurate events. It is not safe for concurrent use; the
// host calls it from its audio callback only.
type Engine struct {
	sampleRate float32
	voices     []Voice
	blocks     uint64 // age clock, one tick per Process call
}

// NewEngine returns an engine with maxVoices silent voices. The backing
// array is sized for MaxPolyphony so later growth does not allocate.
func NewEngine(sampleRate float32, maxVoices int) *Engine {
	e := &Engine{
		sampleRate: sampleRate,
		voices:     make([]Voice, 0, MaxPolyphony),
	}
	e.Resize(maxVoices, nil)
	return e
}

func (e *Engine) SampleRate() float32 { return e.sampleRate }

// Len returns the pool capacity.
func (e *Engine) Len() int { return len(e.voices) }

// Voice returns slot i for inspection.
func (e *Engine) Voice(i int) *Voice { return &e.voices[i] }

func (e *Engine) ActiveCount() int {
	n := 0
	for i := range e.voices {
		if e.voices[i].active {
			n++
		}
	}
	return n
}

// Initialize switches to a new sample rate and rebuilds every voice.
func (e *Engine) Initialize(sampleRate float32) {
	e.sampleRate = sampleRate
	e.Reset()
}

// Reset silences everything and restarts the age clock.
func (e *Engine) Reset() {
	e.blocks = 0
	for i := range e.voices {
		e.voices[i] = NewVoice(e.sampleRate)
	}
}

// Resize grows the pool with fresh voices or truncates it from the end.
// Truncated voices stop immediately; each one still sounding is reported to
// sink as terminated at timing 0.
func (e *Engine) Resize(n int, sink EventSink) {
	n = clampVoices(n)
	cur := len(e.voices)
	switch {
	case n > cur:
		e.voices = e.voices[:n]
		for i := cur; i < n; i++ {
			e.voices[i] = NewVoice(e.sampleRate)
		}
	case n < cur:
		for i := n; i < cur; i++ {
			if e.voices[i].active && sink != nil {
				sink.Send(terminated(0, &e.voices[i]))
			}
		}
		e.voices = e.voices[:n]
	default:
		return
	}
	if cs, ok := sink.(CapacitySink); ok {
		cs.SetVoiceCapacity(n)
	}
}

// LoudnessScale is the output gain applied to the voice sum for a pool of
// poolSize voices: 1/sqrt(poolSize), never above 1.
func LoudnessScale(poolSize int) float32 {
	if poolSize < 1 {
		poolSize = 1
	}
	return math32.Min(1, 1/math32.Sqrt(float32(poolSize)))
}

// Process renders min(len(left), len(right)) frames. events must be ordered
// by Timing; an event is applied right before the frame at its Timing is
// rendered, late events at the current frame. It returns how many events
// were consumed; events timed past the block are left for the caller.
// Terminations are sent to sink, which may be nil.
func (e *Engine) Process(p *Params, events []Event, sink EventSink, left, right []float32) int {
	e.blocks++
	if p.MaxVoices != len(e.voices) {
		e.Resize(p.MaxVoices, sink)
	}
	for i := range e.voices {
		e.voices[i].env.SetTimes(p.Attack, p.Decay, p.Sustain, p.Release)
	}

	frames := len(left)
	if len(right) < frames {
		frames = len(right)
	}
	q := p.Q()
	scale := LoudnessScale(len(e.voices))
	next := 0

	for i := 0; i < frames; i++ {
		for next < len(events) && events[next].Timing <= uint32(i) {
			e.apply(&events[next], p, sink)
			next++
		}

		var sum float32
		for j := range e.voices {
			v := &e.voices[j]
			if !v.active {
				continue
			}
			v.SetFilterTarget(q, p.FilterMode, e.sampleRate, v.cutoffMod*p.ModCutoff, &p.Cutoff)
			gain := p.Gain.PreviewModulated(v.gainMod * p.ModGain)
			sum += v.Render(p.Wave, p.OscMix, gain)
			if !v.active && sink != nil {
				sink.Send(terminated(uint32(i), v))
			}
		}

		// both channels carry the same mono sum
		out := sum * scale
		left[i] = out
		right[i] = out
	}
	return next
}

func (e *Engine) apply(ev *Event, p *Params, sink EventSink) {
	switch ev.Kind {
	case NoteOn:
		if ev.Velocity <= 0 {
			e.release(ev.Channel, ev.Note, ev.VoiceID)
			return
		}
		v := &e.voices[e.allocate()]
		if v.active && sink != nil {
			sink.Send(terminated(ev.Timing, v))
		}
		v.Start(ev.Channel, ev.Note, ev.Velocity, p.Wave, p.Detune, e.sampleRate)
		v.id = ev.VoiceID
		v.age = e.blocks
	case NoteOff:
		e.release(ev.Channel, ev.Note, ev.VoiceID)
	case PolyModulation:
		if ev.VoiceID == NoID {
			return
		}
		for i := range e.voices {
			v := &e.voices[i]
			if !v.active || v.id != ev.VoiceID {
				continue
			}
			switch ev.Target {
			case ModGain:
				v.gainMod = ev.Offset
			case ModCutoff:
				v.cutoffMod = ev.Offset
			}
		}
	}
}

// release releases every active voice on channel/note. With an id only the
// voice carrying that id matches.
func (e *Engine) release(channel, note uint8, id int32) {
	for i := range e.voices {
		v := &e.voices[i]
		if !v.active || v.channel != channel || v.note != note {
			continue
		}
		if id != NoID && v.id != id {
			continue
		}
		v.Release()
	}
}

// allocate picks a free slot, or steals the oldest voice (lowest index on
// ties).
func (e *Engine) allocate() int {
	for i := range e.voices {
		if !e.voices[i].active {
			return i
		}
	}
	best := 0
	for i := 1; i < len(e.voices); i++ {
		if e.voices[i].age < e.voices[best].age {
			best = i
		}
	}
	return best
}

func terminated(timing uint32, v *Voice) Event {
	return Event{
		Kind:    VoiceTerminated,
		Timing:  timing,
		Channel: v.channel,
		Note:    v.note,
		VoiceID: v.id,
	}
}
