package synth

// EventKind tags an Event.
type EventKind uint8

const (
	NoteOn EventKind = iota + 1
	NoteOff
	PolyModulation
	VoiceTerminated
)

func (k EventKind) String() string {
	switch k {
	case NoteOn:
		return "note-on"
	case NoteOff:
		return "note-off"
	case PolyModulation:
		return "poly-modulation"
	case VoiceTerminated:
		return "voice-terminated"
	}
	return "unknown"
}

// Event is a timed input or output event. Timing is the sample offset
// within the block being processed. VoiceID is NoID when the host did not
// attach an identifier.
type Event struct {
	Kind     EventKind
	Timing   uint32
	Channel  uint8
	Note     uint8
	Velocity float32 // NoteOn, 0..1
	VoiceID  int32
	Target   uint32  // PolyModulation: ModGain or ModCutoff
	Offset   float32 // PolyModulation: normalized offset
}

func NoteOnEvent(timing uint32, channel, note uint8, velocity float32, id int32) Event {
	return Event{Kind: NoteOn, Timing: timing, Channel: channel, Note: note, Velocity: velocity, VoiceID: id}
}

func NoteOffEvent(timing uint32, channel, note uint8, id int32) Event {
	return Event{Kind: NoteOff, Timing: timing, Channel: channel, Note: note, VoiceID: id}
}

func PolyModulationEvent(timing uint32, id int32, target uint32, offset float32) Event {
	return Event{Kind: PolyModulation, Timing: timing, VoiceID: id, Target: target, Offset: offset}
}

// EventSink receives events produced by the engine. Send is called from the
// render path and must not block or allocate.
type EventSink interface {
	Send(Event)
}

// CapacitySink is optionally implemented by an EventSink that wants to know
// when the pool size changes.
type CapacitySink interface {
	SetVoiceCapacity(n int)
}
