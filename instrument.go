package main

import (
	"sync"
	"sync/atomic"

	"git.disy.net/goetz/polysynth/synth"
)

const (
	queueCapacity      = 1024
	terminatedCapacity = 256
)

// Instrument hands events and parameters from non real-time goroutines to
// the audio callback. Render is the only method the callback calls; it never
// blocks: if producers hold the queue lock, their events wait for the next
// buffer.
type Instrument struct {
	engine *synth.Engine
	params atomic.Pointer[synth.Params]

	mu     sync.Mutex
	queue  [queueCapacity]synth.Event
	queued int

	// owned by the callback
	pending []synth.Event

	terminated eventRing
	dropped    atomic.Uint64
	capacity   atomic.Int32
	stopAll    atomic.Bool
	ids        atomic.Int32
}

func NewInstrument(sampleRate float64, p synth.Params) *Instrument {
	in := &Instrument{
		engine:  synth.NewEngine(float32(sampleRate), p.MaxVoices),
		pending: make([]synth.Event, 0, 2*queueCapacity),
	}
	in.capacity.Store(int32(in.engine.Len()))
	in.SetParams(p)
	return in
}

// SetParams publishes a new parameter snapshot, picked up by the next buffer.
func (in *Instrument) SetParams(p synth.Params) {
	p.Sanitize()
	in.params.Store(&p)
}

func (in *Instrument) Params() synth.Params {
	return *in.params.Load()
}

// NextID returns a fresh voice identifier for a note.
func (in *Instrument) NextID() int32 {
	return in.ids.Add(1) & 0x7fffffff
}

func (in *Instrument) NoteOn(channel, note uint8, velocity float32, id int32) {
	in.enqueue(synth.NoteOnEvent(0, channel, note, velocity, id))
}

func (in *Instrument) NoteOff(channel, note uint8, id int32) {
	in.enqueue(synth.NoteOffEvent(0, channel, note, id))
}

func (in *Instrument) PolyModulate(id int32, target uint32, offset float32) {
	in.enqueue(synth.PolyModulationEvent(0, id, target, offset))
}

// AllNotesOff releases every note on channel.
func (in *Instrument) AllNotesOff(channel uint8) {
	var evs [128]synth.Event
	for n := range evs {
		evs[n] = synth.NoteOffEvent(0, channel, uint8(n), synth.NoID)
	}
	in.enqueue(evs[:]...)
}

// Panic silences every voice at the start of the next buffer.
func (in *Instrument) Panic() {
	in.stopAll.Store(true)
}

func (in *Instrument) enqueue(evs ...synth.Event) {
	in.mu.Lock()
	defer in.mu.Unlock()
	n := copy(in.queue[in.queued:], evs)
	in.queued += n
	if n < len(evs) {
		in.dropped.Add(uint64(len(evs) - n))
	}
}

// Dropped reports how many events were lost to a full queue.
func (in *Instrument) Dropped() uint64 { return in.dropped.Load() }

// VoiceCapacity is the pool size last reported by the engine.
func (in *Instrument) VoiceCapacity() int { return int(in.capacity.Load()) }

// Render fills one buffer. It is called from the audio callback.
func (in *Instrument) Render(left, right []float32) {
	if in.stopAll.Swap(false) {
		in.engine.Reset()
		in.pending = in.pending[:0]
	}
	if in.mu.TryLock() {
		free := cap(in.pending) - len(in.pending)
		n := in.queued
		if n > free {
			in.dropped.Add(uint64(n - free))
			n = free
		}
		in.pending = append(in.pending, in.queue[:n]...)
		in.queued = 0
		in.mu.Unlock()
		sortByTiming(in.pending)
	}

	p := in.params.Load()
	consumed := in.engine.Process(p, in.pending, in, left, right)

	frames := uint32(len(left))
	if len(right) < len(left) {
		frames = uint32(len(right))
	}
	rest := copy(in.pending, in.pending[consumed:])
	in.pending = in.pending[:rest]
	for i := range in.pending {
		if in.pending[i].Timing > frames {
			in.pending[i].Timing -= frames
		} else {
			in.pending[i].Timing = 0
		}
	}
}

// Send implements synth.EventSink.
func (in *Instrument) Send(ev synth.Event) {
	if !in.terminated.push(ev) {
		in.dropped.Add(1)
	}
}

// SetVoiceCapacity implements synth.CapacitySink.
func (in *Instrument) SetVoiceCapacity(n int) {
	in.capacity.Store(int32(n))
}

// DrainTerminated hands every pending VoiceTerminated event to fn.
func (in *Instrument) DrainTerminated(fn func(synth.Event)) {
	for {
		ev, ok := in.terminated.pop()
		if !ok {
			return
		}
		fn(ev)
	}
}

// sortByTiming is a stable insertion sort; pending lists are short and
// almost always already ordered.
func sortByTiming(evs []synth.Event) {
	for i := 1; i < len(evs); i++ {
		for j := i; j > 0 && evs[j].Timing < evs[j-1].Timing; j-- {
			evs[j], evs[j-1] = evs[j-1], evs[j]
		}
	}
}

// eventRing is a single-producer single-consumer queue.
type eventRing struct {
	buf  [terminatedCapacity]synth.Event
	head atomic.Uint64
	tail atomic.Uint64
}

func (r *eventRing) push(ev synth.Event) bool {
	t := r.tail.Load()
	if t-r.head.Load() == terminatedCapacity {
		return false
	}
	r.buf[t%terminatedCapacity] = ev
	r.tail.Store(t + 1)
	return true
}

func (r *eventRing) pop() (synth.Event, bool) {
	h := r.head.Load()
	if h == r.tail.Load() {
		return synth.Event{}, false
	}
	ev := r.buf[h%terminatedCapacity]
	r.head.Store(h + 1)
	return ev, true
}
