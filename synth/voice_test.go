package synth

import (
	"math"
	"testing"
)

func TestVoiceStart(t *testing.T) {
	const sr = 48000
	v := NewVoice(sr)
	v.Start(2, 69, 0.75, WaveSaw, 1200, sr)

	if !v.Active() || v.Releasing() {
		t.Fatalf("active=%v releasing=%v after start", v.Active(), v.Releasing())
	}
	if v.Channel() != 2 || v.Note() != 69 || v.Velocity() != 0.75 || v.ID() != NoID {
		t.Errorf("unexpected identity: ch %d note %d vel %v id %d", v.Channel(), v.Note(), v.Velocity(), v.ID())
	}
	if math.Abs(float64(v.Frequency())-440) > 1e-3 {
		t.Errorf("frequency %v, want 440", v.Frequency())
	}
	if v.osc1.Phase() != 0 {
		t.Errorf("osc1 phase %v, want 0", v.osc1.Phase())
	}
	if math.Abs(float64(v.osc2.Phase())-math.Pi) > 1e-6 {
		t.Errorf("osc2 phase %v, want π", v.osc2.Phase())
	}
	// 1200 cents is one octave up
	if ratio := v.osc2.Increment() / v.osc1.Increment(); math.Abs(float64(ratio)-2) > 1e-4 {
		t.Errorf("detune ratio %v, want 2", ratio)
	}
	if v.Envelope().Stage() != Attack {
		t.Errorf("envelope stage %v, want attack", v.Envelope().Stage())
	}
	if v.osc1.Wave != Saw || v.osc2.Wave != Saw {
		t.Errorf("oscillator waves %v/%v, want saw", v.osc1.Wave, v.osc2.Wave)
	}
}

func TestVoiceStartDetuneFloor(t *testing.T) {
	const sr = 48000
	v := NewVoice(sr)
	v.Start(0, 0, 1, WaveSine, -100000, sr)
	want := float32(1) / sr * twoPi
	if got := v.osc2.Increment(); math.Abs(float64(got-want)) > 1e-9 {
		t.Errorf("osc2 increment %v, want 1 Hz (%v)", got, want)
	}
}

func TestVoiceStartClearsState(t *testing.T) {
	const sr = 48000
	v := NewVoice(sr)
	v.Start(0, 60, 1, WaveTriangle, 0, sr)
	v.id = 7
	v.gainMod, v.cutoffMod = 0.5, -0.5
	v.filter.Configure(1000, 1, LowPass)
	for i := 0; i < 100; i++ {
		v.Render(WaveTriangle, 0.5, 1)
	}
	v.Release()

	v.Start(0, 64, 1, WaveSquare, 0, sr)
	if v.ID() != NoID || v.GainOffset() != 0 || v.CutoffOffset() != 0 || v.triangle != 0 {
		t.Errorf("stale state: id %d gain %v cutoff %v tri %v", v.ID(), v.GainOffset(), v.CutoffOffset(), v.triangle)
	}
	if v.filter.ic1eq != 0 || v.filter.ic2eq != 0 {
		t.Errorf("filter state leaked into new note")
	}
	if v.Releasing() || v.Envelope().Stage() != Attack {
		t.Errorf("releasing %v stage %v after restart", v.Releasing(), v.Envelope().Stage())
	}
}

func TestVoiceReleaseIdempotent(t *testing.T) {
	const sr = 48000
	v := NewVoice(sr)
	v.Release()
	if v.Releasing() {
		t.Fatalf("inactive voice entered release")
	}

	v.env.SetTimes(0, 0, 0.5, 100)
	v.Start(0, 60, 1, WaveSaw, 0, sr)
	for i := 0; i < 10; i++ {
		v.Render(WaveSaw, 0, 1)
	}
	v.Release()
	v.Render(WaveSaw, 0, 1)
	level := v.Envelope().Level()
	v.Release()
	if !v.Releasing() || v.Envelope().Stage() != Release {
		t.Fatalf("releasing %v stage %v", v.Releasing(), v.Envelope().Stage())
	}
	if v.Envelope().Level() != level {
		t.Errorf("second release changed level %v -> %v", level, v.Envelope().Level())
	}
}

func TestVoiceRenderDeactivatesWhenIdle(t *testing.T) {
	const sr = 48000
	v := NewVoice(sr)
	v.env.SetTimes(0, 0, 1, 0)
	v.Start(0, 60, 1, WaveSaw, 0, sr)
	v.filter.Configure(5000, 1, FilterOff)

	v.Render(WaveSaw, 0, 1)
	if !v.Active() {
		t.Fatalf("voice went inactive during attack")
	}
	v.Release()
	if got := v.Render(WaveSaw, 0, 1); got != 0 {
		t.Errorf("final sample %v, want 0", got)
	}
	if v.Active() || v.Releasing() {
		t.Errorf("active %v releasing %v after envelope end", v.Active(), v.Releasing())
	}
}

func TestVoiceRenderBounded(t *testing.T) {
	const sr = 44100
	for _, w := range []Wave{WaveSine, WaveSaw, WaveSquare, WaveTriangle} {
		v := NewVoice(sr)
		v.env.SetTimes(1, 10, 0.8, 10)
		v.Start(0, 45, 1, w, 7, sr)
		v.filter.Configure(8000, 8, LowPass)
		for i := 0; i < 20000; i++ {
			y := v.Render(w, 0.5, 2)
			if math.IsNaN(float64(y)) || y < -2 || y > 2 {
				t.Fatalf("%v: sample %d = %v", w, i, y)
			}
		}
	}
}

func TestVoiceTriangleIsLeakyIntegral(t *testing.T) {
	const sr = 48000
	v := NewVoice(sr)
	v.Start(0, 69, 1, WaveTriangle, 0, sr)
	k := v.freq / sr
	got := v.integrate(1)
	want := 2 * k * triangleLeak * triangleGain
	if math.Abs(float64(got-want)) > 1e-7 {
		t.Errorf("first step %v, want %v", got, want)
	}
	for i := 0; i < 100000; i++ {
		v.integrate(1)
	}
	if got := v.integrate(1); got > triangleLimit*triangleGain+1e-6 {
		t.Errorf("integrator not clamped: %v", got)
	}
}

func TestVoiceSetFilterTarget(t *testing.T) {
	const sr = 22050
	v := NewVoice(sr)
	cutoff := FloatParam{Value: 1000, Range: CutoffRange}

	v.SetFilterTarget(1, LowPass, sr, 1, &cutoff)
	if want := math.Tan(math.Pi * 0.49); math.Abs(float64(v.filter.g)-want) > 1e-2 {
		t.Errorf("fully opened cutoff: g = %v, want %v", v.filter.g, want)
	}

	v.SetFilterTarget(1, HighPass, sr, -1, &cutoff)
	if want := math.Tan(math.Pi * 20 / sr); math.Abs(float64(v.filter.g)-want) > 1e-5 {
		t.Errorf("fully closed cutoff: g = %v, want %v", v.filter.g, want)
	}
	if v.filter.Mode() != HighPass {
		t.Errorf("mode %v, want highpass", v.filter.Mode())
	}
}

func TestSoftClip(t *testing.T) {
	if softClip(0) != 0 {
		t.Errorf("softClip(0) = %v", softClip(0))
	}
	if got := softClip(3); math.Abs(float64(got)-1) > 1e-6 {
		t.Errorf("softClip(3) = %v, want 1", got)
	}
	if softClip(-0.5) != -softClip(0.5) {
		t.Errorf("softClip is not odd")
	}
}
