package synth

import (
	"math"
	"testing"
)

func TestFilterOffPassesThrough(t *testing.T) {
	f := NewFilter(48000)
	f.Configure(500, 4, LowPass)
	for i := 0; i < 100; i++ {
		f.Process(float32(i%7) - 3)
	}
	f.Configure(500, 4, FilterOff)
	for _, x := range []float32{0, 1, -1, 0.333, 12} {
		if got := f.Process(x); got != x {
			t.Errorf("Process(%v) = %v with filter off", x, got)
		}
	}
}

func TestFilterLowPassExtremes(t *testing.T) {
	const sr = 48000
	sine := func(i int) float32 {
		return float32(math.Sin(2 * math.Pi * 1000 * float64(i) / sr))
	}

	closed := NewFilter(sr)
	closed.Configure(0, 0.707, LowPass)
	var peak float64
	for i := 0; i < 20000; i++ {
		y := closed.Process(sine(i))
		if i > 19000 {
			peak = math.Max(peak, math.Abs(float64(y)))
		}
	}
	if peak > 1e-3 {
		t.Errorf("closed low-pass: peak %v, want ~0", peak)
	}

	open := NewFilter(sr)
	open.Configure(sr, 0.707, LowPass)
	var y float32
	for i := 0; i < 2000; i++ {
		y = open.Process(1)
	}
	if math.Abs(float64(y)-1) > 1e-3 {
		t.Errorf("open low-pass DC: got %v, want 1", y)
	}
}

func TestFilterHighPassRejectsDC(t *testing.T) {
	f := NewFilter(48000)
	f.Configure(1000, 0.707, HighPass)
	var y float32
	for i := 0; i < 5000; i++ {
		y = f.Process(1)
	}
	if math.Abs(float64(y)) > 1e-3 {
		t.Errorf("high-pass DC: got %v, want 0", y)
	}
}

func TestFilterBandPassRejectsDC(t *testing.T) {
	f := NewFilter(48000)
	f.Configure(1000, 2, BandPass)
	var y float32
	for i := 0; i < 5000; i++ {
		y = f.Process(1)
	}
	if math.Abs(float64(y)) > 1e-3 {
		t.Errorf("band-pass DC: got %v, want 0", y)
	}
}

func TestFilterConfigureClamps(t *testing.T) {
	f := NewFilter(48000)
	tests := []struct {
		q     float32
		wantR float32
	}{
		{0, 10},
		{-3, 10},
		{0.5, 2},
		{1, 1},
		{1000, 0.02},
	}
	for _, tt := range tests {
		f.Configure(1000, tt.q, LowPass)
		if math.Abs(float64(f.r-tt.wantR)) > 1e-6 {
			t.Errorf("q=%v: r = %v, want %v", tt.q, f.r, tt.wantR)
		}
	}

	f.Configure(1e6, 1, LowPass)
	if want := math.Tan(math.Pi * 0.49); math.Abs(float64(f.g)-want) > 1e-2 {
		t.Errorf("cutoff above Nyquist: g = %v, want %v", f.g, want)
	}
}

func TestFilterReset(t *testing.T) {
	f := NewFilter(48000)
	f.Configure(800, 1, LowPass)
	for i := 0; i < 64; i++ {
		f.Process(1)
	}
	f.Reset()
	if f.ic1eq != 0 || f.ic2eq != 0 {
		t.Errorf("state after reset: %v %v", f.ic1eq, f.ic2eq)
	}
	if got := f.Process(0); got != 0 {
		t.Errorf("silence after reset: got %v", got)
	}
}
