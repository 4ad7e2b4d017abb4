package main

import (
	"os"
	"path/filepath"
	"testing"

	"git.disy.net/goetz/polysynth/synth"
)

func TestDefaultConfigUnmarshal(t *testing.T) {
	c, err := parseConfig([]byte(defaultConfig))
	if err != nil {
		t.Fatalf("error unmarshalling: %v", err)
	}
	if c.SampleRate != 48000 || c.FramesPerBuffer != 256 || c.Backend != backendPortAudio {
		t.Fatalf("unexpected static config: %+v", c.StaticConfig)
	}
	if len(c.Triggers) == 0 {
		t.Fatalf("expected triggers")
	}
	p, err := c.SynthParams()
	if err != nil {
		t.Fatalf("resolving params: %v", err)
	}
	if p.MaxVoices != 16 || p.Cutoff.Value != 1800 {
		t.Errorf("overrides not applied: voices %d cutoff %v", p.MaxVoices, p.Cutoff.Value)
	}
	if p.Attack != 300 || p.Release != 2000 {
		t.Errorf("preset not applied: attack %v release %v", p.Attack, p.Release)
	}
}

func TestReadConfigWritesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "polysynth.json")
	c, err := ReadConfig(path)
	if err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("default config not written: %v", err)
	}
	if string(data) != defaultConfig {
		t.Errorf("written config differs from default")
	}
	if !c.WatchConfig {
		t.Errorf("expected watchConfig to be set")
	}
}

func TestConfigDefaultsAndOverrides(t *testing.T) {
	c, err := parseConfig([]byte(`{
		"params": {
			"wave": "triangle",
			"filterMode": "hp",
			"maxVoices": 200,
			"sustain": 0.25,
			"modGain": 0.5
		},
		"triggers": [{ "regex": "x", "note": 60 }]
	}`))
	if err != nil {
		t.Fatalf("parseConfig: %v", err)
	}
	if c.SampleRate != 48000 || c.FramesPerBuffer != 256 || c.Backend != backendPortAudio {
		t.Errorf("static defaults not set: %+v", c.StaticConfig)
	}
	if tr := c.Triggers[0]; tr.Velocity != 1 || tr.HoldMs != 500 {
		t.Errorf("trigger defaults not set: %+v", tr)
	}

	p, err := c.SynthParams()
	if err != nil {
		t.Fatalf("SynthParams: %v", err)
	}
	want := synth.DefaultParams()
	want.Wave = synth.WaveTriangle
	want.FilterMode = synth.HighPass
	want.MaxVoices = synth.MaxPolyphony
	want.Sustain = 0.25
	want.ModGain = 0.5
	if p != want {
		t.Errorf("got %+v\nwant %+v", p, want)
	}
}

func TestConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"syntax", `{`},
		{"backend", `{"backend": "alsa"}`},
		{"sample rate", `{"sampleRate": -1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseConfig([]byte(tt.json)); err == nil {
				t.Errorf("expected error")
			}
		})
	}

	bad := []string{
		`{"preset": "Organ"}`,
		`{"params": {"wave": "noise"}}`,
		`{"params": {"filterMode": "comb"}}`,
	}
	for _, js := range bad {
		c, err := parseConfig([]byte(js))
		if err != nil {
			t.Fatalf("parseConfig(%s): %v", js, err)
		}
		if _, err := c.SynthParams(); err == nil {
			t.Errorf("SynthParams accepted %s", js)
		}
	}
}
