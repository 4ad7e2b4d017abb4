package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"git.disy.net/goetz/polysynth/synth"
)

const defaultConfig = `
{
	"sampleRate": 48000,
	"framesPerBuffer": 256,
	"backend": "portaudio",
	"midiInput": "",
	"watchConfig": true,
	"preset": "Soft Saw Pad",
	"params": {
		"maxVoices": 16,
		"cutoff": 1800
	},
	"triggers": [
		{ "regex": "hey", "note": 69, "velocity": 0.8, "holdMs": 400 },
		{ "regex": "ho", "note": 57, "velocity": 1, "holdMs": 1200 }
	]
}
`

const (
	backendPortAudio = "portaudio"
	backendOto       = "oto"
)

type StaticConfig struct {
	SampleRate      float64 `json:"sampleRate"`
	FramesPerBuffer int     `json:"framesPerBuffer"`
	Backend         string  `json:"backend"`
	MidiInput       string  `json:"midiInput"`
	WatchConfig     bool    `json:"watchConfig"`
}

// ParamsConfig overrides preset values; absent fields keep the preset's.
type ParamsConfig struct {
	Gain       *float32 `json:"gain"`
	MaxVoices  *int     `json:"maxVoices"`
	Wave       *string  `json:"wave"`
	OscMix     *float32 `json:"oscMix"`
	Detune     *float32 `json:"detune"`
	Attack     *float32 `json:"attack"`
	Decay      *float32 `json:"decay"`
	Sustain    *float32 `json:"sustain"`
	Release    *float32 `json:"release"`
	FilterMode *string  `json:"filterMode"`
	Cutoff     *float32 `json:"cutoff"`
	Resonance  *float32 `json:"resonance"`
	ModCutoff  *float32 `json:"modCutoff"`
	ModGain    *float32 `json:"modGain"`
}

type Trigger struct {
	Regex    string  `json:"regex"`
	Channel  uint8   `json:"channel"`
	Note     uint8   `json:"note"`
	Velocity float32 `json:"velocity"`
	HoldMs   int     `json:"holdMs"`
}

type DynamicConfig struct {
	Preset   string       `json:"preset"`
	Params   ParamsConfig `json:"params"`
	Triggers []Trigger    `json:"triggers"`
}

type Config struct {
	StaticConfig
	DynamicConfig
}

func ReadConfig(p string) (*Config, error) {
	if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
		err = os.WriteFile(p, []byte(defaultConfig), 0644)
		if err != nil {
			return nil, fmt.Errorf("can't write defaultConfig: %w", err)
		}
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("can't read config: %w", err)
	}
	return parseConfig(data)
}

func parseConfig(data []byte) (*Config, error) {
	var c Config
	err := json.Unmarshal(data, &c)
	if err != nil {
		return nil, fmt.Errorf("unmarshalling: %w", err)
	}
	c.setDefaults()
	if c.Backend != backendPortAudio && c.Backend != backendOto {
		return nil, fmt.Errorf("unknown backend: %s", c.Backend)
	}
	if c.SampleRate <= 0 || c.FramesPerBuffer <= 0 {
		return nil, fmt.Errorf("sampleRate and framesPerBuffer must be positive")
	}
	return &c, nil
}

func (c *Config) setDefaults() {
	if c.SampleRate == 0 {
		c.SampleRate = 48000
	}
	if c.FramesPerBuffer == 0 {
		c.FramesPerBuffer = 256
	}
	if c.Backend == "" {
		c.Backend = backendPortAudio
	}
	for i := range c.Triggers {
		if c.Triggers[i].Velocity == 0 {
			c.Triggers[i].Velocity = 1
		}
		if c.Triggers[i].HoldMs == 0 {
			c.Triggers[i].HoldMs = 500
		}
	}
}

// SynthParams resolves the preset and applies the overrides on top of it.
func (c *Config) SynthParams() (synth.Params, error) {
	name := c.Preset
	if name == "" {
		name = "Init"
	}
	p, err := lookupPreset(name)
	if err != nil {
		return p, err
	}

	o := c.Params
	setFloat(&p.Gain.Value, o.Gain)
	if o.MaxVoices != nil {
		p.MaxVoices = *o.MaxVoices
	}
	if o.Wave != nil {
		p.Wave, err = synth.ParseWave(*o.Wave)
		if err != nil {
			return p, fmt.Errorf("params: %w", err)
		}
	}
	setFloat(&p.OscMix, o.OscMix)
	setFloat(&p.Detune, o.Detune)
	setFloat(&p.Attack, o.Attack)
	setFloat(&p.Decay, o.Decay)
	setFloat(&p.Sustain, o.Sustain)
	setFloat(&p.Release, o.Release)
	if o.FilterMode != nil {
		p.FilterMode, err = synth.ParseFilterMode(*o.FilterMode)
		if err != nil {
			return p, fmt.Errorf("params: %w", err)
		}
	}
	setFloat(&p.Cutoff.Value, o.Cutoff)
	setFloat(&p.Resonance, o.Resonance)
	setFloat(&p.ModCutoff, o.ModCutoff)
	setFloat(&p.ModGain, o.ModGain)

	p.Sanitize()
	return p, nil
}

func setFloat(dst *float32, v *float32) {
	if v != nil {
		*dst = *v
	}
}
