package main

import (
	"fmt"
	"strings"

	"git.disy.net/goetz/polysynth/synth"
)

type preset struct {
	name string
	set  func(p *synth.Params)
}

var factoryPresets = []preset{
	{
		name: "Init",
		set:  func(p *synth.Params) { *p = synth.DefaultParams() },
	},
	{
		name: "Soft Saw Pad",
		set: func(p *synth.Params) {
			*p = synth.DefaultParams()
			p.Gain.Value = 0.9
			p.Wave = synth.WaveSaw
			p.Detune = 8
			p.Attack = 300
			p.Decay = 1200
			p.Sustain = 0.8
			p.Release = 2000
			p.Cutoff.Value = 1200
			p.Resonance = 0.15
		},
	},
	{
		name: "Pluck",
		set: func(p *synth.Params) {
			*p = synth.DefaultParams()
			p.Wave = synth.WaveSquare
			p.Detune = 3
			p.Attack = 2
			p.Decay = 180
			p.Sustain = 0
			p.Release = 120
			p.Cutoff.Value = 2200
			p.Resonance = 0.25
		},
	},
}

func lookupPreset(name string) (synth.Params, error) {
	var p synth.Params
	for _, fp := range factoryPresets {
		if strings.EqualFold(fp.name, name) {
			fp.set(&p)
			return p, nil
		}
	}
	return p, fmt.Errorf("unknown preset: %s", name)
}
