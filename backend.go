package main

import "fmt"

// backend drives Instrument.Render from an audio device callback.
type backend interface {
	Start() error
	Close() error
}

func openBackend(c *Config, in *Instrument) (backend, error) {
	switch c.Backend {
	case backendPortAudio:
		return openPortAudio(c.SampleRate, c.FramesPerBuffer, in)
	case backendOto:
		return openOto(c.SampleRate, c.FramesPerBuffer, in)
	}
	return nil, fmt.Errorf("unknown backend: %s", c.Backend)
}
