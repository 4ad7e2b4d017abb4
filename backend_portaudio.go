package main

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

type portAudioBackend struct {
	stream *portaudio.Stream
}

func openPortAudio(sampleRate float64, framesPerBuffer int, in *Instrument) (*portAudioBackend, error) {
	err := portaudio.Initialize()
	if err != nil {
		return nil, fmt.Errorf("can't init portaudio: %w", err)
	}
	// stereo out, non-interleaved
	stream, err := portaudio.OpenDefaultStream(0, 2, sampleRate, framesPerBuffer, func(out [][]float32) {
		in.Render(out[0], out[1])
	})
	if err != nil {
		// ignore Terminate error
		portaudio.Terminate()
		return nil, fmt.Errorf("can't open default stream: %w", err)
	}
	return &portAudioBackend{stream: stream}, nil
}

func (b *portAudioBackend) Start() error {
	err := b.stream.Start()
	if err != nil {
		return fmt.Errorf("can't start stream: %w", err)
	}
	return nil
}

func (b *portAudioBackend) Close() error {
	// ignore Stop error, the stream may not be running
	b.stream.Stop()
	err := b.stream.Close()
	// ignore Terminate error
	portaudio.Terminate()
	return err
}
