package main

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/ebitengine/oto/v3"
)

const otoFrameBytes = 8 // two float32 channels

type otoBackend struct {
	ctx    *oto.Context
	player *oto.Player
	reader *frameReader
}

func openOto(sampleRate float64, framesPerBuffer int, in *Instrument) (*otoBackend, error) {
	op := &oto.NewContextOptions{
		SampleRate:   int(sampleRate),
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("oto audio not available: %w", err)
	}
	<-ready

	r := newFrameReader(in, framesPerBuffer)
	return &otoBackend{ctx: ctx, player: ctx.NewPlayer(r), reader: r}, nil
}

func (b *otoBackend) Start() error {
	b.player.Play()
	return nil
}

func (b *otoBackend) Close() error {
	return b.player.Close()
}

// frameReader adapts Instrument.Render to oto's pull model, producing
// interleaved little-endian float32 stereo frames.
type frameReader struct {
	in    *Instrument
	left  []float32
	right []float32
}

func newFrameReader(in *Instrument, framesPerBuffer int) *frameReader {
	return &frameReader{
		in:    in,
		left:  make([]float32, framesPerBuffer),
		right: make([]float32, framesPerBuffer),
	}
}

func (r *frameReader) Read(p []byte) (int, error) {
	frames := len(p) / otoFrameBytes
	done := 0
	for done < frames {
		n := frames - done
		if n > len(r.left) {
			n = len(r.left)
		}
		r.in.Render(r.left[:n], r.right[:n])
		for i := 0; i < n; i++ {
			off := (done + i) * otoFrameBytes
			binary.LittleEndian.PutUint32(p[off:], math.Float32bits(r.left[i]))
			binary.LittleEndian.PutUint32(p[off+4:], math.Float32bits(r.right[i]))
		}
		done += n
	}
	return frames * otoFrameBytes, nil
}
