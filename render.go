package main

import (
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"git.disy.net/goetz/polysynth/synth"
)

// scheduled is an event with an absolute position in samples.
type scheduled struct {
	at int64
	ev synth.Event
}

func readSMF(path string, sampleRate float64) ([]scheduled, error) {
	var out []scheduled
	rd := smf.ReadTracks(path)
	rd.Do(func(te smf.TrackEvent) {
		ev, ok := decodeMIDI(midi.Message(te.Message))
		if !ok {
			return
		}
		at := int64(float64(te.AbsMicroSeconds) * sampleRate / 1e6)
		out = append(out, scheduled{at: at, ev: ev})
	})
	if err := rd.Error(); err != nil {
		return nil, fmt.Errorf("can't read %s: %w", path, err)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].at < out[j].at })
	return out, nil
}

// renderOffline plays the schedule through a fresh engine in blocks of
// framesPerBuffer and keeps rendering tail samples after the last event.
func renderOffline(p synth.Params, sampleRate float64, framesPerBuffer int, events []scheduled, tail int64) (left, right []float32) {
	e := synth.NewEngine(float32(sampleRate), p.MaxVoices)
	var end int64
	if len(events) > 0 {
		end = events[len(events)-1].at
	}
	end += tail

	left = make([]float32, end)
	right = make([]float32, end)
	block := make([]synth.Event, 0, 64)
	next := 0
	for pos := int64(0); pos < end; pos += int64(framesPerBuffer) {
		stop := pos + int64(framesPerBuffer)
		if stop > end {
			stop = end
		}
		block = block[:0]
		for next < len(events) && events[next].at < stop {
			ev := events[next].ev
			ev.Timing = uint32(events[next].at - pos)
			block = append(block, ev)
			next++
		}
		e.Process(&p, block, nil, left[pos:stop], right[pos:stop])
	}
	return left, right
}

func writeWAV(path string, sampleRate int, left, right []float32) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("can't create %s: %w", path, err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 2, 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 2,
			SampleRate:  sampleRate,
		},
		Data:           make([]int, 2*len(left)),
		SourceBitDepth: 16,
	}
	for i := range left {
		buf.Data[2*i] = toPCM16(left[i])
		buf.Data[2*i+1] = toPCM16(right[i])
	}
	err = enc.Write(buf)
	if err != nil {
		return fmt.Errorf("can't encode %s: %w", path, err)
	}
	err = enc.Close()
	if err != nil {
		return fmt.Errorf("can't finish %s: %w", path, err)
	}
	return nil
}

func toPCM16(s float32) int {
	if s > 1 {
		s = 1
	} else if s < -1 {
		s = -1
	}
	return int(s * 32767)
}

func renderFile(midiPath, wavPath string, c *Config, p synth.Params, tailSeconds float64) error {
	events, err := readSMF(midiPath, c.SampleRate)
	if err != nil {
		return err
	}
	tail := int64(tailSeconds * c.SampleRate)
	left, right := renderOffline(p, c.SampleRate, c.FramesPerBuffer, events, tail)
	slog.Info("rendered", "midi", midiPath, "events", len(events), "frames", len(left))
	return writeWAV(wavPath, int(c.SampleRate), left, right)
}
