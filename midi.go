package main

import (
	"fmt"
	"log/slog"
	"strings"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"git.disy.net/goetz/polysynth/synth"
)

const (
	ccAllSoundOff = 120
	ccAllNotesOff = 123
)

// decodeMIDI maps note messages onto engine events at timing 0. MIDI
// carries no per-note identifier, so notes use synth.NoID.
func decodeMIDI(msg midi.Message) (synth.Event, bool) {
	var ch, key, vel uint8
	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		return synth.NoteOnEvent(0, ch, key, float32(vel)/127, synth.NoID), true
	case msg.GetNoteEnd(&ch, &key):
		return synth.NoteOffEvent(0, ch, key, synth.NoID), true
	}
	return synth.Event{}, false
}

func handleMIDI(in *Instrument, msg midi.Message) {
	if ev, ok := decodeMIDI(msg); ok {
		in.enqueue(ev)
		return
	}
	var ch, cc, val uint8
	if msg.GetControlChange(&ch, &cc, &val) {
		switch cc {
		case ccAllSoundOff:
			in.Panic()
		case ccAllNotesOff:
			in.AllNotesOff(ch)
		}
		return
	}
	slog.Debug("unhandled MIDI message", "msg", msg.String())
}

// openMIDI listens on the first input port whose name contains name
// (case-insensitive). The returned func closes the port and the driver.
func openMIDI(name string, in *Instrument) (func(), error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("can't open MIDI driver: %w", err)
	}
	ins, err := drv.Ins()
	if err != nil {
		drv.Close()
		return nil, fmt.Errorf("can't list MIDI inputs: %w", err)
	}
	var port drivers.In
	for _, p := range ins {
		if strings.Contains(strings.ToLower(p.String()), strings.ToLower(name)) {
			port = p
			break
		}
	}
	if port == nil {
		drv.Close()
		return nil, fmt.Errorf("MIDI input %q not found", name)
	}
	if err := port.Open(); err != nil {
		drv.Close()
		return nil, fmt.Errorf("can't open MIDI input %s: %w", port, err)
	}
	stop, err := midi.ListenTo(port, func(msg midi.Message, _ int32) {
		handleMIDI(in, msg)
	}, midi.HandleError(func(err error) {
		slog.Warn("MIDI listener error", "device", port.String(), "err", err)
	}))
	if err != nil {
		port.Close()
		drv.Close()
		return nil, fmt.Errorf("can't listen on %s: %w", port, err)
	}
	slog.Info("MIDI input connected", "device", port.String())
	return func() {
		stop()
		// ignore close errors
		port.Close()
		drv.Close()
	}, nil
}
