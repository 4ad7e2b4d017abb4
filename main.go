package main

import (
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mitchellh/go-homedir"

	"git.disy.net/goetz/polysynth/synth"
)

const reclaimInterval = 50 * time.Millisecond

func initLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	})
	slog.SetDefault(slog.New(h))
}

func fatal(msg string, args ...any) {
	slog.Error(msg, args...)
	os.Exit(1)
}

func main() {
	configFile := flag.String("config", "~/.polysynth.json", "Path to config, created with defaults if not found.")
	midiFile := flag.String("render", "", "Render a standard MIDI file to -out instead of playing live.")
	outFile := flag.String("out", "out.wav", "WAV file written by -render.")
	tail := flag.Float64("tail", 2, "Seconds rendered after the last MIDI event.")
	debug := flag.Bool("debug", false, "Enable debug logging.")
	flag.Parse()
	initLogger(*debug)

	path, err := homedir.Expand(*configFile)
	if err != nil {
		fatal("can't expand config path", "path", *configFile, "err", err)
	}
	config, err := ReadConfig(path)
	if err != nil {
		fatal("can't read config", "path", path, "err", err)
	}
	params, err := config.SynthParams()
	if err != nil {
		fatal("invalid params", "path", path, "err", err)
	}

	if *midiFile != "" {
		err := renderFile(*midiFile, *outFile, config, params, *tail)
		if err != nil {
			fatal("render failed", "err", err)
		}
		return
	}
	play(path, config, params)
}

func play(path string, config *Config, params synth.Params) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	in := NewInstrument(config.SampleRate, params)
	out, err := openBackend(config, in)
	if err != nil {
		fatal("can't open audio backend", "backend", config.Backend, "err", err)
	}
	// ignore Close error
	defer out.Close()
	err = out.Start()
	if err != nil {
		fatal("can't start audio backend", "backend", config.Backend, "err", err)
	}
	slog.Info("playing", "backend", config.Backend, "sampleRate", config.SampleRate,
		"framesPerBuffer", config.FramesPerBuffer, "voices", in.VoiceCapacity())

	configs := make(chan *Config)
	done := make(chan struct{})
	defer close(done)
	errors := make(chan error)
	if config.WatchConfig {
		err := watchConfig(path, configs, errors, done)
		if err != nil {
			fatal("can't start watcher", "err", err)
		}
	}

	var ts triggers
	err = ts.set(config.Triggers)
	if err != nil {
		fatal("trigger config error", "err", err)
	}

	if config.MidiInput != "" {
		stop, err := openMIDI(config.MidiInput, in)
		if err != nil {
			fatal("can't open MIDI input", "err", err)
		}
		defer stop()
	}

	// report errors
	go func() {
		for {
			select {
			case err := <-errors:
				slog.Error("config", "err", err)
			case <-done:
				return
			}
		}
	}()

	go reclaimVoices(in, done)

	// scan lines, trigger notes
	go processLines(os.Stdin, &ts, in, done)

	for {
		select {
		// handle config changes
		case c := <-configs:
			p, err := c.SynthParams()
			if err != nil {
				slog.Error("config", "err", err)
				continue
			}
			in.SetParams(p)
			err = ts.set(c.Triggers)
			if err != nil {
				slog.Error("config", "err", err)
			}
		// block until SIGINT | SIGTERM
		case <-signals:
			slog.Info("exiting", "droppedEvents", in.Dropped())
			return
		}
	}
}

// reclaimVoices drains terminated voices off the audio thread.
func reclaimVoices(in *Instrument, done <-chan struct{}) {
	tick := time.NewTicker(reclaimInterval)
	defer tick.Stop()
	for {
		select {
		case <-tick.C:
			in.DrainTerminated(func(ev synth.Event) {
				slog.Debug("voice terminated", "id", ev.VoiceID, "channel", ev.Channel, "note", ev.Note,
					"timing", ev.Timing)
			})
		case <-done:
			return
		}
	}
}
