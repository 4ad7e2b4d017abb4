package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sync"
	"time"
)

type trigger struct {
	regex *regexp.Regexp
	Trigger
}

type triggers struct {
	sync.Mutex
	triggers []trigger
}

func (ts *triggers) set(triggers []Trigger) error {
	compiled := make([]trigger, 0, len(triggers))
	for _, t := range triggers {
		r, err := regexp.Compile(t.Regex)
		if err != nil {
			return fmt.Errorf("trigger %q: %w", t.Regex, err)
		}
		compiled = append(compiled, trigger{r, t})
	}

	ts.Lock()
	defer ts.Unlock()
	ts.triggers = compiled
	return nil
}

func (ts *triggers) firstMatch(s []byte) (Trigger, bool) {
	ts.Lock()
	defer ts.Unlock()

	for _, t := range ts.triggers {
		if t.regex.Match(s) {
			return t.Trigger, true
		}
	}
	return Trigger{}, false
}

// play starts the trigger's note and schedules its release.
func (t Trigger) play(in *Instrument) {
	id := in.NextID()
	in.NoteOn(t.Channel, t.Note, t.Velocity, id)
	time.AfterFunc(time.Duration(t.HoldMs)*time.Millisecond, func() {
		in.NoteOff(t.Channel, t.Note, id)
	})
}

func scanLines(r io.Reader, lines chan<- []byte, errors chan<- error) {
	s := bufio.NewScanner(r)
	for s.Scan() {
		// Bytes is reused by the next Scan
		line := append([]byte(nil), s.Bytes()...)
		lines <- line
	}
	errors <- s.Err()
}

func processLines(r io.Reader, ts *triggers, in *Instrument, done <-chan struct{}) {
	lines := make(chan []byte, 1)
	scannerErrs := make(chan error, 1)
	go scanLines(r, lines, scannerErrs)

	handle := func(line []byte) {
		t, ok := ts.firstMatch(line)
		if !ok {
			return
		}
		slog.Debug("trigger", "regex", t.Regex, "note", t.Note)
		t.play(in)
	}
	for {
		select {
		case line := <-lines:
			handle(line)
		case err := <-scannerErrs:
			if err != nil {
				slog.Warn("stdin closed", "err", err)
			}
			// the last line may still be buffered
			select {
			case line := <-lines:
				handle(line)
			default:
			}
			return
		case <-done:
			return
		}
	}
}
