package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// watchConfig re-reads the config at path whenever it changes on disk. The
// parent directory is watched, not the file, so editors that save by
// replacing the file keep triggering reloads.
func watchConfig(path string, configs chan<- *Config, errors chan<- error, done <-chan struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("can't create watcher: %w", err)
	}
	name := filepath.Clean(path)
	err = watcher.Add(filepath.Dir(name))
	if err != nil {
		// ignore close error
		watcher.Close()
		return fmt.Errorf("can't watch %s: %w", path, err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != name || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				c, err := ReadConfig(path)
				if err != nil {
					// half-written files show up here while an editor saves
					slog.Debug("config reload failed", "path", path, "err", err)
					send(errors, err, done)
					continue
				}
				slog.Info("config reloaded", "path", path)
				send(configs, c, done)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				send(errors, err, done)
			case <-done:
				return
			}
		}
	}()
	return nil
}

func send[T any](ch chan<- T, v T, done <-chan struct{}) {
	select {
	case ch <- v:
	case <-done:
	}
}
