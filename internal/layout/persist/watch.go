package persist

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/diffy-scm/diffy-go/internal/debounce"
)

const resetDebounceDelay = 350 * time.Millisecond

// Watch observes the record directory and calls onReset once all records
// have disappeared, so a running instance notices an external reset (for
// example `diffy-layout -reset` from another terminal). The returned stop
// func releases the watcher.
func (s *Store) Watch(onReset func()) (stop func(), err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	if err := watcher.Add(s.dir); err != nil {
		err := errors.Join(err, watcher.Close())
		return nil, fmt.Errorf("watch %s: %w", s.dir, err)
	}
	deb := debounce.New(resetDebounceDelay, func() {
		if s.empty() {
			slog.Info("layout records cleared externally, resetting")
			onReset()
		}
	})
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
					continue
				}
				if _, isRecord := DecodeKey(filepath.Base(event.Name)); !isRecord {
					continue
				}
				slog.Debug("layout record removed", slog.String("name", filepath.Base(event.Name)))
				deb.Trigger()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Error("layout watcher", slog.Any("error", err))
			}
		}
	}()
	return func() {
		deb.Stop()
		if err := watcher.Close(); err != nil {
			slog.Error("close layout watcher", slog.Any("error", err))
		}
	}, nil
}
