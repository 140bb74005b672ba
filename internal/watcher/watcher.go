// Package watcher notices new mail by watching the mbox file, coalescing
// bursts of file system events into a single notification.
package watcher

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/smbox/smbox/internal/log"
	"github.com/smbox/smbox/internal/pubsub"
)

// EventType distinguishes watcher notifications.
type EventType int

const (
	// MboxChanged fires once per burst of writes to the mbox.
	MboxChanged EventType = iota
	// WatcherError carries an error reported by fsnotify.
	WatcherError
)

// WatcherEvent is the payload published on the watcher's broker.
type WatcherEvent struct {
	Type  EventType
	Path  string
	Error error
}

// Watcher monitors an mbox file for changes.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	path      string
	debounce  time.Duration
	broker    *pubsub.Broker[WatcherEvent]
	done      chan struct{}
}

// Config holds watcher configuration options.
type Config struct {
	Path     string
	Debounce time.Duration
}

// DefaultConfig returns the watcher defaults for path.
func DefaultConfig(path string) Config {
	return Config{
		Path:     path,
		Debounce: 200 * time.Millisecond,
	}
}

// New creates a watcher. Call Start to begin watching.
func New(cfg Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	return &Watcher{
		fsWatcher: fsw,
		path:      filepath.Clean(cfg.Path),
		debounce:  cfg.Debounce,
		broker:    pubsub.NewBroker[WatcherEvent](),
		done:      make(chan struct{}),
	}, nil
}

// Broker returns the broker events are published on.
func (w *Watcher) Broker() *pubsub.Broker[WatcherEvent] {
	return w.broker
}

// Start watches the directory holding the mbox. The directory is watched
// rather than the file because delivery agents and smbox itself replace the
// mbox by renaming a new file over it.
func (w *Watcher) Start() error {
	dir := filepath.Dir(w.path)
	if err := w.fsWatcher.Add(dir); err != nil {
		return fmt.Errorf("watching directory %s: %w", dir, err)
	}
	log.Debug(log.CatWatcher, "Watching mbox", "path", w.path, "debounce", w.debounce)

	go w.loop()
	return nil
}

// Stop terminates the watcher and closes its broker.
func (w *Watcher) Stop() error {
	close(w.done)
	w.broker.Close()
	return w.fsWatcher.Close()
}

func (w *Watcher) loop() {
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	timerC := func() <-chan time.Time {
		if timer != nil {
			return timer.C
		}
		return nil
	}

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !w.isRelevantEvent(event) {
				continue
			}
			log.Debug(log.CatWatcher, "Mbox event", "op", event.Op.String())

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-timerC():
			timer = nil
			w.broker.Publish(pubsub.UpdatedEvent, WatcherEvent{Type: MboxChanged, Path: w.path})

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.ErrorErr(log.CatWatcher, "fsnotify error", err)
			w.broker.Publish(pubsub.UpdatedEvent, WatcherEvent{Type: WatcherError, Path: w.path, Error: err})

		case <-w.done:
			return
		}
	}
}

// isRelevantEvent reports whether event touches the mbox itself.
func (w *Watcher) isRelevantEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return filepath.Clean(event.Name) == w.path
}
