// Package watcher provides file system watching with debouncing for the bot
// workspace. Manifest edits and src/bin changes trigger re-reconciliation.
package watcher

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"pitcrew/internal/pubsub"
)

// EventKind discriminates watcher publications.
type EventKind string

const (
	// WorkspaceChanged means a relevant file changed and the debounce
	// window elapsed.
	WorkspaceChanged EventKind = "workspace_changed"
	// WatcherError carries a non-fatal fsnotify error.
	WatcherError EventKind = "watcher_error"
)

// WatcherEvent is published on the watcher's broker.
type WatcherEvent struct {
	Kind  EventKind
	Error error
}

// Watcher monitors the workspace and publishes debounced change events.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	root      string
	debounce  time.Duration
	broker    *pubsub.Broker[WatcherEvent]
	done      chan struct{}
}

// Config holds watcher configuration options.
type Config struct {
	Root        string
	DebounceDur time.Duration
}

// DefaultConfig returns sensible defaults for the watcher.
func DefaultConfig(root string) Config {
	return Config{
		Root:        root,
		DebounceDur: 1 * time.Second,
	}
}

// New creates a new workspace watcher.
func New(cfg Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	return &Watcher{
		fsWatcher: fsw,
		root:      cfg.Root,
		debounce:  cfg.DebounceDur,
		broker:    pubsub.NewBroker[WatcherEvent](),
		done:      make(chan struct{}),
	}, nil
}

// Broker exposes the event broker for subscription.
func (w *Watcher) Broker() *pubsub.Broker[WatcherEvent] {
	return w.broker
}

// Start begins watching the workspace root and, when present, src/bin.
func (w *Watcher) Start() error {
	if err := w.fsWatcher.Add(w.root); err != nil {
		return fmt.Errorf("watching workspace %s: %w", w.root, err)
	}

	// src/bin may not exist yet. Creation of src/ inside the root is still
	// observed through the root watch, which is enough to trigger a refresh;
	// the dir itself is picked up on the next app start.
	binDir := filepath.Join(w.root, "src", "bin")
	_ = w.fsWatcher.Add(binDir)

	go w.loop()

	return nil
}

// Stop terminates the watcher and releases resources.
func (w *Watcher) Stop() error {
	close(w.done)
	err := w.fsWatcher.Close()
	w.broker.Close()
	return err
}

// loop processes file system events with debouncing.
func (w *Watcher) loop() {
	var (
		timer   *time.Timer
		pending bool
	)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			if !w.isRelevantEvent(event) {
				continue
			}

			if timer == nil {
				timer = time.NewTimer(w.debounce)
				pending = true
			} else {
				if !timer.Stop() {
					// Drain the timer channel if it already fired
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
				pending = true
			}

		case <-func() <-chan time.Time {
			if timer != nil {
				return timer.C
			}
			return nil
		}():
			if pending {
				w.broker.Publish(pubsub.ChangedEvent, WatcherEvent{Kind: WorkspaceChanged})
				pending = false
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.broker.Publish(pubsub.ChangedEvent, WatcherEvent{Kind: WatcherError, Error: err})

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// isRelevantEvent checks if the event should trigger a refresh.
func (w *Watcher) isRelevantEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}

	base := filepath.Base(event.Name)
	if base == "Cargo.toml" {
		return true
	}
	// Any Rust source appearing or vanishing under src/bin changes the
	// discoverable binary set.
	return strings.HasSuffix(base, ".rs") &&
		filepath.Dir(event.Name) == filepath.Join(w.root, "src", "bin")
}
