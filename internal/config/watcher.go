package config

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches a path and notifies typed handlers when it changes.
// The loader runs fresh on each change so handlers never receive stale
// data. With WithRecursive the path is treated as a directory tree:
// subdirectories are added on start and as they appear.
type Watcher[T any] struct {
	path      string
	debounce  time.Duration
	recursive bool
	loader    func(path string) (T, error)
	handlers  []func(T)
	onError   func(error)
	onEvent   func(fsnotify.Event)
	mu        sync.RWMutex
	watcher   *fsnotify.Watcher
	logger    *slog.Logger
	ctx       context.Context
	cancel    context.CancelFunc
}

// WatcherOption configures a Watcher.
type WatcherOption[T any] func(*Watcher[T])

// WithDebounce sets the debounce duration for changes.
// Default is 1500ms.
func WithDebounce[T any](d time.Duration) WatcherOption[T] {
	return func(w *Watcher[T]) {
		w.debounce = d
	}
}

// WithErrorHandler sets a callback for loader errors.
// If not set, errors are only logged.
func WithErrorHandler[T any](handler func(error)) WatcherOption[T] {
	return func(w *Watcher[T]) {
		w.onError = handler
	}
}

// WithRecursive watches the path as a directory tree instead of a
// single file.
func WithRecursive[T any]() WatcherOption[T] {
	return func(w *Watcher[T]) {
		w.recursive = true
	}
}

// WithEventHook sets a callback invoked for every raw filesystem event
// before debouncing. Used to surface individual changes while the
// reload itself stays debounced.
func WithEventHook[T any](hook func(fsnotify.Event)) WatcherOption[T] {
	return func(w *Watcher[T]) {
		w.onEvent = hook
	}
}

// NewWatcher creates a typed filesystem watcher. The loader function is
// called fresh on every change so handlers always receive up-to-date
// data.
func NewWatcher[T any](
	path string,
	loader func(path string) (T, error),
	logger *slog.Logger,
	opts ...WatcherOption[T],
) *Watcher[T] {
	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher[T]{
		path:     path,
		debounce: 1500 * time.Millisecond,
		loader:   loader,
		handlers: make([]func(T), 0),
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// OnReload registers a handler to be called after a change settles.
// Returns an unsubscribe function to remove the handler.
func (w *Watcher[T]) OnReload(handler func(T)) func() {
	w.mu.Lock()
	w.handlers = append(w.handlers, handler)
	idx := len(w.handlers) - 1
	w.mu.Unlock()

	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if idx < len(w.handlers) {
			w.handlers[idx] = nil
		}
	}
}

// Start begins watching for changes.
func (w *Watcher[T]) Start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.watcher = watcher

	if w.recursive {
		if addErr := w.addTree(w.path); addErr != nil {
			watcher.Close()
			return addErr
		}
	} else if addErr := watcher.Add(w.path); addErr != nil {
		watcher.Close()
		return addErr
	}

	w.logger.Info("Watcher started", "path", w.path, "recursive", w.recursive, "debounce", w.debounce)
	go w.watch()
	return nil
}

// Stop stops watching and cleans up resources.
func (w *Watcher[T]) Stop() error {
	w.cancel()
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}

// addTree registers the directory and every subdirectory with the
// underlying watcher.
func (w *Watcher[T]) addTree(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.watcher.Add(p)
		}
		return nil
	})
}

// watch is the main loop that listens for file changes.
func (w *Watcher[T]) watch() {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-w.ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			w.logger.Debug("Watcher stopped")
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if !w.relevant(event) {
				continue
			}

			w.logger.Debug("Change detected", "path", event.Name, "op", event.Op.String())
			if w.onEvent != nil {
				w.onEvent(event)
			}

			// New directories must join the watch before anything
			// inside them changes.
			if w.recursive && event.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
					if addErr := w.addTree(event.Name); addErr != nil {
						w.logger.Warn("Failed to watch new directory", "path", event.Name, "error", addErr)
					}
				}
			}

			// Reset debounce timer
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			timerC = timer.C

		case <-timerC:
			w.logger.Info("Change settled, loading and notifying handlers")
			w.loadAndNotify()
			timerC = nil

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Watcher error", "error", err)
		}
	}
}

// relevant filters event kinds. A single watched file only reacts to
// write and create (editors replace the file); a tree also reacts to
// removes and renames.
func (w *Watcher[T]) relevant(event fsnotify.Event) bool {
	if w.recursive {
		return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0
	}
	return event.Op&(fsnotify.Write|fsnotify.Create) != 0
}

// loadAndNotify loads fresh data and notifies all handlers.
func (w *Watcher[T]) loadAndNotify() {
	data, err := w.loader(w.path)
	if err != nil {
		w.logger.Warn("Failed to load", "error", err)
		if w.onError != nil {
			w.onError(err)
		}
		return
	}

	// All handlers receive the SAME fresh snapshot
	w.mu.RLock()
	handlers := make([]func(T), 0, len(w.handlers))
	for _, h := range w.handlers {
		if h != nil {
			handlers = append(handlers, h)
		}
	}
	w.mu.RUnlock()

	for _, handler := range handlers {
		handler(data)
	}
}
