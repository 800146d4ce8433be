package watcher

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/erkantaylan/markview/internal/logger"
)

// DefaultDebounce collapses the burst of events editors emit on save.
const DefaultDebounce = 100 * time.Millisecond

// Watcher watches a single file for changes with debouncing. Calling Watch
// again moves the watch to another file.
type Watcher struct {
	debounce time.Duration
	log      *logger.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	done    chan struct{}
	timer   *time.Timer
	closed  bool
}

func New(debounce time.Duration, log *logger.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Watcher{
		debounce: debounce,
		log:      log,
	}
}

// Watch starts watching path and calls onChange after writes settle. Any
// previous watch is stopped first.
func (w *Watcher) Watch(path string, onChange func()) error {
	path = filepath.Clean(path)

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	// Watch the directory so editors that replace the file on save are seen.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		fw.Close()
		return fmt.Errorf("watcher closed")
	}
	w.stopLocked()
	done := make(chan struct{})
	w.watcher = fw
	w.done = done
	w.mu.Unlock()

	go w.loop(fw, done, path, onChange)
	return nil
}

func (w *Watcher) loop(fw *fsnotify.Watcher, done chan struct{}, path string, onChange func()) {
	for {
		select {
		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			// Write covers in-place saves; Create covers rename-over and
			// remove-then-recreate saves.
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.schedule(done, onChange)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.log.WatcherError(err)

		case <-done:
			return
		}
	}
}

func (w *Watcher) schedule(done chan struct{}, fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.done != done {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case <-done:
		default:
			fn()
		}
	})
}

// stopLocked tears down the active watch. Callers hold w.mu.
func (w *Watcher) stopLocked() {
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	if w.done != nil {
		close(w.done)
		w.done = nil
	}
	if w.watcher != nil {
		w.watcher.Close()
		w.watcher = nil
	}
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.closed = true
	w.stopLocked()
	return nil
}
