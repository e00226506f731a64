// Package watch registers build-output directories for filesystem change
// notification. Changes signal that a project was rebuilt; the notification
// callback is rate-limited per path so build bursts collapse into single
// events.
package watch

import (
	"fmt"
	"log"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// eventsPerSecond is the per-path notification budget. Builds rewrite
// thousands of files; one event per interval is plenty for bookkeeping.
const eventsPerSecond = 20

// Watcher observes registered artifact directories and invokes onChange
// (rate-limited, from the watcher goroutine) when one of them is written to.
type Watcher struct {
	fsw      *fsnotify.Watcher
	onChange func(path string)
	debug    bool

	mu       sync.Mutex
	limiters map[string]*RateLimiter
	closed   bool
}

// New creates a Watcher. onChange may be nil when only registration side
// effects are wanted.
func New(debug bool, onChange func(path string)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	return &Watcher{
		fsw:      fsw,
		onChange: onChange,
		debug:    debug,
		limiters: make(map[string]*RateLimiter),
	}, nil
}

// Watch registers a path for change notification. Failures are reported to
// the caller but are expected to be treated as non-fatal.
func (w *Watcher) Watch(path string) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return fmt.Errorf("watcher closed")
	}
	if _, ok := w.limiters[path]; !ok {
		w.limiters[path] = NewRateLimiter(eventsPerSecond)
	}
	w.mu.Unlock()

	if err := w.fsw.Add(path); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	if w.debug {
		log.Printf("[WATCH] watching %s", path)
	}
	return nil
}

// Start consumes filesystem events until Close is called. Run it on its own
// goroutine.
func (w *Watcher) Start() {
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove) == 0 {
				continue
			}
			w.notify(ev.Name)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if w.debug {
				log.Printf("[WATCH] error: %v", err)
			}
		}
	}
}

func (w *Watcher) notify(path string) {
	if w.onChange == nil {
		return
	}
	w.mu.Lock()
	rl := w.limiters[path]
	if rl == nil {
		// Events carry the changed file's path; fall back to a shared
		// limiter keyed by the raw event path.
		rl = NewRateLimiter(eventsPerSecond)
		w.limiters[path] = rl
	}
	w.mu.Unlock()

	rl.Coalesce(func() {
		w.onChange(path)
	})
}

// Close stops the watcher and releases its resources.
func (w *Watcher) Close() error {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	return w.fsw.Close()
}
