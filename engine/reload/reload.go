// Package reload watches the settings file and reports debounced change notifications.
package reload

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period after the last change before a reload is reported.
const DefaultDebounce = 100 * time.Millisecond

type watcher struct {
	mu       *sync.Mutex
	path     string
	debounce time.Duration
	logger   *zap.Logger

	fs     *fsnotify.Watcher
	events chan string
	done   chan struct{}
	wg     sync.WaitGroup
	closed bool
}

// Watcher reports writes to a single file.
type Watcher interface {
	// Events delivers the watched path once per debounced burst of writes.
	// The channel is buffered; a notification still pending when the next one fires is coalesced.
	Events() <-chan string

	// Close stops watching and closes the Events channel.
	Close() error
}

var _ Watcher = &watcher{}

// NewWatcher starts watching path. The parent directory is watched so that files replaced by
// rename, as storage.Save does, keep being observed.
//
// Parameters:
//   - path: the file to watch; it does not need to exist yet
//   - opts: functional options
//
// Returns:
//   - Watcher: the running watcher
//   - error: error if the directory cannot be watched
func NewWatcher(path string, opts ...WatcherBuilderOption) (Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	w := &watcher{
		mu:       &sync.Mutex{},
		path:     abs,
		debounce: DefaultDebounce,
		logger:   zap.NewNop(),
		events:   make(chan string, 1),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.fs, err = fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.fs.Add(filepath.Dir(abs)); err != nil {
		w.fs.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	w.wg.Add(1)
	go w.run()
	w.logger.Debug("watching settings", zap.String("path", abs))
	return w, nil
}

func (w *watcher) Events() <-chan string {
	return w.events
}

func (w *watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	close(w.done)
	err := w.fs.Close()
	w.wg.Wait()
	close(w.events)
	return err
}

func (w *watcher) run() {
	defer w.wg.Done()

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !w.matches(event) {
				continue
			}
			timer.Reset(w.debounce)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("settings watcher error", zap.Error(err))
		case <-timer.C:
			select {
			case w.events <- w.path:
			default:
			}
		}
	}
}

func (w *watcher) matches(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	name, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return name == w.path
}
