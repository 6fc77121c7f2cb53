package reload

import (
	"time"

	"go.uber.org/zap"
)

// WatcherBuilderOption configures a Watcher.
type WatcherBuilderOption func(*watcher)

// WithDebounce sets the quiet period. Non-positive values keep DefaultDebounce.
func WithDebounce(d time.Duration) WatcherBuilderOption {
	return func(w *watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger for watcher errors.
func WithLogger(logger *zap.Logger) WatcherBuilderOption {
	return func(w *watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}
