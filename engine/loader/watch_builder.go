package loader

import (
	"log"
	"time"
)

// WatcherBuilderOption is a functional option for configuring a Watcher via NewWatcher.
type WatcherBuilderOption func(*Watcher)

// WithDebounce is an option builder that sets how long a file must stay unchanged before it
// is reloaded.
//
// Parameters:
//   - d: the quiet period; non-positive values keep DefaultDebounce
//
// Returns:
//   - WatcherBuilderOption: a function that applies the debounce option to a watcher
func WithDebounce(d time.Duration) WatcherBuilderOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithWatchLogger is an option builder that sets the logger for reload results.
//
// Parameters:
//   - logger: the logger; nil keeps the discarding default
//
// Returns:
//   - WatcherBuilderOption: a function that applies the logger option to a watcher
func WithWatchLogger(logger *log.Logger) WatcherBuilderOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}
