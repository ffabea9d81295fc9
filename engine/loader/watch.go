package loader

import (
	"fmt"
	"io"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a file must stay quiet before the Watcher reloads it.
const DefaultDebounce = 100 * time.Millisecond

// Watcher reloads file-backed skeletons in a Loader when their files change. Reloaded entry
// names are sent on Events and reload or watch failures on Errors. Both channels are closed
// once the Watcher stops.
type Watcher struct {
	loader   Loader
	watcher  *fsnotify.Watcher
	logger   *log.Logger
	debounce time.Duration

	Events chan string
	Errors chan error

	mu    sync.Mutex
	files map[string][]string
	dirs  map[string]bool

	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

// NewWatcher starts watching for changes. Entries are registered with Add.
//
// Parameters:
//   - l: the loader whose entries are reloaded
//   - options: a variadic list of WatcherBuilderOption functions
//
// Returns:
//   - *Watcher: the running watcher
//   - error: error if the file system watcher cannot be created
func NewWatcher(l Loader, options ...WatcherBuilderOption) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		loader:   l,
		watcher:  fw,
		logger:   log.New(io.Discard, "", 0),
		debounce: DefaultDebounce,
		Events:   make(chan string, 16),
		Errors:   make(chan error, 1),
		files:    make(map[string][]string),
		dirs:     make(map[string]bool),
		closeCh:  make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, option := range options {
		option(w)
	}
	go w.run()
	return w, nil
}

// Add watches the source files of cached, file-backed entries.
//
// Parameters:
//   - names: cache keys in the watcher's loader
//
// Returns:
//   - error: ErrArgument (wrapped) for an entry that is not file-backed, or the watch error
func (w *Watcher) Add(names ...string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, name := range names {
		src, ok := w.loader.Source(name)
		if !ok {
			return argumentErrorf("skeleton %q is not a cached file", name)
		}
		path, err := filepath.Abs(src)
		if err != nil {
			return fmt.Errorf("watch %q: %w", name, err)
		}
		dir := filepath.Dir(path)
		if !w.dirs[dir] {
			if err := w.watcher.Add(dir); err != nil {
				return fmt.Errorf("watch %q: %w", dir, err)
			}
			w.dirs[dir] = true
		}
		w.files[path] = append(w.files[path], name)
	}
	return nil
}

// Close stops the watcher and waits for its goroutine to exit.
//
// Returns:
//   - error: the error from closing the file system watcher
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.done)
	defer close(w.Errors)
	defer close(w.Events)

	ticker := time.NewTicker(max(w.debounce/2, time.Millisecond))
	defer ticker.Stop()

	pending := make(map[string]time.Time)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			pending[filepath.Clean(event.Name)] = time.Now()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.sendError(err)
		case now := <-ticker.C:
			for path, last := range pending {
				if now.Sub(last) < w.debounce {
					continue
				}
				delete(pending, path)
				w.reload(path)
			}
		case <-w.closeCh:
			return
		}
	}
}

func (w *Watcher) reload(path string) {
	w.mu.Lock()
	names := append([]string(nil), w.files[path]...)
	w.mu.Unlock()

	for _, name := range names {
		if _, err := w.loader.Reload(name); err != nil {
			w.logger.Printf("watch: reload %q failed: %v", name, err)
			w.sendError(err)
			continue
		}
		w.logger.Printf("watch: reloaded %q from %s", name, path)
		select {
		case w.Events <- name:
		case <-w.closeCh:
		}
	}
}

func (w *Watcher) sendError(err error) {
	select {
	case w.Errors <- err:
	case <-w.closeCh:
	}
}
