package loader

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-rig/engine/attachment"
	"github.com/Carmen-Shannon/oxy-rig/engine/skeleton"
)

// cacheEntry is one cached skeleton and, for file-backed entries, where it came from.
type cacheEntry struct {
	data   *skeleton.SkeletonData
	path   string
	format Format
	opts   LoadOptions
}

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	factory        attachment.Factory
	logger         *log.Logger
	workers        int
	defaultOptions LoadOptions

	cache map[string]*cacheEntry

	// pool runs LoadAll entries; batchMu serializes batches and guards closed.
	pool      worker.DynamicWorkerPool
	batchMu   sync.Mutex
	closed    bool
	closeOnce sync.Once
}

// Loader defines the public-facing interface for decoding and caching skeleton definitions.
// It hides the binary and JSON formats behind one backend interface and keeps every loaded
// SkeletonData in a cache keyed by name. Cached definitions are immutable and can be shared
// by any number of runtime skeletons.
type Loader interface {
	// Load decodes a skeleton file with the loader's default options and caches it under its path.
	// If the path is already cached, the cached definition is returned.
	// The backend is selected by extension: ".json" is JSON, anything else is binary.
	//
	// Parameters:
	//   - path: the file path to the skeleton asset
	//
	// Returns:
	//   - *skeleton.SkeletonData: the loaded and cached definition
	//   - error: error if reading or decoding fails
	Load(path string) (*skeleton.SkeletonData, error)

	// LoadWithOptions is Load with explicit per-call options.
	//
	// Parameters:
	//   - path: the file path to the skeleton asset
	//   - opts: the load options
	//
	// Returns:
	//   - *skeleton.SkeletonData: the loaded and cached definition
	//   - error: error if the options are invalid, or reading or decoding fails
	LoadWithOptions(path string, opts LoadOptions) (*skeleton.SkeletonData, error)

	// LoadReader decodes a skeleton from a stream and caches it under name.
	// If name is already cached, the cached definition is returned without reading r.
	//
	// Parameters:
	//   - name: the cache key and skeleton name
	//   - r: the reader providing the asset
	//   - format: the asset format
	//   - opts: the load options
	//
	// Returns:
	//   - *skeleton.SkeletonData: the loaded definition
	//   - error: error if an argument is invalid, or reading or decoding fails
	LoadReader(name string, r io.Reader, format Format, opts LoadOptions) (*skeleton.SkeletonData, error)

	// LoadBytes decodes a skeleton held in memory and caches it under name.
	//
	// Parameters:
	//   - name: the cache key and skeleton name
	//   - data: the whole asset
	//   - format: the asset format
	//   - opts: the load options
	//
	// Returns:
	//   - *skeleton.SkeletonData: the loaded definition
	//   - error: error if an argument is invalid or decoding fails
	LoadBytes(name string, data []byte, format Format, opts LoadOptions) (*skeleton.SkeletonData, error)

	// LoadAll decodes every manifest entry concurrently on the loader's worker pool and caches
	// each under its entry name. Entries that fail do not stop the others. A manifest workers
	// value limits how many entries of this batch load at once, up to the pool size.
	//
	// Parameters:
	//   - m: the manifest
	//
	// Returns:
	//   - map[string]*skeleton.SkeletonData: the definitions that loaded, keyed by entry name
	//   - error: every failure joined with errors.Join, ErrClosed after Close, or nil
	LoadAll(m *Manifest) (map[string]*skeleton.SkeletonData, error)

	// Reload decodes a file-backed entry again with its original options and swaps it into the
	// cache. Skeletons built from the previous definition keep using it.
	//
	// Parameters:
	//   - name: the cache key of a file-backed entry
	//
	// Returns:
	//   - *skeleton.SkeletonData: the new definition
	//   - error: error if the entry is unknown or not file-backed, or decoding fails
	Reload(name string) (*skeleton.SkeletonData, error)

	// Get retrieves a cached definition by name. Returns nil if not found.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - *skeleton.SkeletonData: the cached definition or nil
	Get(name string) *skeleton.SkeletonData

	// Source returns the file a cached entry was loaded from.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - string: the file path
	//   - bool: false if the entry is unknown or was not loaded from a file
	Source(name string) (string, bool)

	// All returns a snapshot of the cache.
	//
	// Returns:
	//   - map[string]*skeleton.SkeletonData: all cached definitions keyed by name
	All() map[string]*skeleton.SkeletonData

	// Evict removes a cached definition.
	//
	// Parameters:
	//   - name: the cache key to remove
	//
	// Returns:
	//   - bool: true if an entry was removed
	Evict(name string) bool

	// Close stops the LoadAll worker pool. Cached definitions stay readable and the
	// single-asset loads keep working; LoadAll returns ErrClosed. Close is idempotent.
	Close()
}

var _ Loader = &loader{}

// NewLoader creates a new Loader with the provided options applied.
// Without WithFactory, attachments are built by attachment.NewDefaultFactory.
//
// Parameters:
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{
		mu:             sync.RWMutex{},
		factory:        attachment.NewDefaultFactory(),
		logger:         log.New(io.Discard, "", 0),
		workers:        max(runtime.NumCPU()-1, 1),
		defaultOptions: DefaultLoadOptions(),
		cache:          make(map[string]*cacheEntry),
	}

	for _, option := range options {
		option(l)
	}
	l.pool = worker.NewDynamicWorkerPool(l.workers, 256, 1*time.Second)
	return l
}

func (l *loader) Load(path string) (*skeleton.SkeletonData, error) {
	return l.LoadWithOptions(path, l.defaultOptions)
}

func (l *loader) LoadWithOptions(path string, opts LoadOptions) (*skeleton.SkeletonData, error) {
	if path == "" {
		return nil, argumentErrorf("empty path")
	}
	if cached := l.Get(path); cached != nil {
		l.logger.Printf("skeleton %q: cache hit", path)
		return cached, nil
	}
	return l.loadFile(path, path, opts)
}

func (l *loader) LoadReader(name string, r io.Reader, format Format, opts LoadOptions) (*skeleton.SkeletonData, error) {
	if name == "" {
		return nil, argumentErrorf("empty skeleton name")
	}
	if r == nil {
		return nil, argumentErrorf("nil reader for %q", name)
	}
	if cached := l.Get(name); cached != nil {
		l.logger.Printf("skeleton %q: cache hit", name)
		return cached, nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", name, err)
	}
	return l.LoadBytes(name, data, format, opts)
}

func (l *loader) LoadBytes(name string, data []byte, format Format, opts LoadOptions) (*skeleton.SkeletonData, error) {
	if name == "" {
		return nil, argumentErrorf("empty skeleton name")
	}
	if data == nil {
		return nil, argumentErrorf("nil data for %q", name)
	}
	if cached := l.Get(name); cached != nil {
		return cached, nil
	}
	sd, err := l.decode(name, data, format, opts)
	if err != nil {
		return nil, err
	}
	l.store(name, &cacheEntry{data: sd, format: format, opts: opts})
	return sd, nil
}

func (l *loader) LoadAll(m *Manifest) (map[string]*skeleton.SkeletonData, error) {
	if m == nil {
		return nil, argumentErrorf("nil manifest")
	}
	l.batchMu.Lock()
	defer l.batchMu.Unlock()
	if l.closed {
		return nil, ErrClosed
	}

	limit := l.workers
	if m.Workers > 0 {
		limit = min(m.Workers, l.workers)
	}
	slots := make(chan struct{}, limit)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		loaded  = make(map[string]*skeleton.SkeletonData, len(m.Assets))
		errList []error
	)
	for i, asset := range m.Assets {
		wg.Add(1)
		slots <- struct{}{}
		entry := asset
		l.pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				defer func() { <-slots }()
				opts := l.defaultOptions
				opts.Scale = entry.Scale
				sd, err := l.loadEntry(entry.Name, entry.Path, opts)

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					errList = append(errList, err)
					return nil, err
				}
				loaded[entry.Name] = sd
				return sd, nil
			},
		})
	}
	wg.Wait()

	l.logger.Printf("manifest: loaded %d of %d skeletons", len(loaded), len(m.Assets))
	return loaded, errors.Join(errList...)
}

func (l *loader) loadEntry(name, path string, opts LoadOptions) (*skeleton.SkeletonData, error) {
	if cached := l.Get(name); cached != nil {
		return cached, nil
	}
	return l.loadFile(name, path, opts)
}

func (l *loader) Reload(name string) (*skeleton.SkeletonData, error) {
	l.mu.RLock()
	entry, ok := l.cache[name]
	l.mu.RUnlock()
	if !ok {
		return nil, argumentErrorf("skeleton %q is not cached", name)
	}
	if entry.path == "" {
		return nil, argumentErrorf("skeleton %q was not loaded from a file", name)
	}
	return l.loadFile(name, entry.path, entry.opts)
}

func (l *loader) Get(name string) *skeleton.SkeletonData {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if entry, ok := l.cache[name]; ok {
		return entry.data
	}
	return nil
}

func (l *loader) Source(name string) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	entry, ok := l.cache[name]
	if !ok || entry.path == "" {
		return "", false
	}
	return entry.path, true
}

func (l *loader) All() map[string]*skeleton.SkeletonData {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]*skeleton.SkeletonData, len(l.cache))
	for k, v := range l.cache {
		result[k] = v.data
	}
	return result
}

func (l *loader) Evict(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.cache[name]; !ok {
		return false
	}
	delete(l.cache, name)
	return true
}

func (l *loader) Close() {
	l.closeOnce.Do(func() {
		l.batchMu.Lock()
		defer l.batchMu.Unlock()
		l.closed = true
		l.pool.Stop()
	})
}

// loadFile reads and decodes path and stores the result under name, replacing any
// existing entry.
func (l *loader) loadFile(name, path string, opts LoadOptions) (*skeleton.SkeletonData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	format := FormatForPath(path)
	sd, err := l.decode(name, data, format, opts)
	if err != nil {
		return nil, err
	}
	l.store(name, &cacheEntry{data: sd, path: path, format: format, opts: opts})
	return sd, nil
}

// decode validates the call and runs the format backend.
func (l *loader) decode(name string, data []byte, format Format, opts LoadOptions) (*skeleton.SkeletonData, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if l.factory == nil {
		return nil, argumentErrorf("nil attachment factory")
	}
	backend, err := l.resolveBackend(format)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	sd, err := backend.Load(name, data, opts)
	if err != nil {
		return nil, err
	}
	l.logger.Printf("skeleton %q: loaded %s in %s (%d bones, %d slots, %d skins, %d animations)",
		name, format, time.Since(start), len(sd.Bones()), len(sd.Slots()), len(sd.Skins()), len(sd.Animations()))
	return sd, nil
}

// resolveBackend selects the backend for a format.
func (l *loader) resolveBackend(format Format) (loaderBackend, error) {
	switch format {
	case FormatBinary:
		return newBinaryLoaderBackend(l.factory, l.logger), nil
	case FormatJSON:
		return newJSONLoaderBackend(l.factory, l.logger), nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnsupportedFormat, int(format))
}

func (l *loader) store(name string, entry *cacheEntry) {
	l.mu.Lock()
	l.cache[name] = entry
	l.mu.Unlock()
}
