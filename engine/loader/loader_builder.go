package loader

import (
	"log"

	"github.com/Carmen-Shannon/oxy-rig/engine/attachment"
	"github.com/Carmen-Shannon/oxy-rig/engine/skeleton"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithFactory is an option builder that sets the attachment factory used by both backends.
//
// Parameters:
//   - f: the attachment factory
//
// Returns:
//   - LoaderBuilderOption: a function that applies the factory option to a loader
func WithFactory(f attachment.Factory) LoaderBuilderOption {
	return func(l *loader) {
		l.factory = f
	}
}

// WithLogger is an option builder that sets the logger for load timings, cache hits and
// skipped attachments.
//
// Parameters:
//   - logger: the logger; nil keeps the discarding default
//
// Returns:
//   - LoaderBuilderOption: a function that applies the logger option to a loader
func WithLogger(logger *log.Logger) LoaderBuilderOption {
	return func(l *loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithWorkers is an option builder that sets the size of the LoadAll worker pool.
// A manifest's own workers setting can only lower the concurrency of its batch.
//
// Parameters:
//   - n: the number of workers, values below 1 are ignored
//
// Returns:
//   - LoaderBuilderOption: a function that applies the workers option to a loader
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		if n > 0 {
			l.workers = n
		}
	}
}

// WithDefaultOptions is an option builder that sets the options used by Load and LoadAll.
//
// Parameters:
//   - opts: the default load options
//
// Returns:
//   - LoaderBuilderOption: a function that applies the default options to a loader
func WithDefaultOptions(opts LoadOptions) LoaderBuilderOption {
	return func(l *loader) {
		l.defaultOptions = opts
	}
}

// WithSkeletonData is an option builder that pre-populates the cache with a definition.
//
// Parameters:
//   - key: the cache key for the definition
//   - data: the definition to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the cache option to a loader
func WithSkeletonData(key string, data *skeleton.SkeletonData) LoaderBuilderOption {
	return func(l *loader) {
		l.cache[key] = &cacheEntry{data: data, opts: l.defaultOptions}
	}
}
