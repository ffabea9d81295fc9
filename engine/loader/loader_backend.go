package loader

import (
	"github.com/Carmen-Shannon/oxy-rig/engine/skeleton"
)

// loaderBackend defines the generic interface for decoding one skeleton asset.
// Concrete implementations (binaryLoaderBackendImpl, jsonLoaderBackendImpl) handle
// format-specific details and share the assembly rules in assembly.go.
type loaderBackend interface {
	// Load decodes a complete skeleton definition.
	//
	// Parameters:
	//   - name: the skeleton name, used in errors and as SkeletonData.Name
	//   - data: the whole asset
	//   - opts: validated per-call options
	//
	// Returns:
	//   - *skeleton.SkeletonData: the frozen definition
	//   - error: a *LoadError wrapping ErrFormat or ErrReference
	Load(name string, data []byte, opts LoadOptions) (*skeleton.SkeletonData, error)
}
