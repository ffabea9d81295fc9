package loader

import (
	"math"
	"path/filepath"
	"strings"
)

// Format selects the skeleton decoder.
type Format int

const (
	// FormatBinary is the compact binary skeleton format.
	FormatBinary Format = iota
	// FormatJSON is the JSON skeleton format.
	FormatJSON
)

func (f Format) String() string {
	switch f {
	case FormatBinary:
		return "binary"
	case FormatJSON:
		return "json"
	}
	return "unknown"
}

// FormatForPath picks JSON for a ".json" extension and binary for anything else.
//
// Parameters:
//   - path: the asset path
//
// Returns:
//   - Format: the decoder to use
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatBinary
}

// LoadOptions are the per-call settings of a skeleton load.
type LoadOptions struct {
	// Scale multiplies every spatial value: bone position and length, attachment position
	// and size, vertices and translate keys. Rotation, scale factors and UVs are unaffected.
	Scale float32
	// NonEssential keeps JSON mesh hull, edge and size metadata. Binary assets carry their
	// own flag in the stream.
	NonEssential bool
}

// DefaultLoadOptions returns unit scale with editor metadata retained.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{Scale: 1, NonEssential: true}
}

func (o LoadOptions) validate() error {
	s := float64(o.Scale)
	if o.Scale <= 0 || math.IsInf(s, 0) || math.IsNaN(s) {
		return argumentErrorf("scale must be positive and finite, got %v", o.Scale)
	}
	return nil
}
