// Package attachment holds the drawable and non-drawable payloads a skin places in a slot,
// and the vertex math that turns them into world-space geometry.
package attachment

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrUnknownKind is returned by ParseKind for an unrecognized attachment type name.
var ErrUnknownKind = errors.New("unknown attachment type")

// Kind enumerates the attachment variants.
type Kind uint8

const (
	KindRegion Kind = iota
	KindBoundingBox
	KindMesh
	KindSkinnedMesh
)

var kindNames = [...]string{"region", "boundingbox", "mesh", "skinnedmesh"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind converts the textual type used by the JSON format to a Kind.
//
// Parameters:
//   - s: one of "region", "boundingbox", "mesh", "skinnedmesh"
//
// Returns:
//   - Kind: the matching kind
//   - error: ErrUnknownKind (wrapped) if s is not a known type
func ParseKind(s string) (Kind, error) {
	for i, n := range kindNames {
		if n == s {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Attachment is the closed set of payloads a skin can place in a slot.
// Only *Region, *BoundingBox, *Mesh and *SkinnedMesh implement it; callers
// dispatch with a type switch.
type Attachment interface {
	// Name returns the attachment name as it is keyed in its skin.
	//
	// Returns:
	//   - string: the attachment name
	Name() string

	// Kind returns the attachment variant.
	//
	// Returns:
	//   - Kind: the attachment variant
	Kind() Kind

	sealed()
}

// BonePose is the part of a posed bone that vertex computation reads.
type BonePose interface {
	// WorldMatrix returns the bone's column-major 2x2 world rotation/scale matrix.
	//
	// Returns:
	//   - mgl32.Mat2: the world matrix
	WorldMatrix() mgl32.Mat2

	// WorldPosition returns the bone's world translation.
	//
	// Returns:
	//   - mgl32.Vec2: the world translation
	WorldPosition() mgl32.Vec2
}

// BoneLookup resolves posed bones by their index in the skeleton.
type BoneLookup interface {
	// BoneAt returns the posed bone at index.
	//
	// Parameters:
	//   - index: the bone index
	//
	// Returns:
	//   - BonePose: the posed bone
	BoneAt(index int) BonePose
}

// TextureRegion describes where an attachment's image lives inside a texture page.
// Offsets and sizes are in pixels; U,V,U2,V2 are normalized texture coordinates.
type TextureRegion struct {
	U, V, U2, V2   float32
	Rotate         bool
	OffsetX        float32
	OffsetY        float32
	Width          float32
	Height         float32
	OriginalWidth  float32
	OriginalHeight float32
	// Page is an opaque handle for the texture page, set by the atlas.
	Page any
}

// FullTexture is the region covering a whole texture with no packing offsets.
var FullTexture = TextureRegion{U: 0, V: 0, U2: 1, V2: 1}

// computeRegionUVs maps unit uvs into a texture region, swapping axes when the region is rotated.
func computeRegionUVs(region TextureRegion, regionUVs []float32, out []float32) {
	u, v := region.U, region.V
	w, h := region.U2-u, region.V2-v
	if region.Rotate {
		for i := 0; i+1 < len(regionUVs); i += 2 {
			out[i] = u + regionUVs[i+1]*w
			out[i+1] = v + h - regionUVs[i]*h
		}
		return
	}
	for i := 0; i+1 < len(regionUVs); i += 2 {
		out[i] = u + regionUVs[i]*w
		out[i+1] = v + regionUVs[i+1]*h
	}
}
