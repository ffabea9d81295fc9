package attachment

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-rig/common"
)

var (
	// ErrInvalidWeights is returned when a skinned mesh's weight table is malformed.
	ErrInvalidWeights = errors.New("invalid skinned mesh weights")
	// ErrUnknownBone is returned, together with ErrInvalidWeights, when a weight names a bone
	// the skeleton does not have.
	ErrUnknownBone = errors.New("unknown bone")
)

// SkinnedMesh is a textured triangle mesh whose vertices are weighted across several bones.
type SkinnedMesh struct {
	name string

	Path string
	// Bones is the packed influence table: for each vertex, an influence count k
	// followed by k bone indices.
	Bones []int
	// Weights holds x, y, weight for each influence in Bones order.
	Weights   []float32
	RegionUVs []float32
	Triangles []uint16
	Color     common.Color
	Region    TextureRegion

	HullLength int
	Edges      []int
	Width      float32
	Height     float32

	uvs []float32
}

var _ Attachment = &SkinnedMesh{}

// NewSkinnedMesh creates an empty skinned mesh attachment with a white tint.
//
// Parameters:
//   - name: the attachment name
//
// Returns:
//   - *SkinnedMesh: the new skinned mesh attachment
func NewSkinnedMesh(name string) *SkinnedMesh {
	return &SkinnedMesh{name: name, Path: name, Color: common.White, Region: FullTexture}
}

func (m *SkinnedMesh) Name() string { return m.name }

func (m *SkinnedMesh) Kind() Kind { return KindSkinnedMesh }

func (m *SkinnedMesh) sealed() {}

// WorldVertexCount is the number of floats ComputeWorldVertices writes: one x,y pair per vertex.
func (m *SkinnedMesh) WorldVertexCount() int { return len(m.RegionUVs) }

// VertexCount is the number of floats in a deform buffer: one x,y pair per influence.
func (m *SkinnedMesh) VertexCount() int { return len(m.Weights) / 3 * 2 }

// UpdateUVs maps RegionUVs into the texture region.
func (m *SkinnedMesh) UpdateUVs() {
	if len(m.uvs) != len(m.RegionUVs) {
		m.uvs = make([]float32, len(m.RegionUVs))
	}
	computeRegionUVs(m.Region, m.RegionUVs, m.uvs)
}

// UVs returns the texture coordinates computed by UpdateUVs.
func (m *SkinnedMesh) UVs() []float32 { return m.uvs }

// Validate checks that Bones and Weights describe the same influences, that Bones has one
// entry per RegionUVs vertex and that every bone index is below boneCount.
//
// Parameters:
//   - boneCount: the number of bones in the owning skeleton
//
// Returns:
//   - error: ErrInvalidWeights (wrapped) describing the first inconsistency, also wrapping
//     ErrUnknownBone for an out of range bone index
func (m *SkinnedMesh) Validate(boneCount int) error {
	influences, vertices := 0, 0
	for v := 0; v < len(m.Bones); vertices++ {
		k := m.Bones[v]
		v++
		if k < 0 || v+k > len(m.Bones) {
			return fmt.Errorf("%w: influence count %d at %d overruns bone table", ErrInvalidWeights, k, v-1)
		}
		for _, b := range m.Bones[v : v+k] {
			if b < 0 || b >= boneCount {
				return fmt.Errorf("%w: %w: index %d out of range [0,%d)", ErrInvalidWeights, ErrUnknownBone, b, boneCount)
			}
		}
		v += k
		influences += k
	}
	if influences*3 != len(m.Weights) {
		return fmt.Errorf("%w: %d influences but %d weight values", ErrInvalidWeights, influences, len(m.Weights))
	}
	if vertices*2 != len(m.RegionUVs) {
		return fmt.Errorf("%w: %d weighted vertices but %d uv values", ErrInvalidWeights, vertices, len(m.RegionUVs))
	}
	return nil
}

// ComputeWorldVertices blends every vertex across its bones. A deform buffer of VertexCount
// floats holds one x,y offset per influence, added to the influence's bind position before
// transforming; a buffer of any other length is ignored.
//
// Parameters:
//   - x, y: skeleton position added to every vertex
//   - bones: resolves bone indices to posed bones
//   - deform: the slot's deform buffer
//   - out: destination, at least WorldVertexCount long
func (m *SkinnedMesh) ComputeWorldVertices(x, y float32, bones BoneLookup, deform []float32, out []float32) {
	useDeform := len(deform) == m.VertexCount()
	w, b, f := 0, 0, 0
	for v := 0; v < len(m.Bones); w += 2 {
		var wx, wy float32
		n := m.Bones[v] + v + 1
		v++
		for ; v < n; v, b, f = v+1, b+3, f+2 {
			bone := bones.BoneAt(m.Bones[v])
			vx, vy, weight := m.Weights[b], m.Weights[b+1], m.Weights[b+2]
			if useDeform {
				vx += deform[f]
				vy += deform[f+1]
			}
			px, py := common.TransformPoint(bone.WorldMatrix(), bone.WorldPosition(), vx, vy)
			wx += px * weight
			wy += py * weight
		}
		out[w] = wx + x
		out[w+1] = wy + y
	}
}

// UnpackWeights splits the packed vertex table used by the JSON format
// (k, then k groups of bone, x, y, weight) into a bone table and a weight table.
// x and y are multiplied by scale.
//
// Parameters:
//   - packed: the packed table
//   - scale: the load scale
//
// Returns:
//   - []int: influence counts and bone indices
//   - []float32: x, y, weight per influence
//   - error: ErrInvalidWeights (wrapped) if the table is truncated
func UnpackWeights(packed []float32, scale float32) ([]int, []float32, error) {
	bones := make([]int, 0, len(packed)/3)
	weights := make([]float32, 0, len(packed)/4*3)
	for i := 0; i < len(packed); {
		k := int(packed[i])
		i++
		if k < 0 || i+k*4 > len(packed) {
			return nil, nil, fmt.Errorf("%w: influence count %d at %d overruns vertex table", ErrInvalidWeights, k, i-1)
		}
		bones = append(bones, k)
		for end := i + k*4; i < end; i += 4 {
			bones = append(bones, int(packed[i]))
			weights = append(weights, packed[i+1]*scale, packed[i+2]*scale, packed[i+3])
		}
	}
	return bones, weights, nil
}

// PackWeights is the inverse of UnpackWeights for a scale of 1.
func PackWeights(bones []int, weights []float32) []float32 {
	packed := make([]float32, 0, len(bones)+len(weights)/3*4)
	b := 0
	for v := 0; v < len(bones); {
		k := bones[v]
		v++
		packed = append(packed, float32(k))
		for end := v + k; v < end; v, b = v+1, b+3 {
			packed = append(packed, float32(bones[v]), weights[b], weights[b+1], weights[b+2])
		}
	}
	return packed
}
