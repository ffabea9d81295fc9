package attachment

import (
	"github.com/Carmen-Shannon/oxy-rig/common"
)

// Mesh is a textured triangle mesh whose vertices are relative to a single bone.
type Mesh struct {
	name string

	Path string
	// Vertices holds bone-local x,y pairs.
	Vertices []float32
	// RegionUVs holds unit texture coordinates, one x,y pair per vertex.
	RegionUVs []float32
	Triangles []uint16
	Color     common.Color
	Region    TextureRegion

	// HullLength, Edges, Width and Height are editor metadata kept only for nonessential data.
	HullLength int
	Edges      []int
	Width      float32
	Height     float32

	uvs []float32
}

var _ Attachment = &Mesh{}

// NewMesh creates an empty mesh attachment with a white tint.
//
// Parameters:
//   - name: the attachment name
//
// Returns:
//   - *Mesh: the new mesh attachment
func NewMesh(name string) *Mesh {
	return &Mesh{name: name, Path: name, Color: common.White, Region: FullTexture}
}

func (m *Mesh) Name() string { return m.name }

func (m *Mesh) Kind() Kind { return KindMesh }

func (m *Mesh) sealed() {}

// VertexCount is the number of floats in Vertices and in a matching deform buffer.
func (m *Mesh) VertexCount() int { return len(m.Vertices) }

// UpdateUVs maps RegionUVs into the texture region.
func (m *Mesh) UpdateUVs() {
	if len(m.uvs) != len(m.RegionUVs) {
		m.uvs = make([]float32, len(m.RegionUVs))
	}
	computeRegionUVs(m.Region, m.RegionUVs, m.uvs)
}

// UVs returns the texture coordinates computed by UpdateUVs.
func (m *Mesh) UVs() []float32 { return m.uvs }

// ComputeWorldVertices transforms the mesh into world space. A deform buffer whose
// length equals VertexCount replaces the setup vertices.
//
// Parameters:
//   - x, y: skeleton position added to every vertex
//   - bone: the posed bone the slot hangs from
//   - deform: the slot's deform buffer, may be empty
//   - out: destination, at least VertexCount long
func (m *Mesh) ComputeWorldVertices(x, y float32, bone BonePose, deform []float32, out []float32) {
	vertices := m.Vertices
	if len(deform) == len(vertices) {
		vertices = deform
	}
	transformVertices(x, y, bone, vertices, out)
}

func transformVertices(x, y float32, bone BonePose, vertices []float32, out []float32) {
	mat := bone.WorldMatrix()
	t := bone.WorldPosition()
	t[0] += x
	t[1] += y
	for i := 0; i+1 < len(vertices); i += 2 {
		out[i], out[i+1] = common.TransformPoint(mat, t, vertices[i], vertices[i+1])
	}
}
