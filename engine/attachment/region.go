package attachment

import (
	"github.com/Carmen-Shannon/oxy-rig/common"
)

// Corner layout of Region offsets, UVs and world vertices:
// bottom-left, upper-left, upper-right, bottom-right as x,y pairs.
const (
	X1 = iota
	Y1
	X2
	Y2
	X3
	Y3
	X4
	Y4
)

// RegionVertexCount is the number of floats produced by Region.ComputeWorldVertices.
const RegionVertexCount = 8

// Region is a textured quad positioned relative to its bone.
type Region struct {
	name string

	// Path is the image path used to find the texture region; it defaults to the name.
	Path     string
	X        float32
	Y        float32
	ScaleX   float32
	ScaleY   float32
	Rotation float32
	Width    float32
	Height   float32
	Color    common.Color

	// Region is the texture placement set by the attachment factory.
	Region TextureRegion

	offset [8]float32
	uvs    [8]float32
}

var _ Attachment = &Region{}

// NewRegion creates a region attachment with unit scale, white tint and UVs spanning the whole texture.
//
// Parameters:
//   - name: the attachment name
//
// Returns:
//   - *Region: the new region attachment
func NewRegion(name string) *Region {
	r := &Region{
		name:   name,
		Path:   name,
		ScaleX: 1,
		ScaleY: 1,
		Color:  common.White,
		Region: FullTexture,
	}
	r.SetUVs(0, 0, 1, 1, false)
	return r
}

func (r *Region) Name() string { return r.name }

func (r *Region) Kind() Kind { return KindRegion }

func (r *Region) sealed() {}

// SetRegion stores the texture placement and refreshes the quad UVs from it.
func (r *Region) SetRegion(region TextureRegion) {
	r.Region = region
	r.SetUVs(region.U, region.V, region.U2, region.V2, region.Rotate)
}

// SetUVs sets the texture coordinates of the four corners.
//
// Parameters:
//   - u, v: top-left texture coordinate
//   - u2, v2: bottom-right texture coordinate
//   - rotate: whether the image is stored rotated 90 degrees in the page
func (r *Region) SetUVs(u, v, u2, v2 float32, rotate bool) {
	uvs := &r.uvs
	if rotate {
		uvs[X2], uvs[Y2] = u, v2
		uvs[X3], uvs[Y3] = u, v
		uvs[X4], uvs[Y4] = u2, v
		uvs[X1], uvs[Y1] = u2, v2
		return
	}
	uvs[X1], uvs[Y1] = u, v2
	uvs[X2], uvs[Y2] = u, v
	uvs[X3], uvs[Y3] = u2, v
	uvs[X4], uvs[Y4] = u2, v2
}

// UpdateOffset recomputes the bone-local corners from position, scale, rotation, size and
// the whitespace stripped when the image was packed.
func (r *Region) UpdateOffset() {
	width, height := r.Width, r.Height
	localX2 := width / 2
	localY2 := height / 2
	localX := -localX2
	localY := -localY2

	reg := r.Region
	if reg.OriginalWidth > 0 && reg.OriginalHeight > 0 {
		localX += reg.OffsetX / reg.OriginalWidth * width
		localY += reg.OffsetY / reg.OriginalHeight * height
		localX2 -= (reg.OriginalWidth - reg.OffsetX - reg.Width) / reg.OriginalWidth * width
		localY2 -= (reg.OriginalHeight - reg.OffsetY - reg.Height) / reg.OriginalHeight * height
	}

	localX *= r.ScaleX
	localY *= r.ScaleY
	localX2 *= r.ScaleX
	localY2 *= r.ScaleY

	cos, sin := common.CosSinDeg(r.Rotation)
	localXCos := localX*cos + r.X
	localXSin := localX * sin
	localYCos := localY*cos + r.Y
	localYSin := localY * sin
	localX2Cos := localX2*cos + r.X
	localX2Sin := localX2 * sin
	localY2Cos := localY2*cos + r.Y
	localY2Sin := localY2 * sin

	o := &r.offset
	o[X1] = localXCos - localYSin
	o[Y1] = localYCos + localXSin
	o[X2] = localXCos - localY2Sin
	o[Y2] = localY2Cos + localXSin
	o[X3] = localX2Cos - localY2Sin
	o[Y3] = localY2Cos + localX2Sin
	o[X4] = localX2Cos - localYSin
	o[Y4] = localYCos + localX2Sin
}

// Offset returns the bone-local corners computed by UpdateOffset.
func (r *Region) Offset() [8]float32 { return r.offset }

// UVs returns the corner texture coordinates.
func (r *Region) UVs() [8]float32 { return r.uvs }

// ComputeWorldVertices transforms the four corners by the bone's world transform.
//
// Parameters:
//   - x, y: skeleton position added to every vertex
//   - bone: the posed bone the slot hangs from
//   - out: destination, at least RegionVertexCount long
func (r *Region) ComputeWorldVertices(x, y float32, bone BonePose, out []float32) {
	m := bone.WorldMatrix()
	t := bone.WorldPosition()
	t[0] += x
	t[1] += y
	for i := 0; i < RegionVertexCount; i += 2 {
		out[i], out[i+1] = common.TransformPoint(m, t, r.offset[i], r.offset[i+1])
	}
}
