package skeleton

import (
	"github.com/Carmen-Shannon/oxy-rig/common"
	"github.com/Carmen-Shannon/oxy-rig/engine/attachment"
	"github.com/go-gl/mathgl/mgl32"
)

// Bone is the posed instance of a BoneData.
type Bone struct {
	data   *BoneData `copy:"-"`
	parent *Bone     `copy:"-"`

	// Local transform, relative to the parent.
	X        float32
	Y        float32
	Rotation float32
	ScaleX   float32
	ScaleY   float32

	world         mgl32.Vec2
	matrix        mgl32.Mat2
	worldRotation float32
	worldScaleX   float32
	worldScaleY   float32
}

var _ attachment.BonePose = &Bone{}

func newBone(data *BoneData, parent *Bone) *Bone {
	b := &Bone{data: data, parent: parent, matrix: mgl32.Ident2()}
	b.SetToSetupPose()
	return b
}

func (b *Bone) Data() *BoneData { return b.data }

// Parent returns the parent bone, or nil for a root.
func (b *Bone) Parent() *Bone { return b.parent }

// SetToSetupPose resets the local transform to the bone data.
func (b *Bone) SetToSetupPose() {
	d := b.data
	b.X = d.X
	b.Y = d.Y
	b.Rotation = d.Rotation
	b.ScaleX = d.ScaleX
	b.ScaleY = d.ScaleY
}

// UpdateWorldTransform computes the world transform from the local transform and the parent's
// world transform. The parent must already be up to date.
//
// Parameters:
//   - flipX: mirror horizontally
//   - flipY: mirror vertically
//   - yDown: the target coordinate system has y pointing down
func (b *Bone) UpdateWorldTransform(flipX, flipY, yDown bool) {
	flipV := flipY != yDown
	if p := b.parent; p != nil {
		b.world[0], b.world[1] = common.TransformPoint(p.matrix, p.world, b.X, b.Y)
		if b.data.InheritScale {
			b.worldScaleX = p.worldScaleX * b.ScaleX
			b.worldScaleY = p.worldScaleY * b.ScaleY
		} else {
			b.worldScaleX = b.ScaleX
			b.worldScaleY = b.ScaleY
		}
		if b.data.InheritRotation {
			b.worldRotation = p.worldRotation + b.Rotation
		} else {
			b.worldRotation = b.Rotation
		}
	} else {
		b.world[0] = b.X
		if flipX {
			b.world[0] = -b.X
		}
		b.world[1] = b.Y
		if flipV {
			b.world[1] = -b.Y
		}
		b.worldScaleX = b.ScaleX
		b.worldScaleY = b.ScaleY
		b.worldRotation = b.Rotation
	}

	cos, sin := common.CosSinDeg(b.worldRotation)
	m00 := cos * b.worldScaleX
	m10 := sin * b.worldScaleX
	m01 := -sin * b.worldScaleY
	m11 := cos * b.worldScaleY
	if flipX {
		m00 = -m00
		m01 = -m01
	}
	if flipV {
		m10 = -m10
		m11 = -m11
	}
	b.matrix = mgl32.Mat2{m00, m10, m01, m11}
}

// WorldMatrix returns the column-major world rotation and scale.
func (b *Bone) WorldMatrix() mgl32.Mat2 { return b.matrix }

// WorldPosition returns the world translation.
func (b *Bone) WorldPosition() mgl32.Vec2 { return b.world }

func (b *Bone) WorldX() float32 { return b.world[0] }

func (b *Bone) WorldY() float32 { return b.world[1] }

func (b *Bone) WorldRotation() float32 { return b.worldRotation }

func (b *Bone) WorldScaleX() float32 { return b.worldScaleX }

func (b *Bone) WorldScaleY() float32 { return b.worldScaleY }

// LocalToWorld transforms a point from bone space to world space.
func (b *Bone) LocalToWorld(x, y float32) (float32, float32) {
	return common.TransformPoint(b.matrix, b.world, x, y)
}

// WorldToLocal transforms a world point into bone space. A degenerate matrix yields the
// translated point unchanged.
func (b *Bone) WorldToLocal(x, y float32) (float32, float32) {
	dx, dy := x-b.world[0], y-b.world[1]
	if b.matrix.Det() == 0 {
		return dx, dy
	}
	local := b.matrix.Inv().Mul2x1(mgl32.Vec2{dx, dy})
	return local[0], local[1]
}

func (b *Bone) String() string { return b.data.Name }
