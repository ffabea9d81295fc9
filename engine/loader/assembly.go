package loader

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-rig/common"
	"github.com/Carmen-Shannon/oxy-rig/engine/attachment"
	"github.com/Carmen-Shannon/oxy-rig/engine/skeleton"
)

// Defaults applied by both formats when a value is absent.
const (
	defaultRegionWidth  float32 = 32
	defaultRegionHeight float32 = 32
	defaultAttachment           = attachment.KindRegion
	curveStepped                = "stepped"
	curveLinear                 = "linear"
)

// Binary curve and timeline type codes.
const (
	binaryCurveLinear  = 0
	binaryCurveStepped = 1
	binaryCurveBezier  = 2

	binaryTimelineScale      = 0
	binaryTimelineRotate     = 1
	binaryTimelineTranslate  = 2
	binaryTimelineAttachment = 3
	binaryTimelineColor      = 4
)

// classifyBuildError maps skeleton builder failures onto the load error taxonomy.
func classifyBuildError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, skeleton.ErrBadIndex):
		return fmt.Errorf("%w: %w", ErrReference, err)
	case errors.Is(err, skeleton.ErrDuplicateName), errors.Is(err, skeleton.ErrInvalidDrawOrder):
		return fmt.Errorf("%w: %w", ErrFormat, err)
	}
	return err
}

// factoryError reports an attachment factory failure as an unresolved reference.
func factoryError(kind attachment.Kind, name string, err error) error {
	return fmt.Errorf("%w: %s attachment %q: %w", ErrReference, kind, name, err)
}

func checkIndex(what string, index, count int) error {
	if index < 0 || index >= count {
		return referenceErrorf("%s index %d out of range [0,%d)", what, index, count)
	}
	return nil
}

func checkFrameCount(frameCount int) error {
	if frameCount < 1 {
		return formatErrorf("timeline has no frames")
	}
	return nil
}

// weightTable accumulates a skinned mesh's influences vertex by vertex.
type weightTable struct {
	bones   []int
	weights []float32
}

func (w *weightTable) vertex(influences int) {
	w.bones = append(w.bones, influences)
}

func (w *weightTable) influence(bone int, x, y, weight float32) {
	w.bones = append(w.bones, bone)
	w.weights = append(w.weights, x, y, weight)
}

// regionFields are the decoded values of a region attachment.
type regionFields struct {
	x, y, scaleX, scaleY, rotation, width, height float32
	color                                         common.Color
}

// meshMetadata holds the editor-only values of a mesh.
type meshMetadata struct {
	hullLength    int
	edges         []int
	width, height float32
}

func newRegion(f attachment.Factory, skin, name, path string, v regionFields) (attachment.Attachment, error) {
	r, err := f.NewRegion(skin, name, path)
	if err != nil {
		return nil, factoryError(attachment.KindRegion, name, err)
	}
	if r == nil {
		return nil, nil
	}
	r.Path = path
	r.X, r.Y = v.x, v.y
	r.ScaleX, r.ScaleY = v.scaleX, v.scaleY
	r.Rotation = v.rotation
	r.Width, r.Height = v.width, v.height
	r.Color = v.color
	r.UpdateOffset()
	return r, nil
}

func newBoundingBox(f attachment.Factory, skin, name string, vertices []float32) (attachment.Attachment, error) {
	b, err := f.NewBoundingBox(skin, name)
	if err != nil {
		return nil, factoryError(attachment.KindBoundingBox, name, err)
	}
	if b == nil {
		return nil, nil
	}
	b.Vertices = vertices
	return b, nil
}

func newMesh(f attachment.Factory, skin, name, path string, uvs, vertices []float32, triangles []uint16,
	color common.Color, meta *meshMetadata) (attachment.Attachment, error) {
	m, err := f.NewMesh(skin, name, path)
	if err != nil {
		return nil, factoryError(attachment.KindMesh, name, err)
	}
	if m == nil {
		return nil, nil
	}
	m.Path = path
	m.Vertices = vertices
	m.Triangles = triangles
	m.RegionUVs = uvs
	m.UpdateUVs()
	m.Color = color
	if meta != nil {
		m.HullLength, m.Edges, m.Width, m.Height = meta.hullLength, meta.edges, meta.width, meta.height
	}
	return m, nil
}

func newSkinnedMesh(f attachment.Factory, skin, name, path string, uvs []float32, table weightTable, triangles []uint16,
	color common.Color, meta *meshMetadata, boneCount int) (attachment.Attachment, error) {
	m, err := f.NewSkinnedMesh(skin, name, path)
	if err != nil {
		return nil, factoryError(attachment.KindSkinnedMesh, name, err)
	}
	if m == nil {
		return nil, nil
	}
	m.Path = path
	m.Bones = table.bones
	m.Weights = table.weights
	m.Triangles = triangles
	m.RegionUVs = uvs
	if err := m.Validate(boneCount); err != nil {
		if errors.Is(err, attachment.ErrUnknownBone) {
			return nil, fmt.Errorf("%w: skinned mesh %q: %w", ErrReference, name, err)
		}
		return nil, fmt.Errorf("%w: skinned mesh %q: %w", ErrFormat, name, err)
	}
	m.UpdateUVs()
	m.Color = color
	if meta != nil {
		m.HullLength, m.Edges, m.Width, m.Height = meta.hullLength, meta.edges, meta.width, meta.height
	}
	return m, nil
}

// ffdTarget describes the attachment an FFD timeline deforms.
type ffdTarget struct {
	attachment  attachment.Attachment
	vertexCount int
	// base is shared by frames that carry no vertices: the mesh's own vertices, or one
	// zeroed array for skinned meshes.
	base []float32
	mesh *attachment.Mesh
}

func newFFDTarget(a attachment.Attachment) (*ffdTarget, error) {
	switch m := a.(type) {
	case *attachment.Mesh:
		return &ffdTarget{attachment: a, vertexCount: m.VertexCount(), base: m.Vertices, mesh: m}, nil
	case *attachment.SkinnedMesh:
		n := m.VertexCount()
		return &ffdTarget{attachment: a, vertexCount: n, base: make([]float32, n)}, nil
	}
	return nil, formatErrorf("FFD target %q is a %s, not a mesh", a.Name(), a.Kind())
}

// frame expands a sparse run of scaled offsets starting at start into a full vertex array.
// Mesh frames are absolute: the mesh's vertices are added to every element.
func (t *ffdTarget) frame(start int, values []float32) ([]float32, error) {
	if start < 0 || start+len(values) > t.vertexCount {
		return nil, formatErrorf("FFD range [%d,%d) exceeds %d vertices of %q", start, start+len(values), t.vertexCount, t.attachment.Name())
	}
	vertices := make([]float32, t.vertexCount)
	copy(vertices[start:], values)
	if t.mesh != nil {
		for i, v := range t.mesh.Vertices {
			vertices[i] += v
		}
	}
	return vertices, nil
}
