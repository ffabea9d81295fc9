package attachment

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

type testBone struct {
	m mgl32.Mat2
	t mgl32.Vec2
}

func (b testBone) WorldMatrix() mgl32.Mat2   { return b.m }
func (b testBone) WorldPosition() mgl32.Vec2 { return b.t }

type testBones []testBone

func (b testBones) BoneAt(i int) BonePose { return b[i] }

func identityBone(x, y float32) testBone {
	return testBone{m: mgl32.Ident2(), t: mgl32.Vec2{x, y}}
}

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-4
}

func assertFloats(t *testing.T, label string, got, want []float32) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s len got=%d want=%d", label, len(got), len(want))
	}
	for i := range want {
		if !near(got[i], want[i]) {
			t.Fatalf("%s[%d] got=%v want=%v (all got=%v)", label, i, got[i], want[i], got)
		}
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{KindRegion, KindBoundingBox, KindMesh, KindSkinnedMesh} {
		got, err := ParseKind(k.String())
		if err != nil || got != k {
			t.Fatalf("ParseKind(%q) got=%v,%v want=%v", k.String(), got, err, k)
		}
	}
	if _, err := ParseKind("linkedmesh"); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestRegionUpdateOffsetUnrotated(t *testing.T) {
	r := NewRegion("head")
	r.Width, r.Height = 10, 20
	r.UpdateOffset()
	o := r.Offset()
	assertFloats(t, "offset", o[:], []float32{-5, -10, -5, 10, 5, 10, 5, -10})
}

func TestRegionUpdateOffsetRotatedAndScaled(t *testing.T) {
	r := NewRegion("arm")
	r.Width, r.Height = 10, 20
	r.ScaleX = 2
	r.Rotation = 90
	r.X, r.Y = 1, 1
	r.UpdateOffset()
	o := r.Offset()
	// local corners (-10,-10) (-10,10) (10,10) (10,-10) rotated a quarter turn then shifted by (1,1)
	assertFloats(t, "offset", o[:], []float32{11, -9, -9, -9, -9, 11, 11, 11})
}

func TestRegionUpdateOffsetStrippedWhitespace(t *testing.T) {
	r := NewRegion("trimmed")
	r.Width, r.Height = 100, 100
	r.SetRegion(TextureRegion{U2: 1, V2: 1, OffsetX: 10, OffsetY: 20, Width: 50, Height: 60, OriginalWidth: 100, OriginalHeight: 100})
	r.UpdateOffset()
	o := r.Offset()
	// x spans [-50+10, -50+10+50], y spans [-50+20, -50+20+60]
	assertFloats(t, "offset", o[:], []float32{-40, -30, -40, 30, 10, 30, 10, -30})
}

func TestRegionComputeWorldVertices(t *testing.T) {
	r := NewRegion("head")
	r.Width, r.Height = 2, 2
	r.UpdateOffset()
	bone := testBone{m: mgl32.Mat2{0, 1, -1, 0}, t: mgl32.Vec2{10, 20}}
	out := make([]float32, RegionVertexCount)
	r.ComputeWorldVertices(5, 5, bone, out)
	// bottom-left (-1,-1) rotated a quarter turn is (1,-1)
	assertFloats(t, "world", out, []float32{16, 24, 14, 24, 14, 26, 16, 26})
}

func TestRegionSetUVsRotated(t *testing.T) {
	r := NewRegion("r")
	r.SetUVs(0.1, 0.2, 0.3, 0.4, true)
	uvs := r.UVs()
	assertFloats(t, "uvs", uvs[:], []float32{0.3, 0.4, 0.1, 0.4, 0.1, 0.2, 0.3, 0.2})
}

func TestMeshComputeWorldVerticesUsesMatchingDeform(t *testing.T) {
	m := NewMesh("body")
	m.Vertices = []float32{0, 0, 1, 0, 0, 1}
	out := make([]float32, 6)
	bone := identityBone(10, 0)

	m.ComputeWorldVertices(0, 0, bone, nil, out)
	assertFloats(t, "setup", out, []float32{10, 0, 11, 0, 10, 1})

	m.ComputeWorldVertices(0, 0, bone, []float32{1, 1, 2, 1, 1, 2}, out)
	assertFloats(t, "deformed", out, []float32{11, 1, 12, 1, 11, 2})

	m.ComputeWorldVertices(0, 0, bone, []float32{5, 5}, out)
	assertFloats(t, "short deform ignored", out, []float32{10, 0, 11, 0, 10, 1})
}

func TestMeshUpdateUVs(t *testing.T) {
	m := NewMesh("body")
	m.RegionUVs = []float32{0, 0, 1, 1}
	m.Region = TextureRegion{U: 0.5, V: 0.5, U2: 1, V2: 1}
	m.UpdateUVs()
	assertFloats(t, "uvs", m.UVs(), []float32{0.5, 0.5, 1, 1})

	m.Region.Rotate = true
	m.UpdateUVs()
	assertFloats(t, "rotated uvs", m.UVs(), []float32{0.5, 1, 1, 0.5})
}

func TestSkinnedMeshComputeWorldVertices(t *testing.T) {
	m := NewSkinnedMesh("cape")
	// vertex 0: two bones at half weight; vertex 1: bone 1 only
	m.Bones = []int{2, 0, 1, 1, 1}
	m.Weights = []float32{
		1, 0, 0.5,
		1, 0, 0.5,
		0, 2, 1,
	}
	m.RegionUVs = []float32{0, 0, 1, 1}
	if err := m.Validate(2); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	bones := testBones{identityBone(0, 0), identityBone(10, 0)}
	out := make([]float32, m.WorldVertexCount())
	m.ComputeWorldVertices(1, 1, bones, nil, out)
	assertFloats(t, "world", out, []float32{7, 1, 11, 3})

	withZero := make([]float32, m.WorldVertexCount())
	m.ComputeWorldVertices(1, 1, bones, make([]float32, m.VertexCount()), withZero)
	for i := range out {
		if out[i] != withZero[i] {
			t.Fatalf("zero deform changed vertex %d got=%v want=%v", i, withZero[i], out[i])
		}
	}

	deform := []float32{0, 2, 0, 2, 0, 0}
	m.ComputeWorldVertices(0, 0, bones, deform, out)
	assertFloats(t, "deformed", out, []float32{6, 2, 10, 2})
}

func TestSkinnedMeshValidate(t *testing.T) {
	m := NewSkinnedMesh("bad")
	m.Bones = []int{1, 3}
	m.Weights = []float32{0, 0, 1}
	if err := m.Validate(2); !errors.Is(err, ErrInvalidWeights) || !errors.Is(err, ErrUnknownBone) {
		t.Fatalf("expected bone range error, got %v", err)
	}
	m.Bones = []int{2, 0}
	if err := m.Validate(2); !errors.Is(err, ErrInvalidWeights) {
		t.Fatalf("expected overrun error, got %v", err)
	}
	m.Bones = []int{1, 0}
	m.Weights = []float32{0, 0}
	if err := m.Validate(2); !errors.Is(err, ErrInvalidWeights) {
		t.Fatalf("expected weight count error, got %v", err)
	}
	m.Bones = []int{1, 0, 1, 1}
	m.Weights = []float32{0, 0, 1, 0, 0, 1}
	m.RegionUVs = []float32{0, 0}
	err := m.Validate(2)
	if !errors.Is(err, ErrInvalidWeights) || errors.Is(err, ErrUnknownBone) {
		t.Fatalf("expected vertex count error, got %v", err)
	}
	m.RegionUVs = []float32{0, 0, 1, 1}
	if err := m.Validate(2); err != nil {
		t.Fatalf("matching table rejected: %v", err)
	}
}

func TestSkinnedMeshIgnoresMismatchedDeform(t *testing.T) {
	m := NewSkinnedMesh("cape")
	m.Bones = []int{1, 0, 1, 1}
	m.Weights = []float32{1, 0, 1, 0, 2, 1}
	m.RegionUVs = []float32{0, 0, 1, 1}
	bones := testBones{identityBone(0, 0), identityBone(10, 0)}

	want := make([]float32, m.WorldVertexCount())
	m.ComputeWorldVertices(0, 0, bones, nil, want)
	got := make([]float32, m.WorldVertexCount())
	m.ComputeWorldVertices(0, 0, bones, []float32{5, 5}, got)
	assertFloats(t, "short deform", got, want)
}

func TestUnpackWeights(t *testing.T) {
	packed := []float32{2, 0, 1, 2, 0.25, 3, 4, 6, 0.75, 1, 1, 10, 10, 1}
	bones, weights, err := UnpackWeights(packed, 2)
	if err != nil {
		t.Fatalf("UnpackWeights: %v", err)
	}
	wantBones := []int{2, 0, 3, 1, 1}
	if len(bones) != len(wantBones) {
		t.Fatalf("bones got=%v want=%v", bones, wantBones)
	}
	for i := range wantBones {
		if bones[i] != wantBones[i] {
			t.Fatalf("bones got=%v want=%v", bones, wantBones)
		}
	}
	assertFloats(t, "weights", weights, []float32{2, 4, 0.25, 8, 12, 0.75, 20, 20, 1})

	b1, w1, _ := UnpackWeights(packed, 1)
	assertFloats(t, "repacked", PackWeights(b1, w1), packed)

	if _, _, err := UnpackWeights([]float32{2, 0, 1, 2, 0.25}, 1); !errors.Is(err, ErrInvalidWeights) {
		t.Fatalf("expected truncated table error, got %v", err)
	}
}

func TestBoundingBoxComputeWorldVertices(t *testing.T) {
	b := NewBoundingBox("hit")
	b.Vertices = []float32{0, 0, 4, 0, 4, 4}
	out := make([]float32, 6)
	b.ComputeWorldVertices(1, 2, identityBone(3, 3), out)
	assertFloats(t, "world", out, []float32{4, 5, 8, 5, 8, 9})
}

func TestAtlasFactory(t *testing.T) {
	atlas := AtlasRegions{"images/head": {U: 0.25, V: 0.5, U2: 0.5, V2: 1, Width: 8, Height: 8, OriginalWidth: 8, OriginalHeight: 8}}
	f := NewAtlasFactory(WithAtlas(atlas))

	r, err := f.NewRegion("default", "head", "images/head")
	if err != nil || r == nil {
		t.Fatalf("NewRegion got=%v,%v", r, err)
	}
	uvs := r.UVs()
	assertFloats(t, "uvs", uvs[:], []float32{0.25, 1, 0.25, 0.5, 0.5, 0.5, 0.5, 1})

	if _, err := f.NewMesh("default", "body", "images/body"); !errors.Is(err, ErrRegionNotFound) {
		t.Fatalf("expected ErrRegionNotFound, got %v", err)
	}

	skip := NewAtlasFactory(WithAtlas(atlas), WithSkipMissing())
	m, err := skip.NewMesh("default", "body", "images/body")
	if err != nil || m != nil {
		t.Fatalf("skip missing got=%v,%v want=nil,nil", m, err)
	}
}

func TestDefaultFactoryKeepsPath(t *testing.T) {
	f := NewDefaultFactory()
	m, err := f.NewSkinnedMesh("default", "cape", "cloth/cape")
	if err != nil {
		t.Fatalf("NewSkinnedMesh: %v", err)
	}
	if m.Name() != "cape" || m.Path != "cloth/cape" || m.Kind() != KindSkinnedMesh {
		t.Fatalf("got name=%q path=%q kind=%v", m.Name(), m.Path, m.Kind())
	}
}
