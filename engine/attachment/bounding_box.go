package attachment

// BoundingBox is an untextured polygon used for hit detection.
type BoundingBox struct {
	name string

	// Vertices holds bone-local x,y pairs.
	Vertices []float32
}

var _ Attachment = &BoundingBox{}

// NewBoundingBox creates an empty bounding box attachment.
//
// Parameters:
//   - name: the attachment name
//
// Returns:
//   - *BoundingBox: the new bounding box
func NewBoundingBox(name string) *BoundingBox {
	return &BoundingBox{name: name}
}

func (b *BoundingBox) Name() string { return b.name }

func (b *BoundingBox) Kind() Kind { return KindBoundingBox }

func (b *BoundingBox) sealed() {}

// ComputeWorldVertices transforms the polygon by the bone's world transform.
//
// Parameters:
//   - x, y: skeleton position added to every vertex
//   - bone: the posed bone the slot hangs from
//   - out: destination, at least len(Vertices) long
func (b *BoundingBox) ComputeWorldVertices(x, y float32, bone BonePose, out []float32) {
	transformVertices(x, y, bone, b.Vertices, out)
}
