package skeleton

import (
	"github.com/Carmen-Shannon/oxy-rig/common"
	"github.com/Carmen-Shannon/oxy-rig/engine/attachment"
)

// Slot is the posed instance of a SlotData.
type Slot struct {
	data     *SlotData `copy:"-"`
	index    int
	bone     *Bone     `copy:"-"`
	skeleton *Skeleton `copy:"-"`

	Color common.Color

	attachment     attachment.Attachment `copy:"-"`
	attachmentTime float32
	// deform holds FFD output for the current attachment; empty when none is active.
	deform []float32
}

func newSlot(data *SlotData, index int, skel *Skeleton, bone *Bone) *Slot {
	return &Slot{data: data, index: index, bone: bone, skeleton: skel, Color: data.Color}
}

func (s *Slot) Data() *SlotData { return s.data }

// Index returns the slot's position in the skeleton's setup order.
func (s *Slot) Index() int { return s.index }

func (s *Slot) Bone() *Bone { return s.bone }

func (s *Slot) Skeleton() *Skeleton { return s.skeleton }

// Attachment returns the current attachment, or nil.
func (s *Slot) Attachment() attachment.Attachment { return s.attachment }

// SetAttachment swaps the attachment, restarting the attachment clock and clearing the deform buffer.
func (s *Slot) SetAttachment(a attachment.Attachment) {
	s.attachment = a
	s.attachmentTime = s.skeleton.time
	s.deform = s.deform[:0]
}

// AttachmentTime returns how long the current attachment has been shown, in skeleton time.
func (s *Slot) AttachmentTime() float32 { return s.skeleton.time - s.attachmentTime }

// SetAttachmentTime sets how long the current attachment has been shown.
func (s *Slot) SetAttachmentTime(t float32) { s.attachmentTime = s.skeleton.time - t }

// AttachmentVertices returns the deform buffer written by FFD timelines.
func (s *Slot) AttachmentVertices() []float32 { return s.deform }

// SetAttachmentVertices replaces the deform buffer.
func (s *Slot) SetAttachmentVertices(vertices []float32) { s.deform = vertices }

// deformBuffer resizes the deform buffer to n floats, reusing its storage when possible.
func (s *Slot) deformBuffer(n int) []float32 {
	if cap(s.deform) < n {
		grown := make([]float32, n)
		copy(grown, s.deform)
		s.deform = grown
	}
	s.deform = s.deform[:n]
	return s.deform
}

// SetToSetupPose restores the setup color and attachment.
func (s *Slot) SetToSetupPose() {
	s.Color = s.data.Color
	if s.data.AttachmentName == "" {
		s.SetAttachment(nil)
		return
	}
	s.SetAttachment(s.skeleton.GetAttachment(s.index, s.data.AttachmentName))
}

// WorldVertexCount returns the number of floats ComputeWorldVertices writes for the current attachment.
func (s *Slot) WorldVertexCount() int {
	switch a := s.attachment.(type) {
	case *attachment.Region:
		return attachment.RegionVertexCount
	case *attachment.BoundingBox:
		return len(a.Vertices)
	case *attachment.Mesh:
		return a.VertexCount()
	case *attachment.SkinnedMesh:
		return a.WorldVertexCount()
	}
	return 0
}

// ComputeWorldVertices writes the current attachment's world-space vertices into out,
// growing it as needed.
//
// Parameters:
//   - out: destination buffer, may be nil
//
// Returns:
//   - []float32: the vertices as x,y pairs; empty when the slot has no attachment
func (s *Slot) ComputeWorldVertices(out []float32) []float32 {
	n := s.WorldVertexCount()
	if cap(out) < n {
		out = make([]float32, n)
	}
	out = out[:n]
	x, y := s.skeleton.X, s.skeleton.Y
	switch a := s.attachment.(type) {
	case *attachment.Region:
		a.ComputeWorldVertices(x, y, s.bone, out)
	case *attachment.BoundingBox:
		a.ComputeWorldVertices(x, y, s.bone, out)
	case *attachment.Mesh:
		a.ComputeWorldVertices(x, y, s.bone, s.deform, out)
	case *attachment.SkinnedMesh:
		a.ComputeWorldVertices(x, y, s.skeleton, s.deform, out)
	}
	return out
}

func (s *Slot) String() string { return s.data.Name }
