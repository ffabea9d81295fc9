package skeleton

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-rig/common"
	"github.com/Carmen-Shannon/oxy-rig/engine/attachment"
	"github.com/tiendc/go-deepcopy"
)

var (
	// ErrSlotNotFound is returned when a slot name does not exist in the skeleton.
	ErrSlotNotFound = errors.New("slot not found")
	// ErrSkinNotFound is returned when a skin name does not exist in the skeleton data.
	ErrSkinNotFound = errors.New("skin not found")
	// ErrAttachmentNotFound is returned when no skin provides the requested attachment.
	ErrAttachmentNotFound = errors.New("attachment not found")
)

// Skeleton is a posed instance of a SkeletonData. It is not safe for concurrent use;
// many skeletons may share one SkeletonData.
type Skeleton struct {
	data      *SkeletonData
	bones     []*Bone
	slots     []*Slot
	drawOrder []*Slot
	skin      *Skin
	time      float32

	Color common.Color
	// X and Y offset every world vertex.
	X     float32
	Y     float32
	FlipX bool
	FlipY bool
	// YDown flips the vertical axis for coordinate systems where y grows downward.
	YDown bool
}

var _ attachment.BoneLookup = &Skeleton{}

// NewSkeleton instantiates a skeleton in its setup pose.
//
// Parameters:
//   - data: the skeleton definition, must not be nil
//
// Returns:
//   - *Skeleton: the new skeleton
func NewSkeleton(data *SkeletonData) *Skeleton {
	if data == nil {
		panic("skeleton: data cannot be nil")
	}
	s := &Skeleton{data: data, Color: common.White}

	s.bones = make([]*Bone, len(data.bones))
	for i, bd := range data.bones {
		var parent *Bone
		if bd.ParentIndex >= 0 {
			parent = s.bones[bd.ParentIndex]
		}
		s.bones[i] = newBone(bd, parent)
	}

	s.slots = make([]*Slot, len(data.slots))
	for i, sd := range data.slots {
		s.slots[i] = newSlot(sd, i, s, s.bones[sd.BoneIndex])
	}
	s.drawOrder = make([]*Slot, len(s.slots))
	copy(s.drawOrder, s.slots)

	s.SetSlotsToSetupPose()
	s.UpdateWorldTransform()
	return s
}

// Copy returns an independent skeleton with the same pose, skin, draw order and clock.
// Bone and slot state, deform buffers included, is deep-copied; definitions and
// attachments stay shared.
//
// Returns:
//   - *Skeleton: the copy
//   - error: error if a bone or slot cannot be copied
func (s *Skeleton) Copy() (*Skeleton, error) {
	c := &Skeleton{
		data:  s.data,
		skin:  s.skin,
		time:  s.time,
		Color: s.Color,
		X:     s.X,
		Y:     s.Y,
		FlipX: s.FlipX,
		FlipY: s.FlipY,
		YDown: s.YDown,
	}

	c.bones = make([]*Bone, len(s.bones))
	for i, b := range s.bones {
		nb := &Bone{data: b.data}
		if err := deepcopy.Copy(nb, b); err != nil {
			return nil, fmt.Errorf("copy bone %s: %w", b.data.Name, err)
		}
		if b.parent != nil {
			nb.parent = c.bones[b.data.ParentIndex]
		}
		c.bones[i] = nb
	}

	c.slots = make([]*Slot, len(s.slots))
	for i, sl := range s.slots {
		ns := &Slot{
			data:       sl.data,
			bone:       c.bones[sl.data.BoneIndex],
			skeleton:   c,
			attachment: sl.attachment,
		}
		if err := deepcopy.Copy(ns, sl); err != nil {
			return nil, fmt.Errorf("copy slot %s: %w", sl.data.Name, err)
		}
		c.slots[i] = ns
	}

	c.drawOrder = make([]*Slot, len(s.drawOrder))
	for i, sl := range s.drawOrder {
		c.drawOrder[i] = c.slots[sl.index]
	}
	return c, nil
}

func (s *Skeleton) Data() *SkeletonData { return s.data }

// Bones returns the posed bones in definition order.
func (s *Skeleton) Bones() []*Bone { return s.bones }

// BoneAt returns the bone at index as a pose for vertex computation.
func (s *Skeleton) BoneAt(index int) attachment.BonePose { return s.bones[index] }

// RootBone returns the first bone, or nil for an empty skeleton.
func (s *Skeleton) RootBone() *Bone {
	if len(s.bones) == 0 {
		return nil
	}
	return s.bones[0]
}

// Slots returns the posed slots in setup order.
func (s *Skeleton) Slots() []*Slot { return s.slots }

// DrawOrder returns the slots in the order they should be drawn.
func (s *Skeleton) DrawOrder() []*Slot { return s.drawOrder }

// Skin returns the active skin, or nil.
func (s *Skeleton) Skin() *Skin { return s.skin }

// Time returns the skeleton clock advanced by Update.
func (s *Skeleton) Time() float32 { return s.time }

// SetTime sets the skeleton clock.
func (s *Skeleton) SetTime(t float32) { s.time = t }

// Update advances the skeleton clock.
func (s *Skeleton) Update(delta float32) { s.time += delta }

// FindBone returns the named bone, or nil.
func (s *Skeleton) FindBone(name string) *Bone {
	if i := s.data.FindBoneIndex(name); i >= 0 {
		return s.bones[i]
	}
	return nil
}

// FindSlot returns the named slot, or nil.
func (s *Skeleton) FindSlot(name string) *Slot {
	if i := s.data.FindSlotIndex(name); i >= 0 {
		return s.slots[i]
	}
	return nil
}

// UpdateWorldTransform recomputes every bone's world transform, parents first.
func (s *Skeleton) UpdateWorldTransform() {
	for _, b := range s.bones {
		b.UpdateWorldTransform(s.FlipX, s.FlipY, s.YDown)
	}
}

// SetToSetupPose resets bones, slots and draw order to the setup pose.
func (s *Skeleton) SetToSetupPose() {
	s.SetBonesToSetupPose()
	s.SetSlotsToSetupPose()
}

// SetBonesToSetupPose resets every bone's local transform.
func (s *Skeleton) SetBonesToSetupPose() {
	for _, b := range s.bones {
		b.SetToSetupPose()
	}
}

// SetSlotsToSetupPose resets draw order, slot colors and slot attachments.
func (s *Skeleton) SetSlotsToSetupPose() {
	copy(s.drawOrder, s.slots)
	for _, sl := range s.slots {
		sl.SetToSetupPose()
	}
}

// SetSkin switches the active skin. Slots showing an attachment from the previous skin get the
// new skin's attachment of the same name. With no previous skin, slots pick up the new skin's
// entry for their setup attachment name.
//
// Parameters:
//   - skin: the new skin, or nil to use only the default skin
func (s *Skeleton) SetSkin(skin *Skin) {
	if skin != nil {
		if s.skin != nil {
			skin.AttachAll(s, s.skin)
		} else {
			for i, sl := range s.slots {
				name := sl.data.AttachmentName
				if name == "" {
					continue
				}
				if a := skin.GetAttachment(i, name); a != nil {
					sl.SetAttachment(a)
				}
			}
		}
	}
	s.skin = skin
}

// SetSkinByName switches the active skin by name.
//
// Parameters:
//   - name: the skin name
//
// Returns:
//   - error: ErrSkinNotFound (wrapped) if the data has no such skin
func (s *Skeleton) SetSkinByName(name string) error {
	skin := s.data.FindSkin(name)
	if skin == nil {
		return fmt.Errorf("%w: %q", ErrSkinNotFound, name)
	}
	s.SetSkin(skin)
	return nil
}

// GetAttachment looks up an attachment in the active skin, then in the default skin.
//
// Parameters:
//   - slotIndex: the slot index
//   - name: the attachment name
//
// Returns:
//   - attachment.Attachment: the attachment, or nil
func (s *Skeleton) GetAttachment(slotIndex int, name string) attachment.Attachment {
	if s.skin != nil {
		if a := s.skin.GetAttachment(slotIndex, name); a != nil {
			return a
		}
	}
	if d := s.data.defaultSkin; d != nil {
		return d.GetAttachment(slotIndex, name)
	}
	return nil
}

// GetAttachmentByName looks up an attachment by slot name.
func (s *Skeleton) GetAttachmentByName(slotName, name string) attachment.Attachment {
	i := s.data.FindSlotIndex(slotName)
	if i < 0 {
		return nil
	}
	return s.GetAttachment(i, name)
}

// SetAttachment shows an attachment in a slot. An empty attachment name clears the slot.
//
// Parameters:
//   - slotName: the slot name
//   - attachmentName: the attachment name, or empty
//
// Returns:
//   - error: ErrSlotNotFound or ErrAttachmentNotFound (wrapped)
func (s *Skeleton) SetAttachment(slotName, attachmentName string) error {
	i := s.data.FindSlotIndex(slotName)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrSlotNotFound, slotName)
	}
	if attachmentName == "" {
		s.slots[i].SetAttachment(nil)
		return nil
	}
	a := s.GetAttachment(i, attachmentName)
	if a == nil {
		return fmt.Errorf("%w: %q in slot %q", ErrAttachmentNotFound, attachmentName, slotName)
	}
	s.slots[i].SetAttachment(a)
	return nil
}

func (s *Skeleton) String() string { return s.data.name }
