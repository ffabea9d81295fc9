package skeleton

import (
	"github.com/Carmen-Shannon/oxy-rig/engine/attachment"
)

type skinKey struct {
	slotIndex int
	name      string
}

// SkinEntry is one attachment placed in a skin.
type SkinEntry struct {
	SlotIndex  int
	Name       string
	Attachment attachment.Attachment
}

// Skin maps (slot index, attachment name) pairs to attachments.
type Skin struct {
	name        string
	attachments map[skinKey]attachment.Attachment
	order       []skinKey
}

// NewSkin creates an empty skin.
func NewSkin(name string) *Skin {
	return &Skin{name: name, attachments: make(map[skinKey]attachment.Attachment)}
}

func (s *Skin) Name() string { return s.name }

// Len returns the number of attachments in the skin.
func (s *Skin) Len() int { return len(s.order) }

// AddAttachment places an attachment under a slot and name. A later add for the same
// key replaces the earlier attachment but keeps its position.
func (s *Skin) AddAttachment(slotIndex int, name string, a attachment.Attachment) {
	key := skinKey{slotIndex: slotIndex, name: name}
	if _, ok := s.attachments[key]; !ok {
		s.order = append(s.order, key)
	}
	s.attachments[key] = a
}

// GetAttachment returns the attachment stored under a slot and name, or nil.
func (s *Skin) GetAttachment(slotIndex int, name string) attachment.Attachment {
	return s.attachments[skinKey{slotIndex: slotIndex, name: name}]
}

// Attachments lists the entries in the order they were added.
func (s *Skin) Attachments() []SkinEntry {
	out := make([]SkinEntry, len(s.order))
	for i, key := range s.order {
		out[i] = SkinEntry{SlotIndex: key.slotIndex, Name: key.name, Attachment: s.attachments[key]}
	}
	return out
}

// AttachAll moves slots off an old skin: every slot whose current attachment is the old
// skin's entry for some name gets this skin's attachment of the same name, if it has one.
func (s *Skin) AttachAll(skel *Skeleton, old *Skin) {
	for _, key := range old.order {
		slot := skel.slots[key.slotIndex]
		if slot.attachment != old.attachments[key] {
			continue
		}
		if a := s.GetAttachment(key.slotIndex, key.name); a != nil {
			slot.SetAttachment(a)
		}
	}
}

func (s *Skin) String() string { return s.name }
