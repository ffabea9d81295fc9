package skeleton

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateName is returned when a builder receives a second entry with an existing name.
	ErrDuplicateName = errors.New("duplicate name")
	// ErrBadIndex is returned when a builder receives an index that does not refer to an earlier entry.
	ErrBadIndex = errors.New("index out of range")
)

// DefaultSkinName is the name of the fallback skin.
const DefaultSkinName = "default"

// SkeletonData is the immutable definition shared by every Skeleton posed from it.
// It is safe for concurrent reads once built.
type SkeletonData struct {
	name        string
	bones       []*BoneData
	slots       []*SlotData
	skins       []*Skin
	defaultSkin *Skin
	events      []*EventData
	animations  []*Animation

	boneIndex      map[string]int
	slotIndex      map[string]int
	skinIndex      map[string]int
	eventIndex     map[string]int
	animationIndex map[string]int
}

func (d *SkeletonData) Name() string { return d.name }

// Bones returns the bone definitions, parents before children.
func (d *SkeletonData) Bones() []*BoneData { return d.bones }

// Slots returns the slot definitions in setup draw order.
func (d *SkeletonData) Slots() []*SlotData { return d.slots }

// Skins returns every skin, including the default skin when present.
func (d *SkeletonData) Skins() []*Skin { return d.skins }

// DefaultSkin returns the fallback skin, or nil.
func (d *SkeletonData) DefaultSkin() *Skin { return d.defaultSkin }

func (d *SkeletonData) Events() []*EventData { return d.events }

func (d *SkeletonData) Animations() []*Animation { return d.animations }

// FindBoneIndex returns the index of the named bone, or -1.
func (d *SkeletonData) FindBoneIndex(name string) int { return lookup(d.boneIndex, name) }

// FindBone returns the named bone, or nil.
func (d *SkeletonData) FindBone(name string) *BoneData {
	if i := d.FindBoneIndex(name); i >= 0 {
		return d.bones[i]
	}
	return nil
}

// FindSlotIndex returns the index of the named slot, or -1.
func (d *SkeletonData) FindSlotIndex(name string) int { return lookup(d.slotIndex, name) }

// FindSlot returns the named slot, or nil.
func (d *SkeletonData) FindSlot(name string) *SlotData {
	if i := d.FindSlotIndex(name); i >= 0 {
		return d.slots[i]
	}
	return nil
}

// FindSkin returns the named skin, or nil.
func (d *SkeletonData) FindSkin(name string) *Skin {
	if i := lookup(d.skinIndex, name); i >= 0 {
		return d.skins[i]
	}
	return nil
}

// FindEvent returns the named event, or nil.
func (d *SkeletonData) FindEvent(name string) *EventData {
	if i := lookup(d.eventIndex, name); i >= 0 {
		return d.events[i]
	}
	return nil
}

// FindAnimation returns the named animation, or nil.
func (d *SkeletonData) FindAnimation(name string) *Animation {
	if i := lookup(d.animationIndex, name); i >= 0 {
		return d.animations[i]
	}
	return nil
}

func (d *SkeletonData) String() string {
	return fmt.Sprintf("SkeletonData(%s: %d bones, %d slots, %d skins, %d events, %d animations)",
		d.name, len(d.bones), len(d.slots), len(d.skins), len(d.events), len(d.animations))
}

func lookup(index map[string]int, name string) int {
	if i, ok := index[name]; ok {
		return i
	}
	return -1
}

// DataBuilder assembles a SkeletonData. Entries must be added in dependency order:
// bones (parents first), slots, skins, events, then animations.
type DataBuilder struct {
	data *SkeletonData
}

// NewDataBuilder starts a new skeleton definition.
//
// Parameters:
//   - name: the skeleton name
//
// Returns:
//   - *DataBuilder: the builder
func NewDataBuilder(name string) *DataBuilder {
	return &DataBuilder{data: &SkeletonData{
		name:           name,
		boneIndex:      make(map[string]int),
		slotIndex:      make(map[string]int),
		skinIndex:      make(map[string]int),
		eventIndex:     make(map[string]int),
		animationIndex: make(map[string]int),
	}}
}

// Data exposes the definition under construction for lookups during assembly.
func (b *DataBuilder) Data() *SkeletonData { return b.data }

// AddBone appends a bone. Its parent must already be present.
//
// Parameters:
//   - bone: the bone data
//
// Returns:
//   - int: the bone's index
//   - error: ErrDuplicateName or ErrBadIndex (wrapped)
func (b *DataBuilder) AddBone(bone *BoneData) (int, error) {
	d := b.data
	if bone.ParentIndex < -1 || bone.ParentIndex >= len(d.bones) {
		return -1, fmt.Errorf("%w: bone %q parent %d with %d bones loaded", ErrBadIndex, bone.Name, bone.ParentIndex, len(d.bones))
	}
	if _, ok := d.boneIndex[bone.Name]; ok {
		return -1, fmt.Errorf("%w: bone %q", ErrDuplicateName, bone.Name)
	}
	d.boneIndex[bone.Name] = len(d.bones)
	d.bones = append(d.bones, bone)
	return len(d.bones) - 1, nil
}

// AddSlot appends a slot. Its bone must already be present.
//
// Parameters:
//   - slot: the slot data
//
// Returns:
//   - int: the slot's index
//   - error: ErrDuplicateName or ErrBadIndex (wrapped)
func (b *DataBuilder) AddSlot(slot *SlotData) (int, error) {
	d := b.data
	if slot.BoneIndex < 0 || slot.BoneIndex >= len(d.bones) {
		return -1, fmt.Errorf("%w: slot %q bone %d with %d bones loaded", ErrBadIndex, slot.Name, slot.BoneIndex, len(d.bones))
	}
	if _, ok := d.slotIndex[slot.Name]; ok {
		return -1, fmt.Errorf("%w: slot %q", ErrDuplicateName, slot.Name)
	}
	d.slotIndex[slot.Name] = len(d.slots)
	d.slots = append(d.slots, slot)
	return len(d.slots) - 1, nil
}

// AddSkin appends a skin. A skin named DefaultSkinName becomes the default skin.
//
// Parameters:
//   - skin: the skin
//
// Returns:
//   - error: ErrDuplicateName (wrapped)
func (b *DataBuilder) AddSkin(skin *Skin) error {
	d := b.data
	if _, ok := d.skinIndex[skin.Name()]; ok {
		return fmt.Errorf("%w: skin %q", ErrDuplicateName, skin.Name())
	}
	d.skinIndex[skin.Name()] = len(d.skins)
	d.skins = append(d.skins, skin)
	if skin.Name() == DefaultSkinName {
		d.defaultSkin = skin
	}
	return nil
}

// AddEvent appends an event definition.
//
// Parameters:
//   - event: the event data
//
// Returns:
//   - error: ErrDuplicateName (wrapped)
func (b *DataBuilder) AddEvent(event *EventData) error {
	d := b.data
	if _, ok := d.eventIndex[event.Name]; ok {
		return fmt.Errorf("%w: event %q", ErrDuplicateName, event.Name)
	}
	d.eventIndex[event.Name] = len(d.events)
	d.events = append(d.events, event)
	return nil
}

// AddAnimation appends an animation.
//
// Parameters:
//   - animation: the animation
//
// Returns:
//   - error: ErrDuplicateName (wrapped)
func (b *DataBuilder) AddAnimation(animation *Animation) error {
	d := b.data
	if _, ok := d.animationIndex[animation.Name()]; ok {
		return fmt.Errorf("%w: animation %q", ErrDuplicateName, animation.Name())
	}
	d.animationIndex[animation.Name()] = len(d.animations)
	d.animations = append(d.animations, animation)
	return nil
}

// Build freezes the definition. The builder must not be used afterwards.
//
// Returns:
//   - *SkeletonData: the finished definition
func (b *DataBuilder) Build() *SkeletonData {
	d := b.data
	b.data = nil
	d.bones = clip(d.bones)
	d.slots = clip(d.slots)
	d.skins = clip(d.skins)
	d.events = clip(d.events)
	d.animations = clip(d.animations)
	return d
}

func clip[T any](s []T) []T {
	return s[:len(s):len(s)]
}
