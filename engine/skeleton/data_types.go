// Package skeleton holds the immutable skeleton definition produced by the loaders,
// the animation timelines, and the mutable runtime pose those timelines drive.
package skeleton

import (
	"github.com/Carmen-Shannon/oxy-rig/common"
)

// BoneData is the setup pose of one bone.
type BoneData struct {
	// Name is unique within the skeleton.
	Name string
	// ParentIndex is the index of the parent bone, or -1 for a root bone.
	// Parents always precede their children.
	ParentIndex     int
	Length          float32
	X               float32
	Y               float32
	Rotation        float32
	ScaleX          float32
	ScaleY          float32
	InheritScale    bool
	InheritRotation bool
	// Color is an editor display color, only present in nonessential data.
	Color common.Color
}

// DefaultBoneColor is the editor color given to bones without nonessential data.
var DefaultBoneColor = common.Color{R: 0.61, G: 0.61, B: 0.61, A: 1}

// NewBoneData creates bone data with unit scale and both inherit flags set.
//
// Parameters:
//   - name: the bone name
//   - parentIndex: the parent bone index, or -1 for a root
//
// Returns:
//   - *BoneData: the bone data
func NewBoneData(name string, parentIndex int) *BoneData {
	return &BoneData{
		Name:            name,
		ParentIndex:     parentIndex,
		ScaleX:          1,
		ScaleY:          1,
		InheritScale:    true,
		InheritRotation: true,
		Color:           DefaultBoneColor,
	}
}

// SlotData is the setup state of one slot.
type SlotData struct {
	Name      string
	BoneIndex int
	Color     common.Color
	// AttachmentName is the setup attachment, empty for none.
	AttachmentName   string
	AdditiveBlending bool
}

// NewSlotData creates slot data with a white tint and no setup attachment.
//
// Parameters:
//   - name: the slot name
//   - boneIndex: the bone the slot hangs from
//
// Returns:
//   - *SlotData: the slot data
func NewSlotData(name string, boneIndex int) *SlotData {
	return &SlotData{Name: name, BoneIndex: boneIndex, Color: common.White}
}

// EventData is a named event with default payload values.
type EventData struct {
	Name   string
	Int    int32
	Float  float32
	String string
}

// Event is one keyed occurrence of an EventData, with its own payload.
type Event struct {
	Data   *EventData
	Int    int32
	Float  float32
	String string
}

// NewEvent creates an event carrying the data's default payload.
func NewEvent(data *EventData) *Event {
	return &Event{Data: data, Int: data.Int, Float: data.Float, String: data.String}
}
