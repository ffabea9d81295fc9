package skeleton

import (
	"math"

	"github.com/Carmen-Shannon/oxy-rig/common"
)

// ColorTimeline keys a slot's tint. Frames are time, r, g, b, a.
type ColorTimeline struct {
	curves
	SlotIndex int
	frames    []float32
}

var _ CurveTimeline = &ColorTimeline{}

// NewColorTimeline allocates a color timeline with frameCount keyframes.
func NewColorTimeline(frameCount int) *ColorTimeline {
	return &ColorTimeline{curves: newCurves(frameCount), frames: make([]float32, frameCount*5)}
}

func (t *ColorTimeline) Kind() TimelineKind { return TimelineColor }

func (t *ColorTimeline) FrameCount() int { return len(t.frames) / 5 }

func (t *ColorTimeline) Duration() float32 { return lastFrameTime(t.frames, 5) }

// Frames returns the packed keyframes.
func (t *ColorTimeline) Frames() []float32 { return t.frames }

// SetFrame sets the time and color of a keyframe.
func (t *ColorTimeline) SetFrame(frameIndex int, time float32, c common.Color) {
	i := frameIndex * 5
	t.frames[i] = time
	t.frames[i+1] = c.R
	t.frames[i+2] = c.G
	t.frames[i+3] = c.B
	t.frames[i+4] = c.A
}

func (t *ColorTimeline) Apply(skel *Skeleton, _, time float32, _ *[]*Event, alpha float32) {
	frames := t.frames
	if len(frames) == 0 || time < frames[0] {
		return
	}

	var c common.Color
	if time >= frames[len(frames)-5] {
		i := len(frames) - 5
		c = common.Color{R: frames[i+1], G: frames[i+2], B: frames[i+3], A: frames[i+4]}
	} else {
		next := nextFrame(frames, 5, time)
		percent := t.progress(frames, 5, next, time)
		p, n := (next-1)*5, next*5
		c = common.Color{
			R: frames[p+1] + (frames[n+1]-frames[p+1])*percent,
			G: frames[p+2] + (frames[n+2]-frames[p+2])*percent,
			B: frames[p+3] + (frames[n+3]-frames[p+3])*percent,
			A: frames[p+4] + (frames[n+4]-frames[p+4])*percent,
		}
	}

	slot := skel.slots[t.SlotIndex]
	if alpha < 1 {
		slot.Color.R += (c.R - slot.Color.R) * alpha
		slot.Color.G += (c.G - slot.Color.G) * alpha
		slot.Color.B += (c.B - slot.Color.B) * alpha
		slot.Color.A += (c.A - slot.Color.A) * alpha
		return
	}
	slot.Color = c
}

// AttachmentTimeline keys which attachment a slot shows. An empty name clears the slot.
type AttachmentTimeline struct {
	SlotIndex int
	frames    []float32
	names     []string
}

var _ Timeline = &AttachmentTimeline{}

// NewAttachmentTimeline allocates an attachment timeline with frameCount keyframes.
func NewAttachmentTimeline(frameCount int) *AttachmentTimeline {
	return &AttachmentTimeline{frames: make([]float32, frameCount), names: make([]string, frameCount)}
}

func (t *AttachmentTimeline) Kind() TimelineKind { return TimelineAttachment }

func (t *AttachmentTimeline) FrameCount() int { return len(t.frames) }

func (t *AttachmentTimeline) Duration() float32 { return lastFrameTime(t.frames, 1) }

// Frames returns the keyframe times.
func (t *AttachmentTimeline) Frames() []float32 { return t.frames }

// AttachmentNames returns the keyed attachment names.
func (t *AttachmentTimeline) AttachmentNames() []string { return t.names }

// SetFrame sets the time and attachment name of a keyframe.
func (t *AttachmentTimeline) SetFrame(frameIndex int, time float32, attachmentName string) {
	t.frames[frameIndex] = time
	t.names[frameIndex] = attachmentName
}

func (t *AttachmentTimeline) Apply(skel *Skeleton, lastTime, time float32, events *[]*Event, alpha float32) {
	frames := t.frames
	if len(frames) == 0 {
		return
	}
	if time < frames[0] {
		// a looped animation wrapped past the end, so the last key still applies
		if lastTime > time {
			t.Apply(skel, lastTime, math.MaxFloat32, nil, 0)
		}
		return
	}
	if lastTime > time {
		lastTime = -1
	}

	frameIndex := len(frames) - 1
	if time < frames[frameIndex] {
		frameIndex = nextFrame(frames, 1, time) - 1
	}
	if frames[frameIndex] <= lastTime {
		return
	}

	slot := skel.slots[t.SlotIndex]
	name := t.names[frameIndex]
	if name == "" {
		slot.SetAttachment(nil)
		return
	}
	slot.SetAttachment(skel.GetAttachment(t.SlotIndex, name))
}
