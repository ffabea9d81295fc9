package skeleton

import (
	"github.com/Carmen-Shannon/oxy-rig/engine/attachment"
)

// FFDTimeline keys per-frame vertex overrides for one mesh attachment in one slot.
// Every frame holds a full-length vertex array. Frame arrays may be shared with the
// attachment's own vertices and are never written; Apply writes only into the slot's
// deform buffer.
type FFDTimeline struct {
	curves
	SlotIndex int
	// Attachment is the *attachment.Mesh or *attachment.SkinnedMesh being deformed.
	Attachment    attachment.Attachment
	frames        []float32
	frameVertices [][]float32
}

var _ CurveTimeline = &FFDTimeline{}

// NewFFDTimeline allocates an FFD timeline with frameCount keyframes.
func NewFFDTimeline(frameCount int) *FFDTimeline {
	return &FFDTimeline{
		curves:        newCurves(frameCount),
		frames:        make([]float32, frameCount),
		frameVertices: make([][]float32, frameCount),
	}
}

func (t *FFDTimeline) Kind() TimelineKind { return TimelineFFD }

func (t *FFDTimeline) FrameCount() int { return len(t.frames) }

func (t *FFDTimeline) Duration() float32 { return lastFrameTime(t.frames, 1) }

// Frames returns the keyframe times.
func (t *FFDTimeline) Frames() []float32 { return t.frames }

// FrameVertices returns the vertex array of every keyframe.
func (t *FFDTimeline) FrameVertices() [][]float32 { return t.frameVertices }

// SetFrame sets the time and vertices of a keyframe.
func (t *FFDTimeline) SetFrame(frameIndex int, time float32, vertices []float32) {
	t.frames[frameIndex] = time
	t.frameVertices[frameIndex] = vertices
}

func (t *FFDTimeline) Apply(skel *Skeleton, _, time float32, _ *[]*Event, alpha float32) {
	slot := skel.slots[t.SlotIndex]
	if slot.attachment != t.Attachment {
		return
	}
	frames := t.frames
	if len(frames) == 0 || time < frames[0] {
		return
	}

	vertexCount := len(t.frameVertices[0])
	if len(slot.deform) != vertexCount {
		// nothing to mix from
		alpha = 1
	}
	vertices := slot.deformBuffer(vertexCount)

	if time >= frames[len(frames)-1] {
		last := t.frameVertices[len(frames)-1]
		if alpha < 1 {
			for i := range vertices {
				vertices[i] += (last[i] - vertices[i]) * alpha
			}
			return
		}
		copy(vertices, last)
		return
	}

	next := nextFrame(frames, 1, time)
	percent := t.progress(frames, 1, next, time)
	prev, to := t.frameVertices[next-1], t.frameVertices[next]
	if alpha < 1 {
		for i := range vertices {
			p := prev[i]
			vertices[i] += (p + (to[i]-p)*percent - vertices[i]) * alpha
		}
		return
	}
	for i := range vertices {
		p := prev[i]
		vertices[i] = p + (to[i]-p)*percent
	}
}
