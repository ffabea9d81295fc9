package skeleton

import (
	"math"
)

// EventTimeline fires events at keyed times.
type EventTimeline struct {
	frames []float32
	events []*Event
}

var _ Timeline = &EventTimeline{}

// NewEventTimeline allocates an event timeline with frameCount keyframes.
func NewEventTimeline(frameCount int) *EventTimeline {
	return &EventTimeline{frames: make([]float32, frameCount), events: make([]*Event, frameCount)}
}

func (t *EventTimeline) Kind() TimelineKind { return TimelineEvent }

func (t *EventTimeline) FrameCount() int { return len(t.frames) }

func (t *EventTimeline) Duration() float32 { return lastFrameTime(t.frames, 1) }

// Frames returns the keyframe times.
func (t *EventTimeline) Frames() []float32 { return t.frames }

// Events returns the event fired at each keyframe.
func (t *EventTimeline) Events() []*Event { return t.events }

// SetFrame sets the time and event of a keyframe.
func (t *EventTimeline) SetFrame(frameIndex int, time float32, event *Event) {
	t.frames[frameIndex] = time
	t.events[frameIndex] = event
}

// Apply appends every event keyed in (lastTime, time]. When lastTime > time the
// animation looped, and events after lastTime up to the end fire first.
func (t *EventTimeline) Apply(skel *Skeleton, lastTime, time float32, events *[]*Event, alpha float32) {
	if events == nil || len(t.frames) == 0 {
		return
	}
	frames := t.frames
	if lastTime > time {
		t.Apply(skel, lastTime, math.MaxFloat32, events, alpha)
		lastTime = -1
	} else if lastTime >= frames[len(frames)-1] {
		return
	}
	if time < frames[0] {
		return
	}

	frameIndex := 0
	if lastTime >= frames[0] {
		frameIndex = nextFrame(frames, 1, lastTime)
	}
	for ; frameIndex < len(frames) && time >= frames[frameIndex]; frameIndex++ {
		*events = append(*events, t.events[frameIndex])
	}
}
