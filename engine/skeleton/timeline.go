package skeleton

import (
	"fmt"
	"sort"
)

// TimelineKind enumerates the timeline variants.
type TimelineKind uint8

const (
	TimelineScale TimelineKind = iota
	TimelineRotate
	TimelineTranslate
	TimelineAttachment
	TimelineColor
	TimelineEvent
	TimelineDrawOrder
	TimelineFFD
)

var timelineKindNames = [...]string{"scale", "rotate", "translate", "attachment", "color", "event", "draworder", "ffd"}

func (k TimelineKind) String() string {
	if int(k) < len(timelineKindNames) {
		return timelineKindNames[k]
	}
	return fmt.Sprintf("timeline(%d)", uint8(k))
}

// Timeline is a keyframed sequence for one animatable property.
type Timeline interface {
	// Kind returns the timeline variant.
	//
	// Returns:
	//   - TimelineKind: the timeline variant
	Kind() TimelineKind

	// FrameCount returns the number of keyframes.
	//
	// Returns:
	//   - int: the frame count, fixed at construction
	FrameCount() int

	// Duration returns the time of the last keyframe.
	//
	// Returns:
	//   - float32: the end time of the timeline
	Duration() float32

	// Apply poses the skeleton for the given time, mixing with the current pose by alpha.
	//
	// Parameters:
	//   - skel: the skeleton to pose
	//   - lastTime: the time applied on the previous call, used by event and attachment keys
	//   - time: the time to apply
	//   - events: collects fired events, may be nil
	//   - alpha: 1 sets the keyed value, lower values mix toward it
	Apply(skel *Skeleton, lastTime, time float32, events *[]*Event, alpha float32)
}

// nextFrame returns the index of the first frame whose time is greater than target.
// frames stores stride floats per frame with the time first.
func nextFrame(frames []float32, stride int, target float32) int {
	count := len(frames) / stride
	return sort.Search(count, func(i int) bool { return frames[i*stride] > target })
}

func lastFrameTime(frames []float32, stride int) float32 {
	if len(frames) == 0 {
		return 0
	}
	return frames[len(frames)-stride]
}
