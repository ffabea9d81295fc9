package skeleton

import (
	"github.com/Carmen-Shannon/oxy-rig/common"
)

// Animation is a named set of timelines.
type Animation struct {
	name      string
	timelines []Timeline
	duration  float32
}

// NewAnimation creates an animation whose duration is the latest keyframe across its timelines.
//
// Parameters:
//   - name: the animation name
//   - timelines: the timelines, applied in order
//
// Returns:
//   - *Animation: the animation
func NewAnimation(name string, timelines []Timeline) *Animation {
	var duration float32
	for _, t := range timelines {
		duration = max(duration, t.Duration())
	}
	return &Animation{name: name, timelines: timelines, duration: duration}
}

func (a *Animation) Name() string { return a.name }

func (a *Animation) Timelines() []Timeline { return a.timelines }

func (a *Animation) Duration() float32 { return a.duration }

// Apply poses the skeleton at time, replacing the current pose for every keyed property.
//
// Parameters:
//   - skel: the skeleton to pose
//   - lastTime: the time applied on the previous call
//   - time: the time to apply
//   - loop: wrap both times by the duration
//   - events: collects events fired between lastTime and time, may be nil
func (a *Animation) Apply(skel *Skeleton, lastTime, time float32, loop bool, events *[]*Event) {
	a.Mix(skel, lastTime, time, loop, events, 1)
}

// Mix poses the skeleton at time, blending each keyed property with the current pose by alpha.
//
// Parameters:
//   - skel: the skeleton to pose
//   - lastTime: the time applied on the previous call
//   - time: the time to apply
//   - loop: wrap both times by the duration
//   - events: collects events fired between lastTime and time, may be nil
//   - alpha: blend weight in [0, 1]
func (a *Animation) Mix(skel *Skeleton, lastTime, time float32, loop bool, events *[]*Event, alpha float32) {
	if loop && a.duration != 0 {
		time = common.Mod(time, a.duration)
		lastTime = common.Mod(lastTime, a.duration)
	}
	for _, t := range a.timelines {
		t.Apply(skel, lastTime, time, events, alpha)
	}
}
