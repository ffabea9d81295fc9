package skeleton

import (
	"github.com/Carmen-Shannon/oxy-rig/common"
)

// RotateTimeline keys a bone's rotation in degrees. Frames are time, angle.
type RotateTimeline struct {
	curves
	BoneIndex int
	frames    []float32
}

var _ CurveTimeline = &RotateTimeline{}

// NewRotateTimeline allocates a rotate timeline with frameCount keyframes.
func NewRotateTimeline(frameCount int) *RotateTimeline {
	return &RotateTimeline{curves: newCurves(frameCount), frames: make([]float32, frameCount*2)}
}

func (t *RotateTimeline) Kind() TimelineKind { return TimelineRotate }

func (t *RotateTimeline) FrameCount() int { return len(t.frames) / 2 }

func (t *RotateTimeline) Duration() float32 { return lastFrameTime(t.frames, 2) }

// Frames returns the packed keyframes.
func (t *RotateTimeline) Frames() []float32 { return t.frames }

// SetFrame sets the time and angle of a keyframe.
func (t *RotateTimeline) SetFrame(frameIndex int, time, angle float32) {
	i := frameIndex * 2
	t.frames[i] = time
	t.frames[i+1] = angle
}

func (t *RotateTimeline) Apply(skel *Skeleton, _, time float32, _ *[]*Event, alpha float32) {
	frames := t.frames
	if len(frames) == 0 || time < frames[0] {
		return
	}
	bone := skel.bones[t.BoneIndex]

	if time >= frames[len(frames)-2] {
		amount := common.WrapDegrees(bone.data.Rotation + frames[len(frames)-1] - bone.Rotation)
		bone.Rotation += amount * alpha
		return
	}

	next := nextFrame(frames, 2, time)
	prevAngle := frames[next*2-1]
	percent := t.progress(frames, 2, next, time)
	amount := common.WrapDegrees(frames[next*2+1] - prevAngle)
	amount = common.WrapDegrees(bone.data.Rotation + (prevAngle + amount*percent) - bone.Rotation)
	bone.Rotation += amount * alpha
}

// vectorFrames holds time, x, y keyframes shared by translate and scale timelines.
type vectorFrames struct {
	curves
	BoneIndex int
	frames    []float32
}

func newVectorFrames(frameCount int) vectorFrames {
	return vectorFrames{curves: newCurves(frameCount), frames: make([]float32, frameCount*3)}
}

func (t *vectorFrames) FrameCount() int { return len(t.frames) / 3 }

func (t *vectorFrames) Duration() float32 { return lastFrameTime(t.frames, 3) }

// Frames returns the packed keyframes.
func (t *vectorFrames) Frames() []float32 { return t.frames }

// SetFrame sets the time and value of a keyframe.
func (t *vectorFrames) SetFrame(frameIndex int, time, x, y float32) {
	i := frameIndex * 3
	t.frames[i] = time
	t.frames[i+1] = x
	t.frames[i+2] = y
}

// sample returns the keyed x,y at time. ok is false before the first frame.
func (t *vectorFrames) sample(time float32) (x, y float32, ok bool) {
	frames := t.frames
	if len(frames) == 0 || time < frames[0] {
		return 0, 0, false
	}
	if time >= frames[len(frames)-3] {
		return frames[len(frames)-2], frames[len(frames)-1], true
	}
	next := nextFrame(frames, 3, time)
	prevX := frames[next*3-2]
	prevY := frames[next*3-1]
	percent := t.progress(frames, 3, next, time)
	return prevX + (frames[next*3+1]-prevX)*percent, prevY + (frames[next*3+2]-prevY)*percent, true
}

// TranslateTimeline keys a bone's position relative to its setup position.
type TranslateTimeline struct {
	vectorFrames
}

var _ CurveTimeline = &TranslateTimeline{}

// NewTranslateTimeline allocates a translate timeline with frameCount keyframes.
func NewTranslateTimeline(frameCount int) *TranslateTimeline {
	return &TranslateTimeline{vectorFrames: newVectorFrames(frameCount)}
}

func (t *TranslateTimeline) Kind() TimelineKind { return TimelineTranslate }

func (t *TranslateTimeline) Apply(skel *Skeleton, _, time float32, _ *[]*Event, alpha float32) {
	x, y, ok := t.sample(time)
	if !ok {
		return
	}
	bone := skel.bones[t.BoneIndex]
	bone.X += (bone.data.X + x - bone.X) * alpha
	bone.Y += (bone.data.Y + y - bone.Y) * alpha
}

// ScaleTimeline keys a bone's scale as a multiple of its setup scale.
type ScaleTimeline struct {
	vectorFrames
}

var _ CurveTimeline = &ScaleTimeline{}

// NewScaleTimeline allocates a scale timeline with frameCount keyframes.
func NewScaleTimeline(frameCount int) *ScaleTimeline {
	return &ScaleTimeline{vectorFrames: newVectorFrames(frameCount)}
}

func (t *ScaleTimeline) Kind() TimelineKind { return TimelineScale }

func (t *ScaleTimeline) Apply(skel *Skeleton, _, time float32, _ *[]*Event, alpha float32) {
	x, y, ok := t.sample(time)
	if !ok {
		return
	}
	bone := skel.bones[t.BoneIndex]
	bone.ScaleX += (bone.data.ScaleX*x - bone.ScaleX) * alpha
	bone.ScaleY += (bone.data.ScaleY*y - bone.ScaleY) * alpha
}
