package skeleton

import (
	"github.com/Carmen-Shannon/oxy-rig/common"
)

// CurveType is the interpolation used between a keyframe and the next.
type CurveType uint8

const (
	CurveLinear CurveType = iota
	CurveStepped
	CurveBezier
)

func (c CurveType) String() string {
	switch c {
	case CurveStepped:
		return "stepped"
	case CurveBezier:
		return "bezier"
	}
	return "linear"
}

// CurveTimeline is a timeline whose transitions can be eased.
type CurveTimeline interface {
	Timeline

	// SetLinear makes the transition from frameIndex to the next frame linear.
	//
	// Parameters:
	//   - frameIndex: the transition's starting frame
	SetLinear(frameIndex int)

	// SetStepped holds the value of frameIndex until the next frame.
	//
	// Parameters:
	//   - frameIndex: the transition's starting frame
	SetStepped(frameIndex int)

	// SetCurve eases the transition with a cubic Bézier from (0,0) to (1,1).
	//
	// Parameters:
	//   - frameIndex: the transition's starting frame
	//   - cx1, cy1: the first control point
	//   - cx2, cy2: the second control point
	SetCurve(frameIndex int, cx1, cy1, cx2, cy2 float32)

	// CurveType returns the interpolation of a transition.
	//
	// Parameters:
	//   - frameIndex: the transition's starting frame
	//
	// Returns:
	//   - CurveType: the interpolation
	CurveType(frameIndex int) CurveType

	// CurvePercent eases linear progress through a transition.
	//
	// Parameters:
	//   - frameIndex: the transition's starting frame
	//   - percent: linear progress in [0, 1]
	//
	// Returns:
	//   - float32: eased progress; always 0 for stepped transitions
	CurvePercent(frameIndex int, percent float32) float32
}

type curve struct {
	typ     CurveType
	samples [common.BezierSampleCount]float32
}

// curves holds one entry per transition, frameCount-1 in total.
type curves struct {
	transitions []curve
}

func newCurves(frameCount int) curves {
	if frameCount < 1 {
		frameCount = 1
	}
	return curves{transitions: make([]curve, frameCount-1)}
}

func (c *curves) SetLinear(frameIndex int) {
	c.transitions[frameIndex].typ = CurveLinear
}

func (c *curves) SetStepped(frameIndex int) {
	c.transitions[frameIndex].typ = CurveStepped
}

func (c *curves) SetCurve(frameIndex int, cx1, cy1, cx2, cy2 float32) {
	t := &c.transitions[frameIndex]
	t.typ = CurveBezier
	common.SampleBezier(cx1, cy1, cx2, cy2, &t.samples)
}

func (c *curves) CurveType(frameIndex int) CurveType {
	return c.transitions[frameIndex].typ
}

func (c *curves) CurvePercent(frameIndex int, percent float32) float32 {
	t := &c.transitions[frameIndex]
	switch t.typ {
	case CurveStepped:
		return 0
	case CurveBezier:
		return common.BezierPercent(&t.samples, percent)
	}
	return percent
}

// progress returns the eased position of time between the frame before next and next.
func (c *curves) progress(frames []float32, stride, next int, time float32) float32 {
	prevTime := frames[(next-1)*stride]
	frameTime := frames[next*stride]
	percent := common.Clamp(1-(time-frameTime)/(prevTime-frameTime), 0, 1)
	return c.CurvePercent(next-1, percent)
}
