package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// BezierSegments is the number of linear segments a Bézier transition is sampled into.
const BezierSegments = 10

// BezierSampleCount is the number of float32 values produced by SampleBezier:
// x,y pairs for every interior segment boundary. The end points (0,0) and (1,1) are implicit.
const BezierSampleCount = BezierSegments*2 - 2

// SampleBezier samples the cubic Bézier from (0,0) to (1,1) with control points
// (cx1,cy1) and (cx2,cy2) by forward differencing.
//
// Parameters:
//   - cx1, cy1: first control point
//   - cx2, cy2: second control point
//   - out: destination for the x,y samples
func SampleBezier(cx1, cy1, cx2, cy2 float32, out *[BezierSampleCount]float32) {
	subdiv1 := float32(1) / BezierSegments
	subdiv2 := subdiv1 * subdiv1
	subdiv3 := subdiv2 * subdiv1
	pre1 := 3 * subdiv1
	pre2 := 3 * subdiv2
	pre4 := 6 * subdiv2
	pre5 := 6 * subdiv3
	tmp1x := -cx1*2 + cx2
	tmp1y := -cy1*2 + cy2
	tmp2x := (cx1-cx2)*3 + 1
	tmp2y := (cy1-cy2)*3 + 1
	dfx := cx1*pre1 + tmp1x*pre2 + tmp2x*subdiv3
	dfy := cy1*pre1 + tmp1y*pre2 + tmp2y*subdiv3
	ddfx := tmp1x*pre4 + tmp2x*pre5
	ddfy := tmp1y*pre4 + tmp2y*pre5
	dddfx := tmp2x * pre5
	dddfy := tmp2y * pre5

	x, y := dfx, dfy
	for i := 0; i < BezierSampleCount; i += 2 {
		out[i] = x
		out[i+1] = y
		dfx += ddfx
		dfy += ddfy
		ddfx += dddfx
		ddfy += dddfy
		x += dfx
		y += dfy
	}
}

// BezierPercent maps a linear percent through sampled Bézier points.
//
// Parameters:
//   - samples: points produced by SampleBezier
//   - percent: linear progress in [0, 1]
//
// Returns:
//   - float32: the eased progress
func BezierPercent(samples *[BezierSampleCount]float32, percent float32) float32 {
	var x float32
	i := 0
	for ; i < BezierSampleCount; i += 2 {
		x = samples[i]
		if x >= percent {
			var prevX, prevY float32
			if i > 0 {
				prevX = samples[i-2]
				prevY = samples[i-1]
			}
			return prevY + (samples[i+1]-prevY)*(percent-prevX)/(x-prevX)
		}
	}
	y := samples[i-1]
	// last point is (1,1)
	return y + (1-y)*(percent-x)/(1-x)
}

// WrapDegrees brings an angle delta into (-180, 180].
func WrapDegrees(amount float32) float32 {
	for amount > 180 {
		amount -= 360
	}
	for amount <= -180 {
		amount += 360
	}
	return amount
}

// CosSinDeg returns the cosine and sine of an angle given in degrees.
func CosSinDeg(degrees float32) (float32, float32) {
	s, c := math.Sincos(float64(mgl32.DegToRad(degrees)))
	return float32(c), float32(s)
}

// Mod returns the float32 remainder of x/y with the sign of x.
func Mod(x, y float32) float32 {
	return float32(math.Mod(float64(x), float64(y)))
}

// TransformPoint applies a 2x2 world matrix and translation to a local point:
// (x*m00 + y*m01 + tx, x*m10 + y*m11 + ty).
//
// Parameters:
//   - m: column-major 2x2 matrix
//   - t: world translation
//   - x, y: local coordinates
//
// Returns:
//   - float32, float32: world coordinates
func TransformPoint(m mgl32.Mat2, t mgl32.Vec2, x, y float32) (float32, float32) {
	return x*m[0] + y*m[2] + t[0], x*m[1] + y*m[3] + t[1]
}
