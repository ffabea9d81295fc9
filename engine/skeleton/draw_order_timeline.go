package skeleton

import (
	"errors"
	"fmt"
)

// ErrInvalidDrawOrder is returned by ResolveDrawOrder for offsets that do not describe a permutation.
var ErrInvalidDrawOrder = errors.New("invalid draw order")

// DrawOrderOffset moves the slot at SlotIndex to draw position SlotIndex+Offset.
type DrawOrderOffset struct {
	SlotIndex int
	Offset    int
}

// ResolveDrawOrder expands sparse offsets into a full draw order. Slots without an offset keep
// their relative order and fill the positions left free, back to front.
//
// Parameters:
//   - slotCount: the number of slots in the skeleton
//   - offsets: the moved slots, in ascending SlotIndex order
//
// Returns:
//   - []int: for each draw position, the index of the slot drawn there
//   - error: ErrInvalidDrawOrder (wrapped) if offsets are out of order, out of range or collide
func ResolveDrawOrder(slotCount int, offsets []DrawOrderOffset) ([]int, error) {
	if len(offsets) > slotCount {
		return nil, fmt.Errorf("%w: %d offsets for %d slots", ErrInvalidDrawOrder, len(offsets), slotCount)
	}
	drawOrder := make([]int, slotCount)
	for i := range drawOrder {
		drawOrder[i] = -1
	}
	unchanged := make([]int, 0, slotCount-len(offsets))
	original := 0
	for _, o := range offsets {
		if o.SlotIndex < original || o.SlotIndex >= slotCount {
			return nil, fmt.Errorf("%w: slot %d out of order or range", ErrInvalidDrawOrder, o.SlotIndex)
		}
		for original != o.SlotIndex {
			unchanged = append(unchanged, original)
			original++
		}
		target := original + o.Offset
		if target < 0 || target >= slotCount || drawOrder[target] != -1 {
			return nil, fmt.Errorf("%w: slot %d cannot move to %d", ErrInvalidDrawOrder, o.SlotIndex, target)
		}
		drawOrder[target] = original
		original++
	}
	for original < slotCount {
		unchanged = append(unchanged, original)
		original++
	}
	u := len(unchanged)
	for i := slotCount - 1; i >= 0; i-- {
		if drawOrder[i] == -1 {
			u--
			drawOrder[i] = unchanged[u]
		}
	}
	return drawOrder, nil
}

// DrawOrderTimeline keys the order slots are drawn in.
type DrawOrderTimeline struct {
	frames     []float32
	drawOrders [][]int
}

var _ Timeline = &DrawOrderTimeline{}

// NewDrawOrderTimeline allocates a draw order timeline with frameCount keyframes.
func NewDrawOrderTimeline(frameCount int) *DrawOrderTimeline {
	return &DrawOrderTimeline{frames: make([]float32, frameCount), drawOrders: make([][]int, frameCount)}
}

func (t *DrawOrderTimeline) Kind() TimelineKind { return TimelineDrawOrder }

func (t *DrawOrderTimeline) FrameCount() int { return len(t.frames) }

func (t *DrawOrderTimeline) Duration() float32 { return lastFrameTime(t.frames, 1) }

// Frames returns the keyframe times.
func (t *DrawOrderTimeline) Frames() []float32 { return t.frames }

// DrawOrders returns the order of every keyframe. A nil order is the setup order.
func (t *DrawOrderTimeline) DrawOrders() [][]int { return t.drawOrders }

// SetFrame sets the time and draw order of a keyframe.
func (t *DrawOrderTimeline) SetFrame(frameIndex int, time float32, drawOrder []int) {
	t.frames[frameIndex] = time
	t.drawOrders[frameIndex] = drawOrder
}

func (t *DrawOrderTimeline) Apply(skel *Skeleton, _, time float32, _ *[]*Event, _ float32) {
	frames := t.frames
	if len(frames) == 0 || time < frames[0] {
		return
	}
	frameIndex := len(frames) - 1
	if time < frames[frameIndex] {
		frameIndex = nextFrame(frames, 1, time) - 1
	}
	order := t.drawOrders[frameIndex]
	if order == nil {
		copy(skel.drawOrder, skel.slots)
		return
	}
	for i, slotIndex := range order {
		skel.drawOrder[i] = skel.slots[slotIndex]
	}
}
