package loader

import (
	"fmt"
	"log"

	"github.com/Carmen-Shannon/oxy-rig/common"
	"github.com/Carmen-Shannon/oxy-rig/engine/attachment"
	"github.com/Carmen-Shannon/oxy-rig/engine/skeleton"
)

type binaryLoaderBackendImpl struct {
	factory attachment.Factory
	logger  *log.Logger
}

var _ loaderBackend = &binaryLoaderBackendImpl{}

func newBinaryLoaderBackend(factory attachment.Factory, logger *log.Logger) loaderBackend {
	return &binaryLoaderBackendImpl{factory: factory, logger: logger}
}

func (b *binaryLoaderBackendImpl) Load(name string, data []byte, opts LoadOptions) (*skeleton.SkeletonData, error) {
	bb := &binarySkeletonBuilder{
		name:    name,
		r:       newBinaryReader(data),
		factory: b.factory,
		logger:  b.logger,
		scale:   opts.Scale,
		b:       skeleton.NewDataBuilder(name),
	}
	return bb.build()
}

// binarySkeletonBuilder holds the state of one binary load.
type binarySkeletonBuilder struct {
	name         string
	r            *binaryReader
	factory      attachment.Factory
	logger       *log.Logger
	scale        float32
	nonessential bool
	b            *skeleton.DataBuilder
	stage        string
}

func (bb *binarySkeletonBuilder) build() (*skeleton.SkeletonData, error) {
	steps := []func() error{
		bb.readHeader,
		bb.readBones,
		bb.readSlots,
		bb.readSkins,
		bb.readEvents,
		bb.readAnimations,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, &LoadError{Name: bb.name, Stage: bb.stage, Err: err}
		}
	}
	return bb.b.Build(), nil
}

func (bb *binarySkeletonBuilder) readHeader() error {
	bb.stage = StageHeader
	bb.nonessential = bb.r.readBool()
	return bb.r.err
}

func (bb *binarySkeletonBuilder) readBones() error {
	bb.stage = StageBones
	r, s := bb.r, bb.scale
	n := r.readCount(1)
	for i := 0; i < n; i++ {
		name := r.readName("bone")
		parent := int(r.readVarInt(true)) - 1
		bone := skeleton.NewBoneData(name, parent)
		bone.X = r.readFloat() * s
		bone.Y = r.readFloat() * s
		bone.ScaleX = r.readFloat()
		bone.ScaleY = r.readFloat()
		bone.Rotation = r.readFloat()
		bone.Length = r.readFloat() * s
		bone.InheritScale = r.readBool()
		bone.InheritRotation = r.readBool()
		if bb.nonessential {
			bone.Color = r.readColor()
		}
		if r.err != nil {
			return r.err
		}
		if _, err := bb.b.AddBone(bone); err != nil {
			return classifyBuildError(err)
		}
	}
	return r.err
}

func (bb *binarySkeletonBuilder) readSlots() error {
	bb.stage = StageSlots
	r := bb.r
	n := r.readCount(1)
	for i := 0; i < n; i++ {
		name := r.readName("slot")
		slot := skeleton.NewSlotData(name, int(r.readVarInt(true)))
		slot.Color = r.readColor()
		slot.AttachmentName, _ = r.readString()
		slot.AdditiveBlending = r.readBool()
		if r.err != nil {
			return r.err
		}
		if _, err := bb.b.AddSlot(slot); err != nil {
			return classifyBuildError(err)
		}
	}
	return r.err
}

func (bb *binarySkeletonBuilder) readSkins() error {
	bb.stage = StageSkins
	r := bb.r
	// A default skin without slots is absent from the skin list.
	defaultSkin, slotCount, err := bb.readSkin(skeleton.DefaultSkinName)
	if err != nil {
		return err
	}
	if slotCount > 0 {
		if err := bb.b.AddSkin(defaultSkin); err != nil {
			return classifyBuildError(err)
		}
	}
	n := r.readCount(1)
	for i := 0; i < n; i++ {
		name := r.readName("skin")
		if r.err != nil {
			return r.err
		}
		skin, _, err := bb.readSkin(name)
		if err != nil {
			return err
		}
		if err := bb.b.AddSkin(skin); err != nil {
			return classifyBuildError(err)
		}
	}
	return r.err
}

func (bb *binarySkeletonBuilder) readSkin(name string) (*skeleton.Skin, int, error) {
	r := bb.r
	skin := skeleton.NewSkin(name)
	slotCount := r.readCount(1)
	for i := 0; i < slotCount; i++ {
		slotIndex := int(r.readVarInt(true))
		if r.err != nil {
			return nil, 0, r.err
		}
		if err := checkIndex("skin slot", slotIndex, len(bb.b.Data().Slots())); err != nil {
			return nil, 0, err
		}
		count := r.readCount(1)
		for j := 0; j < count; j++ {
			entryName := r.readName("attachment")
			if r.err != nil {
				return nil, 0, r.err
			}
			a, err := bb.readAttachment(name, entryName)
			if err != nil {
				return nil, 0, err
			}
			if a == nil {
				bb.logger.Printf("skeleton %q: factory skipped attachment %q in skin %q", bb.name, entryName, name)
				continue
			}
			skin.AddAttachment(slotIndex, entryName, a)
		}
	}
	return skin, slotCount, r.err
}

// readAttachment decodes one attachment. All of its fields are consumed before the
// factory is asked for a shell, so a skipped attachment leaves the stream aligned.
func (bb *binarySkeletonBuilder) readAttachment(skin, entryName string) (attachment.Attachment, error) {
	r, s := bb.r, bb.scale
	name, _ := r.readString()
	name = common.Coalesce(name, entryName)
	kind := attachment.Kind(r.readByte())
	if r.err != nil {
		return nil, r.err
	}

	switch kind {
	case attachment.KindRegion:
		path := bb.readPath(name)
		var v regionFields
		v.x = r.readFloat() * s
		v.y = r.readFloat() * s
		v.scaleX = r.readFloat()
		v.scaleY = r.readFloat()
		v.rotation = r.readFloat()
		v.width = r.readFloat() * s
		v.height = r.readFloat() * s
		v.color = r.readColor()
		if r.err != nil {
			return nil, r.err
		}
		return newRegion(bb.factory, skin, name, path, v)

	case attachment.KindBoundingBox:
		vertices := r.readFloatArray(s)
		if r.err != nil {
			return nil, r.err
		}
		return newBoundingBox(bb.factory, skin, name, vertices)

	case attachment.KindMesh:
		path := bb.readPath(name)
		uvs := r.readFloatArray(1)
		triangles := r.readShortArray()
		vertices := r.readFloatArray(s)
		color := r.readColor()
		meta := bb.readMeshMetadata()
		if r.err != nil {
			return nil, r.err
		}
		return newMesh(bb.factory, skin, name, path, uvs, vertices, triangles, color, meta)

	case attachment.KindSkinnedMesh:
		path := bb.readPath(name)
		uvs := r.readFloatArray(1)
		triangles := r.readShortArray()
		table, err := bb.readWeights()
		if err != nil {
			return nil, err
		}
		color := r.readColor()
		meta := bb.readMeshMetadata()
		if r.err != nil {
			return nil, r.err
		}
		return newSkinnedMesh(bb.factory, skin, name, path, uvs, table, triangles, color, meta, len(bb.b.Data().Bones()))
	}
	return nil, fmt.Errorf("%w: attachment %q: %w %d", ErrFormat, name, attachment.ErrUnknownKind, kind)
}

func (bb *binarySkeletonBuilder) readPath(name string) string {
	path, _ := bb.r.readString()
	return common.Coalesce(path, name)
}

// readWeights reads the packed skinned vertex table: a float count of values, then per
// vertex an influence count k followed by k groups of bone, x, y, weight.
func (bb *binarySkeletonBuilder) readWeights() (weightTable, error) {
	r, s := bb.r, bb.scale
	var table weightTable
	n := r.readCount(4)
	for i := 0; i < n && r.err == nil; {
		k := int(r.readFloat())
		if r.err != nil {
			break
		}
		if k <= 0 || i+k*4 > n {
			return table, formatErrorf("skinned vertex influence count %d at %d overruns table of %d", k, i, n)
		}
		table.vertex(k)
		for end := i + k*4; i < end; i += 4 {
			bone := int(r.readFloat())
			x := r.readFloat() * s
			y := r.readFloat() * s
			table.influence(bone, x, y, r.readFloat())
		}
	}
	return table, r.err
}

func (bb *binarySkeletonBuilder) readMeshMetadata() *meshMetadata {
	if !bb.nonessential {
		return nil
	}
	r, s := bb.r, bb.scale
	meta := &meshMetadata{}
	meta.edges = r.readIntArray()
	meta.hullLength = int(r.readVarInt(true)) * 2
	meta.width = r.readFloat() * s
	meta.height = r.readFloat() * s
	return meta
}

func (bb *binarySkeletonBuilder) readEvents() error {
	bb.stage = StageEvents
	r := bb.r
	n := r.readCount(1)
	for i := 0; i < n; i++ {
		event := &skeleton.EventData{Name: r.readName("event")}
		event.Int = r.readVarInt(false)
		event.Float = r.readFloat()
		event.String, _ = r.readString()
		if r.err != nil {
			return r.err
		}
		if err := bb.b.AddEvent(event); err != nil {
			return classifyBuildError(err)
		}
	}
	return r.err
}

func (bb *binarySkeletonBuilder) readAnimations() error {
	bb.stage = StageAnimations
	r := bb.r
	n := r.readCount(1)
	for i := 0; i < n; i++ {
		name := r.readName("animation")
		if r.err != nil {
			return r.err
		}
		bb.stage = animationStage(name, nil)
		animation, err := bb.readAnimation(name)
		if err != nil {
			return err
		}
		if err := bb.b.AddAnimation(animation); err != nil {
			return classifyBuildError(err)
		}
	}
	return r.err
}

func (bb *binarySkeletonBuilder) readAnimation(name string) (*skeleton.Animation, error) {
	var timelines []skeleton.Timeline
	sections := []func(string, []skeleton.Timeline) ([]skeleton.Timeline, error){
		bb.readSlotTimelines,
		bb.readBoneTimelines,
		bb.readFFDTimelines,
		bb.readDrawOrderTimeline,
		bb.readEventTimeline,
	}
	for _, section := range sections {
		var err error
		if timelines, err = section(name, timelines); err != nil {
			return nil, err
		}
	}
	return skeleton.NewAnimation(name, timelines), nil
}

func (bb *binarySkeletonBuilder) readCurve(t skeleton.CurveTimeline, frameIndex int) {
	r := bb.r
	switch kind := r.readByte(); kind {
	case binaryCurveLinear:
	case binaryCurveStepped:
		t.SetStepped(frameIndex)
	case binaryCurveBezier:
		cx1, cy1, cx2, cy2 := r.readFloat(), r.readFloat(), r.readFloat(), r.readFloat()
		t.SetCurve(frameIndex, cx1, cy1, cx2, cy2)
	default:
		r.fail(formatErrorf("unknown curve type %d at offset %d", kind, r.off-1))
	}
}

func (bb *binarySkeletonBuilder) readFrameCount() (int, error) {
	n := bb.r.readCount(4)
	if bb.r.err != nil {
		return 0, bb.r.err
	}
	return n, checkFrameCount(n)
}

func (bb *binarySkeletonBuilder) readSlotTimelines(name string, timelines []skeleton.Timeline) ([]skeleton.Timeline, error) {
	r := bb.r
	slotCount := len(bb.b.Data().Slots())
	n := r.readCount(1)
	for i := 0; i < n; i++ {
		slotIndex := int(r.readVarInt(true))
		if r.err != nil {
			return nil, r.err
		}
		if err := checkIndex("timeline slot", slotIndex, slotCount); err != nil {
			return nil, err
		}
		count := r.readCount(1)
		for j := 0; j < count; j++ {
			kind := r.readByte()
			frameCount, err := bb.readFrameCount()
			if err != nil {
				return nil, err
			}
			switch kind {
			case binaryTimelineColor:
				bb.stage = animationStage(name, skeleton.TimelineColor)
				t := skeleton.NewColorTimeline(frameCount)
				t.SlotIndex = slotIndex
				for f := 0; f < frameCount; f++ {
					time := r.readFloat()
					t.SetFrame(f, time, r.readColor())
					if f < frameCount-1 {
						bb.readCurve(t, f)
					}
				}
				timelines = append(timelines, t)
			case binaryTimelineAttachment:
				bb.stage = animationStage(name, skeleton.TimelineAttachment)
				t := skeleton.NewAttachmentTimeline(frameCount)
				t.SlotIndex = slotIndex
				for f := 0; f < frameCount; f++ {
					time := r.readFloat()
					attachmentName, _ := r.readString()
					t.SetFrame(f, time, attachmentName)
				}
				timelines = append(timelines, t)
			default:
				return nil, formatErrorf("unknown slot timeline type %d", kind)
			}
			if r.err != nil {
				return nil, r.err
			}
		}
	}
	return timelines, r.err
}

func (bb *binarySkeletonBuilder) readBoneTimelines(name string, timelines []skeleton.Timeline) ([]skeleton.Timeline, error) {
	r := bb.r
	boneCount := len(bb.b.Data().Bones())
	n := r.readCount(1)
	for i := 0; i < n; i++ {
		boneIndex := int(r.readVarInt(true))
		if r.err != nil {
			return nil, r.err
		}
		if err := checkIndex("timeline bone", boneIndex, boneCount); err != nil {
			return nil, err
		}
		count := r.readCount(1)
		for j := 0; j < count; j++ {
			kind := r.readByte()
			frameCount, err := bb.readFrameCount()
			if err != nil {
				return nil, err
			}
			switch kind {
			case binaryTimelineRotate:
				bb.stage = animationStage(name, skeleton.TimelineRotate)
				t := skeleton.NewRotateTimeline(frameCount)
				t.BoneIndex = boneIndex
				for f := 0; f < frameCount; f++ {
					time := r.readFloat()
					t.SetFrame(f, time, r.readFloat())
					if f < frameCount-1 {
						bb.readCurve(t, f)
					}
				}
				timelines = append(timelines, t)
			case binaryTimelineTranslate, binaryTimelineScale:
				var t interface {
					skeleton.CurveTimeline
					SetFrame(frameIndex int, time, x, y float32)
				}
				scale := float32(1)
				if kind == binaryTimelineTranslate {
					bb.stage = animationStage(name, skeleton.TimelineTranslate)
					tt := skeleton.NewTranslateTimeline(frameCount)
					tt.BoneIndex = boneIndex
					t, scale = tt, bb.scale
				} else {
					bb.stage = animationStage(name, skeleton.TimelineScale)
					st := skeleton.NewScaleTimeline(frameCount)
					st.BoneIndex = boneIndex
					t = st
				}
				for f := 0; f < frameCount; f++ {
					time := r.readFloat()
					x := r.readFloat() * scale
					y := r.readFloat() * scale
					t.SetFrame(f, time, x, y)
					if f < frameCount-1 {
						bb.readCurve(t, f)
					}
				}
				timelines = append(timelines, t)
			default:
				return nil, formatErrorf("unknown bone timeline type %d", kind)
			}
			if r.err != nil {
				return nil, r.err
			}
		}
	}
	return timelines, r.err
}

func (bb *binarySkeletonBuilder) readFFDTimelines(name string, timelines []skeleton.Timeline) ([]skeleton.Timeline, error) {
	r := bb.r
	data := bb.b.Data()
	n := r.readCount(1)
	for i := 0; i < n; i++ {
		bb.stage = animationStage(name, skeleton.TimelineFFD)
		// Skin indices are stored off by one: 0 is the default skin.
		skinIndex := int(r.readVarInt(true)) + 1
		if r.err != nil {
			return nil, r.err
		}
		if err := checkIndex("FFD skin", skinIndex, len(data.Skins())); err != nil {
			return nil, err
		}
		skin := data.Skins()[skinIndex]
		slotCount := r.readCount(1)
		for j := 0; j < slotCount; j++ {
			slotIndex := int(r.readVarInt(true))
			if r.err != nil {
				return nil, r.err
			}
			if err := checkIndex("FFD slot", slotIndex, len(data.Slots())); err != nil {
				return nil, err
			}
			attachmentCount := r.readCount(1)
			for k := 0; k < attachmentCount; k++ {
				attachmentName := r.readName("FFD attachment")
				if r.err != nil {
					return nil, r.err
				}
				a := skin.GetAttachment(slotIndex, attachmentName)
				if a == nil {
					return nil, referenceErrorf("FFD attachment %q not found in skin %q slot %d", attachmentName, skin.Name(), slotIndex)
				}
				target, err := newFFDTarget(a)
				if err != nil {
					return nil, err
				}
				t, err := bb.readFFDTimeline(target)
				if err != nil {
					return nil, err
				}
				t.SlotIndex = slotIndex
				timelines = append(timelines, t)
			}
		}
	}
	return timelines, r.err
}

func (bb *binarySkeletonBuilder) readFFDTimeline(target *ffdTarget) (*skeleton.FFDTimeline, error) {
	r := bb.r
	frameCount, err := bb.readFrameCount()
	if err != nil {
		return nil, err
	}
	t := skeleton.NewFFDTimeline(frameCount)
	t.Attachment = target.attachment
	for f := 0; f < frameCount; f++ {
		time := r.readFloat()
		vertices := target.base
		end := r.readCount(4)
		if end != 0 {
			start := int(r.readVarInt(true))
			values := make([]float32, end)
			for v := range values {
				values[v] = r.readFloat() * bb.scale
			}
			if r.err != nil {
				return nil, r.err
			}
			if vertices, err = target.frame(start, values); err != nil {
				return nil, err
			}
		}
		t.SetFrame(f, time, vertices)
		if f < frameCount-1 {
			bb.readCurve(t, f)
		}
		if r.err != nil {
			return nil, r.err
		}
	}
	return t, nil
}

func (bb *binarySkeletonBuilder) readDrawOrderTimeline(name string, timelines []skeleton.Timeline) ([]skeleton.Timeline, error) {
	r := bb.r
	frameCount := r.readCount(1)
	if r.err != nil || frameCount == 0 {
		return timelines, r.err
	}
	bb.stage = animationStage(name, skeleton.TimelineDrawOrder)
	slotCount := len(bb.b.Data().Slots())
	t := skeleton.NewDrawOrderTimeline(frameCount)
	for f := 0; f < frameCount; f++ {
		offsetCount := r.readCount(2)
		offsets := make([]skeleton.DrawOrderOffset, offsetCount)
		for o := range offsets {
			offsets[o].SlotIndex = int(r.readVarInt(true))
			offsets[o].Offset = int(r.readVarInt(true))
		}
		if r.err != nil {
			return nil, r.err
		}
		drawOrder, err := skeleton.ResolveDrawOrder(slotCount, offsets)
		if err != nil {
			return nil, classifyBuildError(err)
		}
		t.SetFrame(f, r.readFloat(), drawOrder)
	}
	return append(timelines, t), r.err
}

func (bb *binarySkeletonBuilder) readEventTimeline(name string, timelines []skeleton.Timeline) ([]skeleton.Timeline, error) {
	r := bb.r
	frameCount := r.readCount(1)
	if r.err != nil || frameCount == 0 {
		return timelines, r.err
	}
	bb.stage = animationStage(name, skeleton.TimelineEvent)
	events := bb.b.Data().Events()
	t := skeleton.NewEventTimeline(frameCount)
	for f := 0; f < frameCount; f++ {
		time := r.readFloat()
		eventIndex := int(r.readVarInt(true))
		if r.err != nil {
			return nil, r.err
		}
		if err := checkIndex("event", eventIndex, len(events)); err != nil {
			return nil, err
		}
		event := skeleton.NewEvent(events[eventIndex])
		event.Int = r.readVarInt(false)
		event.Float = r.readFloat()
		if r.readBool() {
			event.String, _ = r.readString()
		}
		t.SetFrame(f, time, event)
	}
	return append(timelines, t), r.err
}
