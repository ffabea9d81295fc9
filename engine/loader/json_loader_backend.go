package loader

import (
	"fmt"
	"log"

	"github.com/Carmen-Shannon/oxy-rig/common"
	"github.com/Carmen-Shannon/oxy-rig/engine/attachment"
	"github.com/Carmen-Shannon/oxy-rig/engine/skeleton"
)

type jsonLoaderBackendImpl struct {
	factory attachment.Factory
	logger  *log.Logger
}

var _ loaderBackend = &jsonLoaderBackendImpl{}

func newJSONLoaderBackend(factory attachment.Factory, logger *log.Logger) loaderBackend {
	return &jsonLoaderBackendImpl{factory: factory, logger: logger}
}

func (b *jsonLoaderBackendImpl) Load(name string, data []byte, opts LoadOptions) (*skeleton.SkeletonData, error) {
	root, err := parseJSON(data)
	if err != nil {
		return nil, &LoadError{Name: name, Stage: StageHeader, Err: err}
	}
	jb := &jsonSkeletonBuilder{
		name:         name,
		root:         root,
		factory:      b.factory,
		logger:       b.logger,
		scale:        opts.Scale,
		nonessential: opts.NonEssential,
		b:            skeleton.NewDataBuilder(name),
	}
	return jb.build()
}

// jsonSkeletonBuilder holds the state of one JSON load.
type jsonSkeletonBuilder struct {
	name         string
	root         *jsonValue
	f            jsonFields
	factory      attachment.Factory
	logger       *log.Logger
	scale        float32
	nonessential bool
	b            *skeleton.DataBuilder
	stage        string
}

func (jb *jsonSkeletonBuilder) build() (*skeleton.SkeletonData, error) {
	steps := []func() error{
		jb.readHeader,
		jb.readBones,
		jb.readSlots,
		jb.readSkins,
		jb.readEvents,
		jb.readAnimations,
	}
	for _, step := range steps {
		err := step()
		if err == nil {
			err = jb.f.err
		}
		if err != nil {
			return nil, &LoadError{Name: jb.name, Stage: jb.stage, Err: err}
		}
	}
	return jb.b.Build(), nil
}

func (jb *jsonSkeletonBuilder) readHeader() error {
	jb.stage = StageHeader
	jb.f.expect(jb.root, jsonObject)
	return jb.f.err
}

func (jb *jsonSkeletonBuilder) readBones() error {
	jb.stage = StageBones
	f, s := &jb.f, jb.scale
	for _, m := range f.requireArray(jb.root, "bones") {
		name := f.requireString(m, "name")
		parent := -1
		if parentName := f.getString(m, "parent", ""); parentName != "" {
			if parent = jb.b.Data().FindBoneIndex(parentName); parent == -1 {
				return referenceErrorf("bone %q: parent bone %q not found", name, parentName)
			}
		}
		bone := skeleton.NewBoneData(name, parent)
		bone.Length = f.getFloat(m, "length", 0) * s
		bone.X = f.getFloat(m, "x", 0) * s
		bone.Y = f.getFloat(m, "y", 0) * s
		bone.Rotation = f.getFloat(m, "rotation", 0)
		bone.ScaleX = f.getFloat(m, "scaleX", 1)
		bone.ScaleY = f.getFloat(m, "scaleY", 1)
		bone.InheritScale = f.getBool(m, "inheritScale", true)
		bone.InheritRotation = f.getBool(m, "inheritRotation", true)
		bone.Color = f.getColor(m, "color", skeleton.DefaultBoneColor)
		if f.err != nil {
			return f.err
		}
		if _, err := jb.b.AddBone(bone); err != nil {
			return classifyBuildError(err)
		}
	}
	return f.err
}

func (jb *jsonSkeletonBuilder) readSlots() error {
	jb.stage = StageSlots
	f := &jb.f
	for _, m := range f.array(jb.root, "slots") {
		name := f.requireString(m, "name")
		boneName := f.requireString(m, "bone")
		if f.err != nil {
			return f.err
		}
		boneIndex := jb.b.Data().FindBoneIndex(boneName)
		if boneIndex == -1 {
			return referenceErrorf("slot %q: bone %q not found", name, boneName)
		}
		slot := skeleton.NewSlotData(name, boneIndex)
		slot.Color = f.getColor(m, "color", common.White)
		slot.AttachmentName = f.getString(m, "attachment", "")
		slot.AdditiveBlending = f.getBool(m, "additive", false)
		if f.err != nil {
			return f.err
		}
		if _, err := jb.b.AddSlot(slot); err != nil {
			return classifyBuildError(err)
		}
	}
	return f.err
}

func (jb *jsonSkeletonBuilder) slotIndex(slotName string) (int, error) {
	i := jb.b.Data().FindSlotIndex(slotName)
	if i == -1 {
		return -1, referenceErrorf("slot %q not found", slotName)
	}
	return i, nil
}

func (jb *jsonSkeletonBuilder) readSkins() error {
	jb.stage = StageSkins
	f := &jb.f
	for _, skinEntry := range f.entries(jb.root, "skins") {
		skin := skeleton.NewSkin(skinEntry.key)
		for _, slotEntry := range f.objectEntries(skinEntry.value) {
			slotIndex, err := jb.slotIndex(slotEntry.key)
			if err != nil {
				return err
			}
			for _, entry := range f.objectEntries(slotEntry.value) {
				a, err := jb.readAttachment(skin.Name(), entry.key, entry.value)
				if err != nil {
					return err
				}
				if f.err != nil {
					return f.err
				}
				if a == nil {
					jb.logger.Printf("skeleton %q: factory skipped attachment %q in skin %q", jb.name, entry.key, skin.Name())
					continue
				}
				skin.AddAttachment(slotIndex, entry.key, a)
			}
		}
		if f.err != nil {
			return f.err
		}
		if err := jb.b.AddSkin(skin); err != nil {
			return classifyBuildError(err)
		}
	}
	return f.err
}

func (jb *jsonSkeletonBuilder) readAttachment(skin, entryName string, m *jsonValue) (attachment.Attachment, error) {
	f, s := &jb.f, jb.scale
	if !f.expect(m, jsonObject) {
		return nil, f.err
	}
	name := common.Coalesce(f.getString(m, "name", ""), entryName)
	kind, err := attachment.ParseKind(f.getString(m, "type", defaultAttachment.String()))
	if err != nil {
		return nil, fmt.Errorf("%w: attachment %q: %w", ErrFormat, name, err)
	}
	path := common.Coalesce(f.getString(m, "path", ""), name)

	switch kind {
	case attachment.KindRegion:
		var v regionFields
		v.x = f.getFloat(m, "x", 0) * s
		v.y = f.getFloat(m, "y", 0) * s
		v.scaleX = f.getFloat(m, "scaleX", 1)
		v.scaleY = f.getFloat(m, "scaleY", 1)
		v.rotation = f.getFloat(m, "rotation", 0)
		v.width = f.getFloat(m, "width", defaultRegionWidth) * s
		v.height = f.getFloat(m, "height", defaultRegionHeight) * s
		v.color = f.getColor(m, "color", common.White)
		if f.err != nil {
			return nil, f.err
		}
		return newRegion(jb.factory, skin, name, path, v)

	case attachment.KindBoundingBox:
		f.require(m, "vertices")
		vertices := f.floatArray(m, "vertices", s)
		if f.err != nil {
			return nil, f.err
		}
		return newBoundingBox(jb.factory, skin, name, vertices)

	case attachment.KindMesh:
		jb.requireMeshFields(m)
		vertices := f.floatArray(m, "vertices", s)
		triangles := f.shortArray(m, "triangles")
		uvs := f.floatArray(m, "uvs", 1)
		color := f.getColor(m, "color", common.White)
		meta := jb.readMeshMetadata(m)
		if f.err != nil {
			return nil, f.err
		}
		return newMesh(jb.factory, skin, name, path, uvs, vertices, triangles, color, meta)

	case attachment.KindSkinnedMesh:
		jb.requireMeshFields(m)
		packed := f.floatArray(m, "vertices", 1)
		triangles := f.shortArray(m, "triangles")
		uvs := f.floatArray(m, "uvs", 1)
		color := f.getColor(m, "color", common.White)
		meta := jb.readMeshMetadata(m)
		if f.err != nil {
			return nil, f.err
		}
		bones, weights, err := attachment.UnpackWeights(packed, s)
		if err != nil {
			return nil, fmt.Errorf("%w: skinned mesh %q: %w", ErrFormat, name, err)
		}
		table := weightTable{bones: bones, weights: weights}
		return newSkinnedMesh(jb.factory, skin, name, path, uvs, table, triangles, color, meta, len(jb.b.Data().Bones()))
	}
	return nil, fmt.Errorf("%w: attachment %q: %w %s", ErrFormat, name, attachment.ErrUnknownKind, kind)
}

func (jb *jsonSkeletonBuilder) requireMeshFields(m *jsonValue) {
	for _, key := range []string{"vertices", "triangles", "uvs"} {
		jb.f.require(m, key)
	}
}

func (jb *jsonSkeletonBuilder) readMeshMetadata(m *jsonValue) *meshMetadata {
	if !jb.nonessential {
		return nil
	}
	f, s := &jb.f, jb.scale
	return &meshMetadata{
		hullLength: f.getInt(m, "hull", 0) * 2,
		edges:      f.intArray(m, "edges"),
		width:      f.getFloat(m, "width", 0) * s,
		height:     f.getFloat(m, "height", 0) * s,
	}
}

func (jb *jsonSkeletonBuilder) readEvents() error {
	jb.stage = StageEvents
	f := &jb.f
	for _, entry := range f.entries(jb.root, "events") {
		if !f.expect(entry.value, jsonObject) {
			return f.err
		}
		event := &skeleton.EventData{
			Name:   entry.key,
			Int:    int32(f.getInt(entry.value, "int", 0)),
			Float:  f.getFloat(entry.value, "float", 0),
			String: f.getString(entry.value, "string", ""),
		}
		if f.err != nil {
			return f.err
		}
		if err := jb.b.AddEvent(event); err != nil {
			return classifyBuildError(err)
		}
	}
	return f.err
}

func (jb *jsonSkeletonBuilder) readAnimations() error {
	jb.stage = StageAnimations
	f := &jb.f
	for _, entry := range f.entries(jb.root, "animations") {
		jb.stage = animationStage(entry.key, nil)
		if !f.expect(entry.value, jsonObject) {
			return f.err
		}
		animation, err := jb.readAnimation(entry.key, entry.value)
		if err != nil {
			return err
		}
		if err := jb.b.AddAnimation(animation); err != nil {
			return classifyBuildError(err)
		}
	}
	return f.err
}

func (jb *jsonSkeletonBuilder) readAnimation(name string, m *jsonValue) (*skeleton.Animation, error) {
	var timelines []skeleton.Timeline
	sections := []func(string, *jsonValue, []skeleton.Timeline) ([]skeleton.Timeline, error){
		jb.readSlotTimelines,
		jb.readBoneTimelines,
		jb.readFFDTimelines,
		jb.readDrawOrderTimeline,
		jb.readEventTimeline,
	}
	for _, section := range sections {
		var err error
		if timelines, err = section(name, m, timelines); err != nil {
			return nil, err
		}
		if jb.f.err != nil {
			return nil, jb.f.err
		}
	}
	return skeleton.NewAnimation(name, timelines), nil
}

// readCurve applies a frame's optional "curve": "stepped", "linear" or [cx1, cy1, cx2, cy2].
func (jb *jsonSkeletonBuilder) readCurve(t skeleton.CurveTimeline, frameIndex int, frame *jsonValue) {
	f := &jb.f
	v, ok := f.get(frame, "curve")
	// the last frame has no outgoing transition
	if !ok || frameIndex >= t.FrameCount()-1 {
		return
	}
	switch v.kind {
	case jsonString:
		switch v.str {
		case curveStepped:
			t.SetStepped(frameIndex)
		case curveLinear:
		default:
			f.fail(formatErrorf("%s: unknown curve %q", v.path, v.str))
		}
	case jsonArray:
		if len(v.items) != 4 {
			f.fail(formatErrorf("%s: curve needs 4 control values, got %d", v.path, len(v.items)))
			return
		}
		var c [4]float32
		for i, item := range v.items {
			c[i] = float32(f.number(item))
		}
		t.SetCurve(frameIndex, c[0], c[1], c[2], c[3])
	default:
		f.fail(formatErrorf("%s: expected curve string or array, got %s", v.path, v.kind))
	}
}

// frames returns a timeline's keyframe objects, rejecting an empty list.
func (jb *jsonSkeletonBuilder) frames(v *jsonValue) ([]*jsonValue, error) {
	f := &jb.f
	if !f.expect(v, jsonArray) {
		return nil, f.err
	}
	if err := checkFrameCount(len(v.items)); err != nil {
		return nil, err
	}
	for _, item := range v.items {
		if !f.expect(item, jsonObject) {
			return nil, f.err
		}
	}
	return v.items, nil
}

func (jb *jsonSkeletonBuilder) readSlotTimelines(name string, m *jsonValue, timelines []skeleton.Timeline) ([]skeleton.Timeline, error) {
	f := &jb.f
	for _, slotEntry := range f.entries(m, "slots") {
		slotIndex, err := jb.slotIndex(slotEntry.key)
		if err != nil {
			return nil, err
		}
		for _, entry := range f.objectEntries(slotEntry.value) {
			switch entry.key {
			case "color":
				jb.stage = animationStage(name, skeleton.TimelineColor)
				frames, err := jb.frames(entry.value)
				if err != nil {
					return nil, err
				}
				t := skeleton.NewColorTimeline(len(frames))
				t.SlotIndex = slotIndex
				for i, frame := range frames {
					time := f.requireFloat(frame, "time")
					color := f.requireString(frame, "color")
					c, err := common.ParseHexColor(color)
					if err != nil && f.err == nil {
						return nil, formatErrorf("%s: %v", frame.path, err)
					}
					t.SetFrame(i, time, c)
					jb.readCurve(t, i, frame)
				}
				timelines = append(timelines, t)
			case "attachment":
				jb.stage = animationStage(name, skeleton.TimelineAttachment)
				frames, err := jb.frames(entry.value)
				if err != nil {
					return nil, err
				}
				t := skeleton.NewAttachmentTimeline(len(frames))
				t.SlotIndex = slotIndex
				for i, frame := range frames {
					t.SetFrame(i, f.requireFloat(frame, "time"), f.getString(frame, "name", ""))
				}
				timelines = append(timelines, t)
			default:
				return nil, formatErrorf("slot %q: unknown timeline type %q", slotEntry.key, entry.key)
			}
			if f.err != nil {
				return nil, f.err
			}
		}
	}
	return timelines, f.err
}

func (jb *jsonSkeletonBuilder) readBoneTimelines(name string, m *jsonValue, timelines []skeleton.Timeline) ([]skeleton.Timeline, error) {
	f := &jb.f
	for _, boneEntry := range f.entries(m, "bones") {
		boneIndex := jb.b.Data().FindBoneIndex(boneEntry.key)
		if boneIndex == -1 {
			return nil, referenceErrorf("bone %q not found", boneEntry.key)
		}
		for _, entry := range f.objectEntries(boneEntry.value) {
			switch entry.key {
			case "rotate":
				jb.stage = animationStage(name, skeleton.TimelineRotate)
				frames, err := jb.frames(entry.value)
				if err != nil {
					return nil, err
				}
				t := skeleton.NewRotateTimeline(len(frames))
				t.BoneIndex = boneIndex
				for i, frame := range frames {
					t.SetFrame(i, f.requireFloat(frame, "time"), f.requireFloat(frame, "angle"))
					jb.readCurve(t, i, frame)
				}
				timelines = append(timelines, t)
			case "translate", "scale":
				frames, err := jb.frames(entry.value)
				if err != nil {
					return nil, err
				}
				var t interface {
					skeleton.CurveTimeline
					SetFrame(frameIndex int, time, x, y float32)
				}
				scale := float32(1)
				if entry.key == "translate" {
					jb.stage = animationStage(name, skeleton.TimelineTranslate)
					tt := skeleton.NewTranslateTimeline(len(frames))
					tt.BoneIndex = boneIndex
					t, scale = tt, jb.scale
				} else {
					jb.stage = animationStage(name, skeleton.TimelineScale)
					st := skeleton.NewScaleTimeline(len(frames))
					st.BoneIndex = boneIndex
					t = st
				}
				for i, frame := range frames {
					time := f.requireFloat(frame, "time")
					x := f.getFloat(frame, "x", 0) * scale
					y := f.getFloat(frame, "y", 0) * scale
					t.SetFrame(i, time, x, y)
					jb.readCurve(t, i, frame)
				}
				timelines = append(timelines, t)
			default:
				return nil, formatErrorf("bone %q: unknown timeline type %q", boneEntry.key, entry.key)
			}
			if f.err != nil {
				return nil, f.err
			}
		}
	}
	return timelines, f.err
}

func (jb *jsonSkeletonBuilder) readFFDTimelines(name string, m *jsonValue, timelines []skeleton.Timeline) ([]skeleton.Timeline, error) {
	f := &jb.f
	for _, skinEntry := range f.entries(m, "ffd") {
		jb.stage = animationStage(name, skeleton.TimelineFFD)
		skin := jb.b.Data().FindSkin(skinEntry.key)
		if skin == nil {
			return nil, referenceErrorf("FFD skin %q not found", skinEntry.key)
		}
		for _, slotEntry := range f.objectEntries(skinEntry.value) {
			slotIndex, err := jb.slotIndex(slotEntry.key)
			if err != nil {
				return nil, err
			}
			for _, meshEntry := range f.objectEntries(slotEntry.value) {
				a := skin.GetAttachment(slotIndex, meshEntry.key)
				if a == nil {
					return nil, referenceErrorf("FFD attachment %q not found in skin %q slot %q", meshEntry.key, skin.Name(), slotEntry.key)
				}
				target, err := newFFDTarget(a)
				if err != nil {
					return nil, err
				}
				frames, err := jb.frames(meshEntry.value)
				if err != nil {
					return nil, err
				}
				t := skeleton.NewFFDTimeline(len(frames))
				t.SlotIndex = slotIndex
				t.Attachment = a
				for i, frame := range frames {
					time := f.requireFloat(frame, "time")
					vertices := target.base
					if f.has(frame, "vertices") {
						values := f.floatArray(frame, "vertices", jb.scale)
						start := f.getInt(frame, "offset", 0)
						if f.err != nil {
							return nil, f.err
						}
						if vertices, err = target.frame(start, values); err != nil {
							return nil, err
						}
					}
					t.SetFrame(i, time, vertices)
					jb.readCurve(t, i, frame)
				}
				timelines = append(timelines, t)
			}
		}
	}
	return timelines, f.err
}

func (jb *jsonSkeletonBuilder) readDrawOrderTimeline(name string, m *jsonValue, timelines []skeleton.Timeline) ([]skeleton.Timeline, error) {
	f := &jb.f
	v, ok := f.get(m, "draworder")
	if !ok {
		if v, ok = f.get(m, "drawOrder"); !ok {
			return timelines, nil
		}
	}
	jb.stage = animationStage(name, skeleton.TimelineDrawOrder)
	frames, err := jb.frames(v)
	if err != nil {
		return nil, err
	}
	slotCount := len(jb.b.Data().Slots())
	t := skeleton.NewDrawOrderTimeline(len(frames))
	for i, frame := range frames {
		time := f.requireFloat(frame, "time")
		var drawOrder []int
		if f.has(frame, "offsets") {
			items := f.array(frame, "offsets")
			offsets := make([]skeleton.DrawOrderOffset, len(items))
			for j, item := range items {
				slotName := f.requireString(item, "slot")
				offsets[j].Offset = f.getInt(item, "offset", 0)
				if f.err != nil {
					return nil, f.err
				}
				if offsets[j].SlotIndex, err = jb.slotIndex(slotName); err != nil {
					return nil, err
				}
			}
			if drawOrder, err = skeleton.ResolveDrawOrder(slotCount, offsets); err != nil {
				return nil, classifyBuildError(err)
			}
		}
		t.SetFrame(i, time, drawOrder)
	}
	return append(timelines, t), f.err
}

func (jb *jsonSkeletonBuilder) readEventTimeline(name string, m *jsonValue, timelines []skeleton.Timeline) ([]skeleton.Timeline, error) {
	f := &jb.f
	v, ok := f.get(m, "events")
	if !ok {
		return timelines, nil
	}
	jb.stage = animationStage(name, skeleton.TimelineEvent)
	frames, err := jb.frames(v)
	if err != nil {
		return nil, err
	}
	t := skeleton.NewEventTimeline(len(frames))
	for i, frame := range frames {
		eventName := f.requireString(frame, "name")
		if f.err != nil {
			return nil, f.err
		}
		data := jb.b.Data().FindEvent(eventName)
		if data == nil {
			return nil, referenceErrorf("event %q not found", eventName)
		}
		event := skeleton.NewEvent(data)
		event.Int = int32(f.getInt(frame, "int", int(data.Int)))
		event.Float = f.getFloat(frame, "float", data.Float)
		event.String = f.getString(frame, "string", data.String)
		t.SetFrame(i, f.requireFloat(frame, "time"), event)
	}
	return append(timelines, t), f.err
}
