package skeleton

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-rig/engine/attachment"
)

// buildTestData builds root -> arm -> hand with slots body (root) and weapon (hand).
func buildTestData(t *testing.T) *SkeletonData {
	t.Helper()
	b := NewDataBuilder("test")

	root := NewBoneData("root", -1)
	arm := NewBoneData("arm", 0)
	arm.X = 10
	arm.Rotation = 90
	hand := NewBoneData("hand", 1)
	hand.X = 5
	for _, bd := range []*BoneData{root, arm, hand} {
		if _, err := b.AddBone(bd); err != nil {
			t.Fatalf("AddBone(%s): %v", bd.Name, err)
		}
	}

	body := NewSlotData("body", 0)
	body.AttachmentName = "torso"
	weapon := NewSlotData("weapon", 2)
	weapon.AttachmentName = "sword"
	for _, sd := range []*SlotData{body, weapon} {
		if _, err := b.AddSlot(sd); err != nil {
			t.Fatalf("AddSlot(%s): %v", sd.Name, err)
		}
	}

	def := NewSkin(DefaultSkinName)
	torso := attachment.NewRegion("torso")
	torso.Width, torso.Height = 4, 4
	torso.UpdateOffset()
	def.AddAttachment(0, "torso", torso)
	def.AddAttachment(1, "sword", attachment.NewRegion("sword"))
	def.AddAttachment(1, "axe", attachment.NewRegion("axe"))

	gold := NewSkin("gold")
	gold.AddAttachment(1, "sword", attachment.NewRegion("gold-sword"))

	for _, s := range []*Skin{def, gold} {
		if err := b.AddSkin(s); err != nil {
			t.Fatalf("AddSkin(%s): %v", s.Name(), err)
		}
	}
	if err := b.AddEvent(&EventData{Name: "step", Int: 1, Float: 0.5, String: "left"}); err != nil {
		t.Fatalf("AddEvent: %v", err)
	}
	if err := b.AddAnimation(NewAnimation("idle", nil)); err != nil {
		t.Fatalf("AddAnimation: %v", err)
	}
	return b.Build()
}

func TestDataBuilderLookups(t *testing.T) {
	d := buildTestData(t)
	if got := d.FindBoneIndex("hand"); got != 2 {
		t.Fatalf("FindBoneIndex got=%d want=2", got)
	}
	if d.FindBone("missing") != nil || d.FindBoneIndex("missing") != -1 {
		t.Fatalf("missing bone should not resolve")
	}
	if got := d.FindSlotIndex("weapon"); got != 1 {
		t.Fatalf("FindSlotIndex got=%d want=1", got)
	}
	if d.DefaultSkin() == nil || d.DefaultSkin().Name() != DefaultSkinName {
		t.Fatalf("default skin not set: %v", d.DefaultSkin())
	}
	if d.FindSkin("gold") == nil || d.FindEvent("step") == nil || d.FindAnimation("idle") == nil {
		t.Fatalf("named lookups failed")
	}
	if len(d.Skins()) != 2 {
		t.Fatalf("skins got=%d want=2", len(d.Skins()))
	}
}

func TestDataBuilderRejectsBadReferences(t *testing.T) {
	b := NewDataBuilder("bad")
	if _, err := b.AddBone(NewBoneData("orphan", 0)); !errors.Is(err, ErrBadIndex) {
		t.Fatalf("forward parent got=%v want ErrBadIndex", err)
	}
	if _, err := b.AddBone(NewBoneData("root", -1)); err != nil {
		t.Fatalf("AddBone: %v", err)
	}
	if _, err := b.AddBone(NewBoneData("root", -1)); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("duplicate bone got=%v want ErrDuplicateName", err)
	}
	if _, err := b.AddSlot(NewSlotData("s", 3)); !errors.Is(err, ErrBadIndex) {
		t.Fatalf("slot bone got=%v want ErrBadIndex", err)
	}
}

func TestSkinAttachmentsKeepInsertionOrder(t *testing.T) {
	s := NewSkin("s")
	s.AddAttachment(1, "b", attachment.NewRegion("b"))
	s.AddAttachment(0, "a", attachment.NewRegion("a"))
	replacement := attachment.NewRegion("b2")
	s.AddAttachment(1, "b", replacement)

	entries := s.Attachments()
	if len(entries) != 2 || s.Len() != 2 {
		t.Fatalf("entries got=%d want=2", len(entries))
	}
	if entries[0].Name != "b" || entries[0].Attachment != replacement || entries[1].Name != "a" {
		t.Fatalf("entries got=%+v", entries)
	}
}

func TestResolveDrawOrder(t *testing.T) {
	got, err := ResolveDrawOrder(3, []DrawOrderOffset{{SlotIndex: 0, Offset: 2}})
	if err != nil {
		t.Fatalf("ResolveDrawOrder: %v", err)
	}
	assertInts(t, "offset", got, []int{1, 2, 0})

	got, err = ResolveDrawOrder(4, nil)
	if err != nil {
		t.Fatalf("ResolveDrawOrder identity: %v", err)
	}
	assertInts(t, "identity", got, []int{0, 1, 2, 3})

	got, err = ResolveDrawOrder(6, []DrawOrderOffset{{SlotIndex: 1, Offset: 3}, {SlotIndex: 5, Offset: -5}})
	if err != nil {
		t.Fatalf("ResolveDrawOrder: %v", err)
	}
	assertInts(t, "sparse", got, []int{5, 0, 2, 3, 1, 4})
}

func TestResolveDrawOrderKeepsUnnamedRelativeOrder(t *testing.T) {
	const n = 8
	offsets := []DrawOrderOffset{{SlotIndex: 2, Offset: 4}, {SlotIndex: 3, Offset: -3}, {SlotIndex: 7, Offset: -2}}
	got, err := ResolveDrawOrder(n, offsets)
	if err != nil {
		t.Fatalf("ResolveDrawOrder: %v", err)
	}
	named := map[int]bool{}
	for _, o := range offsets {
		named[o.SlotIndex] = true
		if got[o.SlotIndex+o.Offset] != o.SlotIndex {
			t.Fatalf("slot %d not at %d: %v", o.SlotIndex, o.SlotIndex+o.Offset, got)
		}
	}
	last := -1
	for _, slot := range got {
		if named[slot] {
			continue
		}
		if slot < last {
			t.Fatalf("unnamed slots reordered: %v", got)
		}
		last = slot
	}
}

func TestResolveDrawOrderRejectsInvalidOffsets(t *testing.T) {
	cases := map[string][]DrawOrderOffset{
		"out of range": {{SlotIndex: 0, Offset: 3}},
		"collision":    {{SlotIndex: 0, Offset: 1}, {SlotIndex: 1, Offset: 0}},
		"descending":   {{SlotIndex: 2, Offset: 0}, {SlotIndex: 1, Offset: 0}},
		"bad slot":     {{SlotIndex: 5, Offset: 0}},
	}
	for name, offsets := range cases {
		if _, err := ResolveDrawOrder(3, offsets); !errors.Is(err, ErrInvalidDrawOrder) {
			t.Fatalf("%s: got=%v want ErrInvalidDrawOrder", name, err)
		}
	}
}

func assertInts(t *testing.T, label string, got, want []int) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s got=%v want=%v", label, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("%s got=%v want=%v", label, got, want)
		}
	}
}
