package loader

import (
	"errors"
	"testing"
)

func TestReadVarInt(t *testing.T) {
	cases := []struct {
		value            int
		optimizePositive bool
	}{
		{0, true}, {1, true}, {127, true}, {128, true}, {300, true}, {1 << 28, true},
		{-1, true}, {-5, false}, {0, false}, {63, false}, {-64, false}, {1 << 20, false},
	}
	for _, c := range cases {
		w := &skelWriter{}
		if c.optimizePositive {
			w.varint(c.value)
		} else {
			w.svarint(c.value)
		}
		r := newBinaryReader(w.bytes())
		got := r.readVarInt(c.optimizePositive)
		if r.err != nil || int(got) != c.value {
			t.Fatalf("varint(%d, %v) got=%d err=%v", c.value, c.optimizePositive, got, r.err)
		}
		if r.off != len(w.bytes()) {
			t.Fatalf("varint(%d) consumed %d of %d bytes", c.value, r.off, len(w.bytes()))
		}
	}
}

func TestReadString(t *testing.T) {
	w := &skelWriter{}
	w.null().str("").str("root").str("héllo €")
	r := newBinaryReader(w.bytes())

	if s, ok := r.readString(); ok || s != "" {
		t.Fatalf("null string got=%q,%v", s, ok)
	}
	if s, ok := r.readString(); !ok || s != "" {
		t.Fatalf("empty string got=%q,%v", s, ok)
	}
	if s, _ := r.readString(); s != "root" {
		t.Fatalf("ascii string got=%q want=root", s)
	}
	if s, _ := r.readString(); s != "héllo €" {
		t.Fatalf("utf-8 string got=%q want=%q", s, "héllo €")
	}
	if r.err != nil {
		t.Fatalf("unexpected error: %v", r.err)
	}
}

func TestReadFloatAndColor(t *testing.T) {
	w := &skelWriter{}
	w.f32(1.5, -0.25).i32(0xff000080)
	r := newBinaryReader(w.bytes())
	if a, b := r.readFloat(), r.readFloat(); a != 1.5 || b != -0.25 {
		t.Fatalf("floats got=%v,%v want=1.5,-0.25", a, b)
	}
	c := r.readColor()
	if c.R != 1 || c.G != 0 || c.B != 0 || !near(c.A, 128.0/255) {
		t.Fatalf("color got=%+v", c)
	}
}

func TestShortReadIsSticky(t *testing.T) {
	r := newBinaryReader([]byte{0x3f, 0x80})
	if v := r.readFloat(); v != 0 {
		t.Fatalf("short float got=%v want=0", v)
	}
	if !errors.Is(r.err, ErrFormat) {
		t.Fatalf("err got=%v want ErrFormat", r.err)
	}
	first := r.err
	r.readByte()
	r.readString()
	if r.err != first {
		t.Fatalf("error was replaced: %v", r.err)
	}
}

func TestReadCountRejectsOversizedCounts(t *testing.T) {
	w := &skelWriter{}
	w.varint(1 << 20).f32(1)
	r := newBinaryReader(w.bytes())
	if n := r.readCount(4); n != 0 || !errors.Is(r.err, ErrFormat) {
		t.Fatalf("count got=%d err=%v", n, r.err)
	}
}

func TestReadName(t *testing.T) {
	w := &skelWriter{}
	w.null()
	r := newBinaryReader(w.bytes())
	r.readName("bone")
	if !errors.Is(r.err, ErrFormat) {
		t.Fatalf("null name err got=%v want ErrFormat", r.err)
	}
}
