package loader

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
	"unicode/utf16"
)

// skelWriter emits the binary skeleton encodings.
type skelWriter struct {
	buf bytes.Buffer
}

func (w *skelWriter) u8(b byte) *skelWriter {
	w.buf.WriteByte(b)
	return w
}

func (w *skelWriter) boolean(b bool) *skelWriter {
	if b {
		return w.u8(1)
	}
	return w.u8(0)
}

// varint writes value 7 bits at a time, low bits first.
func (w *skelWriter) varint(value int) *skelWriter {
	v := uint32(int32(value))
	for v >= 0x80 {
		w.buf.WriteByte(byte(v&0x7f) | 0x80)
		v >>= 7
	}
	w.buf.WriteByte(byte(v))
	return w
}

// svarint writes a zigzag encoded varint.
func (w *skelWriter) svarint(value int) *skelWriter {
	v := int32(value)
	return w.varint(int((v << 1) ^ (v >> 31)))
}

func (w *skelWriter) i32(v uint32) *skelWriter {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
	return w
}

func (w *skelWriter) f32(values ...float32) *skelWriter {
	for _, v := range values {
		w.i32(math.Float32bits(v))
	}
	return w
}

// str writes a length-prefixed modified UTF-8 string. The length counts characters plus one.
func (w *skelWriter) str(s string) *skelWriter {
	units := utf16.Encode([]rune(s))
	w.varint(len(units) + 1)
	for _, c := range units {
		switch {
		case c <= 0x7f:
			w.buf.WriteByte(byte(c))
		case c <= 0x7ff:
			w.buf.WriteByte(byte(0xc0 | c>>6&0x1f))
			w.buf.WriteByte(byte(0x80 | c&0x3f))
		default:
			w.buf.WriteByte(byte(0xe0 | c>>12&0x0f))
			w.buf.WriteByte(byte(0x80 | c>>6&0x3f))
			w.buf.WriteByte(byte(0x80 | c&0x3f))
		}
	}
	return w
}

func (w *skelWriter) null() *skelWriter {
	return w.varint(0)
}

func (w *skelWriter) floats(values ...float32) *skelWriter {
	w.varint(len(values))
	return w.f32(values...)
}

func (w *skelWriter) shorts(values ...uint16) *skelWriter {
	w.varint(len(values))
	for _, v := range values {
		w.buf.WriteByte(byte(v >> 8))
		w.buf.WriteByte(byte(v))
	}
	return w
}

func (w *skelWriter) bytes() []byte {
	return w.buf.Bytes()
}

// bone writes one bone entry. parent is -1 for a root.
func (w *skelWriter) bone(name string, parent int, x, y, rotation, length float32, inheritScale, inheritRotation bool) *skelWriter {
	w.str(name).varint(parent+1)
	w.f32(x, y, 1, 1, rotation, length)
	return w.boolean(inheritScale).boolean(inheritRotation)
}

func (w *skelWriter) region(name string, x, y, width, height float32) *skelWriter {
	w.str(name).null().u8(0).null()
	w.f32(x, y, 1, 1, 0, width, height)
	return w.i32(0xffffffff)
}

// minimalBinary is a one bone skeleton whose default skin holds region "r" at x=10.
func minimalBinary() []byte {
	w := &skelWriter{}
	w.boolean(false)
	w.varint(1).bone("root", -1, 0, 0, 0, 100, true, true)
	w.varint(1).str("slot").varint(0).i32(0xffffffff).str("r").boolean(false)
	w.varint(1).varint(0).varint(1).region("r", 10, 0, 50, 50)
	w.varint(0) // named skins
	w.varint(0) // events
	w.varint(0) // animations
	return w.bytes()
}

// richBinary and richJSON describe the same skeleton:
//
//	bones:  root, arm (root), hand (arm)
//	slots:  body (root), weapon (hand), cape (arm)
//	skins:  default {body/torso region, cape/cape skinned mesh}
//	        alt {body/torso mesh, weapon/blade bounding box}
//	events: hit
//	animations: walk (every timeline kind), idle (empty)
func richBinary() []byte {
	w := &skelWriter{}
	w.boolean(false)

	w.varint(3)
	w.bone("root", -1, 0, 0, 0, 10, true, true)
	w.bone("arm", 0, 5, 0, 90, 20, true, true)
	w.bone("hand", 1, 20, 0, 0, 0, false, true)

	w.varint(3)
	w.str("body").varint(0).i32(0xffffffff).str("torso").boolean(false)
	w.str("weapon").varint(2).i32(0xff0000ff).null().boolean(true)
	w.str("cape").varint(1).i32(0xffffffff).str("cape").boolean(false)

	// default skin
	w.varint(2)
	w.varint(0).varint(1).region("torso", 10, 0, 50, 50)
	w.varint(2).varint(1).str("cape").null().u8(3).null()
	w.floats(0, 0, 1, 0)
	w.shorts(0, 1, 1)
	// the count covers the bone groups only, not the per-vertex influence counts
	w.varint(12).f32(1, 1, 1, 2, 1, 2, 1, 3, 4, 0.5, 2, 5, 6, 0.5)
	w.i32(0xffffffff)

	// named skins
	w.varint(1).str("alt")
	w.varint(2)
	w.varint(0).varint(1).str("torso").null().u8(2).null()
	w.floats(0, 0, 1, 0, 1, 1)
	w.shorts(0, 1, 2)
	w.floats(0, 0, 10, 0, 10, 10)
	w.i32(0xffffffff)
	w.varint(1).varint(1).str("blade").null().u8(1).floats(0, 0, 1, 1, 2, 0)

	w.varint(1).str("hit").svarint(3).f32(1.5).str("boom")

	w.varint(2)
	w.str("walk")
	// slot timelines
	w.varint(2)
	w.varint(0).varint(1)
	w.u8(4).varint(2)
	w.f32(0).i32(0xffffffff).u8(1)
	w.f32(1).i32(0xff000080)
	w.varint(1).varint(1)
	w.u8(3).varint(2)
	w.f32(0).str("blade")
	w.f32(0.5).null()
	// bone timelines
	w.varint(2)
	w.varint(1).varint(2)
	w.u8(1).varint(2)
	w.f32(0, 0).u8(2).f32(0.25, 0, 0.75, 1)
	w.f32(1, 90)
	w.u8(2).varint(2)
	w.f32(0, 1, 2).u8(0)
	w.f32(1, 3, 4)
	w.varint(2).varint(1)
	w.u8(0).varint(2)
	w.f32(0, 1, 1).u8(0)
	w.f32(1, 2, 2)
	// ffd: skin index 0 addresses skins[1]
	w.varint(1).varint(0).varint(1).varint(0).varint(1).str("torso").varint(2)
	w.f32(0).varint(0).u8(0)
	w.f32(1).varint(2).varint(2).f32(1, 1)
	// draw order
	w.varint(2)
	w.varint(1).varint(0).varint(2).f32(0.5)
	w.varint(0).f32(1)
	// events
	w.varint(1)
	w.f32(0.25).varint(0).svarint(7).f32(1.5).boolean(false)

	w.str("idle")
	w.varint(0).varint(0).varint(0).varint(0).varint(0)
	return w.bytes()
}

const richJSON = `{
  "skeleton": { "spine": "2.1.27" },
  "bones": [
    { "name": "root", "length": 10 },
    { "name": "arm", "parent": "root", "x": 5, "rotation": 90, "length": 20 },
    { "name": "hand", "parent": "arm", "x": 20, "inheritScale": false }
  ],
  "slots": [
    { "name": "body", "bone": "root", "attachment": "torso" },
    { "name": "weapon", "bone": "hand", "color": "ff0000ff", "additive": true },
    { "name": "cape", "bone": "arm", "attachment": "cape" }
  ],
  "skins": {
    "default": {
      "body": { "torso": { "x": 10, "width": 50, "height": 50 } },
      "cape": {
        "cape": {
          "type": "skinnedmesh",
          "uvs": [0, 0, 1, 0],
          "triangles": [0, 1, 1],
          "vertices": [1, 1, 1, 2, 1, 2, 1, 3, 4, 0.5, 2, 5, 6, 0.5]
        }
      }
    },
    "alt": {
      "body": {
        "torso": {
          "type": "mesh",
          "uvs": [0, 0, 1, 0, 1, 1],
          "triangles": [0, 1, 2],
          "vertices": [0, 0, 10, 0, 10, 10]
        }
      },
      "weapon": { "blade": { "type": "boundingbox", "vertices": [0, 0, 1, 1, 2, 0] } }
    }
  },
  "events": { "hit": { "int": 3, "float": 1.5, "string": "boom" } },
  "animations": {
    "walk": {
      "slots": {
        "body": {
          "color": [
            { "time": 0, "color": "ffffffff", "curve": "stepped" },
            { "time": 1, "color": "ff000080" }
          ]
        },
        "weapon": {
          "attachment": [
            { "time": 0, "name": "blade" },
            { "time": 0.5, "name": null }
          ]
        }
      },
      "bones": {
        "arm": {
          "rotate": [
            { "time": 0, "angle": 0, "curve": [0.25, 0, 0.75, 1] },
            { "time": 1, "angle": 90 }
          ],
          "translate": [
            { "time": 0, "x": 1, "y": 2 },
            { "time": 1, "x": 3, "y": 4 }
          ]
        },
        "hand": {
          "scale": [
            { "time": 0, "x": 1, "y": 1 },
            { "time": 1, "x": 2, "y": 2 }
          ]
        }
      },
      "ffd": {
        "alt": {
          "body": {
            "torso": [
              { "time": 0 },
              { "time": 1, "offset": 2, "vertices": [1, 1] }
            ]
          }
        }
      },
      "draworder": [
        { "time": 0.5, "offsets": [ { "slot": "body", "offset": 2 } ] },
        { "time": 1, "offsets": [] }
      ],
      "events": [
        { "time": 0.25, "name": "hit", "int": 7 }
      ]
    },
    "idle": {}
  }
}`

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-4
}

func assertFloats(t *testing.T, label string, got, want []float32) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s len got=%d want=%d", label, len(got), len(want))
	}
	for i := range want {
		if !near(got[i], want[i]) {
			t.Fatalf("%s[%d] got=%v want=%v (all got=%v)", label, i, got[i], want[i], got)
		}
	}
}
