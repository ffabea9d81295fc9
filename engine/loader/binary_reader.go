package loader

import (
	"encoding/binary"
	"io"
	"math"
	"strings"
	"unicode/utf16"

	"github.com/Carmen-Shannon/oxy-rig/common"
)

// binaryReader is a forward-only cursor over a binary skeleton. The first failure is
// kept in err; every later read returns a zero value, so callers check err once per entry.
type binaryReader struct {
	data []byte
	off  int
	err  error
}

func newBinaryReader(data []byte) *binaryReader {
	return &binaryReader{data: data}
}

func (r *binaryReader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *binaryReader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n > len(r.data)-r.off {
		r.fail(formatErrorf("read %d bytes at offset %d: %v", n, r.off, io.ErrUnexpectedEOF))
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

func (r *binaryReader) readByte() byte {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *binaryReader) readBool() bool {
	return r.readByte() != 0
}

func (r *binaryReader) readShort() int16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return int16(binary.BigEndian.Uint16(b))
}

func (r *binaryReader) readInt() int32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return int32(binary.BigEndian.Uint32(b))
}

func (r *binaryReader) readFloat() float32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return math.Float32frombits(binary.BigEndian.Uint32(b))
}

// readVarInt reads a 1-5 byte varint, 7 bits per byte, low bits first. Without
// optimizePositive the value is zigzag decoded.
func (r *binaryReader) readVarInt(optimizePositive bool) int32 {
	var result uint32
	for shift := uint(0); shift < 35; shift += 7 {
		b := r.readByte()
		result |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			break
		}
	}
	if optimizePositive {
		return int32(result)
	}
	return int32((result >> 1) ^ -(result & 1))
}

// readCount reads a non-negative varint used as an element count. Each element takes at
// least minSize bytes, so a count that cannot fit in the remaining input is rejected.
func (r *binaryReader) readCount(minSize int) int {
	n := int(r.readVarInt(true))
	if r.err != nil {
		return 0
	}
	if n < 0 || (minSize > 0 && n > (len(r.data)-r.off)/minSize) {
		r.fail(formatErrorf("count %d at offset %d exceeds remaining input", n, r.off))
		return 0
	}
	return n
}

// readString returns the decoded string and false for a null string.
func (r *binaryReader) readString() (string, bool) {
	n := r.readCount(1)
	switch n {
	case 0:
		return "", false
	case 1:
		return "", true
	}
	n--

	// Fast path: the common all-ASCII string is a plain byte copy.
	if r.err == nil && n <= len(r.data)-r.off {
		ascii := true
		for _, b := range r.data[r.off : r.off+n] {
			if b > 127 {
				ascii = false
				break
			}
		}
		if ascii {
			return string(r.take(n)), true
		}
	}

	units := make([]uint16, 0, n)
	for i := 0; i < n && r.err == nil; i++ {
		b := r.readByte()
		switch b >> 4 {
		case 0, 1, 2, 3, 4, 5, 6, 7:
			units = append(units, uint16(b))
		case 12, 13:
			b2 := r.readByte()
			units = append(units, uint16(b&0x1f)<<6|uint16(b2&0x3f))
		case 14:
			b2 := r.readByte()
			b3 := r.readByte()
			units = append(units, uint16(b&0x0f)<<12|uint16(b2&0x3f)<<6|uint16(b3&0x3f))
		default:
			r.fail(formatErrorf("invalid utf-8 lead byte 0x%02x at offset %d", b, r.off-1))
		}
	}
	if r.err != nil {
		return "", false
	}
	var sb strings.Builder
	for _, c := range utf16.Decode(units) {
		sb.WriteRune(c)
	}
	return sb.String(), true
}

// readName reads a string that must not be null or empty.
func (r *binaryReader) readName(what string) string {
	s, ok := r.readString()
	if r.err == nil && (!ok || s == "") {
		r.fail(formatErrorf("%s name is missing at offset %d", what, r.off))
	}
	return s
}

func (r *binaryReader) readColor() common.Color {
	return common.ColorFromRGBA8888(uint32(r.readInt()))
}

func (r *binaryReader) readFloatArray(scale float32) []float32 {
	n := r.readCount(4)
	values := make([]float32, n)
	for i := range values {
		values[i] = r.readFloat() * scale
	}
	return values
}

func (r *binaryReader) readShortArray() []uint16 {
	n := r.readCount(2)
	values := make([]uint16, n)
	for i := range values {
		values[i] = uint16(r.readShort())
	}
	return values
}

func (r *binaryReader) readIntArray() []int {
	n := r.readCount(1)
	values := make([]int, n)
	for i := range values {
		values[i] = int(r.readVarInt(true))
	}
	return values
}
