package common

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidColor is returned when a hex color string cannot be parsed.
var ErrInvalidColor = errors.New("invalid color")

// Color is an RGBA color with each channel normalized to [0, 1].
type Color struct {
	R float32
	G float32
	B float32
	A float32
}

// White is the default tint for slots, bones and attachments.
var White = Color{R: 1, G: 1, B: 1, A: 1}

// ColorFromRGBA8888 unpacks a 32-bit color stored as 0xRRGGBBAA.
//
// Parameters:
//   - packed: the packed color value
//
// Returns:
//   - Color: the unpacked color
func ColorFromRGBA8888(packed uint32) Color {
	return Color{
		R: float32(packed>>24&0xff) / 255,
		G: float32(packed>>16&0xff) / 255,
		B: float32(packed>>8&0xff) / 255,
		A: float32(packed&0xff) / 255,
	}
}

// RGBA8888 packs the color back into 0xRRGGBBAA, rounding each channel to the nearest byte.
func (c Color) RGBA8888() uint32 {
	return uint32(channelByte(c.R))<<24 | uint32(channelByte(c.G))<<16 | uint32(channelByte(c.B))<<8 | uint32(channelByte(c.A))
}

// ParseHexColor parses an 8 digit "RRGGBBAA" hex string.
//
// Parameters:
//   - hex: the color string, exactly 8 hex digits with no prefix
//
// Returns:
//   - Color: the parsed color
//   - error: ErrInvalidColor (wrapped) if the string has the wrong length or a bad digit
func ParseHexColor(hex string) (Color, error) {
	if len(hex) != 8 {
		return Color{}, fmt.Errorf("%w: %q must have 8 hex digits", ErrInvalidColor, hex)
	}
	var ch [4]float32
	for i := range ch {
		v, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("%w: %q: %v", ErrInvalidColor, hex, err)
		}
		ch[i] = float32(v) / 255
	}
	return Color{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, nil
}

// Hex formats the color as "rrggbbaa".
func (c Color) Hex() string {
	return fmt.Sprintf("%08x", c.RGBA8888())
}

func channelByte(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}
