package meshgradient

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/gogpu/meshgradient/gpucore"
)

// RGBA is a straight-alpha colour with components in [0, 1].
//
// The pipeline interpolates R, G and B only. Alpha is carried for the
// caller's convenience and always rendered as opaque.
type RGBA struct {
	R, G, B, A float32
}

// RGB creates an opaque colour.
func RGB(r, g, b float32) RGBA {
	return RGBA{R: r, G: g, B: b, A: 1}
}

// FromColor converts a standard color.Color.
func FromColor(c color.Color) RGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGBA{
		R: float32(n.R) / 255,
		G: float32(n.G) / 255,
		B: float32(n.B) / 255,
		A: float32(n.A) / 255,
	}
}

// ParseHex parses "#RGB", "#RRGGBB" or "#RRGGBBAA" (the '#' is optional).
func ParseHex(s string) (RGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return RGBA{}, fmt.Errorf("meshgradient: invalid hex colour %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGBA{}, fmt.Errorf("meshgradient: invalid hex colour %q: %w", s, err)
	}
	return RGBA{
		R: float32(v>>24&0xff) / 255,
		G: float32(v>>16&0xff) / 255,
		B: float32(v>>8&0xff) / 255,
		A: float32(v&0xff) / 255,
	}, nil
}

// Hex is like ParseHex but returns opaque black for malformed input.
func Hex(s string) RGBA {
	c, err := ParseHex(s)
	if err != nil {
		return RGBA{A: 1}
	}
	return c
}

// Color converts to color.NRGBA, clamping each component.
func (c RGBA) Color() color.NRGBA {
	return color.NRGBA{
		R: unitToByte(c.R),
		G: unitToByte(c.G),
		B: unitToByte(c.B),
		A: unitToByte(c.A),
	}
}

// Lerp interpolates linearly between c and other.
func (c RGBA) Lerp(other RGBA, t float32) RGBA {
	return RGBA{
		R: c.R + (other.R-c.R)*t,
		G: c.G + (other.G-c.G)*t,
		B: c.B + (other.B-c.B)*t,
		A: c.A + (other.A-c.A)*t,
	}
}

func (c RGBA) vec4() gpucore.Vec4 {
	return gpucore.Vec4{X: c.R, Y: c.G, Z: c.B, W: c.A}
}

func unitToByte(v float32) uint8 {
	return uint8(gpucore.Clamp01(v)*255 + 0.5)
}

// vec4Color converts a pipeline colour to an NRGBA pixel.
func vec4Color(v gpucore.Vec4) color.NRGBA {
	return color.NRGBA{R: unitToByte(v.X), G: unitToByte(v.Y), B: unitToByte(v.Z), A: 255}
}
