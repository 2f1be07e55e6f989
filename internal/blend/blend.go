// Package blend provides color blending operations.
//
// Colors are straight-alpha RGBA in [0, 1]. Blend modes are the separable
// modes of W3C Compositing and Blending Level 1 plus additive blending.
package blend

import (
	"fmt"
	"image"
	"slices"
)

// Mode represents a blending mode.
type Mode uint8

const (
	// Normal draws the layer over the backdrop.
	Normal Mode = iota
	Multiply
	Screen
	Overlay
	Darken
	Lighten
	ColorDodge
	ColorBurn
	HardLight
	SoftLight
	Difference
	Exclusion
	// Add sums the channels, saturating at 1.
	Add
)

var modeNames = [...]string{
	Normal:     "normal",
	Multiply:   "multiply",
	Screen:     "screen",
	Overlay:    "overlay",
	Darken:     "darken",
	Lighten:    "lighten",
	ColorDodge: "color-dodge",
	ColorBurn:  "color-burn",
	HardLight:  "hard-light",
	SoftLight:  "soft-light",
	Difference: "difference",
	Exclusion:  "exclusion",
	Add:        "add",
}

// Modes returns every blend mode in declaration order.
func Modes() []Mode {
	out := make([]Mode, len(modeNames))
	for i := range out {
		out[i] = Mode(i)
	}
	return out
}

// String returns the mode's name.
func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", m)
}

// ParseMode returns the mode with the given name. The empty string is
// Normal.
func ParseMode(s string) (Mode, error) {
	if s == "" {
		return Normal, nil
	}
	if i := slices.Index(modeNames[:], s); i >= 0 {
		return Mode(i), nil
	}
	return Normal, fmt.Errorf("blend: unknown mode %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if int(m) >= len(modeNames) {
		return nil, fmt.Errorf("blend: invalid mode %d", m)
	}
	return []byte(modeNames[m]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Pixel composites a layer's output src onto the backdrop dst with mode at
// the given opacity.
//
// src is the layer rendered from dst, so its alpha already accounts for
// the backdrop and is not stacked on top of it again. The blended color
// follows the W3C mixing step with the layer's own alpha:
//
//	Cr = (1 - ab)*Cs + ab*B(Cb, Cs)
//
// and opacity then interpolates from dst to (Cr, as) in premultiplied
// space:
//
//	ao = ab + (as - ab)*opacity
//	co = ((1 - opacity)*ab*Cb + opacity*as*Cr) / ao
//
// An opacity of 0 returns dst unchanged and Normal at full opacity
// returns src.
func Pixel(dst, src [4]float32, mode Mode, opacity float32) [4]float32 {
	if !(opacity > 0) {
		return dst
	}
	if opacity >= 1 && mode == Normal {
		return src
	}
	opacity = min(opacity, 1)
	fn := channelFunc(mode)

	as := src[3]
	ab := dst[3]
	ao := ab + (as-ab)*opacity
	if ao <= 0 {
		return [4]float32{}
	}
	var out [4]float32
	for i := range 3 {
		cb, cs := dst[i], src[i]
		cr := (1-ab)*cs + ab*fn(cb, cs)
		co := (1-opacity)*ab*cb + opacity*as*cr
		out[i] = clamp01(co / ao)
	}
	out[3] = clamp01(ao)
	return out
}

// Image composites src over dst in place. Both images must have the same
// bounds size; pixels are matched relative to each image's origin.
func Image(dst, src *image.NRGBA, mode Mode, opacity float32) {
	if !(opacity > 0) {
		return
	}
	db, sb := dst.Bounds(), src.Bounds()
	w := min(db.Dx(), sb.Dx())
	h := min(db.Dy(), sb.Dy())
	for y := range h {
		drow := dst.Pix[y*dst.Stride : y*dst.Stride+w*4]
		srow := src.Pix[y*src.Stride : y*src.Stride+w*4]
		for x := 0; x < w*4; x += 4 {
			out := Pixel(unpack(drow[x:x+4]), unpack(srow[x:x+4]), mode, opacity)
			drow[x+0] = toByte(out[0])
			drow[x+1] = toByte(out[1])
			drow[x+2] = toByte(out[2])
			drow[x+3] = toByte(out[3])
		}
	}
}

func unpack(p []uint8) [4]float32 {
	return [4]float32{
		float32(p[0]) / 255,
		float32(p[1]) / 255,
		float32(p[2]) / 255,
		float32(p[3]) / 255,
	}
}

func toByte(v float32) uint8 {
	return uint8(clamp01(v)*255 + 0.5)
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
