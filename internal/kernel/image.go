// Package kernel contains the CPU reference implementation of every effect
// shader and procedural generator.
//
// Kernels work on float RGBA images with straight alpha and components in
// [0, 1]. A shader kernel reads its inputs from a uniform.Set exactly as
// the WGSL program of the same name reads its uniform buffer, and computes
// each output pixel from normalized coordinates, so the two stay
// interchangeable.
package kernel

import (
	"image"
	"image/draw"

	"github.com/chewxy/math32"
)

// Image is a float RGBA raster. Pix holds 4 floats per pixel, row-major.
type Image struct {
	W, H int
	Pix  []float32
}

// NewImage allocates a transparent w×h image.
func NewImage(w, h int) *Image {
	return &Image{W: w, H: h, Pix: make([]float32, w*h*4)}
}

// FromImage converts any image into a float raster.
func FromImage(src image.Image) *Image {
	nrgba, ok := src.(*image.NRGBA)
	if !ok {
		b := src.Bounds()
		nrgba = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), src, b.Min, draw.Src)
	}
	b := nrgba.Bounds()
	m := NewImage(b.Dx(), b.Dy())
	for y := 0; y < m.H; y++ {
		si := nrgba.PixOffset(b.Min.X, b.Min.Y+y)
		di := y * m.W * 4
		for x := 0; x < m.W*4; x++ {
			m.Pix[di+x] = float32(nrgba.Pix[si+x]) / 255
		}
	}
	return m
}

// NRGBA converts m back to 8-bit pixels.
func (m *Image) NRGBA() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, m.W, m.H))
	for i, v := range m.Pix {
		out.Pix[i] = toByte(v)
	}
	return out
}

// Clone returns a deep copy of m.
func (m *Image) Clone() *Image {
	c := &Image{W: m.W, H: m.H, Pix: make([]float32, len(m.Pix))}
	copy(c.Pix, m.Pix)
	return c
}

// At returns the pixel at (x, y), clamping coordinates to the edge.
func (m *Image) At(x, y int) [4]float32 {
	x = min(max(x, 0), m.W-1)
	y = min(max(y, 0), m.H-1)
	i := (y*m.W + x) * 4
	return [4]float32(m.Pix[i : i+4])
}

// Set writes the pixel at (x, y).
func (m *Image) Set(x, y int, c [4]float32) {
	i := (y*m.W + x) * 4
	copy(m.Pix[i:i+4], c[:])
}

// Sample returns the bilinearly filtered color at normalized coordinates
// (u, v), clamped to the edge like a linear clamp-to-edge sampler.
func (m *Image) Sample(u, v float32) [4]float32 {
	u = clamp01(u)
	v = clamp01(v)
	fx := u*float32(m.W) - 0.5
	fy := v*float32(m.H) - 0.5
	x0 := math32.Floor(fx)
	y0 := math32.Floor(fy)
	tx := fx - x0
	ty := fy - y0
	ix, iy := int(x0), int(y0)

	c00 := m.At(ix, iy)
	c10 := m.At(ix+1, iy)
	c01 := m.At(ix, iy+1)
	c11 := m.At(ix+1, iy+1)
	var out [4]float32
	for i := range out {
		top := c00[i] + (c10[i]-c00[i])*tx
		bot := c01[i] + (c11[i]-c01[i])*tx
		out[i] = top + (bot-top)*ty
	}
	return out
}

// uv returns the normalized coordinates of the center of pixel (x, y).
func (m *Image) uv(x, y int) (float32, float32) {
	return (float32(x) + 0.5) / float32(m.W), (float32(y) + 0.5) / float32(m.H)
}

func clamp01(v float32) float32 {
	if v != v || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampColor(c [4]float32) [4]float32 {
	for i := range c {
		c[i] = clamp01(c[i])
	}
	return c
}

func mix(a, b [4]float32, t float32) [4]float32 {
	for i := range a {
		a[i] += (b[i] - a[i]) * t
	}
	return a
}

func luminance(c [4]float32) float32 {
	return 0.2126*c[0] + 0.7152*c[1] + 0.0722*c[2]
}

func smoothstep(e0, e1, x float32) float32 {
	if e0 == e1 {
		if x < e0 {
			return 0
		}
		return 1
	}
	t := clamp01((x - e0) / (e1 - e0))
	return t * t * (3 - 2*t)
}

func toByte(v float32) uint8 {
	if v != v || v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
