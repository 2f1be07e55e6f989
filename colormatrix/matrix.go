// Package colormatrix implements 4x5 affine RGBA color transforms.
//
// A Matrix maps a straight-alpha color (components in [0, 1]) to a new color:
//
//	[R']   [m00 m01 m02 m03 m04]   [R]
//	[G'] = [m05 m06 m07 m08 m09] * [G]
//	[B']   [m10 m11 m12 m13 m14]   [B]
//	[A']   [m15 m16 m17 m18 m19]   [A]
//	                               [1]
//
// The fifth column holds the offset, expressed in normalized color units.
// Matrices are values: every constructor returns a new Matrix and nothing
// in this package mutates its arguments.
//
// Constructors clamp their input to a safe range so that exported frames
// never see NaN or runaway values:
//
//	Saturation     [0, 3]
//	Contrast       [0, 4]
//	Brightness     [-1, 1] (offset)
//	ChannelOffset  [-1, 1] per channel
//	RGBScale       [0, 4] per channel
package colormatrix

import "math"

// Matrix is a 4x5 color transform in row-major order.
// [0-4] = row 0 (R), [5-9] = row 1 (G), [10-14] = row 2 (B), [15-19] = row 3 (A).
type Matrix [20]float32

// Safe input ranges for the constructors.
const (
	MinSaturation = 0
	MaxSaturation = 3
	MinContrast   = 0
	MaxContrast   = 4
	MinOffset     = -1
	MaxOffset     = 1
	MinScale      = 0
	MaxScale      = 4
)

// Rec. 709 luminance weights.
const (
	lumR = 0.2126
	lumG = 0.7152
	lumB = 0.0722
)

// Identity returns the matrix that leaves every color unchanged.
func Identity() Matrix {
	return Matrix{
		1, 0, 0, 0, 0, // R
		0, 1, 0, 0, 0, // G
		0, 0, 1, 0, 0, // B
		0, 0, 0, 1, 0, // A
	}
}

// Saturation blends between luminance (s = 0) and the identity (s = 1).
// Values above 1 oversaturate.
func Saturation(s float32) Matrix {
	s = clampf(s, MinSaturation, MaxSaturation, 1)
	inv := 1 - s
	return Matrix{
		lumR*inv + s, lumG * inv, lumB * inv, 0, 0,
		lumR * inv, lumG*inv + s, lumB * inv, 0, 0,
		lumR * inv, lumG * inv, lumB*inv + s, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// Contrast scales colors around mid gray: (c - 0.5) * factor + 0.5.
func Contrast(c float32) Matrix {
	c = clampf(c, MinContrast, MaxContrast, 1)
	offset := 0.5 * (1 - c)
	return Matrix{
		c, 0, 0, 0, offset,
		0, c, 0, 0, offset,
		0, 0, c, 0, offset,
		0, 0, 0, 1, 0,
	}
}

// Brightness adds b to every color channel.
func Brightness(b float32) Matrix {
	b = clampf(b, MinOffset, MaxOffset, 0)
	return ChannelOffset(b, b, b)
}

// ChannelOffset adds a per-channel offset.
func ChannelOffset(r, g, b float32) Matrix {
	r = clampf(r, MinOffset, MaxOffset, 0)
	g = clampf(g, MinOffset, MaxOffset, 0)
	b = clampf(b, MinOffset, MaxOffset, 0)
	return Matrix{
		1, 0, 0, 0, r,
		0, 1, 0, 0, g,
		0, 0, 1, 0, b,
		0, 0, 0, 1, 0,
	}
}

// RGBScale multiplies each color channel by its own factor.
func RGBScale(r, g, b float32) Matrix {
	r = clampf(r, MinScale, MaxScale, 1)
	g = clampf(g, MinScale, MaxScale, 1)
	b = clampf(b, MinScale, MaxScale, 1)
	return Matrix{
		r, 0, 0, 0, 0,
		0, g, 0, 0, 0,
		0, 0, b, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// Grayscale converts to Rec. 709 luminance.
func Grayscale() Matrix {
	return Saturation(0)
}

// Sepia applies the classic sepia tone weights.
func Sepia() Matrix {
	return Matrix{
		0.393, 0.769, 0.189, 0, 0,
		0.349, 0.686, 0.168, 0, 0,
		0.272, 0.534, 0.131, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// Invert inverts the color channels and keeps alpha.
func Invert() Matrix {
	return Matrix{
		-1, 0, 0, 0, 1,
		0, -1, 0, 0, 1,
		0, 0, -1, 0, 1,
		0, 0, 0, 1, 0,
	}
}

// HueRotate rotates hue by the given angle in degrees around the luminance axis.
func HueRotate(degrees float32) Matrix {
	if math.IsNaN(float64(degrees)) || math.IsInf(float64(degrees), 0) {
		degrees = 0
	}
	rad := math.Mod(float64(degrees), 360) * math.Pi / 180
	cos := float32(math.Cos(rad))
	sin := float32(math.Sin(rad))

	const (
		hr = 0.213
		hg = 0.715
		hb = 0.072
	)

	return Matrix{
		hr + cos*(1-hr) + sin*(-hr), hg + cos*(-hg) + sin*(-hg), hb + cos*(-hb) + sin*(1-hb), 0, 0,
		hr + cos*(-hr) + sin*(0.143), hg + cos*(1-hg) + sin*(0.140), hb + cos*(-hb) + sin*(-0.283), 0, 0,
		hr + cos*(-hr) + sin*(-(1 - hr)), hg + cos*(-hg) + sin*(hg), hb + cos*(1-hb) + sin*(hb), 0, 0,
		0, 0, 0, 1, 0,
	}
}

// Mul returns a∘b: the transform that applies b first, then a.
func Mul(a, b Matrix) Matrix {
	var r Matrix
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += a[row*5+k] * b[k*5+col]
			}
			r[row*5+col] = sum
		}
		// Offset column: a's linear part applied to b's offset, plus a's offset.
		r[row*5+4] = a[row*5+0]*b[4] + a[row*5+1]*b[9] +
			a[row*5+2]*b[14] + a[row*5+3]*b[19] + a[row*5+4]
	}
	return r
}

// Compose chains matrices right to left: the last argument is applied to the
// source pixel first. Compose() is the identity.
func Compose(ms ...Matrix) Matrix {
	if len(ms) == 0 {
		return Identity()
	}
	r := ms[len(ms)-1]
	for i := len(ms) - 2; i >= 0; i-- {
		r = Mul(ms[i], r)
	}
	return r
}

// Lerp interpolates component-wise from `from` toward `to`. t is clamped to
// [0, 1]; Lerp(a, b, 0) == a and Lerp(a, b, 1) == b exactly.
func Lerp(from, to Matrix, t float32) Matrix {
	t = clampf(t, 0, 1, 0)
	s := 1 - t
	var r Matrix
	for i := range r {
		r[i] = from[i]*s + to[i]*t
	}
	return r
}

// Transform applies the matrix to a straight-alpha color. The result is not
// clamped.
func (m Matrix) Transform(r, g, b, a float32) (float32, float32, float32, float32) {
	return m[0]*r + m[1]*g + m[2]*b + m[3]*a + m[4],
		m[5]*r + m[6]*g + m[7]*b + m[8]*a + m[9],
		m[10]*r + m[11]*g + m[12]*b + m[13]*a + m[14],
		m[15]*r + m[16]*g + m[17]*b + m[18]*a + m[19]
}

// IsFinite reports whether every coefficient is a finite number.
func (m Matrix) IsFinite() bool {
	for _, v := range m {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// ApproxEqual reports whether every coefficient of m is within eps of o.
func (m Matrix) ApproxEqual(o Matrix, eps float32) bool {
	for i := range m {
		d := m[i] - o[i]
		if d < -eps || d > eps {
			return false
		}
	}
	return true
}

// clampf clamps v to [lo, hi]; NaN becomes neutral.
func clampf(v, lo, hi, neutral float32) float32 {
	if v != v {
		return neutral
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
