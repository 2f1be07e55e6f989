// Package uniform turns an effect's parameter values into the flat set of
// scalars and vectors its shader reads.
//
// Bind never fails. Every declared parameter ends up in the set: the
// caller's value when it is well typed, clamped into range, otherwise the
// declared default. Booleans become 0 or 1 and enumerated options become
// their zero-based index. The frame resolution is always present under
// the name "resolution".
package uniform

import (
	"encoding/binary"
	"math"

	"github.com/soypat/geometry/ms2"

	"github.com/gogpu/fx/catalog"
	"github.com/gogpu/fx/colormatrix"
	"github.com/gogpu/fx/param"
)

// Implicit uniform names.
const (
	Resolution = "resolution"
	Matrix     = "matrix"
)

// Type is the shader-side type of a uniform.
type Type uint8

const (
	Float  Type = iota + 1 // f32
	Vec2                   // vec2<f32>
	Vec4                   // vec4<f32>
	Mat4x5                 // array<vec4<f32>, 5>: four rows then the offset column
)

// Size returns the byte size of t in a WGSL uniform buffer.
func (t Type) Size() int {
	switch t {
	case Float:
		return 4
	case Vec2:
		return 8
	case Vec4:
		return 16
	case Mat4x5:
		return 80
	}
	return 0
}

// Align returns the WGSL alignment of t.
func (t Type) Align() int {
	switch t {
	case Float:
		return 4
	case Vec2:
		return 8
	}
	return 16
}

// Uniform is one bound value.
type Uniform struct {
	Name string
	Type Type
	data [20]float32

	// pixels marks a length in source-image pixels.
	pixels bool
}

// Float returns the scalar value.
func (u Uniform) Float() float32 { return u.data[0] }

// Vec2 returns the vector value.
func (u Uniform) Vec2() ms2.Vec { return ms2.Vec{X: u.data[0], Y: u.data[1]} }

// Vec4 returns the four-component value.
func (u Uniform) Vec4() [4]float32 { return [4]float32(u.data[:4]) }

// Matrix returns the color matrix value.
func (u Uniform) Matrix() colormatrix.Matrix { return colormatrix.Matrix(u.data) }

// Set is the result of Bind: uniforms in buffer order.
type Set struct {
	effect   string
	items    []Uniform
	index    map[string]int
	defines  map[string]int
	original param.Values
}

// Bind resolves values against desc's schema at the given resolution.
//
// Buffer order is resolution, then the color matrix for matrix-driven
// effects, then every declared parameter in declaration order.
func Bind(desc catalog.Descriptor, values param.Values, resolution ms2.Vec) Set {
	vs := desc.Normalize(values)
	s := Set{
		effect:   desc.ID,
		index:    make(map[string]int, len(desc.Params)+2),
		original: vs,
	}

	s.add(Uniform{Name: Resolution, Type: Vec2, data: [20]float32{
		finiteOr(resolution.X, 1), finiteOr(resolution.Y, 1),
	}})
	if desc.ColorMatrix != nil {
		m := desc.ColorMatrix(vs)
		if !m.IsFinite() {
			m = colormatrix.Identity()
		}
		s.add(Uniform{Name: Matrix, Type: Mat4x5, data: m})
	}

	for _, p := range desc.Params {
		v := vs[p.Name]
		u := Uniform{Name: p.Name, pixels: p.Pixels && p.Kind == param.Numeric}
		switch p.Kind {
		case param.Numeric:
			u.Type = Float
			u.data[0] = float32(v.Float())
		case param.Boolean:
			u.Type = Float
			if v.Bool() {
				u.data[0] = 1
			}
		case param.Enumerated:
			u.Type = Float
			u.data[0] = float32(p.Index(v))
		case param.Vector2:
			u.Type = Vec2
			vec := v.Vec()
			u.data[0], u.data[1] = vec.X, vec.Y
		case param.Color:
			u.Type = Vec4
			c := v.Color()
			copy(u.data[:4], c[:])
		}
		s.add(u)

		if p.Structural {
			if s.defines == nil {
				s.defines = make(map[string]int)
			}
			if p.Kind == param.Enumerated {
				s.defines[p.Name] = p.Index(v)
			} else {
				s.defines[p.Name] = int(math.Round(v.Float()))
			}
		}
	}
	return s
}

func (s *Set) add(u Uniform) {
	s.index[u.Name] = len(s.items)
	s.items = append(s.items, u)
}

func finiteOr(v, fallback float32) float32 {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) || v < 1 {
		return fallback
	}
	return v
}

// Effect returns the id of the effect the set was bound for.
func (s Set) Effect() string { return s.effect }

// Len returns the number of uniforms.
func (s Set) Len() int { return len(s.items) }

// All returns the uniforms in buffer order.
func (s Set) All() []Uniform {
	out := make([]Uniform, len(s.items))
	copy(out, s.items)
	return out
}

// Get returns the named uniform.
func (s Set) Get(name string) (Uniform, bool) {
	i, ok := s.index[name]
	if !ok {
		return Uniform{}, false
	}
	return s.items[i], true
}

// Float returns a scalar uniform, or 0 when absent.
func (s Set) Float(name string) float32 {
	u, _ := s.Get(name)
	return u.Float()
}

// Bool reports whether a scalar uniform is non-zero.
func (s Set) Bool(name string) bool { return s.Float(name) != 0 }

// Int returns a scalar uniform rounded to the nearest integer.
func (s Set) Int(name string) int {
	return int(math.Round(float64(s.Float(name))))
}

// Vec2 returns a vector uniform.
func (s Set) Vec2(name string) ms2.Vec {
	u, _ := s.Get(name)
	return u.Vec2()
}

// Vec4 returns a color uniform.
func (s Set) Vec4(name string) [4]float32 {
	u, _ := s.Get(name)
	return u.Vec4()
}

// Matrix returns the bound color matrix, or the identity when the effect
// has none.
func (s Set) Matrix() colormatrix.Matrix {
	u, ok := s.Get(Matrix)
	if !ok {
		return colormatrix.Identity()
	}
	return u.Matrix()
}

// Resolution returns the bound frame size in pixels.
func (s Set) Resolution() ms2.Vec { return s.Vec2(Resolution) }

// WithResolution returns a copy of s bound to another frame size.
func (s Set) WithResolution(r ms2.Vec) Set {
	out := s
	out.items = s.All()
	if i, ok := s.index[Resolution]; ok {
		out.items[i].data[0] = finiteOr(r.X, 1)
		out.items[i].data[1] = finiteOr(r.Y, 1)
	}
	return out
}

// WithPixelScale returns a copy of s with every pixel-length parameter
// multiplied by f, the ratio of the render size to the source size. A
// non-positive or non-finite f leaves s as is.
func (s Set) WithPixelScale(f float32) Set {
	if !(f > 0) || math.IsInf(float64(f), 0) || f == 1 {
		return s
	}
	out := s
	out.items = s.All()
	for i := range out.items {
		if out.items[i].pixels {
			out.items[i].data[0] *= f
		}
	}
	return out
}

// Defines returns the structural values that select a shader
// specialization, or nil.
func (s Set) Defines() map[string]int {
	if s.defines == nil {
		return nil
	}
	out := make(map[string]int, len(s.defines))
	for k, v := range s.defines {
		out[k] = v
	}
	return out
}

// Values returns the normalized parameter values the set was built from.
func (s Set) Values() param.Values { return s.original.Clone() }

// Bytes packs the set into a little-endian uniform buffer laid out with
// WGSL alignment rules.
func (s Set) Bytes() []byte {
	size, maxAlign := 0, 4
	offsets := make([]int, len(s.items))
	for i, u := range s.items {
		a := u.Type.Align()
		maxAlign = max(maxAlign, a)
		size = roundUp(size, a)
		offsets[i] = size
		size += u.Type.Size()
	}
	buf := make([]byte, roundUp(size, maxAlign))
	for i, u := range s.items {
		put := func(j int, v float32) {
			binary.LittleEndian.PutUint32(buf[offsets[i]+4*j:], math.Float32bits(v))
		}
		switch u.Type {
		case Float:
			put(0, u.data[0])
		case Vec2:
			put(0, u.data[0])
			put(1, u.data[1])
		case Vec4:
			for j := range 4 {
				put(j, u.data[j])
			}
		case Mat4x5:
			for row := range 4 {
				for col := range 4 {
					put(row*4+col, u.data[row*5+col])
				}
				put(16+row, u.data[row*5+4])
			}
		}
	}
	return buf
}

func roundUp(n, align int) int {
	return (n + align - 1) / align * align
}
