package kernel

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/fx/internal/parallel"
	"github.com/gogpu/fx/uniform"
)

// Geometric warps: each output pixel samples the source at a displaced
// coordinate.

func wave(dst, src *Image, u uniform.Set, pool *parallel.WorkerPool) {
	amp := u.Float("amplitude")
	freq := u.Float("frequency") * 2 * math32.Pi
	phase := u.Float("phase") * math32.Pi / 180
	vertical := u.Int("direction") == 1
	fragment(dst, pool, func(_, _ int, s, t float32) [4]float32 {
		if vertical {
			return src.Sample(s, t+amp*math32.Sin(s*freq+phase))
		}
		return src.Sample(s+amp*math32.Sin(t*freq+phase), t)
	})
}

func twirl(dst, src *Image, u uniform.Set, pool *parallel.WorkerPool) {
	c := u.Vec2("center")
	radius := u.Float("radius")
	angle := u.Float("angle") * math32.Pi / 180
	fragment(dst, pool, func(x, y int, s, t float32) [4]float32 {
		dx, dy := s-c.X, t-c.Y
		dist := math32.Hypot(dx, dy)
		if radius <= 0 || dist >= radius {
			return src.At(x, y)
		}
		k := 1 - dist/radius
		a := angle * k * k
		sin, cos := math32.Sin(a), math32.Cos(a)
		return src.Sample(c.X+dx*cos-dy*sin, c.Y+dx*sin+dy*cos)
	})
}

func bulge(dst, src *Image, u uniform.Set, pool *parallel.WorkerPool) {
	c := u.Vec2("center")
	radius := u.Float("radius")
	strength := u.Float("strength")
	fragment(dst, pool, func(x, y int, s, t float32) [4]float32 {
		dx, dy := s-c.X, t-c.Y
		dist := math32.Hypot(dx, dy)
		if radius <= 0 || dist >= radius {
			return src.At(x, y)
		}
		scale := 1 + (smoothstep(0, 1, dist/radius)-1)*strength
		return src.Sample(c.X+dx*scale, c.Y+dy*scale)
	})
}

func lens(dst, src *Image, u uniform.Set, pool *parallel.WorkerPool) {
	k1 := u.Float("k1")
	k2 := u.Float("k2")
	zoom := max(u.Float("zoom"), 0.01)
	fragment(dst, pool, func(_, _ int, s, t float32) [4]float32 {
		dx, dy := (s-0.5)*2, (t-0.5)*2
		r2 := dx*dx + dy*dy
		f := 1 + k1*r2 + k2*r2*r2
		su := 0.5 + dx*f/(2*zoom)
		sv := 0.5 + dy*f/(2*zoom)
		if su < 0 || su > 1 || sv < 0 || sv > 1 {
			return [4]float32{0, 0, 0, 1}
		}
		return src.Sample(su, sv)
	})
}
