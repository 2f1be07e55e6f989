package kernel

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/fx/internal/parallel"
	"github.com/gogpu/fx/uniform"
)

// Cellular sampling and symmetry families.

func pixelate(dst, src *Image, u uniform.Set, pool *parallel.WorkerPool) {
	size := max(u.Float("cellSize"), 1)
	cw := size / float32(src.W)
	ch := size / float32(src.H)
	fragment(dst, pool, func(_, _ int, s, t float32) [4]float32 {
		cs := (math32.Floor(s/cw) + 0.5) * cw
		ct := (math32.Floor(t/ch) + 0.5) * ch
		return src.Sample(cs, ct)
	})
}

// hash2 is the sine-fract hash used by the shaders to jitter cell sites.
func hash2(x, y float32) (float32, float32) {
	qx := x*127.1 + y*311.7
	qy := x*269.5 + y*183.3
	return fract(math32.Sin(qx) * 43758.5453), fract(math32.Sin(qy) * 43758.5453)
}

func fract(v float32) float32 { return v - math32.Floor(v) }

func voronoi(dst, src *Image, u uniform.Set, pool *parallel.WorkerPool) {
	count := max(u.Float("cellCount"), 1)
	seed := u.Float("seed")
	aspect := float32(src.W) / float32(max(src.H, 1))
	cx, cy := count*aspect, count
	fragment(dst, pool, func(_, _ int, s, t float32) [4]float32 {
		px, py := s*cx, t*cy
		bx, by := math32.Floor(px), math32.Floor(py)
		best := float32(1e9)
		bu, bv := s, t
		for j := float32(-1); j <= 1; j++ {
			for i := float32(-1); i <= 1; i++ {
				gx, gy := bx+i, by+j
				jx, jy := hash2(gx+seed, gy+seed)
				sx, sy := gx+jx, gy+jy
				d := math32.Hypot(px-sx, py-sy)
				if d < best {
					best = d
					bu, bv = sx/cx, sy/cy
				}
			}
		}
		return src.Sample(bu, bv)
	})
}

func kaleidoscope(dst, src *Image, u uniform.Set, pool *parallel.WorkerPool) {
	segments := max(u.Float("segments"), 1)
	offset := u.Float("angle") * math32.Pi / 180
	wedge := 2 * math32.Pi / segments
	fragment(dst, pool, func(_, _ int, s, t float32) [4]float32 {
		dx, dy := s-0.5, t-0.5
		r := math32.Hypot(dx, dy)
		a := math32.Atan2(dy, dx) + offset
		a -= wedge * math32.Floor(a/wedge)
		if a > wedge/2 {
			a = wedge - a
		}
		return src.Sample(0.5+r*math32.Cos(a), 0.5+r*math32.Sin(a))
	})
}

// Mirror axis indices.
const (
	axisHorizontal = 0
	axisVertical   = 1
	axisBoth       = 2
)

func mirror(dst, src *Image, u uniform.Set, pool *parallel.WorkerPool) {
	axis := u.Int("axis")
	fragment(dst, pool, func(x, y int, _, _ float32) [4]float32 {
		// Reflect in pixel space so the mirrored half is an exact copy.
		if (axis == axisHorizontal || axis == axisBoth) && x >= (src.W+1)/2 {
			x = src.W - 1 - x
		}
		if (axis == axisVertical || axis == axisBoth) && y >= (src.H+1)/2 {
			y = src.H - 1 - y
		}
		return src.At(x, y)
	})
}
