package kernel

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/fx/internal/parallel"
	"github.com/gogpu/fx/uniform"
)

// Procedural generators built on fractal Brownian motion over value noise.

// lattice hashes an integer grid point to [0, 1).
func lattice(x, y int32, seed uint32) float32 {
	h := uint32(x)*0x27d4eb2d ^ uint32(y)*0x165667b1 ^ seed*0x9e3779b9
	h ^= h >> 15
	h *= 0x85ebca6b
	h ^= h >> 13
	h *= 0xc2b2ae35
	h ^= h >> 16
	return float32(h>>8) / (1 << 24)
}

// valueNoise interpolates lattice values with a smoothstep fade.
func valueNoise(x, y float32, seed uint32) float32 {
	fx, fy := math32.Floor(x), math32.Floor(y)
	ix, iy := int32(fx), int32(fy)
	tx, ty := x-fx, y-fy
	tx = tx * tx * (3 - 2*tx)
	ty = ty * ty * (3 - 2*ty)

	a := lattice(ix, iy, seed)
	b := lattice(ix+1, iy, seed)
	c := lattice(ix, iy+1, seed)
	d := lattice(ix+1, iy+1, seed)
	top := a + (b-a)*tx
	bot := c + (d-c)*tx
	return top + (bot-top)*ty
}

// FBM sums octaves of value noise, doubling frequency and halving
// amplitude each octave. The result is normalized to [0, 1).
func FBM(x, y float32, octaves int, seed uint32) float32 {
	octaves = min(max(octaves, 1), 8)
	var sum, norm float32
	amp, freq := float32(1), float32(1)
	for o := range octaves {
		sum += amp * valueNoise(x*freq, y*freq, seed+uint32(o)*1013)
		norm += amp
		amp *= 0.5
		freq *= 2
	}
	return sum / norm
}

func seedOf(u uniform.Set) uint32 {
	return uint32(max(u.Int("seed"), 0))
}

func filmGrain(dst, src *Image, u uniform.Set, pool *parallel.WorkerPool) {
	amount := u.Float("amount")
	size := max(u.Float("size"), 0.1)
	mono := u.Bool("monochrome")
	seed := seedOf(u)
	fragment(dst, pool, func(x, y int, _, _ float32) [4]float32 {
		c := src.At(x, y)
		px, py := float32(x)/size, float32(y)/size
		out := c
		if mono {
			g := (FBM(px, py, 2, seed) - 0.5) * amount
			for i := range 3 {
				out[i] = clamp01(c[i] + g)
			}
			return out
		}
		for i := range 3 {
			g := (FBM(px, py, 2, seed+uint32(i)*7919) - 0.5) * amount
			out[i] = clamp01(c[i] + g)
		}
		return out
	})
}

func clouds(dst, src *Image, u uniform.Set, pool *parallel.WorkerPool) {
	scale := max(u.Float("scale"), 0.01)
	coverage := u.Float("coverage")
	octaves := u.Int("octaves")
	col := u.Vec4("color")
	seed := seedOf(u)
	aspect := float32(src.W) / float32(max(src.H, 1))
	fragment(dst, pool, func(x, y int, s, t float32) [4]float32 {
		c := src.At(x, y)
		n := FBM(s*scale*aspect, t*scale, octaves, seed)
		density := smoothstep(1-coverage, 1-coverage+0.35, n) * col[3]
		out := c
		for i := range 3 {
			out[i] = c[i] + (col[i]-c[i])*density
		}
		out[3] = c[3] + (1-c[3])*density
		return out
	})
}

func glass(dst, src *Image, u uniform.Set, pool *parallel.WorkerPool) {
	scale := max(u.Float("scale"), 0.01)
	strength := u.Float("strength")
	seed := seedOf(u)
	fragment(dst, pool, func(_, _ int, s, t float32) [4]float32 {
		nx := FBM(s*scale, t*scale, 3, seed) - 0.5
		ny := FBM(s*scale+17.3, t*scale+5.1, 3, seed) - 0.5
		return src.Sample(s+nx*2*strength, t+ny*2*strength)
	})
}
