package kernel

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/fx/internal/parallel"
	"github.com/gogpu/fx/uniform"
)

func colorMatrix(dst, src *Image, u uniform.Set, pool *parallel.WorkerPool) {
	m := u.Matrix()
	fragment(dst, pool, func(x, y int, _, _ float32) [4]float32 {
		c := src.At(x, y)
		r, g, b, a := m.Transform(c[0], c[1], c[2], c[3])
		return clampColor([4]float32{r, g, b, a})
	})
}

func vignette(dst, src *Image, u uniform.Set, pool *parallel.WorkerPool) {
	radius := u.Float("radius")
	softness := u.Float("softness")
	strength := u.Float("strength")
	aspect := float32(src.W) / float32(max(src.H, 1))
	fragment(dst, pool, func(x, y int, s, t float32) [4]float32 {
		c := src.At(x, y)
		dx := (s - 0.5) * aspect
		dy := t - 0.5
		dist := math32.Sqrt(dx*dx+dy*dy) * 2 / max(aspect, 1)
		v := smoothstep(radius, radius-softness, dist)
		shade := 1 + (v-1)*strength
		return [4]float32{c[0] * shade, c[1] * shade, c[2] * shade, c[3]}
	})
}
