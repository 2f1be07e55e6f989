package kernel

import (
	"github.com/gogpu/fx/catalog"
	"github.com/gogpu/fx/internal/parallel"
	"github.com/gogpu/fx/uniform"
)

// Func renders src into dst. dst and src have the same size and dst is
// never src.
type Func func(dst, src *Image, u uniform.Set, pool *parallel.WorkerPool)

var shaders = map[string]Func{
	"color_matrix":  colorMatrix,
	"vignette":      vignette,
	"pixelate":      pixelate,
	"voronoi":       voronoi,
	"kaleidoscope":  kaleidoscope,
	"mirror":        mirror,
	"wave":          wave,
	"twirl":         twirl,
	"bulge":         bulge,
	"lens":          lens,
	"gaussian_blur": gaussianBlur,
	"soft_focus":    softFocus,
	"sharpen":       sharpen,
	"bilateral":     bilateral,
	"median":        median,
	"oil_paint":     oilPaint,
	"high_pass":     highPass,
	"low_pass":      lowPass,
	"band_pass":     bandPass,
}

var generators = map[string]Func{
	catalog.GeneratorFilmGrain: filmGrain,
	catalog.GeneratorClouds:    clouds,
	catalog.GeneratorGlass:     glass,
}

// Shader returns the kernel for a shader ref.
func Shader(ref string) (Func, bool) {
	f, ok := shaders[ref]
	return f, ok
}

// Generator returns the kernel for a built-in generator.
func Generator(name string) (Func, bool) {
	f, ok := generators[name]
	return f, ok
}

// fragment evaluates fn at every pixel of dst, passing the pixel position
// and its normalized center coordinates.
func fragment(dst *Image, pool *parallel.WorkerPool, fn func(x, y int, u, v float32) [4]float32) {
	pool.Rows(dst.H, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < dst.W; x++ {
				u, v := dst.uv(x, y)
				dst.Set(x, y, fn(x, y, u, v))
			}
		}
	})
}
