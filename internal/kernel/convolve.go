package kernel

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/fx/internal/cache"
	"github.com/gogpu/fx/internal/parallel"
	"github.com/gogpu/fx/uniform"
)

// GaussianKernel returns a normalized 1D Gaussian of standard deviation
// sigma with 2*ceil(3*sigma)+1 taps. sigma <= 0 yields the identity [1].
func GaussianKernel(sigma float32) []float32 {
	if !(sigma > 0) {
		return []float32{1}
	}
	half := int(math32.Ceil(sigma * 3))
	return gaussianTaps(sigma, half)
}

func gaussianTaps(sigma float32, half int) []float32 {
	k := make([]float32, 2*half+1)
	twoSigmaSq := 2 * sigma * sigma
	var sum float32
	for i := range k {
		x := float32(i - half)
		k[i] = math32.Exp(-x * x / twoSigmaSq)
		sum += k[i]
	}
	for i := range k {
		k[i] /= sum
	}
	return k
}

// Kernels are keyed by sigma quantized to 0.01.
var gaussianKernels = cache.NewSharded[uint64, []float32](8, cache.Uint64Hasher)

func cachedGaussian(sigma float32) []float32 {
	if !(sigma > 0) {
		return []float32{1}
	}
	key := uint64(sigma*100 + 0.5)
	return gaussianKernels.GetOrCreate(key, func() []float32 {
		return GaussianKernel(float32(key) / 100)
	})
}

// convolve runs the separable kernel k over src into dst, extending edge
// pixels outward.
func convolve(dst, src *Image, k []float32, pool *parallel.WorkerPool) {
	if len(k) == 1 {
		copy(dst.Pix, src.Pix)
		return
	}
	half := len(k) / 2
	tmp := NewImage(src.W, src.H)

	pool.Rows(src.H, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < src.W; x++ {
				var acc [4]float32
				for i, w := range k {
					c := src.At(x+i-half, y)
					acc[0] += c[0] * w
					acc[1] += c[1] * w
					acc[2] += c[2] * w
					acc[3] += c[3] * w
				}
				tmp.Set(x, y, acc)
			}
		}
	})
	pool.Rows(src.H, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < src.W; x++ {
				var acc [4]float32
				for i, w := range k {
					c := tmp.At(x, y+i-half)
					acc[0] += c[0] * w
					acc[1] += c[1] * w
					acc[2] += c[2] * w
					acc[3] += c[3] * w
				}
				dst.Set(x, y, acc)
			}
		}
	})
}

func blurred(src *Image, sigma float32, pool *parallel.WorkerPool) *Image {
	out := NewImage(src.W, src.H)
	convolve(out, src, cachedGaussian(sigma), pool)
	return out
}

func gaussianBlur(dst, src *Image, u uniform.Set, pool *parallel.WorkerPool) {
	convolve(dst, src, cachedGaussian(u.Float("radius")), pool)
}

func lowPass(dst, src *Image, u uniform.Set, pool *parallel.WorkerPool) {
	convolve(dst, src, cachedGaussian(u.Float("radius")), pool)
}

// softFocusKernel is the fixed 9-tap Gaussian (sigma 2) of the soft focus
// shader.
var softFocusKernel = gaussianTaps(2, 4)

func softFocus(dst, src *Image, u uniform.Set, pool *parallel.WorkerPool) {
	strength := u.Float("strength")
	blur := NewImage(src.W, src.H)
	convolve(blur, src, softFocusKernel, pool)
	fragment(dst, pool, func(x, y int, _, _ float32) [4]float32 {
		c := src.At(x, y)
		b := blur.At(x, y)
		glow := c
		for i := range 3 {
			glow[i] = 1 - (1-c[i])*(1-b[i])
		}
		out := mix(c, glow, strength)
		out[3] = c[3]
		return out
	})
}

func sharpen(dst, src *Image, u uniform.Set, pool *parallel.WorkerPool) {
	amount := u.Float("amount")
	fragment(dst, pool, func(x, y int, _, _ float32) [4]float32 {
		c := src.At(x, y)
		n, s := src.At(x, y-1), src.At(x, y+1)
		e, w := src.At(x+1, y), src.At(x-1, y)
		out := c
		for i := range 3 {
			edge := 4*c[i] - n[i] - s[i] - e[i] - w[i]
			out[i] = clamp01(c[i] + edge*amount)
		}
		return out
	})
}

func bilateral(dst, src *Image, u uniform.Set, pool *parallel.WorkerPool) {
	r := min(max(u.Int("radius"), 1), 8)
	ss := 2 * u.Float("sigmaSpatial") * u.Float("sigmaSpatial")
	sc := 2 * u.Float("sigmaColor") * u.Float("sigmaColor")
	fragment(dst, pool, func(x, y int, _, _ float32) [4]float32 {
		c := src.At(x, y)
		var sum [3]float32
		var wsum float32
		for j := -r; j <= r; j++ {
			for i := -r; i <= r; i++ {
				s := src.At(x+i, y+j)
				dr, dg, db := s[0]-c[0], s[1]-c[1], s[2]-c[2]
				d2 := float32(i*i + j*j)
				w := math32.Exp(-d2/ss - (dr*dr+dg*dg+db*db)/sc)
				sum[0] += s[0] * w
				sum[1] += s[1] * w
				sum[2] += s[2] * w
				wsum += w
			}
		}
		if !(wsum > 0) {
			return c
		}
		return [4]float32{sum[0] / wsum, sum[1] / wsum, sum[2] / wsum, c[3]}
	})
}

// median9 returns the median of p using the 19-exchange network the
// median shader runs per channel.
func median9(p [9]float32) float32 {
	op := func(a, b int) {
		if p[a] > p[b] {
			p[a], p[b] = p[b], p[a]
		}
	}
	op(1, 2)
	op(4, 5)
	op(7, 8)
	op(0, 1)
	op(3, 4)
	op(6, 7)
	op(1, 2)
	op(4, 5)
	op(7, 8)
	op(0, 3)
	op(5, 8)
	op(4, 7)
	op(3, 6)
	op(1, 4)
	op(2, 5)
	op(4, 7)
	op(4, 2)
	op(6, 4)
	op(4, 2)
	return p[4]
}

func median(dst, src *Image, u uniform.Set, pool *parallel.WorkerPool) {
	intensity := u.Float("intensity")
	fragment(dst, pool, func(x, y int, _, _ float32) [4]float32 {
		c := src.At(x, y)
		var win [9][4]float32
		n := 0
		for j := -1; j <= 1; j++ {
			for i := -1; i <= 1; i++ {
				win[n] = src.At(x+i, y+j)
				n++
			}
		}
		out := c
		for ch := range 3 {
			var p [9]float32
			for k := range p {
				p[k] = win[k][ch]
			}
			out[ch] = c[ch] + (median9(p)-c[ch])*intensity
		}
		return out
	})
}

const maxOilLevels = 32

func oilPaint(dst, src *Image, u uniform.Set, pool *parallel.WorkerPool) {
	r := min(max(u.Int("radius"), 1), 6)
	levels := min(max(int(u.Float("levels")), 2), maxOilLevels)
	fragment(dst, pool, func(x, y int, _, _ float32) [4]float32 {
		var count [maxOilLevels]int
		var sum [maxOilLevels][3]float32
		for j := -r; j <= r; j++ {
			for i := -r; i <= r; i++ {
				s := src.At(x+i, y+j)
				bin := min(int(luminance(s)*float32(levels)), levels-1)
				bin = max(bin, 0)
				count[bin]++
				sum[bin][0] += s[0]
				sum[bin][1] += s[1]
				sum[bin][2] += s[2]
			}
		}
		best := 0
		for i := 1; i < levels; i++ {
			if count[i] > count[best] {
				best = i
			}
		}
		n := float32(count[best])
		return [4]float32{sum[best][0] / n, sum[best][1] / n, sum[best][2] / n, src.At(x, y)[3]}
	})
}

func highPass(dst, src *Image, u uniform.Set, pool *parallel.WorkerPool) {
	gain := u.Float("gain")
	blur := blurred(src, u.Float("radius"), pool)
	fragment(dst, pool, func(x, y int, _, _ float32) [4]float32 {
		c := src.At(x, y)
		b := blur.At(x, y)
		out := c
		for i := range 3 {
			out[i] = clamp01((c[i]-b[i])*gain + 0.5)
		}
		return out
	})
}

func bandPass(dst, src *Image, u uniform.Set, pool *parallel.WorkerPool) {
	inner := u.Float("inner")
	outer := u.Float("outer")
	feather := max(u.Float("feather"), 0.0001)
	invert := u.Bool("invert")
	blur := blurred(src, u.Float("radius"), pool)
	fragment(dst, pool, func(x, y int, s, t float32) [4]float32 {
		d := math32.Hypot(s-0.5, t-0.5) * 2
		mask := smoothstep(inner-feather, inner+feather, d) *
			(1 - smoothstep(outer-feather, outer+feather, d))
		if invert {
			mask = 1 - mask
		}
		return mix(blur.At(x, y), src.At(x, y), mask)
	})
}
