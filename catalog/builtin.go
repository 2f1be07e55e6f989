package catalog

import (
	cm "github.com/gogpu/fx/colormatrix"
	"github.com/gogpu/fx/param"
)

// Built-in procedural generators.
const (
	GeneratorFilmGrain = "fbm-grain"
	GeneratorClouds    = "fbm-clouds"
	GeneratorGlass     = "fbm-glass"
)

// ShaderColorMatrix is the shared shader behind every tonal filter.
const ShaderColorMatrix = "color_matrix"

func intensity() param.Spec {
	return param.Spec{Name: "intensity", Label: "Intensity", Kind: param.Numeric, Min: 0, Max: 1, Step: 0.01, Default: param.Number(1)}
}

func number(name, label string, lo, hi, step, def float64) param.Spec {
	return param.Spec{Name: name, Label: label, Kind: param.Numeric, Min: lo, Max: hi, Step: step, Default: param.Number(def)}
}

func structural(name, label string, lo, hi, def float64) param.Spec {
	s := number(name, label, lo, hi, 1, def)
	s.Structural = true
	return s
}

func pixels(s param.Spec) param.Spec {
	s.Pixels = true
	return s
}

func choice(name, label, def string, options ...string) param.Spec {
	return param.Spec{Name: name, Label: label, Kind: param.Enumerated, Options: options, Default: param.Option(def)}
}

func flag(name, label string, def bool) param.Spec {
	return param.Spec{Name: name, Label: label, Kind: param.Boolean, Default: param.Bool(def)}
}

func point(name, label string, x, y float32) param.Spec {
	return param.Spec{Name: name, Label: label, Kind: param.Vector2, Min: 0, Max: 1, Step: 0.01, Default: param.Vec2(x, y)}
}

func f32(vs param.Values, name string) float32 {
	return float32(vs[name].Float())
}

// presetFilter describes a tonal filter driven by a colormatrix preset and
// an intensity slider.
func presetFilter(id, name string) Descriptor {
	f, ok := cm.Preset(id)
	if !ok {
		panic("catalog: unknown color matrix preset " + id)
	}
	return Descriptor{
		ID:          id,
		DisplayName: name,
		Category:    CategoryColor,
		Complexity:  0.05,
		Params:      []param.Spec{intensity()},
		ShaderRef:   ShaderColorMatrix,
		ColorMatrix: func(vs param.Values) cm.Matrix {
			return f.Matrix(f32(vs, "intensity"))
		},
	}
}

func builtin() []Descriptor {
	return []Descriptor{
		// Color grading.
		{
			ID:          "adjust",
			DisplayName: "Adjust",
			Category:    CategoryColor,
			Complexity:  0.05,
			Params: []param.Spec{
				number("brightness", "Brightness", -1, 1, 0.01, 0),
				number("contrast", "Contrast", 0, 4, 0.01, 1),
				number("saturation", "Saturation", 0, 3, 0.01, 1),
			},
			ShaderRef: ShaderColorMatrix,
			ColorMatrix: func(vs param.Values) cm.Matrix {
				return cm.Compose(
					cm.Saturation(f32(vs, "saturation")),
					cm.Contrast(f32(vs, "contrast")),
					cm.Brightness(f32(vs, "brightness")),
				)
			},
		},
		{
			ID:          "channel-mix",
			DisplayName: "Channel Mix",
			Category:    CategoryColor,
			Complexity:  0.05,
			Params: []param.Spec{
				number("red", "Red", -1, 1, 0.01, 0),
				number("green", "Green", -1, 1, 0.01, 0),
				number("blue", "Blue", -1, 1, 0.01, 0),
				intensity(),
			},
			ShaderRef: ShaderColorMatrix,
			ColorMatrix: func(vs param.Values) cm.Matrix {
				base := cm.ChannelOffset(f32(vs, "red"), f32(vs, "green"), f32(vs, "blue"))
				return cm.Lerp(cm.Identity(), base, f32(vs, "intensity"))
			},
		},
		{
			ID:          "tint",
			DisplayName: "Tint",
			Category:    CategoryColor,
			Complexity:  0.05,
			Params: []param.Spec{
				{Name: "color", Label: "Color", Kind: param.Color, Default: param.RGBA(1, 0.6, 0.2, 1)},
				intensity(),
			},
			ShaderRef: ShaderColorMatrix,
			ColorMatrix: func(vs param.Values) cm.Matrix {
				c := vs["color"].Color()
				a := c[3]
				base := cm.Compose(
					cm.ChannelOffset(c[0]*a, c[1]*a, c[2]*a),
					cm.RGBScale(1-a, 1-a, 1-a),
				)
				return cm.Lerp(cm.Identity(), base, f32(vs, "intensity"))
			},
		},
		{
			ID:          "hue-shift",
			DisplayName: "Hue Shift",
			Category:    CategoryColor,
			Complexity:  0.05,
			Params: []param.Spec{
				number("degrees", "Degrees", -180, 180, 1, 30),
				intensity(),
			},
			ShaderRef: ShaderColorMatrix,
			ColorMatrix: func(vs param.Values) cm.Matrix {
				return cm.Lerp(cm.Identity(), cm.HueRotate(f32(vs, "degrees")), f32(vs, "intensity"))
			},
		},
		presetFilter("sepia", "Sepia"),
		presetFilter("noir", "Noir"),
		presetFilter("vintage", "Vintage"),
		presetFilter("warm", "Warm"),
		presetFilter("cool", "Cool"),
		presetFilter("fade", "Fade"),
		presetFilter("invert", "Invert"),
		{
			ID:          "vignette",
			DisplayName: "Vignette",
			Category:    CategoryColor,
			Complexity:  0.1,
			Params: []param.Spec{
				number("radius", "Radius", 0.05, 1.5, 0.01, 0.75),
				number("softness", "Softness", 0.01, 1, 0.01, 0.45),
				number("strength", "Strength", 0, 1, 0.01, 0.6),
			},
			ShaderRef: "vignette",
		},

		// Cellular sampling.
		{
			ID:          "pixelate",
			DisplayName: "Pixelate",
			Category:    CategoryCellular,
			Complexity:  0.2,
			Params:      []param.Spec{pixels(number("cellSize", "Cell Size", 2, 128, 1, 10))},
			ShaderRef:   "pixelate",
		},
		{
			ID:          "voronoi",
			DisplayName: "Crystallize",
			Category:    CategoryCellular,
			Premium:     true,
			Complexity:  0.75,
			Params: []param.Spec{
				number("cellCount", "Cells", 2, 200, 1, 24),
				number("seed", "Seed", 0, 1000, 1, 1),
			},
			ShaderRef: "voronoi",
		},

		// Tiling and symmetry.
		{
			ID:          "kaleidoscope",
			DisplayName: "Kaleidoscope",
			Category:    CategorySymmetry,
			Premium:     true,
			Complexity:  0.3,
			Params: []param.Spec{
				number("segments", "Segments", 2, 24, 1, 6),
				number("angle", "Angle", -180, 180, 1, 0),
			},
			ShaderRef: "kaleidoscope",
		},
		{
			ID:          "mirror",
			DisplayName: "Mirror",
			Category:    CategorySymmetry,
			Complexity:  0.1,
			Params:      []param.Spec{choice("axis", "Axis", "horizontal", "horizontal", "vertical", "both")},
			ShaderRef:   "mirror",
		},

		// Geometric warps.
		{
			ID:          "wave",
			DisplayName: "Wave",
			Category:    CategoryWarp,
			Complexity:  0.3,
			Params: []param.Spec{
				number("amplitude", "Amplitude", 0, 0.2, 0.001, 0.02),
				number("frequency", "Frequency", 0, 50, 0.1, 10),
				number("phase", "Phase", 0, 360, 1, 0),
				choice("direction", "Direction", "horizontal", "horizontal", "vertical"),
			},
			ShaderRef: "wave",
		},
		{
			ID:          "twirl",
			DisplayName: "Twirl",
			Category:    CategoryWarp,
			Complexity:  0.35,
			Params: []param.Spec{
				point("center", "Center", 0.5, 0.5),
				number("radius", "Radius", 0, 1, 0.01, 0.5),
				number("angle", "Angle", -720, 720, 1, 180),
			},
			ShaderRef: "twirl",
		},
		{
			ID:          "bulge",
			DisplayName: "Bulge",
			Category:    CategoryWarp,
			Complexity:  0.35,
			Params: []param.Spec{
				point("center", "Center", 0.5, 0.5),
				number("radius", "Radius", 0, 1, 0.01, 0.5),
				number("strength", "Strength", -1, 1, 0.01, 0.5),
			},
			ShaderRef: "bulge",
		},
		{
			ID:          "lens",
			DisplayName: "Lens Distortion",
			Category:    CategoryWarp,
			Premium:     true,
			Complexity:  0.4,
			Params: []param.Spec{
				number("k1", "Barrel", -1, 1, 0.01, 0.2),
				number("k2", "Edge", -1, 1, 0.01, 0),
				number("zoom", "Zoom", 0.5, 2, 0.01, 1),
			},
			ShaderRef: "lens",
		},

		// Convolution.
		{
			ID:          "gaussian-blur",
			DisplayName: "Blur",
			Category:    CategoryBlur,
			Complexity:  0.6,
			Params:      []param.Spec{pixels(number("radius", "Radius", 0, 50, 0.5, 4))},
			ShaderRef:   "gaussian_blur",
		},
		{
			ID:          "soft-focus",
			DisplayName: "Soft Focus",
			Category:    CategoryBlur,
			Complexity:  0.8,
			Params:      []param.Spec{number("strength", "Strength", 0, 1, 0.01, 0.5)},
			ShaderRef:   "soft_focus",
		},
		{
			ID:          "sharpen",
			DisplayName: "Sharpen",
			Category:    CategoryBlur,
			Complexity:  0.3,
			Params:      []param.Spec{number("amount", "Amount", 0, 4, 0.05, 1)},
			ShaderRef:   "sharpen",
		},
		{
			ID:          "bilateral",
			DisplayName: "Smooth Skin",
			Category:    CategoryBlur,
			Premium:     true,
			Complexity:  0.95,
			Params: []param.Spec{
				structural("radius", "Radius", 1, 8, 3),
				pixels(number("sigmaSpatial", "Spatial Sigma", 0.5, 10, 0.1, 3)),
				number("sigmaColor", "Color Sigma", 0.01, 1, 0.01, 0.1),
			},
			ShaderRef: "bilateral",
		},
		{
			ID:          "median",
			DisplayName: "Denoise",
			Category:    CategoryBlur,
			Complexity:  0.65,
			Params:      []param.Spec{intensity()},
			ShaderRef:   "median",
		},
		{
			ID:          "oil-paint",
			DisplayName: "Oil Paint",
			Category:    CategoryBlur,
			Premium:     true,
			Complexity:  0.9,
			Params: []param.Spec{
				structural("radius", "Brush Size", 1, 6, 3),
				number("levels", "Levels", 2, 32, 1, 12),
			},
			ShaderRef: "oil_paint",
		},

		// Frequency-style filters.
		{
			ID:          "high-pass",
			DisplayName: "High Pass",
			Category:    CategoryFrequency,
			Complexity:  0.6,
			Params: []param.Spec{
				pixels(number("radius", "Radius", 0.5, 30, 0.5, 3)),
				number("gain", "Gain", 0, 4, 0.05, 1),
			},
			ShaderRef: "high_pass",
		},
		{
			ID:          "low-pass",
			DisplayName: "Low Pass",
			Category:    CategoryFrequency,
			Complexity:  0.6,
			Params:      []param.Spec{pixels(number("radius", "Radius", 0.5, 30, 0.5, 3))},
			ShaderRef:   "low_pass",
		},
		{
			ID:          "band-pass",
			DisplayName: "Focus Ring",
			Category:    CategoryFrequency,
			Complexity:  0.65,
			Params: []param.Spec{
				number("inner", "Inner Radius", 0, 1, 0.01, 0.1),
				number("outer", "Outer Radius", 0, 1.5, 0.01, 0.6),
				number("feather", "Feather", 0, 0.5, 0.01, 0.05),
				pixels(number("radius", "Blur Radius", 0.5, 30, 0.5, 6)),
				flag("invert", "Invert", false),
			},
			ShaderRef: "band_pass",
		},

		// Procedural generators.
		{
			ID:          "film-grain",
			DisplayName: "Film Grain",
			Category:    CategoryGenerator,
			Complexity:  0.5,
			Params: []param.Spec{
				number("amount", "Amount", 0, 1, 0.01, 0.3),
				pixels(number("size", "Grain Size", 0.5, 4, 0.1, 1)),
				number("seed", "Seed", 0, 1000, 1, 7),
				flag("monochrome", "Monochrome", true),
			},
			Generator: GeneratorFilmGrain,
		},
		{
			ID:          "clouds",
			DisplayName: "Clouds",
			Category:    CategoryGenerator,
			Premium:     true,
			Complexity:  0.8,
			Params: []param.Spec{
				number("scale", "Scale", 0.5, 20, 0.1, 4),
				number("coverage", "Coverage", 0, 1, 0.01, 0.5),
				number("octaves", "Detail", 1, 8, 1, 5),
				number("seed", "Seed", 0, 1000, 1, 3),
				{Name: "color", Label: "Color", Kind: param.Color, Default: param.RGBA(1, 1, 1, 1)},
			},
			Generator: GeneratorClouds,
		},
		{
			ID:          "glass",
			DisplayName: "Frosted Glass",
			Category:    CategoryGenerator,
			Premium:     true,
			Complexity:  0.75,
			Params: []param.Spec{
				number("scale", "Scale", 1, 50, 0.5, 12),
				number("strength", "Strength", 0, 0.1, 0.001, 0.02),
				number("seed", "Seed", 0, 1000, 1, 11),
			},
			Generator: GeneratorGlass,
		},
	}
}
