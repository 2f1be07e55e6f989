package colormatrix

// Filter is a named tonal filter defined by a base matrix. The effective
// matrix moves from the identity toward Base as intensity goes from 0 to 1.
type Filter struct {
	ID   string
	Name string
	Base Matrix
}

// Matrix returns the filter's effective matrix at the given intensity.
// Matrix(0) is the identity and Matrix(1) is Base, bit for bit.
func (f Filter) Matrix(intensity float32) Matrix {
	return Lerp(Identity(), f.Base, intensity)
}

var presets = map[string]Filter{
	"sepia": {ID: "sepia", Name: "Sepia", Base: Sepia()},
	"noir": {ID: "noir", Name: "Noir", Base: Compose(
		Contrast(1.35),
		Grayscale(),
	)},
	"vintage": {ID: "vintage", Name: "Vintage", Base: Compose(
		ChannelOffset(0.06, 0.02, -0.04),
		Contrast(0.85),
		Saturation(0.7),
	)},
	"warm": {ID: "warm", Name: "Warm", Base: Compose(
		RGBScale(1.12, 1.02, 0.86),
		Saturation(1.1),
	)},
	"cool": {ID: "cool", Name: "Cool", Base: Compose(
		RGBScale(0.9, 1.0, 1.15),
		Brightness(0.02),
	)},
	"invert": {ID: "invert", Name: "Invert", Base: Invert()},
	"fade": {ID: "fade", Name: "Fade", Base: Compose(
		Brightness(0.08),
		Contrast(0.7),
		Saturation(0.8),
	)},
}

// Preset returns a built-in filter by id.
func Preset(id string) (Filter, bool) {
	f, ok := presets[id]
	return f, ok
}
