package colormatrix

import (
	"math"
	"testing"
)

func TestIdentity(t *testing.T) {
	m := Identity()
	expected := Matrix{
		1, 0, 0, 0, 0,
		0, 1, 0, 0, 0,
		0, 0, 1, 0, 0,
		0, 0, 0, 1, 0,
	}
	if m != expected {
		t.Errorf("Identity() = %v, want %v", m, expected)
	}
}

func TestComposeEmptyIsIdentity(t *testing.T) {
	if got := Compose(); got != Identity() {
		t.Errorf("Compose() = %v, want identity", got)
	}
}

func TestComposeWithIdentity(t *testing.T) {
	samples := []Matrix{
		Saturation(1.7),
		Contrast(2.2),
		Brightness(-0.3),
		ChannelOffset(0.1, -0.2, 0.3),
		RGBScale(0.5, 1.5, 2.5),
		Sepia(),
		Invert(),
		HueRotate(73),
		Compose(Contrast(1.2), Saturation(0.4), Brightness(0.1)),
	}
	for i, a := range samples {
		if got := Compose(a, Identity()); got != a {
			t.Errorf("sample %d: Compose(A, I) = %v, want %v", i, got, a)
		}
		if got := Compose(Identity(), a); got != a {
			t.Errorf("sample %d: Compose(I, A) = %v, want %v", i, got, a)
		}
	}
}

func TestComposeAssociative(t *testing.T) {
	a := Saturation(1.4)
	b := Contrast(0.6)
	c := ChannelOffset(0.05, 0.1, -0.2)

	left := Mul(Mul(a, b), c)
	right := Mul(a, Mul(b, c))
	if !left.ApproxEqual(right, 1e-5) {
		t.Errorf("(AB)C = %v, A(BC) = %v", left, right)
	}
	if got := Compose(a, b, c); !got.ApproxEqual(left, 1e-5) {
		t.Errorf("Compose(A, B, C) = %v, want %v", got, left)
	}
}

func TestComposeOrder(t *testing.T) {
	// Brightness then scale: (0.25 + 0.25) * 2 = 1.0
	m := Compose(RGBScale(2, 2, 2), Brightness(0.25))
	r, _, _, _ := m.Transform(0.25, 0.25, 0.25, 1)
	if math.Abs(float64(r-1.0)) > 1e-6 {
		t.Errorf("scale∘brightness on 0.25 = %v, want 1.0", r)
	}

	// Scale then brightness: 0.25 * 2 + 0.25 = 0.75
	m = Compose(Brightness(0.25), RGBScale(2, 2, 2))
	r, _, _, _ = m.Transform(0.25, 0.25, 0.25, 1)
	if math.Abs(float64(r-0.75)) > 1e-6 {
		t.Errorf("brightness∘scale on 0.25 = %v, want 0.75", r)
	}
}

func TestConstructorsClamp(t *testing.T) {
	tests := []struct {
		name string
		got  Matrix
		want Matrix
	}{
		{"saturation_high", Saturation(10), Saturation(MaxSaturation)},
		{"saturation_low", Saturation(-1), Saturation(MinSaturation)},
		{"contrast_high", Contrast(99), Contrast(MaxContrast)},
		{"contrast_low", Contrast(-5), Contrast(MinContrast)},
		{"brightness_high", Brightness(7), Brightness(MaxOffset)},
		{"brightness_low", Brightness(-7), Brightness(MinOffset)},
		{"scale_high", RGBScale(9, 9, 9), RGBScale(MaxScale, MaxScale, MaxScale)},
		{"saturation_nan", Saturation(float32(math.NaN())), Identity()},
		{"contrast_nan", Contrast(float32(math.NaN())), Identity()},
		{"brightness_nan", Brightness(float32(math.NaN())), Identity()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.got.ApproxEqual(tt.want, 1e-6) {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestConstructorsFinite(t *testing.T) {
	inputs := []float32{
		-1e30, -10, -1, -0.5, 0, 0.25, 0.5, 1, 2, 3, 4, 1e30,
		float32(math.Inf(1)), float32(math.Inf(-1)), float32(math.NaN()),
	}
	for _, v := range inputs {
		for name, m := range map[string]Matrix{
			"saturation": Saturation(v),
			"contrast":   Contrast(v),
			"brightness": Brightness(v),
			"offset":     ChannelOffset(v, v, v),
			"scale":      RGBScale(v, v, v),
			"hue":        HueRotate(v),
			"lerp":       Lerp(Identity(), Sepia(), v),
		} {
			if !m.IsFinite() {
				t.Errorf("%s(%v) produced non-finite matrix %v", name, v, m)
			}
		}
	}
}

func TestLerpEndpointsExact(t *testing.T) {
	for _, f := range presets {
		if got := f.Matrix(0); got != Identity() {
			t.Errorf("%s.Matrix(0) = %v, want identity", f.ID, got)
		}
		if got := f.Matrix(1); got != f.Base {
			t.Errorf("%s.Matrix(1) = %v, want base %v", f.ID, got, f.Base)
		}
		if got := f.Matrix(5); got != f.Base {
			t.Errorf("%s.Matrix(5) should clamp to base", f.ID)
		}
		if got := f.Matrix(-2); got != Identity() {
			t.Errorf("%s.Matrix(-2) should clamp to identity", f.ID)
		}
	}
}

func TestLerpMidpoint(t *testing.T) {
	got := Lerp(Identity(), Brightness(0.5), 0.5)
	want := Brightness(0.25)
	if !got.ApproxEqual(want, 1e-6) {
		t.Errorf("Lerp midpoint = %v, want %v", got, want)
	}
}

func TestSaturationZeroIsGray(t *testing.T) {
	r, g, b, _ := Grayscale().Transform(1, 0, 0, 1)
	if absf32(r-0.2126) > 1e-4 || absf32(r-g) > 1e-6 || absf32(r-b) > 1e-6 {
		t.Errorf("Grayscale red = (%v, %v, %v), want uniform ~0.2126", r, g, b)
	}
}

func TestContrastZeroIsMidGray(t *testing.T) {
	for _, in := range []float32{0, 0.3, 1} {
		r, _, _, _ := Contrast(0).Transform(in, in, in, 1)
		if absf32(r-0.5) > 1e-6 {
			t.Errorf("Contrast(0) on %v = %v, want 0.5", in, r)
		}
	}
}

func TestHueRotateFullTurn(t *testing.T) {
	if !HueRotate(360).ApproxEqual(HueRotate(0), 1e-5) {
		t.Error("HueRotate(360) should equal HueRotate(0)")
	}
	if !HueRotate(0).ApproxEqual(Identity(), 1e-3) {
		t.Errorf("HueRotate(0) = %v, want ~identity", HueRotate(0))
	}
}

func absf32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
