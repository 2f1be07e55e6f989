package stack

import (
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/fx/catalog"
	"github.com/gogpu/fx/param"
	"github.com/gogpu/fx/render"
	"github.com/gogpu/fx/shader"
)

type stubCompiler struct{ fail bool }

func (c stubCompiler) Compile(string) ([]byte, error) {
	if c.fail {
		return nil, errors.New("synthetic failure")
	}
	b := make([]byte, 20)
	binary.LittleEndian.PutUint32(b, 0x07230203)
	return b, nil
}

func newCompositor(t *testing.T, c shader.Compiler) *Compositor {
	t.Helper()
	dev := render.NewSoftwareDevice(2)
	t.Cleanup(dev.Close)
	r := render.NewRenderer(shader.NewProgramCache(shader.WithCompiler(c)), dev)
	return NewCompositor(r, catalog.Default())
}

func photo(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: uint8((x + y) * 5), A: 255})
		}
	}
	return img
}

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func pixels(t *testing.T, img image.Image) []uint8 {
	t.Helper()
	n, ok := img.(*image.NRGBA)
	require.True(t, ok, "composite returned %T", img)
	return n.Pix
}

func TestInvisibleLayerEqualsRemoved(t *testing.T) {
	c := newCompositor(t, stubCompiler{})
	src := photo(24, 16)
	for _, mode := range BlendModes() {
		t.Run(mode.String(), func(t *testing.T) {
			hidden := NewLayer("h", "invert", nil)
			hidden.Visible = false
			hidden.Blend = mode
			with, err := New(
				NewLayer("a", "sepia", nil),
				hidden,
				NewLayer("b", "vignette", nil),
			)
			require.NoError(t, err)
			without, err := with.Remove("h")
			require.NoError(t, err)

			got, err := c.Composite(src, with, 1)
			require.NoError(t, err)
			want, err := c.Composite(src, without, 1)
			require.NoError(t, err)
			assert.Equal(t, pixels(t, want), pixels(t, got))
		})
	}
}

func TestZeroOpacityHasNoEffect(t *testing.T) {
	c := newCompositor(t, stubCompiler{})
	src := photo(16, 16)
	l := NewLayer("x", "invert", nil)
	l.Opacity = 0
	s, err := New(l)
	require.NoError(t, err)

	got, err := c.Composite(src, s, 1)
	require.NoError(t, err)
	assert.Equal(t, src.Pix, pixels(t, got))
}

func TestOrderMatters(t *testing.T) {
	c := newCompositor(t, stubCompiler{})
	src := photo(32, 32)
	s, err := New(
		NewLayer("p", "pixelate", param.Values{"cellSize": param.Number(8)}),
		NewLayer("w", "twirl", param.Values{"angle": param.Number(180)}),
	)
	require.NoError(t, err)
	ab, err := c.Composite(src, s, 1)
	require.NoError(t, err)

	swapped, err := s.Move(0, 1)
	require.NoError(t, err)
	ba, err := c.Composite(src, swapped, 1)
	require.NoError(t, err)
	assert.NotEqual(t, pixels(t, ab), pixels(t, ba))
}

func TestDoubleInvertIsIdentity(t *testing.T) {
	c := newCompositor(t, stubCompiler{})
	src := photo(12, 9)
	s, err := New(NewLayer("a", "invert", nil), NewLayer("b", "invert", nil))
	require.NoError(t, err)
	got, err := c.Composite(src, s, 1)
	require.NoError(t, err)
	assert.Equal(t, src.Pix, pixels(t, got))
	assert.NotSame(t, src, got)
}

func TestCompositeDegradesPerLayer(t *testing.T) {
	c := newCompositor(t, stubCompiler{fail: true})
	src := photo(10, 10)
	s, err := New(
		NewLayer("bad", "twirl", nil),
		NewLayer("ghost", "no-such-effect", nil),
		NewLayer("gen", "film-grain", param.Values{"amount": param.Number(0)}),
	)
	require.NoError(t, err)

	got, err := c.Composite(src, s, 1)
	require.Error(t, err)
	require.NotNil(t, got)
	assert.True(t, shader.IsCompileError(err))
	assert.ErrorIs(t, err, catalog.ErrNotFound)
	assert.Equal(t, src.Pix, pixels(t, got))
}

func TestCompositeScale(t *testing.T) {
	c := newCompositor(t, stubCompiler{})
	s, err := New(NewLayer("a", "noir", nil))
	require.NoError(t, err)

	got, err := c.Composite(photo(40, 30), s, 0.5)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 20, 15), got.Bounds())

	empty, err := c.Composite(photo(40, 30), Stack{}, 1)
	require.NoError(t, err)
	assert.Equal(t, 40, empty.Bounds().Dx())

	_, err = c.Composite(photo(4, 4), s, 0)
	var ae *render.TargetAllocationError
	assert.ErrorAs(t, err, &ae)

	_, err = c.Composite(nil, s, 1)
	assert.ErrorIs(t, err, render.ErrNilImage)
}

func TestTranslucentIdentityKeepsAlpha(t *testing.T) {
	c := newCompositor(t, stubCompiler{})
	src := solid(6, 4, color.NRGBA{R: 200, G: 40, B: 40, A: 128})
	s, err := New(
		NewLayer("a", "sepia", param.Values{"intensity": param.Number(0)}),
		NewLayer("b", "sepia", param.Values{"intensity": param.Number(0)}),
	)
	require.NoError(t, err)

	got, err := c.Composite(src, s, 1)
	require.NoError(t, err)
	assert.Equal(t, src.Pix, pixels(t, got))
}

func TestTranslucentBlendModes(t *testing.T) {
	c := newCompositor(t, stubCompiler{})
	// invert turns the backdrop into (55, 155, 215, 160).
	src := solid(3, 2, color.NRGBA{R: 200, G: 100, B: 40, A: 160})
	tests := []struct {
		mode BlendMode
		want color.NRGBA
	}{
		{BlendNormal, color.NRGBA{R: 113, G: 133, B: 145, A: 160}},
		{BlendMultiply, color.NRGBA{R: 109, G: 98, B: 77, A: 160}},
		{BlendScreen, color.NRGBA{R: 172, G: 148, B: 147, A: 160}},
		{BlendOverlay, color.NRGBA{R: 156, G: 120, B: 89, A: 160}},
		{BlendDarken, color.NRGBA{R: 113, G: 112, B: 79, A: 160}},
		{BlendLighten, color.NRGBA{R: 168, G: 133, B: 145, A: 160}},
		{BlendColorDodge, color.NRGBA{R: 188, G: 171, B: 160, A: 160}},
		{BlendColorBurn, color.NRGBA{R: 92, G: 75, B: 64, A: 160}},
		{BlendHardLight, color.NRGBA{R: 125, G: 125, B: 135, A: 160}},
		{BlendSoftLight, color.NRGBA{R: 158, G: 117, B: 95, A: 160}},
		{BlendDifference, color.NRGBA{R: 147, G: 95, B: 130, A: 160}},
		{BlendExclusion, color.NRGBA{R: 156, G: 125, B: 135, A: 160}},
		{BlendAdd, color.NRGBA{R: 188, G: 171, B: 160, A: 160}},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			l := NewLayer("x", "invert", nil)
			l.Blend = tt.mode
			l.Opacity = 0.6
			s, err := New(l)
			require.NoError(t, err)

			got, err := c.Composite(src, s, 1)
			require.NoError(t, err)
			out, ok := got.(*image.NRGBA)
			require.True(t, ok)
			assert.Equal(t, tt.want, out.NRGBAAt(0, 0))
			assert.Equal(t, tt.want, out.NRGBAAt(2, 1))
		})
	}
}

// cells counts runs of equal pixels along row y.
func cells(t *testing.T, img image.Image, y int) int {
	t.Helper()
	n, ok := img.(*image.NRGBA)
	require.True(t, ok, "composite returned %T", img)
	runs := 1
	for x := 1; x < n.Bounds().Dx(); x++ {
		if n.NRGBAAt(x, y) != n.NRGBAAt(x-1, y) {
			runs++
		}
	}
	return runs
}

func TestPixelLengthsFollowScale(t *testing.T) {
	c := newCompositor(t, stubCompiler{})
	s, err := New(NewLayer("p", "pixelate", param.Values{"cellSize": param.Number(10)}))
	require.NoError(t, err)
	src := photo(80, 8)

	full, err := c.Composite(src, s, 1)
	require.NoError(t, err)
	preview, err := c.Composite(src, s, 0.5)
	require.NoError(t, err)

	assert.Equal(t, 8, cells(t, full, 2))
	assert.Equal(t, 8, cells(t, preview, 1), "preview cells must cover the same share of the frame")
	p := preview.(*image.NRGBA)
	assert.Equal(t, p.NRGBAAt(0, 1), p.NRGBAAt(4, 1))
	assert.NotEqual(t, p.NRGBAAt(4, 1), p.NRGBAAt(5, 1))
}
