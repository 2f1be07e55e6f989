package stack

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/disintegration/imaging"
	"github.com/soypat/geometry/ms2"

	"github.com/gogpu/fx/catalog"
	"github.com/gogpu/fx/internal/blend"
	"github.com/gogpu/fx/render"
	"github.com/gogpu/fx/uniform"
)

// Compositor renders a stack over a source image.
type Compositor struct {
	renderer *render.Renderer
	catalog  *catalog.Catalog
	log      *slog.Logger
}

// CompositorOption configures a Compositor.
type CompositorOption func(*Compositor)

// WithLogger sets the logger for per-layer timings and skipped layers.
func WithLogger(l *slog.Logger) CompositorOption {
	return func(c *Compositor) {
		if l != nil {
			c.log = l
		}
	}
}

// NewCompositor creates a compositor resolving effect ids in cat and
// drawing each layer with r.
func NewCompositor(r *render.Renderer, cat *catalog.Catalog, opts ...CompositorOption) *Compositor {
	c := &Compositor{
		renderer: r,
		catalog:  cat,
		log:      slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Composite renders s over src at the given resolution scale and returns
// the result, a new image of src's size times scale.
//
// Layers are applied in stack order, each one reading the accumulated
// result of the layers below it. Invisible layers are skipped. A visible
// layer is always rendered, then blended into the accumulator with its
// blend mode and opacity; at opacity 0 it leaves the accumulator as is.
//
// A layer that cannot be rendered contributes nothing; its error is
// joined into the returned error and the remaining layers still run. The
// returned image is never nil unless src is.
func (c *Compositor) Composite(src image.Image, s Stack, scale float64) (image.Image, error) {
	if src == nil {
		return nil, render.ErrNilImage
	}
	w, h, err := render.TargetSize(src.Bounds(), scale)
	if err == nil {
		err = c.renderer.CheckTarget(w, h)
	}
	if err != nil {
		return src, err
	}
	acc := render.Scale(src, w, h)
	res := ms2.Vec{X: float32(w), Y: float32(h)}
	px := float32(w) / float32(src.Bounds().Dx())

	var errs []error
	for i, l := range s.All() {
		if !l.Visible {
			continue
		}
		desc, ok := c.catalog.Get(l.EffectID)
		if !ok {
			errs = append(errs, fmt.Errorf("stack: layer %q: %w: %q", l.ID, catalog.ErrNotFound, l.EffectID))
			continue
		}

		start := time.Now()
		out, err := c.renderer.Render(acc, desc, uniform.Bind(desc, l.Params, res).WithPixelScale(px), 1)
		if err != nil {
			errs = append(errs, fmt.Errorf("stack: layer %q: %w", l.ID, err))
			continue
		}
		blend.Image(acc, toNRGBA(out), l.Blend, float32(ClampOpacity(l.Opacity)))

		c.log.Debug("layer composited",
			"index", i,
			"layer", l.ID,
			"effect", l.EffectID,
			"blend", l.Blend,
			"opacity", l.Opacity,
			"elapsed", time.Since(start))
	}
	return acc, errors.Join(errs...)
}

func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return n
	}
	return imaging.Clone(img)
}
