// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"
	"time"

	"github.com/disintegration/imaging"
	"github.com/soypat/geometry/ms2"
	"golang.org/x/image/draw"

	"github.com/gogpu/fx/catalog"
	"github.com/gogpu/fx/internal/kernel"
	"github.com/gogpu/fx/shader"
	"github.com/gogpu/fx/uniform"
)

// ErrNilImage is returned when Render is given no source image.
var ErrNilImage = errors.New("render: nil image")

// Error reports a failed effect render. The renderer returned the source
// image in its place.
type Error struct {
	EffectID string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("render: effect %q: %v", e.EffectID, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Renderer draws one effect over one image.
type Renderer struct {
	programs *shader.ProgramCache
	device   Device
	log      *slog.Logger
	maxSide  int
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger for degraded renders and timings.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.log = l
		}
	}
}

// WithMaxTargetSize limits the side of any target the renderer allocates.
func WithMaxTargetSize(n int) Option {
	return func(r *Renderer) {
		if n > 0 {
			r.maxSide = n
		}
	}
}

// NewRenderer creates a renderer that loads programs from programs and
// runs them on device.
func NewRenderer(programs *shader.ProgramCache, device Device, opts ...Option) *Renderer {
	r := &Renderer{
		programs: programs,
		device:   device,
		log:      slog.New(slog.DiscardHandler),
		maxSide:  DefaultMaxTargetSize,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Programs returns the renderer's program cache.
func (r *Renderer) Programs() *shader.ProgramCache { return r.programs }

// Device returns the renderer's device.
func (r *Renderer) Device() Device { return r.device }

// Render draws desc over img into a target of img's size times scale,
// rounded down and at least 1×1. The resolution uniform is set to the
// target size and pixel-length parameters are scaled to it.
//
// On success the result is a new image. On failure Render returns img
// itself with an *Error; img is never modified either way.
func (r *Renderer) Render(img image.Image, desc catalog.Descriptor, u uniform.Set, scale float64) (image.Image, error) {
	if img == nil {
		return nil, &Error{EffectID: desc.ID, Err: ErrNilImage}
	}
	start := time.Now()

	w, h, err := TargetSize(img.Bounds(), scale)
	if err == nil {
		err = r.CheckTarget(w, h)
	}
	if err != nil {
		return r.degrade(img, desc, err)
	}
	src := targetFrom(kernel.FromImage(Scale(img, w, h)))
	dst, err := NewTarget(w, h, r.maxSide)
	if err != nil {
		return r.degrade(img, desc, err)
	}
	u = u.WithResolution(ms2.Vec{X: float32(w), Y: float32(h)}).
		WithPixelScale(float32(w) / float32(img.Bounds().Dx()))

	if desc.Generator != "" {
		err = r.device.Generate(dst, src, desc.Generator, u)
	} else {
		var prog *shader.Program
		prog, err = r.programs.Load(shader.NewKey(desc.ShaderRef, u.Defines()))
		if err == nil {
			err = r.device.Draw(dst, src, prog, u)
		}
	}
	if err != nil {
		return r.degrade(img, desc, err)
	}

	r.log.Debug("effect drawn",
		"effect", desc.ID,
		"device", r.device.Name(),
		"size", fmt.Sprintf("%dx%d", w, h),
		"elapsed", time.Since(start))
	return dst.Image(), nil
}

// CheckTarget returns a *TargetAllocationError unless a w×h target fits
// the renderer's size limit.
func (r *Renderer) CheckTarget(w, h int) error {
	return checkTargetSize(w, h, r.maxSide)
}

func (r *Renderer) degrade(img image.Image, desc catalog.Descriptor, err error) (image.Image, error) {
	r.log.Warn("effect skipped", "effect", desc.ID, "err", err)
	return img, &Error{EffectID: desc.ID, Err: err}
}

// TargetSize returns the size of b scaled by scale, rounded down with a
// minimum of 1×1.
func TargetSize(b image.Rectangle, scale float64) (int, int, error) {
	if math.IsNaN(scale) || math.IsInf(scale, 0) || scale <= 0 {
		return 0, 0, &TargetAllocationError{
			Width: b.Dx(), Height: b.Dy(),
			Reason: fmt.Sprintf("invalid scale %v", scale),
		}
	}
	if b.Empty() {
		return 0, 0, &TargetAllocationError{Width: b.Dx(), Height: b.Dy(), Reason: "empty source"}
	}
	fw := math.Floor(float64(b.Dx()) * scale)
	fh := math.Floor(float64(b.Dy()) * scale)
	if fw > math.MaxInt32 || fh > math.MaxInt32 {
		return 0, 0, &TargetAllocationError{Width: b.Dx(), Height: b.Dy(), Reason: "size overflow"}
	}
	return max(int(fw), 1), max(int(fh), 1), nil
}

// Scale returns img resampled to w×h as a new image. Downscaling uses
// bilinear filtering, upscaling Catmull-Rom; an unchanged size is a plain
// copy.
func Scale(img image.Image, w, h int) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return imaging.Clone(img)
	}
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	var s draw.Scaler = draw.CatmullRom
	if w < b.Dx() || h < b.Dy() {
		s = draw.BiLinear
	}
	s.Scale(out, out.Bounds(), img, b, draw.Src, nil)
	return out
}
