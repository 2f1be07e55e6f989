// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/fx/internal/kernel"
)

// DefaultMaxTargetSize is the largest target side accepted by default.
const DefaultMaxTargetSize = 16384

// TargetAllocationError reports a render target that could not be created.
type TargetAllocationError struct {
	Width, Height int
	Reason        string
}

func (e *TargetAllocationError) Error() string {
	return fmt.Sprintf("render: cannot allocate %dx%d target: %s", e.Width, e.Height, e.Reason)
}

// Target is an off-screen render target backed by CPU memory.
//
// Pixels are stored as straight-alpha floats so chained kernels do not
// round between passes; Image converts to 8-bit RGBA.
type Target struct {
	img *kernel.Image
}

// NewTarget allocates a transparent width×height target. Sides must be in
// [1, maxSide]; maxSide <= 0 means DefaultMaxTargetSize.
func NewTarget(width, height, maxSide int) (*Target, error) {
	if err := checkTargetSize(width, height, maxSide); err != nil {
		return nil, err
	}
	return &Target{img: kernel.NewImage(width, height)}, nil
}

// targetFrom wraps an already-converted raster.
func targetFrom(img *kernel.Image) *Target { return &Target{img: img} }

// Width returns the target width in pixels.
func (t *Target) Width() int { return t.img.W }

// Height returns the target height in pixels.
func (t *Target) Height() int { return t.img.H }

// Format returns the pixel format Image produces.
func (t *Target) Format() gputypes.TextureFormat {
	return gputypes.TextureFormatRGBA8Unorm
}

// Image returns a snapshot of the target as 8-bit RGBA.
func (t *Target) Image() *image.NRGBA { return t.img.NRGBA() }

// Pixels returns direct access to the float pixel data, 4 components per
// pixel, row-major.
func (t *Target) Pixels() []float32 { return t.img.Pix }

// setRows overwrites t with 8-bit straight-alpha pixels whose rows are
// stride bytes apart.
func (t *Target) setRows(pix []byte, stride int) {
	w := t.img.W * 4
	for y := range t.img.H {
		row := pix[y*stride : y*stride+w]
		out := t.img.Pix[y*w : (y+1)*w]
		for i, v := range row {
			out[i] = float32(v) / 255
		}
	}
}

func checkTargetSize(width, height, maxSide int) error {
	if maxSide <= 0 {
		maxSide = DefaultMaxTargetSize
	}
	switch {
	case width < 1 || height < 1:
		return &TargetAllocationError{Width: width, Height: height, Reason: "empty size"}
	case width > maxSide || height > maxSide:
		return &TargetAllocationError{
			Width: width, Height: height,
			Reason: fmt.Sprintf("side exceeds limit %d", maxSide),
		}
	}
	return nil
}
