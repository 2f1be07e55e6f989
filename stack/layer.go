// Package stack models the ordered list of effect layers applied to an
// image, its undo history and the compositor that renders it.
//
// A Stack is an immutable value: every edit returns a new Stack and leaves
// the receiver untouched, so a snapshot handed to a History or to a
// concurrent Composite can never change underneath it. Snapshots share
// unchanged layers; a layer's Params map is never mutated once it is in a
// Stack.
package stack

import (
	"math"

	"github.com/gogpu/fx/internal/blend"
	"github.com/gogpu/fx/param"
)

// BlendMode selects how a layer's output combines with the layers below.
// Modes serialize by name ("normal", "multiply", ...).
type BlendMode = blend.Mode

// Blend modes.
const (
	BlendNormal     = blend.Normal
	BlendMultiply   = blend.Multiply
	BlendScreen     = blend.Screen
	BlendOverlay    = blend.Overlay
	BlendDarken     = blend.Darken
	BlendLighten    = blend.Lighten
	BlendColorDodge = blend.ColorDodge
	BlendColorBurn  = blend.ColorBurn
	BlendHardLight  = blend.HardLight
	BlendSoftLight  = blend.SoftLight
	BlendDifference = blend.Difference
	BlendExclusion  = blend.Exclusion
	BlendAdd        = blend.Add
)

// BlendModes returns every blend mode.
func BlendModes() []BlendMode { return blend.Modes() }

// ParseBlendMode returns the blend mode with the given name.
func ParseBlendMode(s string) (BlendMode, error) { return blend.ParseMode(s) }

// Layer is one use of an effect inside a stack.
type Layer struct {
	ID       string
	EffectID string
	Params   param.Values
	Opacity  float64
	Visible  bool
	Blend    BlendMode
}

// NewLayer returns a visible, fully opaque, normal-blended layer.
func NewLayer(id, effectID string, params param.Values) Layer {
	return Layer{
		ID:       id,
		EffectID: effectID,
		Params:   params.Clone(),
		Opacity:  1,
		Visible:  true,
		Blend:    BlendNormal,
	}
}

// Clone returns a copy of l with its own Params map.
func (l Layer) Clone() Layer {
	l.Params = l.Params.Clone()
	return l
}

// Equal reports whether two layers hold the same settings.
func (l Layer) Equal(o Layer) bool {
	return l.ID == o.ID &&
		l.EffectID == o.EffectID &&
		l.Opacity == o.Opacity &&
		l.Visible == o.Visible &&
		l.Blend == o.Blend &&
		l.Params.Equal(o.Params)
}

// ClampOpacity limits v to [0, 1]. NaN becomes 1.
func ClampOpacity(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 1
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
