// Package quality chooses the resolution of a render pass.
//
// While the user drags a parameter, expensive effects render at Low and the
// rest at Medium; once interaction stops every effect renders at High, the
// source's full resolution.
package quality

import (
	"fmt"
	"slices"
)

// Level is a render resolution tier.
type Level uint8

// Quality levels, cheapest first.
const (
	Low Level = iota
	Medium
	High
)

var levelNames = [...]string{Low: "low", Medium: "medium", High: "high"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return fmt.Sprintf("Level(%d)", l)
}

// ParseLevel returns the level with the given name.
func ParseLevel(s string) (Level, error) {
	if i := slices.Index(levelNames[:], s); i >= 0 {
		return Level(i), nil
	}
	return High, fmt.Errorf("quality: unknown level %q", s)
}

// Default scale factors and complexity threshold.
const (
	DefaultLowScale    = 0.35
	DefaultMediumScale = 0.6
	DefaultHighScale   = 1.0
	DefaultThreshold   = 0.7
)

// Selector maps an effect's complexity and the interaction state to a
// Level and its scale factor. The zero Selector is not usable; use
// NewSelector.
type Selector struct {
	scales    [3]float64
	threshold float64
}

// Option configures a Selector.
type Option func(*Selector)

// WithScales sets the resolution factor of each level. Factors outside
// (0, 1] are ignored.
func WithScales(low, medium, high float64) Option {
	return func(s *Selector) {
		for i, v := range [...]float64{low, medium, high} {
			if v > 0 && v <= 1 {
				s.scales[i] = v
			}
		}
	}
}

// WithThreshold sets the complexity above which interactive renders drop
// to Low.
func WithThreshold(t float64) Option {
	return func(s *Selector) {
		if t >= 0 && t <= 1 {
			s.threshold = t
		}
	}
}

// NewSelector creates a selector with the default scales and threshold.
func NewSelector(opts ...Option) Selector {
	s := Selector{
		scales:    [3]float64{DefaultLowScale, DefaultMediumScale, DefaultHighScale},
		threshold: DefaultThreshold,
	}
	for _, o := range opts {
		o(&s)
	}
	return s
}

// Select returns the level for an effect of the given complexity.
func (s Selector) Select(complexity float64, interacting bool) Level {
	switch {
	case !interacting:
		return High
	case complexity > s.threshold:
		return Low
	default:
		return Medium
	}
}

// Scale returns the resolution factor of l.
func (s Selector) Scale(l Level) float64 {
	if int(l) >= len(s.scales) {
		return s.scales[High]
	}
	return s.scales[l]
}

// SelectScale is Select followed by Scale.
func (s Selector) SelectScale(complexity float64, interacting bool) float64 {
	return s.Scale(s.Select(complexity, interacting))
}

// Threshold returns the complexity threshold.
func (s Selector) Threshold() float64 { return s.threshold }
