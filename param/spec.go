package param

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// Spec describes one tunable effect parameter.
//
// Min and Max bound numeric and vector2 values when Max > Min. Options is
// set exactly when Kind is Enumerated. A Structural parameter changes the
// shader source itself (for example a fixed loop bound) and therefore takes
// part in the compiled program's cache key.
type Spec struct {
	Name       string   `json:"name" validate:"required"`
	Label      string   `json:"label"`
	Kind       Kind     `json:"kind" validate:"min=1,max=5"`
	Min        float64  `json:"min,omitempty"`
	Max        float64  `json:"max,omitempty"`
	Step       float64  `json:"step,omitempty" validate:"gte=0"`
	Default    Value    `json:"default"`
	Options    []string `json:"options,omitempty"`
	Structural bool     `json:"structural,omitempty"`
	// Pixels marks a length measured in source-image pixels. Renders at
	// a reduced resolution scale it to keep the look of a full export.
	Pixels     bool     `json:"pixels,omitempty"`
}

// HasRange reports whether Min and Max bound the parameter.
func (s Spec) HasRange() bool { return s.Max > s.Min }

// Validate checks the schema invariants: the default has the declared
// kind and lies in range, and options are present iff the kind is
// enumerated.
func (s Spec) Validate() error {
	if s.Name == "" {
		return errors.New("param: empty name")
	}
	if s.Default.Kind() != s.Kind {
		return fmt.Errorf("param %q: default is %s, want %s", s.Name, s.Default.Kind(), s.Kind)
	}
	if (s.Kind == Enumerated) != (len(s.Options) > 0) {
		return fmt.Errorf("param %q: options must be present iff kind is enumerated", s.Name)
	}
	if s.Structural && s.Kind != Numeric && s.Kind != Enumerated {
		return fmt.Errorf("param %q: only numeric or enumerated parameters can be structural", s.Name)
	}
	if s.Pixels && (s.Kind != Numeric || s.Structural) {
		return fmt.Errorf("param %q: only non-structural numeric parameters can be pixel lengths", s.Name)
	}
	switch s.Kind {
	case Numeric:
		d := s.Default.Float()
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return fmt.Errorf("param %q: default is not finite", s.Name)
		}
		if s.HasRange() && (d < s.Min || d > s.Max) {
			return fmt.Errorf("param %q: default %g outside [%g, %g]", s.Name, d, s.Min, s.Max)
		}
	case Enumerated:
		if s.indexOf(s.Default) < 0 {
			return fmt.Errorf("param %q: default %s is not an option", s.Name, s.Default)
		}
	case Vector2:
		v := s.Default.Vec()
		if s.HasRange() && (float64(v.X) < s.Min || float64(v.X) > s.Max ||
			float64(v.Y) < s.Min || float64(v.Y) > s.Max) {
			return fmt.Errorf("param %q: default %s outside [%g, %g]", s.Name, s.Default, s.Min, s.Max)
		}
	case Color:
		for _, c := range s.Default.Color() {
			if c < 0 || c > 1 {
				return fmt.Errorf("param %q: default color component outside [0, 1]", s.Name)
			}
		}
	}
	return nil
}

// Normalize returns the value a parameter takes when the caller supplies v.
// An unset or wrongly typed v yields the default; a well-typed v is clamped
// into range. Enumerated values come back selected by name, and an unknown
// option resolves to the first option.
func (s Spec) Normalize(v Value) Value {
	switch s.Kind {
	case Numeric:
		if v.Kind() != Numeric || math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return s.Default
		}
		return Number(s.clamp(v.num))
	case Enumerated:
		if v.Kind() != Enumerated {
			return s.Default
		}
		return Option(s.Options[max(s.indexOf(v), 0)])
	case Boolean:
		if v.Kind() != Boolean {
			return s.Default
		}
		return Bool(v.Bool())
	case Vector2:
		if v.Kind() != Vector2 || !finite32(v.vec.X) || !finite32(v.vec.Y) {
			return s.Default
		}
		return Vec2(float32(s.clamp(float64(v.vec.X))), float32(s.clamp(float64(v.vec.Y))))
	case Color:
		if v.Kind() == Enumerated && v.opt != "" {
			if c, ok := parseHexColor(v.opt); ok {
				return RGBA(c[0], c[1], c[2], c[3])
			}
		}
		if v.Kind() != Color {
			return s.Default
		}
		var c [4]float32
		for i, x := range v.col {
			if !finite32(x) {
				return s.Default
			}
			c[i] = min(max(x, 0), 1)
		}
		return RGBA(c[0], c[1], c[2], c[3])
	}
	return s.Default
}

// Index returns the zero-based option index for an enumerated value.
// Unknown options map to 0.
func (s Spec) Index(v Value) int {
	return max(s.indexOf(v), 0)
}

func (s Spec) indexOf(v Value) int {
	if v.Kind() != Enumerated || len(s.Options) == 0 {
		return -1
	}
	if v.opt == "" && v.idx >= 0 {
		if v.idx < len(s.Options) {
			return v.idx
		}
		return -1
	}
	return slices.Index(s.Options, v.opt)
}

func (s Spec) clamp(x float64) float64 {
	if !s.HasRange() {
		return x
	}
	return min(max(x, s.Min), s.Max)
}

func finite32(x float32) bool {
	f := float64(x)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
