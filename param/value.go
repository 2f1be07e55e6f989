// Package param defines effect parameter schemas and the tagged-union
// Value that carries a parameter's setting.
//
// Values are loosely produced (UI sliders, decoded JSON, presets) and are
// normalized once against their Spec: well-typed values are clamped into
// range, anything else is replaced by the declared default. Normalization
// never fails.
package param

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/soypat/geometry/ms2"
)

// Kind is the type of a parameter.
type Kind uint8

const (
	kindInvalid Kind = iota
	Numeric
	Enumerated
	Boolean
	Color
	Vector2
)

var kindNames = [...]string{
	kindInvalid: "invalid",
	Numeric:     "numeric",
	Enumerated:  "enumerated",
	Boolean:     "boolean",
	Color:       "color",
	Vector2:     "vector2",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if k == kindInvalid || int(k) >= len(kindNames) {
		return nil, fmt.Errorf("param: invalid kind %d", k)
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	s := string(b)
	for i, n := range kindNames {
		if i != int(kindInvalid) && n == s {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("param: unknown kind %q", s)
}

// Value is one parameter setting. The zero Value is "unset".
type Value struct {
	kind Kind
	num  float64
	opt  string
	idx  int
	vec  ms2.Vec
	col  [4]float32
}

// Number returns a numeric value.
func Number(v float64) Value { return Value{kind: Numeric, num: v} }

// Option returns an enumerated value selected by option name.
func Option(name string) Value { return Value{kind: Enumerated, opt: name, idx: -1} }

// OptionIndex returns an enumerated value selected by position.
func OptionIndex(i int) Value { return Value{kind: Enumerated, idx: i} }

// Bool returns a boolean value.
func Bool(b bool) Value {
	v := Value{kind: Boolean}
	if b {
		v.num = 1
	}
	return v
}

// Vec2 returns a two-component vector value.
func Vec2(x, y float32) Value { return Value{kind: Vector2, vec: ms2.Vec{X: x, Y: y}} }

// RGBA returns a straight-alpha color value with components in [0, 1].
func RGBA(r, g, b, a float32) Value { return Value{kind: Color, col: [4]float32{r, g, b, a}} }

// Kind returns the value's kind, or 0 for an unset value.
func (v Value) Kind() Kind { return v.kind }

// IsZero reports whether the value is unset.
func (v Value) IsZero() bool { return v.kind == kindInvalid }

// Float returns the numeric payload. Booleans report 0 or 1.
func (v Value) Float() float64 { return v.num }

// Bool returns the boolean payload.
func (v Value) Bool() bool { return v.kind == Boolean && v.num != 0 }

// Vec returns the vector payload.
func (v Value) Vec() ms2.Vec { return v.vec }

// Color returns the color payload.
func (v Value) Color() [4]float32 { return v.col }

// Option returns the option name of an enumerated value selected by name.
func (v Value) Option() string { return v.opt }

// Index returns the option index of an enumerated value selected by
// position, or -1 when it was selected by name.
func (v Value) Index() int {
	if v.kind != Enumerated {
		return -1
	}
	return v.idx
}

func (v Value) String() string {
	switch v.kind {
	case Numeric:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case Enumerated:
		if v.idx >= 0 && v.opt == "" {
			return "#" + strconv.Itoa(v.idx)
		}
		return v.opt
	case Boolean:
		return strconv.FormatBool(v.Bool())
	case Vector2:
		return fmt.Sprintf("(%g, %g)", v.vec.X, v.vec.Y)
	case Color:
		return fmt.Sprintf("rgba(%g, %g, %g, %g)", v.col[0], v.col[1], v.col[2], v.col[3])
	}
	return "<unset>"
}

// MarshalJSON encodes the value as a plain JSON value: number, option
// string, bool, [x, y] or [r, g, b, a].
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case Numeric:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return nil, errors.New("param: non-finite number")
		}
		return json.Marshal(v.num)
	case Enumerated:
		if v.opt == "" && v.idx >= 0 {
			return json.Marshal(v.idx)
		}
		return json.Marshal(v.opt)
	case Boolean:
		return json.Marshal(v.Bool())
	case Vector2:
		return json.Marshal([2]float32{v.vec.X, v.vec.Y})
	case Color:
		return json.Marshal(v.col)
	}
	return []byte("null"), nil
}

// UnmarshalJSON decodes any plain JSON value accepted by FromAny.
func (v *Value) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	val, err := FromAny(raw)
	if err != nil {
		return err
	}
	*v = val
	return nil
}

// FromAny converts an untyped value (as produced by encoding/json or a UI
// layer) into a Value. nil yields the unset Value.
func FromAny(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Value{}, nil
	case Value:
		return t, nil
	case float64:
		return Number(t), nil
	case float32:
		return Number(float64(t)), nil
	case int:
		return Number(float64(t)), nil
	case int64:
		return Number(float64(t)), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("param: %w", err)
		}
		return Number(f), nil
	case bool:
		return Bool(t), nil
	case string:
		return Option(t), nil
	case ms2.Vec:
		return Vec2(t.X, t.Y), nil
	case []any:
		comps := make([]float32, len(t))
		for i, c := range t {
			f, ok := c.(float64)
			if !ok {
				return Value{}, fmt.Errorf("param: array element %d is %T, want number", i, c)
			}
			comps[i] = float32(f)
		}
		switch len(comps) {
		case 2:
			return Vec2(comps[0], comps[1]), nil
		case 3:
			return RGBA(comps[0], comps[1], comps[2], 1), nil
		case 4:
			return RGBA(comps[0], comps[1], comps[2], comps[3]), nil
		}
		return Value{}, fmt.Errorf("param: array of %d numbers is neither vector2 nor color", len(comps))
	}
	return Value{}, fmt.Errorf("param: unsupported value type %T", x)
}

// parseHexColor accepts #rgb, #rrggbb and #rrggbbaa.
func parseHexColor(s string) ([4]float32, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) == 6 {
		s += "ff"
	}
	if len(s) != 8 {
		return [4]float32{}, false
	}
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return [4]float32{}, false
	}
	return [4]float32{
		float32(n>>24&0xff) / 255,
		float32(n>>16&0xff) / 255,
		float32(n>>8&0xff) / 255,
		float32(n&0xff) / 255,
	}, true
}
