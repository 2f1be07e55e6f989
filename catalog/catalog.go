// Package catalog holds the read-only table of effects the engine can
// render.
//
// A Descriptor declares an effect's identity, category, gating, declared
// complexity, parameter schema and how it is rendered: either through a
// shader source (ShaderRef) or a built-in procedural generator
// (Generator). The table is built once and never mutated.
package catalog

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/gogpu/fx/colormatrix"
	"github.com/gogpu/fx/param"
)

// ErrNotFound is returned when an effect id is not in the catalog.
var ErrNotFound = errors.New("catalog: effect not found")

// Category groups effects for pickers.
type Category string

// Effect categories.
const (
	CategoryColor     Category = "color"
	CategoryCellular  Category = "cellular"
	CategorySymmetry  Category = "symmetry"
	CategoryWarp      Category = "warp"
	CategoryBlur      Category = "blur"
	CategoryFrequency Category = "frequency"
	CategoryGenerator Category = "generator"
)

// MatrixFunc derives a color matrix from an effect's normalized values.
type MatrixFunc func(param.Values) colormatrix.Matrix

// Descriptor is the static description of one effect.
type Descriptor struct {
	ID          string       `json:"id" validate:"required"`
	DisplayName string       `json:"displayName" validate:"required"`
	Category    Category     `json:"category" validate:"required"`
	Premium     bool         `json:"isPremiumGated"`
	Complexity  float64      `json:"complexityScore" validate:"gte=0,lte=1"`
	Params      []param.Spec `json:"parameters" validate:"dive"`

	// Exactly one of ShaderRef and Generator is set.
	ShaderRef string `json:"shaderSourceRef,omitempty"`
	Generator string `json:"builtinGenerator,omitempty"`

	// ColorMatrix is set for tonal filters rendered by the shared
	// color-matrix shader.
	ColorMatrix MatrixFunc `json:"-"`
}

// Param returns the schema of the named parameter.
func (d Descriptor) Param(name string) (param.Spec, bool) {
	for _, p := range d.Params {
		if p.Name == name {
			return p, true
		}
	}
	return param.Spec{}, false
}

// Structural returns the names of parameters baked into shader source.
func (d Descriptor) Structural() []string {
	var out []string
	for _, p := range d.Params {
		if p.Structural {
			out = append(out, p.Name)
		}
	}
	return out
}

// Defaults returns the default value of every parameter.
func (d Descriptor) Defaults() param.Values {
	return param.Normalize(d.Params, nil)
}

// Normalize returns a complete, valid value set for this effect.
func (d Descriptor) Normalize(vs param.Values) param.Values {
	return param.Normalize(d.Params, vs)
}

func (d Descriptor) clone() Descriptor {
	d.Params = slices.Clone(d.Params)
	return d
}

// Catalog is an immutable effect table keyed by id.
type Catalog struct {
	byID  map[string]*Descriptor
	order []string
}

var validate = validator.New()

// New builds a catalog from descs, rejecting duplicate ids and descriptors
// whose schema is inconsistent.
func New(descs ...Descriptor) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]*Descriptor, len(descs))}
	for _, d := range descs {
		if err := check(d); err != nil {
			return nil, err
		}
		if _, dup := c.byID[d.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate effect id %q", d.ID)
		}
		d := d.clone()
		c.byID[d.ID] = &d
		c.order = append(c.order, d.ID)
	}
	return c, nil
}

func check(d Descriptor) error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("catalog: effect %q: %w", d.ID, err)
	}
	if (d.ShaderRef == "") == (d.Generator == "") {
		return fmt.Errorf("catalog: effect %q: exactly one of shader ref and generator must be set", d.ID)
	}
	seen := make(map[string]bool, len(d.Params))
	for _, p := range d.Params {
		if seen[p.Name] {
			return fmt.Errorf("catalog: effect %q: duplicate parameter %q", d.ID, p.Name)
		}
		seen[p.Name] = true
		if err := p.Validate(); err != nil {
			return fmt.Errorf("catalog: effect %q: %w", d.ID, err)
		}
		if p.Structural && d.ShaderRef == "" {
			return fmt.Errorf("catalog: effect %q: structural parameter %q needs a shader", d.ID, p.Name)
		}
	}
	return nil
}

// Get returns the effect with the given id.
func (c *Catalog) Get(id string) (Descriptor, bool) {
	d, ok := c.byID[id]
	if !ok {
		return Descriptor{}, false
	}
	return d.clone(), true
}

// Lookup is Get with an error wrapping ErrNotFound for unknown ids.
func (c *Catalog) Lookup(id string) (Descriptor, error) {
	d, ok := c.Get(id)
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return d, nil
}

// List returns effects in registration order. An empty category lists
// every effect.
func (c *Catalog) List(category Category) []Descriptor {
	out := make([]Descriptor, 0, len(c.order))
	for _, id := range c.order {
		d := c.byID[id]
		if category == "" || d.Category == category {
			out = append(out, d.clone())
		}
	}
	return out
}

// Free returns the effects that are not premium gated.
func (c *Catalog) Free() []Descriptor {
	var out []Descriptor
	for _, id := range c.order {
		if d := c.byID[id]; !d.Premium {
			out = append(out, d.clone())
		}
	}
	return out
}

// Categories returns the categories present, in first-seen order.
func (c *Catalog) Categories() []Category {
	var out []Category
	for _, id := range c.order {
		if cat := c.byID[id].Category; !slices.Contains(out, cat) {
			out = append(out, cat)
		}
	}
	return out
}

// Len returns the number of effects.
func (c *Catalog) Len() int { return len(c.order) }

var defaultCatalog = sync.OnceValue(func() *Catalog {
	c, err := New(builtin()...)
	if err != nil {
		panic(err)
	}
	return c
})

// Default returns the process-wide built-in catalog.
func Default() *Catalog {
	return defaultCatalog()
}
