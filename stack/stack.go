package stack

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrLayerNotFound is returned for an edit naming an unknown layer id.
	ErrLayerNotFound = errors.New("stack: layer not found")

	// ErrIndexOutOfRange is returned for a reorder with an invalid index.
	ErrIndexOutOfRange = errors.New("stack: index out of range")

	// ErrDuplicateID is returned when a layer id is already in the stack.
	ErrDuplicateID = errors.New("stack: duplicate layer id")
)

// Stack is an ordered, immutable sequence of layers. Index 0 is applied
// first. The zero Stack is empty and ready to use.
type Stack struct {
	layers []Layer
}

// New returns a stack holding copies of layers.
func New(layers ...Layer) (Stack, error) {
	var s Stack
	for _, l := range layers {
		var err error
		if s, err = s.Append(l); err != nil {
			return Stack{}, err
		}
	}
	return s, nil
}

// Len returns the number of layers.
func (s Stack) Len() int { return len(s.layers) }

// IsEmpty reports whether the stack has no layers.
func (s Stack) IsEmpty() bool { return len(s.layers) == 0 }

// At returns a copy of the layer at index i.
func (s Stack) At(i int) Layer { return s.layers[i].Clone() }

// Layers returns copies of all layers in order.
func (s Stack) Layers() []Layer {
	out := make([]Layer, len(s.layers))
	for i, l := range s.layers {
		out[i] = l.Clone()
	}
	return out
}

// All iterates over the layers in order. The yielded layers share their
// Params with the stack and must not be modified.
func (s Stack) All() func(yield func(int, Layer) bool) {
	return func(yield func(int, Layer) bool) {
		for i, l := range s.layers {
			if !yield(i, l) {
				return
			}
		}
	}
}

// Index returns the position of the layer with the given id, or -1.
func (s Stack) Index(id string) int {
	return slices.IndexFunc(s.layers, func(l Layer) bool { return l.ID == id })
}

// Layer returns a copy of the layer with the given id.
func (s Stack) Layer(id string) (Layer, bool) {
	i := s.Index(id)
	if i < 0 {
		return Layer{}, false
	}
	return s.layers[i].Clone(), true
}

// Equal reports whether both stacks hold equal layers in the same order.
func (s Stack) Equal(o Stack) bool {
	return slices.EqualFunc(s.layers, o.layers, Layer.Equal)
}

// Append returns s with l added on top.
func (s Stack) Append(l Layer) (Stack, error) {
	if s.Index(l.ID) >= 0 {
		return s, fmt.Errorf("%w: %q", ErrDuplicateID, l.ID)
	}
	l = l.Clone()
	l.Opacity = ClampOpacity(l.Opacity)
	return Stack{layers: append(slices.Clip(s.layers), l)}, nil
}

// Update returns s with fn applied to the layer with the given id. fn
// receives a copy it may modify freely; the id cannot be changed.
func (s Stack) Update(id string, fn func(*Layer)) (Stack, error) {
	i := s.Index(id)
	if i < 0 {
		return s, fmt.Errorf("%w: %q", ErrLayerNotFound, id)
	}
	l := s.layers[i].Clone()
	fn(&l)
	l.ID = id
	l.Opacity = ClampOpacity(l.Opacity)

	layers := slices.Clone(s.layers)
	layers[i] = l
	return Stack{layers: layers}, nil
}

// Remove returns s without the layer with the given id.
func (s Stack) Remove(id string) (Stack, error) {
	i := s.Index(id)
	if i < 0 {
		return s, fmt.Errorf("%w: %q", ErrLayerNotFound, id)
	}
	return Stack{layers: slices.Delete(slices.Clone(s.layers), i, i+1)}, nil
}

// Move returns s with the layer at from moved to index to; the layers in
// between shift by one to close the gap.
func (s Stack) Move(from, to int) (Stack, error) {
	n := len(s.layers)
	if from < 0 || from >= n || to < 0 || to >= n {
		return s, fmt.Errorf("%w: move %d -> %d in stack of %d", ErrIndexOutOfRange, from, to, n)
	}
	if from == to {
		return s, nil
	}
	layers := slices.Clone(s.layers)
	l := layers[from]
	layers = slices.Delete(layers, from, from+1)
	layers = slices.Insert(layers, to, l)
	return Stack{layers: layers}, nil
}

// Clear returns an empty stack.
func (s Stack) Clear() Stack { return Stack{} }
