package fx

import (
	"errors"
	"fmt"
	"image"
	"math"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/gogpu/fx/catalog"
	"github.com/gogpu/fx/param"
	"github.com/gogpu/fx/quality"
	"github.com/gogpu/fx/render"
	"github.com/gogpu/fx/shader"
	"github.com/gogpu/fx/stack"
)

// UnknownEffectError reports an effect id that is not in the catalog.
type UnknownEffectError struct {
	ID string
}

func (e *UnknownEffectError) Error() string {
	return fmt.Sprintf("fx: unknown effect %q", e.ID)
}

// Unwrap returns catalog.ErrNotFound.
func (e *UnknownEffectError) Unwrap() error { return catalog.ErrNotFound }

// Engine is one editing session. See the package documentation.
type Engine struct {
	catalog    *catalog.Catalog
	programs   *shader.ProgramCache
	device     render.Device
	ownDevice  *render.SoftwareDevice
	renderer   *render.Renderer
	compositor *stack.Compositor
	selector   quality.Selector
	newID      func() string

	mu          sync.Mutex
	history     *stack.History
	singleLayer bool
	interacting bool
}

// NewEngine creates an engine with an empty stack.
func NewEngine(opts ...Option) *Engine {
	o := engineOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	log := newLoggers(o.logger)

	e := &Engine{
		catalog:     o.catalog,
		programs:    o.programs,
		device:      o.device,
		selector:    o.selector,
		newID:       o.newID,
		singleLayer: o.singleLayer,
	}
	if e.catalog == nil {
		e.catalog = catalog.Default()
	}
	if e.programs == nil {
		e.programs = shader.NewProgramCache(shader.WithLogger(log.shader))
	}
	if e.device == nil {
		e.ownDevice = render.NewSoftwareDevice(o.workers)
		e.device = e.ownDevice
		if o.provider != nil {
			gpu, err := render.NewGPUDeviceFromProvider(o.provider, render.WithFallback(e.ownDevice))
			if err != nil {
				log.engine.Warn("GPU device unavailable, using software", "err", err)
			} else {
				e.device = gpu
			}
		}
	}
	if !o.hasSelector {
		e.selector = quality.NewSelector()
	}
	if e.newID == nil {
		e.newID = uuid.NewString
	}

	e.renderer = render.NewRenderer(e.programs, e.device,
		render.WithLogger(log.render),
		render.WithMaxTargetSize(o.maxSide))
	e.compositor = stack.NewCompositor(e.renderer, e.catalog, stack.WithLogger(log.stack))
	e.history = stack.NewHistory(stack.Stack{}, stack.WithLimit(o.historyLimit))

	if o.preload {
		e.Preload()
	}
	return e
}

// Close releases the device the engine created. Engines built with
// WithDevice leave their device open.
func (e *Engine) Close() {
	if e.ownDevice != nil {
		e.ownDevice.Close()
	}
}

// Preload compiles every shader the catalog references, logging failures.
// It returns the number of programs ready.
func (e *Engine) Preload() int {
	var keys []shader.Key
	seen := make(map[string]bool)
	for _, d := range e.catalog.List("") {
		if d.ShaderRef == "" || seen[d.ShaderRef] {
			continue
		}
		seen[d.ShaderRef] = true
		keys = append(keys, shader.NewKey(d.ShaderRef, nil))
	}
	return e.programs.Preload(keys...)
}

// Programs returns the engine's program cache.
func (e *Engine) Programs() *shader.ProgramCache { return e.programs }

// Device returns the device executing the engine's programs.
func (e *Engine) Device() render.Device { return e.device }

// Catalog returns the engine's effect catalog.
func (e *Engine) Catalog() *catalog.Catalog { return e.catalog }

// descriptor resolves id or returns an *UnknownEffectError.
func (e *Engine) descriptor(id string) (catalog.Descriptor, error) {
	d, ok := e.catalog.Get(id)
	if !ok {
		return catalog.Descriptor{}, &UnknownEffectError{ID: id}
	}
	return d, nil
}

// edit applies fn to the current stack and records the result. The stack
// is unchanged when fn fails.
func (e *Engine) edit(fn func(s stack.Stack) (stack.Stack, error)) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	next, err := fn(e.history.Current())
	if err != nil {
		return err
	}
	e.history.Record(next)
	return nil
}

// ApplyEffect adds a layer for the effect. Parameters not given take their
// defaults and invalid values are clamped. In single-layer mode the new
// layer replaces the whole stack.
func (e *Engine) ApplyEffect(effectID string, params param.Values) (stack.Layer, error) {
	d, err := e.descriptor(effectID)
	if err != nil {
		return stack.Layer{}, err
	}
	l := stack.NewLayer(e.newID(), d.ID, d.Normalize(params))
	err = e.edit(func(s stack.Stack) (stack.Stack, error) {
		if e.singleLayer {
			s = s.Clear()
		}
		return s.Append(l)
	})
	if err != nil {
		return stack.Layer{}, err
	}
	return l.Clone(), nil
}

// UpdateEffectParams merges partial into a layer's parameters.
func (e *Engine) UpdateEffectParams(layerID string, partial param.Values) error {
	return e.edit(func(s stack.Stack) (stack.Stack, error) {
		l, ok := s.Layer(layerID)
		if !ok {
			return s, fmt.Errorf("%w: %q", stack.ErrLayerNotFound, layerID)
		}
		d, err := e.descriptor(l.EffectID)
		if err != nil {
			return s, err
		}
		return s.Update(layerID, func(l *stack.Layer) {
			l.Params = d.Normalize(l.Params.Merge(partial))
		})
	})
}

// RemoveEffect deletes a layer.
func (e *Engine) RemoveEffect(layerID string) error {
	return e.edit(func(s stack.Stack) (stack.Stack, error) {
		return s.Remove(layerID)
	})
}

// ReorderEffects moves the layer at index from to index to.
func (e *Engine) ReorderEffects(from, to int) error {
	return e.edit(func(s stack.Stack) (stack.Stack, error) {
		return s.Move(from, to)
	})
}

// SetVisibility shows or hides a layer.
func (e *Engine) SetVisibility(layerID string, visible bool) error {
	return e.edit(func(s stack.Stack) (stack.Stack, error) {
		return s.Update(layerID, func(l *stack.Layer) { l.Visible = visible })
	})
}

// SetOpacity sets a layer's opacity, clamped to [0, 1].
func (e *Engine) SetOpacity(layerID string, opacity float64) error {
	return e.edit(func(s stack.Stack) (stack.Stack, error) {
		return s.Update(layerID, func(l *stack.Layer) { l.Opacity = opacity })
	})
}

// SetBlendMode sets a layer's blend mode.
func (e *Engine) SetBlendMode(layerID string, mode stack.BlendMode) error {
	if _, err := mode.MarshalText(); err != nil {
		return err
	}
	return e.edit(func(s stack.Stack) (stack.Stack, error) {
		return s.Update(layerID, func(l *stack.Layer) { l.Blend = mode })
	})
}

// ClearStack removes every layer. Clearing an empty stack records nothing.
func (e *Engine) ClearStack() {
	_ = e.edit(func(s stack.Stack) (stack.Stack, error) {
		if s.IsEmpty() {
			return s, errNoChange
		}
		return s.Clear(), nil
	})
}

var errNoChange = errors.New("fx: no change")

// Undo restores the previous stack. It reports false when there is
// nothing to undo.
func (e *Engine) Undo() (stack.Stack, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.Undo()
}

// Redo re-applies the last undone edit. It reports false when there is
// nothing to redo.
func (e *Engine) Redo() (stack.Stack, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.Redo()
}

// CanUndo reports whether Undo would change the stack.
func (e *Engine) CanUndo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.CanUndo()
}

// CanRedo reports whether Redo would change the stack.
func (e *Engine) CanRedo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.CanRedo()
}

// Stack returns the current stack snapshot.
func (e *Engine) Stack() stack.Stack {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.Current()
}

// Layer returns a copy of the layer with the given id.
func (e *Engine) Layer(layerID string) (stack.Layer, bool) {
	return e.Stack().Layer(layerID)
}

// SetSingleLayerMode switches between single-layer and stack mode. It
// affects later ApplyEffect calls only.
func (e *Engine) SetSingleLayerMode(on bool) {
	e.mu.Lock()
	e.singleLayer = on
	e.mu.Unlock()
}

// SingleLayerMode reports whether single-layer mode is on.
func (e *Engine) SingleLayerMode() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.singleLayer
}

// SetInteracting records whether the user is manipulating a parameter.
// Previews render at reduced resolution while it is set.
func (e *Engine) SetInteracting(on bool) {
	e.mu.Lock()
	e.interacting = on
	e.mu.Unlock()
}

// Interacting reports the interaction state.
func (e *Engine) Interacting() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.interacting
}

// Records returns the persisted form of the current stack.
func (e *Engine) Records() []stack.Record {
	return e.Stack().Records()
}

// LoadRecords replaces the session with the stack described by recs and
// clears the undo history. Every effect id must be in the catalog;
// parameters are normalized. On error the session is unchanged.
func (e *Engine) LoadRecords(recs []stack.Record) error {
	normalized := make([]stack.Record, len(recs))
	for i, r := range recs {
		d, err := e.descriptor(r.EffectID)
		if err != nil {
			return fmt.Errorf("fx: record %d: %w", i, err)
		}
		r.Params = d.Normalize(r.Params)
		normalized[i] = r
	}
	s, err := stack.FromRecords(normalized, e.newID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.history.Reset(s)
	e.mu.Unlock()
	return nil
}

// ListEffects returns the catalog entries of a category, or all entries
// when category is empty.
func (e *Engine) ListEffects(category catalog.Category) []catalog.Descriptor {
	return e.catalog.List(category)
}

// GetEffect returns the catalog entry for id.
func (e *Engine) GetEffect(id string) (catalog.Descriptor, error) {
	return e.descriptor(id)
}

// ListFreeEffects returns the entries that are not premium gated.
func (e *Engine) ListFreeEffects() []catalog.Descriptor {
	return e.catalog.Free()
}

// PreviewScale returns the resolution factor a preview of s renders at:
// the selector's choice for the most complex visible layer.
func (e *Engine) PreviewScale(s stack.Stack) float64 {
	var complexity float64
	for _, l := range s.All() {
		if !l.Visible {
			continue
		}
		if d, ok := e.catalog.Get(l.EffectID); ok {
			complexity = max(complexity, d.Complexity)
		}
	}
	return e.selector.SelectScale(complexity, e.Interacting())
}

// PreviewFrame renders s over src at the adaptive preview resolution and
// returns it at src's size. The error, if any, joins the failures of
// individual layers; the image is always usable.
func (e *Engine) PreviewFrame(src image.Image, s stack.Stack) (image.Image, error) {
	out, err := e.compositor.Composite(src, s, e.PreviewScale(s))
	if out == nil {
		return out, err
	}
	b := src.Bounds()
	if ob := out.Bounds(); ob.Dx() != b.Dx() || ob.Dy() != b.Dy() {
		out = render.Scale(out, b.Dx(), b.Dy())
	}
	return out, err
}

// ExportFrame renders s over src at full quality, ignoring the
// interaction state. The source is first resized to width×height with a
// Lanczos filter; a zero side keeps the aspect ratio and both zero keeps
// the source size. A size beyond the target limit fails before any
// resampling and returns src.
func (e *Engine) ExportFrame(src image.Image, s stack.Stack, width, height int) (image.Image, error) {
	if src == nil {
		return nil, render.ErrNilImage
	}
	b := src.Bounds()
	w, h, err := exportSize(b, width, height)
	if err == nil {
		err = e.renderer.CheckTarget(w, h)
	}
	if err != nil {
		return src, err
	}
	if w != b.Dx() || h != b.Dy() {
		src = imaging.Resize(src, w, h, imaging.Lanczos)
	}
	return e.compositor.Composite(src, s, 1)
}

// exportSize resolves a requested export size against the source bounds
// the way imaging.Resize does.
func exportSize(b image.Rectangle, width, height int) (int, int, error) {
	switch {
	case width < 0 || height < 0:
		return 0, 0, &render.TargetAllocationError{Width: width, Height: height, Reason: "negative size"}
	case b.Empty():
		return 0, 0, &render.TargetAllocationError{Width: b.Dx(), Height: b.Dy(), Reason: "empty source"}
	case width == 0 && height == 0:
		return b.Dx(), b.Dy(), nil
	}
	var side float64
	switch {
	case width == 0:
		side = math.Floor(float64(height)*float64(b.Dx())/float64(b.Dy()) + 0.5)
	case height == 0:
		side = math.Floor(float64(width)*float64(b.Dy())/float64(b.Dx()) + 0.5)
	default:
		return width, height, nil
	}
	if side > math.MaxInt32 {
		return 0, 0, &render.TargetAllocationError{Width: width, Height: height, Reason: "size overflow"}
	}
	side = max(side, 1)
	if width == 0 {
		return int(side), height, nil
	}
	return width, int(side), nil
}
