// Package fx is a parametric image-effect engine.
//
// # Overview
//
// An Engine holds one editing session: an ordered stack of effect layers,
// each with its own parameters, opacity, visibility and blend mode, plus
// linear undo/redo over every edit. It renders the stack over a source
// image either for interactive preview, at a resolution chosen from the
// effects' declared complexity and whether the user is dragging a
// parameter, or for export at full quality.
//
// # Quick Start
//
//	e := fx.NewEngine()
//	defer e.Close()
//
//	layer, err := e.ApplyEffect("pixelate", param.Values{"cellSize": param.Number(16)})
//	if err != nil {
//	    return err
//	}
//	_ = e.SetOpacity(layer.ID, 0.8)
//
//	out, err := e.ExportFrame(img, e.Stack(), 0, 0)
//
// # Architecture
//
// The engine is a thin facade over sub-packages:
//   - colormatrix: 4x5 color matrix algebra for tonal filters
//   - param, catalog: parameter schema and the read-only effect table
//   - shader: embedded WGSL sources and the compiled program cache
//   - uniform: parameter values to shader uniforms
//   - render: single-effect renderer and devices
//   - stack: layers, stack snapshots, history, compositor
//   - quality: adaptive resolution selection
//
// # Errors
//
// Structurally invalid edits (unknown effect id, unknown layer id,
// out-of-range reorder) are rejected and leave the stack unchanged.
// Parameter values are never rejected: they are clamped or replaced with
// their defaults. Rendering never fails outright: an effect that cannot be
// rendered is left out of the frame and reported in the returned error.
//
// # Thread Safety
//
// Engine methods are safe for concurrent use. Frame rendering works on an
// immutable stack snapshot and does not hold the engine's lock, so a
// preview may be rendered while the stack is being edited.
package fx
